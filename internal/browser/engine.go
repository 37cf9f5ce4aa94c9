package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/CristiGvl/picoTVKit/internal/webview"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Engine renders pages in one Chrome tab. Every document request the tab
// makes, frames included, is routed through the current load's
// shouldStart hook.
type Engine struct {
	page   *rod.Page
	router *rod.HijackRouter
	logger *slog.Logger

	mu          sync.Mutex
	shouldStart func(*webview.Request) bool
	initialSeen bool
}

var (
	_ webview.Engine       = (*Engine)(nil)
	_ webview.CookieSource = (*Engine)(nil)
)

func newEngine(b *rod.Browser, useStealth bool, logger *slog.Logger) (*Engine, error) {
	var (
		page *rod.Page
		err  error
	)
	if useStealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	e := &Engine{page: page, logger: logger}
	e.router = page.HijackRequests()
	e.router.MustAdd("*", e.intercept)
	go e.router.Run()

	return e, nil
}

// Load navigates the tab to req and waits for the load event.
func (e *Engine) Load(ctx context.Context, req *webview.Request, shouldStart func(*webview.Request) bool) error {
	e.mu.Lock()
	e.shouldStart = shouldStart
	e.initialSeen = false
	e.mu.Unlock()

	page := e.page.Context(ctx)

	if headers := flattenHeaders(req); len(headers) > 0 {
		cleanup, err := page.SetExtraHeaders(headers)
		if err != nil {
			return fmt.Errorf("browser: set headers: %w", err)
		}
		defer cleanup()
	}

	if err := page.Navigate(req.RawURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", req.RawURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("browser: wait load %s: %w", req.RawURL, err)
	}
	return nil
}

// Cookies returns the tab's cookies that would be sent to rawURL.
func (e *Engine) Cookies(ctx context.Context, rawURL string) ([]*http.Cookie, error) {
	cookies, err := e.page.Context(ctx).Cookies([]string{rawURL})
	if err != nil {
		return nil, fmt.Errorf("browser: cookies for %s: %w", rawURL, err)
	}
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out, nil
}

// Close closes the tab.
func (e *Engine) Close() error {
	if err := e.router.Stop(); err != nil {
		e.logger.Warn("browser: stop hijack router", "error", err)
	}
	return e.page.Close()
}

func (e *Engine) intercept(h *rod.Hijack) {
	if h.Request.Type() != proto.NetworkResourceTypeDocument {
		h.ContinueRequest(&proto.FetchContinueRequest{})
		return
	}

	target := h.Request.URL().String()
	mainFrame := h.Request.Event().FrameID == e.page.FrameID
	if e.decide(target, h.Request.Req().Header.Clone(), mainFrame) {
		h.ContinueRequest(&proto.FetchContinueRequest{})
		return
	}
	e.logger.Debug("browser: navigation blocked", "url", target)
	h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
}

// decide reports whether a document request may proceed. The first
// main-frame document request of a load is the navigation Load started;
// it was approved before Load was called and is not asked again.
func (e *Engine) decide(target string, header map[string][]string, mainFrame bool) bool {
	e.mu.Lock()
	shouldStart := e.shouldStart
	first := mainFrame && !e.initialSeen
	if first {
		e.initialSeen = true
	}
	e.mu.Unlock()

	if first || shouldStart == nil {
		return true
	}
	req := webview.NewRequest(target)
	for k, v := range header {
		req.Header[k] = v
	}
	return shouldStart(req)
}

func flattenHeaders(req *webview.Request) []string {
	var kv []string
	for k, values := range req.Header {
		for _, v := range values {
			kv = append(kv, k, v)
		}
	}
	return kv
}
