package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/CristiGvl/picoTVKit/internal/webview"
	"github.com/go-rod/rod/lib/launcher"
)

type chromeEvents struct {
	mu     sync.Mutex
	veto   string
	asked  []string
	events []string
	errs   []error
	done   chan struct{}
}

func newChromeEvents(veto string) *chromeEvents {
	return &chromeEvents{veto: veto, done: make(chan struct{}, 1)}
}

func (c *chromeEvents) record(name string, err error) {
	c.mu.Lock()
	c.events = append(c.events, name)
	if err != nil {
		c.errs = append(c.errs, err)
	}
	c.mu.Unlock()
}

func (c *chromeEvents) DidStartLoad()  { c.record("start", nil) }
func (c *chromeEvents) DidFinishLoad() { c.record("finish", nil); c.done <- struct{}{} }
func (c *chromeEvents) DidFailLoadWithError(err error) {
	c.record("fail", err)
	c.done <- struct{}{}
}
func (c *chromeEvents) ShouldStartLoadWithRequest(req *webview.Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, req.RawURL)
	return req.RawURL != c.veto
}

func chromeManager(t *testing.T) *Manager {
	t.Helper()
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chrome binary found")
	}
	m := NewManager(Config{Bin: bin})
	t.Cleanup(func() { m.Close() })
	return m
}

func site(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><iframe src="/frame"></iframe></body></html>`)
	})
	mux.HandleFunc("/frame", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>player</body></html>`)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>target</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func loadInChrome(t *testing.T, m *Manager, rec *chromeEvents, url string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	engine, err := m.NewEngine(ctx)
	if err != nil {
		t.Skipf("chrome unavailable: %v", err)
	}
	p := webview.New(engine, webview.WithLoadTimeout(20*time.Second))
	defer p.Close()
	webview.SetDelegate(p, rec)

	p.LoadRequest(webview.NewRequest(url))
	select {
	case <-rec.done:
	case <-ctx.Done():
		t.Fatal("load did not complete")
	}
}

func TestChromeBlockedFrameDoesNotFailLoad(t *testing.T) {
	m := chromeManager(t)
	srv := site(t)
	rec := newChromeEvents(srv.URL + "/frame")

	loadInChrome(t, m, rec, srv.URL+"/")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 || rec.events[0] != "start" || rec.events[1] != "finish" {
		t.Fatalf("events = %v, want [start finish] (errors %v)", rec.events, rec.errs)
	}
	found := false
	for _, u := range rec.asked {
		if u == srv.URL+"/frame" {
			found = true
		}
	}
	if !found {
		t.Fatalf("frame navigation not asked; asked = %v", rec.asked)
	}
}

func TestChromeBlockedMainFrameRedirectFailsLoad(t *testing.T) {
	m := chromeManager(t)
	srv := site(t)
	rec := newChromeEvents(srv.URL + "/target")

	loadInChrome(t, m, rec, srv.URL+"/redirect")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 || rec.events[0] != "start" || rec.events[1] != "fail" {
		t.Fatalf("events = %v, want [start fail]", rec.events)
	}
}
