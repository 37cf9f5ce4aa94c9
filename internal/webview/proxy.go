// Package webview relays page-load lifecycle events from a rendering engine
// to a single, weakly held delegate.
package webview

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"weak"
)

// Engine renders pages for a Proxy.
type Engine interface {
	// Load navigates to req and returns once the page has loaded or failed.
	// shouldStart must be consulted before every further navigation the
	// load triggers (redirects, link follows, frames); req itself has
	// already been approved.
	Load(ctx context.Context, req *Request, shouldStart func(*Request) bool) error
	Close() error
}

// CookieSource is implemented by engines that keep a cookie jar.
type CookieSource interface {
	// Cookies returns the cookies the engine would send to rawURL.
	Cookies(ctx context.Context, rawURL string) ([]*http.Cookie, error)
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithLogger sets the proxy logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Proxy) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithLoadTimeout bounds every load. Zero means no limit.
func WithLoadTimeout(d time.Duration) Option {
	return func(p *Proxy) { p.timeout = d }
}

// Proxy presents an Engine as a navigable view. All delegate callbacks run
// on one dispatch goroutine, in order.
type Proxy struct {
	engine  Engine
	logger  *slog.Logger
	timeout time.Duration

	mu       sync.RWMutex
	delegate func() Delegate

	calls  chan func()
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	lifecycle sync.Mutex
	closed    bool
	wg        sync.WaitGroup
}

// New creates a Proxy over engine and starts its dispatch goroutine.
func New(engine Engine, opts ...Option) *Proxy {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Proxy{
		engine: engine,
		logger: slog.Default(),
		calls:  make(chan func()),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.dispatch()
	return p
}

// SetDelegate registers d as the proxy's delegate without keeping it alive.
// Once d is garbage collected, callbacks are dropped. Passing nil clears the
// delegate.
func SetDelegate[T any, D interface {
	*T
	Delegate
}](p *Proxy, d D) {
	ptr := (*T)(d)
	if ptr == nil {
		p.ClearDelegate()
		return
	}
	wp := weak.Make(ptr)
	p.mu.Lock()
	p.delegate = func() Delegate {
		if v := wp.Value(); v != nil {
			return D(v)
		}
		return nil
	}
	p.mu.Unlock()
}

// ClearDelegate removes the delegate.
func (p *Proxy) ClearDelegate() {
	p.mu.Lock()
	p.delegate = nil
	p.mu.Unlock()
}

// Delegate returns the current delegate, or nil if none is registered or
// it has been collected.
func (p *Proxy) Delegate() Delegate {
	p.mu.RLock()
	resolve := p.delegate
	p.mu.RUnlock()
	if resolve == nil {
		return nil
	}
	return resolve()
}

// LoadRequest starts loading req and returns immediately. Progress is
// reported only through the delegate. Calling it while another load is in
// flight starts a second load; how the two interact is up to the engine.
// A nil req is loaded as an empty URL and fails with ErrMalformedURL.
func (p *Proxy) LoadRequest(req *Request) {
	if req == nil {
		req = NewRequest("")
	}
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.closed {
		p.logger.Warn("webview: load after close", "url", req.RawURL)
		return
	}
	p.wg.Add(1)
	go p.load(req)
}

// Close cancels in-flight loads, stops callback delivery and closes the
// engine.
func (p *Proxy) Close() error {
	p.lifecycle.Lock()
	if p.closed {
		p.lifecycle.Unlock()
		return nil
	}
	p.closed = true
	// done must close before cancel so results of cancelled loads are dropped.
	close(p.done)
	p.cancel()
	p.lifecycle.Unlock()

	p.wg.Wait()
	return p.engine.Close()
}

func (p *Proxy) load(req *Request) {
	defer p.wg.Done()
	log := p.logger.With("request_id", req.ID, "url", req.RawURL)

	if !p.shouldStart(req) {
		log.Debug("webview: load vetoed")
		return
	}

	p.notify(func(d Delegate) { d.DidStartLoad() })

	if _, err := req.URL(); err != nil {
		log.Debug("webview: load failed", "error", err)
		p.notify(func(d Delegate) { d.DidFailLoadWithError(err) })
		return
	}

	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := p.engine.Load(ctx, req, p.shouldStart); err != nil {
		log.Debug("webview: load failed", "error", err, "elapsed", time.Since(start))
		p.notify(func(d Delegate) { d.DidFailLoadWithError(err) })
		return
	}
	log.Debug("webview: load finished", "elapsed", time.Since(start))
	p.notify(func(d Delegate) { d.DidFinishLoad() })
}

// shouldStart asks the delegate on the dispatch goroutine and blocks until
// it answers. Without a delegate every navigation is allowed; after Close
// none is.
func (p *Proxy) shouldStart(req *Request) bool {
	answer := make(chan bool, 1)
	posted := p.post(func() {
		d := p.Delegate()
		if d == nil {
			answer <- true
			return
		}
		answer <- d.ShouldStartLoadWithRequest(req)
	})
	if !posted {
		return false
	}
	select {
	case ok := <-answer:
		return ok
	case <-p.done:
		return false
	}
}

// notify delivers fn on the dispatch goroutine if a delegate is present.
func (p *Proxy) notify(fn func(Delegate)) {
	p.post(func() {
		if d := p.Delegate(); d != nil {
			fn(d)
		}
	})
}

func (p *Proxy) post(fn func()) bool {
	select {
	case p.calls <- fn:
		return true
	case <-p.done:
		return false
	}
}

func (p *Proxy) dispatch() {
	for {
		select {
		case fn := <-p.calls:
			select {
			case <-p.done:
				return
			default:
			}
			fn()
		case <-p.done:
			return
		}
	}
}
