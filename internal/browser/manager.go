// Package browser runs headless Chrome through Rod and exposes its pages
// as webview engines.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// ErrClosed is returned by a Manager after Close.
var ErrClosed = errors.New("browser: manager is closed")

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty launches a local Chrome.
	RemoteURL string

	// Bin is the Chrome binary for local launches. Empty lets the
	// launcher find or download one.
	Bin string

	// Headful shows the browser window. Only meaningful for local launches.
	Headful bool

	// Stealth opens pages with automation fingerprints masked.
	Stealth bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// connection is one Chrome process, or one link to a remote Chrome.
type connection struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
}

func (c *connection) close() error {
	var err error
	if c.browser != nil {
		err = c.browser.Close()
	}
	if c.lnch != nil {
		c.lnch.Cleanup()
	}
	return err
}

// Manager owns the Chrome connection. A connection that can no longer open
// tabs is torn down and replaced once per NewEngine call.
type Manager struct {
	cfg    Config
	mu     sync.Mutex
	conn   *connection
	closed bool

	dial func(ctx context.Context) (*connection, error)
	open func(c *connection) (*Engine, error)
}

// NewManager creates a Manager. Chrome is started lazily by the first
// NewEngine call, or explicitly by Start.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	m := &Manager{cfg: cfg}
	m.dial = m.connect
	m.open = func(c *connection) (*Engine, error) {
		return newEngine(c.browser, m.cfg.Stealth, m.cfg.Logger)
	}
	return m
}

// Start launches or connects to Chrome if that has not happened yet.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.connLocked(ctx)
	return err
}

// NewEngine opens a fresh tab to back one webview proxy. If the tab cannot
// be opened, Chrome is recycled and the tab retried once.
func (m *Manager) NewEngine(ctx context.Context) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		conn, err := m.connLocked(ctx)
		if errors.Is(err, ErrClosed) {
			return nil, err
		}
		if err == nil {
			var e *Engine
			if e, err = m.open(conn); err == nil {
				return e, nil
			}
		}
		lastErr = err
		m.cfg.Logger.Warn("browser: tab unavailable, recycling chrome", "attempt", attempt+1, "error", err)
		m.resetLocked()
	}
	return nil, lastErr
}

// Close shuts Chrome down.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.resetLocked()
}

func (m *Manager) resetLocked() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.close()
	m.conn = nil
	return err
}

func (m *Manager) connLocked(ctx context.Context) (*connection, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if m.conn != nil {
		return m.conn, nil
	}
	conn, err := m.dial(ctx)
	if err != nil {
		return nil, err
	}
	m.conn = conn
	return conn, nil
}

func (m *Manager) connect(ctx context.Context) (*connection, error) {
	log := m.cfg.Logger
	conn := &connection{}

	wsURL := m.cfg.RemoteURL
	if wsURL != "" {
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(!m.cfg.Headful)
		if m.cfg.Bin != "" {
			l = l.Bin(m.cfg.Bin)
		}
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		conn.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "headful", m.cfg.Headful)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		conn.close()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	conn.browser = b
	return conn, nil
}
