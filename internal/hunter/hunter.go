// Package hunter resolves stream playlists that a site only reveals to a
// browser: it loads the site in a web view, intercepts the navigation to
// the embedded player page and scrapes the .m3u8 URL out of that page.
package hunter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/CristiGvl/picoTVKit/internal/webview"
)

var (
	// ErrPlaylistNotFound is returned when no playlist URL could be found.
	ErrPlaylistNotFound = errors.New("hunter: playlist URL not found")

	// ErrInvalidTarget is returned for targets missing a required field.
	ErrInvalidTarget = errors.New("hunter: invalid target")
)

// Target describes where to look for a playlist.
type Target struct {
	// Source is the page that embeds the player.
	Source string `json:"source" yaml:"source"`
	// PlaylistDomain and PlaylistPath identify the player page navigation.
	PlaylistDomain string `json:"playlist_domain" yaml:"playlist_domain"`
	PlaylistPath   string `json:"playlist_path" yaml:"playlist_path"`
}

func (t Target) validate() error {
	switch {
	case t.Source == "":
		return fmt.Errorf("%w: source is empty", ErrInvalidTarget)
	case t.PlaylistDomain == "":
		return fmt.Errorf("%w: playlist domain is empty", ErrInvalidTarget)
	case t.PlaylistPath == "":
		return fmt.Errorf("%w: playlist path is empty", ErrInvalidTarget)
	}
	return nil
}

// EngineFactory creates the rendering engine for one hunt.
type EngineFactory func(ctx context.Context) (webview.Engine, error)

// Fetcher downloads the player page. cookies are the web view's cookies
// for target and may be empty.
type Fetcher interface {
	Fetch(ctx context.Context, target, referer string, cookies []*http.Cookie) ([]byte, error)
}

// Config configures a Hunter.
type Config struct {
	// Grace is how long to wait for the player navigation after the source
	// page has finished loading. Default: 3s.
	Grace time.Duration

	// LoadTimeout bounds the source page load. Default: 30s.
	LoadTimeout time.Duration

	// FetchTimeout bounds the player page download. Default: 5s.
	FetchTimeout time.Duration

	// CacheTTL is how long a found playlist is reused. Default: 1m.
	CacheTTL time.Duration

	// Fetcher overrides the HTTP client used for the player page.
	Fetcher Fetcher

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Grace <= 0 {
		c.Grace = 3 * time.Second
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 30 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 5 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Minute
	}
	if c.Fetcher == nil {
		c.Fetcher = NewHTTPFetcher(c.FetchTimeout)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Hunter finds playlists. It is safe for concurrent use; each hunt gets its
// own web view.
type Hunter struct {
	cfg       Config
	newEngine EngineFactory
	cache     *cache
}

// New creates a Hunter.
func New(newEngine EngineFactory, cfg Config) *Hunter {
	cfg.defaults()
	return &Hunter{
		cfg:       cfg,
		newEngine: newEngine,
		cache:     newCache(cfg.CacheTTL),
	}
}

// Hunt returns the playlist URL for t.
func (h *Hunter) Hunt(ctx context.Context, t Target) (string, error) {
	if err := t.validate(); err != nil {
		return "", err
	}
	if u, ok := h.cache.get(t.Source); ok {
		h.cfg.Logger.Debug("hunter: cache hit", "source", t.Source, "playlist", u)
		return u, nil
	}

	engine, err := h.newEngine(ctx)
	if err != nil {
		return "", fmt.Errorf("hunter: engine: %w", err)
	}
	proxy := webview.New(engine,
		webview.WithLogger(h.cfg.Logger),
		webview.WithLoadTimeout(h.cfg.LoadTimeout),
	)
	defer proxy.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := newDelegate(ctx, t, h)
	if cs, ok := engine.(webview.CookieSource); ok {
		d.cookies = cs
	}
	webview.SetDelegate(proxy, d)
	proxy.LoadRequest(webview.NewRequest(t.Source))

	var res result
	select {
	case res = <-d.results:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	d.stop()
	// The proxy holds the delegate weakly.
	runtime.KeepAlive(d)

	if res.err != nil {
		h.cfg.Logger.Warn("hunter: hunt failed", "source", t.Source, "error", res.err)
		return "", res.err
	}
	h.cfg.Logger.Info("hunter: playlist found", "source", t.Source, "playlist", res.url)
	h.cache.put(t.Source, res.url)
	return res.url, nil
}
