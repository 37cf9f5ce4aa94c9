package hunter

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CristiGvl/picoTVKit/internal/webview"
)

type result struct {
	url string
	err error
}

// delegate watches one source page load. allowNav is only touched from
// the proxy's dispatch goroutine.
type delegate struct {
	ctx     context.Context
	target  Target
	hunter  *Hunter
	results chan result

	cookies webview.CookieSource

	allowNav bool
	matched  atomic.Bool

	graceMu sync.Mutex
	grace   *time.Timer
	stopped bool
}

func newDelegate(ctx context.Context, t Target, h *Hunter) *delegate {
	return &delegate{
		ctx:      ctx,
		target:   t,
		hunter:   h,
		results:  make(chan result, 1),
		allowNav: true,
	}
}

func (d *delegate) DidStartLoad() {
	d.allowNav = true
}

func (d *delegate) DidFinishLoad() {
	d.allowNav = false
	if d.matched.Load() {
		return
	}
	d.graceMu.Lock()
	defer d.graceMu.Unlock()
	if d.stopped || d.grace != nil {
		return
	}
	d.grace = time.AfterFunc(d.hunter.cfg.Grace, func() {
		if !d.matched.Load() {
			d.send(result{err: fmt.Errorf("%w: no player navigation from %s", ErrPlaylistNotFound, d.target.Source)})
		}
	})
}

// stop disarms the grace timer once the hunt has an answer.
func (d *delegate) stop() {
	d.graceMu.Lock()
	defer d.graceMu.Unlock()
	d.stopped = true
	if d.grace != nil {
		d.grace.Stop()
	}
}

func (d *delegate) DidFailLoadWithError(err error) {
	d.allowNav = false
	if d.matched.Load() {
		return
	}
	d.send(result{err: fmt.Errorf("hunter: load %s: %w", d.target.Source, err)})
}

// ShouldStartLoadWithRequest vetoes the player navigation and fetches the
// player page itself. Other navigations are allowed only while the source
// page is loading.
func (d *delegate) ShouldStartLoadWithRequest(req *webview.Request) bool {
	u, err := req.URL()
	if err == nil && u.Hostname() == d.target.PlaylistDomain && u.Path == d.target.PlaylistPath {
		if d.matched.CompareAndSwap(false, true) {
			d.allowNav = false
			go d.fetch(u.String())
		}
		return false
	}
	return d.allowNav
}

func (d *delegate) fetch(player string) {
	h := d.hunter
	h.cfg.Logger.Debug("hunter: fetching player page", "url", player)

	body, err := h.cfg.Fetcher.Fetch(d.ctx, player, d.target.Source, d.playerCookies(player))
	if err != nil {
		d.send(result{err: err})
		return
	}
	playlist, ok := extractPlaylist(string(body))
	if !ok {
		d.send(result{err: fmt.Errorf("%w: no .m3u8 link in %s", ErrPlaylistNotFound, player)})
		return
	}
	d.send(result{url: playlist})
}

// playerCookies returns the web view's cookies for player. A failed lookup
// is logged and the fetch goes ahead without them.
func (d *delegate) playerCookies(player string) []*http.Cookie {
	if d.cookies == nil {
		return nil
	}
	cookies, err := d.cookies.Cookies(d.ctx, player)
	if err != nil {
		d.hunter.cfg.Logger.Warn("hunter: reading web view cookies", "url", player, "error", err)
		return nil
	}
	return cookies
}

// send keeps the first result.
func (d *delegate) send(r result) {
	select {
	case d.results <- r:
	default:
	}
}
