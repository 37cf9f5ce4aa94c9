package hunter

import (
	"sync"
	"time"
)

type cacheEntry struct {
	url     string
	created time.Time
}

// cache remembers found playlists per source page. Stream URLs carry
// short-lived tokens, so entries expire quickly.
type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *cache) get(source string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[source]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.created) >= c.ttl {
		delete(c.entries, source)
		return "", false
	}
	return e.url, true
}

func (c *cache) put(source, url string) {
	c.mu.Lock()
	c.entries[source] = cacheEntry{url: url, created: c.now()}
	c.mu.Unlock()
}
