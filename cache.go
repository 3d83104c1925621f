package commands

import (
	"sync"
	"time"
)

// pruneThreshold is the entry count above which a write sweeps expired entries
const pruneThreshold = 256

// CacheOption configures a parser result cache
type CacheOption func(c *resultCache)

// WithCacheClock replaces the clock used to expire cached results
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *resultCache) {
		if now != nil {
			c.now = now
		}
	}
}

type cacheEntry struct {
	result  ParseResult
	err     error
	expires time.Time
}

// resultCache maps raw token content to parse results. Entries are replaced whole, so readers
// never observe a partially written entry. Concurrent misses may compute the same entry twice.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	maxAge  time.Duration
	now     func() time.Time
}

func newResultCache(maxAge time.Duration, opts ...CacheOption) *resultCache {
	c := &resultCache{
		entries: make(map[string]cacheEntry),
		maxAge:  maxAge,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *resultCache) get(key string) (cacheEntry, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !found || !c.now().Before(entry.expires) {
		return cacheEntry{}, false
	}

	return entry, true
}

func (c *resultCache) put(key string, result ParseResult, err error) {
	if c.maxAge <= 0 {
		return
	}

	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= pruneThreshold {
		for k, e := range c.entries {
			if !now.Before(e.expires) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = cacheEntry{result: result, err: err, expires: now.Add(c.maxAge)}
}

func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
