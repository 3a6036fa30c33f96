package foodapi

import (
	"sync"
	"time"
)

type cacheEntry struct {
	products []Product
	expires  time.Time
}

// searchCache is a TTL map of search results.
type searchCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func newSearchCache(ttl time.Duration) *searchCache {
	return &searchCache{ttl: ttl, now: time.Now, entries: make(map[string]cacheEntry)}
}

func (c *searchCache) get(key string) ([]Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.products, true
}

func (c *searchCache) put(key string, products []Product) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{products: products, expires: now.Add(c.ttl)}
}
