package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FillFunc fetches a product listing from the upstream API on cache miss.
type FillFunc func(ctx context.Context) (*Page, error)

type cacheEntry struct {
	page      *Page
	expiresAt time.Time
}

// Cache is a TTL cache for product listings keyed by listing name
// ("home:1", "filter:PlayStation:1", ...). It replaces the ad hoc
// module-level caches the storefront previously relied on: ownership is
// explicit, entries expire, and callers can bust a key after an admin write.
//
// Concurrent misses for the same key are collapsed into a single upstream
// fetch via singleflight.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	group singleflight.Group
}

// NewCache creates a Cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached page for key, fetching it with fill when the entry
// is absent or expired. A fill error is returned to every collapsed caller
// and nothing is cached.
func (c *Cache) Get(ctx context.Context, key string, fill FillFunc) (*Page, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.page, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have filled the key
		// between the read above and acquiring the flight.
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && time.Now().Before(e.expiresAt) {
			return e.page, nil
		}

		page, err := fill(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry{page: page, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Page), nil
}

// Bust drops a single key.
func (c *Cache) Bust(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// BustAll drops every cached listing. Called after admin catalog writes.
func (c *Cache) BustAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len reports the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
