package sitemap

import (
	"context"
	"sync"
	"time"
)

// Cache is an in-memory, per-site cache of post inventories with TTL. Link
// suggestion runs once per generated post, but a batch of generations for
// the same site should not hammer the target's sitemap.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	fetcher *Fetcher
}

type cacheEntry struct {
	posts   []Post
	fetched time.Time
}

// NewCache creates a Cache backed by the given Fetcher.
func NewCache(f *Fetcher, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{entries: make(map[string]cacheEntry), ttl: ttl, fetcher: f}
}

// Posts returns the cached inventory for baseURL, fetching on miss or expiry.
func (c *Cache) Posts(ctx context.Context, baseURL string) ([]Post, error) {
	c.mu.RLock()
	e, ok := c.entries[baseURL]
	c.mu.RUnlock()
	if ok && time.Since(e.fetched) < c.ttl {
		return e.posts, nil
	}

	posts, err := c.fetcher.Posts(ctx, baseURL)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[baseURL] = cacheEntry{posts: posts, fetched: time.Now()}
	c.mu.Unlock()
	return posts, nil
}

// Invalidate clears the cached inventory for baseURL.
func (c *Cache) Invalidate(baseURL string) {
	c.mu.Lock()
	delete(c.entries, baseURL)
	c.mu.Unlock()
}
