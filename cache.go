package portfolio

import (
	"sync"
	"time"
)

// maxCacheEntries bounds the cache before expired entries are swept on Set.
const maxCacheEntries = 1024

// PageCache is an in-memory cache of upstream read responses with per-entry
// TTL. Entries are tagged with the page paths that render them, and
// Revalidate drops every entry carrying one of the given paths.
type PageCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	byTag   map[string]map[string]struct{}
	now     func() time.Time
}

type cacheEntry struct {
	body    []byte
	expires time.Time
	tags    []string
}

// NewPageCache creates an empty PageCache.
func NewPageCache() *PageCache {
	return &PageCache{
		entries: make(map[string]cacheEntry),
		byTag:   make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (e cacheEntry) valid(now time.Time) bool {
	return now.Before(e.expires)
}

// Get returns the cached body for key if it has not expired.
func (c *PageCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.valid(c.now()) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !cur.valid(c.now()) {
			c.remove(key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.body, true
}

// Set stores body under key for ttl. A non-positive ttl is not cached.
func (c *PageCache) Set(key string, body []byte, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	if len(c.entries) >= maxCacheEntries {
		c.sweep()
	}
	c.entries[key] = cacheEntry{body: body, expires: c.now().Add(ttl), tags: tags}
	for _, t := range tags {
		keys := c.byTag[t]
		if keys == nil {
			keys = make(map[string]struct{})
			c.byTag[t] = keys
		}
		keys[key] = struct{}{}
	}
}

// Revalidate drops every entry tagged with one of paths.
func (c *PageCache) Revalidate(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		for key := range c.byTag[p] {
			c.remove(key)
		}
	}
}

// Invalidate clears the cache so the next read goes upstream.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.byTag = make(map[string]map[string]struct{})
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// remove deletes key and its tag index entries. Callers hold mu.
func (c *PageCache) remove(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, t := range e.tags {
		if keys := c.byTag[t]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.byTag, t)
			}
		}
	}
}

// sweep drops expired entries. Callers hold mu.
func (c *PageCache) sweep() {
	now := c.now()
	for key, e := range c.entries {
		if !e.valid(now) {
			c.remove(key)
		}
	}
}
