// Package memcache provides a small thread-safe in-memory cache with TTL
// support. The resolver uses it to memoize deploy targets so repeated
// operations against the same pipeline do not re-fetch its definition.
package memcache

import (
	"sync"
	"time"
)

// entry is a single cached item with its expiration time.
type entry struct {
	value      any
	expiration time.Time
}

func (e *entry) expired() bool {
	return time.Now().After(e.expiration)
}

// Cache is a thread-safe in-memory cache with per-entry TTL.
type Cache struct {
	entries    map[string]*entry
	maxSize    int
	defaultTTL time.Duration

	mu sync.Mutex
}

// New creates a cache with the given default TTL and maximum size.
// A maxSize of 0 means unlimited.
func New(defaultTTL time.Duration, maxSize int) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
	}
}

// Get returns the value for key and true if present and not expired.
// Expired entries are removed on access.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired() {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL. A ttl of 0 uses the
// default. When the cache is full the entry closest to expiry is evicted.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		if _, exists := c.entries[key]; !exists {
			c.evictOldest()
		}
	}

	c.entries[key] = &entry{
		value:      value,
		expiration: time.Now().Add(ttl),
	}
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// evictOldest removes the entry with the earliest expiration.
// Caller must hold the lock.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for k, e := range c.entries {
		if oldestKey == "" || e.expiration.Before(oldestTime) {
			oldestKey = k
			oldestTime = e.expiration
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
