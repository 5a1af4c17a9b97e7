// Package cache provides a small TTL cache for balance and price lookups.
// Optimization runs bypass or invalidate it so plans never act on stale numbers.
package cache

import (
	"sync"
	"time"
)

// Clock abstracts time so expiry is testable.
type Clock func() time.Time

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTL is a thread-safe map with per-cache time-to-live and explicit invalidation.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	entries map[K]entry[V]
}

// NewTTL builds a cache; a nil clock defaults to time.Now.
func NewTTL[K comparable, V any](ttl time.Duration, now Clock) *TTL[K, V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[K, V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the cached value if present and unexpired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores a value with the cache's TTL.
func (c *TTL[K, V]) Put(key K, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops a single key.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Reset drops every entry; called at the start of each optimization run.
func (c *TTL[K, V]) Reset() {
	c.mu.Lock()
	c.entries = make(map[K]entry[V])
	c.mu.Unlock()
}

// Len reports live entries, expiring lazily.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			continue
		}
		n++
	}
	return n
}
