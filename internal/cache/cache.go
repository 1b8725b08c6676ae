// Package cache provides the bounded memo caches used across the engine.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a bounded, concurrency-safe LRU memo cache. A nil *Cache is valid
// and caches nothing, which is what New returns for a size of zero.
type Cache[K comparable, V any] struct {
	lru *lru.Cache[K, V]
}

// New creates a cache holding at most size entries. size <= 0 disables caching.
func New[K comparable, V any](size int) *Cache[K, V] {
	if size <= 0 {
		return nil
	}
	l, err := lru.New[K, V](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		return nil
	}
	return &Cache[K, V]{lru: l}
}

// Get returns a cached value.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	return c.lru.Get(key)
}

// Add stores a value, evicting the least recently used entry when full.
func (c *Cache[K, V]) Add(key K, value V) {
	if c == nil {
		return
	}
	c.lru.Add(key, value)
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Errors are returned without caching.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Add(key, v)
	return v, nil
}

// RemoveIf drops every entry whose key satisfies match.
func (c *Cache[K, V]) RemoveIf(match func(K) bool) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, k := range c.lru.Keys() {
		if match(k) {
			c.lru.Remove(k)
			n++
		}
	}
	return n
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge empties the cache.
func (c *Cache[K, V]) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
