package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// LocatorCache is a concurrent map for the expensive lookups of one locator.
// GetOrInsertWith runs the producer at most once per key even when many
// goroutines ask at the same time.
type LocatorCache[V any] struct {
	mu    sync.RWMutex
	items map[string]V
	group singleflight.Group
}

// NewLocatorCache returns an empty cache.
func NewLocatorCache[V any]() *LocatorCache[V] {
	return &LocatorCache[V]{items: map[string]V{}}
}

// Get returns the value stored for key.
func (c *LocatorCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// Insert stores value, replacing any previous one.
func (c *LocatorCache[V]) Insert(key string, value V) {
	c.mu.Lock()
	c.items[key] = value
	c.mu.Unlock()
}

// InsertIfAbsent stores value unless key is present and reports whether it
// stored.
func (c *LocatorCache[V]) InsertIfAbsent(key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		return false
	}
	c.items[key] = value
	return true
}

// GetOrInsertWith returns the cached value for key, computing it with fn on
// a miss. Results for which fn reports false are not stored.
func (c *LocatorCache[V]) GetOrInsertWith(key string, fn func() (V, bool)) (V, bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}
	type result struct {
		v  V
		ok bool
	}
	r, _, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return result{v, true}, nil
		}
		v, ok := fn()
		if ok {
			c.Insert(key, v)
		}
		return result{v, ok}, nil
	})
	res := r.(result)
	return res.v, res.ok
}

// Values returns a snapshot of every cached value.
func (c *LocatorCache[V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]V, 0, len(c.items))
	for _, v := range c.items {
		out = append(out, v)
	}
	return out
}

// Len returns the number of cached keys.
func (c *LocatorCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear drops every entry. Producers already running still store their
// result.
func (c *LocatorCache[V]) Clear() {
	c.mu.Lock()
	c.items = map[string]V{}
	c.mu.Unlock()
}

// CachedValue is a value computed on first use and kept until Reset.
type CachedValue[V any] struct {
	mu    sync.Mutex
	set   bool
	value V
}

// Get returns the cached value, computing it with fn on first use.
// Concurrent first callers wait for the single computation.
func (c *CachedValue[V]) Get(fn func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		c.value = fn()
		c.set = true
	}
	return c.value
}

// Reset forgets the value so the next Get computes it again.
func (c *CachedValue[V]) Reset() {
	c.mu.Lock()
	c.set = false
	var zero V
	c.value = zero
	c.mu.Unlock()
}
