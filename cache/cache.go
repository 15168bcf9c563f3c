package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt int64 // UnixNano timestamp, 0 means no expiration
}

func (it *item[V]) expired() bool {
	if it.expiresAt == 0 {
		return false
	}
	return time.Now().UnixNano() > it.expiresAt
}

// Cache is a thread-safe, generic in-process cache with optional TTL.
// Expired items are collected lazily on access; there is no background
// janitor, which keeps the cache safe to drop without a Close call.
type Cache[K comparable, V any] struct {
	store      sync.Map
	defaultTTL time.Duration
	count      atomic.Int64
}

// Option is a functional option type for Cache configuration.
type Option[K comparable, V any] func(*Cache[K, V])

// WithDefaultTTL sets the default Time-To-Live for items in the cache.
// Items set without a specific TTL will use this value; zero means no expiry.
func WithDefaultTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.defaultTTL = ttl
	}
}

// NewCache creates a new Cache instance with optional configurations.
func NewCache[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set adds or updates an item in the cache with the default TTL.
func (c *Cache[K, V]) Set(k K, v V) {
	c.SetWithTTL(k, v, c.defaultTTL)
}

// SetWithTTL adds or updates an item with a specific TTL. A zero TTL means
// the item never expires; a negative TTL removes the item.
func (c *Cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	if ttl < 0 {
		c.Delete(k)
		return
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	if _, loaded := c.store.Swap(k, &item[V]{value: v, expiresAt: expiresAt}); !loaded {
		c.count.Add(1)
	}
}

// Get retrieves an item from the cache. It returns the value and true if the
// item exists and has not expired.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zero V
	loaded, ok := c.store.Load(k)
	if !ok {
		return zero, false
	}
	it := loaded.(*item[V])
	if it.expired() {
		c.Delete(k)
		return zero, false
	}
	return it.value, true
}

// GetOrSet returns the existing value for the key if present and not expired.
// Otherwise it stores and returns the given value with the default TTL.
// The loaded result is true if the value was loaded, false if stored.
func (c *Cache[K, V]) GetOrSet(k K, v V) (V, bool) {
	if existing, found := c.Get(k); found {
		return existing, true
	}
	c.Set(k, v)
	return v, false
}

// Delete removes an item from the cache.
func (c *Cache[K, V]) Delete(k K) {
	if _, loaded := c.store.LoadAndDelete(k); loaded {
		c.count.Add(-1)
	}
}

// Len returns the current number of items, including expired items that have
// not yet been collected by a Get.
func (c *Cache[K, V]) Len() int64 {
	return c.count.Load()
}

// Clean removes all items from the cache.
func (c *Cache[K, V]) Clean() {
	c.store = sync.Map{}
	c.count.Store(0)
}
