// Package cache provides a bounded, TTL based in-process cache.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Clock returns the current time. Tests inject a fake.
type Clock func() time.Time

type item[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// Cache is a fixed capacity map whose entries expire after a per-entry TTL.
// Expiry is lazy: an entry is visible strictly before its deadline and
// removed the first time it is read afterwards. When full, the entry inserted
// longest ago is evicted.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[K]*list.Element
	now      Clock

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	clock           Clock
	cleanupInterval time.Duration
}

// WithClock overrides time.Now.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithCleanupInterval starts a janitor that purges expired entries.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int, opts ...Option) *Cache[K, V] {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 1 {
		capacity = 1
	}

	c := &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
		now:      o.clock,
		stop:     make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go c.janitor(o.cleanupInterval)
	}

	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(_ context.Context, key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	it := el.Value.(*item[K, V])
	if !c.now().Before(it.expiresAt) {
		c.remove(el)
		return zero, false
	}
	return it.value, true
}

// Set stores value under key for ttl. Overwriting counts as a fresh insert.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}

	if len(c.items) >= c.capacity {
		c.purgeExpired(now)
	}
	for len(c.items) >= c.capacity {
		c.remove(c.order.Front())
	}

	el := c.order.PushBack(&item[K, V]{key: key, value: value, expiresAt: now.Add(ttl)})
	c.items[key] = el
}

// Delete removes key.
func (c *Cache[K, V]) Delete(_ context.Context, key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Purge drops every expired entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeExpired(c.now())
}

// Close stops the janitor, if any.
func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[K, V]) purgeExpired(now time.Time) {
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !now.Before(el.Value.(*item[K, V]).expiresAt) {
			c.remove(el)
		}
		el = next
	}
}

func (c *Cache[K, V]) remove(el *list.Element) {
	it := c.order.Remove(el).(*item[K, V])
	delete(c.items, it.key)
}

func (c *Cache[K, V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Purge()
		case <-c.stop:
			return
		}
	}
}
