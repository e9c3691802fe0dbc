package cache

import "time"

type expiring[V any] struct {
	value   V
	expires time.Time
}

// TTLCache is a Cache whose entries stop being returned once they are older
// than the configured time to live. Expired entries are dropped lazily.
type TTLCache[K comparable, V any] struct {
	items *Cache[K, expiring[V]]
	ttl   time.Duration
	now   func() time.Time
}

func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items: NewCache[K, expiring[V]](),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	e, ok := c.items.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expires) {
		c.items.Delete(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value. A non-positive TTL disables caching.
func (c *TTLCache[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}
	c.items.Set(key, expiring[V]{value: value, expires: c.now().Add(c.ttl)})
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.items.Delete(key)
}

func (c *TTLCache[K, V]) Clear() {
	c.items.Clear()
}

// GetOrSet returns the live entry under key, creating it with create when
// missing or expired. Hits extend the entry's life, so keys in steady use
// never expire. With a non-positive TTL the created value is returned but
// not kept.
func (c *TTLCache[K, V]) GetOrSet(key K, create func() V) V {
	now := c.now()

	c.items.mu.Lock()
	defer c.items.mu.Unlock()
	if e, ok := c.items.items[key]; ok && now.Before(e.expires) {
		e.expires = now.Add(c.ttl)
		c.items.items[key] = e
		return e.value
	}

	v := create()
	if c.ttl > 0 {
		c.items.items[key] = expiring[V]{value: v, expires: now.Add(c.ttl)}
	}
	return v
}

// Prune drops expired entries and reports how many went.
func (c *TTLCache[K, V]) Prune() int {
	now := c.now()
	return c.items.DeleteFunc(func(_ K, e expiring[V]) bool {
		return !now.Before(e.expires)
	})
}

func (c *TTLCache[K, V]) Len() int {
	return c.items.Len()
}
