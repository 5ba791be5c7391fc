package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL map. Entries expire ttl after their last Set or Touch.
type Cache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	m       map[string]entry[V]
	onEvict func(key string, val V)
	now     func() time.Time
}

type entry[V any] struct {
	val V
	exp time.Time
}

type Option[V any] func(*Cache[V])

// WithOnEvict registers a callback run for entries removed by expiry.
// It is not called for explicit Delete.
func WithOnEvict[V any](fn func(key string, val V)) Option[V] {
	return func(c *Cache[V]) { c.onEvict = fn }
}

func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	c := &Cache[V]{
		ttl: ttl,
		m:   make(map[string]entry[V]),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if now.After(e.exp) {
		c.expire(key, e)
		return zero, false
	}

	return e.val, true
}

func (c *Cache[V]) Set(key string, val V) {
	c.SetWithTTL(key, val, c.ttl)
}

func (c *Cache[V]) SetWithTTL(key string, val V, ttl time.Duration) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Touch pushes the expiry of a live entry forward by the cache ttl.
func (c *Cache[V]) Touch(key string) bool {
	now := c.now()

	c.mu.Lock()
	e, ok := c.m[key]
	if ok && !now.After(e.exp) {
		e.exp = now.Add(c.ttl)
		c.m[key] = e
	}
	c.mu.Unlock()

	return ok && !now.After(e.exp)
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry[V])
	c.mu.Unlock()
}

// Sweep drops every expired entry and returns how many went.
func (c *Cache[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	var evicted []evictedEntry[V]
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			evicted = append(evicted, evictedEntry[V]{key: k, val: e.val})
		}
	}
	c.mu.Unlock()

	if c.onEvict != nil {
		for _, e := range evicted {
			c.onEvict(e.key, e.val)
		}
	}
	return len(evicted)
}

// RunJanitor sweeps on every tick until ctx is done.
func (c *Cache[V]) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

type evictedEntry[V any] struct {
	key string
	val V
}

func (c *Cache[V]) expire(key string, seen entry[V]) {
	c.mu.Lock()
	cur, ok := c.m[key]
	// a concurrent Set may have refreshed the entry
	stale := ok && cur.exp.Equal(seen.exp)
	if stale {
		delete(c.m, key)
	}
	c.mu.Unlock()

	if stale && c.onEvict != nil {
		c.onEvict(key, seen.val)
	}
}
