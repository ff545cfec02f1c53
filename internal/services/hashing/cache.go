package hashing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"scriptguard/internal/metrics"
)

type cacheKey struct {
	source string
	alg    Algorithm
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// Cache holds computed SRI strings keyed by (source, algorithm). It is owned
// by an Engine; lookups and inserts are serialised and concurrent misses for
// the same key share one computation.
type Cache struct {
	mu      sync.Mutex
	items   map[cacheKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
	metrics *metrics.Metrics
}

// NewCache creates a cache. ttl <= 0 keeps entries until invalidated.
func NewCache(ttl time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		items:   make(map[cacheKey]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		metrics: m,
	}
}

func (c *Cache) Get(source string, alg Algorithm) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(cacheKey{source, alg})
}

func (c *Cache) getLocked(k cacheKey) (string, bool) {
	e, ok := c.items[k]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.items, k)
		return "", false
	}
	return e.value, true
}

func (c *Cache) Set(source string, alg Algorithm, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := cacheEntry{value: value}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.items[cacheKey{source, alg}] = e
}

// GetOrCompute returns the cached value or runs compute once per key across
// concurrent callers. Failed computations are not cached.
//
// compute runs detached from ctx so one caller giving up does not fail the
// others sharing the flight; ctx only bounds how long this caller waits.
func (c *Cache) GetOrCompute(ctx context.Context, source string, alg Algorithm, compute func(context.Context) (string, error)) (string, error) {
	if v, ok := c.Get(source, alg); ok {
		c.metrics.CacheLookup(true)
		return v, nil
	}
	c.metrics.CacheLookup(false)

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(alg)+"\x00"+source, func() (any, error) {
		if v, ok := c.Get(source, alg); ok {
			return v, nil
		}
		v, err := compute(shared)
		if err != nil {
			return "", err
		}
		c.Set(source, alg, v)
		return v, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// Invalidate drops every algorithm's entry for source.
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if k.source == source {
			delete(c.items, k)
		}
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[cacheKey]cacheEntry)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
