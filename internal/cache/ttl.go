// Package cache holds process-local snapshots that expire after a fixed TTL.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTL caches one value per key until it expires. There is no explicit
// invalidation; writes elsewhere become visible after at most one TTL.
type TTL[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[T]
	group   singleflight.Group
}

func NewTTL[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
}

// WithClock replaces the clock. Used by tests.
func (c *TTL[T]) WithClock(now func() time.Time) *TTL[T] {
	c.now = now
	return c
}

func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (c *TTL[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// GetOrLoad returns the cached value for key, or runs load once for all
// concurrent callers that miss. Failed loads are not cached. load is
// detached from ctx cancellation. A caller whose ctx ends stops waiting and
// gets ctx.Err().
func (c *TTL[T]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		return res.Val.(T), false, nil
	}
}
