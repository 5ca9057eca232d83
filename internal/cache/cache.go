// Package cache provides a process-local TTL cache with get-or-compute
// semantics. Keys follow the `<resource>_<params>` convention used by the
// read-heavy handlers (e.g. "holidays_all", "activities_admin:1:50").
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value  any
	expiry time.Time
}

type inflight struct {
	done  chan struct{}
	value any
	err   error
}

// Cache is shared mutable state across request goroutines. A miss triggers
// exactly one computation per key: concurrent callers for the same key wait
// on the in-flight result instead of recomputing.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	inflight   map[string]*inflight
	defaultTTL time.Duration
}

// New creates a cache with the given default TTL.
func New(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Cache{
		entries:    make(map[string]entry),
		inflight:   make(map[string]*inflight),
		defaultTTL: defaultTTL,
	}
}

// GetOrSet returns the cached value for key, computing and storing it on a
// miss. A ttl of zero uses the default. Failed computations are not cached.
func (c *Cache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) (any, error)) (any, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && time.Now().Before(e.expiry) {
		c.mu.Unlock()
		return e.value, nil
	}
	if fl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.value, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	fl := &inflight{done: make(chan struct{})}
	c.inflight[key] = fl
	c.mu.Unlock()

	fl.value, fl.err = fn(ctx)
	close(fl.done)

	c.mu.Lock()
	delete(c.inflight, key)
	if fl.err == nil {
		c.entries[key] = entry{value: fl.value, expiry: time.Now().Add(ttl)}
	}
	c.mu.Unlock()

	return fl.value, fl.err
}

// Invalidate drops every entry whose key starts with prefix.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}
