// Package cache provides time-bounded caches for read paths.
//
// Entries expire only by TTL. Nothing in this package invalidates an entry
// because the underlying data changed; callers that need read-after-write
// freshness must not cache.
package cache

import "time"

// Cache stores values under string keys for a bounded time.
// A ttl <= 0 stores nothing.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
}

// Nop never stores anything. Useful to disable caching.
type Nop[V any] struct{}

func (Nop[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

func (Nop[V]) Set(string, V, time.Duration) {}
