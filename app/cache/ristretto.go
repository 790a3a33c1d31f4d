package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Ristretto is a Cache backed by a ristretto admission-controlled cache.
// Every entry costs 1, so maxItems bounds the number of cached pages.
type Ristretto[V any] struct {
	c *ristretto.Cache[string, V]
}

// NewRistretto creates a cache holding at most maxItems entries.
func NewRistretto[V any](maxItems int64) (*Ristretto[V], error) {
	if maxItems < 1 {
		maxItems = 1000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ristretto cache: %w", err)
	}
	return &Ristretto[V]{c: c}, nil
}

func (r *Ristretto[V]) Get(key string) (V, bool) {
	return r.c.Get(key)
}

// Set stores the value and waits for the write buffer to drain so the value
// is visible to the next Get.
func (r *Ristretto[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	r.c.SetWithTTL(key, value, 1, ttl)
	r.c.Wait()
}

// Close stops the cache's background goroutines.
func (r *Ristretto[V]) Close() {
	r.c.Close()
}
