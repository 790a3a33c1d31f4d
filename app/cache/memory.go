package cache

import (
	"sync"
	"time"

	"yatube/app/clock"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is an in-process Cache. Expired entries are dropped on read and
// swept on every Set.
// This implementation is safe for concurrent use.
type Memory[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
	clock clock.Clock
}

// NewMemory creates an empty cache. A nil clock uses the wall clock.
func NewMemory[V any](c clock.Clock) *Memory[V] {
	if c == nil {
		c = clock.Real{}
	}
	return &Memory[V]{
		items: make(map[string]entry[V]),
		clock: c,
	}
}

func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !m.clock.Now().Before(e.expiresAt) {
		delete(m.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (m *Memory[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	for k, e := range m.items {
		if !now.Before(e.expiresAt) {
			delete(m.items, k)
		}
	}
	m.items[key] = entry[V]{
		value:     value,
		expiresAt: now.Add(ttl),
	}
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
