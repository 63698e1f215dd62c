// Package cache provides a time-bounded read-through store.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a fetched value is served before refetching
const DefaultTTL = 10 * time.Minute

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock
var SystemClock Clock = ClockFunc(time.Now)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Store caches fetched values per key for a fixed TTL.
//
// Concurrent misses for the same key are not coalesced: each caller runs
// its own fetch and the last one to finish is what stays cached.
type Store[V any] struct {
	ttl   time.Duration
	clock Clock

	mu      sync.Mutex
	entries map[string]entry[V]
}

// New creates a store. A non-positive ttl uses DefaultTTL and a nil clock
// uses SystemClock.
func New[V any](ttl time.Duration, clock Clock) *Store[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Store[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// TTL returns the configured freshness window
func (s *Store[V]) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached value for key while it is younger than the TTL.
// Otherwise it calls fetch, caches a successful result stamped with the
// current time, and returns it. Errors are returned as-is and not cached.
func (s *Store[V]) Get(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := s.Peek(key); ok {
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	s.mu.Lock()
	s.entries[key] = entry[V]{value: v, fetchedAt: s.clock.Now()}
	s.mu.Unlock()

	return v, nil
}

// Peek returns the cached value for key without fetching
func (s *Store[V]) Peek(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.clock.Now().Sub(e.fetchedAt) >= s.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Len returns the number of entries held, fresh or stale
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
