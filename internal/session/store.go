package session

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time // zero means never
}

// Store is a concurrency-safe map whose entries expire.
type Store[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
	now   func() time.Time
}

// NewStore creates an empty store using the wall clock.
func NewStore[V any]() *Store[V] {
	return &Store[V]{
		items: make(map[string]entry[V]),
		now:   time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *Store[V]) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Put stores value under key for ttl. A ttl <= 0 never expires.
func (s *Store[V]) Put(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry[V]{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.items[key] = e
}

// Get returns the live value for key. Expired entries are removed and
// reported as missing.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if s.expired(e) {
		delete(s.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes key and reports whether a live entry was present.
func (s *Store[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		return false
	}
	delete(s.items, key)
	return !s.expired(e)
}

// Sweep removes every expired entry and returns how many were removed.
func (s *Store[V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.items {
		if s.expired(e) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[V]) expired(e entry[V]) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}
