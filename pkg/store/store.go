// Package store provides the small keyed in-memory stores modelbot keeps per
// user and per chat. Entries are never evicted by default; a TTL policy can
// be plugged in without touching callers.
package store

import (
	"sync"
	"time"
)

// EvictionPolicy decides whether an entry stored at storedAt is gone at now.
type EvictionPolicy interface {
	Expired(storedAt, now time.Time) bool
}

// NeverEvict keeps entries until they are deleted.
type NeverEvict struct{}

// Expired always reports false.
func (NeverEvict) Expired(time.Time, time.Time) bool { return false }

// TTL expires entries older than the duration.
type TTL time.Duration

// Expired reports whether the entry outlived the TTL.
func (t TTL) Expired(storedAt, now time.Time) bool {
	return now.Sub(storedAt) > time.Duration(t)
}

type options struct {
	policy EvictionPolicy
	now    func() time.Time
}

// Option configures a Store.
type Option func(*options)

// WithPolicy sets the eviction policy.
func WithPolicy(p EvictionPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

type item[V any] struct {
	value    V
	storedAt time.Time
}

// Store is a concurrency-safe map from K to V.
type Store[K comparable, V any] struct {
	mu     sync.RWMutex
	items  map[K]item[V]
	policy EvictionPolicy
	now    func() time.Time
}

// New creates an empty store.
func New[K comparable, V any](opts ...Option) *Store[K, V] {
	o := options{policy: NeverEvict{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[K, V]{
		items:  make(map[K]item[V]),
		policy: o.policy,
		now:    o.now,
	}
}

// Get returns the value stored under k.
func (s *Store[K, V]) Get(k K) (V, bool) {
	s.mu.RLock()
	it, ok := s.items[k]
	s.mu.RUnlock()

	if !ok || s.policy.Expired(it.storedAt, s.now()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores v under k, replacing any previous value.
func (s *Store[K, V]) Set(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[k] = item[V]{value: v, storedAt: s.now()}
}

// SetIfAbsent stores v only when k holds no live value and reports whether
// it did.
func (s *Store[K, V]) SetIfAbsent(k K, v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if it, ok := s.items[k]; ok && !s.policy.Expired(it.storedAt, now) {
		return false
	}
	s.items[k] = item[V]{value: v, storedAt: now}
	return true
}

// Delete removes k. Deleting a missing key is a no-op.
func (s *Store[K, V]) Delete(k K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, k)
}

// Take removes k and returns the value it held.
func (s *Store[K, V]) Take(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[k]
	delete(s.items, k)
	if !ok || s.policy.Expired(it.storedAt, s.now()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Len returns the number of live entries.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	n := 0
	for _, it := range s.items {
		if !s.policy.Expired(it.storedAt, now) {
			n++
		}
	}
	return n
}

// Sweep drops expired entries and returns how many were removed.
func (s *Store[K, V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, it := range s.items {
		if s.policy.Expired(it.storedAt, now) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}
