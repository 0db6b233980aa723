// Package cache provides the bounded, write-expiring store used by the key
// and discovery caches.
package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/jonboulle/clockwork"
)

// Entry is a cached value together with the time it was written.
type Entry[T any] struct {
	Value      T
	InsertedAt time.Time
}

// Store maps string keys to entries. Entries expire a fixed duration after
// they were written, reads never extend their lifetime. Once the capacity is
// reached the least recently written entries are evicted first.
//
// Expiry is measured with the configured clock so that tests can advance time
// deterministically. The underlying ttlcache enforces the capacity and drops
// entries on its own once they are older than the TTL in wall clock time.
type Store[T any] struct {
	c     *ttlcache.Cache[string, Entry[T]]
	clock clockwork.Clock
	ttl   time.Duration
}

// New creates a Store. A nil clock means the real clock.
func New[T any](ttl time.Duration, capacity uint64, clock clockwork.Clock) *Store[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Store[T]{
		c: ttlcache.New[string, Entry[T]](
			ttlcache.WithTTL[string, Entry[T]](ttl),
			ttlcache.WithDisableTouchOnHit[string, Entry[T]](),
			ttlcache.WithCapacity[string, Entry[T]](capacity),
		),
		clock: clock,
		ttl:   ttl,
	}
}

// Get returns the value stored under key if it has not expired yet.
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T

	item := s.c.Get(key)
	if item == nil || item.IsExpired() {
		return zero, false
	}

	entry := item.Value()
	if s.clock.Now().Sub(entry.InsertedAt) >= s.ttl {
		s.c.Delete(key)
		return zero, false
	}

	return entry.Value, true
}

// Set writes value under key, replacing any previous entry.
func (s *Store[T]) Set(key string, value T) {
	s.c.Set(key, Entry[T]{Value: value, InsertedAt: s.clock.Now()}, ttlcache.DefaultTTL)
}

// Clear drops all entries.
func (s *Store[T]) Clear() {
	s.c.DeleteAll()
}

// Len returns the number of entries currently held, including entries that
// expired but were not looked up since.
func (s *Store[T]) Len() int {
	return s.c.Len()
}

// TTL returns the configured write expiry.
func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}
