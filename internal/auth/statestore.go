package auth

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// StateStore is a capacity-bounded, expiring key-value store for OAuth
// handshake state. Entries are evicted lazily on read once their TTL
// passes; the LRU bound caps memory if a flood of handshakes never
// completes. Safe for concurrent use.
//
// Constructed at startup and passed to whoever needs it; the process must
// not grow package-level maps for this. In a multi-instance deployment the
// handshake state has to move to a shared store instead, since an in-process
// map does not survive across instances.
type StateStore[V any] struct {
	cache *lru.Cache
	ttl   time.Duration
}

type stateEntry[V any] struct {
	value  V
	expiry time.Time
}

// NewStateStore creates a store holding at most size entries, each living
// for ttl after insertion.
func NewStateStore[V any](size int, ttl time.Duration) (*StateStore[V], error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &StateStore[V]{cache: cache, ttl: ttl}, nil
}

// Put stores value under key, replacing any previous entry.
func (s *StateStore[V]) Put(key string, value V) {
	s.cache.Add(key, stateEntry[V]{value: value, expiry: time.Now().Add(s.ttl)})
}

// Get returns the value for key if present and not expired. Expired entries
// are removed on access.
func (s *StateStore[V]) Get(key string) (V, bool) {
	var zero V
	raw, ok := s.cache.Get(key)
	if !ok {
		return zero, false
	}
	entry := raw.(stateEntry[V])
	if time.Now().After(entry.expiry) {
		s.cache.Remove(key)
		return zero, false
	}
	return entry.value, true
}

// Take returns and removes the value for key; OAuth states are single-use.
func (s *StateStore[V]) Take(key string) (V, bool) {
	value, ok := s.Get(key)
	if ok {
		s.cache.Remove(key)
	}
	return value, ok
}

// Len reports the number of entries currently held, expired or not.
func (s *StateStore[V]) Len() int {
	return s.cache.Len()
}
