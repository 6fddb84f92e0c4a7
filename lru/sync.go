package lru

import (
	"sync"

	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// SyncCache wraps a Cache with a mutex so it can be shared between
// goroutines. Every method, including Get, takes the lock exclusively since
// reads reorder the recency list.
type SyncCache[K comparable, V any] struct {
	mu    sync.Mutex
	cache *Cache[K, V]
}

// NewSync returns an empty SyncCache holding at most capacity entries. It
// panics if capacity is below one.
func NewSync[K comparable, V any](capacity int) *SyncCache[K, V] {
	return &SyncCache[K, V]{
		cache: New[K, V](capacity),
	}
}

// NewSyncWithConfig returns an empty SyncCache built from the config.
func NewSyncWithConfig[K comparable, V any](
	cfg Config[K, V]) (*SyncCache[K, V], error) {

	c, err := NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &SyncCache[K, V]{cache: c}, nil
}

// Get returns the value cached for the key and marks it most recently used.
func (s *SyncCache[K, V]) Get(key K) fn.Option[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Get(key)
}

// Peek returns the value cached for the key without touching its recency.
func (s *SyncCache[K, V]) Peek(key K) fn.Option[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Peek(key)
}

// Contains reports whether the key is cached.
func (s *SyncCache[K, V]) Contains(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Contains(key)
}

// Set caches the value under the key, evicting if needed.
func (s *SyncCache[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Set(key, value)
}

// GetOrSet returns the cached value for the key if present. Otherwise it
// caches and returns the value produced by f, all under a single lock so
// concurrent callers for the same key agree on one value.
func (s *SyncCache[K, V]) GetOrSet(key K, f func() V) V {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v := s.cache.Get(key); v.IsSome() {
		var zero V
		return v.UnwrapOr(zero)
	}

	v := f()
	s.cache.Set(key, v)

	return v
}

// Remove drops the key and reports whether it was present.
func (s *SyncCache[K, V]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Remove(key)
}

// Oldest returns the least recently used entry.
func (s *SyncCache[K, V]) Oldest() fn.Option[KeyValue[K, V]] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Oldest()
}

// Keys returns the cached keys from least to most recently used.
func (s *SyncCache[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Keys()
}

// Len returns the number of cached entries.
func (s *SyncCache[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Len()
}

// Capacity returns the maximum number of entries.
func (s *SyncCache[K, V]) Capacity() int {
	return s.cache.Capacity()
}

// Purge drops every entry.
func (s *SyncCache[K, V]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge()
}

// Stats returns the cache counters.
func (s *SyncCache[K, V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Stats()
}

// IndexStats returns the statistics of the underlying index, if it keeps any.
func (s *SyncCache[K, V]) IndexStats() fn.Option[hashindex.Stats] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.IndexStats()
}
