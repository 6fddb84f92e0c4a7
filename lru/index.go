package lru

import (
	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Index is the associative store a Cache keeps its entries in. It is the
// contract of hashindex.Table; any implementation with the same semantics
// can back a cache.
type Index[K comparable, V any] interface {
	// Insert stores the value, overwriting the value of an existing key.
	Insert(key K, value V)

	// Find returns the value stored under the key, or None.
	Find(key K) fn.Option[V]

	// Erase removes the key and reports whether it was present.
	Erase(key K) bool

	// Size returns the number of keys stored.
	Size() int
}

// Entry is what a Cache stores in its index for every key: the cached value
// and the key's position in the recency order.
type Entry[V any] struct {
	Value V
	pos   position
}

// A compile time check to ensure hashindex.Table satisfies the Index
// interface.
var _ Index[string, Entry[int]] = (*hashindex.Table[string, Entry[int]])(nil)

// MapIndex is an Index backed by a built-in Go map.
type MapIndex[K comparable, V any] struct {
	items map[K]V
}

// NewMapIndex returns an empty MapIndex.
func NewMapIndex[K comparable, V any]() *MapIndex[K, V] {
	return &MapIndex[K, V]{
		items: make(map[K]V),
	}
}

// Insert stores the value under the key.
func (m *MapIndex[K, V]) Insert(key K, value V) {
	m.items[key] = value
}

// Find returns the value stored under the key, or None.
func (m *MapIndex[K, V]) Find(key K) fn.Option[V] {
	v, ok := m.items[key]
	if !ok {
		return fn.None[V]()
	}

	return fn.Some(v)
}

// Erase removes the key and reports whether it was present.
func (m *MapIndex[K, V]) Erase(key K) bool {
	_, ok := m.items[key]
	delete(m.items, key)

	return ok
}

// Size returns the number of keys stored.
func (m *MapIndex[K, V]) Size() int {
	return len(m.items)
}
