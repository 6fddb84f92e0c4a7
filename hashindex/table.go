package hashindex

import (
	"fmt"
	"iter"

	"github.com/lightningnetwork/lnd/cachecore/lnutils"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// entry is a single key/value pair, linked into the chain of its bucket.
type entry[K comparable, V any] struct {
	key   K
	value V
	next  *entry[K, V]
}

// Table is a hash index that resolves collisions by chaining. Every bucket
// holds a singly linked list of entries; the bucket count doubles whenever
// the ratio of entries to buckets reaches the configured load factor after a
// new key was inserted.
//
// Table is not safe for concurrent use.
type Table[K comparable, V any] struct {
	buckets []*entry[K, V]

	// count is the number of distinct keys across all chains.
	count int

	// rehashes counts how many times the bucket array was rebuilt.
	rehashes uint64

	cfg Config[K]
}

// Stats is a snapshot of the shape of a Table.
type Stats struct {
	// Entries is the number of keys stored.
	Entries int

	// Buckets is the current bucket count.
	Buckets int

	// Rehashes is the number of times the buckets were rebuilt.
	Rehashes uint64

	// LongestChain is the length of the most crowded bucket.
	LongestChain int

	// Load is Entries/Buckets.
	Load float64
}

// New creates an empty table from the config. A nil config selects all the
// defaults. New panics if the config does not validate, since no usable
// table can be built from it.
func New[K comparable, V any](cfg *Config[K]) *Table[K, V] {
	var c Config[K]
	if cfg != nil {
		c = *cfg
	}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("hashindex: invalid config: %v", err))
	}
	c = c.withDefaults()

	log.Debugf("Creating hash index with %d buckets, load factor %v",
		c.InitialBuckets, c.LoadFactor)

	return &Table[K, V]{
		buckets: make([]*entry[K, V], c.InitialBuckets),
		cfg:     c,
	}
}

// NewDefault creates an empty table with the default config.
func NewDefault[K comparable, V any]() *Table[K, V] {
	return New[K, V](nil)
}

// bucketFor returns the index of the bucket that owns the key for a table
// of n buckets.
func (t *Table[K, V]) bucketFor(key K, n int) int {
	return int(t.cfg.Hasher.Hash(key) % uint64(n))
}

// lookup returns the entry holding the key, or nil.
func (t *Table[K, V]) lookup(key K) *entry[K, V] {
	head := t.buckets[t.bucketFor(key, len(t.buckets))]
	for e := head; e != nil; e = e.next {
		if e.key == key {
			return e
		}
	}

	return nil
}

// Insert stores the value under the key. An existing key has its value
// overwritten in place. A new key is pushed to the front of its chain, after
// which the table doubles its bucket count if the load factor was reached.
func (t *Table[K, V]) Insert(key K, value V) {
	idx := t.bucketFor(key, len(t.buckets))
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			e.value = value
			return
		}
	}

	t.buckets[idx] = &entry[K, V]{
		key:   key,
		value: value,
		next:  t.buckets[idx],
	}
	t.count++

	if t.load() >= t.cfg.LoadFactor {
		t.Rehash(len(t.buckets) * 2)
	}
}

// Find returns the value stored under the key, or None if the key is absent.
func (t *Table[K, V]) Find(key K) fn.Option[V] {
	e := t.lookup(key)
	if e == nil {
		return fn.None[V]()
	}

	return fn.Some(e.value)
}

// Contains reports whether the key is present.
func (t *Table[K, V]) Contains(key K) bool {
	return t.lookup(key) != nil
}

// Erase removes the key from the table and reports whether it was present.
// Erasing an absent key is a no-op.
func (t *Table[K, V]) Erase(key K) bool {
	link := &t.buckets[t.bucketFor(key, len(t.buckets))]
	for *link != nil {
		if (*link).key == key {
			*link = (*link).next
			t.count--

			return true
		}
		link = &(*link).next
	}

	return false
}

// Rehash rebuilds the table with n buckets, relinking every entry into the
// chain that owns it under the new bucket count. Values below one are
// clamped to one. The order of entries within a chain is not preserved.
func (t *Table[K, V]) Rehash(n int) {
	if n < 1 {
		n = 1
	}

	old := len(t.buckets)
	buckets := make([]*entry[K, V], n)
	for _, head := range t.buckets {
		for e := head; e != nil; {
			next := e.next

			idx := t.bucketFor(e.key, n)
			e.next = buckets[idx]
			buckets[idx] = e

			e = next
		}
	}
	t.buckets = buckets
	t.rehashes++

	log.Tracef("Rehashed %d entries from %d to %d buckets, chain "+
		"lengths: %v", t.count, old, n,
		lnutils.NewLogClosure(func() string {
			return fmt.Sprint(t.chainLengths())
		}))
}

// Size returns the number of keys stored.
func (t *Table[K, V]) Size() int {
	return t.count
}

// BucketCount returns the current number of buckets.
func (t *Table[K, V]) BucketCount() int {
	return len(t.buckets)
}

// LoadFactor returns the configured resize threshold.
func (t *Table[K, V]) LoadFactor() float64 {
	return t.cfg.LoadFactor
}

// load returns count/buckets as a real number.
func (t *Table[K, V]) load() float64 {
	return float64(t.count) / float64(len(t.buckets))
}

// All returns an iterator over every key/value pair. The iteration order is
// unspecified. The table must not be modified while iterating.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, head := range t.buckets {
			for e := head; e != nil; e = e.next {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

// ForEach calls f for every key/value pair until f returns false.
func (t *Table[K, V]) ForEach(f func(K, V) bool) {
	for k, v := range t.All() {
		if !f(k, v) {
			return
		}
	}
}

// Keys returns all keys in unspecified order.
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, 0, t.count)
	for k := range t.All() {
		keys = append(keys, k)
	}

	return keys
}

// Clear drops every entry and shrinks the table back to its initial bucket
// count.
func (t *Table[K, V]) Clear() {
	t.buckets = make([]*entry[K, V], t.cfg.InitialBuckets)
	t.count = 0
}

// Stats returns a snapshot of the table's shape. It walks every chain, so it
// costs O(buckets + entries).
func (t *Table[K, V]) Stats() Stats {
	var longest int
	for _, l := range t.chainLengths() {
		longest = max(longest, l)
	}

	return Stats{
		Entries:      t.count,
		Buckets:      len(t.buckets),
		Rehashes:     t.rehashes,
		LongestChain: longest,
		Load:         t.load(),
	}
}

// chainLengths returns the length of every chain, in bucket order.
func (t *Table[K, V]) chainLengths() []int {
	lengths := make([]int, len(t.buckets))
	for i, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			lengths[i]++
		}
	}

	return lengths
}
