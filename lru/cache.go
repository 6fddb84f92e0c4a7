package lru

import (
	"fmt"

	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// KeyValue is a key together with its cached value.
type KeyValue[K comparable, V any] struct {
	Key   K
	Value V
}

// Stats holds the counters a Cache maintains over its lifetime.
type Stats struct {
	// Hits is the number of Get calls that found their key.
	Hits uint64

	// Misses is the number of Get calls that did not.
	Misses uint64

	// Evictions is the number of entries dropped to make room for new
	// keys.
	Evictions uint64

	// Len is the number of entries currently cached.
	Len int

	// Capacity is the configured bound.
	Capacity int
}

// Cache is a fixed capacity cache that evicts the least recently used entry
// when a new key is added to a full cache. Entries live in an Index; their
// order of use is tracked in a recency list whose positions are stored next
// to the values.
//
// Both Get and Set count as a use of the key. Keys must be equal to
// themselves: a key for which key != key, such as a NaN float, can never be
// found again and is not stored. Cache is not safe for concurrent use, see
// SyncCache.
type Cache[K comparable, V any] struct {
	capacity int

	index    Index[K, Entry[V]]
	newIndex func() Index[K, Entry[V]]
	order    *recencyList[K]

	onEvict EvictCallback[K, V]

	hits, misses, evictions uint64
}

// New returns an empty cache holding at most capacity entries, backed by a
// hashindex.Table with the default config. It panics if capacity is below
// one.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	c, err := NewWithConfig(Config[K, V]{Capacity: capacity})
	if err != nil {
		panic(fmt.Sprintf("lru: %v", err))
	}

	return c
}

// NewWithConfig returns an empty cache built from the config, or an error if
// the config does not validate.
func NewWithConfig[K comparable, V any](cfg Config[K, V]) (*Cache[K, V],
	error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	newIndex := cfg.indexFactory()

	log.Debugf("Creating LRU cache with capacity %d", cfg.Capacity)

	return &Cache[K, V]{
		capacity: cfg.Capacity,
		index:    newIndex(),
		newIndex: newIndex,
		order:    newRecencyList[K](min(cfg.Capacity, 1024)),
		onEvict:  cfg.OnEvict,
	}, nil
}

// find returns the entry stored for the key, if any.
func (c *Cache[K, V]) find(key K) (Entry[V], bool) {
	ent := c.index.Find(key)
	if ent.IsNone() {
		return Entry[V]{}, false
	}

	return ent.UnwrapOr(Entry[V]{}), true
}

// Get returns the value cached for the key and marks the key as the most
// recently used one. A missing key yields None and changes nothing.
func (c *Cache[K, V]) Get(key K) fn.Option[V] {
	ent, ok := c.find(key)
	if !ok {
		c.misses++
		return fn.None[V]()
	}

	c.hits++
	c.order.MoveToBack(ent.pos)

	return fn.Some(ent.Value)
}

// Peek returns the value cached for the key without touching its recency.
func (c *Cache[K, V]) Peek(key K) fn.Option[V] {
	ent, ok := c.find(key)
	if !ok {
		return fn.None[V]()
	}

	return fn.Some(ent.Value)
}

// Contains reports whether the key is cached, without touching its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.find(key)
	return ok
}

// Set caches the value under the key and marks the key as the most recently
// used one. If the key is new and the cache is full, the least recently used
// entry is evicted first.
func (c *Cache[K, V]) Set(key K, value V) {
	// A key that is not equal to itself could be inserted but never
	// looked up or evicted.
	if key != key {
		log.Debugf("Ignoring key %v that is not equal to itself", key)
		return
	}

	if ent, ok := c.find(key); ok {
		ent.Value = value
		c.index.Insert(key, ent)
		c.order.MoveToBack(ent.pos)

		return
	}

	if c.index.Size() >= c.capacity {
		c.evictOldest()
	}

	pos := c.order.PushBack(key)
	c.index.Insert(key, Entry[V]{Value: value, pos: pos})
}

// Remove drops the key from the cache and reports whether it was present.
// The eviction callback is not called.
func (c *Cache[K, V]) Remove(key K) bool {
	ent, ok := c.find(key)
	if !ok {
		return false
	}

	c.order.Remove(ent.pos)
	c.index.Erase(key)

	return true
}

// Oldest returns the least recently used entry without touching it.
func (c *Cache[K, V]) Oldest() fn.Option[KeyValue[K, V]] {
	_, key, ok := c.order.Front()
	if !ok {
		return fn.None[KeyValue[K, V]]()
	}

	ent := c.mustFind(key)

	return fn.Some(KeyValue[K, V]{Key: key, Value: ent.Value})
}

// Keys returns the cached keys from least to most recently used.
func (c *Cache[K, V]) Keys() []K {
	return c.order.Keys()
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.index.Size()
}

// Capacity returns the maximum number of entries the cache holds.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Purge drops every entry. Counters are kept and no callbacks fire.
func (c *Cache[K, V]) Purge() {
	// Erase the keys first, the index factory may hand back the same
	// instance.
	c.order.forEach(func(_ position, key K) {
		c.index.Erase(key)
	})
	c.index = c.newIndex()
	c.order.Reset()
}

// Stats returns the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       c.index.Size(),
		Capacity:  c.capacity,
	}
}

// indexStatser is implemented by indexes that keep table statistics, such as
// hashindex.Table.
type indexStatser interface {
	Stats() hashindex.Stats
}

// IndexStats returns the statistics of the underlying index, or None if the
// index does not keep any.
func (c *Cache[K, V]) IndexStats() fn.Option[hashindex.Stats] {
	s, ok := c.index.(indexStatser)
	if !ok {
		return fn.None[hashindex.Stats]()
	}

	return fn.Some(s.Stats())
}

// evictOldest drops the least recently used entry.
func (c *Cache[K, V]) evictOldest() {
	pos, key, ok := c.order.Front()
	if !ok {
		panic("lru: index not empty but recency list is")
	}
	ent := c.mustFind(key)

	c.order.Remove(pos)
	c.index.Erase(key)
	c.evictions++

	log.Tracef("Evicted least recently used key %v", key)

	if c.onEvict != nil {
		c.onEvict(key, ent.Value)
	}
}

// mustFind returns the entry of a key taken from the recency list. A miss
// means the list and the index went out of sync.
func (c *Cache[K, V]) mustFind(key K) Entry[V] {
	ent, ok := c.find(key)
	if !ok {
		panic(fmt.Sprintf("lru: key %v in recency list but not in "+
			"index", key))
	}

	return ent
}
