package lru

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// checkInvariants asserts that the index and the recency list hold exactly
// the same keys, that every stored position points at its key and that the
// capacity bound holds.
func checkInvariants[K comparable, V any](t require.TestingT,
	c *Cache[K, V]) {

	require.Equal(t, c.index.Size(), c.order.Len())
	require.LessOrEqual(t, c.index.Size(), c.capacity)

	seen := make(map[K]struct{}, c.order.Len())
	c.order.forEach(func(pos position, key K) {
		_, dup := seen[key]
		require.False(t, dup, "key %v listed twice", key)
		seen[key] = struct{}{}

		ent, ok := c.find(key)
		require.True(t, ok, "key %v listed but not indexed", key)
		require.Equal(t, pos, ent.pos)
	})
	require.Len(t, seen, c.index.Size())
}

// TestCacheScenario replays the walk-through of a capacity three cache: fill,
// evict, refresh by Get, refresh by Set, and a miss.
func TestCacheScenario(t *testing.T) {
	t.Parallel()

	c := New[string, string](3)
	require.Equal(t, 3, c.Capacity())
	require.Zero(t, c.Len())

	for i, k := range []string{"k1", "k2", "k3"} {
		c.Set(k, "v"+k[1:])
		require.Equal(t, i+1, c.Len())
		require.Equal(t, "v"+k[1:], c.Get(k).UnwrapOrFail(t))
	}
	require.Equal(t, c.Capacity(), c.Len())

	// Adding k4 evicts k1.
	c.Set("k4", "v4")
	require.True(t, c.Get("k1").IsNone())
	require.Equal(t, "v4", c.Get("k4").UnwrapOrFail(t))
	require.Equal(t, c.Capacity(), c.Len())

	// Touch k2 so that k3 becomes least recently used, then add k5.
	require.Equal(t, "v2", c.Get("k2").UnwrapOrFail(t))
	c.Set("k5", "v5")
	require.True(t, c.Get("k3").IsNone())

	// Updating k4 makes k2 the least recently used; k6 evicts it.
	c.Set("k4", "v44")
	c.Set("k6", "v6")
	require.True(t, c.Get("k2").IsNone())

	require.Equal(t, "v44", c.Get("k4").UnwrapOrFail(t))
	require.Equal(t, "v5", c.Get("k5").UnwrapOrFail(t))
	require.Equal(t, "v6", c.Get("k6").UnwrapOrFail(t))

	require.True(t, c.Get("does-not-exist").IsNone())
	require.Equal(t, c.Capacity(), c.Len())

	checkInvariants(t, c)
}

// TestCacheEvictsFirstInserted checks that C+1 distinct inserts without reads
// evict exactly the first key.
func TestCacheEvictsFirstInserted(t *testing.T) {
	t.Parallel()

	c := New[string, string](3)
	c.Set("k1", "v1")
	c.Set("k2", "v2")
	c.Set("k3", "v3")
	c.Set("k4", "v4")

	require.True(t, c.Get("k1").IsNone())
	require.Equal(t, "v4", c.Get("k4").UnwrapOrFail(t))
	require.Equal(t, 3, c.Len())
	require.Equal(t, "v2", c.Get("k2").UnwrapOrFail(t))
	require.Equal(t, "v3", c.Get("k3").UnwrapOrFail(t))
}

// TestCacheGetRefreshes checks that reading the oldest key protects it from
// the next eviction.
func TestCacheGetRefreshes(t *testing.T) {
	t.Parallel()

	c := New[string, string](3)
	c.Set("k1", "v1")
	c.Set("k2", "v2")
	c.Set("k3", "v3")

	require.Equal(t, "v1", c.Get("k1").UnwrapOrFail(t))
	c.Set("k4", "v4")

	require.True(t, c.Get("k2").IsNone())
	require.Equal(t, "v1", c.Get("k1").UnwrapOrFail(t))
	require.Equal(t, "v3", c.Get("k3").UnwrapOrFail(t))
}

// TestCacheIdempotentSet checks that setting the same pair twice changes
// neither the size nor the value.
func TestCacheIdempotentSet(t *testing.T) {
	t.Parallel()

	c := New[int, string](2)
	c.Set(1, "a")
	c.Set(1, "a")

	require.Equal(t, 1, c.Len())
	require.Equal(t, "a", c.Get(1).UnwrapOrFail(t))
	require.Zero(t, c.Stats().Evictions)
}

// TestCacheCapacityOne covers the smallest legal cache.
func TestCacheCapacityOne(t *testing.T) {
	t.Parallel()

	var evicted []int
	c, err := NewWithConfig(Config[int, int]{
		Capacity: 1,
		OnEvict: func(k, _ int) {
			evicted = append(evicted, k)
		},
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		c.Set(i, i)
		require.Equal(t, 1, c.Len())
		require.Equal(t, i, c.Get(i).UnwrapOrFail(t))
		checkInvariants(t, c)
	}
	require.Equal(t, []int{0, 1, 2, 3}, evicted)
}

// TestCacheInvalidCapacity makes sure a cache cannot be built without room
// for at least one entry.
func TestCacheInvalidCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		require.Panics(t, func() {
			New[int, int](capacity)
		})

		_, err := NewWithConfig(Config[int, int]{Capacity: capacity})
		require.ErrorIs(t, err, ErrInvalidCapacity)
	}

	_, err := NewWithConfig(Config[int, int]{
		Capacity:    1,
		IndexConfig: &hashindex.Config[int]{LoadFactor: -1},
	})
	require.ErrorIs(t, err, hashindex.ErrInvalidLoadFactor)
}

// TestCachePeekContainsOldest checks the accessors that leave the recency
// order alone.
func TestCachePeekContainsOldest(t *testing.T) {
	t.Parallel()

	c := New[string, int](2)
	require.True(t, c.Oldest().IsNone())

	c.Set("a", 1)
	c.Set("b", 2)

	// Peeking at a does not save it from eviction.
	require.Equal(t, 1, c.Peek("a").UnwrapOrFail(t))
	require.True(t, c.Contains("a"))
	require.Equal(
		t, KeyValue[string, int]{Key: "a", Value: 1},
		c.Oldest().UnwrapOrFail(t),
	)

	c.Set("c", 3)
	require.False(t, c.Contains("a"))
	require.True(t, c.Peek("a").IsNone())
	require.Equal(t, []string{"b", "c"}, c.Keys())
}

// TestCacheRemoveAndPurge covers explicit removal and purging.
func TestCacheRemoveAndPurge(t *testing.T) {
	t.Parallel()

	var evictions int
	c, err := NewWithConfig(Config[string, int]{
		Capacity: 3,
		OnEvict: func(string, int) {
			evictions++
		},
	})
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	require.True(t, c.Remove("b"))
	require.False(t, c.Remove("b"))
	require.Equal(t, 2, c.Len())
	require.Equal(t, []string{"a", "c"}, c.Keys())
	checkInvariants(t, c)

	// The freed slot is reused without an eviction.
	c.Set("d", 4)
	require.Zero(t, evictions)
	require.Equal(t, []string{"a", "c", "d"}, c.Keys())
	checkInvariants(t, c)

	c.Purge()
	require.Zero(t, c.Len())
	require.Empty(t, c.Keys())
	require.True(t, c.Get("a").IsNone())
	require.Zero(t, evictions)

	c.Set("e", 5)
	require.Equal(t, 5, c.Get("e").UnwrapOrFail(t))
	checkInvariants(t, c)
}

// TestCachePurgeSharedIndex checks that Purge empties the cache even when
// the index factory keeps returning the same instance.
func TestCachePurgeSharedIndex(t *testing.T) {
	t.Parallel()

	shared := NewMapIndex[int, Entry[int]]()
	c, err := NewWithConfig(Config[int, int]{
		Capacity: 2,
		NewIndex: func() Index[int, Entry[int]] {
			return shared
		},
	})
	require.NoError(t, err)

	c.Set(1, 1)
	c.Set(2, 2)
	c.Purge()

	require.Zero(t, c.Len())
	require.Zero(t, shared.Size())
	require.True(t, c.Get(1).IsNone())
	checkInvariants(t, c)

	c.Set(3, 3)
	c.Set(4, 4)
	c.Set(5, 5)
	require.Equal(t, []int{4, 5}, c.Keys())
	checkInvariants(t, c)
}

// TestCacheSelfUnequalKey checks that a NaN key is not stored and so cannot
// break a later eviction.
func TestCacheSelfUnequalKey(t *testing.T) {
	t.Parallel()

	c := New[float64, int](1)
	c.Set(math.NaN(), 1)
	require.Zero(t, c.Len())
	require.Empty(t, c.Keys())

	c.Set(2, 2)
	c.Set(3, 3)
	require.Equal(t, []float64{3}, c.Keys())
	require.EqualValues(t, 1, c.Stats().Evictions)
	checkInvariants(t, c)
}

// TestCacheStats checks the hit, miss and eviction counters.
func TestCacheStats(t *testing.T) {
	t.Parallel()

	c := New[int, int](2)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1)
	c.Get(3)
	c.Set(3, 3)

	require.Equal(t, Stats{
		Hits:      1,
		Misses:    1,
		Evictions: 1,
		Len:       2,
		Capacity:  2,
	}, c.Stats())
}

// TestCacheMapIndex runs the eviction scenario on a map backed index, which
// shows the cache only relies on the Index contract.
func TestCacheMapIndex(t *testing.T) {
	t.Parallel()

	c, err := NewWithConfig(Config[string, string]{
		Capacity: 3,
		NewIndex: func() Index[string, Entry[string]] {
			return NewMapIndex[string, Entry[string]]()
		},
	})
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), fmt.Sprintf("v%d", i))
	}
	require.True(t, c.Get("k1").IsNone())
	require.Equal(t, "v4", c.Get("k4").UnwrapOrFail(t))
	require.Equal(t, 3, c.Len())
	checkInvariants(t, c)
}

// cacheModel is the reference behaviour the property test compares against:
// keys in recency order, oldest first, and their values.
type cacheModel struct {
	capacity int
	order    []int
	values   map[int]int
}

func (m *cacheModel) touch(k int) {
	m.order = slices.DeleteFunc(m.order, func(o int) bool {
		return o == k
	})
	m.order = append(m.order, k)
}

func (m *cacheModel) set(k, v int) (int, bool) {
	var (
		evicted    int
		didEvict   bool
		_, present = m.values[k]
	)
	if !present && len(m.order) == m.capacity {
		evicted, didEvict = m.order[0], true
		m.order = m.order[1:]
		delete(m.values, evicted)
	}
	m.values[k] = v
	m.touch(k)

	return evicted, didEvict
}

// testCacheModel drives a cache with random operations and compares it to
// the model after every step.
func testCacheModel(t *rapid.T, newIndex func() Index[int, Entry[int]]) {
	capacity := rapid.IntRange(1, 8).Draw(t, "capacity")

	var lastEvicted []int
	c, err := NewWithConfig(Config[int, int]{
		Capacity: capacity,
		NewIndex: newIndex,
		OnEvict: func(k, _ int) {
			lastEvicted = append(lastEvicted, k)
		},
	})
	require.NoError(t, err)

	model := &cacheModel{
		capacity: capacity,
		values:   make(map[int]int),
	}
	key := rapid.IntRange(0, 16)

	t.Repeat(map[string]func(*rapid.T){
		"set": func(t *rapid.T) {
			k := key.Draw(t, "key")
			v := rapid.Int().Draw(t, "value")

			lastEvicted = nil
			c.Set(k, v)

			evicted, ok := model.set(k, v)
			if ok {
				require.Equal(t, []int{evicted}, lastEvicted)
			} else {
				require.Empty(t, lastEvicted)
			}
		},
		"get": func(t *rapid.T) {
			k := key.Draw(t, "key")

			got := c.Get(k)
			want, ok := model.values[k]
			require.Equal(t, ok, got.IsSome())
			if ok {
				require.Equal(t, want, got.UnwrapOr(-1))
				model.touch(k)
			}
		},
		"peek": func(t *rapid.T) {
			k := key.Draw(t, "key")

			_, ok := model.values[k]
			require.Equal(t, ok, c.Peek(k).IsSome())
		},
		"remove": func(t *rapid.T) {
			k := key.Draw(t, "key")

			_, ok := model.values[k]
			require.Equal(t, ok, c.Remove(k))
			if ok {
				delete(model.values, k)
				model.order = slices.DeleteFunc(
					model.order, func(o int) bool {
						return o == k
					},
				)
			}
		},
		"": func(t *rapid.T) {
			// An empty model order is nil while Keys returns an
			// empty slice, so compare elements rather than values.
			require.Truef(t, slices.Equal(model.order, c.Keys()),
				"recency order: model %v, cache %v", model.order,
				c.Keys())
			require.Equal(t, len(model.values), c.Len())
			require.LessOrEqual(t, c.Len(), c.Capacity())
			checkInvariants(t, c)
		},
	})
}

// TestCacheModelHashIndex checks the cache against the model on top of the
// hash index. Tiny initial tables make rehashes frequent.
func TestCacheModelHashIndex(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		testCacheModel(t, func() Index[int, Entry[int]] {
			return hashindex.New[int, Entry[int]](
				&hashindex.Config[int]{InitialBuckets: 1},
			)
		})
	})
}

// TestCacheModelMapIndex checks the cache against the model on top of a Go
// map.
func TestCacheModelMapIndex(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		testCacheModel(t, func() Index[int, Entry[int]] {
			return NewMapIndex[int, Entry[int]]()
		})
	})
}

// TestCacheIndexStats checks that hash index statistics are surfaced and that
// other indexes report none.
func TestCacheIndexStats(t *testing.T) {
	t.Parallel()

	c, err := NewWithConfig(Config[int, int]{
		Capacity:    32,
		IndexConfig: &hashindex.Config[int]{InitialBuckets: 2},
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		c.Set(i, i)
	}

	stats := c.IndexStats().UnwrapOrFail(t)
	require.Equal(t, 10, stats.Entries)
	require.Greater(t, stats.Buckets, 2)
	require.NotZero(t, stats.Rehashes)
	require.Less(t, stats.Load, hashindex.DefaultLoadFactor)

	m, err := NewWithConfig(Config[int, int]{
		Capacity: 1,
		NewIndex: func() Index[int, Entry[int]] {
			return NewMapIndex[int, Entry[int]]()
		},
	})
	require.NoError(t, err)
	require.True(t, m.IndexStats().IsNone())
}
