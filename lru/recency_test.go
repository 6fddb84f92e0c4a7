package lru

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRecencyListOrder checks push, move and remove keep the expected order.
func TestRecencyListOrder(t *testing.T) {
	t.Parallel()

	l := newRecencyList[string](0)
	_, _, ok := l.Front()
	require.False(t, ok)

	a := l.PushBack("a")
	b := l.PushBack("b")
	c := l.PushBack("c")
	require.Equal(t, []string{"a", "b", "c"}, l.Keys())
	require.Equal(t, 3, l.Len())

	l.MoveToBack(a)
	require.Equal(t, []string{"b", "c", "a"}, l.Keys())

	// Moving the tail is a no-op.
	l.MoveToBack(a)
	require.Equal(t, []string{"b", "c", "a"}, l.Keys())

	l.MoveToBack(c)
	require.Equal(t, []string{"b", "a", "c"}, l.Keys())

	pos, key, ok := l.Front()
	require.True(t, ok)
	require.Equal(t, "b", key)
	require.Equal(t, b, pos)

	require.Equal(t, "a", l.Remove(a))
	require.Equal(t, []string{"b", "c"}, l.Keys())
	require.Equal(t, "b", l.Remove(b))
	require.Equal(t, "c", l.Remove(c))
	require.Zero(t, l.Len())
	require.Empty(t, l.Keys())

	_, _, ok = l.Front()
	require.False(t, ok)
}

// TestRecencyListStalePosition makes sure a removed position cannot be used
// to reach the node that later reuses its slot.
func TestRecencyListStalePosition(t *testing.T) {
	t.Parallel()

	l := newRecencyList[int](1)
	old := l.PushBack(1)
	l.Remove(old)

	reused := l.PushBack(2)
	require.Equal(t, old.slot, reused.slot)
	require.NotEqual(t, old.gen, reused.gen)

	require.False(t, l.valid(old))
	require.True(t, l.valid(reused))
	require.Panics(t, func() {
		l.MoveToBack(old)
	})
	require.Panics(t, func() {
		l.Remove(old)
	})
	require.False(t, l.valid(position{slot: 42}))
	require.False(t, l.valid(position{slot: nilSlot}))

	require.Equal(t, []int{2}, l.Keys())
}

// TestRecencyListReset checks that a reset list starts over.
func TestRecencyListReset(t *testing.T) {
	t.Parallel()

	l := newRecencyList[int](4)
	for i := 0; i < 4; i++ {
		l.PushBack(i)
	}
	l.Reset()

	require.Zero(t, l.Len())
	require.Empty(t, l.Keys())

	pos := l.PushBack(9)
	require.Equal(t, 0, pos.slot)
	require.Equal(t, []int{9}, l.Keys())
}
