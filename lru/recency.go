package lru

import "fmt"

// nilSlot marks the absence of a neighbour in the recency list.
const nilSlot = -1

// position is a stable reference to a key's node in a recencyList. It stays
// valid across growth of the node arena and is invalidated only when the
// node is removed: the slot's generation is bumped on removal, so a stale
// position can always be told apart from the slot's next occupant.
type position struct {
	slot int
	gen  uint32
}

// node is one element of the recency list, stored by value in the arena.
type node[K comparable] struct {
	key        K
	prev, next int
	gen        uint32
	live       bool
}

// recencyList is a doubly linked list of keys whose nodes live in a slice and
// link to each other by index. The front holds the least recently used key,
// the back the most recently used one. Freed slots are recycled before the
// arena grows.
type recencyList[K comparable] struct {
	nodes []node[K]
	free  []int

	head, tail int
	len        int
}

// newRecencyList returns an empty list with room for sizeHint nodes.
func newRecencyList[K comparable](sizeHint int) *recencyList[K] {
	return &recencyList[K]{
		nodes: make([]node[K], 0, sizeHint),
		head:  nilSlot,
		tail:  nilSlot,
	}
}

// Len returns the number of keys in the list.
func (l *recencyList[K]) Len() int {
	return l.len
}

// valid reports whether pos still refers to a live node.
func (l *recencyList[K]) valid(pos position) bool {
	if pos.slot < 0 || pos.slot >= len(l.nodes) {
		return false
	}
	n := &l.nodes[pos.slot]

	return n.live && n.gen == pos.gen
}

// mustNode returns the node behind pos, panicking on a stale position. A
// stale position means the cache and its list went out of sync.
func (l *recencyList[K]) mustNode(pos position) *node[K] {
	if !l.valid(pos) {
		panic(fmt.Sprintf("lru: stale recency position %+v", pos))
	}

	return &l.nodes[pos.slot]
}

// PushBack appends the key as the most recently used element and returns its
// position.
func (l *recencyList[K]) PushBack(key K) position {
	var slot int
	if n := len(l.free); n > 0 {
		slot = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		l.nodes = append(l.nodes, node[K]{})
		slot = len(l.nodes) - 1
	}

	n := &l.nodes[slot]
	n.key = key
	n.live = true
	l.linkBack(slot)
	l.len++

	return position{slot: slot, gen: n.gen}
}

// MoveToBack marks the element at pos as the most recently used one. The
// position stays valid.
func (l *recencyList[K]) MoveToBack(pos position) {
	l.mustNode(pos)
	if l.tail == pos.slot {
		return
	}

	l.unlink(pos.slot)
	l.linkBack(pos.slot)
}

// Remove unlinks the element at pos, frees its slot and returns its key.
func (l *recencyList[K]) Remove(pos position) K {
	n := l.mustNode(pos)
	key := n.key

	l.unlink(pos.slot)

	var zero K
	n.key = zero
	n.live = false
	n.gen++
	l.free = append(l.free, pos.slot)
	l.len--

	return key
}

// Front returns the least recently used element, if any.
func (l *recencyList[K]) Front() (position, K, bool) {
	if l.head == nilSlot {
		var zero K
		return position{slot: nilSlot}, zero, false
	}
	n := &l.nodes[l.head]

	return position{slot: l.head, gen: n.gen}, n.key, true
}

// Keys returns the keys from least to most recently used.
func (l *recencyList[K]) Keys() []K {
	keys := make([]K, 0, l.len)
	for s := l.head; s != nilSlot; s = l.nodes[s].next {
		keys = append(keys, l.nodes[s].key)
	}

	return keys
}

// forEach visits the elements from least to most recently used.
func (l *recencyList[K]) forEach(f func(position, K)) {
	for s := l.head; s != nilSlot; s = l.nodes[s].next {
		n := &l.nodes[s]
		f(position{slot: s, gen: n.gen}, n.key)
	}
}

// Reset empties the list and releases the arena.
func (l *recencyList[K]) Reset() {
	l.nodes = l.nodes[:0:0]
	l.free = nil
	l.head, l.tail = nilSlot, nilSlot
	l.len = 0
}

// linkBack links a detached slot after the current tail.
func (l *recencyList[K]) linkBack(slot int) {
	n := &l.nodes[slot]
	n.prev = l.tail
	n.next = nilSlot

	if l.tail == nilSlot {
		l.head = slot
	} else {
		l.nodes[l.tail].next = slot
	}
	l.tail = slot
}

// unlink detaches a slot from its neighbours.
func (l *recencyList[K]) unlink(slot int) {
	n := &l.nodes[slot]

	if n.prev == nilSlot {
		l.head = n.next
	} else {
		l.nodes[n.prev].next = n.next
	}

	if n.next == nilSlot {
		l.tail = n.prev
	} else {
		l.nodes[n.next].prev = n.prev
	}

	n.prev, n.next = nilSlot, nilSlot
}
