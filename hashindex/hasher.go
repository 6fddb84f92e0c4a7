package hashindex

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to a 64-bit hash. The same key must always hash to the
// same value for the lifetime of the table using it.
type Hasher[K any] interface {
	Hash(key K) uint64
}

// HasherFunc adapts a plain function to the Hasher interface.
type HasherFunc[K any] func(K) uint64

// Hash calls f(key).
func (f HasherFunc[K]) Hash(key K) uint64 {
	return f(key)
}

// ComparableHasher hashes any comparable key with hash/maphash. Each hasher
// carries its own random seed, so hashes are only stable within one process
// and one hasher instance.
type ComparableHasher[K comparable] struct {
	seed maphash.Seed
}

// NewComparableHasher returns a ComparableHasher with a fresh seed.
func NewComparableHasher[K comparable]() *ComparableHasher[K] {
	return &ComparableHasher[K]{
		seed: maphash.MakeSeed(),
	}
}

// Hash returns the seeded hash of the key.
func (h *ComparableHasher[K]) Hash(key K) uint64 {
	return maphash.Comparable(h.seed, key)
}

// StringHasher hashes string keys, including named string types, with xxhash.
// Unlike ComparableHasher it is deterministic across processes.
type StringHasher[K ~string] struct{}

// Hash returns the xxhash digest of the key.
func (StringHasher[K]) Hash(key K) uint64 {
	return xxhash.Sum64String(string(key))
}

// FixedBytesHasher hashes fixed size byte array keys, such as 32-byte
// digests, with xxhash.
type FixedBytesHasher[K ~[32]byte] struct{}

// Hash returns the xxhash digest of the key bytes.
func (FixedBytesHasher[K]) Hash(key K) uint64 {
	b := [32]byte(key)
	return xxhash.Sum64(b[:])
}
