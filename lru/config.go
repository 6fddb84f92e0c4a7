package lru

import (
	"errors"
	"fmt"

	"github.com/lightningnetwork/lnd/cachecore/hashindex"
)

// DefaultCapacity is the capacity used by callers that have no better
// figure.
const DefaultCapacity = 10

// ErrInvalidCapacity is returned when a cache is configured to hold fewer than
// one entry.
var ErrInvalidCapacity = errors.New("cache capacity must be >= 1")

// EvictCallback is called with the key and value of an entry dropped to make
// room for a new key.
type EvictCallback[K comparable, V any] func(key K, value V)

// Config holds everything needed to build a Cache.
type Config[K comparable, V any] struct {
	// Capacity is the maximum number of entries the cache holds.
	Capacity int

	// NewIndex, if set, creates the index the cache stores its entries
	// in. It is called again on Purge, after every cached key has been
	// erased from the old index.
	NewIndex func() Index[K, Entry[V]]

	// IndexConfig configures the default hash index when NewIndex is
	// nil. A nil IndexConfig selects the hashindex defaults.
	IndexConfig *hashindex.Config[K]

	// OnEvict is called for every entry evicted to make room. It must not
	// call back into the cache.
	OnEvict EvictCallback[K, V]
}

// Validate checks that a cache can be built from the config.
func (c *Config[K, V]) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, c.Capacity)
	}

	if c.NewIndex == nil && c.IndexConfig != nil {
		if err := c.IndexConfig.Validate(); err != nil {
			return fmt.Errorf("invalid index config: %w", err)
		}
	}

	return nil
}

// indexFactory returns the function used to create the cache's index.
func (c *Config[K, V]) indexFactory() func() Index[K, Entry[V]] {
	if c.NewIndex != nil {
		return c.NewIndex
	}

	idxCfg := c.IndexConfig
	return func() Index[K, Entry[V]] {
		return hashindex.New[K, Entry[V]](idxCfg)
	}
}
