package hashindex

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultInitialBuckets is the number of buckets a table starts with
	// when the config leaves it unset.
	DefaultInitialBuckets = 8

	// DefaultLoadFactor is the count/buckets ratio at which a table
	// doubles its bucket count.
	DefaultLoadFactor = 0.75
)

var (
	// ErrInvalidBucketCount is returned when a negative initial bucket
	// count is configured.
	ErrInvalidBucketCount = errors.New("initial bucket count must be >= 0")

	// ErrInvalidLoadFactor is returned when the load factor is not a
	// finite, strictly positive number.
	ErrInvalidLoadFactor = errors.New("load factor must be finite and > 0")
)

// Config houses the tunables of a Table. Zero fields fall back to the
// package defaults.
type Config[K comparable] struct {
	// InitialBuckets is the bucket count of a new or cleared table.
	InitialBuckets int

	// LoadFactor is the threshold that count/buckets must reach right
	// after a new key is inserted for the table to double in size.
	LoadFactor float64

	// Hasher maps keys to buckets. If nil, a ComparableHasher is used.
	Hasher Hasher[K]
}

// Validate checks the config for values no table can be built from.
func (c *Config[K]) Validate() error {
	if c.InitialBuckets < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBucketCount,
			c.InitialBuckets)
	}

	// A zero load factor means "use the default".
	lf := c.LoadFactor
	if lf < 0 || math.IsNaN(lf) || math.IsInf(lf, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidLoadFactor, lf)
	}

	return nil
}

// withDefaults returns a copy of the config with every unset field filled
// in.
func (c Config[K]) withDefaults() Config[K] {
	if c.InitialBuckets == 0 {
		c.InitialBuckets = DefaultInitialBuckets
	}
	if c.LoadFactor == 0 {
		c.LoadFactor = DefaultLoadFactor
	}
	if c.Hasher == nil {
		c.Hasher = NewComparableHasher[K]()
	}

	return c
}
