package lnutils

import (
	"fmt"
	"log/slog"

	"github.com/btcsuite/btclog/v2"
	"github.com/davecgh/go-spew/spew"
)

// LogClosure is used to provide a closure over expensive logging operations so
// don't have to be performed when the logging level doesn't warrant it.
type LogClosure func() string

// String invokes the underlying function and returns the result.
func (c LogClosure) String() string {
	return c()
}

// NewLogClosure returns a new closure over a function that returns a string
// which itself provides a Stringer interface so that it can be used with the
// logging system.
func NewLogClosure(c func() string) LogClosure {
	return LogClosure(c)
}

// SpewLogClosure takes an interface and returns the string of it created from
// `spew.Sdump` in a LogClosure.
func SpewLogClosure(a any) LogClosure {
	return func() string {
		return spew.Sdump(a)
	}
}

// LogKeys returns a slog attribute listing at most limit keys, followed by
// the number of keys left out. The keys are only formatted when the record
// is actually emitted.
func LogKeys[K any](key string, keys []K, limit int) slog.Attr {
	return slog.Any(key, NewLogClosure(func() string {
		if limit < 0 || len(keys) <= limit {
			return fmt.Sprint(keys)
		}

		return fmt.Sprintf("%v (+%d more)", keys[:limit],
			len(keys)-limit)
	}))
}

// LogLoad returns a slog attribute for a ratio such as a load factor,
// rendered with a fixed precision.
func LogLoad(key string, load float64) slog.Attr {
	return btclog.Fmt(key, "%.3f", load)
}
