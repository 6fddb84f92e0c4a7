package lnutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLogKeys checks the truncation done by LogKeys.
func TestLogKeys(t *testing.T) {
	t.Parallel()

	keys := []string{"a", "b", "c", "d"}

	attr := LogKeys("keys", keys, 2)
	require.Equal(t, "keys", attr.Key)
	require.Equal(t, "[a b] (+2 more)", attr.Value.String())

	attr = LogKeys("keys", keys, -1)
	require.Equal(t, "[a b c d]", attr.Value.String())

	attr = LogKeys("keys", keys[:1], 2)
	require.Equal(t, "[a]", attr.Value.String())
}

// TestLogClosureLazy makes sure the closure is not evaluated until String is
// called.
func TestLogClosureLazy(t *testing.T) {
	t.Parallel()

	var calls int
	c := NewLogClosure(func() string {
		calls++
		return "done"
	})
	require.Zero(t, calls)
	require.Equal(t, "done", c.String())
	require.Equal(t, 1, calls)

	require.Contains(t, SpewLogClosure(42).String(), "42")
}
