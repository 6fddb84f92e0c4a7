package lnutils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMap checks that Map keeps order and length.
func TestMap(t *testing.T) {
	t.Parallel()

	require.Equal(
		t, []string{"1", "2", "3"}, Map([]int{1, 2, 3}, strconv.Itoa),
	)
	require.Empty(t, Map([]int(nil), strconv.Itoa))
}
