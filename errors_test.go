package hyperion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFailProducesInvariantError(t *testing.T) {
	err := fail("offset %d out of range", 42)
	require.Error(t, err)
	require.True(t, isInvariantError(err))
	require.Contains(t, err.Error(), "offset 42 out of range")
}

func TestIsInvariantErrorFalseForOrdinaryError(t *testing.T) {
	require.False(t, isInvariantError(ErrEmptyKey))
}
