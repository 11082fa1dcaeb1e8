package hyperion

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// P8: range(nil, collect) returns all inserted keys in strict lexicographic
// ascending order, each exactly once.
func TestRangeFromStartVisitsAllKeysInOrder(t *testing.T) {
	m := newTestMap(t, 4)

	keys := [][]byte{
		{5},
		{5, 1},
		{5, 2},
		{2},
		{200},
		{5, 1, 9},
		{1, 1},
	}
	want := make([][]byte, len(keys))
	copy(want, keys)
	sort.Slice(want, func(i, j int) bool { return bytes.Compare(want[i], want[j]) < 0 })

	for i, k := range keys {
		_, err := m.Put(k, NodeValue{byte(i), 0, 0, 0})
		require.NoError(t, err)
	}

	var got [][]byte
	rc, err := m.Range(nil, func(key []byte, value NodeValue) bool {
		got = append(got, append([]byte(nil), key...))
		return true
	})
	require.NoError(t, err)
	require.Equal(t, OK, rc)

	require.Equal(t, len(want), len(got))
	for i := range want {
		require.True(t, bytes.Equal(want[i], got[i]), "index %d: got %v, want %v", i, got[i], want[i])
	}
}

func TestRangeWithBeginKeySkipsEarlierKeys(t *testing.T) {
	m := newTestMap(t, 4)
	keys := [][]byte{{1}, {2}, {3}, {4}, {5}}
	for _, k := range keys {
		_, err := m.Put(k, NodeValue{1, 1, 1, 1})
		require.NoError(t, err)
	}

	var got [][]byte
	_, err := m.Range([]byte{3}, func(key []byte, value NodeValue) bool {
		got = append(got, append([]byte(nil), key...))
		return true
	})
	require.NoError(t, err)
	require.Equal(t, [][]byte{{3}, {4}, {5}}, got)
}

func TestRangeCallbackFalseStopsEarly(t *testing.T) {
	m := newTestMap(t, 4)
	keys := [][]byte{{1}, {2}, {3}, {4}, {5}}
	for _, k := range keys {
		_, err := m.Put(k, NodeValue{1, 1, 1, 1})
		require.NoError(t, err)
	}

	var got [][]byte
	_, err := m.Range(nil, func(key []byte, value NodeValue) bool {
		got = append(got, append([]byte(nil), key...))
		return len(got) < 2
	})
	require.NoError(t, err)
	require.Equal(t, [][]byte{{1}, {2}}, got)
}

func TestRangeOverEmptyMapVisitsNothing(t *testing.T) {
	m := newTestMap(t, 4)
	called := false
	_, err := m.Range(nil, func(key []byte, value NodeValue) bool {
		called = true
		return true
	})
	require.NoError(t, err)
	require.False(t, called)
}
