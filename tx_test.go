package hyperion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateTxPutVisibleAfterReturn(t *testing.T) {
	m := newTestMap(t, 4)

	err := m.Update(func(tx *Tx) error {
		_, err := tx.Put([]byte{1, 2, 3}, NodeValue{9, 9, 9, 9})
		return err
	})
	require.NoError(t, err)

	got, rc, err := m.Get([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, OK, rc)
	require.Equal(t, NodeValue{9, 9, 9, 9}, got)
}

func TestUpdateTxGroupsMultipleMutations(t *testing.T) {
	m := newTestMap(t, 4)
	keys := [][]byte{{1}, {2}, {3}}

	err := m.Update(func(tx *Tx) error {
		for i, k := range keys {
			if _, err := tx.Put(k, NodeValue{byte(i), 0, 0, 0}); err != nil {
				return err
			}
		}
		_, err := tx.Delete(keys[1])
		return err
	})
	require.NoError(t, err)

	_, rc, err := m.Get(keys[0])
	require.NoError(t, err)
	require.Equal(t, OK, rc)

	_, rc, err = m.Get(keys[1])
	require.NoError(t, err)
	require.Equal(t, GetFailureNoLeaf, rc)

	_, rc, err = m.Get(keys[2])
	require.NoError(t, err)
	require.Equal(t, OK, rc)
}

func TestViewTxSeesPriorWrites(t *testing.T) {
	m := newTestMap(t, 4)
	_, err := m.Put([]byte{1}, NodeValue{7, 7, 7, 7})
	require.NoError(t, err)

	var got NodeValue
	err = m.View(func(tx *Tx) error {
		var rc ReturnCode
		var verr error
		got, rc, verr = tx.Get([]byte{1})
		require.Equal(t, OK, rc)
		return verr
	})
	require.NoError(t, err)
	require.Equal(t, NodeValue{7, 7, 7, 7}, got)
}

func TestViewTxRangeMatchesMapRange(t *testing.T) {
	m := newTestMap(t, 4)
	keys := [][]byte{{1}, {2}, {3}}
	for _, k := range keys {
		_, err := m.Put(k, NodeValue{1, 1, 1, 1})
		require.NoError(t, err)
	}

	var got [][]byte
	err := m.View(func(tx *Tx) error {
		_, rerr := tx.Range(nil, func(key []byte, value NodeValue) bool {
			got = append(got, append([]byte(nil), key...))
			return true
		})
		return rerr
	})
	require.NoError(t, err)
	require.Equal(t, keys, got)
}

func TestTxPutEmptyKeyIsInvalidArgument(t *testing.T) {
	m := newTestMap(t, 4)
	err := m.Update(func(tx *Tx) error {
		rc, err := tx.Put(nil, NodeValue{1, 1, 1, 1})
		require.Equal(t, InvalidArgument, rc)
		require.Error(t, err)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePropagatesCallbackError(t *testing.T) {
	m := newTestMap(t, 4)
	err := m.Update(func(tx *Tx) error {
		return errTxSentinel{}
	})
	require.Equal(t, errTxSentinel{}, err)
}

type errTxSentinel struct{}

func (errTxSentinel) Error() string { return "sentinel" }
