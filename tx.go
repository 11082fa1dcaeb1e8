package hyperion

import "errors"

// tx.go keeps the teacher's callback-scoped access shape (ViewTx/UpdateTx)
// without its copy-on-write/versioning machinery — spec.md names
// transactional semantics as a non-goal, so View/Update here are plain
// RLock/Lock scopes that let a caller group several operations under one
// lock acquisition. See SPEC_FULL.md §9.3.

// Tx is the scoped handle passed to a View/Update callback. It exposes the
// same Put/Get/Delete/Range surface as Map, but without re-acquiring the
// lock Map.View/Map.Update already holds.
type Tx struct {
	m *Map
}

// View runs fn with a read lock held, letting it issue any number of Gets
// (and Ranges) against a consistent snapshot of the structure without
// intervening writers.
func (m *Map) View(fn func(tx *Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&Tx{m: m})
}

// Update runs fn with a write lock held, letting it issue any number of
// Puts/Deletes (and reads) as one atomic-looking unit with respect to other
// Map callers.
func (m *Map) Update(fn func(tx *Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&Tx{m: m})
}

// Get is Map.Get without acquiring a new lock.
func (tx *Tx) Get(key []byte) (NodeValue, ReturnCode, error) {
	if len(key) == 0 {
		return nil, InvalidArgument, ErrEmptyKey
	}
	return getKey(tx.m.arena, tx.m.cfg, tx.m.root, region{}, key)
}

// Put is Map.Put without acquiring a new lock. Only valid inside Update.
func (tx *Tx) Put(key []byte, value NodeValue) (ReturnCode, error) {
	if len(key) == 0 {
		return InvalidArgument, ErrEmptyKey
	}
	if len(value) != tx.m.cfg.ValueSize {
		return InvalidArgument, errors.New("hyperion: value must be Config.ValueSize bytes")
	}
	newRoot, err := putKey(tx.m.arena, tx.m.cfg, tx.m.root, region{}, nil, key, value)
	if err != nil {
		return PutFailureNoMem, err
	}
	tx.m.root = newRoot
	return OK, nil
}

// Delete is Map.Delete without acquiring a new lock. Only valid inside
// Update.
func (tx *Tx) Delete(key []byte) (ReturnCode, error) {
	if len(key) == 0 {
		return InvalidArgument, ErrEmptyKey
	}
	newRoot, rc, err := deleteKey(tx.m.arena, tx.m.cfg, tx.m.root, region{}, nil, key)
	if err != nil {
		return OK, err
	}
	tx.m.root = newRoot
	return rc, nil
}

// Range is Map.Range without acquiring a new lock.
func (tx *Tx) Range(beginKey []byte, cb Callback) (ReturnCode, error) {
	return rangeScan(tx.m.arena, tx.m.cfg, tx.m.root, beginKey, cb)
}
