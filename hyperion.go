package hyperion

import (
	"errors"
	"sync"
)

// hyperion.go is the public surface: Map wires a root Handle and Arena
// together behind one RWMutex (spec.md §5 — Hyperion is not an MVCC
// structure like the teacher, so one mutex is the whole concurrency
// story) and dispatches into operation.go's descent functions.

// ErrEmptyKey is returned for any operation given a zero-length key —
// Hyperion's byte hierarchy has no representation for the empty key.
var ErrEmptyKey = errors.New("hyperion: empty key")

// Map is an in-memory, byte-keyed ordered map with fixed-size values.
// The zero value is not usable; construct with New.
type Map struct {
	mu    sync.RWMutex
	arena Arena
	cfg   Config
	root  Handle
}

// New constructs a Map. If opts.Arena is nil, a fresh HeapArena is used.
func New(opts Options) (*Map, error) {
	if opts.Config.ValueSize <= 0 {
		return nil, errors.New("hyperion: Config.ValueSize must be > 0")
	}
	if opts.Config.ContainerSizeIncrement <= 0 || opts.Config.InitialContainerSize <= 0 {
		return nil, errors.New("hyperion: Config must set ContainerSizeIncrement and InitialContainerSize")
	}

	arena := opts.Arena
	if arena == nil {
		arena = NewHeapArena()
	}

	root, err := initializeContainer(arena, opts.Config)
	if err != nil {
		return nil, err
	}

	return &Map{
		arena: arena,
		cfg:   opts.Config,
		root:  root,
	}, nil
}

// Put inserts or updates the value stored at key. value must be exactly
// cfg.ValueSize bytes.
func (m *Map) Put(key []byte, value NodeValue) (ReturnCode, error) {
	if len(key) == 0 {
		return InvalidArgument, ErrEmptyKey
	}
	if len(value) != m.cfg.ValueSize {
		return InvalidArgument, errors.New("hyperion: value must be Config.ValueSize bytes")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	newRoot, err := putKey(m.arena, m.cfg, m.root, region{}, nil, key, value)
	if err != nil {
		return PutFailureNoMem, err
	}
	m.root = newRoot
	return OK, nil
}

// Get looks up key, returning GetFailureNoLeaf if no value is stored
// there.
func (m *Map) Get(key []byte) (NodeValue, ReturnCode, error) {
	if len(key) == 0 {
		return nil, InvalidArgument, ErrEmptyKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return getKey(m.arena, m.cfg, m.root, region{}, key)
}

// Delete removes the value stored at key, returning DeleteFailureNoLeaf
// if none is stored there. The underlying node slot may survive as
// dead-but-valid structure until Compact (DESIGN.md Open Question 2).
func (m *Map) Delete(key []byte) (ReturnCode, error) {
	if len(key) == 0 {
		return InvalidArgument, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	newRoot, rc, err := deleteKey(m.arena, m.cfg, m.root, region{}, nil, key)
	if err != nil {
		return OK, err
	}
	m.root = newRoot
	return rc, nil
}

// Range walks every key at or after beginKey (nil or empty means "from
// the very first key") in strict ascending lexicographic order, invoking
// cb once per key. Returning false from cb stops the scan early.
func (m *Map) Range(beginKey []byte, cb Callback) (ReturnCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return rangeScan(m.arena, m.cfg, m.root, beginKey, cb)
}
