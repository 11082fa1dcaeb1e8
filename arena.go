package hyperion

import (
	"errors"
	"fmt"
	"sync"
)

// Handle is an opaque, relocatable allocation identifier. It is the only
// stable reference to a container: resolving it to bytes is only valid for
// the duration of a single logical step, since a later Reallocate of any
// handle may invalidate slices obtained from a prior Resolve of a different
// handle sharing the same arena's backing storage.
// Handle is 8 bytes on the wire (two uint32 fields): small enough to store
// inline as a Link node's payload (spec.md §3 "Link" / sizeLink).
type Handle struct {
	slab uint32
	gen  uint32
}

// ExtendedHandle carries a Handle plus the chained-pointer bookkeeping a
// real arena allocator exposes for multi-handle allocations (spec.md §6,
// "prefix_byte/hook is an 8-bit hint identifying the chained-pointer slot").
// Hyperion never interprets CompressionState or Chance2ndRealloc; they are
// shape parity with ExtendedHyperionPointerHeader, not load-bearing. See
// DESIGN.md, Open Question 3.
type ExtendedHandle struct {
	Handle
	ChainedPointerCount uint8
	CompressionState    uint8
	Chance2ndRealloc    bool
}

var zeroHandle Handle

// IsZero reports whether h is the zero Handle (no allocation).
func (h Handle) IsZero() bool { return h == zeroHandle }

// ErrArenaExhausted is a resource error (spec.md §7 kind 3): the arena could
// not satisfy an allocation or reallocation request.
var ErrArenaExhausted = errors.New("hyperion: arena exhausted")

// ErrInvalidHandle is returned when an operation is given a Handle the
// arena does not recognize, e.g. one already freed.
var ErrInvalidHandle = errors.New("hyperion: invalid arena handle")

// Arena is the external allocator collaborator from spec.md §6. Hyperion
// depends only on this interface; HeapArena is the in-process default.
type Arena interface {
	// Allocate reserves a new, zero-filled region of exactly size bytes.
	Allocate(size int) (Handle, error)
	// Resolve returns the live bytes backing h. chainedPointerHook selects
	// among chained allocations sharing one logical handle; HeapArena
	// ignores it since it never chains.
	Resolve(h Handle, chainedPointerHook uint8) ([]byte, error)
	// Reallocate grows or shrinks the allocation behind h to newSize,
	// preserving the leading min(oldSize, newSize) bytes and zero-filling
	// any newly appended tail. The returned Handle replaces h; h itself
	// must not be resolved again.
	Reallocate(h Handle, newSize int, chainedPointerHook uint8) (Handle, error)
	// Free releases the allocation behind h. h must not be used again.
	Free(h Handle) error
}

// HeapArena is a simple slab-of-slices Arena with no backing file — Hyperion
// is explicitly non-durable (spec.md §1 Non-goals), so there is nothing to
// mmap. Grounded on the teacher's IOUtils.go growth story (resize, don't
// relocate in place) minus the mmap/file machinery. Safe for concurrent use.
type HeapArena struct {
	mu   sync.Mutex
	slab [][]byte
	gen  []uint32
	free []uint32
}

// NewHeapArena constructs an empty HeapArena.
func NewHeapArena() *HeapArena {
	return &HeapArena{}
}

func (a *HeapArena) Allocate(size int) (Handle, error) {
	if size < 0 {
		return zeroHandle, fmt.Errorf("hyperion: %w: negative size %d", ErrArenaExhausted, size)
	}
	buf := make([]byte, size)

	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slab[idx] = buf
		a.gen[idx]++
		return Handle{slab: idx, gen: a.gen[idx]}, nil
	}

	idx := uint32(len(a.slab))
	a.slab = append(a.slab, buf)
	a.gen = append(a.gen, 1)
	return Handle{slab: idx, gen: 1}, nil
}

func (a *HeapArena) Resolve(h Handle, _ uint8) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolveLocked(h)
}

func (a *HeapArena) resolveLocked(h Handle) ([]byte, error) {
	if int(h.slab) >= len(a.slab) || a.gen[h.slab] != h.gen {
		return nil, ErrInvalidHandle
	}
	return a.slab[h.slab], nil
}

func (a *HeapArena) Reallocate(h Handle, newSize int, _ uint8) (Handle, error) {
	if newSize < 0 {
		return zeroHandle, fmt.Errorf("hyperion: %w: negative size %d", ErrArenaExhausted, newSize)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	old, err := a.resolveLocked(h)
	if err != nil {
		return zeroHandle, err
	}

	grown := make([]byte, newSize)
	copy(grown, old)
	a.slab[h.slab] = grown
	a.gen[h.slab]++
	return Handle{slab: h.slab, gen: a.gen[h.slab]}, nil
}

func (a *HeapArena) Free(h Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.resolveLocked(h); err != nil {
		return err
	}
	a.slab[h.slab] = nil
	a.gen[h.slab]++
	a.free = append(a.free, h.slab)
	return nil
}
