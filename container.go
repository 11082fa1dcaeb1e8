package hyperion

import "encoding/binary"

// Container is a thin, in-place editor over a []byte obtained from an
// Arena. Fixed header (size, free bytes, head size, optional top-level
// jump table) followed by a packed stream of nodes — spec.md §3.
//
// A Container never outlives the Resolve call that produced its buf; it is
// borrowed for exactly one logical step, per Design Notes §9's "container
// editor" recommendation (insert_bytes/remove_bytes that keep free_bytes,
// jumps, and embedded ancestors consistent).
type Container struct {
	handle Handle
	buf    []byte
}

const (
	cHdrSize       = 0 // uint32
	cHdrFree       = 4 // uint32
	cHdrHeadSize   = 8 // uint8
	cHdrFlags      = 9 // uint8
	cHdrTopJumpTbl = 10

	cFlagHasTopJumpTable = 1 << 0
)

// resolveContainer wraps the bytes backing h as a Container.
func resolveContainer(a Arena, h Handle) (*Container, error) {
	buf, err := a.Resolve(h, 0)
	if err != nil {
		return nil, err
	}
	return &Container{handle: h, buf: buf}, nil
}

// initializeContainer allocates and formats a fresh, empty container sized
// to cfg.InitialContainerSize — mirrors the teacher's container-size-type-0
// convention (atomic_pointer.rs: CONTAINER_SIZE_TYPE_0 = 32).
func initializeContainer(a Arena, cfg Config) (Handle, error) {
	size := cfg.InitialContainerSize
	h, err := a.Allocate(size)
	if err != nil {
		return zeroHandle, err
	}
	c, err := resolveContainer(a, h)
	if err != nil {
		return zeroHandle, err
	}
	c.setSize(uint32(size))
	c.setHeadSize(cHdrTopJumpTbl)
	c.setFreeBytes(uint32(size - cHdrTopJumpTbl))
	c.setHasTopJumpTable(false)
	return h, nil
}

func (c *Container) size() uint32       { return binary.LittleEndian.Uint32(c.buf[cHdrSize:]) }
func (c *Container) setSize(v uint32)   { binary.LittleEndian.PutUint32(c.buf[cHdrSize:], v) }
func (c *Container) freeBytes() uint32  { return binary.LittleEndian.Uint32(c.buf[cHdrFree:]) }
func (c *Container) setFreeBytes(v uint32) {
	binary.LittleEndian.PutUint32(c.buf[cHdrFree:], v)
}
func (c *Container) headSize() uint8     { return c.buf[cHdrHeadSize] }
func (c *Container) setHeadSize(v uint8) { c.buf[cHdrHeadSize] = v }

func (c *Container) hasTopJumpTable() bool {
	return c.buf[cHdrFlags]&cFlagHasTopJumpTable != 0
}

func (c *Container) setHasTopJumpTable(v bool) {
	if v {
		c.buf[cHdrFlags] |= cFlagHasTopJumpTable
	} else {
		c.buf[cHdrFlags] &^= cFlagHasTopJumpTable
	}
}

// topJumpTableOffset returns the offset stored in the bucket for the high 3
// bits of top, or 0 if that bucket has never been set.
func (c *Container) topJumpTableOffset(top byte) uint16 {
	if !c.hasTopJumpTable() {
		return 0
	}
	bucket := top >> 5
	at := cHdrTopJumpTbl + int(bucket)*sizeJumpTableEntry
	return binary.LittleEndian.Uint16(c.buf[at:])
}

func (c *Container) setTopJumpTableOffset(top byte, offset uint16) {
	bucket := top >> 5
	at := cHdrTopJumpTbl + int(bucket)*sizeJumpTableEntry
	binary.LittleEndian.PutUint16(c.buf[at:], offset)
}

// safeOffset is the first byte past the container's live payload.
func (c *Container) safeOffset() int {
	return int(c.size() - c.freeBytes())
}

// insertBytes opens a zero-filled gap of n bytes at "at" by moving the
// bytes in [at, safeOffset) forward by n, then shrinks free_bytes by n.
// Caller must have already ensured free_bytes >= n (via expand.go).
func (c *Container) insertBytes(at, n int) {
	tailEnd := c.safeOffset()
	copy(c.buf[at+n:tailEnd+n], c.buf[at:tailEnd])
	for i := at; i < at+n; i++ {
		c.buf[i] = 0
	}
	c.setFreeBytes(c.freeBytes() - uint32(n))
}

// removeBytes closes a gap of n bytes at "at" by moving the bytes in
// [at+n, safeOffset) back by n, then grows free_bytes by n.
func (c *Container) removeBytes(at, n int) {
	tailEnd := c.safeOffset()
	copy(c.buf[at:tailEnd-n], c.buf[at+n:tailEnd])
	for i := tailEnd - n; i < tailEnd; i++ {
		c.buf[i] = 0
	}
	c.setFreeBytes(c.freeBytes() + uint32(n))
}

// roundUpSize rounds n up to the next multiple of incr (incr > 0).
func roundUpSize(n, incr int) int {
	if n <= 0 {
		return incr
	}
	rem := n % incr
	if rem == 0 {
		return n
	}
	return n + (incr - rem)
}
