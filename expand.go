package hyperion

// expand.go implements spec.md §4.3's expand/relocate protocol: growing a
// container in place when a mutator needs more bytes than the free
// reserve allows.
//
// Because interior references are offsets rather than addresses (Design
// Notes §9, see context.go's ref type), the rebase step the original
// protocol performs after every reallocation — walking predecessor,
// sub-level jump anchor, every embedded-stack frame, and
// next_embedded_container and adding the new base — is unnecessary here:
// an offset into a container's byte stream stays correct no matter where
// the arena subsequently moves that container's backing storage. What
// remains, and is still required, is everything expand_root/expand_embedded
// do to the *container's own bytes*: reserving space before any shift is
// issued (spec.md §7 kind 3 — arena failure must leave state unchanged),
// and keeping every embedded ancestor's own size field in sync with growth
// that happens inside it.

// growContainer reallocates h so it has at least `required` bytes of free
// space, rounding the new size up to cfg.ContainerSizeIncrement. Returns
// the (possibly new) handle and a freshly resolved Container. If free space
// already suffices, h and its current Container are returned unchanged —
// this is expand_root's and expand_embedded's shared entry contract
// ("Measures free_bytes and required. If free >= required, returns the
// node ... unchanged").
func growContainer(a Arena, h Handle, cfg Config, required int) (Handle, *Container, error) {
	c, err := resolveContainer(a, h)
	if err != nil {
		return zeroHandle, nil, err
	}
	if int(c.freeBytes()) >= required {
		return h, c, nil
	}

	deficit := required - int(c.freeBytes())
	newSize := roundUpSize(int(c.size())+deficit, cfg.ContainerSizeIncrement)

	newHandle, err := a.Reallocate(h, newSize, 0)
	if err != nil {
		// Reservation failed before any shift was issued; container is
		// logically unchanged (spec.md §7 kind 3).
		return zeroHandle, nil, err
	}

	c2, err := resolveContainer(a, newHandle)
	if err != nil {
		return zeroHandle, nil, err
	}
	oldSize := c.size()
	c2.setSize(uint32(newSize))
	c2.setFreeBytes(c.freeBytes() + uint32(newSize) - oldSize)
	if int(c2.freeBytes()) < required {
		return zeroHandle, nil, fail("growContainer: %d free bytes after growing to %d, need %d", c2.freeBytes(), newSize, required)
	}
	return newHandle, c2, nil
}

// shrinkContainer reallocates h down to the smallest size-increment
// multiple that still accommodates its live bytes, used after ejection
// leaves more than cfg.ContainerMaxFreeSize bytes free (spec.md §4.5
// step 6: "if the resulting free space exceeds CONTAINER_MAX_FREESIZE,
// shrink the parent").
func shrinkContainer(a Arena, h Handle, cfg Config) (Handle, *Container, error) {
	c, err := resolveContainer(a, h)
	if err != nil {
		return zeroHandle, nil, err
	}
	live := c.safeOffset()
	newSize := roundUpSize(live, cfg.ContainerSizeIncrement)
	if newSize >= int(c.size()) {
		return h, c, nil
	}

	newHandle, err := a.Reallocate(h, newSize, 0)
	if err != nil {
		return zeroHandle, nil, err
	}
	c2, err := resolveContainer(a, newHandle)
	if err != nil {
		return zeroHandle, nil, err
	}
	c2.setSize(uint32(newSize))
	c2.setFreeBytes(uint32(newSize - live))
	return newHandle, c2, nil
}

// updateEmbeddedAncestorSizes propagates a byte-count delta (positive on
// insert, negative on remove) to the size field of every embedded
// container on the stack that encloses the mutated offset — spec.md
// §4.3's shift_container contract: "propagates the shift to the size of
// every embedded ancestor on the stack."
func updateEmbeddedAncestorSizes(buf []byte, stack []ref, mutatedOffset, delta int) {
	for _, r := range stack {
		if !r.valid || r.offset > mutatedOffset {
			continue
		}
		h := decodeEmbeddedHeader(buf, r.offset)
		h.size = uint32(int(h.size) + delta)
		h.encode(buf, r.offset)
	}
}

// bumpSuccessorJump increments a predecessor top node's jump_successor
// field by delta bytes if the shift at mutatedOffset falls within its
// jumped-over region — spec.md §4.3: "If the shift crosses a successor-jump
// field of a predecessor, that field is incremented by bytes."
func bumpSuccessorJump(buf []byte, pred ref, mutatedOffset, delta int, cfg Config) {
	if !pred.valid {
		return
	}
	v := decodeAt(buf, pred.offset, noPrevChar, cfg)
	if v.isSub || !v.jumpSucc {
		return
	}
	field := v.jumpSuccessorOffsetField()
	target := pred.offset + int(readU16(buf, field))
	if target > mutatedOffset {
		writeU16(buf, field, readU16(buf, field)+uint16(delta))
	}
}
