package hyperion

// embedded.go implements spec.md §4.5: embedded containers (small
// subtries living inline in a parent's bytes) and their promotion
// ("ejection") to standalone, arena-allocated containers once they
// outgrow the embed budget.

// resizeRegionAt replaces the oldSize bytes at "at" with room for newSize
// bytes, using insertBytes/removeBytes as appropriate, and returns the
// signed delta (newSize - oldSize) applied to the container's used-byte
// accounting. Caller is responsible for ensuring growContainer has already
// reserved any positive delta.
func resizeRegionAt(c *Container, at, oldSize, newSize int) int {
	delta := newSize - oldSize
	switch {
	case delta > 0:
		c.insertBytes(at+oldSize, delta)
	case delta < 0:
		c.removeBytes(at+newSize, -delta)
	}
	return delta
}

// initializeContainerSized allocates and formats a fresh root-level
// container whose node-stream area reserves at least minBody bytes of
// used space (the caller fills that space immediately after this call
// returns) — used by ejectContainer's initialize_ejected_container step.
func initializeContainerSized(a Arena, cfg Config, minBody int) (Handle, error) {
	size := roundUpSize(cHdrTopJumpTbl+minBody, cfg.ContainerSizeIncrement)
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
	c.setHasTopJumpTable(false)
	c.setFreeBytes(uint32(size - cHdrTopJumpTbl - minBody))
	return h, nil
}

// convertPathCompressedToEmbedded replaces a PC leaf at childOffset
// (already safe-copied by the caller via safePathCompressedContext) with a
// fresh, empty embedded container, so the two diverging tails can be
// re-inserted as ordinary keys one level down. This is the "expand the
// parent to host the common prefix as ordinary top/sub nodes" half of
// spec.md §4.4's divergence rule; the recursive re-insertion itself lives
// in operation.go, since inserting a key into a region is exactly what the
// main descent loop already knows how to do.
func convertPathCompressedToEmbedded(a Arena, cfg Config, handle Handle, subNodeOffset, childOffset, oldPCSize int, ancestors []ref) (Handle, error) {
	handle, c, err := growContainer(a, handle, cfg, sizeEmbeddedHeader)
	if err != nil {
		return zeroHandle, err
	}

	delta := resizeRegionAt(c, childOffset, oldPCSize, sizeEmbeddedHeader)
	embeddedHeader{size: uint32(sizeEmbeddedHeader)}.encode(c.buf, childOffset)
	setSubChildContainer(c.buf, subNodeOffset, childEmbedded)
	updateEmbeddedAncestorSizes(c.buf, ancestors, childOffset, delta)

	return handle, nil
}

// setSubChildContainer rewrites the child_container bits of the sub node
// header at offset, preserving its type/delta bits.
func setSubChildContainer(buf []byte, offset int, child childContainer) {
	b := buf[offset]
	b &^= hdrMaskChild << hdrShiftChild
	b |= byte(child) << hdrShiftChild
	buf[offset] = b
}

// ejectContainer promotes an embedded container to a standalone,
// arena-allocated one, per spec.md §4.5's six numbered steps.
func ejectContainer(a Arena, cfg Config, parentHandle Handle, subNodeOffset, embedOffset int, ancestors []ref) (Handle, error) {
	c, err := resolveContainer(a, parentHandle)
	if err != nil {
		return zeroHandle, err
	}
	embHdr := decodeEmbeddedHeader(c.buf, embedOffset)
	emSize := int(embHdr.size)
	bodySize := emSize - sizeEmbeddedHeader

	// Step 1: reserve room in case the link slot is larger than the
	// embedded region currently occupies (an embedded body shorter than
	// sizeLink - sizeEmbeddedHeader bytes, e.g. a just-created, still-empty
	// embedded container).
	if required := sizeLink - emSize; required > 0 {
		parentHandle, c, err = growContainer(a, parentHandle, cfg, required)
		if err != nil {
			return zeroHandle, err
		}
	}

	// Step 2-3: allocate the new standalone container and copy the live
	// embedded body into it.
	newHandle, err := initializeContainerSized(a, cfg, bodySize)
	if err != nil {
		return zeroHandle, err
	}
	newContainer, err := resolveContainer(a, newHandle)
	if err != nil {
		return zeroHandle, err
	}
	dst := newContainer.headSize()
	copy(newContainer.buf[dst:int(dst)+bodySize], c.buf[embedOffset+sizeEmbeddedHeader:embedOffset+emSize])

	// Step 4: stamp the link and flip the sub node's child bit.
	setSubChildContainer(c.buf, subNodeOffset, childLink)

	// Step 5: close the now-unused embedded region down to sizeLink bytes.
	delta := resizeRegionAt(c, embedOffset, emSize, sizeLink)
	writeHandle(c.buf, embedOffset, newHandle)
	updateEmbeddedAncestorSizes(c.buf, ancestors, embedOffset, delta)

	// Step 6: shrink the parent if ejection freed more than the
	// configured watermark.
	if int(c.freeBytes()) > cfg.ContainerMaxFreeSize {
		parentHandle, _, err = shrinkContainer(a, parentHandle, cfg)
		if err != nil {
			return zeroHandle, err
		}
	}

	return parentHandle, nil
}

func writeHandle(buf []byte, at int, h Handle) {
	writeU32(buf, at, h.slab)
	writeU32(buf, at+4, h.gen)
}

func readHandle(buf []byte, at int) Handle {
	return Handle{slab: readU32(buf, at), gen: readU32(buf, at+4)}
}

func readU32(buf []byte, at int) uint32 {
	return uint32(buf[at]) | uint32(buf[at+1])<<8 | uint32(buf[at+2])<<16 | uint32(buf[at+3])<<24
}

func writeU32(buf []byte, at int, v uint32) {
	buf[at] = byte(v)
	buf[at+1] = byte(v >> 8)
	buf[at+2] = byte(v >> 16)
	buf[at+3] = byte(v >> 24)
}
