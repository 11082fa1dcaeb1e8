package hyperion

// operation.go is the traversal/mutation state machine of spec.md §4.2: a
// recursive, two-bytes-per-level descent (top char, then sub char) that
// calls itself for an embedded or linked child container holding the
// remaining key tail. The traversal state travels as ordinary parameters —
// handle, region, and the embedded ancestor chain — rather than as raw
// pointers, so a container reallocation never needs a rebase pass
// (context.go's ref is an offset, stable across Arena.Reallocate).

// region identifies where in a container's byte stream the current
// descent step is scanning: either the root-level node stream (right
// after the container header) or the body of an embedded container
// living inline at embedOffset.
type region struct {
	embedded    bool
	embedOffset int
}

func regionBounds(c *Container, reg region) (base, end int) {
	if reg.embedded {
		h := decodeEmbeddedHeader(c.buf, reg.embedOffset)
		return reg.embedOffset + sizeEmbeddedHeader, reg.embedOffset + int(h.size)
	}
	return int(c.headSize()), c.safeOffset()
}

// scanForChar walks nodes of one regime (top nodes if wantSub is false,
// sub nodes under some top if true) from start to end looking for target,
// per spec.md §4.2 steps 3/5/6. When scanning top nodes it steps over each
// top's whole sub region. Nodes are in strictly ascending order (P2), so the
// scan can stop the instant it passes target.
func scanForChar(buf []byte, start, end int, wantSub bool, target byte, cfg Config) (found bool, offset int, lastChar int) {
	pos := start
	last := noPrevChar
	for pos < end {
		if headerIsSub(buf[pos]) != wantSub {
			break
		}
		v := decodeAt(buf, pos, last, cfg)
		switch {
		case v.char == target:
			return true, pos, last
		case v.char > target:
			return false, pos, last
		}
		last = int(v.char)
		if wantSub {
			pos = v.nextOffset(buf)
		} else {
			pos = subRegionEnd(buf, pos, end, cfg)
		}
	}
	return false, pos, last
}

func deltaFor(char byte, lastChar int) bool { return int(char) == lastChar+1 }

// reanchorNextSibling fixes the sibling that follows a node just inserted
// with char in front of it: its resync byte was computed against lastChar
// and must now be computed against char. That sibling is never a delta
// node, since char lies strictly between lastChar and its own char.
func reanchorNextSibling(c *Container, ancestors []ref, next int, isSub bool, char byte, lastChar int) {
	end := c.safeOffset()
	if n := len(ancestors); n > 0 {
		end = ancestors[n-1].offset + int(decodeEmbeddedHeader(c.buf, ancestors[n-1].offset).size)
	}
	if next < end && headerIsSub(c.buf[next]) == isSub {
		c.buf[next+1] -= byte(int(char) - lastChar)
	}
}

// setNodeType rewrites just the type bits of a node header, preserving
// every other flag.
func setNodeType(buf []byte, offset int, typ nodeType) {
	b := buf[offset]
	b &^= hdrMaskType << hdrShiftType
	b |= byte(typ) << hdrShiftType
	buf[offset] = b
}

// insertNewTopNode creates a brand-new, valueless-or-valued top node at
// "at" (an insertion point scanForChar already located), shifting later
// bytes forward.
func insertNewTopNode(a Arena, cfg Config, handle Handle, ancestors []ref, at int, char byte, lastChar int, value NodeValue) (Handle, error) {
	delta := deltaFor(char, lastChar)
	fixedLen := 1
	if !delta {
		fixedLen++
	}
	leafSize := 0
	typ := typeInnerNode
	if value != nil {
		typ = typeLeafWithValue
		leafSize = cfg.ValueSize
	}
	total := fixedLen + leafSize

	handle, c, err := growContainer(a, handle, cfg, total)
	if err != nil {
		return zeroHandle, err
	}
	c.insertBytes(at, total)
	c.buf[at] = encodeTopHeader(typ, delta, false, false)
	pos := at + 1
	if !delta {
		c.buf[pos] = byte(int(char) - lastChar - 1)
		pos++
	}
	if value != nil {
		copy(c.buf[pos:pos+cfg.ValueSize], value)
	}
	updateEmbeddedAncestorSizes(c.buf, ancestors, at, total)
	reanchorNextSibling(c, ancestors, at+total, false, char, lastChar)
	return handle, nil
}

// insertNewSubNode mirrors insertNewTopNode for a sub node, always created
// with child_container=None (callers needing a child add it immediately
// after via createPathCompressedChild).
func insertNewSubNode(a Arena, cfg Config, handle Handle, ancestors []ref, at int, char byte, lastChar int, value NodeValue) (Handle, error) {
	delta := deltaFor(char, lastChar)
	fixedLen := 1
	if !delta {
		fixedLen++
	}
	leafSize := 0
	typ := typeInnerNode
	if value != nil {
		typ = typeLeafWithValue
		leafSize = cfg.ValueSize
	}
	total := fixedLen + leafSize

	handle, c, err := growContainer(a, handle, cfg, total)
	if err != nil {
		return zeroHandle, err
	}
	c.insertBytes(at, total)
	c.buf[at] = encodeSubHeader(typ, delta, childNone)
	pos := at + 1
	if !delta {
		c.buf[pos] = byte(int(char) - lastChar - 1)
		pos++
	}
	if value != nil {
		copy(c.buf[pos:pos+cfg.ValueSize], value)
	}
	updateEmbeddedAncestorSizes(c.buf, ancestors, at, total)
	reanchorNextSibling(c, ancestors, at+total, true, char, lastChar)
	return handle, nil
}

// setOwnValue updates (or, for a fresh Put, adds) the value carried
// directly on the node at nodeOffset — used when a key's descent ends
// exactly at a top or sub node (len(key remaining) == 0 at that node).
func setOwnValue(a Arena, cfg Config, handle Handle, ancestors []ref, nodeOffset int, value NodeValue) (Handle, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, err
	}
	v := decodeAt(c.buf, nodeOffset, noPrevChar, cfg)
	if v.typ == typeLeafWithValue {
		voff := v.valueOffset(c.buf)
		copy(c.buf[voff:voff+cfg.ValueSize], value)
		return handle, nil
	}

	at := v.nextOffset(c.buf)
	handle, c, err = growContainer(a, handle, cfg, cfg.ValueSize)
	if err != nil {
		return zeroHandle, err
	}
	c.insertBytes(at, cfg.ValueSize)
	copy(c.buf[at:at+cfg.ValueSize], value)
	setNodeType(c.buf, nodeOffset, typeLeafWithValue)
	updateEmbeddedAncestorSizes(c.buf, ancestors, at, cfg.ValueSize)
	return handle, nil
}

// clearOwnValue removes the value carried directly on the node at
// nodeOffset, demoting it back to typeInnerNode (if it still hosts
// children) so the node slot itself survives as dead-but-valid structure
// until a future Compact — see DESIGN.md, Open Question 2.
func clearOwnValue(a Arena, cfg Config, handle Handle, ancestors []ref, nodeOffset int, hasChildren bool) (Handle, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, err
	}
	v := decodeAt(c.buf, nodeOffset, noPrevChar, cfg)
	if v.typ != typeLeafWithValue {
		return handle, nil
	}
	voff := v.valueOffset(c.buf)
	c.removeBytes(voff, cfg.ValueSize)
	if hasChildren {
		setNodeType(c.buf, nodeOffset, typeInnerNode)
	} else {
		setNodeType(c.buf, nodeOffset, typeLeafEmpty)
	}
	updateEmbeddedAncestorSizes(c.buf, ancestors, voff, -cfg.ValueSize)
	return handle, nil
}

// createPathCompressedChild installs a fresh PC leaf under a sub node
// whose child_container was None (spec.md §4.4 "Creation"). If residual is
// long enough that the leaf's 7-bit size field can't hold it (spec.md §8:
// "Keys of length 129 exercise PC leaves near the 127-byte residual cap
// (split required)"), it installs an embedded region instead and defers to
// createSplitChild.
func createPathCompressedChild(a Arena, cfg Config, handle Handle, ancestors []ref, subOffset, childOff int, residual []byte, value NodeValue) (Handle, error) {
	if !pcFits(cfg, true, len(residual)) {
		return createSplitChild(a, cfg, handle, ancestors, subOffset, childOff, residual, value)
	}

	size := pcSize(cfg, true, len(residual))
	handle, c, err := growContainer(a, handle, cfg, size)
	if err != nil {
		return zeroHandle, err
	}
	c.insertBytes(childOff, size)
	writePCLeaf(c.buf, childOff, cfg, value, residual)
	setSubChildContainer(c.buf, subOffset, childPathCompressed)
	updateEmbeddedAncestorSizes(c.buf, ancestors, childOff, size)
	return handle, nil
}

// createSplitChild installs a fresh, empty embedded container at childOff
// in place of an oversized PC leaf, then reinserts residual one level down
// through the ordinary recursive descent. That descent consumes another
// top/sub byte pair from residual and, if what's left still doesn't fit
// pcFits, calls back into createPathCompressedChild and splits again — the
// same "recurse until it fits" shape convertPathCompressedToEmbedded already
// uses for diverging PC leaves, just with one tail instead of two.
func createSplitChild(a Arena, cfg Config, handle Handle, ancestors []ref, subOffset, childOff int, residual []byte, value NodeValue) (Handle, error) {
	handle, c, err := growContainer(a, handle, cfg, sizeEmbeddedHeader)
	if err != nil {
		return zeroHandle, err
	}
	c.insertBytes(childOff, sizeEmbeddedHeader)
	embeddedHeader{size: uint32(sizeEmbeddedHeader)}.encode(c.buf, childOff)
	setSubChildContainer(c.buf, subOffset, childEmbedded)
	updateEmbeddedAncestorSizes(c.buf, ancestors, childOff, sizeEmbeddedHeader)

	return descendIntoEmbedded(a, cfg, handle, ancestors, subOffset, childOff, residual, value)
}

// descendIntoEmbedded inserts tail under the embedded child at childOff,
// enforcing cfg.MaxEmbeddedDepth (spec.md §3/§4.5's
// embedded_stack[0..MAX_EMBEDDED_DEPTH] bound): once ancestors already holds
// that many enclosing embedded frames, the child is ejected to a standalone
// linked container instead of being nested one level deeper, and the insert
// continues there. Below the cap it recurses into the embedded region as
// usual and lets maybeEjectAfterGrowth handle the ordinary size-based
// ejection trigger.
func descendIntoEmbedded(a Arena, cfg Config, handle Handle, ancestors []ref, subOffset, childOff int, tail []byte, value NodeValue) (Handle, error) {
	if len(ancestors) >= cfg.MaxEmbeddedDepth {
		handle, err := ejectContainer(a, cfg, handle, subOffset, childOff, ancestors)
		if err != nil {
			return zeroHandle, err
		}
		c, err := resolveContainer(a, handle)
		if err != nil {
			return zeroHandle, err
		}
		linked := readHandle(c.buf, childOff)
		newLinked, err := putKey(a, cfg, linked, region{}, nil, tail, value)
		if err != nil {
			return zeroHandle, err
		}
		if newLinked != linked {
			c, err = resolveContainer(a, handle)
			if err != nil {
				return zeroHandle, err
			}
			writeHandle(c.buf, childOff, newLinked)
		}
		return handle, nil
	}

	newAncestors := append(append([]ref{}, ancestors...), ref{valid: true, handle: handle, offset: childOff})
	handle, err := putKey(a, cfg, handle, region{embedded: true, embedOffset: childOff}, newAncestors, tail, value)
	if err != nil {
		return zeroHandle, err
	}
	return maybeEjectAfterGrowth(a, cfg, handle, ancestors, subOffset, childOff)
}

// descendDivergedIntoEmbedded reinserts the two tails a PC-leaf divergence
// split produces (the old leaf's residual/value, and the new key's
// tail/value) into the embedded region convertPathCompressedToEmbedded just
// installed at childOff. It enforces cfg.MaxEmbeddedDepth the same way
// descendIntoEmbedded does: at the cap, the (still-empty) embedded region is
// ejected to a standalone linked container and both keys are inserted there
// instead of nesting another embedded frame.
func descendDivergedIntoEmbedded(a Arena, cfg Config, handle Handle, ancestors []ref, subOffset, childOff int, tailA []byte, valueA NodeValue, tailB []byte, valueB NodeValue) (Handle, error) {
	if len(ancestors) >= cfg.MaxEmbeddedDepth {
		handle, err := ejectContainer(a, cfg, handle, subOffset, childOff, ancestors)
		if err != nil {
			return zeroHandle, err
		}
		c, err := resolveContainer(a, handle)
		if err != nil {
			return zeroHandle, err
		}
		linked := readHandle(c.buf, childOff)
		linked, err = putKey(a, cfg, linked, region{}, nil, tailA, valueA)
		if err != nil {
			return zeroHandle, err
		}
		linked, err = putKey(a, cfg, linked, region{}, nil, tailB, valueB)
		if err != nil {
			return zeroHandle, err
		}
		c, err = resolveContainer(a, handle)
		if err != nil {
			return zeroHandle, err
		}
		writeHandle(c.buf, childOff, linked)
		return handle, nil
	}

	newAncestors := append(append([]ref{}, ancestors...), ref{valid: true, handle: handle, offset: childOff})
	handle, err := putKey(a, cfg, handle, region{embedded: true, embedOffset: childOff}, newAncestors, tailA, valueA)
	if err != nil {
		return zeroHandle, err
	}
	handle, err = putKey(a, cfg, handle, region{embedded: true, embedOffset: childOff}, newAncestors, tailB, valueB)
	if err != nil {
		return zeroHandle, err
	}
	return maybeEjectAfterGrowth(a, cfg, handle, ancestors, subOffset, childOff)
}

// updatePathCompressedValue is update_path_compressed_node: grows the PC
// leaf by cfg.ValueSize and sets value_present if it lacked a value,
// otherwise overwrites the existing value in place.
func updatePathCompressedValue(a Arena, cfg Config, handle Handle, ancestors []ref, childOff int, value NodeValue) (Handle, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, err
	}
	hdr := decodePCHeader(c.buf[childOff])
	if hdr.valuePresent {
		voff := pcValueOffset(childOff)
		copy(c.buf[voff:voff+cfg.ValueSize], value)
		return handle, nil
	}

	at := childOff + pcHeaderSize
	handle, c, err = growContainer(a, handle, cfg, cfg.ValueSize)
	if err != nil {
		return zeroHandle, err
	}
	c.insertBytes(at, cfg.ValueSize)
	copy(c.buf[at:at+cfg.ValueSize], value)
	newHdr := pcHeader{valuePresent: true, size: hdr.size + uint8(cfg.ValueSize)}
	c.buf[childOff] = newHdr.encode()
	updateEmbeddedAncestorSizes(c.buf, ancestors, at, cfg.ValueSize)
	return handle, nil
}

// maybeEjectAfterGrowth checks an embedded container's size against
// cfg.EmbedBudget after a recursive insert grew it, ejecting it to a
// standalone linked container if it has outgrown the budget (spec.md
// §4.5 "Ejection").
func maybeEjectAfterGrowth(a Arena, cfg Config, handle Handle, ancestors []ref, subOffset, embedOffset int) (Handle, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, err
	}
	h := decodeEmbeddedHeader(c.buf, embedOffset)
	if int(h.size) <= cfg.EmbedBudget {
		return handle, nil
	}
	return ejectContainer(a, cfg, handle, subOffset, embedOffset, ancestors)
}

// putKey inserts or updates key under the region rooted at handle,
// consuming key two bytes (one top char, one sub char) per level.
func putKey(a Arena, cfg Config, handle Handle, reg region, ancestors []ref, key []byte, value NodeValue) (Handle, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, err
	}
	base, end := regionBounds(c, reg)

	found, offset, lastChar := scanForChar(c.buf, base, end, false, key[0], cfg)
	if !found {
		if handle, err = insertNewTopNode(a, cfg, handle, ancestors, offset, key[0], lastChar, valueIfTerminal(key, value)); err != nil {
			return zeroHandle, err
		}
		if len(key) == 1 {
			return handle, nil
		}
		// The node just inserted grew the container/region by its own
		// size; recompute this region's end before descending into subs.
		c, err = resolveContainer(a, handle)
		if err != nil {
			return zeroHandle, err
		}
		_, end = regionBounds(c, reg)
		return putSub(a, cfg, handle, ancestors, offset, end, key[1:], value)
	}

	if len(key) == 1 {
		return setOwnValue(a, cfg, handle, ancestors, offset, value)
	}
	return putSub(a, cfg, handle, ancestors, offset, end, key[1:], value)
}

func valueIfTerminal(key []byte, value NodeValue) NodeValue {
	if len(key) == 1 {
		return value
	}
	return nil
}

// putSub inserts or updates under the sub region of the top node at
// topOffset, where key is the remaining key bytes starting with the sub
// char.
func putSub(a Arena, cfg Config, handle Handle, ancestors []ref, topOffset, regEnd int, key []byte, value NodeValue) (Handle, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, err
	}
	subEnd := subRegionEnd(c.buf, topOffset, regEnd, cfg)
	subBase := decodeAt(c.buf, topOffset, noPrevChar, cfg).nextOffset(c.buf)

	found, offset, lastChar := scanForChar(c.buf, subBase, subEnd, true, key[0], cfg)
	if !found {
		if handle, err = insertNewSubNode(a, cfg, handle, ancestors, offset, key[0], lastChar, valueIfTerminal(key, value)); err != nil {
			return zeroHandle, err
		}
		if len(key) == 1 {
			return handle, nil
		}
		c, err = resolveContainer(a, handle)
		if err != nil {
			return zeroHandle, err
		}
		childOff := decodeAt(c.buf, offset, noPrevChar, cfg).childOffset()
		return createPathCompressedChild(a, cfg, handle, ancestors, offset, childOff, key[1:], value)
	}

	if len(key) == 1 {
		return setOwnValue(a, cfg, handle, ancestors, offset, value)
	}

	v := decodeAt(c.buf, offset, lastChar, cfg)
	childOff := v.childOffset()
	tail := key[1:]

	switch v.child {
	case childNone:
		return createPathCompressedChild(a, cfg, handle, ancestors, offset, childOff, tail, value)

	case childPathCompressed:
		if comparePathCompressedNode(c.buf, childOff, tail, cfg) {
			return updatePathCompressedValue(a, cfg, handle, ancestors, childOff, value)
		}
		old := safePathCompressedContext(c.buf, childOff, cfg)
		handle, err = convertPathCompressedToEmbedded(a, cfg, handle, offset, childOff, int(old.header.size), ancestors)
		if err != nil {
			return zeroHandle, err
		}
		return descendDivergedIntoEmbedded(a, cfg, handle, ancestors, offset, childOff, old.residualKey, old.value, tail, value)

	case childEmbedded:
		return descendIntoEmbedded(a, cfg, handle, ancestors, offset, childOff, tail, value)

	case childLink:
		linked := readHandle(c.buf, childOff)
		newLinked, err := putKey(a, cfg, linked, region{}, nil, tail, value)
		if err != nil {
			return zeroHandle, err
		}
		if newLinked != linked {
			c, err = resolveContainer(a, handle)
			if err != nil {
				return zeroHandle, err
			}
			writeHandle(c.buf, childOff, newLinked)
		}
		return handle, nil
	}
	return handle, nil
}

// getKey is the read-only counterpart of putKey.
func getKey(a Arena, cfg Config, handle Handle, reg region, key []byte) (NodeValue, ReturnCode, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return nil, OK, err
	}
	base, end := regionBounds(c, reg)

	found, offset, lastChar := scanForChar(c.buf, base, end, false, key[0], cfg)
	if !found {
		return nil, GetFailureNoLeaf, nil
	}
	v := decodeAt(c.buf, offset, lastChar, cfg)
	if len(key) == 1 {
		if v.typ != typeLeafWithValue {
			return nil, GetFailureNoLeaf, nil
		}
		return v.value(c.buf), OK, nil
	}

	subEnd := subRegionEnd(c.buf, offset, end, cfg)
	subBase := v.nextOffset(c.buf)
	found, soffset, slast := scanForChar(c.buf, subBase, subEnd, true, key[1], cfg)
	if !found {
		return nil, GetFailureNoLeaf, nil
	}
	sv := decodeAt(c.buf, soffset, slast, cfg)
	if len(key) == 2 {
		if sv.typ != typeLeafWithValue {
			return nil, GetFailureNoLeaf, nil
		}
		return sv.value(c.buf), OK, nil
	}

	childOff := sv.childOffset()
	tail := key[2:]
	switch sv.child {
	case childNone:
		return nil, GetFailureNoLeaf, nil
	case childPathCompressed:
		if !comparePathCompressedNode(c.buf, childOff, tail, cfg) {
			return nil, GetFailureNoLeaf, nil
		}
		hdr := decodePCHeader(c.buf[childOff])
		if !hdr.valuePresent {
			return nil, GetFailureNoLeaf, nil
		}
		value, _ := readPCLeaf(c.buf, childOff, cfg)
		return value, OK, nil
	case childEmbedded:
		return getKey(a, cfg, handle, region{embedded: true, embedOffset: childOff}, tail)
	case childLink:
		linked := readHandle(c.buf, childOff)
		return getKey(a, cfg, linked, region{}, tail)
	}
	return nil, GetFailureNoLeaf, nil
}

// deleteKey is the mutating counterpart: removes a leaf's own value if
// found, and eagerly collapses embedded/linked children that become empty
// as a direct result (DESIGN.md, Open Question 2). Dead top/sub node
// slots left without a value or children are not removed here — Compact
// reclaims them.
func deleteKey(a Arena, cfg Config, handle Handle, reg region, ancestors []ref, key []byte) (Handle, ReturnCode, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, OK, err
	}
	base, end := regionBounds(c, reg)

	found, offset, lastChar := scanForChar(c.buf, base, end, false, key[0], cfg)
	if !found {
		return handle, DeleteFailureNoLeaf, nil
	}
	v := decodeAt(c.buf, offset, lastChar, cfg)
	if len(key) == 1 {
		if v.typ != typeLeafWithValue {
			return handle, DeleteFailureNoLeaf, nil
		}
		subEnd := subRegionEnd(c.buf, offset, end, cfg)
		hasChildren := subEnd > v.nextOffset(c.buf)
		handle, err = clearOwnValue(a, cfg, handle, ancestors, offset, hasChildren)
		return handle, OK, err
	}

	subEnd := subRegionEnd(c.buf, offset, end, cfg)
	subBase := v.nextOffset(c.buf)
	found, soffset, slast := scanForChar(c.buf, subBase, subEnd, true, key[1], cfg)
	if !found {
		return handle, DeleteFailureNoLeaf, nil
	}
	sv := decodeAt(c.buf, soffset, slast, cfg)

	if len(key) == 2 {
		if sv.typ != typeLeafWithValue {
			return handle, DeleteFailureNoLeaf, nil
		}
		handle, err = clearOwnValue(a, cfg, handle, ancestors, soffset, sv.child != childNone)
		return handle, OK, err
	}

	childOff := sv.childOffset()
	tail := key[2:]
	switch sv.child {
	case childNone:
		return handle, DeleteFailureNoLeaf, nil

	case childPathCompressed:
		if !comparePathCompressedNode(c.buf, childOff, tail, cfg) {
			return handle, DeleteFailureNoLeaf, nil
		}
		hdr := decodePCHeader(c.buf[childOff])
		c.removeBytes(childOff, int(hdr.size))
		setSubChildContainer(c.buf, soffset, childNone)
		updateEmbeddedAncestorSizes(c.buf, ancestors, childOff, -int(hdr.size))
		return handle, OK, nil

	case childEmbedded:
		newAncestors := append(append([]ref{}, ancestors...), ref{valid: true, handle: handle, offset: childOff})
		var rc ReturnCode
		handle, rc, err = deleteKey(a, cfg, handle, region{embedded: true, embedOffset: childOff}, newAncestors, tail)
		if err != nil || rc != OK {
			return handle, rc, err
		}
		c, err = resolveContainer(a, handle)
		if err != nil {
			return zeroHandle, OK, err
		}
		eb, ee := regionBounds(c, region{embedded: true, embedOffset: childOff})
		if eb >= ee {
			size := int(decodeEmbeddedHeader(c.buf, childOff).size)
			c.removeBytes(childOff, size)
			setSubChildContainer(c.buf, soffset, childNone)
			updateEmbeddedAncestorSizes(c.buf, ancestors, childOff, -size)
		}
		return handle, OK, nil

	case childLink:
		linked := readHandle(c.buf, childOff)
		newLinked, rc, err := deleteKey(a, cfg, linked, region{}, nil, tail)
		if err != nil || rc != OK {
			return handle, rc, err
		}
		lc, err := resolveContainer(a, newLinked)
		if err != nil {
			return zeroHandle, OK, err
		}
		if lc.safeOffset() <= int(lc.headSize()) {
			if err := a.Free(newLinked); err != nil {
				return zeroHandle, OK, err
			}
			c.removeBytes(childOff, sizeLink)
			setSubChildContainer(c.buf, soffset, childNone)
			updateEmbeddedAncestorSizes(c.buf, ancestors, childOff, -sizeLink)
			return handle, OK, nil
		}
		if newLinked != linked {
			writeHandle(c.buf, childOff, newLinked)
		}
		return handle, OK, nil
	}
	return handle, DeleteFailureNoLeaf, nil
}
