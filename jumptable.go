package hyperion

// jumptable.go implements spec.md §4.6: the top-level jump table (already
// handled by container.go's topJumpTableOffset/setTopJumpTableOffset, since
// it is resident in the container header), the per-top successor jump, and
// the per-top sub-level jump table.

// subRegionEnd scans forward from a top node's own extent end until it hits
// the next top node (or the container's live boundary), returning that
// offset. Node headers self-identify as top or sub (node.go's
// headerIsSub), so no separate bookkeeping of "how many subs follow" is
// needed — this mirrors the original decoder's "containerType bit tells you
// which regime you're in" design.
func subRegionEnd(buf []byte, topOffset int, end int, cfg Config) int {
	v := decodeAt(buf, topOffset, noPrevChar, cfg)
	pos := v.nextOffset(buf)
	lastSub := noPrevChar
	for pos < end {
		if !headerIsSub(buf[pos]) {
			break
		}
		sv := decodeAt(buf, pos, lastSub, cfg)
		lastSub = int(sv.char)
		pos = sv.nextOffset(buf)
	}
	return pos
}

// countSubs returns the number of sub nodes under the top node at
// topOffset.
func countSubs(buf []byte, topOffset, end int, cfg Config) int {
	v := decodeAt(buf, topOffset, noPrevChar, cfg)
	pos := v.nextOffset(buf)
	lastSub := noPrevChar
	n := 0
	for pos < end {
		if !headerIsSub(buf[pos]) {
			break
		}
		sv := decodeAt(buf, pos, lastSub, cfg)
		lastSub = int(sv.char)
		pos = sv.nextOffset(buf)
		n++
	}
	return n
}

// useSubNodeJumpTable is spec.md §4.6's use_sub_node_jump_table: consults
// the bucket for the high 3 bits of target, and if populated, returns the
// absolute offset to resume scanning from plus the count of sub-char
// values it implicitly skipped (so the caller's last_sub_char_seen anchor
// stays correct).
func useSubNodeJumpTable(buf []byte, topOffset int, target byte, cfg Config) (offset int, charsSkipped int, ok bool) {
	h := buf[topOffset]
	if !headerJumpTbl(h) {
		return 0, 0, false
	}
	v := decodeAt(buf, topOffset, noPrevChar, cfg)
	tableStart := v.jumpTableOffsetField()
	bucket := target >> 5
	fieldOff := tableStart + int(bucket)*sizeJumpTableEntry
	rel := readU16(buf, fieldOff)
	if rel == 0 {
		return 0, 0, false
	}
	return topOffset + int(rel), int(bucket) * 32, true
}

// ensureSubJumpTable materializes a sub-level jump table under topOffset
// once its sub count crosses cfg.SubJumpTableThreshold (spec.md §9's open
// question on the exact threshold — resolved as Config.SubJumpTableThreshold,
// see DESIGN.md). No-op if the table already exists or the threshold isn't
// met.
func ensureSubJumpTable(a Arena, cfg Config, handle Handle, topOffset int, ancestors []ref) (Handle, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, err
	}
	if headerJumpTbl(c.buf[topOffset]) {
		return handle, nil
	}

	end := subRegionEnd(c.buf, topOffset, c.safeOffset(), cfg)
	if countSubs(c.buf, topOffset, end, cfg) < cfg.SubJumpTableThreshold {
		return handle, nil
	}

	tableBytes := jumpTableBuckets * sizeJumpTableEntry
	handle, c, err = growContainer(a, handle, cfg, tableBytes)
	if err != nil {
		return zeroHandle, err
	}

	v := decodeAt(c.buf, topOffset, noPrevChar, cfg)
	insertAt := v.jumpTableOffsetField()
	c.insertBytes(insertAt, tableBytes)
	c.buf[topOffset] |= hdrBitJumpTbl
	updateEmbeddedAncestorSizes(c.buf, ancestors, insertAt, tableBytes)
	bumpSuccessorJump(c.buf, ref{valid: true, offset: topOffset}, insertAt, tableBytes, cfg)

	populateSubJumpTable(c.buf, topOffset, cfg)
	return handle, nil
}

// populateSubJumpTable (re)scans a top's sub region and records, for each
// bucket not yet populated, the offset of the first sub node whose char
// falls in that bucket.
func populateSubJumpTable(buf []byte, topOffset int, cfg Config) {
	v := decodeAt(buf, topOffset, noPrevChar, cfg)
	tableStart := v.jumpTableOffsetField()
	end := subRegionEnd(buf, topOffset, len(buf), cfg)

	pos := v.nextOffset(buf)
	lastSub := noPrevChar
	seen := make([]bool, jumpTableBuckets)
	for pos < end {
		if !headerIsSub(buf[pos]) {
			break
		}
		sv := decodeAt(buf, pos, lastSub, cfg)
		bucket := sv.char >> 5
		if !seen[bucket] {
			seen[bucket] = true
			writeU16(buf, tableStart+int(bucket)*sizeJumpTableEntry, uint16(pos-topOffset))
		}
		lastSub = int(sv.char)
		pos = sv.nextOffset(buf)
	}
}

// ensureSuccessorJump materializes a successor-jump field on the top node
// at topOffset once its encoded sub-region extent crosses
// cfg.SuccessorJumpThreshold, letting later scans skip straight to
// nextTopOffset. No-op if already present.
func ensureSuccessorJump(a Arena, cfg Config, handle Handle, topOffset, nextTopOffset int, ancestors []ref) (Handle, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return zeroHandle, err
	}
	if headerJumpSucc(c.buf[topOffset]) {
		return handle, nil
	}
	end := subRegionEnd(c.buf, topOffset, c.safeOffset(), cfg)
	if end-topOffset < cfg.SuccessorJumpThreshold {
		return handle, nil
	}

	handle, c, err = growContainer(a, handle, cfg, sizeJumpSuccessor)
	if err != nil {
		return zeroHandle, err
	}

	v := decodeAt(c.buf, topOffset, noPrevChar, cfg)
	insertAt := v.jumpSuccessorOffsetField()
	c.insertBytes(insertAt, sizeJumpSuccessor)
	c.buf[topOffset] |= hdrBitJumpSucc
	updateEmbeddedAncestorSizes(c.buf, ancestors, insertAt, sizeJumpSuccessor)

	writeU16(c.buf, insertAt, uint16(nextTopOffset+sizeJumpSuccessor-topOffset))
	return handle, nil
}
