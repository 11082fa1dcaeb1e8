package hyperion

// range.go implements spec.md §4.7: an ordered, depth-first walk emitting
// every key at or after beginKey through a user callback, in strict
// lexicographic order (spec.md §5's ordering guarantee, P8).
//
// Grounded on the teacher's Range.go (rangeRecursive), kept as Go-level
// recursion (walkRegion calls itself for embedded regions and linked
// containers) rather than an explicit resume stack — the same recursive
// shape as operation.go's descent instead of a second traversal style.

// walkRegion performs the depth-first emit for one region (root or
// embedded), appending to rqc.key as it descends and truncating on the
// way back out. beginKey, when non-nil, is the bound below which nodes in
// THIS region are skipped entirely (used only on the first, leftmost
// region of the walk).
func walkRegion(a Arena, cfg Config, handle Handle, reg region, beginKey []byte, rqc *rangeQueryContext) (bool, error) {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return false, err
	}
	base, end := regionBounds(c, reg)

	pos := base
	last := noPrevChar
	for pos < end {
		if rqc.abort {
			return false, nil
		}
		if headerIsSub(c.buf[pos]) {
			break
		}
		v := decodeAt(c.buf, pos, last, cfg)
		last = int(v.char)

		var topBegin []byte
		if len(beginKey) > 0 && v.char < beginKey[0] {
			pos = v.nextOffset(c.buf)
			continue
		}
		if len(beginKey) > 0 && v.char == beginKey[0] {
			topBegin = beginKey[1:]
		}

		keyLen := len(rqc.key)
		rqc.key = append(rqc.key, v.char)

		if v.typ == typeLeafWithValue && len(topBegin) == 0 {
			if !rqc.cb(append([]byte(nil), rqc.key...), v.value(c.buf)) {
				rqc.abort = true
				rqc.key = rqc.key[:keyLen]
				return false, nil
			}
		}

		subEnd := subRegionEnd(c.buf, pos, end, cfg)
		subPos := v.nextOffset(c.buf)
		subLast := noPrevChar
		for subPos < subEnd {
			if rqc.abort {
				return false, nil
			}
			sv := decodeAt(c.buf, subPos, subLast, cfg)
			subLast = int(sv.char)

			var subBegin []byte
			if len(topBegin) > 0 && sv.char < topBegin[0] {
				subPos = sv.nextOffset(c.buf)
				continue
			}
			if len(topBegin) > 0 && sv.char == topBegin[0] {
				subBegin = topBegin[1:]
			}

			subKeyLen := len(rqc.key)
			rqc.key = append(rqc.key, sv.char)

			if sv.typ == typeLeafWithValue && len(subBegin) == 0 {
				if !rqc.cb(append([]byte(nil), rqc.key...), sv.value(c.buf)) {
					rqc.abort = true
					rqc.key = rqc.key[:subKeyLen]
					return false, nil
				}
			}

			childOff := sv.childOffset()
			switch sv.child {
			case childPathCompressed:
				hdr := decodePCHeader(c.buf[childOff])
				value, residual := readPCLeaf(c.buf, childOff, cfg)
				if hdr.valuePresent && (len(subBegin) == 0 || bytesGTE(residual, subBegin)) {
					full := append(append([]byte(nil), rqc.key...), residual...)
					if !rqc.cb(full, value) {
						rqc.abort = true
					}
				}
			case childEmbedded:
				cont, err := walkRegion(a, cfg, handle, region{embedded: true, embedOffset: childOff}, subBegin, rqc)
				if err != nil {
					return false, err
				}
				if !cont {
					rqc.key = rqc.key[:subKeyLen]
					return false, nil
				}
			case childLink:
				linked := readHandle(c.buf, childOff)
				cont, err := walkRegion(a, cfg, linked, region{}, subBegin, rqc)
				if err != nil {
					return false, err
				}
				if !cont {
					rqc.key = rqc.key[:subKeyLen]
					return false, nil
				}
			}

			rqc.key = rqc.key[:subKeyLen]
			subPos = sv.nextOffset(c.buf)
		}

		rqc.key = rqc.key[:keyLen]
		pos = subEnd
	}
	return !rqc.abort, nil
}

// bytesGTE reports whether a >= b lexicographically.
func bytesGTE(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return len(a) >= len(b)
}

// rangeScan drives a full Range call starting at the root container.
func rangeScan(a Arena, cfg Config, root Handle, beginKey []byte, cb Callback) (ReturnCode, error) {
	rqc := &rangeQueryContext{cb: cb}
	_, err := walkRegion(a, cfg, root, region{}, beginKey, rqc)
	if err != nil {
		return OK, err
	}
	return OK, nil
}
