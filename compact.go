package hyperion

// compact.go supplements spec.md with a whole-structure rebuild, grounded
// on the teacher's Compact.go/CompactUtils.go background file-swap
// compaction — adapted to a synchronous, single-writer in-memory rebuild
// since Hyperion has no version counter to threshold on and no background
// goroutine/signal channel story (non-goal: durability/transactions). See
// SPEC_FULL.md §9.4.

// Compact rebuilds the map into a freshly allocated, densely packed root,
// reclaiming the dead-but-valid node slots and ejected/fragmented
// containers that accumulate from eager-collapse deletes (DESIGN.md, Open
// Question 2) and embedded-container growth churn. It walks the live
// structure in key order and reinserts every key/value pair, then
// atomically swaps in the new root. Runs under the same exclusive lock as
// any other mutating operation — never a background pass.
func (m *Map) Compact() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	newRoot, err := initializeContainer(m.arena, m.cfg)
	if err != nil {
		return err
	}

	oldRoot := m.root
	var walkErr error
	_, err = walkRegion(m.arena, m.cfg, oldRoot, region{}, nil, &rangeQueryContext{
		cb: func(key []byte, value NodeValue) bool {
			var putErr error
			newRoot, putErr = putKey(m.arena, m.cfg, newRoot, region{}, nil, key, value)
			if putErr != nil {
				walkErr = putErr
				return false
			}
			return true
		},
	})
	if err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}

	m.root = newRoot
	return freeContainerTree(m.arena, m.cfg, oldRoot)
}

// freeContainerTree releases handle and every linked container reachable
// from it (embedded containers need no separate free — their bytes live
// inline in the container that already owns them and are released along
// with it).
func freeContainerTree(a Arena, cfg Config, handle Handle) error {
	c, err := resolveContainer(a, handle)
	if err != nil {
		return err
	}
	base, end := regionBounds(c, region{})
	if err := freeLinkedChildren(a, cfg, c, base, end); err != nil {
		return err
	}
	return a.Free(handle)
}

func freeLinkedChildren(a Arena, cfg Config, c *Container, base, end int) error {
	pos := base
	lastTop := noPrevChar
	for pos < end {
		if headerIsSub(c.buf[pos]) {
			break
		}
		tv := decodeAt(c.buf, pos, lastTop, cfg)
		lastTop = int(tv.char)

		subEnd := subRegionEnd(c.buf, pos, end, cfg)
		subPos := tv.nextOffset(c.buf)
		lastSub := noPrevChar
		for subPos < subEnd {
			sv := decodeAt(c.buf, subPos, lastSub, cfg)
			lastSub = int(sv.char)

			switch sv.child {
			case childEmbedded:
				childOff := sv.childOffset()
				eb, ee := regionBounds(c, region{embedded: true, embedOffset: childOff})
				if err := freeLinkedChildren(a, cfg, c, eb, ee); err != nil {
					return err
				}
			case childLink:
				linked := readHandle(c.buf, sv.childOffset())
				if err := freeContainerTree(a, cfg, linked); err != nil {
					return err
				}
			}
			subPos = sv.nextOffset(c.buf)
		}
		pos = subEnd
	}
	return nil
}
