package hyperion

import "bytes"

// pathcompressed.go implements spec.md §4.4: a path-compressed (PC) leaf
// stores a terminal key tail and its value inline in one variable-length
// node, avoiding a chain of single-byte top/sub nodes for the unary run
// at the end of a key.

// pcSize computes a PC leaf's total on-disk extent: header + optional
// value + residual key bytes.
func pcSize(cfg Config, valuePresent bool, residualLen int) int {
	n := pcHeaderSize + residualLen
	if valuePresent {
		n += cfg.ValueSize
	}
	return n
}

// pcFits reports whether a residual of residualLen bytes (with or without
// a value) still fits the 7-bit size field.
func pcFits(cfg Config, valuePresent bool, residualLen int) bool {
	return pcSize(cfg, valuePresent, residualLen) <= pcMaxSize
}

func pcValueOffset(at int) int { return at + pcHeaderSize }

func pcResidualLen(hdr pcHeader, cfg Config) int {
	n := int(hdr.size) - pcHeaderSize
	if hdr.valuePresent {
		n -= cfg.ValueSize
	}
	return n
}

func pcResidualOffset(at int, cfg Config, valuePresent bool) int {
	n := at + pcHeaderSize
	if valuePresent {
		n += cfg.ValueSize
	}
	return n
}

// writePCLeaf stamps a PC leaf at "at" for residual with an optional value.
// Caller must already have reserved pcSize(cfg, value != nil, len(residual))
// bytes at this offset.
func writePCLeaf(buf []byte, at int, cfg Config, value NodeValue, residual []byte) {
	present := value != nil
	size := pcSize(cfg, present, len(residual))
	hdr := pcHeader{valuePresent: present, size: uint8(size)}
	buf[at] = hdr.encode()

	pos := at + pcHeaderSize
	if present {
		copy(buf[pos:pos+cfg.ValueSize], value)
		pos += cfg.ValueSize
	}
	copy(buf[pos:pos+len(residual)], residual)
}

// readPCLeaf decodes the PC leaf at "at" into its value (nil if absent)
// and residual key bytes.
func readPCLeaf(buf []byte, at int, cfg Config) (value NodeValue, residual []byte) {
	hdr := decodePCHeader(buf[at])
	if hdr.valuePresent {
		voff := pcValueOffset(at)
		value = append(NodeValue(nil), buf[voff:voff+cfg.ValueSize]...)
	}
	roff := pcResidualOffset(at, cfg, hdr.valuePresent)
	rlen := pcResidualLen(hdr, cfg)
	residual = append([]byte(nil), buf[roff:roff+rlen]...)
	return value, residual
}

// comparePathCompressedNode is spec.md §4.4's compare_path_compressed_node:
// succeeds iff the stored residual has exactly the same length and bytes
// as keyTail.
func comparePathCompressedNode(buf []byte, at int, keyTail []byte, cfg Config) bool {
	hdr := decodePCHeader(buf[at])
	rlen := pcResidualLen(hdr, cfg)
	if rlen != len(keyTail) {
		return false
	}
	roff := pcResidualOffset(at, cfg, hdr.valuePresent)
	return bytes.Equal(buf[roff:roff+rlen], keyTail)
}

// safePathCompressedContext is safe_path_compressed_context: copies the PC
// leaf's header, value, and residual key into a side-band ejection context
// so the engine can keep consulting the old payload after the container
// has been mutated underneath (the bytes at "at" are about to be
// overwritten to host an embedded container or a freshly split chain).
func safePathCompressedContext(buf []byte, at int, cfg Config) pathCompressedEjectionContext {
	hdr := decodePCHeader(buf[at])
	value, residual := readPCLeaf(buf, at, cfg)
	return pathCompressedEjectionContext{header: hdr, value: value, residualKey: residual}
}
