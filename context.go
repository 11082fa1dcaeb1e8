package hyperion

// ref is an interior traversal reference: a (container handle, byte
// offset) pair instead of a raw address. Per Design Notes §9 this is the
// one structural change from the original's raw-pointer traversal context
// — resolving a ref costs one Arena.Resolve call, but it means a
// reallocation never needs to rebase anything: offsets are stable, only
// addresses move. See DESIGN.md "Traversal / operation context".
type ref struct {
	handle Handle
	offset int
	valid  bool
}

func (r ref) resolve(a Arena) (*Container, error) {
	if !r.valid {
		return nil, ErrInvalidHandle
	}
	return resolveContainer(a, r.handle)
}

// pathCompressedEjectionContext is safe_path_compressed_context's
// destination: a side-band copy of a PC leaf's header, value, and residual
// key so the engine can keep consulting it after the container underneath
// has been shifted.
type pathCompressedEjectionContext struct {
	header      pcHeader
	value       NodeValue
	residualKey []byte
}

// rangeQueryContext holds the state range.go's driver needs across its
// depth-first walk: the expanding key buffer (truncated back on the way
// out of each recursive call, mirroring operation.go's putKey/getKey/
// deleteKey descent style) and the caller's callback.
type rangeQueryContext struct {
	key   []byte
	cb    Callback
	abort bool
}
