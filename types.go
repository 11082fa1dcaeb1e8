package hyperion

// NodeValue is the fixed-size record stored at a key. Hyperion never
// interprets the bytes of a value; callers decide the record layout.
type NodeValue []byte

// ReturnCode reports the outcome of an operation without raising an error
// for the common, expected cases (misses, bad arguments).
type ReturnCode uint8

const (
	// OK indicates the operation completed and produced a usable result.
	OK ReturnCode = iota
	// GetFailureNoLeaf indicates a Get found no leaf for the key.
	GetFailureNoLeaf
	// PutFailureNoMem indicates a Put could not reserve arena space.
	PutFailureNoMem
	// InvalidArgument indicates a malformed argument, e.g. an empty key.
	InvalidArgument
	// DeleteFailureNoLeaf indicates a Delete found no leaf for the key.
	DeleteFailureNoLeaf
)

func (rc ReturnCode) String() string {
	switch rc {
	case OK:
		return "OK"
	case GetFailureNoLeaf:
		return "GetFailureNoLeaf"
	case PutFailureNoMem:
		return "PutFailureNoMem"
	case InvalidArgument:
		return "InvalidArgument"
	case DeleteFailureNoLeaf:
		return "DeleteFailureNoLeaf"
	default:
		return "Unknown"
	}
}

// command distinguishes the three mutating/reading operations that share
// the one descent loop in operation.go.
type command uint8

const (
	cmdGet command = iota
	cmdPut
	cmdDelete
)

// nodeType is the type tag carried by both top and sub node headers.
type nodeType uint8

const (
	typeInvalid nodeType = iota
	typeInnerNode
	typeLeafEmpty
	typeLeafWithValue
)

// childContainer is the type tag a sub node carries describing what, if
// anything, hangs off it.
type childContainer uint8

const (
	childNone childContainer = iota
	childLink
	childEmbedded
	childPathCompressed
)

// Callback is invoked once per key visited by Range, in strict ascending
// lexicographic order. Returning false stops the scan early.
type Callback func(key []byte, value NodeValue) bool

// Config tunes thresholds and sizing that spec.md leaves as "should be
// exposed as configuration rather than hard-coded" (§4.6) or as an open
// question (§9). Never mutated after New; safe to share read-only across
// Maps built with the same values.
type Config struct {
	// ValueSize is the fixed size, in bytes, of every stored NodeValue.
	ValueSize int
	// ContainerSizeIncrement is the multiple containers are rounded to.
	ContainerSizeIncrement int
	// InitialContainerSize is the size of a freshly initialized container
	// (container size "type 0").
	InitialContainerSize int
	// ContainerMaxFreeSize is the free-byte watermark past which a
	// container is shrunk after a container-reducing mutation.
	ContainerMaxFreeSize int
	// EmbedBudget is the maximum byte size an embedded container may grow
	// to before it is ejected into a standalone, linked container.
	EmbedBudget int
	// MaxEmbeddedDepth bounds how many embedded containers may be nested
	// inside one another before a descent is forced to eject.
	MaxEmbeddedDepth int
	// SubJumpTableThreshold is the number of sub nodes under one top past
	// which a sub-level jump table is materialized. See DESIGN.md, Open
	// Question 1 — not specified upstream, resolved here as a tunable.
	SubJumpTableThreshold int
	// SuccessorJumpThreshold is the encoded byte extent a top node's sub
	// region must reach before a successor jump is inserted.
	SuccessorJumpThreshold int
}

// DefaultConfig returns the values this module was built and tested
// against. See DESIGN.md for how each was derived.
func DefaultConfig(valueSize int) Config {
	return Config{
		ValueSize:              valueSize,
		ContainerSizeIncrement: 32,
		InitialContainerSize:   32,
		ContainerMaxFreeSize:   64,
		EmbedBudget:            256,
		MaxEmbeddedDepth:       6,
		SubJumpTableThreshold:  24,
		SuccessorJumpThreshold: 128,
	}
}

// Options configures a new Map.
type Options struct {
	// Config tunes the engine. The zero value is invalid; use
	// DefaultConfig if the caller has no opinion.
	Config Config
	// Arena backs all container allocation. If nil, New constructs a
	// fresh, empty HeapArena.
	Arena Arena
}

const (
	headerSizeTop = 1
	headerSizeSub = 1

	sizeLink           = 8 // arena Handle (slab uint32 + gen uint32)
	sizeEmbeddedHeader = 4  // embedded container's own size field
	sizeJumpSuccessor  = 2
	sizeJumpTableEntry = 2
	// jumpTableBuckets is indexed by the high 3 bits of a char (0..7);
	// spec.md §4.6/§8 scenario 5 describes "7 buckets" but its own worked
	// example (second_char=0xE0 → bucket 7) requires 8 indices (0..7).
	jumpTableBuckets = 8

	pcHeaderSize  = 1
	pcMaxSize     = 0x7F // 7-bit size field
	pcMaxResidual = pcMaxSize - pcHeaderSize
)
