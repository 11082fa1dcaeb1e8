package hyperion

import "fmt"

// errors.go implements the logic/invariant-error kind of spec.md §7's
// three-kind error model. The other two kinds already have their own
// homes: lookup misses are ReturnCode values (types.go), arena resource
// errors are plain Go errors returned from Arena methods (arena.go).

// invariantError marks a violation of an internal precondition that
// should be unreachable given correct encoding — corruption, not a
// caller mistake. Grounded on mari's own plain-errors.New style (see
// DESIGN.md); wrapped rather than panicked so a caller embedding Hyperion
// in a long-lived server can recover and report instead of crashing the
// process.
type invariantError struct {
	msg string
}

func (e *invariantError) Error() string { return "hyperion: invariant violated: " + e.msg }

// fail constructs an invariantError, analogous to fmt.Errorf but reserved
// for states decode_at/next_offset/etc. should never actually reach.
func fail(format string, args ...any) error {
	return &invariantError{msg: fmt.Sprintf(format, args...)}
}

// isInvariantError reports whether err originated from fail.
func isInvariantError(err error) bool {
	_, ok := err.(*invariantError)
	return ok
}
