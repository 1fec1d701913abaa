package genome

import "errors"

// Contract violations. Callers match them with errors.Is; none of them are
// transient, so they should propagate unmodified.
var (
	// ErrInvalidArgument reports a malformed interval, a negative size or
	// extension, or a read or variant that breaks a container's contract.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidSequence reports a non-contiguous activity state.
	ErrInvalidSequence = errors.New("invalid sequence")

	// ErrInvalidState reports an operation that is not defined for the
	// receiver's current state.
	ErrInvalidState = errors.New("invalid state")
)
