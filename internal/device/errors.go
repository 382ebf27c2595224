package device

import "errors"

// The node's failure modes form a closed set, mirroring the classic
// character-device error taxonomy.
var (
	// ErrInvalidArgument means no leading decimal integer could be
	// parsed from the written bytes.
	ErrInvalidArgument = errors.New("device: invalid argument")

	// ErrFault means the caller's buffer could not be transferred.
	// Raised by transport boundaries (e.g. an HTTP body copy failing),
	// never by the node itself.
	ErrFault = errors.New("device: transfer fault")

	// ErrNoMemory means a transient decode buffer could not be obtained.
	ErrNoMemory = errors.New("device: out of memory")
)
