package device

import (
	"fmt"
	"strconv"
)

// parseLeadingInt extracts a signed decimal integer from the start of b,
// with scanf "%ld" shape: optional whitespace, optional sign, at least one
// digit; anything after the digits is ignored.
func parseLeadingInt(b []byte) (int64, error) {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}

	start := i
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	digitsFrom := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == digitsFrom {
		return 0, fmt.Errorf("%w: no integer in %q", ErrInvalidArgument, truncateForError(b))
	}

	v, err := strconv.ParseInt(string(b[start:i]), 10, 64)
	if err != nil {
		// Only possible failure here is range overflow.
		return 0, fmt.Errorf("%w: value out of range", ErrInvalidArgument)
	}
	return v, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// truncateForError keeps error messages short for large writes.
func truncateForError(b []byte) string {
	const max = 32
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
