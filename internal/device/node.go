// Package device implements the rotation sensor's byte-stream node: reads
// serve the current angle as a decimal string, writes overwrite the raw
// tick count for calibration. The node is the request-context side of the
// shared counter; the gpio edge handler is the other.
package device

import (
	"fmt"
	"sync"

	"github.com/sweeney/rotation-sensor/internal/counter"
)

// Node exposes a counter through read/write calls with character-device
// semantics. Safe for concurrent use; each caller owns its own read cursor.
type Node struct {
	counter *counter.Counter

	mu     sync.Mutex
	writes int64
}

// NewNode creates a Node serving the given counter.
func NewNode(c *counter.Counter) *Node {
	return &Node{counter: c}
}

// Format renders the current angle as "<deg>.<tenth>\n" using truncating
// division on tenths of a degree. An unnormalized counter value renders an
// out-of-range (possibly negative) angle; that is the raw state and is
// shown as-is.
func (n *Node) Format() string {
	a := n.counter.Angle()
	return fmt.Sprintf("%d.%d\n", a/10, a%10)
}

// Read copies up to len(p) bytes of the formatted angle string into p,
// starting at *off, and advances *off by the count copied. A cursor at or
// past the end of the string yields (0, nil): end of stream, not an error.
//
// The string is recomputed from the live counter on every call, not frozen
// for the lifetime of a multi-chunk read. A caller reading in small chunks
// while the shaft turns can therefore see bytes from different snapshots;
// this matches the behavior of the original device and is deliberate.
func (n *Node) Read(p []byte, off *int64) (int, error) {
	if *off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, *off)
	}

	s := n.Format()
	remaining := int64(len(s)) - *off
	if remaining <= 0 {
		return 0, nil
	}

	count := int64(len(p))
	if count > remaining {
		count = remaining
	}
	copy(p, s[*off:*off+count])
	*off += count
	return int(count), nil
}

// Write parses a leading signed decimal integer from p and overwrites the
// counter with it, without normalizing. Consumes the whole input on
// success. Returns ErrInvalidArgument if no integer can be parsed; the
// counter is left unchanged in that case.
func (n *Node) Write(p []byte) (int, error) {
	v, err := parseLeadingInt(p)
	if err != nil {
		return 0, err
	}

	n.counter.Set(v)

	n.mu.Lock()
	n.writes++
	n.mu.Unlock()
	return len(p), nil
}

// Writes returns the number of successful calibration writes since startup.
func (n *Node) Writes() int64 {
	n.mu.Lock()
	w := n.writes
	n.mu.Unlock()
	return w
}
