// Package counter holds the shared rotation counter for the quadrature
// decoder. This package has NO external dependencies (no GPIO, MQTT, or OS).
// The counter is the single point of contention between the edge-event
// goroutine and request handlers; both sides serialize through one mutex
// with O(1) critical sections.
package counter

import "sync"

// Direction of a single quadrature step, derived from channel B's level at
// the rising edge of channel A.
type Direction string

const (
	Clockwise        Direction = "CW"
	CounterClockwise Direction = "CCW"
)

// EdgeCounts tracks the number of steps in each direction since startup.
type EdgeCounts struct {
	CW  int64
	CCW int64
}

// Counter is the shared rotation state: a tick count and its modulus
// (ticks per full revolution). The modulus is fixed at construction and
// never changes.
type Counter struct {
	mu      sync.Mutex
	value   int64
	modulus int64
	edges   EdgeCounts
}

// New creates a Counter with value 0. The modulus must be positive;
// callers validate configuration before construction.
func New(modulus int64) *Counter {
	return &Counter{modulus: modulus}
}

// Modulus returns the ticks-per-revolution constant.
func (c *Counter) Modulus() int64 {
	return c.modulus
}

// Value returns the current tick count.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	v := c.value
	c.mu.Unlock()
	return v
}

// Set overwrites the tick count without normalizing it. A value outside
// [0, modulus) stays out of range until the next Step pulls it back in
// incrementally. Used for calibration/zeroing via the device write path.
func (c *Counter) Set(v int64) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}

// Step applies one quadrature step: +1 if channel B was high at the edge,
// -1 if low, then normalizes into [0, modulus). The loop form (rather than
// a single conditional) also recovers from an out-of-range value left
// behind by Set. All of it happens under one lock hold so no reader
// observes a pre-normalization value. Returns the new tick count.
func (c *Counter) Step(bHigh bool) int64 {
	c.mu.Lock()
	if bHigh {
		c.value++
		c.edges.CW++
	} else {
		c.value--
		c.edges.CCW++
	}
	for c.value >= c.modulus {
		c.value -= c.modulus
	}
	for c.value < 0 {
		c.value += c.modulus
	}
	v := c.value
	c.mu.Unlock()
	return v
}

// Angle returns the current position in tenths of a degree, computed as
// (value*3600)/modulus with truncating division from a single locked
// snapshot. An unnormalized value yields an out-of-range angle on purpose.
func (c *Counter) Angle() int64 {
	c.mu.Lock()
	v := c.value
	c.mu.Unlock()
	return (v * 3600) / c.modulus
}

// Edges returns the cumulative step counts per direction.
func (c *Counter) Edges() EdgeCounts {
	c.mu.Lock()
	e := c.edges
	c.mu.Unlock()
	return e
}
