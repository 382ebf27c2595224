// Package gpio provides the quadrature encoder's edge source with hardware
// abstraction. The real implementation uses the Linux GPIO character device
// to deliver rising-edge events on channel A and level reads of channel B.
// The fake implementation allows testing without hardware.
package gpio

// EdgeHandler is invoked once per rising edge detected on channel A.
// bHigh is channel B's instantaneous level at the edge, which determines
// rotation direction. Handlers run on the event-dispatch goroutine and
// must not block.
type EdgeHandler func(bHigh bool)

// Watcher owns the encoder's GPIO lines for the daemon's lifetime.
type Watcher interface {
	// Close releases the lines and stops edge delivery, in the exact
	// reverse order of acquisition.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinA = 18 // Channel A, pin 12 on the Raspberry Pi P1 connector
	DefaultPinB = 17 // Channel B, pin 11 on the Raspberry Pi P1 connector
)
