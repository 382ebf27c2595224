//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealWatcher watches encoder edges on actual hardware using the Linux
// GPIO character device.
type RealWatcher struct {
	chip  *gpiocdev.Chip
	bLine *gpiocdev.Line
	aLine *gpiocdev.Line
}

// NewRealWatcher acquires the encoder lines and installs handler for rising
// edges on channel A. Acquisition order: chip, channel B (input), channel A
// (input with rising-edge detection). Any failure releases everything
// acquired so far, in reverse order, and returns the first error.
func NewRealWatcher(pinA, pinB int, handler EdgeHandler) (*RealWatcher, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Pull-down matches the Pi boot defaults and gives the handler a
	// defined level when the encoder is disconnected.
	bLine, err := chip.RequestLine(pinB, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request channel B pin %d: %w", pinB, err)
	}

	w := &RealWatcher{chip: chip, bLine: bLine}

	aLine, err := chip.RequestLine(pinA,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			if evt.Type != gpiocdev.LineEventRisingEdge {
				return
			}
			handler(w.bHigh())
		}))
	if err != nil {
		bLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request channel A pin %d: %w", pinA, err)
	}
	w.aLine = aLine

	return w, nil
}

// bHigh samples channel B. A read failure is treated as the line's default
// (low) level rather than an error: the edge path must never fail.
func (w *RealWatcher) bHigh() bool {
	v, err := w.bLine.Value()
	return err == nil && v != 0
}

// Levels returns the instantaneous raw levels of channels A and B.
// Used by the -print-state diagnostic mode.
func (w *RealWatcher) Levels() (a, b int, err error) {
	a, err = w.aLine.Value()
	if err != nil {
		return 0, 0, fmt.Errorf("read channel A: %w", err)
	}
	b, err = w.bLine.Value()
	if err != nil {
		return 0, 0, fmt.Errorf("read channel B: %w", err)
	}
	return a, b, nil
}

// Close releases the lines in the exact reverse order of acquisition:
// channel A first (which removes the edge handler), then channel B, then
// the chip.
func (w *RealWatcher) Close() error {
	var errs []error

	if w.aLine != nil {
		if err := w.aLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel A: %w", err))
		}
	}
	if w.bLine != nil {
		if err := w.bLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel B: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
