package gpio

import "sync"

// FakeWatcher is a test double that lets tests inject encoder edges
// directly, standing in for the interrupt source.
type FakeWatcher struct {
	mu      sync.Mutex
	handler EdgeHandler

	// Pulses counts injected edges.
	Pulses int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeWatcher creates a FakeWatcher delivering edges to handler.
func NewFakeWatcher(handler EdgeHandler) *FakeWatcher {
	return &FakeWatcher{handler: handler}
}

// Pulse simulates one rising edge on channel A with the given channel B
// level. After Close it is a no-op, matching hardware edge delivery
// stopping when the line is released.
func (f *FakeWatcher) Pulse(bHigh bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Closed {
		return
	}
	f.Pulses++
	f.handler(bHigh)
}

// PulseN simulates n edges, all with the same channel B level.
func (f *FakeWatcher) PulseN(n int, bHigh bool) {
	for i := 0; i < n; i++ {
		f.Pulse(bHigh)
	}
}

// Close marks the watcher as closed and stops edge delivery.
func (f *FakeWatcher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
