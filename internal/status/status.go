// Package status provides a thread-safe status tracker for the
// rotation-sensor daemon. It is read by the HTTP handlers and rendered
// into MQTT system-event payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rotation-sensor/internal/counter"
)

// NetworkInfo contains network state as published by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PinA        int
	PinB        int
	Modulus     int64
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	WSBroker    string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Ticks         int64
	AngleTenths   int64
	Angle         string // formatted "<deg>.<tenth>"
	Edges         counter.EdgeCounts
	Writes        int64
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Angle:     "0.0",
		},
	}
}

// Update sets position, edge counts, and write count.
// Called from the run loop on every tick.
func (t *Tracker) Update(ticks, angleTenths int64, angle string, edges counter.EdgeCounts, writes int64) {
	t.mu.Lock()
	t.snap.Ticks = ticks
	t.snap.AngleTenths = angleTenths
	t.snap.Angle = angle
	t.snap.Edges = edges
	t.snap.Writes = writes
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
