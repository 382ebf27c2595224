// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topic is the MQTT topic for rotation events.
const Topic = "workshop/rotation/sensor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "workshop/rotation/sensor/system"

// RotationEvent represents a position change to be published.
type RotationEvent struct {
	Timestamp   time.Time
	Ticks       int64 // raw counter value
	AngleTenths int64 // angle in tenths of a degree
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a rotation event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event RotationEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Rotation RotationPayload `json:"rotation"`
}

// RotationPayload contains the rotation event details.
type RotationPayload struct {
	Timestamp   string `json:"timestamp"`
	Ticks       int64  `json:"ticks"`
	Angle       string `json:"angle"`
	AngleTenths int64  `json:"angle_tenths"`
}

// FormatPayload creates the JSON payload for a rotation event. The angle
// string uses the same truncating tenths rendering as the device node.
func FormatPayload(event RotationEvent) ([]byte, error) {
	payload := Payload{
		Rotation: RotationPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Ticks:       event.Ticks,
			Angle:       fmt.Sprintf("%d.%d", event.AngleTenths/10, event.AngleTenths%10),
			AngleTenths: event.AngleTenths,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
