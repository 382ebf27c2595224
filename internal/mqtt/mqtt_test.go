package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFormatPayload(t *testing.T) {
	event := RotationEvent{
		Timestamp:   time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Ticks:       2500,
		AngleTenths: 1800,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Rotation.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Rotation.Timestamp)
	}
	if parsed.Rotation.Ticks != 2500 {
		t.Errorf("unexpected ticks: %d", parsed.Rotation.Ticks)
	}
	if parsed.Rotation.Angle != "180.0" {
		t.Errorf("unexpected angle: %s", parsed.Rotation.Angle)
	}
	if parsed.Rotation.AngleTenths != 1800 {
		t.Errorf("unexpected angle tenths: %d", parsed.Rotation.AngleTenths)
	}
}

func TestFormatPayloadAngles(t *testing.T) {
	tests := []struct {
		name   string
		tenths int64
		want   string
	}{
		{"zero", 0, "0.0"},
		{"sub-degree", 7, "0.7"},
		{"whole", 1800, "180.0"},
		{"mixed", 123, "12.3"},
		// Unnormalized counter values render out-of-range angles as-is.
		{"beyond revolution", 5400, "540.0"},
		{"negative", -72, "-7.-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := FormatPayload(RotationEvent{
				Timestamp:   time.Now(),
				AngleTenths: tt.tenths,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Rotation.Angle != tt.want {
				t.Errorf("angle: got %s, want %s", parsed.Rotation.Angle, tt.want)
			}
		})
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
	if parsed.System.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.System.Timestamp)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"custom":true}}`)
	payload, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	event := RotationEvent{Timestamp: time.Now(), Ticks: 10, AngleTenths: 7}

	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.Events))
	}
	if f.Events[0].Ticks != 10 {
		t.Errorf("unexpected ticks: %d", f.Events[0].Ticks)
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	err := f.Publish(RotationEvent{Timestamp: time.Now()})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(f.Events) != 0 {
		t.Errorf("expected no recorded events, got %d", len(f.Events))
	}
}

func TestFakePublisherSystem(t *testing.T) {
	f := NewFakePublisher()

	err := f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.SystemEvents))
	}
	if f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("unexpected event: %s", f.SystemEvents[0].Event)
	}
	if !f.SystemEvents[0].Retained {
		t.Error("expected retained flag")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(RotationEvent{Timestamp: time.Now()})
	f.Close()

	f.Reset()

	if len(f.Events) != 0 || len(f.Payloads) != 0 || f.Closed {
		t.Error("Reset did not clear state")
	}
}
