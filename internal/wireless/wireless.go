// Package wireless provides the gamepad transport with abstraction for
// testing. Input and lifecycle events travel as JSON over MQTT so
// anything on the network can consume the stick.
package wireless

import (
	"encoding/json"
	"time"

	"github.com/sweeney/arcade-stick/internal/logic"
)

// TopicInput is the MQTT topic for button and direction events.
const TopicInput = "gamepad/arcade-stick/input"

// TopicDescriptor is the MQTT topic for the retained device descriptor.
const TopicDescriptor = "gamepad/arcade-stick/descriptor"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "gamepad/arcade-stick/system"

// Device identity advertised in the descriptor.
const (
	DeviceName   = "Arcade Stick"
	DeviceMaker  = "sweeney"
	BatteryLevel = 100
)

// Service is the wireless side of the stick.
type Service interface {
	// Configure records the device layout advertised on the next Start.
	Configure(cfg Config)

	// Start brings the transport up and returns immediately. The
	// connection is established in the background; progress is visible
	// through IsConnected.
	Start() error

	// Stop tears the session down. Anything still queued is discarded:
	// the next Start is a fresh session.
	Stop() error

	// Press announces a pressed button. Never blocks; while the link
	// is down the event is queued, oldest dropped first when full.
	Press(b logic.Button) error

	// Release announces a released button.
	Release(b logic.Button) error

	// SetDirection announces the current hat direction.
	SetDirection(d logic.Direction) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close releases the transport for good.
	Close() error
}

// ConnectionStatus reports whether the wireless link is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Config describes the device layout advertised to consumers.
type Config struct {
	Buttons int
	Hats    int
	Axes    Axes
}

// Axes flags which analog axes the device reports.
type Axes struct {
	X, Y, Z, RX, RY, RZ, Slider1, Slider2 bool
}

// Enabled lists the switched-on axis names in report order.
func (a Axes) Enabled() []string {
	flags := []struct {
		on   bool
		name string
	}{
		{a.X, "x"}, {a.Y, "y"}, {a.Z, "z"},
		{a.RX, "rx"}, {a.RY, "ry"}, {a.RZ, "rz"},
		{a.Slider1, "slider1"}, {a.Slider2, "slider2"},
	}

	var names []string
	for _, f := range flags {
		if f.on {
			names = append(names, f.name)
		}
	}
	return names
}

// DefaultConfig is the layout the stick actually has: ten buttons, one
// hat switch, no analog axes.
func DefaultConfig() Config {
	return Config{Buttons: 10, Hats: 1}
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "MODE_WIRED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for input events.
type Payload struct {
	Gamepad GamepadPayload `json:"gamepad"`
}

// GamepadPayload contains the input event details. Button is set for
// press and release events, Direction and Hat for direction reports.
type GamepadPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Button    string `json:"button,omitempty"`
	Direction string `json:"direction,omitempty"`
	Hat       *int   `json:"hat,omitempty"`
}

// FormatPress creates the JSON payload for a button press.
func FormatPress(b logic.Button, ts time.Time) ([]byte, error) {
	payload := Payload{
		Gamepad: GamepadPayload{
			Timestamp: ts.UTC().Format(time.RFC3339),
			Event:     "PRESS",
			Button:    b.String(),
		},
	}
	return json.Marshal(payload)
}

// FormatRelease creates the JSON payload for a button release.
func FormatRelease(b logic.Button, ts time.Time) ([]byte, error) {
	payload := Payload{
		Gamepad: GamepadPayload{
			Timestamp: ts.UTC().Format(time.RFC3339),
			Event:     "RELEASE",
			Button:    b.String(),
		},
	}
	return json.Marshal(payload)
}

// FormatDirection creates the JSON payload for a hat direction report.
// Hat carries the numeric encoding: 0 centered, then 1 for up through
// 8 for up-left going clockwise.
func FormatDirection(d logic.Direction, ts time.Time) ([]byte, error) {
	hat := int(d)
	payload := Payload{
		Gamepad: GamepadPayload{
			Timestamp: ts.UTC().Format(time.RFC3339),
			Event:     "DIRECTION",
			Direction: d.String(),
			Hat:       &hat,
		},
	}
	return json.Marshal(payload)
}

// Descriptor represents the retained device descriptor payload.
type Descriptor struct {
	Device DevicePayload `json:"device"`
}

// DevicePayload describes the stick to consumers.
type DevicePayload struct {
	Name    string   `json:"name"`
	Maker   string   `json:"maker"`
	Battery int      `json:"battery"`
	Buttons int      `json:"buttons"`
	Hats    int      `json:"hats"`
	Axes    []string `json:"axes,omitempty"`
}

// FormatDescriptor creates the JSON payload describing the configured layout.
func FormatDescriptor(cfg Config) ([]byte, error) {
	payload := Descriptor{
		Device: DevicePayload{
			Name:    DeviceName,
			Maker:   DeviceMaker,
			Battery: BatteryLevel,
			Buttons: cfg.Buttons,
			Hats:    cfg.Hats,
			Axes:    cfg.Axes.Enabled(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (mode changes, LWT) that don't carry a full
// status snapshot.
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
