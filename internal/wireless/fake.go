package wireless

import (
	"time"

	"github.com/sweeney/arcade-stick/internal/logic"
)

// FakeService records wireless calls for test assertions.
type FakeService struct {
	// Configs records every Configure call in order.
	Configs []Config

	// Starts counts Start calls.
	Starts int

	// Stops counts Stop calls.
	Stops int

	// Presses contains every button announced pressed.
	Presses []logic.Button

	// Releases contains every button announced released.
	Releases []logic.Button

	// Directions contains every hat state announced.
	Directions []logic.Direction

	// InputPayloads contains the JSON payloads for input events.
	InputPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// StartError, if set, will be returned by Start.
	StartError error

	// InputError, if set, will be returned by Press, Release and SetDirection.
	InputError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Connected controls the return value of IsConnected. Stop clears
	// it; tests set it to simulate the link coming up.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeService creates a FakeService for testing.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// Configure records the layout.
func (f *FakeService) Configure(cfg Config) {
	f.Configs = append(f.Configs, cfg)
}

// Start counts the call. The fake stays unconnected, matching the real
// service's background connect; tests flip Connected themselves.
func (f *FakeService) Start() error {
	if f.StartError != nil {
		return f.StartError
	}
	f.Starts++
	return nil
}

// Stop counts the call and drops the link.
func (f *FakeService) Stop() error {
	f.Stops++
	f.Connected = false
	return nil
}

// Press records the pressed button.
func (f *FakeService) Press(b logic.Button) error {
	if f.InputError != nil {
		return f.InputError
	}

	f.Presses = append(f.Presses, b)

	payload, err := FormatPress(b, time.Now())
	if err != nil {
		return err
	}
	f.InputPayloads = append(f.InputPayloads, payload)

	return nil
}

// Release records the released button.
func (f *FakeService) Release(b logic.Button) error {
	if f.InputError != nil {
		return f.InputError
	}

	f.Releases = append(f.Releases, b)

	payload, err := FormatRelease(b, time.Now())
	if err != nil {
		return err
	}
	f.InputPayloads = append(f.InputPayloads, payload)

	return nil
}

// SetDirection records the hat state.
func (f *FakeService) SetDirection(d logic.Direction) error {
	if f.InputError != nil {
		return f.InputError
	}

	f.Directions = append(f.Directions, d)

	payload, err := FormatDirection(d, time.Now())
	if err != nil {
		return err
	}
	f.InputPayloads = append(f.InputPayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakeService) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// IsConnected reports whether the fake service is "connected".
func (f *FakeService) IsConnected() bool {
	return f.Connected
}

// Close marks the service as closed.
func (f *FakeService) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded calls.
func (f *FakeService) Reset() {
	f.Configs = nil
	f.Starts = 0
	f.Stops = 0
	f.Presses = nil
	f.Releases = nil
	f.Directions = nil
	f.InputPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.StartError = nil
	f.InputError = nil
	f.PublishSystemError = nil
	f.Connected = false
	f.Closed = false
}
