package gpio

import (
	"errors"
	"time"
)

// FakeBoard is a test double that returns scripted line levels.
type FakeBoard struct {
	// Samples contains scripted raw levels, each LineCount long.
	// Each call to Read() consumes the next sample.
	Samples [][]bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// LED records every SetLED call in order.
	LED []bool

	// LEDError, if set, will be returned by SetLED()
	LEDError error

	// WakeCh is handed out by ArmWake. Tests send on it to simulate a
	// falling edge on the mode switch.
	WakeCh chan time.Time

	// Armed reports whether ArmWake was called without a matching
	// DisarmWake.
	Armed bool

	// ArmError, if set, will be returned by ArmWake()
	ArmError error

	// Disarms counts DisarmWake calls.
	Disarms int
}

// NewFakeBoard creates a FakeBoard with the given samples.
func NewFakeBoard(samples [][]bool) *FakeBoard {
	return &FakeBoard{
		Samples: samples,
		WakeCh:  make(chan time.Time, 1),
	}
}

// Read returns the next scripted sample as a fresh slice.
// If samples are exhausted, the last sample repeats.
func (f *FakeBoard) Read() ([]bool, error) {
	if f.ReadError != nil {
		return nil, f.ReadError
	}

	if len(f.Samples) == 0 {
		return nil, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	out := make([]bool, len(sample))
	copy(out, sample)
	return out, nil
}

// SetLED records the requested LED state.
func (f *FakeBoard) SetLED(on bool) error {
	if f.LEDError != nil {
		return f.LEDError
	}
	f.LED = append(f.LED, on)
	return nil
}

// ArmWake marks the board armed and hands out WakeCh.
func (f *FakeBoard) ArmWake() (<-chan time.Time, error) {
	if f.ArmError != nil {
		return nil, f.ArmError
	}
	f.Armed = true
	return f.WakeCh, nil
}

// DisarmWake clears the armed flag.
func (f *FakeBoard) DisarmWake() error {
	f.Armed = false
	f.Disarms++
	return nil
}

// Close marks the board as closed.
func (f *FakeBoard) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the board to the beginning of samples.
func (f *FakeBoard) Reset() {
	f.index = 0
	f.Closed = false
}
