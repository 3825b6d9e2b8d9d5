// Package indicator drives the status LED from the connection state.
package indicator

import "time"

// DefaultBlinkInterval is the half-period of the advertising blink:
// the LED flips each time it elapses.
const DefaultBlinkInterval = 500 * time.Millisecond

// Driver is the output the indicator writes to.
type Driver interface {
	SetLED(on bool) error
}

// State names the pattern currently shown.
type State int

const (
	// Off means the LED is dark (wired mode).
	Off State = iota

	// SlowBlink means wireless is up but no consumer is attached.
	SlowBlink

	// SolidOn means a consumer is attached.
	SolidOn
)

func (s State) String() string {
	switch s {
	case Off:
		return "OFF"
	case SlowBlink:
		return "SLOW_BLINK"
	case SolidOn:
		return "SOLID_ON"
	}
	return "UNKNOWN"
}

// Indicator maps connection state to the LED. It writes the line only
// when the level actually changes, so calling Update every poll tick
// costs nothing while the pattern is steady.
type Indicator struct {
	drv        Driver
	blinkEvery time.Duration

	state      State
	level      bool
	lastToggle time.Time
}

// New creates an indicator over drv.
func New(drv Driver, blinkEvery time.Duration) *Indicator {
	return &Indicator{drv: drv, blinkEvery: blinkEvery}
}

// Update advances the pattern for one tick. Connected shows solid on;
// disconnected blinks at the configured rate.
func (i *Indicator) Update(connected bool, now time.Time) error {
	if connected {
		i.state = SolidOn
		if !i.level {
			if err := i.drv.SetLED(true); err != nil {
				return err
			}
			i.level = true
		}
		return nil
	}

	i.state = SlowBlink
	if i.lastToggle.IsZero() || now.Sub(i.lastToggle) >= i.blinkEvery {
		next := !i.level
		if err := i.drv.SetLED(next); err != nil {
			return err
		}
		i.level = next
		i.lastToggle = now
	}
	return nil
}

// Off forces the LED dark. Unlike Update it always writes, so the line
// is known low even if the last observed level disagrees. The blink
// phase resets: the next Update toggles immediately.
func (i *Indicator) Off() error {
	i.state = Off
	i.lastToggle = time.Time{}
	if err := i.drv.SetLED(false); err != nil {
		return err
	}
	i.level = false
	return nil
}

// State returns the pattern currently shown.
func (i *Indicator) State() State {
	return i.state
}
