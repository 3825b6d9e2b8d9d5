// Package gpio provides GPIO access for the stick's inputs, the mode
// switch and the status LED, with hardware abstraction. The real
// implementation uses the Linux GPIO character device. The fake
// implementation allows testing without hardware.
package gpio

import "time"

// Board is the hardware surface the control loop runs against.
type Board interface {
	// Read returns the raw level of every input line, indexed by the
	// Line* constants. Levels are reported as wired: lines are pulled
	// up, so true means idle and false means the contact is closed.
	Read() ([]bool, error)

	// SetLED drives the status LED.
	SetLED(on bool) error

	// ArmWake puts the mode switch line into edge detection. The
	// returned channel delivers one timestamp per falling edge while
	// armed. Polling the mode switch via Read is undefined until
	// DisarmWake is called.
	ArmWake() (<-chan time.Time, error)

	// DisarmWake returns the mode switch line to plain polling.
	DisarmWake() error

	// Close releases GPIO resources.
	Close() error
}

// Input line indexes into the slice returned by Read.
const (
	LineButton1 = iota
	LineButton2
	LineButton3
	LineButton4
	LineButton5
	LineButton6
	LineButton7
	LineButton8
	LineStart
	LineSelect
	LineUp
	LineDown
	LineLeft
	LineRight
	LineModeSwitch
	LineCount
)

// LineNames labels each input line for logs and diagnostics.
var LineNames = [LineCount]string{
	"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8",
	"START", "SELECT",
	"UP", "DOWN", "LEFT", "RIGHT",
	"MODE",
}

// Pins maps each input line to its BCM pin number.
var Pins = [LineCount]int{
	5, 6, 13, 19, 26, 16, 20, 21, // buttons 1-8
	12, 7, // start, select
	17, 27, 22, 23, // up, down, left, right
	24, // mode switch
}

// PinLED is the BCM pin driving the status LED.
const PinLED = 25

// Idle returns a sample with every line released (pulled high).
func Idle() []bool {
	raw := make([]bool, LineCount)
	for i := range raw {
		raw[i] = true
	}
	return raw
}
