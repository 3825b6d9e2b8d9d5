// Package logic contains the pure input-processing core: debounced
// channels, edge detection, and hat-direction resolution.
// This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package logic

// Edge reports the debounced transition observed by a single Sample call.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeRise      // stable level went low -> high (control released)
	EdgeFall      // stable level went high -> low (control pressed)
)

// Button is a logical gamepad button id, 1-based to match the HID
// report the bridge builds.
type Button uint8

const (
	Button1 Button = iota + 1
	Button2
	Button3
	Button4
	Button5
	Button6
	Button7
	Button8
	ButtonStart
	ButtonSelect
)

// ButtonCount is the number of logical buttons the device reports.
const ButtonCount = 10

// String returns the diagnostic name used in logs and status output.
func (b Button) String() string {
	switch b {
	case ButtonStart:
		return "START"
	case ButtonSelect:
		return "SELECT"
	case Button1, Button2, Button3, Button4, Button5, Button6, Button7, Button8:
		return "B" + string('0'+rune(b))
	}
	return "B?"
}

// Direction is the 9-way hat state, numbered the conventional way:
// 0 centered, 1 up, then clockwise through 8 up-left.
type Direction uint8

const (
	DirCentered Direction = iota
	DirUp
	DirUpRight
	DirRight
	DirDownRight
	DirDown
	DirDownLeft
	DirLeft
	DirUpLeft
)

var directionNames = [...]string{
	"CENTERED", "UP", "UP_RIGHT", "RIGHT", "DOWN_RIGHT",
	"DOWN", "DOWN_LEFT", "LEFT", "UP_LEFT",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "UNKNOWN"
}

// Frame is the outcome of one sampling pass over every input channel.
// Presses and Releases list the buttons whose debounced level crossed
// this pass, in channel order; Direction is the current hat state.
type Frame struct {
	Presses   []Button
	Releases  []Button
	Direction Direction
}

// Counters accumulates event totals since startup, for heartbeats and
// the status page.
type Counters struct {
	Presses  int
	Releases int
	Sleeps   int // entries into the wired low-power wait
	Wakes    int
}

// Lines gives the position of each control in the raw level slice the
// board reader returns. The caller wires these from its pin table.
type Lines struct {
	Buttons [ButtonCount]int // logical button i+1 reads raw[Buttons[i]]
	Up      int
	Down    int
	Left    int
	Right   int
}
