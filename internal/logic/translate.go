package logic

import (
	"fmt"
	"time"
)

// buttonChannel pairs a logical button with its debounced channel, so
// the pin, the id, and the debounce state travel together.
type buttonChannel struct {
	id Button
	ch *Channel
}

// Translator turns raw level samples into controller events: button
// press/release edges and the 9-way directional state. It owns one
// debounced channel per control and samples each exactly once per
// Process call.
type Translator struct {
	buttons []buttonChannel
	up      *Channel
	down    *Channel
	left    *Channel
	right   *Channel
	maxLine int
}

// NewTranslator builds the channel set for the standard control layout
// from the given line positions, all debounced with the same window.
func NewTranslator(lines Lines, window time.Duration) *Translator {
	t := &Translator{
		up:    NewChannel(lines.Up, window),
		down:  NewChannel(lines.Down, window),
		left:  NewChannel(lines.Left, window),
		right: NewChannel(lines.Right, window),
	}
	for i, line := range lines.Buttons {
		t.buttons = append(t.buttons, buttonChannel{
			id: Button(i + 1),
			ch: NewChannel(line, window),
		})
		if line > t.maxLine {
			t.maxLine = line
		}
	}
	for _, line := range []int{lines.Up, lines.Down, lines.Left, lines.Right} {
		if line > t.maxLine {
			t.maxLine = line
		}
	}
	return t
}

// Process runs one debounce step for every control against the raw
// level slice and returns the resulting frame. All lines are
// active-low: a falling edge is a press, a low stable level an active
// direction. The direction is recomputed every call so the caller can
// forward it unconditionally.
func (t *Translator) Process(raw []bool, now time.Time) (Frame, error) {
	if len(raw) <= t.maxLine {
		return Frame{}, fmt.Errorf("sample has %d levels, need %d", len(raw), t.maxLine+1)
	}

	var f Frame
	for _, b := range t.buttons {
		switch b.ch.Sample(raw[b.ch.Line()], now) {
		case EdgeFall:
			f.Presses = append(f.Presses, b.id)
		case EdgeRise:
			f.Releases = append(f.Releases, b.id)
		}
	}

	t.up.Sample(raw[t.up.Line()], now)
	t.down.Sample(raw[t.down.Line()], now)
	t.left.Sample(raw[t.left.Line()], now)
	t.right.Sample(raw[t.right.Line()], now)

	f.Direction = resolveDirection(
		!t.up.Level(),
		!t.down.Level(),
		!t.left.Level(),
		!t.right.Level(),
	)
	return f, nil
}

// Pressed returns the stable pressed state of every logical button,
// indexed by button id minus one. Channels that have not sampled yet
// report released.
func (t *Translator) Pressed() [ButtonCount]bool {
	var pressed [ButtonCount]bool
	for _, b := range t.buttons {
		pressed[b.id-1] = b.ch.Seeded() && !b.ch.Level()
	}
	return pressed
}

// resolveDirection maps the four active flags to the hat state.
// Vertical wins over horizontal for diagonals; within the opposite
// pairs, up beats down and left beats right.
func resolveDirection(up, down, left, right bool) Direction {
	switch {
	case up && left:
		return DirUpLeft
	case up && right:
		return DirUpRight
	case up:
		return DirUp
	case down && left:
		return DirDownLeft
	case down && right:
		return DirDownRight
	case down:
		return DirDown
	case left:
		return DirLeft
	case right:
		return DirRight
	}
	return DirCentered
}
