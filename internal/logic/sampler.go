package logic

import "time"

// Channel is one debounced digital input line. The zero value is not
// usable; construct with NewChannel.
type Channel struct {
	line   int
	window time.Duration

	level        bool // current stable level, true = electrically high
	seeded       bool
	pending      bool // a flip away from level is being observed
	pendingSince time.Time
}

// NewChannel creates a channel reading raw levels at the given line
// index, accepting a level change only after it has persisted for the
// full window.
func NewChannel(line int, window time.Duration) *Channel {
	return &Channel{line: line, window: window}
}

// Line returns the index of this channel in the raw level slice.
func (c *Channel) Line() int { return c.line }

// Level returns the current stable level (true = high). Before the
// first Sample call it is false.
func (c *Channel) Level() bool { return c.level }

// Seeded reports whether at least one sample has established the
// stable level.
func (c *Channel) Seeded() bool { return c.seeded }

// Sample advances the debounce state with one raw reading and reports
// whether the stable level crossed on this call. The first call seeds
// the stable level from the raw reading and never reports an edge.
// Call exactly once per scheduler iteration; the window is measured
// between successive calls.
func (c *Channel) Sample(raw bool, now time.Time) Edge {
	if !c.seeded {
		c.level = raw
		c.seeded = true
		return EdgeNone
	}

	if raw == c.level {
		// Any pending flip reversed before the window elapsed.
		c.pending = false
		return EdgeNone
	}

	if !c.pending {
		c.pending = true
		c.pendingSince = now
		return EdgeNone
	}

	if now.Sub(c.pendingSince) < c.window {
		return EdgeNone
	}

	c.level = raw
	c.pending = false
	if raw {
		return EdgeRise
	}
	return EdgeFall
}
