// Package mode tracks which transport owns the stick and drives the
// wireless service across transitions.
package mode

import (
	"sync/atomic"
	"time"

	"github.com/sweeney/arcade-stick/internal/logic"
	"github.com/sweeney/arcade-stick/internal/wireless"
)

// Mode identifies the active transport.
type Mode int32

const (
	// Wireless means the stick is broadcasting input events.
	Wireless Mode = iota

	// Wired means the wireless side is shut down and the control loop
	// is suspended while a wired adapter owns the inputs.
	Wired
)

func (m Mode) String() string {
	switch m {
	case Wireless:
		return "WIRELESS"
	case Wired:
		return "WIRED"
	}
	return "UNKNOWN"
}

// Controller owns the mode flag. The flag is atomic so observers on
// other goroutines (the web server, status snapshots) read it without
// locking against the control loop.
type Controller struct {
	svc  wireless.Service
	sw   *logic.Channel
	flag atomic.Int32
}

// New creates a controller. wirelessAtBoot selects the initial mode
// from the raw level of the mode switch at power-on: high (released)
// boots wireless, low (held) boots wired.
func New(svc wireless.Service, sw *logic.Channel, wirelessAtBoot bool) *Controller {
	c := &Controller{svc: svc, sw: sw}
	if !wirelessAtBoot {
		c.flag.Store(int32(Wired))
	}
	return c
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return Mode(c.flag.Load())
}

// CheckSwitch runs one debounce step over the raw mode switch level
// and reports whether a debounced press landed while wireless is
// active. Detection only: the caller decides when to call EnterWired.
func (c *Controller) CheckSwitch(raw bool, now time.Time) bool {
	edge := c.sw.Sample(raw, now)
	return edge == logic.EdgeFall && c.Mode() == Wireless
}

// StartWireless configures and starts a fresh wireless session.
func (c *Controller) StartWireless() error {
	c.svc.Configure(wireless.DefaultConfig())
	return c.svc.Start()
}

// EnterWired shuts the wireless side down and flips the flag.
func (c *Controller) EnterWired() error {
	err := c.svc.Stop()
	c.flag.Store(int32(Wired))
	return err
}

// Wake returns to wireless mode. The service is configured and started
// from scratch: the previous session ended with EnterWired, so nothing
// of it can be resumed.
func (c *Controller) Wake() error {
	c.flag.Store(int32(Wireless))
	return c.StartWireless()
}
