// Package status provides a thread-safe status tracker for the
// arcade-stick daemon. It is read by the HTTP handlers while the
// control loop writes it every tick.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/arcade-stick/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/wireless from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs         int64
	DebounceMs     int64
	ModeDebounceMs int64
	HeartbeatMs    int64
	Broker         string
	HTTPPort       string
	WSBroker       string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Reading is the per-tick state pushed by the control loop.
type Reading struct {
	Mode      string // "WIRELESS" or "WIRED"
	Connected bool
	Indicator string // "OFF", "SLOW_BLINK" or "SOLID_ON"
	Direction string
	Buttons   [logic.ButtonCount]bool
	Counts    logic.Counters
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Mode      string
	Connected bool
	Indicator string
	Direction string
	Buttons   [logic.ButtonCount]bool
	Counts    logic.Counters
	StartTime time.Time
	Now       time.Time
	Network   *NetworkInfo
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest reading. Called from the control loop on
// every tick and once more at each mode transition.
func (t *Tracker) Update(r Reading) {
	t.mu.Lock()
	t.snap.Mode = r.Mode
	t.snap.Connected = r.Connected
	t.snap.Indicator = r.Indicator
	t.snap.Direction = r.Direction
	t.snap.Buttons = r.Buttons
	t.snap.Counts = r.Counts
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
