package internal

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/arcade-stick/internal/gpio"
	"github.com/sweeney/arcade-stick/internal/logic"
	"github.com/sweeney/arcade-stick/internal/mode"
	"github.com/sweeney/arcade-stick/internal/status"
	"github.com/sweeney/arcade-stick/internal/wireless"
)

func testLines() logic.Lines {
	return logic.Lines{
		Buttons: [logic.ButtonCount]int{
			gpio.LineButton1, gpio.LineButton2, gpio.LineButton3, gpio.LineButton4,
			gpio.LineButton5, gpio.LineButton6, gpio.LineButton7, gpio.LineButton8,
			gpio.LineStart, gpio.LineSelect,
		},
		Up:    gpio.LineUp,
		Down:  gpio.LineDown,
		Left:  gpio.LineLeft,
		Right: gpio.LineRight,
	}
}

func pressedSample(lines ...int) []bool {
	raw := gpio.Idle()
	for _, line := range lines {
		raw[line] = false
	}
	return raw
}

// driveSamples runs the board-to-wireless pipeline once per sample,
// the way the control loop does, with a fixed 10ms step.
func driveSamples(t *testing.T, board *gpio.FakeBoard, svc *wireless.FakeService, tr *logic.Translator, start time.Time, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		raw, err := board.Read()
		if err != nil {
			t.Fatalf("sample %d: gpio read error: %v", i, err)
		}
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		frame, err := tr.Process(raw, now)
		if err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
		for _, b := range frame.Presses {
			if err := svc.Press(b); err != nil {
				t.Fatalf("sample %d: press error: %v", i, err)
			}
		}
		for _, b := range frame.Releases {
			if err := svc.Release(b); err != nil {
				t.Fatalf("sample %d: release error: %v", i, err)
			}
		}
		if err := svc.SetDirection(frame.Direction); err != nil {
			t.Fatalf("sample %d: direction error: %v", i, err)
		}
	}
}

// TestIntegrationPressFlow tests the complete flow from GPIO levels to
// wireless payloads using fakes.
func TestIntegrationPressFlow(t *testing.T) {
	samples := [][]bool{
		gpio.Idle(),                     // t=0ms seed
		pressedSample(gpio.LineButton3), // t=10ms contact closes
		pressedSample(gpio.LineButton3), // t=20ms debounced: PRESS
		gpio.Idle(),                     // t=30ms contact opens
		gpio.Idle(),                     // t=40ms debounced: RELEASE
	}
	board := gpio.NewFakeBoard(samples)
	svc := wireless.NewFakeService()
	tr := logic.NewTranslator(testLines(), 5*time.Millisecond)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	driveSamples(t, board, svc, tr, start, len(samples))

	if len(svc.Presses) != 1 || svc.Presses[0] != logic.Button3 {
		t.Errorf("presses = %v, want [B3]", svc.Presses)
	}
	if len(svc.Releases) != 1 || svc.Releases[0] != logic.Button3 {
		t.Errorf("releases = %v, want [B3]", svc.Releases)
	}

	// One direction report per tick plus the two button events.
	if len(svc.InputPayloads) != len(samples)+2 {
		t.Fatalf("expected %d payloads, got %d", len(samples)+2, len(svc.InputPayloads))
	}

	// Every payload is a well-formed gamepad message.
	for i, payload := range svc.InputPayloads {
		var parsed wireless.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
			continue
		}
		if parsed.Gamepad.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
		if parsed.Gamepad.Event == "" {
			t.Errorf("payload %d: missing event", i)
		}
	}
}

// TestIntegrationStickAndButtonTogether verifies a diagonal hold and a
// button press land in the same debounced frame.
func TestIntegrationStickAndButtonTogether(t *testing.T) {
	held := pressedSample(gpio.LineUp, gpio.LineLeft, gpio.LineButton1)
	samples := [][]bool{gpio.Idle(), held, held, held}
	board := gpio.NewFakeBoard(samples)
	svc := wireless.NewFakeService()
	tr := logic.NewTranslator(testLines(), 5*time.Millisecond)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	driveSamples(t, board, svc, tr, start, len(samples))

	if len(svc.Presses) != 1 || svc.Presses[0] != logic.Button1 {
		t.Errorf("presses = %v, want [B1]", svc.Presses)
	}

	want := []logic.Direction{
		logic.DirCentered,
		logic.DirCentered, // still inside the window
		logic.DirUpLeft,
		logic.DirUpLeft,
	}
	if len(svc.Directions) != len(want) {
		t.Fatalf("expected %d direction reports, got %d", len(want), len(svc.Directions))
	}
	for i, d := range want {
		if svc.Directions[i] != d {
			t.Errorf("direction %d: got %v, want %v", i, svc.Directions[i], d)
		}
	}
}

// TestIntegrationBounceNeverReachesWireless verifies contact noise is
// absorbed before the transport sees it.
func TestIntegrationBounceNeverReachesWireless(t *testing.T) {
	samples := [][]bool{
		gpio.Idle(),
		pressedSample(gpio.LineButton5), // single noisy sample
		gpio.Idle(),
		gpio.Idle(),
		gpio.Idle(),
	}
	board := gpio.NewFakeBoard(samples)
	svc := wireless.NewFakeService()
	tr := logic.NewTranslator(testLines(), 25*time.Millisecond)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	driveSamples(t, board, svc, tr, start, len(samples))

	if len(svc.Presses) != 0 || len(svc.Releases) != 0 {
		t.Errorf("expected no button events for bounce, got %v / %v", svc.Presses, svc.Releases)
	}
	// Only the per-tick direction reports go out.
	if len(svc.InputPayloads) != len(samples) {
		t.Errorf("expected %d payloads, got %d", len(samples), len(svc.InputPayloads))
	}
}

// TestIntegrationModeCycle walks the full wireless -> wired -> wireless
// transition the way the control loop drives it.
func TestIntegrationModeCycle(t *testing.T) {
	svc := wireless.NewFakeService()
	sw := logic.NewChannel(gpio.LineModeSwitch, 25*time.Millisecond)
	ctrl := mode.New(svc, sw, true)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if err := ctrl.StartWireless(); err != nil {
		t.Fatalf("StartWireless: %v", err)
	}
	svc.Connected = true

	// Seed the switch high, then hold it low past the window.
	at := func(ms int) time.Time { return start.Add(time.Duration(ms) * time.Millisecond) }
	if ctrl.CheckSwitch(true, at(0)) {
		t.Fatal("seed sample should not fire")
	}
	if ctrl.CheckSwitch(false, at(10)) || ctrl.CheckSwitch(false, at(20)) {
		t.Fatal("switch fired inside the debounce window")
	}
	if !ctrl.CheckSwitch(false, at(40)) {
		t.Fatal("expected debounced switch press to fire")
	}

	// The daemon announces the transition, then tears wireless down.
	if err := svc.PublishSystem(wireless.SystemEvent{Timestamp: at(40), Event: "MODE_WIRED"}); err != nil {
		t.Fatalf("publish MODE_WIRED: %v", err)
	}
	if err := ctrl.EnterWired(); err != nil {
		t.Fatalf("EnterWired: %v", err)
	}
	if ctrl.Mode() != mode.Wired {
		t.Errorf("mode = %v, want WIRED", ctrl.Mode())
	}
	if svc.IsConnected() {
		t.Error("expected link down after EnterWired")
	}

	// Wake brings up a brand-new session.
	if err := ctrl.Wake(); err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if err := svc.PublishSystem(wireless.SystemEvent{Timestamp: at(500), Event: "MODE_WIRELESS"}); err != nil {
		t.Fatalf("publish MODE_WIRELESS: %v", err)
	}

	if ctrl.Mode() != mode.Wireless {
		t.Errorf("mode = %v, want WIRELESS", ctrl.Mode())
	}
	if svc.Starts != 2 || svc.Stops != 1 {
		t.Errorf("starts/stops = %d/%d, want 2/1", svc.Starts, svc.Stops)
	}
	if len(svc.Configs) != 2 {
		t.Errorf("configures = %d, want 2 (fresh session each start)", len(svc.Configs))
	}

	wantEvents := []string{"MODE_WIRED", "MODE_WIRELESS"}
	for i, want := range wantEvents {
		if svc.SystemEvents[i].Event != want {
			t.Errorf("system event %d = %q, want %q", i, svc.SystemEvents[i].Event, want)
		}
	}
}

// TestIntegrationStartupPayloadPassthrough verifies a startup event built
// from a status snapshot travels through the transport byte for byte.
func TestIntegrationStartupPayloadPassthrough(t *testing.T) {
	start := time.Date(2026, 2, 3, 19, 5, 51, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{
		PollMs:         1,
		DebounceMs:     5,
		ModeDebounceMs: 25,
		HeartbeatMs:    60000,
		Broker:         "tcp://192.168.1.200:1883",
		HTTPPort:       ":80",
	})

	snap := tracker.Snapshot()
	raw := status.FormatStatusEvent(snap, "STARTUP", "")

	svc := wireless.NewFakeService()
	err := svc.PublishSystem(wireless.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: raw,
	})
	if err != nil {
		t.Fatalf("publish startup: %v", err)
	}

	if !bytes.Equal(svc.SystemPayloads[0], raw) {
		t.Error("startup payload was not passed through unchanged")
	}

	var out status.StatusJSON
	if err := json.Unmarshal(svc.SystemPayloads[0], &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Status.Event != "STARTUP" {
		t.Errorf("event = %q, want STARTUP", out.Status.Event)
	}
	if out.Status.Mode != "UNKNOWN" {
		t.Errorf("mode = %q, want UNKNOWN before the first reading", out.Status.Mode)
	}
	if out.Status.Config.PollMs != 1 {
		t.Errorf("config.poll_ms = %d, want 1", out.Status.Config.PollMs)
	}
	if out.Status.Config.ModeDebounceMs != 25 {
		t.Errorf("config.mode_debounce_ms = %d, want 25", out.Status.Config.ModeDebounceMs)
	}
	if out.Status.Wireless.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("wireless.broker = %q", out.Status.Wireless.Broker)
	}
}

// TestIntegrationShutdownPayloadFormat verifies the exact JSON structure
// for plain system events.
func TestIntegrationShutdownPayloadFormat(t *testing.T) {
	svc := wireless.NewFakeService()

	event := wireless.SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}
	if err := svc.PublishSystem(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(svc.SystemPayloads[0]) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", svc.SystemPayloads[0], expected)
	}
}

// TestIntegrationHeartbeatCarriesCounters verifies counters accumulated
// by the loop surface in the heartbeat status payload.
func TestIntegrationHeartbeatCarriesCounters(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{Broker: "tcp://test:1883"})

	var held [logic.ButtonCount]bool
	held[7] = true
	tracker.Update(status.Reading{
		Mode:      "WIRELESS",
		Connected: true,
		Indicator: "SOLID_ON",
		Direction: "UP",
		Buttons:   held,
		Counts:    logic.Counters{Presses: 42, Releases: 41, Sleeps: 2, Wakes: 2},
	})

	snap := tracker.Snapshot()
	raw := status.FormatStatusEvent(snap, "HEARTBEAT", "")

	var out status.StatusJSON
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Status.Counts.Presses != 42 || out.Status.Counts.Releases != 41 {
		t.Errorf("counts = %+v, want 42/41", out.Status.Counts)
	}
	if out.Status.Counts.Sleeps != 2 || out.Status.Counts.Wakes != 2 {
		t.Errorf("counts = %+v, want 2 sleeps 2 wakes", out.Status.Counts)
	}
	if len(out.Status.ButtonsHeld) != 1 || out.Status.ButtonsHeld[0] != "B8" {
		t.Errorf("buttons_held = %v, want [B8]", out.Status.ButtonsHeld)
	}
	if out.Status.Direction != "UP" {
		t.Errorf("direction = %q, want UP", out.Status.Direction)
	}
}

// TestIntegrationFullSession verifies the system event order across a
// typical session: startup, input, sleep, shutdown.
func TestIntegrationFullSession(t *testing.T) {
	svc := wireless.NewFakeService()
	start := time.Date(2026, 2, 3, 19, 5, 51, 0, time.UTC)

	if err := svc.PublishSystem(wireless.SystemEvent{Timestamp: start, Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("startup publish error: %v", err)
	}

	samples := [][]bool{
		gpio.Idle(),
		pressedSample(gpio.LineStart),
		pressedSample(gpio.LineStart),
	}
	board := gpio.NewFakeBoard(samples)
	tr := logic.NewTranslator(testLines(), 5*time.Millisecond)
	driveSamples(t, board, svc, tr, start, len(samples))

	if err := svc.PublishSystem(wireless.SystemEvent{Timestamp: start.Add(time.Minute), Event: "MODE_WIRED"}); err != nil {
		t.Fatalf("mode publish error: %v", err)
	}
	if err := svc.PublishSystem(wireless.SystemEvent{Timestamp: start.Add(2 * time.Minute), Event: "SHUTDOWN", Reason: "SIGTERM", Retained: true}); err != nil {
		t.Fatalf("shutdown publish error: %v", err)
	}

	if len(svc.Presses) != 1 || svc.Presses[0] != logic.ButtonStart {
		t.Errorf("presses = %v, want [START]", svc.Presses)
	}

	wantEvents := []string{"STARTUP", "MODE_WIRED", "SHUTDOWN"}
	if len(svc.SystemEvents) != len(wantEvents) {
		t.Fatalf("expected %d system events, got %d", len(wantEvents), len(svc.SystemEvents))
	}
	for i, want := range wantEvents {
		if svc.SystemEvents[i].Event != want {
			t.Errorf("system event %d = %q, want %q", i, svc.SystemEvents[i].Event, want)
		}
	}
	if !svc.SystemEvents[0].Retained || !svc.SystemEvents[2].Retained {
		t.Error("STARTUP and SHUTDOWN should be retained")
	}
	if svc.SystemEvents[1].Retained {
		t.Error("MODE_WIRED should not be retained")
	}
}
