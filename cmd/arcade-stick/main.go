// Command arcade-stick reads the panel's GPIO inputs and publishes
// gamepad events over MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/arcade-stick/internal/gpio"
	"github.com/sweeney/arcade-stick/internal/indicator"
	"github.com/sweeney/arcade-stick/internal/logic"
	"github.com/sweeney/arcade-stick/internal/mode"
	"github.com/sweeney/arcade-stick/internal/status"
	"github.com/sweeney/arcade-stick/internal/web"
	"github.com/sweeney/arcade-stick/internal/wireless"
)

func main() {
	poll := flag.Duration("poll", time.Millisecond, "Input polling interval")
	debounce := flag.Duration("debounce", 5*time.Millisecond, "Button debounce window")
	modeDebounce := flag.Duration("mode-debounce", 25*time.Millisecond, "Mode switch debounce window")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", time.Minute, "Heartbeat interval (0 to disable)")
	printState := flag.Bool("print-state", false, "Print current line levels and exit")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	ws := resolveWSBroker(*wsBroker, *broker)
	if err := run(*poll, *debounce, *modeDebounce, *broker, *heartbeat, *printState, *httpAddr, ws); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(poll, debounce, modeDebounce time.Duration, broker string, heartbeat time.Duration, printState bool, httpAddr, wsBroker string) error {
	if poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", poll)
	}

	// Initialize GPIO
	board, err := gpio.NewRealBoard()
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	raw, err := board.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}

	// Print state mode
	if printState {
		for i := 0; i < gpio.LineModeSwitch; i++ {
			fmt.Printf("%s: %s\n", gpio.LineNames[i], levelString(raw[i]))
		}
		m := "WIRED"
		if raw[gpio.LineModeSwitch] {
			m = "WIRELESS"
		}
		fmt.Printf("%s: %s\n", gpio.LineNames[gpio.LineModeSwitch], m)
		return nil
	}

	// The raw mode switch level at power-on picks the starting mode.
	// The line is pulled up, so high means wireless.
	wirelessAtBoot := raw[gpio.LineModeSwitch]

	// Initialize the wireless service
	svc := wireless.NewRealService(broker)
	defer svc.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:         poll.Milliseconds(),
		DebounceMs:     debounce.Milliseconds(),
		ModeDebounceMs: modeDebounce.Milliseconds(),
		HeartbeatMs:    heartbeat.Milliseconds(),
		Broker:         broker,
		HTTPPort:       httpAddr,
		WSBroker:       wsBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot. The connection
	// comes up in the background, so this usually queues until then.
	snap := tracker.Snapshot()
	startupEvent := wireless.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := svc.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	translator := logic.NewTranslator(panelLines(), debounce)
	ctrl := mode.New(svc, logic.NewChannel(gpio.LineModeSwitch, modeDebounce), wirelessAtBoot)
	ind := indicator.New(board, indicator.DefaultBlinkInterval)

	if wirelessAtBoot {
		if err := ctrl.StartWireless(); err != nil {
			log.Printf("wireless start error: %v", err)
		}
	} else {
		log.Printf("mode switch held at boot, starting wired")
	}

	log.Printf("started: mode=%s poll=%v debounce=%v broker=%s heartbeat=%v", ctrl.Mode(), poll, debounce, broker, heartbeat)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(board, svc, svc, ctrl, translator, ind, tracker, heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(board gpio.Board, svc wireless.Service, link wireless.ConnectionStatus, ctrl *mode.Controller, tr *logic.Translator, ind *indicator.Indicator, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	lastHeartbeat := startTime
	var counters logic.Counters
	direction := logic.DirCentered

	reading := func() status.Reading {
		return status.Reading{
			Mode:      ctrl.Mode().String(),
			Connected: link.IsConnected(),
			Indicator: ind.State().String(),
			Direction: direction.String(),
			Buttons:   tr.Pressed(),
			Counts:    counters,
		}
	}

	for {
		// Wired mode suspends sampling entirely. The mode switch line is
		// re-requested for edge detection so a press can wake us; nothing
		// else runs until it fires or a signal arrives.
		if ctrl.Mode() == mode.Wired {
			if err := ind.Off(); err != nil {
				log.Printf("indicator error: %v", err)
			}
			if tracker != nil {
				tracker.Update(reading())
			}
			wake, err := board.ArmWake()
			if err != nil {
				return fmt.Errorf("arm wake: %w", err)
			}
			log.Printf("input suspended, waiting for mode switch")

			select {
			case <-wake:
				if err := board.DisarmWake(); err != nil {
					log.Printf("disarm wake error: %v", err)
				}
				counters.Wakes++
				log.Printf("mode switch pressed, resuming wireless")
				if err := ctrl.Wake(); err != nil {
					log.Printf("wireless start error: %v", err)
				}
				publishMode(svc, "MODE_WIRELESS", now())
				if tracker != nil {
					tracker.Update(reading())
				}
			case s := <-sig:
				return publishShutdown(svc, tracker, s, now())
			}
			continue
		}

		select {
		case s := <-sig:
			return publishShutdown(svc, tracker, s, now())

		case <-tick:
			t := now()
			raw, err := board.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}
			if len(raw) < gpio.LineCount {
				log.Printf("gpio read error: sample has %d levels, need %d", len(raw), gpio.LineCount)
				continue
			}

			if ctrl.CheckSwitch(raw[gpio.LineModeSwitch], t) {
				counters.Sleeps++
				log.Printf("mode switch pressed, entering wired mode")
				publishMode(svc, "MODE_WIRED", t)
				if err := ctrl.EnterWired(); err != nil {
					log.Printf("wireless stop error: %v", err)
				}
				continue
			}

			frame, err := tr.Process(raw, t)
			if err != nil {
				log.Printf("sample error: %v", err)
				continue
			}
			direction = frame.Direction

			for _, b := range frame.Presses {
				counters.Presses++
				log.Printf("event: PRESS %s", b)
				if err := svc.Press(b); err != nil {
					log.Printf("publish error: %v", err)
				}
			}
			for _, b := range frame.Releases {
				counters.Releases++
				log.Printf("event: RELEASE %s", b)
				if err := svc.Release(b); err != nil {
					log.Printf("publish error: %v", err)
				}
			}
			// The hat state goes out every tick whether it changed or
			// not; the bridge owns deduplication.
			if err := svc.SetDirection(frame.Direction); err != nil {
				log.Printf("publish error: %v", err)
			}

			if err := ind.Update(link.IsConnected(), t); err != nil {
				log.Printf("indicator error: %v", err)
			}

			if tracker != nil {
				tracker.Update(reading())
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				log.Printf("heartbeat: presses=%d releases=%d sleeps=%d wakes=%d",
					counters.Presses, counters.Releases, counters.Sleeps, counters.Wakes)
				publishHeartbeat(svc, tracker, t)
			}
		}
	}
}

func publishMode(svc wireless.Service, event string, t time.Time) {
	if err := svc.PublishSystem(wireless.SystemEvent{Timestamp: t, Event: event}); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	}
}

func publishHeartbeat(svc wireless.Service, tracker *status.Tracker, t time.Time) {
	event := wireless.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
	if tracker != nil {
		// Refresh network info for heartbeat
		if net := readNetworkInfo(); net != nil {
			tracker.SetNetwork(net)
		}
		snap := tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
	}
	if err := svc.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func publishShutdown(svc wireless.Service, tracker *status.Tracker, s os.Signal, t time.Time) error {
	log.Printf("received %v, shutting down", s)
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	event := wireless.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if tracker != nil {
		snap := tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
	}
	if err := svc.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
	return nil
}

// panelLines maps the wired GPIO layout onto the logical control set.
func panelLines() logic.Lines {
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

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func levelString(level bool) string {
	if level {
		return "RELEASED"
	}
	return "PRESSED"
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
