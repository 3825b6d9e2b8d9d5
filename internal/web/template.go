package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/arcade-stick/internal/logic"
	"github.com/sweeney/arcade-stick/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orElse": func(s, def string) string {
		if s == "" {
			return def
		}
		return s
	},
	"heldButtons": func(held [logic.ButtonCount]bool) string {
		var names []string
		for i, h := range held {
			if h {
				names = append(names, logic.Button(i+1).String())
			}
		}
		if len(names) == 0 {
			return "none"
		}
		return strings.Join(names, " ")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<title>Arcade Stick</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
body { font-family: monospace; background: #1a1a1a; color: #ddd; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.3em; border-bottom: 1px solid #444; padding-bottom: 0.3em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5em; }
td { padding: 0.3em 0.6em; border-bottom: 1px solid #333; }
td:first-child { color: #888; width: 40%; }
.on { color: #5f5; }
.off { color: #f55; }
.dim { color: #888; }
.warn { color: #fa4; }
h2 { font-size: 1em; color: #aaa; margin-bottom: 0.3em; }
#live-dot { display: inline-block; width: 0.6em; height: 0.6em; border-radius: 50%; background: #555; margin-left: 0.5em; }
#live-dot.live { background: #5f5; }
</style>
</head>
<body>
<h1>Arcade Stick{{if .Config.WSBroker}}<span id="live-dot"></span>{{end}}</h1>

<h2>State</h2>
<table>
<tr><td>Mode</td><td class="{{if eq .Mode "WIRELESS"}}on{{else}}dim{{end}}">{{orElse .Mode "UNKNOWN"}}</td></tr>
<tr><td>Indicator</td><td class="{{if eq .Indicator "SOLID_ON"}}on{{else if eq .Indicator "SLOW_BLINK"}}warn{{else}}dim{{end}}">{{orElse .Indicator "OFF"}}</td></tr>
<tr><td>Direction</td><td id="dir-state">{{orElse .Direction "CENTERED"}}</td></tr>
<tr><td>Buttons held</td><td>{{heldButtons .Buttons}}</td></tr>
<tr><td>Last event</td><td id="last-event" class="dim">-</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><td>Wireless link</td><td id="link-state" class="{{if .Connected}}on{{else}}off{{end}}">{{if .Connected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><td>Broker</td><td>{{.Config.Broker}}</td></tr>
{{if .Network}}
<tr><td>Network</td><td>{{.Network.Type}} ({{.Network.Status}})</td></tr>
<tr><td>IP</td><td>{{.Network.IP}}</td></tr>
<tr><td>Gateway</td><td>{{.Network.Gateway}}</td></tr>
{{if .Network.SSID}}<tr><td>SSID</td><td>{{.Network.SSID}} ({{.Network.WifiStatus}})</td></tr>{{end}}
{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><td>Presses</td><td>{{.Counts.Presses}}</td></tr>
<tr><td>Releases</td><td>{{.Counts.Releases}}</td></tr>
<tr><td>Sleeps</td><td>{{.Counts.Sleeps}}</td></tr>
<tr><td>Wakes</td><td>{{.Counts.Wakes}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><td>Uptime</td><td>{{uptime .Uptime}}</td></tr>
<tr><td>Started</td><td>{{.StartTime.Format "2006-01-02 15:04:05 MST"}}</td></tr>
<tr><td>Poll interval</td><td>{{.Config.PollMs}}ms</td></tr>
<tr><td>Debounce window</td><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><td>Mode debounce</td><td>{{.Config.ModeDebounceMs}}ms</td></tr>
<tr><td>Heartbeat</td><td>{{.Config.HeartbeatMs}}ms</td></tr>
<tr><td>HTTP</td><td>{{.Config.HTTPPort}}</td></tr>
</table>

{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt/dist/mqtt.min.js"></script>
<script>
(function() {
  var client = mqtt.connect("{{.Config.WSBroker}}");
  var dot = document.getElementById("live-dot");
  client.on("connect", function() {
    dot.classList.add("live");
    client.subscribe("gamepad/arcade-stick/input");
  });
  client.on("close", function() { dot.classList.remove("live"); });
  client.on("message", function(topic, payload) {
    var msg;
    try { msg = JSON.parse(payload.toString()); } catch (e) { return; }
    if (!msg.gamepad) { return; }
    var g = msg.gamepad;
    if (g.event === "DIRECTION") {
      document.getElementById("dir-state").textContent = g.direction;
    } else {
      document.getElementById("last-event").textContent = g.event + " " + g.button;
    }
  });
})();
</script>
{{end}}
</body>
</html>
`))

type indexData struct {
	status.Snapshot
	Uptime time.Duration
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	indexTmpl.Execute(w, indexData{Snapshot: snap, Uptime: snap.Uptime()})
}
