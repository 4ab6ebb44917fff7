package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/mdelathouwer/gpio-monitor/internal/logic"
	"github.com/mdelathouwer/gpio-monitor/internal/status"
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
	"stateClass": func(s logic.LineState) string {
		switch s {
		case logic.StateHigh:
			return "high"
		case logic.StateLow:
			return "low"
		}
		return "unknown"
	},
	"lastChange": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02T15:04:05.000Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>GPIO Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.high { color: green; font-weight: bold; }
.low { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>GPIO Monitor<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Lines</h2>
<table>
<tr><th>GPIO</th><th>State</th><th>Changes</th><th>Last change</th></tr>
{{range .Lines}}<tr id="gpio-{{.GPIO}}"><td>{{.GPIO}}</td><td class="state {{stateClass .State}}">{{.State}}</td><td class="changes">{{.Changes}}</td><td class="last">{{lastChange .LastChange}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>Subscribers</th><td>{{.Subscribers}}</td></tr>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Interval</th><td>{{.Config.IntervalMs}}ms</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function apply(msg) {
    var row = document.getElementById("gpio-" + msg.gpio);
    if (!row) {
      return;
    }
    var state = row.querySelector(".state");
    state.textContent = msg.state === 1 ? "HIGH" : "LOW";
    state.className = "state " + (msg.state === 1 ? "high" : "low");
    var changes = row.querySelector(".changes");
    changes.textContent = String(parseInt(changes.textContent, 10) + 1);
    row.querySelector(".last").textContent = new Date().toISOString();
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onmessage = function(ev) {
      try { apply(JSON.parse(ev.data)); } catch (e) {}
    };
    ws.onerror = function() { setDot("err", "error"); };
    ws.onclose = function() {
      setDot("pending", "reconnecting");
      setTimeout(connect, 5000);
    };
  }

  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and Ready() methods but the template reads fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Ready  bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Ready:    snap.Ready(),
	}
	indexTmpl.Execute(w, data)
}
