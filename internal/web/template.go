package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"strings"
	"time"

	"github.com/sweeney/rf433d/internal/status"
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
	"upper": strings.ToUpper,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>RF433 Recorder</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.recording { color: red; font-weight: bold; }
.replaying { color: orange; font-weight: bold; }
.idle, .captured { color: green; font-weight: bold; }
.muted { color: #888; }
</style>
</head>
<body>
<h1>RF433 Recorder</h1>
<table>
<tr><th>State</th><td class="{{.State}}">{{upper .State}}</td></tr>
{{if eq .State "recording"}}
<tr><th>Live pulses</th><td>{{.LivePulses}}</td></tr>
<tr><th>Elapsed</th><td>{{.ElapsedMs}} ms</td></tr>
{{end}}
{{with .LastCapture}}
<tr><th>Last capture</th><td>{{.PulseCount}} pulses ({{.Protocol}})</td></tr>
{{end}}
{{with .Replay}}
<tr><th>Replaying</th><td>slot {{.Slot}}, {{.Current}}/{{.Total}}</td></tr>
{{end}}
<tr><th>MQTT</th><td>{{if .MQTTConnected}}connected{{else}}<span class="muted">disconnected</span>{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>
<h1>Saved signals</h1>
<table>
{{if .Slots}}
<tr><th>Slot</th><td>Name / pulses / protocol</td></tr>
{{range .Slots}}
<tr><th>{{.Slot}}</th><td>{{.Name}} / {{.PulseCount}} / {{.Protocol}}</td></tr>
{{end}}
{{else}}
<tr><td class="muted" colspan="2">(empty)</td></tr>
{{end}}
</table>
<p class="muted">broker {{.Config.Broker}} &middot; pin {{.Config.PinData}} &middot; <a href="/index.json">json</a> &middot; <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render status page: %v", err)
	}
}
