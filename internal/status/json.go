package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string      `json:"state"`
	LivePulses    int         `json:"live_pulses"`
	ElapsedMs     int64       `json:"elapsed_ms"`
	Capture       *CaptureJSON `json:"capture,omitempty"`
	Replay        *ReplayJSON `json:"replay,omitempty"`
	Slots         []SlotJSON  `json:"slots"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Config        ConfigJSON  `json:"config"`
}

// CaptureJSON is the JSON representation of the last capture.
type CaptureJSON struct {
	PulseCount int    `json:"pulse_count"`
	Protocol   string `json:"protocol"`
}

// ReplayJSON is the JSON representation of replay progress.
type ReplayJSON struct {
	Slot    int `json:"slot"`
	Current int `json:"current"`
	Total   int `json:"total"`
}

// SlotJSON is the JSON representation of one saved signal.
type SlotJSON struct {
	Slot       int    `json:"slot"`
	Name       string `json:"name"`
	PulseCount int    `json:"pulse_count"`
	Protocol   string `json:"protocol"`
}

// MQTTStatus reports command channel connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
	GPIOChip         string `json:"gpio_chip"`
	PinData          int    `json:"pin_data"`
	SignalsDir       string `json:"signals_dir"`
	CaptureTimeoutMs int64  `json:"capture_timeout_ms"`
	Repeats          int    `json:"repeats"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		State:         snap.State,
		LivePulses:    snap.LivePulses,
		ElapsedMs:     snap.ElapsedMs,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Slots:         []SlotJSON{},
		Config: ConfigJSON{
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
			GPIOChip:         snap.Config.GPIOChip,
			PinData:          snap.Config.PinData,
			SignalsDir:       snap.Config.SignalsDir,
			CaptureTimeoutMs: snap.Config.CaptureTimeoutMs,
			Repeats:          snap.Config.Repeats,
		},
	}
	if snap.LastCapture != nil {
		inner.Capture = &CaptureJSON{
			PulseCount: snap.LastCapture.PulseCount,
			Protocol:   snap.LastCapture.Protocol,
		}
	}
	if snap.Replay != nil {
		inner.Replay = &ReplayJSON{
			Slot:    snap.Replay.Slot,
			Current: snap.Replay.Current,
			Total:   snap.Replay.Total,
		}
	}
	for _, s := range snap.Slots {
		inner.Slots = append(inner.Slots, SlotJSON{
			Slot:       s.Slot,
			Name:       s.Name,
			PulseCount: s.PulseCount,
			Protocol:   string(s.Protocol),
		})
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
