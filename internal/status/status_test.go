package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/rf433d/internal/pulse"
	"github.com/sweeney/rf433d/internal/store"
)

func testTracker() *Tracker {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return NewTracker(start, Config{
		Broker:           "tcp://192.168.1.200:1883",
		HTTPAddr:         ":8080",
		GPIOChip:         "gpiochip0",
		PinData:          25,
		SignalsDir:       "/var/lib/rf433d/signals",
		CaptureTimeoutMs: 5000,
		Repeats:          8,
	})
}

func TestSnapshotIsolation(t *testing.T) {
	tr := testTracker()
	tr.SetState("recording")
	tr.SetLive(42, 1500*time.Millisecond)

	snap := tr.Snapshot()
	tr.SetState("idle")
	tr.SetLive(0, 0)

	// The earlier snapshot must be unaffected.
	if snap.State != "recording" {
		t.Errorf("state: got %q, want recording", snap.State)
	}
	if snap.LivePulses != 42 || snap.ElapsedMs != 1500 {
		t.Errorf("live: got %d pulses, %dms", snap.LivePulses, snap.ElapsedMs)
	}
}

func TestReplayObserver(t *testing.T) {
	tr := testTracker()
	obs := tr.ReplayObserver(3)
	obs.OnRepeat(2, 8)

	snap := tr.Snapshot()
	if snap.Replay == nil {
		t.Fatal("replay progress not recorded")
	}
	if snap.Replay.Slot != 3 || snap.Replay.Current != 2 || snap.Replay.Total != 8 {
		t.Errorf("replay: got %+v", snap.Replay)
	}

	tr.SetReplay(nil)
	if tr.Snapshot().Replay != nil {
		t.Error("replay progress not cleared")
	}
}

func TestFormatJSON(t *testing.T) {
	tr := testTracker()
	tr.SetState("captured")
	tr.SetCapture(24, "PT2262")
	tr.SetMQTTConnected(true)
	tr.SetSlots([]store.Summary{
		{Slot: 1, Name: "gate", PulseCount: 12, Protocol: pulse.ProtocolPT2262},
	})

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if sj.Status.State != "captured" {
		t.Errorf("state: got %q", sj.Status.State)
	}
	if sj.Status.Capture == nil || sj.Status.Capture.PulseCount != 24 {
		t.Errorf("capture: got %+v", sj.Status.Capture)
	}
	if !sj.Status.MQTT.Connected || sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("mqtt: got %+v", sj.Status.MQTT)
	}
	if len(sj.Status.Slots) != 1 || sj.Status.Slots[0].Name != "gate" {
		t.Errorf("slots: got %+v", sj.Status.Slots)
	}
	if sj.Status.Config.Repeats != 8 {
		t.Errorf("config repeats: got %d", sj.Status.Config.Repeats)
	}
}

func TestFormatJSONEmptySlots(t *testing.T) {
	tr := testTracker()
	data := FormatJSON(tr.Snapshot())

	// Slots must serialize as [] rather than null for API consumers.
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["status"]["slots"]) != "[]" {
		t.Errorf("slots: got %s, want []", raw["status"]["slots"])
	}
}
