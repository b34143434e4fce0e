package recorder

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/rf433d/internal/gpio"
	"github.com/sweeney/rf433d/internal/pulse"
	"github.com/sweeney/rf433d/internal/radio"
	"github.com/sweeney/rf433d/internal/store"
)

func testConfig() Config {
	return Config{
		CaptureTimeout: 5 * time.Second,
		Repeats:        2,
		InterFrameGap:  time.Millisecond,
		RxSettle:       0,
		TxSettle:       0,
	}
}

func newTestRecorder(t *testing.T) (*Recorder, *radio.FakeTransceiver, *gpio.FakeLine) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	rdo := radio.NewFakeTransceiver()
	line := gpio.NewFakeLine()
	return New(testConfig(), rdo, line, st), rdo, line
}

// edgesFromDurations builds cumulative edge timestamps from a sequence of
// interval durations.
func edgesFromDurations(durs ...uint32) []uint32 {
	edges := make([]uint32, 0, len(durs)+1)
	var ts uint32
	edges = append(edges, ts)
	for _, d := range durs {
		ts += d
		edges = append(edges, ts)
	}
	return edges
}

// remoteDurations emits frames of 12 alternating short/long pulses with a
// terminating sync gap, as a garage remote would transmit.
func remoteDurations(frames int) []uint32 {
	var durs []uint32
	for f := 0; f < frames; f++ {
		for i := 0; i < 12; i++ {
			if i%2 == 0 {
				durs = append(durs, 350)
			} else {
				durs = append(durs, 1050)
			}
			if i == 11 {
				durs = append(durs, 12000)
			} else {
				durs = append(durs, 400)
			}
		}
	}
	return durs
}

func TestStopWhileIdle(t *testing.T) {
	r, _, _ := newTestRecorder(t)

	if _, _, err := r.StopRecording(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("got %v, want ErrNotRecording", err)
	}
	if r.State() != StateIdle {
		t.Errorf("state: got %s, want idle", r.State())
	}
}

func TestRecordWhileRecording(t *testing.T) {
	r, _, _ := newTestRecorder(t)

	if err := r.StartRecording(); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if err := r.StartRecording(); !errors.Is(err, ErrBusy) {
		t.Errorf("got %v, want ErrBusy", err)
	}
	if r.State() != StateRecording {
		t.Errorf("state: got %s, want recording", r.State())
	}
}

func TestCaptureCycle(t *testing.T) {
	r, rdo, line := newTestRecorder(t)

	if err := r.StartRecording(); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if rdo.Mode() != radio.ModeRx {
		t.Errorf("radio mode: got %s, want rx", rdo.Mode())
	}
	if !line.Watching {
		t.Error("line should be watching edges")
	}

	line.InjectEdges(edgesFromDurations(remoteDurations(2)...)...)
	if r.LivePulseCount() == 0 {
		t.Error("live pulse count should be nonzero during capture")
	}

	count, proto, err := r.StopRecording()
	if err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if r.State() != StateCaptured {
		t.Errorf("state: got %s, want captured", r.State())
	}
	if count != 12 {
		t.Errorf("pulse count: got %d, want 12", count)
	}
	if proto != pulse.ProtocolPT2262 {
		t.Errorf("protocol: got %q, want PT2262", proto)
	}
	if rdo.Mode() != radio.ModeStandby {
		t.Errorf("radio mode after stop: got %s, want standby", rdo.Mode())
	}
	if line.Watching {
		t.Error("line should be disarmed after stop")
	}
}

func TestStopWithNoSignal(t *testing.T) {
	r, _, line := newTestRecorder(t)

	if err := r.StartRecording(); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	// Only noise: three edges is below the reconstruction minimum.
	line.InjectEdges(0, 80, 130)

	_, _, err := r.StopRecording()
	if !errors.Is(err, ErrNoSignal) {
		t.Errorf("got %v, want ErrNoSignal", err)
	}
	if r.State() != StateIdle {
		t.Errorf("state: got %s, want idle", r.State())
	}
	if r.HasSignal() {
		t.Error("HasSignal should be false")
	}
}

func TestRestartDiscardsCapture(t *testing.T) {
	r, _, line := newTestRecorder(t)

	r.StartRecording()
	line.InjectEdges(edgesFromDurations(remoteDurations(2)...)...)
	r.StopRecording()
	if r.State() != StateCaptured {
		t.Fatalf("state: got %s, want captured", r.State())
	}

	// Starting again from Captured discards the uncommitted signal.
	if err := r.StartRecording(); err != nil {
		t.Fatalf("StartRecording from captured: %v", err)
	}
	if r.HasSignal() {
		t.Error("restart should discard the previous signal")
	}
}

func TestCaptureTimeout(t *testing.T) {
	r, _, _ := newTestRecorder(t)

	if r.CaptureTimedOut(time.Now()) {
		t.Error("idle recorder cannot time out")
	}
	r.StartRecording()
	if r.CaptureTimedOut(time.Now()) {
		t.Error("fresh session should not have timed out")
	}
	if !r.CaptureTimedOut(time.Now().Add(6 * time.Second)) {
		t.Error("session should time out after the capture window")
	}
}

func TestSaveLifecycle(t *testing.T) {
	r, _, line := newTestRecorder(t)

	if err := r.Save(1, "gate"); !errors.Is(err, ErrNoSignal) {
		t.Errorf("save without capture: got %v, want ErrNoSignal", err)
	}

	r.StartRecording()
	line.InjectEdges(edgesFromDurations(remoteDurations(3)...)...)
	r.StopRecording()

	// Invalid slot: failure, state stays Captured.
	if err := r.Save(store.MaxSlots+1, "gate"); !errors.Is(err, store.ErrInvalidSlot) {
		t.Errorf("got %v, want ErrInvalidSlot", err)
	}
	if r.State() != StateCaptured {
		t.Errorf("state after failed save: got %s, want captured", r.State())
	}

	if err := r.Save(2, "gate"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if r.State() != StateIdle {
		t.Errorf("state after save: got %s, want idle", r.State())
	}

	slots := r.Slots()
	if len(slots) != 1 || slots[0].Slot != 2 || slots[0].Name != "gate" {
		t.Errorf("Slots: got %+v", slots)
	}
	if slots[0].Protocol != pulse.ProtocolPT2262 {
		t.Errorf("saved protocol: got %q", slots[0].Protocol)
	}
	// One representative frame, not the whole repeated capture.
	if slots[0].PulseCount != 12 {
		t.Errorf("saved pulse count: got %d, want 12", slots[0].PulseCount)
	}
}

func TestDelete(t *testing.T) {
	r, _, line := newTestRecorder(t)

	if err := r.Delete(1); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("got %v, want ErrSlotNotFound", err)
	}

	r.StartRecording()
	line.InjectEdges(edgesFromDurations(remoteDurations(2)...)...)
	r.StopRecording()
	r.Save(1, "gate")

	if err := r.Delete(1); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if len(r.Slots()) != 0 {
		t.Error("slot should be gone")
	}
}

func TestPlayEmptySlot(t *testing.T) {
	r, _, _ := newTestRecorder(t)

	if _, err := r.Play(3, nil); !errors.Is(err, ErrSlotEmpty) {
		t.Errorf("got %v, want ErrSlotEmpty", err)
	}
	if r.State() != StateIdle {
		t.Errorf("state: got %s, want idle", r.State())
	}
}
