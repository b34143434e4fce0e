package recorder

import (
	"testing"

	"github.com/sweeney/rf433d/internal/pulse"
	"github.com/sweeney/rf433d/internal/radio"
)

type progressRecorder struct {
	calls [][2]int
}

func (p *progressRecorder) OnRepeat(current, total int) {
	p.calls = append(p.calls, [2]int{current, total})
}

func TestReplayEmptyFrame(t *testing.T) {
	r, rdo, _ := newTestRecorder(t)

	if r.Replay(nil, 3, nil) {
		t.Error("empty frame must not transmit")
	}
	if len(rdo.Modes) != 0 {
		t.Errorf("radio touched for empty frame: %v", rdo.Modes)
	}
}

func TestReplayWaveform(t *testing.T) {
	r, rdo, line := newTestRecorder(t)

	frame := pulse.Frame{{HighUS: 300, LowUS: 200}, {HighUS: 250, LowUS: 150}}
	obs := &progressRecorder{}

	if !r.Replay(frame, 2, obs) {
		t.Fatal("Replay returned false")
	}

	// Radio: TX for the transmission, standby afterwards.
	wantModes := []string{radio.ModeTx, radio.ModeStandby}
	if len(rdo.Modes) != len(wantModes) {
		t.Fatalf("radio modes: got %v, want %v", rdo.Modes, wantModes)
	}
	for i := range wantModes {
		if rdo.Modes[i] != wantModes[i] {
			t.Errorf("radio mode %d: got %s, want %s", i, rdo.Modes[i], wantModes[i])
		}
	}

	// Per repeat: 1,0 per pulse, then the inter-frame idle 0; one final 0
	// before the line is released.
	wantValues := []int{1, 0, 1, 0, 0, 1, 0, 1, 0, 0, 0}
	if len(line.Values) != len(wantValues) {
		t.Fatalf("line writes: got %v, want %v", line.Values, wantValues)
	}
	for i := range wantValues {
		if line.Values[i] != wantValues[i] {
			t.Errorf("line write %d: got %d, want %d", i, line.Values[i], wantValues[i])
		}
	}
	if line.LastValue() != 0 {
		t.Errorf("line must end low, got %d", line.LastValue())
	}
	if line.Output {
		t.Error("line must be released after replay")
	}

	// Progress: once per repeat.
	if len(obs.calls) != 2 {
		t.Fatalf("progress calls: got %v", obs.calls)
	}
	if obs.calls[0] != [2]int{1, 2} || obs.calls[1] != [2]int{2, 2} {
		t.Errorf("progress values: got %v", obs.calls)
	}
}

func TestReplayDefaultRepeats(t *testing.T) {
	r, _, _ := newTestRecorder(t)
	r.cfg.InterFrameGap = 0

	frame := pulse.Frame{{HighUS: 120, LowUS: 100}}
	obs := &progressRecorder{}

	if !r.Replay(frame, 0, obs) {
		t.Fatal("Replay returned false")
	}
	if len(obs.calls) != DefaultRepeats {
		t.Errorf("repeats: got %d, want %d", len(obs.calls), DefaultRepeats)
	}
}

func TestPlayDrivesLifecycle(t *testing.T) {
	r, rdo, line := newTestRecorder(t)

	r.StartRecording()
	line.InjectEdges(edgesFromDurations(remoteDurations(2)...)...)
	r.StopRecording()
	if err := r.Save(1, "gate"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	obs := &progressRecorder{}
	rec, err := r.Play(1, obs)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if rec.Name != "gate" {
		t.Errorf("record name: got %q", rec.Name)
	}
	if r.State() != StateIdle {
		t.Errorf("state after play: got %s, want idle", r.State())
	}
	if len(obs.calls) != r.cfg.Repeats {
		t.Errorf("progress calls: got %d, want %d", len(obs.calls), r.cfg.Repeats)
	}
	if rdo.Mode() != radio.ModeStandby {
		t.Errorf("radio mode after play: got %s", rdo.Mode())
	}
}
