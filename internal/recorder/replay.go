package recorder

import (
	"log"
	"runtime"
	"time"

	"github.com/sweeney/rf433d/internal/pulse"
)

// Replay transmits the frame on the data line, repeats times, with the
// configured gap between repeats. Returns false (no transmission attempted)
// for an empty frame.
//
// The bit-toggle loop busy-waits on the monotonic clock: time.Sleep hands
// the thread back to the scheduler with millisecond-class jitter, while the
// waveform tolerates only microseconds. The loop therefore pins its OS
// thread and, on Linux, asks for realtime priority (best effort). Replay
// blocks the main loop for its whole duration; commands and display updates
// wait. That is the accepted trade-off for waveform fidelity — the repeat
// count is bounded, so it always terminates on its own.
//
// On every exit path the line ends low and the radio stopped.
func (r *Recorder) Replay(frame pulse.Frame, repeats int, obs ProgressObserver) bool {
	if len(frame) == 0 {
		return false
	}
	if repeats <= 0 {
		repeats = DefaultRepeats
	}
	log.Printf("replay: %d pulses, %d repeats", len(frame), repeats)

	if err := r.radio.StartTx(); err != nil {
		log.Printf("replay: enter tx: %v", err)
		return false
	}
	time.Sleep(r.cfg.TxSettle)

	if err := r.line.BeginOutput(); err != nil {
		log.Printf("replay: acquire output line: %v", err)
		r.radio.Stop()
		return false
	}

	runtime.LockOSThread()
	restore := raiseReplayPriority()

	for rep := 1; rep <= repeats; rep++ {
		if obs != nil {
			obs.OnRepeat(rep, repeats)
		}
		r.sendFrame(frame)
		r.line.Set(0)
		spinWait(r.cfg.InterFrameGap)
	}

	restore()
	runtime.UnlockOSThread()

	r.line.Set(0)
	if err := r.line.EndOutput(); err != nil {
		log.Printf("replay: release output line: %v", err)
	}
	if err := r.radio.Stop(); err != nil {
		log.Printf("replay: stop radio: %v", err)
	}
	return true
}

func (r *Recorder) sendFrame(frame pulse.Frame) {
	for _, p := range frame {
		r.line.Set(1)
		spinWaitUS(p.HighUS)
		r.line.Set(0)
		if p.LowUS > 0 {
			spinWaitUS(p.LowUS)
		}
	}
}

func spinWait(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

func spinWaitUS(us uint32) {
	spinWait(time.Duration(us) * time.Microsecond)
}
