// Package recorder owns the capture/replay lifecycle. It is the only code
// that switches the radio mode or changes the data line's direction, which
// keeps exactly one of receive, transmit, or standby active at a time.
//
// A Recorder is confined to the main loop goroutine: no method may be
// called concurrently with another. The one exception is the capture
// buffer's append path, which runs on the GPIO event goroutine and is
// designed for that single-producer handoff.
package recorder

import (
	"fmt"
	"log"
	"time"

	"github.com/sweeney/rf433d/internal/capture"
	"github.com/sweeney/rf433d/internal/gpio"
	"github.com/sweeney/rf433d/internal/metrics"
	"github.com/sweeney/rf433d/internal/pulse"
	"github.com/sweeney/rf433d/internal/radio"
	"github.com/sweeney/rf433d/internal/store"
)

// State is the recording lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateCaptured  State = "captured"
	StateReplaying State = "replaying"
)

// DefaultRepeats is how many times a frame is transmitted per replay.
const DefaultRepeats = 8

// Config holds the lifecycle's timing parameters.
type Config struct {
	// CaptureTimeout is the wall-clock window after which a recording is
	// stopped automatically.
	CaptureTimeout time.Duration

	// Repeats is the replay repeat count.
	Repeats int

	// InterFrameGap separates repeated frames during replay.
	InterFrameGap time.Duration

	// RxSettle is the wait after entering RX before edges are armed,
	// letting the OOK threshold stabilize.
	RxSettle time.Duration

	// TxSettle is the wait after entering TX before toggling starts.
	TxSettle time.Duration
}

// DefaultConfig returns the production timing parameters.
func DefaultConfig() Config {
	return Config{
		CaptureTimeout: 5 * time.Second,
		Repeats:        DefaultRepeats,
		InterFrameGap:  10 * time.Millisecond,
		RxSettle:       100 * time.Millisecond,
		TxSettle:       10 * time.Millisecond,
	}
}

// ProgressObserver is notified once per replay repeat, before the repeat's
// frame goes out.
type ProgressObserver interface {
	OnRepeat(current, total int)
}

// Recorder is the recording lifecycle state machine.
type Recorder struct {
	cfg   Config
	radio radio.Transceiver
	line  gpio.DataLine
	store *store.Store
	buf   *capture.Buffer

	state        State
	signal       pulse.Signal
	captureStart time.Time
}

// New creates an idle Recorder owning the given radio and data line.
func New(cfg Config, rdo radio.Transceiver, line gpio.DataLine, st *store.Store) *Recorder {
	return &Recorder{
		cfg:   cfg,
		radio: rdo,
		line:  line,
		store: st,
		buf:   capture.New(capture.DefaultCapacity),
		state: StateIdle,
	}
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	return r.state
}

// HasSignal reports whether the last capture reconstructed to a usable
// signal.
func (r *Recorder) HasSignal() bool {
	return len(r.signal) >= 4
}

// Signal returns the reconstructed capture, nil if none.
func (r *Recorder) Signal() pulse.Signal {
	return r.signal
}

// StartRecording arms the capture buffer and receive mode. Valid from Idle
// or Captured; starting from Captured discards the uncommitted signal.
func (r *Recorder) StartRecording() error {
	if r.state == StateRecording || r.state == StateReplaying {
		return ErrBusy
	}

	r.signal = nil
	r.buf.Reset()

	if err := r.radio.StartRx(); err != nil {
		return fmt.Errorf("enter rx: %w", err)
	}
	// Let RX and the OOK threshold settle before listening; edges armed
	// during the settle window would be demodulator noise.
	time.Sleep(r.cfg.RxSettle)

	if err := r.line.WatchEdges(r.buf.OnEdge); err != nil {
		r.radio.Stop()
		return fmt.Errorf("arm capture: %w", err)
	}

	r.captureStart = time.Now()
	r.state = StateRecording
	return nil
}

// StopRecording disarms capture, reconstructs the pulse train and
// classifies it. With a usable signal the state becomes Captured and the
// pulse count and protocol are returned; otherwise the state falls back to
// Idle with ErrNoSignal. Outside a session it returns ErrNotRecording.
func (r *Recorder) StopRecording() (int, pulse.Protocol, error) {
	if r.state != StateRecording {
		return 0, pulse.ProtocolUnknown, ErrNotRecording
	}

	if err := r.line.UnwatchEdges(); err != nil {
		log.Printf("recorder: disarm capture: %v", err)
	}
	if err := r.radio.Stop(); err != nil {
		log.Printf("recorder: stop radio: %v", err)
	}

	if dropped := r.buf.Dropped(); dropped > 0 {
		log.Printf("recorder: capture buffer full, %d edges dropped", dropped)
		metrics.EdgesDroppedTotal.Add(float64(dropped))
	}

	r.signal = pulse.Reconstruct(r.buf.Edges())
	if !r.HasSignal() {
		r.signal = nil
		r.state = StateIdle
		metrics.CapturesEmptyTotal.Inc()
		return 0, pulse.ProtocolUnknown, ErrNoSignal
	}

	r.state = StateCaptured
	metrics.CapturesTotal.Inc()
	return len(r.signal), pulse.Classify(r.signal), nil
}

// CaptureTimedOut reports whether the capture window has expired.
func (r *Recorder) CaptureTimedOut(now time.Time) bool {
	return r.state == StateRecording && now.Sub(r.captureStart) >= r.cfg.CaptureTimeout
}

// Elapsed returns the recording time so far, zero outside a session.
func (r *Recorder) Elapsed(now time.Time) time.Duration {
	if r.state != StateRecording {
		return 0
	}
	return now.Sub(r.captureStart)
}

// LivePulseCount estimates captured pulses (edges/2) during recording.
func (r *Recorder) LivePulseCount() int {
	if r.state != StateRecording {
		return 0
	}
	return r.buf.Len() / 2
}

// Save extracts one frame from the captured signal and persists it.
// On success the state returns to Idle; on failure (invalid slot) it stays
// Captured so the capture can be retried into another slot.
func (r *Recorder) Save(slot int, name string) error {
	if r.state == StateRecording || r.state == StateReplaying {
		return ErrBusy
	}
	if !r.HasSignal() {
		return ErrNoSignal
	}

	frame := pulse.ExtractFrame(r.signal)
	if err := r.store.Save(slot, name, frame, pulse.Classify(r.signal)); err != nil {
		return err
	}
	r.state = StateIdle
	metrics.SavesTotal.Inc()
	return nil
}

// Play loads the slot and replays it, blocking until transmission
// completes. The state is Replaying for the duration and Idle afterwards.
func (r *Recorder) Play(slot int, obs ProgressObserver) (store.Record, error) {
	if r.state == StateRecording || r.state == StateReplaying {
		return store.Record{}, ErrBusy
	}

	rec, err := r.store.Load(slot)
	if err != nil {
		return store.Record{}, ErrSlotEmpty
	}

	r.state = StateReplaying
	ok := r.Replay(rec.Pulses, r.cfg.Repeats, obs)
	r.state = StateIdle
	if !ok {
		return rec, fmt.Errorf("replay slot %d failed", slot)
	}
	metrics.ReplaysTotal.Inc()
	return rec, nil
}

// Delete removes the record at the slot.
func (r *Recorder) Delete(slot int) error {
	if r.state == StateRecording || r.state == StateReplaying {
		return ErrBusy
	}
	if !r.store.Delete(slot) {
		return ErrSlotNotFound
	}
	return nil
}

// Slots returns summaries of all saved signals.
func (r *Recorder) Slots() []store.Summary {
	return r.store.List()
}
