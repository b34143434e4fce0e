// Package status provides a thread-safe status tracker for the rf433d
// daemon. The main loop writes it; HTTP handlers and other display
// consumers read point-in-time snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rf433d/internal/store"
)

// ReplayProgress is the live progress of an in-flight replay.
type ReplayProgress struct {
	Slot    int
	Current int
	Total   int
}

// Capture summarizes the last completed capture.
type Capture struct {
	PulseCount int
	Protocol   string
}

// Config contains daemon configuration for display.
type Config struct {
	Broker           string
	HTTPAddr         string
	GPIOChip         string
	PinData          int
	SignalsDir       string
	CaptureTimeoutMs int64
	Repeats          int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         string
	LivePulses    int
	ElapsedMs     int64
	LastCapture   *Capture
	Replay        *ReplayProgress
	Slots         []store.Summary
	MQTTConnected bool
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     "idle",
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetState sets the lifecycle state label.
func (t *Tracker) SetState(state string) {
	t.mu.Lock()
	t.snap.State = state
	t.mu.Unlock()
}

// SetLive sets the live capture counters shown during recording.
func (t *Tracker) SetLive(pulses int, elapsed time.Duration) {
	t.mu.Lock()
	t.snap.LivePulses = pulses
	t.snap.ElapsedMs = elapsed.Milliseconds()
	t.mu.Unlock()
}

// SetCapture records the summary of the last completed capture.
func (t *Tracker) SetCapture(pulseCount int, protocol string) {
	t.mu.Lock()
	t.snap.LastCapture = &Capture{PulseCount: pulseCount, Protocol: protocol}
	t.mu.Unlock()
}

// SetReplay sets the replay progress; nil clears it.
func (t *Tracker) SetReplay(p *ReplayProgress) {
	t.mu.Lock()
	t.snap.Replay = p
	t.mu.Unlock()
}

// SetSlots sets the saved-signal summaries.
func (t *Tracker) SetSlots(slots []store.Summary) {
	t.mu.Lock()
	t.snap.Slots = slots
	t.mu.Unlock()
}

// SetMQTTConnected sets the command channel connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// replayObserver feeds replay progress into the tracker.
type replayObserver struct {
	t    *Tracker
	slot int
}

// OnRepeat implements the recorder's progress observer.
func (o replayObserver) OnRepeat(current, total int) {
	o.t.SetReplay(&ReplayProgress{Slot: o.slot, Current: current, Total: total})
}

// ReplayObserver returns a progress observer that records replay progress
// for the given slot.
func (t *Tracker) ReplayObserver(slot int) replayObserver {
	return replayObserver{t: t, slot: slot}
}
