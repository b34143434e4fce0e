package recorder

import "errors"

// Failure reasons surfaced to the command layer. These are expected,
// transient conditions: they never crash anything, and the lifecycle state
// is unchanged (or in the documented fallback) when one is returned.
var (
	// ErrBusy means a start/record request arrived while recording or
	// replaying.
	ErrBusy = errors.New("busy")

	// ErrNotRecording means stop was requested outside a session.
	ErrNotRecording = errors.New("not recording")

	// ErrNoSignal means reconstruction yielded too few pulses, or a save
	// was requested with nothing captured.
	ErrNoSignal = errors.New("no signal detected")

	// ErrSlotEmpty means play targeted a slot with no valid record.
	ErrSlotEmpty = errors.New("slot empty")

	// ErrSlotNotFound means delete targeted a slot with no record.
	ErrSlotNotFound = errors.New("slot not found")
)
