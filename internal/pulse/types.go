// Package pulse contains the pure signal-processing logic: reconstructing
// pulse trains from raw edge timestamps, classifying the encoding protocol,
// and extracting a single code frame from a repeated transmission.
// This package has NO hardware dependencies; everything is a function of
// its inputs.
package pulse

// Pulse is one active-then-idle cycle of the demodulated signal.
// Immutable once produced.
type Pulse struct {
	HighUS uint32 `json:"high_us"`
	LowUS  uint32 `json:"low_us"`
}

// Signal is a full reconstructed capture. It may contain several repeated
// transmissions of the same code.
type Signal []Pulse

// Frame is exactly one logical code word, derived from a Signal by removing
// repetition.
type Frame []Pulse

// Protocol is a classification label, not a decoded payload.
type Protocol string

const (
	ProtocolUnknown Protocol = "unknown"
	ProtocolPT2262  Protocol = "PT2262"
	ProtocolEV1527  Protocol = "EV1527"
	// ProtocolGeneric is returned when the pulse ratio matches the PT2262
	// family but the frame length cannot be pinned down: either no sync gap
	// was found, or the counted frame length fell outside both named
	// ranges. The two causes deliberately collapse to one tag.
	ProtocolGeneric Protocol = "PT2262/EV1527"
)

// Timing constants. These are empirically chosen for 433 MHz fixed-code
// remotes and kept as named constants so behavior stays reproducible.
const (
	// MinPulseUS is the noise floor: highs shorter than this are discarded.
	MinPulseUS = 100
	// GlitchThreshUS separates glitch fragments from real intervals.
	GlitchThreshUS = 250
	// MaxGapUS is the longest low expected inside one code word; a low
	// beyond half of this anchors the start of a frame.
	MaxGapUS = 20000
)

// Classification thresholds.
const (
	classifyWindow   = 50  // pulses examined
	shortLongSplitUS = 600 // high duration partition point
	ratioLow         = 2.5 // long/short mean ratio bounds (exclusive)
	ratioHigh        = 3.5
	syncGapFactor    = 5.0 // max low must exceed mean low by this factor
	frameEndFraction = 0.7 // a low beyond this fraction of max ends a frame
	syncSplitFactor  = 3.0 // frame extraction: sync lows exceed mean by this
)
