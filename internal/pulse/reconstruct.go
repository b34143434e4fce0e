package pulse

import "github.com/sweeney/rf433d/internal/capture"

// Reconstruct converts raw edge timestamps into (high, low) pulse pairs.
//
// Polarity is not recorded at capture time: event-handler latency means the
// line may already have changed again by the time a value could be read, so
// only the elapsed time between transitions is trustworthy. Pulse boundaries
// are therefore inferred purely from interval magnitude and parity:
//
//  1. compute the wraparound-safe intervals between consecutive edges,
//  2. merge glitch clusters back into real intervals (odd-count cluster =
//     fragments of one split pulse, even-count cluster = a cancelled pair
//     folded into the following interval),
//  3. anchor on the first sync gap so the next interval is a HIGH,
//  4. pair alternating intervals into (high, low) tuples.
//
// Fewer than 4 edges yields an empty Signal; there are no partial results.
func Reconstruct(edges []uint32) Signal {
	if len(edges) < 4 {
		return nil
	}

	intervals := make([]uint32, 0, len(edges)-1)
	for i := 1; i < len(edges); i++ {
		intervals = append(intervals, capture.DiffUS(edges[i], edges[i-1]))
	}

	clean := mergeGlitches(intervals)

	// Find the sync anchor: the interval after the first long gap is the
	// first HIGH of a frame. Without a gap, start at the beginning.
	start := 0
	for i, iv := range clean {
		if iv > MaxGapUS/2 {
			start = i + 1
			break
		}
	}

	var sig Signal
	for i := start; i+1 < len(clean); i += 2 {
		high, low := clean[i], clean[i+1]
		if high >= MinPulseUS {
			sig = append(sig, Pulse{HighUS: high, LowUS: low})
		}
	}
	return sig
}

// mergeGlitches absorbs sub-threshold intervals into their neighbors.
// Real OOK pulses are >= GlitchThreshUS; anything shorter is electrical
// noise that briefly toggled the line.
func mergeGlitches(intervals []uint32) []uint32 {
	clean := make([]uint32, 0, len(intervals))
	var acc uint32
	glitches := 0

	for _, iv := range intervals {
		if iv < GlitchThreshUS {
			acc += iv
			glitches++
			continue
		}
		switch {
		case glitches == 0:
			clean = append(clean, iv)
		case glitches%2 == 1:
			// Odd cluster: fragments of one real pulse split by noise.
			if acc >= MinPulseUS {
				clean = append(clean, acc)
			}
			clean = append(clean, iv)
		default:
			// Even cluster: the glitches toggled and returned, so no real
			// state change happened. Fold the time into this interval.
			clean = append(clean, acc+iv)
		}
		acc = 0
		glitches = 0
	}

	if glitches%2 == 1 && acc >= MinPulseUS {
		clean = append(clean, acc)
	}
	return clean
}
