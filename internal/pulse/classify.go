package pulse

// Classify identifies the bit-encoding family of a captured signal.
// It is a pure function and never fails: ambiguity is reported as
// ProtocolUnknown, which is a valid outcome, not an error.
//
// PT2262 remotes use fixed-ratio pulses (~350us short, ~1050us long, 3:1)
// with 12 data bits per frame; EV1527 is the same shape with 20 bits.
// The heuristic partitions high durations at 600us, checks the long/short
// mean ratio, then counts pulses up to the sync gap to size one frame.
func Classify(sig Signal) Protocol {
	if len(sig) < 4 {
		return ProtocolUnknown
	}

	window := sig
	if len(window) > classifyWindow {
		window = window[:classifyWindow]
	}

	var shortSum, longSum float64
	var shortN, longN int
	for _, p := range window {
		if p.HighUS == 0 {
			continue
		}
		if p.HighUS < shortLongSplitUS {
			shortSum += float64(p.HighUS)
			shortN++
		} else {
			longSum += float64(p.HighUS)
			longN++
		}
	}
	if shortN == 0 || longN == 0 {
		return ProtocolUnknown
	}

	ratio := (longSum / float64(longN)) / (shortSum / float64(shortN))
	if ratio <= ratioLow || ratio >= ratioHigh {
		return ProtocolUnknown
	}

	// Ratio matched. Look for a sync gap in the low durations to count the
	// data bits of one frame.
	var lowSum float64
	var lowN int
	var maxLow uint32
	for _, p := range window {
		if p.LowUS == 0 {
			continue
		}
		lowSum += float64(p.LowUS)
		lowN++
		if p.LowUS > maxLow {
			maxLow = p.LowUS
		}
	}
	if lowN == 0 || float64(maxLow) <= lowSum/float64(lowN)*syncGapFactor {
		// No detectable sync gap; frame length unknown.
		return ProtocolGeneric
	}

	framePulses := 0
	for _, p := range sig {
		framePulses++
		if float64(p.LowUS) > float64(maxLow)*frameEndFraction {
			break
		}
	}
	switch {
	case framePulses >= 11 && framePulses <= 14:
		return ProtocolPT2262
	case framePulses >= 19 && framePulses <= 22:
		return ProtocolEV1527
	}
	return ProtocolGeneric
}
