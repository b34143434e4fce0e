package pulse

// ExtractFrame isolates one logical code word from a repeated transmission.
// Raw captures typically hold several repetitions of the same code separated
// by long sync gaps; only one representative frame is worth persisting.
//
// Never fails: with fewer than 4 pulses, no positive low duration, or no
// sync gaps at all, the whole input is returned unchanged.
func ExtractFrame(sig Signal) Frame {
	if len(sig) < 4 {
		return Frame(sig)
	}

	var lowSum float64
	var lowN int
	for _, p := range sig {
		if p.LowUS > 0 {
			lowSum += float64(p.LowUS)
			lowN++
		}
	}
	if lowN == 0 {
		return Frame(sig)
	}
	meanLow := lowSum / float64(lowN)

	// Sync gaps are lows well above the mean, in capture order.
	var syncs []int
	for i, p := range sig {
		if p.LowUS > 0 && float64(p.LowUS) > meanLow*syncSplitFactor {
			syncs = append(syncs, i)
		}
	}

	switch {
	case len(syncs) >= 2:
		// One complete frame lies between the first two sync gaps,
		// excluding the leading sync pulse and including the trailing one.
		return Frame(sig[syncs[0]+1 : syncs[1]+1])
	case len(syncs) == 1:
		return Frame(sig[:syncs[0]+1])
	}
	return Frame(sig)
}
