package capture

// DiffUS returns now-then for values of a wrapping 32-bit microsecond
// counter. Unsigned subtraction stays correct across a single overflow of
// the counter, where a naive signed difference would go negative.
func DiffUS(now, then uint32) uint32 {
	return now - then
}
