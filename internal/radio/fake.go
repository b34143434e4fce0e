package radio

import "sync"

// FakeTransceiver records mode transitions for test assertions.
type FakeTransceiver struct {
	mu sync.Mutex

	// Modes contains every mode entered, in order.
	Modes []string

	// StartRxError, StartTxError and StopError, if set, are returned by
	// the corresponding calls without recording a transition.
	StartRxError error
	StartTxError error
	StopError    error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeTransceiver creates a FakeTransceiver in standby.
func NewFakeTransceiver() *FakeTransceiver {
	return &FakeTransceiver{}
}

// StartRx records entering receive mode.
func (f *FakeTransceiver) StartRx() error {
	if f.StartRxError != nil {
		return f.StartRxError
	}
	f.record(ModeRx)
	return nil
}

// StartTx records entering transmit mode.
func (f *FakeTransceiver) StartTx() error {
	if f.StartTxError != nil {
		return f.StartTxError
	}
	f.record(ModeTx)
	return nil
}

// Stop records returning to standby.
func (f *FakeTransceiver) Stop() error {
	if f.StopError != nil {
		return f.StopError
	}
	f.record(ModeStandby)
	return nil
}

// Close marks the transceiver as closed.
func (f *FakeTransceiver) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Mode returns the most recently entered mode, ModeStandby if none.
func (f *FakeTransceiver) Mode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Modes) == 0 {
		return ModeStandby
	}
	return f.Modes[len(f.Modes)-1]
}

func (f *FakeTransceiver) record(mode string) {
	f.mu.Lock()
	f.Modes = append(f.Modes, mode)
	f.mu.Unlock()
}
