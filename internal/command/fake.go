package command

// FakeChannel records published responses for test assertions.
type FakeChannel struct {
	// In is the request stream. Tests send payloads into it.
	In chan string

	// Payloads contains the response payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeChannel creates a FakeChannel for testing.
func NewFakeChannel() *FakeChannel {
	return &FakeChannel{In: make(chan string, 16), Connected: true}
}

// Requests returns the test-fed request stream.
func (f *FakeChannel) Requests() <-chan string {
	return f.In
}

// Publish records the response payload.
func (f *FakeChannel) Publish(payload []byte) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// IsConnected reports the configured connection state.
func (f *FakeChannel) IsConnected() bool {
	return f.Connected
}

// Close marks the channel as closed.
func (f *FakeChannel) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recently published payload, or nil.
func (f *FakeChannel) Last() []byte {
	if len(f.Payloads) == 0 {
		return nil
	}
	return f.Payloads[len(f.Payloads)-1]
}
