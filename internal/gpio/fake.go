package gpio

import (
	"errors"
	"sync"
)

// FakeLine is a test double recording output writes and allowing edge
// injection.
type FakeLine struct {
	mu      sync.Mutex
	handler EdgeHandler

	// Watching reports whether edge events are armed.
	Watching bool

	// Output reports whether the line is in output mode.
	Output bool

	// Values records every Set call in order.
	Values []int

	// Closed tracks if Close was called.
	Closed bool

	// WatchError, if set, is returned by WatchEdges.
	WatchError error

	// BeginOutputError, if set, is returned by BeginOutput.
	BeginOutputError error
}

// NewFakeLine creates a FakeLine.
func NewFakeLine() *FakeLine {
	return &FakeLine{}
}

// WatchEdges arms the fake; injected edges reach h.
func (f *FakeLine) WatchEdges(h EdgeHandler) error {
	if f.WatchError != nil {
		return f.WatchError
	}
	f.mu.Lock()
	f.handler = h
	f.Watching = true
	f.mu.Unlock()
	return nil
}

// UnwatchEdges disarms the fake.
func (f *FakeLine) UnwatchEdges() error {
	f.mu.Lock()
	f.handler = nil
	f.Watching = false
	f.mu.Unlock()
	return nil
}

// InjectEdges delivers timestamps to the armed handler, simulating line
// transitions. Timestamps not delivered while armed are silently ignored,
// matching a real line that is not being watched.
func (f *FakeLine) InjectEdges(timestamps ...uint32) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return
	}
	for _, ts := range timestamps {
		h(ts)
	}
}

// BeginOutput switches the fake to output mode.
func (f *FakeLine) BeginOutput() error {
	if f.BeginOutputError != nil {
		return f.BeginOutputError
	}
	f.mu.Lock()
	f.Output = true
	f.mu.Unlock()
	return nil
}

// Set records the written value.
func (f *FakeLine) Set(value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Output {
		return errors.New("fake line: Set outside output mode")
	}
	f.Values = append(f.Values, value)
	return nil
}

// EndOutput leaves output mode.
func (f *FakeLine) EndOutput() error {
	f.mu.Lock()
	f.Output = false
	f.mu.Unlock()
	return nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// LastValue returns the most recent Set value, or -1 if none.
func (f *FakeLine) LastValue() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Values) == 0 {
		return -1
	}
	return f.Values[len(f.Values)-1]
}
