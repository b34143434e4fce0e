// Package capture provides the fixed-capacity edge timestamp buffer that is
// filled by the GPIO event handler during a recording session.
package capture

import "sync/atomic"

// MaxPulses is the pulse budget for one recording. Two edges per pulse gives
// the default buffer capacity.
const (
	MaxPulses       = 500
	DefaultCapacity = MaxPulses * 2
)

// Buffer is a pre-allocated, append-only store of edge timestamps.
//
// It has a single producer (the GPIO event handler) and a single consumer,
// and the consumer only reads the contents after the event source has been
// disarmed. The length counter is atomic so that live reads (the pulse count
// shown during recording) never race the producer; the append path takes no
// locks and performs no allocation.
type Buffer struct {
	edges   []uint32
	count   atomic.Uint32
	dropped atomic.Uint32
}

// New creates a Buffer holding up to capacity timestamps.
// capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{edges: make([]uint32, capacity)}
}

// OnEdge appends ts if there is room. It runs on every transition of the
// demodulated line and must complete in bounded time. When the buffer is
// full the edge is counted as dropped and capture continues; older edges are
// never overwritten.
func (b *Buffer) OnEdge(ts uint32) {
	n := b.count.Load()
	if int(n) >= len(b.edges) {
		b.dropped.Add(1)
		return
	}
	b.edges[n] = ts
	b.count.Store(n + 1)
}

// Len returns the number of stored edges. Safe to call while the producer
// is armed.
func (b *Buffer) Len() int {
	return int(b.count.Load())
}

// Dropped returns the number of edges discarded because the buffer was full.
func (b *Buffer) Dropped() int {
	return int(b.dropped.Load())
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.edges)
}

// Edges returns the captured timestamps. The returned slice aliases the
// buffer's storage; call only after the event source has been disarmed.
func (b *Buffer) Edges() []uint32 {
	return b.edges[:b.count.Load()]
}

// Reset clears the buffer. Only valid while no event source is armed.
func (b *Buffer) Reset() {
	b.count.Store(0)
	b.dropped.Store(0)
}
