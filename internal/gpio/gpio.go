// Package gpio abstracts the transceiver's demodulated data line (DIO2).
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// EdgeHandler receives the microsecond timestamp of one line transition.
// It runs on the event goroutine and must not block.
type EdgeHandler func(timestampUS uint32)

// DataLine is the shared capture/replay line. During capture it is an input
// delivering edge events; during replay it is an output driven by the replay
// loop. Only one direction is active at a time.
type DataLine interface {
	// WatchEdges arms edge detection on both transition directions.
	WatchEdges(h EdgeHandler) error

	// UnwatchEdges disarms edge detection. The handler does not run after
	// it returns.
	UnwatchEdges() error

	// BeginOutput reconfigures the line as an output driven low.
	BeginOutput() error

	// Set drives the output line to 0 or 1.
	// Valid only between BeginOutput and EndOutput.
	Set(value int) error

	// EndOutput returns the line to a floating input.
	EndOutput() error

	// Close releases the line.
	Close() error
}

// DefaultChip is the GPIO character device of the Pi header.
const DefaultChip = "gpiochip0"

// DefaultPinData is the BCM pin wired to the SX1276 DIO2 line.
const DefaultPinData = 25
