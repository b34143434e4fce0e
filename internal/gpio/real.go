//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLine drives an actual GPIO line through the Linux character device.
// Direction changes are implemented by releasing and re-requesting the line,
// which is the only way the chardev API switches between event delivery and
// output.
type RealLine struct {
	chip   string
	offset int
	line   *gpiocdev.Line
}

// NewRealLine opens the line as a floating input so a bad chip or pin fails
// at startup rather than on first use.
func NewRealLine(chip string, offset int) (*RealLine, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsInput)
	if err != nil {
		return nil, fmt.Errorf("request data pin %d on %s: %w", offset, chip, err)
	}
	return &RealLine{chip: chip, offset: offset, line: l}, nil
}

// WatchEdges re-requests the line with event delivery on both edges.
// The kernel timestamps each event; the handler receives the timestamp
// truncated to the wrapping 32-bit microsecond counter the reconstruction
// math expects.
func (r *RealLine) WatchEdges(h EdgeHandler) error {
	if err := r.release(); err != nil {
		return err
	}
	l, err := gpiocdev.RequestLine(r.chip, r.offset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			h(uint32(evt.Timestamp.Microseconds()))
		}))
	if err != nil {
		return fmt.Errorf("arm edge events on pin %d: %w", r.offset, err)
	}
	r.line = l
	return nil
}

// UnwatchEdges drops the event request and parks the line as an input.
func (r *RealLine) UnwatchEdges() error {
	return r.reacquireInput()
}

// BeginOutput reconfigures the line as an output driven low.
func (r *RealLine) BeginOutput() error {
	if err := r.release(); err != nil {
		return err
	}
	l, err := gpiocdev.RequestLine(r.chip, r.offset, gpiocdev.AsOutput(0))
	if err != nil {
		return fmt.Errorf("request pin %d as output: %w", r.offset, err)
	}
	r.line = l
	return nil
}

// Set drives the output value.
func (r *RealLine) Set(value int) error {
	return r.line.SetValue(value)
}

// EndOutput returns the line to a floating input.
func (r *RealLine) EndOutput() error {
	return r.reacquireInput()
}

// Close releases the line.
func (r *RealLine) Close() error {
	if r.line == nil {
		return nil
	}
	err := r.line.Close()
	r.line = nil
	return err
}

func (r *RealLine) release() error {
	if r.line == nil {
		return nil
	}
	if err := r.line.Close(); err != nil {
		return fmt.Errorf("release pin %d: %w", r.offset, err)
	}
	r.line = nil
	return nil
}

func (r *RealLine) reacquireInput() error {
	if err := r.release(); err != nil {
		return err
	}
	l, err := gpiocdev.RequestLine(r.chip, r.offset, gpiocdev.AsInput)
	if err != nil {
		return fmt.Errorf("request pin %d as input: %w", r.offset, err)
	}
	r.line = l
	return nil
}
