//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

// NewRealLine returns an error on non-Linux platforms.
func NewRealLine(chip string, offset int) (*RealLine, error) {
	return nil, errUnsupported
}

func (r *RealLine) WatchEdges(h EdgeHandler) error { return errUnsupported }
func (r *RealLine) UnwatchEdges() error            { return errUnsupported }
func (r *RealLine) BeginOutput() error             { return errUnsupported }
func (r *RealLine) Set(value int) error            { return errUnsupported }
func (r *RealLine) EndOutput() error               { return errUnsupported }
func (r *RealLine) Close() error                   { return nil }
