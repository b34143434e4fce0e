//go:build !linux

package radio

import "errors"

var errUnsupported = errors.New("radio: not supported on this platform (requires Linux)")

// SX1276 is not available on non-Linux platforms.
type SX1276 struct{}

// NewSX1276 returns an error on non-Linux platforms.
func NewSX1276(spiDev, chip string, resetPin int) (*SX1276, error) {
	return nil, errUnsupported
}

func (s *SX1276) StartRx() error { return errUnsupported }
func (s *SX1276) StartTx() error { return errUnsupported }
func (s *SX1276) Stop() error    { return errUnsupported }
func (s *SX1276) Close() error   { return nil }

func (s *SX1276) SetFrequency(mhz float64) error { return errUnsupported }
func (s *SX1276) SetTxPower(dbm int) error       { return errUnsupported }
