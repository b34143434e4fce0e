// Package radio controls the sub-GHz transceiver's operating mode.
// The real implementation drives an SX1276 in OOK continuous mode over SPI.
// The fake implementation allows testing without hardware.
package radio

// Transceiver switches the radio's operating mode. Calls block until the
// mode is effective. Exactly one of receive, transmit, or standby is active
// at a time; the recording lifecycle is the only caller.
type Transceiver interface {
	// StartRx enters continuous receive mode. The DIO2 line carries the
	// demodulated OOK data.
	StartRx() error

	// StartTx enters continuous transmit mode. The DIO2 line modulates
	// the carrier.
	StartTx() error

	// Stop returns the radio to standby.
	Stop() error

	// Close puts the radio to sleep and releases its resources.
	Close() error
}

// Mode names used by fakes and logs.
const (
	ModeRx      = "rx"
	ModeTx      = "tx"
	ModeStandby = "standby"
)
