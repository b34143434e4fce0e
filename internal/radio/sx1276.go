//go:build linux

package radio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SX1276 register addresses (FSK/OOK bank).
const (
	regOpMode        = 0x01
	regBitrateMsb    = 0x02
	regBitrateLsb    = 0x03
	regFrfMsb        = 0x06
	regFrfMid        = 0x07
	regFrfLsb        = 0x08
	regPaConfig      = 0x09
	regOcp           = 0x0B
	regLna           = 0x0C
	regRxConfig      = 0x0D
	regRssiThresh    = 0x10
	regRssiValue     = 0x11
	regRxBw          = 0x12
	regAfcBw         = 0x13
	regOokPeak       = 0x14
	regOokFix        = 0x15
	regPreambleMsb   = 0x25
	regPreambleLsb   = 0x26
	regSyncConfig    = 0x27
	regPacketConfig2 = 0x31
	regIrqFlags1     = 0x3E
	regDioMapping1   = 0x40
	regVersion       = 0x42
)

// RegOpMode bits: long-range off (FSK/OOK bank), OOK modulation, mode in
// the low three bits.
const (
	modeSleep        = 0x00
	modeStdby        = 0x01
	modeTx           = 0x03
	modeRxContinuous = 0x05
	modulationOOK    = 0x20
	irqModeReady     = 0x80
)

// chipVersion is the RegVersion value of a genuine SX1276.
const chipVersion = 0x12

// Frf register values for 433.92 MHz (Frf = freq * 2^19 / 32 MHz).
const (
	freq43392Msb = 0x6C
	freq43392Mid = 0x7A
	freq43392Lsb = 0xE1
)

// SX1276 is the real transceiver, attached over spidev with its reset pin
// on a GPIO line.
type SX1276 struct {
	port spi.PortCloser
	conn spi.Conn
	rst  *gpiocdev.Line
}

// NewSX1276 opens the SPI port, resets the chip, verifies its identity and
// configures OOK continuous mode at 433.92 MHz. An unexpected version
// response is fatal: the board is miswired or the chip is absent.
func NewSX1276(spiDev, chip string, resetPin int) (*SX1276, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("open spi %s: %w", spiDev, err)
	}
	conn, err := port.Connect(5*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}

	rst, err := gpiocdev.RequestLine(chip, resetPin, gpiocdev.AsOutput(1))
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("request reset pin %d: %w", resetPin, err)
	}

	s := &SX1276{port: port, conn: conn, rst: rst}
	if err := s.init(); err != nil {
		rst.Close()
		port.Close()
		return nil, err
	}
	return s, nil
}

func (s *SX1276) readReg(addr byte) (byte, error) {
	w := []byte{addr & 0x7F, 0x00}
	r := make([]byte, 2)
	if err := s.conn.Tx(w, r); err != nil {
		return 0, fmt.Errorf("read reg 0x%02X: %w", addr, err)
	}
	return r[1], nil
}

func (s *SX1276) writeReg(addr, value byte) error {
	if err := s.conn.Tx([]byte{addr | 0x80, value}, nil); err != nil {
		return fmt.Errorf("write reg 0x%02X: %w", addr, err)
	}
	return nil
}

func (s *SX1276) setMode(mode byte) error {
	if err := s.writeReg(regOpMode, modulationOOK|mode); err != nil {
		return err
	}
	// Wait for ModeReady (IrqFlags1 bit 7).
	for i := 0; i < 100; i++ {
		v, err := s.readReg(regIrqFlags1)
		if err != nil {
			return err
		}
		if v&irqModeReady != 0 {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return fmt.Errorf("mode 0x%02X not ready", mode)
}

func (s *SX1276) reset() error {
	if err := s.rst.SetValue(0); err != nil {
		return fmt.Errorf("assert reset: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := s.rst.SetValue(1); err != nil {
		return fmt.Errorf("release reset: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

func (s *SX1276) init() error {
	if err := s.reset(); err != nil {
		return err
	}
	time.Sleep(20 * time.Millisecond)

	ver, err := s.readReg(regVersion)
	if err != nil {
		return err
	}
	if ver != chipVersion {
		return fmt.Errorf("sx1276 not found (version=0x%02X)", ver)
	}

	if err := s.setMode(modeSleep); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)

	steps := []struct {
		reg, val byte
	}{
		// 433.92 MHz carrier.
		{regFrfMsb, freq43392Msb},
		{regFrfMid, freq43392Mid},
		{regFrfLsb, freq43392Lsb},
		// 32 kbps bit rate: a fast rate lets the peak detector adapt
		// quickly enough to track short pulses.
		{regBitrateMsb, 0x03},
		{regBitrateLsb, 0xE8},
		// PA_BOOST, +17 dBm.
		{regPaConfig, 0x8F},
		// Over-current protection at 120 mA.
		{regOcp, 0x2B},
		// LNA max gain.
		{regLna, 0x23},
		// ~83 kHz RX bandwidth: narrower BW keeps the OOK threshold clean.
		{regRxBw, 0x12},
		{regAfcBw, 0x12},
		// OOK peak detector: 1.0 dB step, decay every 2 chips.
		{regOokPeak, 0x2C},
		// Fixed-threshold fallback.
		{regOokFix, 0x50},
		// RSSI threshold for the OOK demodulator.
		{regRssiThresh, 0xA0},
		// No sync word, continuous (unpacketized) mode, no preamble.
		{regSyncConfig, 0x00},
		{regPacketConfig2, 0x00},
		{regPreambleMsb, 0x00},
		{regPreambleLsb, 0x00},
		// RX trigger on RSSI with AGC.
		{regRxConfig, 0x1E},
	}
	for _, st := range steps {
		if err := s.writeReg(st.reg, st.val); err != nil {
			return err
		}
	}

	// DIO2 = DATA in continuous mode (bits [3:2] = 01).
	dio, err := s.readReg(regDioMapping1)
	if err != nil {
		return err
	}
	if err := s.writeReg(regDioMapping1, dio&0xF3|0x04); err != nil {
		return err
	}

	return s.setMode(modeStdby)
}

// StartRx enters continuous RX mode; DIO2 outputs demodulated OOK data.
func (s *SX1276) StartRx() error {
	return s.setMode(modeRxContinuous)
}

// StartTx enters continuous TX mode; DIO2 modulates the carrier.
func (s *SX1276) StartTx() error {
	return s.setMode(modeTx)
}

// Stop returns to standby.
func (s *SX1276) Stop() error {
	return s.setMode(modeStdby)
}

// RSSI reads the current received signal strength in dBm.
func (s *SX1276) RSSI() (float64, error) {
	v, err := s.readReg(regRssiValue)
	if err != nil {
		return 0, err
	}
	return -float64(v) / 2, nil
}

// SetFrequency tunes the carrier to the given frequency in MHz.
func (s *SX1276) SetFrequency(mhz float64) error {
	frf := uint32(mhz * float64(uint32(1)<<19) / 32.0)
	if err := s.writeReg(regFrfMsb, byte(frf>>16)); err != nil {
		return err
	}
	if err := s.writeReg(regFrfMid, byte(frf>>8)); err != nil {
		return err
	}
	return s.writeReg(regFrfLsb, byte(frf))
}

// SetTxPower sets the PA_BOOST output level, clamped to 2..17 dBm.
func (s *SX1276) SetTxPower(dbm int) error {
	if dbm < 2 {
		dbm = 2
	}
	if dbm > 17 {
		dbm = 17
	}
	return s.writeReg(regPaConfig, 0x80|byte(dbm-2))
}

// Close puts the chip to sleep and releases the SPI port and reset line.
func (s *SX1276) Close() error {
	err := s.setMode(modeSleep)
	if cerr := s.rst.Close(); err == nil {
		err = cerr
	}
	if cerr := s.port.Close(); err == nil {
		err = cerr
	}
	return err
}
