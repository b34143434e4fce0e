// Package config loads daemon configuration from a YAML file.
// Command-line flags override whatever the file provides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/rf433d/internal/gpio"
	"github.com/sweeney/rf433d/internal/recorder"
	"github.com/sweeney/rf433d/internal/store"
)

// Config holds the daemon's tunable settings. Durations are plain
// millisecond integers so the YAML stays editable by hand.
type Config struct {
	Broker   string `yaml:"broker"`
	HTTPAddr string `yaml:"http_addr"`

	GPIOChip string `yaml:"gpio_chip"`
	PinData  int    `yaml:"pin_data"`
	PinReset int    `yaml:"pin_reset"`
	SPIDev   string `yaml:"spi_dev"`

	SignalsDir string `yaml:"signals_dir"`

	CaptureTimeoutMs int `yaml:"capture_timeout_ms"`
	Repeats          int `yaml:"repeats"`

	// FrequencyMHz retunes the carrier; 0 keeps the 433.92 MHz default.
	FrequencyMHz float64 `yaml:"frequency_mhz"`
	// TxPowerDbm overrides the PA level; 0 keeps the chip default.
	TxPowerDbm int `yaml:"tx_power_dbm"`
}

// DefaultPinReset is the BCM pin wired to the SX1276 reset line.
const DefaultPinReset = 17

// DefaultSPIDev is the spidev the SX1276 is attached to.
const DefaultSPIDev = "/dev/spidev0.0"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Broker:           "tcp://192.168.1.200:1883",
		HTTPAddr:         ":8080",
		GPIOChip:         gpio.DefaultChip,
		PinData:          gpio.DefaultPinData,
		PinReset:         DefaultPinReset,
		SPIDev:           DefaultSPIDev,
		SignalsDir:       store.DefaultDir,
		CaptureTimeoutMs: int(recorder.DefaultConfig().CaptureTimeout.Milliseconds()),
		Repeats:          recorder.DefaultRepeats,
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	def := Default()
	if cfg.Broker == "" {
		cfg.Broker = def.Broker
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = def.HTTPAddr
	}
	if cfg.GPIOChip == "" {
		cfg.GPIOChip = def.GPIOChip
	}
	if cfg.PinData == 0 {
		cfg.PinData = def.PinData
	}
	if cfg.PinReset == 0 {
		cfg.PinReset = def.PinReset
	}
	if cfg.SPIDev == "" {
		cfg.SPIDev = def.SPIDev
	}
	if cfg.SignalsDir == "" {
		cfg.SignalsDir = def.SignalsDir
	}
	if cfg.CaptureTimeoutMs == 0 {
		cfg.CaptureTimeoutMs = def.CaptureTimeoutMs
	}
	if cfg.Repeats == 0 {
		cfg.Repeats = def.Repeats
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for values the daemon cannot run with.
func (c Config) Validate() error {
	if c.PinData == c.PinReset {
		return fmt.Errorf("pin_data and pin_reset are both %d", c.PinData)
	}
	if c.CaptureTimeoutMs < 0 {
		return fmt.Errorf("capture_timeout_ms must be >= 0, got %d", c.CaptureTimeoutMs)
	}
	if c.Repeats < 1 {
		return fmt.Errorf("repeats must be >= 1, got %d", c.Repeats)
	}
	if c.FrequencyMHz != 0 && (c.FrequencyMHz < 137 || c.FrequencyMHz > 1020) {
		return fmt.Errorf("frequency_mhz %.2f outside the SX1276 range", c.FrequencyMHz)
	}
	return nil
}
