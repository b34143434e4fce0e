package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rf433d.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, "broker: tcp://10.0.0.5:1883\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Broker != "tcp://10.0.0.5:1883" {
		t.Errorf("broker: got %q", cfg.Broker)
	}
	def := Default()
	if cfg.PinData != def.PinData || cfg.GPIOChip != def.GPIOChip {
		t.Errorf("gpio defaults not applied: %+v", cfg)
	}
	if cfg.CaptureTimeoutMs != 5000 || cfg.Repeats != 8 {
		t.Errorf("timing defaults not applied: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
broker: tcp://broker:1883
http_addr: ":9090"
pin_data: 24
pin_reset: 22
spi_dev: /dev/spidev0.1
signals_dir: /tmp/signals
capture_timeout_ms: 8000
repeats: 4
frequency_mhz: 433.42
tx_power_dbm: 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PinData != 24 || cfg.PinReset != 22 {
		t.Errorf("pins: %+v", cfg)
	}
	if cfg.CaptureTimeoutMs != 8000 || cfg.Repeats != 4 {
		t.Errorf("timing: %+v", cfg)
	}
	if cfg.FrequencyMHz != 433.42 || cfg.TxPowerDbm != 10 {
		t.Errorf("radio tuning: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "broker: [this is\nnot valid yaml\n")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}

	bad := Default()
	bad.PinReset = bad.PinData
	if err := bad.Validate(); err == nil {
		t.Error("expected error for pin conflict")
	}

	bad = Default()
	bad.Repeats = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero repeats")
	}

	bad = Default()
	bad.FrequencyMHz = 30
	if err := bad.Validate(); err == nil {
		t.Error("expected error for out-of-range frequency")
	}
}
