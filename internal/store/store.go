// Package store persists captured frames to numbered slot files.
// One JSON file per slot; writes go through a temp file and rename so a
// concurrent reader never observes a partial record.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sweeney/rf433d/internal/pulse"
)

// MaxSlots is the number of save slots.
const MaxSlots = 5

// DefaultDir is where slot files live on the device.
const DefaultDir = "/var/lib/rf433d/signals"

var (
	// ErrNotFound means the slot has no valid record. Missing files and
	// unparseable records both map here; corruption is never fatal.
	ErrNotFound = errors.New("store: slot not found")

	// ErrInvalidSlot means the slot id is outside [1, MaxSlots].
	ErrInvalidSlot = errors.New("store: invalid slot")

	// ErrEmptyFrame means there was nothing to save.
	ErrEmptyFrame = errors.New("store: empty frame")
)

// Record is the persisted layout of one slot.
type Record struct {
	Name       string         `json:"name"`
	Pulses     pulse.Frame    `json:"pulses"`
	Protocol   pulse.Protocol `json:"protocol"`
	PulseCount int            `json:"pulse_count"`
}

// Summary is one row of List output.
type Summary struct {
	Slot       int            `json:"slot"`
	Name       string         `json:"name"`
	PulseCount int            `json:"pulse_count"`
	Protocol   pulse.Protocol `json:"protocol"`
}

// Store is a fixed-capacity catalog of named signals.
type Store struct {
	dir string
}

// New creates the signals directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create signals dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(slot int) string {
	return filepath.Join(s.dir, fmt.Sprintf("slot_%d.json", slot))
}

// Save writes the frame to the slot, overwriting any existing record.
func (s *Store) Save(slot int, name string, frame pulse.Frame, proto pulse.Protocol) error {
	if slot < 1 || slot > MaxSlots {
		return ErrInvalidSlot
	}
	if len(frame) == 0 {
		return ErrEmptyFrame
	}

	rec := Record{
		Name:       name,
		Pulses:     frame,
		Protocol:   proto,
		PulseCount: len(frame),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal slot %d: %w", slot, err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf("slot_%d.*.tmp", slot))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write slot %d: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit slot %d: %w", slot, err)
	}
	return nil
}

// Load reads the record at the slot. Missing and corrupt records both
// return ErrNotFound.
func (s *Store) Load(slot int) (Record, error) {
	if slot < 1 || slot > MaxSlots {
		return Record{}, ErrNotFound
	}
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		return Record{}, ErrNotFound
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, ErrNotFound
	}
	if len(rec.Pulses) == 0 {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete removes the record at the slot. Returns false if there was none.
func (s *Store) Delete(slot int) bool {
	if slot < 1 || slot > MaxSlots {
		return false
	}
	return os.Remove(s.path(slot)) == nil
}

// List returns summaries of all slots holding valid records, in ascending
// slot order.
func (s *Store) List() []Summary {
	var out []Summary
	for slot := 1; slot <= MaxSlots; slot++ {
		rec, err := s.Load(slot)
		if err != nil {
			continue
		}
		out = append(out, Summary{
			Slot:       slot,
			Name:       rec.Name,
			PulseCount: rec.PulseCount,
			Protocol:   rec.Protocol,
		})
	}
	return out
}
