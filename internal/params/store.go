// Package params holds the live node parameters behind an atomic
// snapshot pointer. Readers always observe a fully consistent set of
// values; writers replace the whole snapshot copy-on-write, so a
// sampling tick can never see a half-applied update.
package params

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/attractor/internal/config"
	"github.com/san-kum/attractor/internal/field"
)

// Snapshot is one consistent view of every runtime parameter.
type Snapshot struct {
	Attractor      field.AttractorConfig
	Transform      field.Mat3
	SampleInterval time.Duration
	PublishForce   bool
}

// Validate mirrors the boundary checks of the config file layer for
// updates that arrive over the wire instead of from disk.
func (s Snapshot) Validate() error {
	if !s.Attractor.Basis.IsFinite() {
		return fmt.Errorf("basis is not finite")
	}
	if !s.Transform.IsFinite() {
		return fmt.Errorf("force transform is not finite")
	}
	if !s.Attractor.Weights.IsFinite() || !s.Attractor.Offset.IsFinite() {
		return fmt.Errorf("weights or offset is not finite")
	}
	for i, w := range s.Attractor.Weights {
		if w < 0 {
			return fmt.Errorf("weights[%d] must be >= 0, got %f", i, w)
		}
	}
	if s.Attractor.Stiffness < 0 || math.IsNaN(s.Attractor.Stiffness) {
		return fmt.Errorf("stiffness must be >= 0, got %f", s.Attractor.Stiffness)
	}
	if s.Attractor.Damping < 0 || math.IsNaN(s.Attractor.Damping) {
		return fmt.Errorf("damping must be >= 0, got %f", s.Attractor.Damping)
	}
	if s.SampleInterval <= 0 {
		return fmt.Errorf("sample interval must be positive, got %s", s.SampleInterval)
	}
	return nil
}

// Store hands out immutable parameter snapshots.
type Store struct {
	current atomic.Pointer[Snapshot]

	mu      sync.Mutex // serializes writers
	changed chan struct{}
}

func NewStore(snap Snapshot) (*Store, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	s := &Store{changed: make(chan struct{}, 1)}
	s.current.Store(&snap)
	return s, nil
}

// FromConfig builds a store seeded from a parameter file.
func FromConfig(cfg *config.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	attractor, err := cfg.Attractor()
	if err != nil {
		return nil, err
	}
	transform, err := cfg.Transform()
	if err != nil {
		return nil, err
	}
	return NewStore(Snapshot{
		Attractor:      attractor,
		Transform:      transform,
		SampleInterval: time.Duration(cfg.SampleInterval),
		PublishForce:   cfg.PublishForce,
	})
}

// Snapshot returns the current parameters. The returned value is a
// copy; it stays valid regardless of later updates.
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// Update copies the current snapshot, applies fn to the copy, validates
// it, and swaps it in. An invalid result leaves the store untouched and
// returns the validation error.
func (s *Store) Update(fn func(*Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.current.Load()
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.current.Store(&next)

	select {
	case s.changed <- struct{}{}:
	default: // a notification is already pending
	}
	return nil
}

// Changed signals that at least one update was applied since the last
// receive. Notifications are coalesced, never blocking a writer.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}
