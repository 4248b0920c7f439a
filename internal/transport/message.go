package transport

import (
	"fmt"
	"time"

	"github.com/san-kum/attractor/internal/field"
	"github.com/san-kum/attractor/internal/params"
)

// Message types accepted on a client connection. The node emits
// TypeForceOutput to every connected client.
const (
	TypePosition    = "position"
	TypeVelocity    = "velocity"
	TypeForceInput  = "force_input"
	TypeParams      = "params"
	TypeForceOutput = "force_output"
	TypeError       = "error"
)

// Message is the wire format: one JSON object per websocket frame.
type Message struct {
	Type string `json:"type"`

	// Vector payload for kinematic and force messages.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Parameter payload, only for TypeParams.
	Params *ParamUpdate `json:"params,omitempty"`

	// Error text, only for TypeError responses.
	Error string `json:"error,omitempty"`
}

func (m Message) vec() field.Vec3 {
	return field.Vec3{m.X, m.Y, m.Z}
}

func forceMessage(f field.Vec3) Message {
	return Message{Type: TypeForceOutput, X: f[0], Y: f[1], Z: f[2]}
}

// ParamUpdate is a partial runtime reconfiguration. Nil fields leave
// the stored value unchanged; an explicit zero is applied as zero, so
// "absent" and "0.0" remain distinct.
type ParamUpdate struct {
	Basis          []float64 `json:"basis,omitempty"`
	Weights        []float64 `json:"weights,omitempty"`
	Offset         []float64 `json:"offset,omitempty"`
	Stiffness      *float64  `json:"stiffness,omitempty"`
	Damping        *float64  `json:"damping,omitempty"`
	ForceTransform []float64 `json:"force_transform,omitempty"`
	SampleInterval *float64  `json:"sample_interval_s,omitempty"`
	PublishForce   *bool     `json:"publish_force,omitempty"`
}

// apply folds the update into a snapshot. Shape errors surface here;
// value validation happens in the store on swap.
func (u *ParamUpdate) apply(snap *params.Snapshot) error {
	if u.Basis != nil {
		m, err := field.MatFromSlice(u.Basis)
		if err != nil {
			return fmt.Errorf("basis: %w", err)
		}
		snap.Attractor.Basis = m
	}
	if u.ForceTransform != nil {
		m, err := field.MatFromSlice(u.ForceTransform)
		if err != nil {
			return fmt.Errorf("force_transform: %w", err)
		}
		snap.Transform = m
	}
	if u.Weights != nil {
		if len(u.Weights) != 3 {
			return fmt.Errorf("weights needs 3 values, got %d", len(u.Weights))
		}
		snap.Attractor.Weights = field.Vec3{u.Weights[0], u.Weights[1], u.Weights[2]}
	}
	if u.Offset != nil {
		if len(u.Offset) != 3 {
			return fmt.Errorf("offset needs 3 values, got %d", len(u.Offset))
		}
		snap.Attractor.Offset = field.Vec3{u.Offset[0], u.Offset[1], u.Offset[2]}
	}
	if u.Stiffness != nil {
		snap.Attractor.Stiffness = *u.Stiffness
	}
	if u.Damping != nil {
		snap.Attractor.Damping = *u.Damping
	}
	if u.SampleInterval != nil {
		snap.SampleInterval = time.Duration(*u.SampleInterval * float64(time.Second))
	}
	if u.PublishForce != nil {
		snap.PublishForce = *u.PublishForce
	}
	return nil
}
