// Package node runs the attractor sampling cycle: on every tick it
// reads the latest kinematic measurements and one immutable parameter
// snapshot, recomputes the force field, and publishes the aggregate
// applied force.
package node

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/attractor/internal/field"
	"github.com/san-kum/attractor/internal/params"
)

const (
	inputBuffer  = 64
	outputBuffer = 256
)

// Observer receives every completed sampling tick, published or not.
type Observer interface {
	OnTick(now time.Time, state field.KinematicState, force field.Vec3, published bool)
}

// Node owns the sampling loop. Kinematic inputs carry last-value
// semantics: the loop keeps the most recent position and velocity and
// reuses them on every tick until fresh data arrives, starting from the
// zero vector. External force contributions accumulate between ticks
// and are folded into the next aggregate exactly once.
type Node struct {
	store  *params.Store
	logger *zap.Logger

	positions  chan field.Vec3
	velocities chan field.Vec3
	forcesIn   chan field.Vec3
	out        chan field.Vec3

	observers []Observer

	state   field.KinematicState
	pending []field.Vec3
	dropped uint64
}

func New(store *params.Store, logger *zap.Logger) *Node {
	return &Node{
		store:      store,
		logger:     logger,
		positions:  make(chan field.Vec3, inputBuffer),
		velocities: make(chan field.Vec3, inputBuffer),
		forcesIn:   make(chan field.Vec3, inputBuffer),
		out:        make(chan field.Vec3, outputBuffer),
	}
}

// AddObserver registers an observer. Not safe once Run has started.
func (n *Node) AddObserver(o Observer) { n.observers = append(n.observers, o) }

func (n *Node) Positions() chan<- field.Vec3   { return n.positions }
func (n *Node) Velocities() chan<- field.Vec3  { return n.velocities }
func (n *Node) ForceInputs() chan<- field.Vec3 { return n.forcesIn }

// Output delivers one applied force per published tick.
func (n *Node) Output() <-chan field.Vec3 { return n.out }

// Run drives the sampling loop until the context is cancelled. A
// sample-interval update replaces the ticker between ticks, so the
// interval change never loses or duplicates a tick.
func (n *Node) Run(ctx context.Context) error {
	interval := n.store.Snapshot().SampleInterval
	ticker := time.NewTicker(interval)
	defer func() { ticker.Stop() }()

	n.logger.Info("sampling started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("sampling stopped", zap.Uint64("dropped_outputs", n.dropped))
			return ctx.Err()
		case p := <-n.positions:
			n.state.Position = p
		case v := <-n.velocities:
			n.state.Velocity = v
		case f := <-n.forcesIn:
			n.pending = append(n.pending, f)
		case <-n.store.Changed():
			if next := n.store.Snapshot().SampleInterval; next != interval {
				ticker.Stop()
				ticker = time.NewTicker(next)
				interval = next
				n.logger.Info("sample interval updated", zap.Duration("interval", next))
			}
		case now := <-ticker.C:
			n.Tick(now)
		}
	}
}

// Tick runs one sampling cycle against the current snapshots and
// returns the aggregate force along with whether it was published.
// The projection operator is rebuilt from the snapshot every tick; no
// cached state survives a parameter change.
func (n *Node) Tick(now time.Time) (field.Vec3, bool) {
	snap := n.store.Snapshot()

	proj := field.Projection(snap.Attractor.Basis, snap.Attractor.Weights)
	guidance := field.Guidance(n.state, snap.Attractor, proj)

	n.pending = append(n.pending, guidance)
	force := field.Aggregate(n.pending, snap.Transform)
	n.pending = n.pending[:0]

	published := false
	switch {
	case !force.IsFinite():
		// A validated snapshot cannot produce this; treat it as a
		// fatal configuration error and never apply the force.
		n.logger.Error("non-finite force rejected",
			zap.Float64s("force", force[:]),
			zap.Float64s("position", n.state.Position[:]))
	case snap.PublishForce:
		select {
		case n.out <- force:
			published = true
		default:
			// Consumer is not keeping up; drop rather than
			// stall the haptic loop.
			n.dropped++
		}
	}

	for _, o := range n.observers {
		o.OnTick(now, n.state, force, published)
	}
	return force, published
}
