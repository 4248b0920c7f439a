package node

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/san-kum/attractor/internal/config"
	"github.com/san-kum/attractor/internal/field"
	"github.com/san-kum/attractor/internal/params"
)

func lineZConfig() *config.Config {
	return config.GetPreset("line-z")
}

func newTestNode(t *testing.T, cfg *config.Config) (*Node, *params.Store) {
	t.Helper()
	store, err := params.FromConfig(cfg)
	require.NoError(t, err)
	return New(store, zap.NewNop()), store
}

type recordingObserver struct {
	ticks     int
	last      field.Vec3
	published bool
}

func (r *recordingObserver) OnTick(_ time.Time, _ field.KinematicState, force field.Vec3, published bool) {
	r.ticks++
	r.last = force
	r.published = published
}

func TestTick_ZeroDefaultsProduceZeroForce(t *testing.T) {
	// Before any kinematic data arrives both vectors default to
	// zero, and the z-axis constraint passes through the origin.
	n, _ := newTestNode(t, lineZConfig())

	force, published := n.Tick(time.Now())
	assert.Equal(t, field.Vec3{}, force)
	assert.True(t, published)
}

func TestTick_GuidanceForce(t *testing.T) {
	n, _ := newTestNode(t, lineZConfig())
	n.state = field.KinematicState{Position: field.Vec3{1, 0, 0}}

	force, published := n.Tick(time.Now())
	assert.True(t, published)
	assert.InDelta(t, -2000, force[0], 1e-9)
	assert.InDelta(t, 0, force[1], 1e-9)
	assert.InDelta(t, 0, force[2], 1e-9)
}

func TestTick_ExternalContributionsDrainedOnce(t *testing.T) {
	n, _ := newTestNode(t, lineZConfig())
	n.pending = append(n.pending, field.Vec3{1, 2, 3}, field.Vec3{-1, 0, 1})

	force, _ := n.Tick(time.Now())
	assert.InDelta(t, 0, force[0], 1e-9)
	assert.InDelta(t, 2, force[1], 1e-9)
	assert.InDelta(t, 4, force[2], 1e-9)

	// Contributions apply to exactly one tick.
	force, _ = n.Tick(time.Now())
	assert.Equal(t, field.Vec3{}, force)
}

func TestTick_TransformApplied(t *testing.T) {
	cfg := lineZConfig()
	cfg.ForceTransform = []float64{
		0, 1, 0,
		1, 0, 0,
		0, 0, 1,
	}
	n, _ := newTestNode(t, cfg)
	n.state = field.KinematicState{Position: field.Vec3{1, 0, 0}}

	force, _ := n.Tick(time.Now())
	assert.InDelta(t, 0, force[0], 1e-9)
	assert.InDelta(t, -2000, force[1], 1e-9)
}

func TestTick_PublishDisabledStillComputes(t *testing.T) {
	cfg := lineZConfig()
	cfg.PublishForce = false
	n, _ := newTestNode(t, cfg)
	n.state = field.KinematicState{Position: field.Vec3{1, 0, 0}}

	obs := &recordingObserver{}
	n.AddObserver(obs)

	force, published := n.Tick(time.Now())
	assert.False(t, published)
	assert.InDelta(t, -2000, force[0], 1e-9)

	// Observers still see the computed force.
	require.Equal(t, 1, obs.ticks)
	assert.False(t, obs.published)
	assert.InDelta(t, -2000, obs.last[0], 1e-9)

	select {
	case <-n.Output():
		t.Fatal("disabled publication must not emit output")
	default:
	}
}

func TestTick_NonFiniteForceRejected(t *testing.T) {
	n, _ := newTestNode(t, lineZConfig())

	// A validated store cannot hold NaN, but kinematic inputs are
	// raw measurements and may carry one through.
	n.state = field.KinematicState{Position: field.Vec3{math.NaN(), 0, 0}}

	_, published := n.Tick(time.Now())
	assert.False(t, published)
	select {
	case <-n.Output():
		t.Fatal("non-finite force must not be published")
	default:
	}
}

func TestRun_LastValueSemantics(t *testing.T) {
	cfg := lineZConfig()
	cfg.SampleInterval = config.Duration(time.Millisecond)
	n, _ := newTestNode(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	n.Positions() <- field.Vec3{0.5, 0, 0}
	n.Positions() <- field.Vec3{1, 0, 0} // latest wins

	require.Eventually(t, func() bool {
		select {
		case f := <-n.Output():
			return math.Abs(f[0]-(-2000)) < 1e-9
		default:
			return false
		}
	}, time.Second, time.Millisecond, "expected force from the latest position")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRun_IntervalChangeKeepsTicking(t *testing.T) {
	cfg := lineZConfig()
	cfg.SampleInterval = config.Duration(time.Millisecond)
	n, store := newTestNode(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = n.Run(ctx) }()

	// Wait for the first tick, then swap the interval.
	require.Eventually(t, func() bool {
		select {
		case <-n.Output():
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	require.NoError(t, store.Update(func(snap *params.Snapshot) {
		snap.SampleInterval = 2 * time.Millisecond
	}))

	// Drain anything already buffered, then require fresh ticks
	// under the new interval.
	for {
		select {
		case <-n.Output():
			continue
		default:
		}
		break
	}
	require.Eventually(t, func() bool {
		select {
		case <-n.Output():
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond, "loop must keep ticking after interval change")
}
