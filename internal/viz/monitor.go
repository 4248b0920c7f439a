package viz

import (
	"sync"
	"time"

	"github.com/san-kum/attractor/internal/field"
)

// Monitor collects the sampling loop's output for rendering. It is the
// sole synchronization point between the 2 kHz tick callback and the
// frame-rate UI; OnTick stays cheap so the haptic loop never waits on
// a redraw.
type Monitor struct {
	mu        sync.Mutex
	state     field.KinematicState
	force     field.Vec3
	history   []float64
	capacity  int
	ticks     uint64
	published uint64
}

func NewMonitor(capacity int) *Monitor {
	return &Monitor{capacity: capacity}
}

func (m *Monitor) OnTick(_ time.Time, state field.KinematicState, force field.Vec3, published bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = state
	m.force = force
	m.ticks++
	if published {
		m.published++
	}
	if len(m.history) >= m.capacity {
		copy(m.history, m.history[1:])
		m.history = m.history[:len(m.history)-1]
	}
	m.history = append(m.history, force.Norm())
}

type frame struct {
	state     field.KinematicState
	force     field.Vec3
	history   []float64
	ticks     uint64
	published uint64
}

func (m *Monitor) snapshot() frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := make([]float64, len(m.history))
	copy(history, m.history)
	return frame{
		state:     m.state,
		force:     m.force,
		history:   history,
		ticks:     m.ticks,
		published: m.published,
	}
}
