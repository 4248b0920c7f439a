package storage

import (
	"sync"
	"time"

	"github.com/san-kum/attractor/internal/field"
)

// Recorder buffers sampling ticks in memory as a node observer. At the
// default 2 kHz sampling rate a bounded ring keeps memory flat; once
// full, the oldest rows are overwritten in place, so a tick costs O(1)
// no matter how long the recording runs.
type Recorder struct {
	mu    sync.Mutex
	rows  []Row
	head  int // next slot to overwrite once the ring is full
	limit int
	start time.Time
}

func NewRecorder(limit int) *Recorder {
	if limit < 1 {
		limit = 1
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) OnTick(now time.Time, state field.KinematicState, force field.Vec3, published bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.start.IsZero() {
		r.start = now
	}
	row := Row{
		T:         now.Sub(r.start).Seconds(),
		Position:  state.Position,
		Velocity:  state.Velocity,
		Force:     force,
		Published: published,
	}
	if len(r.rows) < r.limit {
		r.rows = append(r.rows, row)
		return
	}
	r.rows[r.head] = row
	r.head = (r.head + 1) % r.limit
}

// Rows returns the buffered trace in tick order, oldest first.
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Row, len(r.rows))
	n := copy(out, r.rows[r.head:])
	copy(out[n:], r.rows[:r.head])
	return out
}
