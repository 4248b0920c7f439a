// Package metrics accumulates per-tick statistics of the force output.
package metrics

import (
	"math"
	"time"

	"github.com/san-kum/attractor/internal/field"
)

// Metric observes sampling ticks and reduces them to one value.
type Metric interface {
	Name() string
	Observe(state field.KinematicState, force field.Vec3, published bool)
	Value() float64
	Reset()
}

// PeakForce tracks the largest force magnitude seen.
type PeakForce struct {
	peak float64
}

func NewPeakForce() *PeakForce { return &PeakForce{} }

func (p *PeakForce) Name() string { return "peak_force" }

func (p *PeakForce) Observe(_ field.KinematicState, force field.Vec3, _ bool) {
	p.peak = math.Max(p.peak, force.Norm())
}

func (p *PeakForce) Value() float64 { return p.peak }
func (p *PeakForce) Reset()         { p.peak = 0 }

// RMSForce is the root mean square of the force magnitude, a rough
// measure of how hard the attractor worked over a run.
type RMSForce struct {
	sumSquares float64
	samples    int
}

func NewRMSForce() *RMSForce { return &RMSForce{} }

func (r *RMSForce) Name() string { return "rms_force" }

func (r *RMSForce) Observe(_ field.KinematicState, force field.Vec3, _ bool) {
	r.sumSquares += force.Dot(force)
	r.samples++
}

func (r *RMSForce) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sumSquares / float64(r.samples))
}

func (r *RMSForce) Reset() {
	r.sumSquares = 0
	r.samples = 0
}

// PublishRate is the fraction of ticks whose force was published.
type PublishRate struct {
	ticks     int
	published int
}

func NewPublishRate() *PublishRate { return &PublishRate{} }

func (p *PublishRate) Name() string { return "publish_rate" }

func (p *PublishRate) Observe(_ field.KinematicState, _ field.Vec3, published bool) {
	p.ticks++
	if published {
		p.published++
	}
}

func (p *PublishRate) Value() float64 {
	if p.ticks == 0 {
		return 0
	}
	return float64(p.published) / float64(p.ticks)
}

func (p *PublishRate) Reset() {
	p.ticks = 0
	p.published = 0
}

// Collector fans ticks out to a set of metrics as a node observer.
type Collector struct {
	metrics []Metric
}

func NewCollector(ms ...Metric) *Collector {
	if len(ms) == 0 {
		ms = []Metric{NewPeakForce(), NewRMSForce(), NewPublishRate()}
	}
	return &Collector{metrics: ms}
}

func (c *Collector) OnTick(_ time.Time, state field.KinematicState, force field.Vec3, published bool) {
	for _, m := range c.metrics {
		m.Observe(state, force, published)
	}
}

// Values returns the current value of every metric by name.
func (c *Collector) Values() map[string]float64 {
	out := make(map[string]float64, len(c.metrics))
	for _, m := range c.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (c *Collector) Reset() {
	for _, m := range c.metrics {
		m.Reset()
	}
}
