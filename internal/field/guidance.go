package field

// KinematicState is the most recently sampled effector state. The core
// only reads it; before any measurement arrives both vectors are zero.
type KinematicState struct {
	Position Vec3
	Velocity Vec3
}

// AttractorConfig is one immutable snapshot of the attractor
// parameters. Stiffness is in N/m, damping in N/(m/s).
type AttractorConfig struct {
	Basis     Mat3
	Weights   Vec3
	Offset    Vec3
	Stiffness float64
	Damping   float64
}

// Guidance computes the spring-damper force pulling the effector toward
// its projection on the constraint subspace.
//
// The raw damper term -C·v acts on the full velocity, including
// components tangent to the free subspace; those viscous components are
// artifacts of naive damping, so the force is projected onto the
// normal-offset direction d before being returned. When the effector
// sits exactly on the subspace, d is zero, its span projector is the
// zero matrix, and the guidance force vanishes.
func Guidance(state KinematicState, cfg AttractorConfig, proj Mat3) Vec3 {
	// Shift so the subspace passes through the origin, project, and
	// shift back: the closest point under the weighted metric.
	projected := proj.MulVec(state.Position.Sub(cfg.Offset)).Add(cfg.Offset)

	d := projected.Sub(state.Position)
	raw := d.Scale(cfg.Stiffness).Sub(state.Velocity.Scale(cfg.Damping))

	return SpanProjector(d).MulVec(raw)
}
