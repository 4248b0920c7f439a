// Package field computes the attractor force field: a spring-damper
// system that pulls a controlled point toward its projection on a
// constraint point, line, or plane embedded in 3D space.
//
// The pipeline is three pure functions composed per sampling tick:
//
//   - [Projection]: weighted oblique projection operator from a 3x3
//     basis and a per-axis weight triple
//   - [Guidance]: spring-damper guidance force with tangential
//     correction of the damping term
//   - [Aggregate]: sum of force contributions plus a final linear
//     transform into the actuator frame
//
// All operations are total over finite real input. Degenerate
// configurations (rank-deficient basis, zero weights, a point already
// on the constraint subspace) resolve through the Moore-Penrose
// pseudo-inverse rather than raising errors.
package field
