package field

import "math"

// Projection builds the weighted oblique projection operator onto the
// column space of basis:
//
//	P = B · W · pinv(W·B) · (W·Wᵗ)    with W = diag(sqrt(weights))
//
// With unit weights and the identity basis, P is the identity and the
// point moves freely. A rank-deficient basis selects a plane, line, or
// point; the pseudo-inverse handles the degenerate cases, down to
// all-zero weights producing the zero operator.
func Projection(basis Mat3, weights Vec3) Mat3 {
	w := Diag(Vec3{
		math.Sqrt(weights[0]),
		math.Sqrt(weights[1]),
		math.Sqrt(weights[2]),
	})
	// W·Wᵗ = W·W for a diagonal W.
	return basis.Mul(w).Mul(PseudoInverse(w.Mul(basis))).Mul(w.Mul(w))
}
