package field

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PseudoInverse returns the Moore-Penrose pseudo-inverse of m, computed
// through a singular value decomposition. It is total over finite real
// input: rank-deficient matrices, including the zero matrix, yield the
// generalized inverse rather than an error.
func PseudoInverse(m Mat3) Mat3 {
	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(3, 3, m.Flat()), mat.SVDThin) {
		// Factorization only fails to converge on non-finite
		// input; map it to zero and let boundary validation
		// reject the configuration.
		return Mat3{}
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)

	// Singular values below tol count as exact zeros. sv is sorted
	// in descending order, so sv[0] is the spectral norm.
	eps := math.Nextafter(1, 2) - 1
	tol := 3 * eps * sv[0]

	// pinv = V · Σ⁺ · Uᵗ
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				if sv[k] <= tol {
					continue
				}
				sum += v.At(i, k) * u.At(j, k) / sv[k]
			}
			out[i][j] = sum
		}
	}
	return out
}

// SpanProjector returns d·pinv(d) for the column vector d: the rank-1
// orthogonal projector onto the span of d. The pseudo-inverse of the
// zero vector is the zero row, so a zero d yields the zero matrix.
func SpanProjector(d Vec3) Mat3 {
	n := d.Dot(d)
	if n == 0 {
		return Mat3{}
	}
	return Outer(d, d).Scale(1 / n)
}
