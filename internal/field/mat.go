package field

import "fmt"

// Mat3 is a real 3x3 matrix, row-major.
type Mat3 [3][3]float64

// Identity returns the 3x3 identity matrix.
func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Diag returns the diagonal matrix with d on the main diagonal.
func Diag(d Vec3) Mat3 {
	return Mat3{{d[0], 0, 0}, {0, d[1], 0}, {0, 0, d[2]}}
}

// Outer returns the outer product a·bᵗ.
func Outer(a, b Vec3) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = a[i] * b[j]
		}
	}
	return m
}

// MatFromSlice builds a Mat3 from a row-major slice of 9 values.
func MatFromSlice(s []float64) (Mat3, error) {
	if len(s) != 9 {
		return Mat3{}, fmt.Errorf("matrix needs 9 values, got %d", len(s))
	}
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = s[i*3+j]
		}
	}
	return m, nil
}

// Flat returns the matrix as a row-major slice of 9 values.
func (m Mat3) Flat() []float64 {
	out := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		out = append(out, m[i][0], m[i][1], m[i][2])
	}
	return out
}

func (m Mat3) Transpose() Mat3 {
	var t Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

func (m Mat3) Scale(c float64) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][j] * c
		}
	}
	return out
}

// Mul returns the matrix product m·o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[i][k] * o[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// MulVec returns the matrix-vector product m·v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

// IsFinite reports whether every entry is neither NaN nor Inf.
func (m Mat3) IsFinite() bool {
	for i := 0; i < 3; i++ {
		if !Vec3(m[i]).IsFinite() {
			return false
		}
	}
	return true
}
