package field

import (
	"math"
	"testing"
)

func TestMatFromSlice(t *testing.T) {
	m, err := MatFromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	if err != nil {
		t.Fatal(err)
	}
	if m[1][2] != 6 || m[2][0] != 7 {
		t.Errorf("row-major layout broken: %v", m)
	}

	if _, err := MatFromSlice([]float64{1, 2}); err == nil {
		t.Error("expected error for short slice")
	}
}

func TestMatMulVec(t *testing.T) {
	m := Mat3{{1, 2, 0}, {0, 1, 0}, {0, 0, 3}}
	vecClose(t, m.MulVec(Vec3{1, 1, 1}), Vec3{3, 1, 3}, "matrix-vector product")
}

func TestIsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{1, math.NaN(), 3}).IsFinite() {
		t.Error("NaN not detected")
	}
	m := Identity()
	m[2][2] = math.Inf(1)
	if m.IsFinite() {
		t.Error("Inf not detected")
	}
}
