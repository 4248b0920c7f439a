package field

import (
	"math"
	"testing"
)

const tol = 1e-9

func matClose(t *testing.T, got, want Mat3, context string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(got[i][j]-want[i][j]) > tol {
				t.Fatalf("%s: entry (%d,%d) = %g, want %g", context, i, j, got[i][j], want[i][j])
			}
		}
	}
}

func vecClose(t *testing.T, got, want Vec3, context string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("%s: component %d = %g, want %g", context, i, got[i], want[i])
		}
	}
}

func TestPseudoInverse_Identity(t *testing.T) {
	matClose(t, PseudoInverse(Identity()), Identity(), "pinv(I)")
}

func TestPseudoInverse_Diagonal(t *testing.T) {
	got := PseudoInverse(Diag(Vec3{2, 4, 0}))
	matClose(t, got, Diag(Vec3{0.5, 0.25, 0}), "pinv(diag(2,4,0))")
}

func TestPseudoInverse_Zero(t *testing.T) {
	matClose(t, PseudoInverse(Mat3{}), Mat3{}, "pinv(0)")
}

func TestPseudoInverse_Invertible(t *testing.T) {
	a := Mat3{{1, 2, 3}, {4, 5, 6}, {7, 8, 10}}
	matClose(t, a.Mul(PseudoInverse(a)), Identity(), "A·pinv(A)")
}

func TestPseudoInverse_RankDeficient(t *testing.T) {
	// Rank 2: third row is a linear combination of the first two.
	a := Mat3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	p := PseudoInverse(a)

	// Penrose condition A·A⁺·A = A holds for any rank.
	matClose(t, a.Mul(p).Mul(a), a, "A·pinv(A)·A")
}

func TestSpanProjector_Zero(t *testing.T) {
	matClose(t, SpanProjector(Vec3{}), Mat3{}, "projector of zero vector")
}

func TestSpanProjector_KeepsSpanDropsOrthogonal(t *testing.T) {
	d := Vec3{3, 0, 4}
	p := SpanProjector(d)

	vecClose(t, p.MulVec(d), d, "projector fixes its own direction")
	vecClose(t, p.MulVec(Vec3{0, 1, 0}), Vec3{}, "orthogonal y dropped")
	vecClose(t, p.MulVec(Vec3{4, 0, -3}), Vec3{}, "orthogonal in-plane dropped")
}
