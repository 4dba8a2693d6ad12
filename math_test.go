package orbital

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestCross(t *testing.T) {
	i := []float64{1, 0, 0}
	j := []float64{0, 1, 0}
	k := []float64{0, 0, 1}
	if !floats.EqualApprox(cross(i, j), k, 1e-12) {
		t.Fatal("i x j != k")
	}
	if !floats.EqualApprox(cross(j, k), i, 1e-12) {
		t.Fatal("j x k != i")
	}
	if !floats.EqualApprox(cross([]float64{2, 3, 4}, []float64{5, 6, 7}), []float64{-3, 6, -3}, 1e-12) {
		t.Fatal("cross fail")
	}
	// From Vallado
	if !floats.EqualApprox(cross([]float64{6524.834, 6862.875, 6448.296}, []float64{4.901327, 5.533756, -1.976341}), []float64{-4.924667792015100e4, 4.450050424118601e4, 0.246964476137900e4}, 1e-10) {
		t.Fatal("cross fail")
	}
}

func TestNormUnitDot(t *testing.T) {
	nilVec := []float64{0, 0, 0}
	if norm(nilVec) != 0 {
		t.Fatal("norm of a nil vector was not nil")
	}
	if !floats.Equal(unit(nilVec), nilVec) {
		t.Fatal("unit of a nil vector was not nil")
	}
	v := []float64{5, 6, 7}
	if norm(v) != math.Sqrt(110) {
		t.Fatal("norm of [5, 6, 7] is invalid")
	}
	if !floats.EqualWithinAbs(norm(unit(v)), 1, 1e-12) {
		t.Fatal("unit vector norm != 1")
	}
	if dot([]float64{1, 2, 3}, []float64{4, 5, 6}) != 32 {
		t.Fatal("dot product fail")
	}
}

func TestSign(t *testing.T) {
	if sign(10) != 1 {
		t.Fatal("sign of 10 != 1")
	}
	if sign(-10) != -1 {
		t.Fatal("sign of -10 != -1")
	}
	if sign(0) != 1 {
		t.Fatal("sign of 0 != 1")
	}
}

func TestSixHelpers(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{6, 5, 4, 3, 2, 1}
	if !floats.Equal(add6(a, b), []float64{7, 7, 7, 7, 7, 7}) {
		t.Fatal("add6 fail")
	}
	if !floats.Equal(sub6(a, b), []float64{-5, -3, -1, 1, 3, 5}) {
		t.Fatal("sub6 fail")
	}
	if !floats.Equal(scale6(2, a), []float64{2, 4, 6, 8, 10, 12}) {
		t.Fatal("scale6 fail")
	}
}

func TestAngles(t *testing.T) {
	for deg := -360.0; deg <= 720; deg += 7.5 {
		if !floats.EqualWithinAbs(math.Mod(deg+720, 360), Rad2deg(Deg2rad(deg)), 1e-9) {
			t.Fatalf("incorrect conversion for %3.2f", deg)
		}
	}
	if !floats.EqualWithinAbs(Deg2rad(180), math.Pi, 1e-12) {
		t.Fatal("180 deg != pi")
	}
	if !floats.EqualWithinAbs(mod2pi(-math.Pi/2), 3*math.Pi/2, 1e-12) {
		t.Fatal("mod2pi of -pi/2 fail")
	}
	if !floats.EqualWithinAbs(mod2pi(5*math.Pi), math.Pi, 1e-12) {
		t.Fatal("mod2pi of 5pi fail")
	}
}
