package orbital

import (
	"testing"
	"time"

	"github.com/gonum/floats"
)

func TestNewManeuver(t *testing.T) {
	if _, err := NewManeuver(time.Now(), []float64{1, 2}, ""); err == nil {
		t.Fatal("short vector must fail")
	} else if verr, ok := err.(VectorError); !ok || verr.Want != 3 {
		t.Fatalf("wrong error %v", err)
	}
	if _, err := NewManeuver(time.Now(), []float64{1, 2, 3}, "RIC"); err == nil {
		t.Fatal("unknown local frame must fail")
	}
	m, err := NewManeuver(time.Now(), []float64{1, 2, 3}, "QSW")
	if err != nil {
		t.Fatal(err)
	}
	// The Δv slice is copied.
	m.Δv[0] = 42
	m2, _ := NewManeuver(m.Date, []float64{1, 2, 3}, "QSW")
	if m2.Δv[0] != 1 {
		t.Fatal("input slice aliasing")
	}
}

func TestFrameΔv(t *testing.T) {
	// Circular equatorial state moving along +y: TNW x is +y, QSW x is +x.
	cart := []float64{7000e3, 0, 0, 0, 7.5e3, 0}

	qsw, _ := NewManeuver(time.Now(), []float64{1, 0, 0}, "QSW")
	if !floats.EqualApprox(qsw.frameΔv(cart), []float64{1, 0, 0}, 1e-9) {
		t.Fatalf("QSW radial fail: %v", qsw.frameΔv(cart))
	}
	tnw, _ := NewManeuver(time.Now(), []float64{1, 0, 0}, "TNW")
	if !floats.EqualApprox(tnw.frameΔv(cart), []float64{0, 1, 0}, 1e-9) {
		t.Fatalf("TNW tangential fail: %v", tnw.frameΔv(cart))
	}
	inertial, _ := NewManeuver(time.Now(), []float64{1, 2, 3}, "")
	if !floats.EqualApprox(inertial.frameΔv(cart), []float64{1, 2, 3}, 1e-12) {
		t.Fatal("inertial Δv must pass through")
	}
}

func TestHohmann(t *testing.T) {
	// From Vallado, example 6-1: LEO to GEO.
	rI := 191.34411e3 + 6378.137e3
	rF := 35781.34857e3 + 6378.137e3

	Δv1, Δv2, tof := HohmannΔv(rI, rF, Earth)
	if !floats.EqualWithinAbs(Δv1, 2457.038, 5) {
		t.Fatalf("Δv1 = %f", Δv1)
	}
	if !floats.EqualWithinAbs(Δv2, 1478.187, 5) {
		t.Fatalf("Δv2 = %f", Δv2)
	}
	if d := tof - 18924*time.Second; d > 20*time.Second || d < -20*time.Second {
		t.Fatalf("tof = %s", tof)
	}

	// The transfer speeds bracket the circular speeds.
	vDep, vArr, _ := Hohmann(rI, rF, Earth)
	if vDep <= Δv1 || vArr <= 0 || vDep <= vArr {
		t.Fatal("implausible transfer velocities")
	}
}
