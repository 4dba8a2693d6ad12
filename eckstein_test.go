package orbital

import (
	"testing"
	"time"

	"github.com/gonum/floats"
)

// sunSyncOrbit returns a nearly circular sun-synchronous-like orbit, well
// inside the Eckstein-Hechler validity domain.
func sunSyncOrbit(env *Environment, date time.Time) *StateVector {
	cirf, _ := env.Frames.Get("CIRF")
	sv, _ := NewStateVector(env, date, []float64{7200e3, 0.001, Deg2rad(98.7), Deg2rad(120), Deg2rad(75), Deg2rad(25)}, Keplerian, cirf)
	return sv
}

func TestEcksteinHechlerDomain(t *testing.T) {
	env := testEnv()
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	cirf, _ := env.Frames.Get("CIRF")

	cases := []struct {
		name string
		kepl []float64
	}{
		{"eccentric", []float64{8000e3, 0.2, Deg2rad(50), 0, 0, 0}},
		{"equatorial", []float64{7200e3, 0.001, 1e-7, 0, 0, 0}},
		{"critical", []float64{7200e3, 0.001, Deg2rad(63.43), 0, 0, 0}},
	}
	for _, tc := range cases {
		sv, err := NewStateVector(env, date, tc.kepl, Keplerian, cirf)
		if err != nil {
			t.Fatal(err)
		}
		prop := NewEcksteinHechler(env)
		if err = prop.SetOrbit(sv); err == nil {
			t.Fatalf("%s orbit must be rejected", tc.name)
		} else if _, ok := err.(DomainError); !ok {
			t.Fatalf("%s: wrong error type %T", tc.name, err)
		}
	}

	prop := NewEcksteinHechler(env)
	if _, err := prop.Propagate(date); err == nil {
		t.Fatal("unbound propagation must fail")
	}
	if err := prop.SetOrbit(sunSyncOrbit(env, date)); err != nil {
		t.Fatal(err)
	}
}

func TestEcksteinHechlerPropagation(t *testing.T) {
	env := testEnv()
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	orbit := sunSyncOrbit(env, date)

	prop := NewEcksteinHechler(env)
	prop.Osculating = false
	if err := prop.SetOrbit(orbit); err != nil {
		t.Fatal(err)
	}

	at, err := prop.Propagate(date)
	if err != nil {
		t.Fatal(err)
	}
	if at.Form() != KeplerianMeanCircular || at.Frame().Name != "CIRF" {
		t.Fatal("output must be mean circular elements in CIRF")
	}
	a0 := at.Coord()[0]

	day, err := prop.Propagate(date.Add(24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	// The mean semi-major axis is a constant of the model.
	if !floats.EqualWithinAbs(day.Coord()[0], a0, 1e-6) {
		t.Fatal("mean semi-major axis must not drift")
	}
	// A retrograde orbit sees its node precess eastward.
	dΩ := day.Coord()[4] - at.Coord()[4]
	if dΩ <= 0 || dΩ > Deg2rad(2) {
		t.Fatalf("implausible daily node drift %f rad", dΩ)
	}

	// Osculating elements oscillate around the mean ones.
	prop.Osculating = true
	osc, err := prop.Propagate(date.Add(45 * time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if diff := osc.Coord()[0] - a0; diff > 50e3 || diff < -50e3 {
		t.Fatalf("implausible osculating correction %f m", diff)
	}
}

func TestFitEcksteinHechler(t *testing.T) {
	env := testEnv()
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	target := sunSyncOrbit(env, date)

	prop, err := FitEcksteinHechler(env, target)
	if err != nil {
		t.Fatal(err)
	}
	res, err := prop.Propagate(date)
	if err != nil {
		t.Fatal(err)
	}
	cart, err := res.Cartesian()
	if err != nil {
		t.Fatal(err)
	}
	targetCart, err := target.Cartesian()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(cart[i], targetCart[i], 1e-2) {
			t.Fatalf("fit residual too large: %v", sub6(cart, targetCart))
		}
	}
}
