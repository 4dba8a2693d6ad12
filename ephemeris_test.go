package orbital

import (
	"math/rand"
	"testing"
	"time"

	"github.com/gonum/floats"
)

// quadraticStates samples x = t^2, y = 3t, z = 42 every minute.
func quadraticStates(env *Environment, start time.Time, count int) []*StateVector {
	eme2000, _ := env.Frames.Get("EME2000")
	states := make([]*StateVector, count)
	for i := range states {
		ti := float64(i * 60)
		sv, _ := NewStateVector(env, start.Add(time.Duration(i)*time.Minute),
			[]float64{ti * ti, 3 * ti, 42, 2 * ti, 3, 0}, Cartesian, eme2000)
		states[i] = sv
	}
	return states
}

func TestNewEphem(t *testing.T) {
	env := testEnv()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	states := quadraticStates(env, start, 10)

	if _, err := NewEphem(env, states[:1], InterpLinear); err == nil {
		t.Fatal("a single state is not an ephemeris")
	}

	// States are sorted at construction.
	shuffled := append([]*StateVector(nil), states...)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	eph, err := NewEphem(env, shuffled, InterpLinear)
	if err != nil {
		t.Fatal(err)
	}
	if !eph.Start().Equal(start) || !eph.Stop().Equal(start.Add(9*time.Minute)) {
		t.Fatal("wrong span after sorting")
	}
}

func TestInterpolate(t *testing.T) {
	env := testEnv()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	states := quadraticStates(env, start, 10)

	for _, method := range []string{InterpLinear, InterpLagrange} {
		eph, err := NewEphem(env, states, method)
		if err != nil {
			t.Fatal(err)
		}
		// Exact at the nodes.
		sv, err := eph.Interpolate(start.Add(3 * time.Minute))
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualWithinAbs(sv.Coord()[0], 180*180, 1e-6) {
			t.Fatalf("%s not exact at a node: %f", method, sv.Coord()[0])
		}
		// Out of range on both sides.
		if _, err = eph.Interpolate(start.Add(-time.Second)); err == nil {
			t.Fatal("date before the span must fail")
		} else if _, ok := err.(OutOfRangeError); !ok {
			t.Fatalf("wrong error type %T", err)
		}
		if _, err = eph.Interpolate(eph.Stop().Add(time.Second)); err == nil {
			t.Fatal("date after the span must fail")
		}
	}

	// Halfway between nodes the quadratic is exact under Lagrange, off by
	// the second difference under linear interpolation.
	mid := start.Add(210 * time.Second) // t = 3.5 min
	exact := 210.0 * 210.0

	linear, _ := NewEphem(env, states, InterpLinear)
	sv, err := linear.Interpolate(mid)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(sv.Coord()[0], exact+900, 1e-6) {
		t.Fatalf("linear midpoint: %f", sv.Coord()[0])
	}

	lagrange, _ := NewEphem(env, states, InterpLagrange)
	sv, err = lagrange.Interpolate(mid)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(sv.Coord()[0], exact, 1e-5) {
		t.Fatalf("lagrange midpoint: %f", sv.Coord()[0])
	}
	// Constant and linear components pass through untouched.
	if !floats.EqualWithinAbs(sv.Coord()[2], 42, 1e-6) || !floats.EqualWithinAbs(sv.Coord()[1], 3*210, 1e-6) {
		t.Fatalf("lagrange drifted on polynomial data: %v", sv.Coord())
	}
}

func TestEphemHomogeneous(t *testing.T) {
	env := testEnv()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	states := quadraticStates(env, start, 5)
	moved, err := states[2].ToForm(Spherical)
	if err != nil {
		t.Fatal(err)
	}
	states[2] = moved
	eph, err := NewEphem(env, states, InterpLinear)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = eph.Interpolate(start.Add(time.Minute)); err == nil {
		t.Fatal("mixed forms must fail")
	}
	// SetForm restores the invariant.
	if err = eph.SetForm(Cartesian); err != nil {
		t.Fatal(err)
	}
	if _, err = eph.Interpolate(start.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
}

func TestEphemIterAndSubset(t *testing.T) {
	env := testEnv()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	states := quadraticStates(env, start, 10)
	eph, err := NewEphem(env, states, InterpLagrange)
	if err != nil {
		t.Fatal(err)
	}

	// Defaults cover the whole span at the environment step.
	stream, err := eph.Iter(PropagationOptions{Inclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	all, err := stream.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 10 {
		t.Fatalf("expected 10 states, got %d", len(all))
	}

	// Resampling produces a denser ephemeris.
	sub, err := eph.Ephem(PropagationOptions{Step: 30 * time.Second, Inclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(sub.States()) != 19 {
		t.Fatalf("expected 19 states, got %d", len(sub.States()))
	}
	if !sub.Start().Equal(eph.Start()) || !sub.Stop().Equal(eph.Stop()) {
		t.Fatal("resampling must keep the span")
	}
}

func TestInterpolateSGP4(t *testing.T) {
	env := testEnv()
	tle, err := ParseTLE(issLine1, issLine2)
	if err != nil {
		t.Fatal(err)
	}
	prop, err := NewSGP4(env, tle)
	if err != nil {
		t.Fatal(err)
	}

	// One hour of ISS states every three minutes.
	stream, err := prop.Iter(PropagationOptions{Start: tle.Epoch, Until: time.Hour, Step: 3 * time.Minute, Inclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	states, err := stream.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 21 {
		t.Fatalf("expected 21 states, got %d", len(states))
	}
	linear, err := NewEphem(env, states, InterpLinear)
	if err != nil {
		t.Fatal(err)
	}
	lagrange, err := NewEphem(env, states, InterpLagrange)
	if err != nil {
		t.Fatal(err)
	}

	// At the 30 minute mark, a sample, both methods pass through it.
	mark := tle.Epoch.Add(30 * time.Minute)
	ref, err := prop.Propagate(mark)
	if err != nil {
		t.Fatal(err)
	}
	for _, eph := range []*Ephem{linear, lagrange} {
		sv, err := eph.Interpolate(mark)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(sv.Coord(), ref.Coord(), 1e-6) {
			t.Fatalf("%s does not pass through the sample at %s", eph.Method, mark)
		}
	}

	// Halfway between two samples the chord cuts tens of kilometers inside
	// the arc, while the Lagrange polynomial stays on it.
	mid := tle.Epoch.Add(31*time.Minute + 30*time.Second)
	truth, err := prop.Propagate(mid)
	if err != nil {
		t.Fatal(err)
	}
	linSv, err := linear.Interpolate(mid)
	if err != nil {
		t.Fatal(err)
	}
	lagSv, err := lagrange.Interpolate(mid)
	if err != nil {
		t.Fatal(err)
	}
	linErr := norm(sub6(linSv.Coord(), truth.Coord())[:3])
	lagErr := norm(sub6(lagSv.Coord(), truth.Coord())[:3])
	if linErr < 5e3 || linErr > 80e3 {
		t.Fatalf("linear interpolation off the arc by %f m, expected tens of kilometers", linErr)
	}
	if lagErr > 100 {
		t.Fatalf("Lagrange interpolation off the arc by %f m", lagErr)
	}
	if d := norm(sub6(linSv.Coord(), lagSv.Coord())[:3]); d < 5e3 {
		t.Fatalf("the two methods must disagree between samples, got %f m", d)
	}
}
