package orbital

import (
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

// leoOrbit returns a slightly eccentric inclined low Earth orbit.
func leoOrbit(env *Environment, date time.Time) *StateVector {
	eme2000, _ := env.Frames.Get("EME2000")
	sv, _ := NewStateVector(env, date, []float64{7000e3, 0.01, Deg2rad(51.6), Deg2rad(30), Deg2rad(45), Deg2rad(60)}, Keplerian, eme2000)
	return sv
}

// orbitPeriod returns the keplerian period of a bound orbit.
func orbitPeriod(sv *StateVector) time.Duration {
	a, _ := sv.Component("a")
	n := meanMotion(sv.Frame().Center.GM(), a)
	return time.Duration(2 * math.Pi / n * float64(time.Second))
}

func TestKeplerPropagator(t *testing.T) {
	env := testEnv()
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	orbit := leoOrbit(env, date)

	prop := NewKepler(env)
	if _, err := prop.Propagate(date); err == nil {
		t.Fatal("unbound propagation must fail")
	}
	if err := prop.SetOrbit(orbit); err != nil {
		t.Fatal(err)
	}

	// At the epoch the propagation reproduces the orbit.
	sv, err := prop.Propagate(date)
	if err != nil {
		t.Fatal(err)
	}
	cart, err := orbit.Cartesian()
	if err != nil {
		t.Fatal(err)
	}
	for i := range cart {
		if !floats.EqualWithinAbs(sv.Coord()[i], cart[i], 1) {
			t.Fatalf("epoch state differs on component %d", i)
		}
	}
	if sv.Propagator == nil {
		t.Fatal("produced states must carry their propagator")
	}

	// One full period later the state repeats.
	period := orbitPeriod(orbit)
	after, err := prop.Propagate(date.Add(period))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(after.Coord()[i], cart[i], 10) {
			t.Fatalf("state does not repeat after one period: %v", sub6(after.Coord(), cart))
		}
	}

	// Backward propagation through At.
	before, err := after.At(date)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(before.Coord()[0], cart[0], 1) {
		t.Fatal("At must propagate backward too")
	}
}

func TestIterOptions(t *testing.T) {
	env := testEnv()
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	prop := NewKepler(env)
	if err := prop.SetOrbit(leoOrbit(env, date)); err != nil {
		t.Fatal(err)
	}

	// Start defaults to the orbit date, step to the environment default.
	stream, err := prop.Iter(PropagationOptions{Until: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	states, err := stream.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 60 {
		t.Fatalf("expected 60 states, got %d", len(states))
	}
	if !states[0].Date().Equal(date) {
		t.Fatal("iteration must start at the orbit date")
	}

	// Inclusive stop.
	stream, _ = prop.Iter(PropagationOptions{Until: time.Hour, Inclusive: true})
	if states, _ = stream.All(); len(states) != 61 {
		t.Fatalf("expected 61 states, got %d", len(states))
	}

	// Backward ranges negate the step on their own.
	stream, err = prop.Iter(PropagationOptions{Stop: date.Add(-30 * time.Minute), Step: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	if states, err = stream.All(); err != nil {
		t.Fatal(err)
	} else if len(states) != 30 {
		t.Fatalf("expected 30 states, got %d", len(states))
	}
	if !states[1].Date().Before(states[0].Date()) {
		t.Fatal("backward iteration must go backward")
	}

	// An explicit date list wins over the range.
	dates := []time.Time{date, date.Add(7 * time.Minute), date.Add(time.Hour)}
	stream, _ = prop.Iter(PropagationOptions{Until: time.Minute, Dates: dates})
	if states, _ = stream.All(); len(states) != 3 {
		t.Fatalf("expected 3 states, got %d", len(states))
	}
	for i, sv := range states {
		if !sv.Date().Equal(dates[i]) {
			t.Fatal("date list not honored")
		}
	}

	// No stop specification at all.
	if _, err = prop.Iter(PropagationOptions{}); err == nil {
		t.Fatal("iteration without a stop must fail")
	}
}

func TestStreamExhaustion(t *testing.T) {
	env := testEnv()
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	prop := NewKepler(env)
	if err := prop.SetOrbit(leoOrbit(env, date)); err != nil {
		t.Fatal(err)
	}
	stream, err := prop.Iter(PropagationOptions{Until: 3 * time.Minute, Step: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if sv, err := stream.Next(); err != nil || sv == nil {
			t.Fatal("stream ended early")
		}
	}
	for i := 0; i < 2; i++ {
		if sv, err := stream.Next(); err != nil || sv != nil {
			t.Fatal("exhausted stream must keep returning nil, nil")
		}
	}
}

func TestBodyCenter(t *testing.T) {
	env := testEnv()
	eme2000, _ := env.Frames.Get("EME2000")
	// Earth pinned at the origin of a frame of its own.
	earthFrame := NewFrame("Earth", Earth, false)
	earthFrame.AddEdge(eme2000, func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error) {
		return identity33(), zero6(), nil
	})
	env.Frames.Register(earthFrame)

	prop, err := NewBodyCenter(env, Earth)
	if err != nil {
		t.Fatal(err)
	}
	sv, err := prop.Propagate(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if norm(sv.Coord()[:3]) != 0 {
		t.Fatal("a body sits at the center of its own frame")
	}
	if sv.Frame().Center.Name != "Earth" {
		t.Fatal("wrong frame")
	}
}
