package orbital

import (
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
)

const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

func TestParseTLE(t *testing.T) {
	tle, err := ParseTLE(issLine1, issLine2)
	if err != nil {
		t.Fatal(err)
	}
	if tle.Norad != 25544 {
		t.Fatalf("wrong catalog number %d", tle.Norad)
	}
	epoch := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)
	if d := tle.Epoch.Sub(epoch); d > time.Second || d < -time.Second {
		t.Fatalf("wrong epoch %s", tle.Epoch)
	}
	for name, tc := range map[string]struct{ got, expected float64 }{
		"i":     {tle.I, Deg2rad(51.6416)},
		"Ω":     {tle.Ω, Deg2rad(247.4627)},
		"e":     {tle.E, 0.0006703},
		"ω":     {tle.ω, Deg2rad(130.5360)},
		"M":     {tle.M, Deg2rad(325.0288)},
		"n":     {tle.N, 15.72125391 * 2 * math.Pi / secondsPerDay},
		"bstar": {tle.Bstar, -0.11606e-4},
	} {
		if !floats.EqualWithinAbs(tc.got, tc.expected, 1e-12) {
			t.Fatalf("%s: %v != %v", name, tc.got, tc.expected)
		}
	}
}

func TestParseTLERejections(t *testing.T) {
	// Wrong length.
	if _, err := ParseTLE(issLine1[:60], issLine2); err == nil {
		t.Fatal("short line must fail")
	}
	// Swapped lines.
	if _, err := ParseTLE(issLine2, issLine1); err == nil {
		t.Fatal("swapped lines must fail")
	}
	// Corrupted checksum.
	corrupt := issLine1[:68] + "0"
	if _, err := ParseTLE(corrupt, issLine2); err == nil {
		t.Fatal("checksum mismatch must fail")
	}
	// A corrupted digit breaks the checksum too.
	corrupt = issLine1[:20] + "9" + issLine1[21:]
	if _, err := ParseTLE(corrupt, issLine2); err == nil {
		t.Fatal("corrupted field must fail")
	}
}

func TestTLEOrbit(t *testing.T) {
	env := testEnv()
	tle, err := ParseTLE(issLine1, issLine2)
	if err != nil {
		t.Fatal(err)
	}
	orbit, err := tle.Orbit(env)
	if err != nil {
		t.Fatal(err)
	}
	if orbit.Form() != TLEForm || orbit.Frame().Name != "TEME" {
		t.Fatal("a TLE lives in the TLE form, in TEME")
	}
	// The semi-major axis recovered from the mean motion is LEO-sized.
	mean, err := orbit.ToForm(KeplerianMean)
	if err != nil {
		t.Fatal(err)
	}
	if a := mean.Coord()[0]; a < 6.7e6 || a > 6.85e6 {
		t.Fatalf("implausible ISS semi-major axis %f", a)
	}
}

func TestSGP4(t *testing.T) {
	env := testEnv()
	tle, err := ParseTLE(issLine1, issLine2)
	if err != nil {
		t.Fatal(err)
	}
	prop, err := NewSGP4(env, tle)
	if err != nil {
		t.Fatal(err)
	}
	if err = prop.SetOrbit(prop.Orbit()); err == nil {
		t.Fatal("SGP4 must reject SetOrbit")
	}

	sv, err := prop.Propagate(tle.Epoch)
	if err != nil {
		t.Fatal(err)
	}
	if sv.Frame().Name != "TEME" || sv.Form() != Cartesian {
		t.Fatal("SGP4 output must be cartesian in TEME")
	}
	r, v := norm(sv.Coord()[:3]), norm(sv.Coord()[3:])
	if r < 6.6e6 || r > 6.9e6 {
		t.Fatalf("implausible ISS radius %f m", r)
	}
	if v < 7.5e3 || v > 7.8e3 {
		t.Fatalf("implausible ISS speed %f m/s", v)
	}

	// Sub-second dates move the state instead of snapping to the whole
	// second: at 7.7 km/s, half a second is several kilometers.
	whole := tle.Epoch.Truncate(time.Second)
	s0, err := prop.Propagate(whole)
	if err != nil {
		t.Fatal(err)
	}
	s1, err := prop.Propagate(whole.Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	half, err := prop.Propagate(whole.Add(500 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if floats.EqualApprox(half.Coord(), s0.Coord(), 1e-9) {
		t.Fatal("a sub-second date must not reuse the whole-second state")
	}
	moved := norm(sub6(half.Coord(), s0.Coord())[:3])
	speed := norm(s0.Coord()[3:])
	if !floats.EqualWithinAbs(moved, 0.5*speed, 0.01*speed) {
		t.Fatalf("half a second moved the state by %f m, expected about %f", moved, 0.5*speed)
	}
	// The blend lands between the bracketing states.
	for i := 0; i < 3; i++ {
		mid := 0.5 * (s0.Coord()[i] + s1.Coord()[i])
		if !floats.EqualWithinAbs(half.Coord()[i], mid, 10) {
			t.Fatalf("component %d at the half second is %f, expected near %f", i, half.Coord()[i], mid)
		}
	}

	// A day of propagation stays on a LEO shell.
	stream, err := prop.Iter(PropagationOptions{Start: tle.Epoch, Until: 24 * time.Hour, Step: 10 * time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	states, err := stream.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 144 {
		t.Fatalf("expected 144 states, got %d", len(states))
	}
	for _, sv := range states {
		if r := norm(sv.Coord()[:3]); r < 6.6e6 || r > 6.9e6 {
			t.Fatalf("implausible radius %f m at %s", r, sv.Date())
		}
	}
}
