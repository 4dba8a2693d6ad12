package orbital

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

var testμ = Earth.GM()

func TestFormByName(t *testing.T) {
	for alias, form := range map[string]*Form{"cartesian": Cartesian, "mean": KeplerianMean, "circular": KeplerianCircular, "tle": TLEForm} {
		got, err := FormByName(alias)
		if err != nil {
			t.Fatal(err)
		}
		if got != form {
			t.Fatalf("alias %s resolved to %s", alias, got.Name)
		}
	}
	if _, err := FormByName("polar"); err == nil {
		t.Fatal("unknown form must fail")
	} else if _, ok := err.(UnknownFormError); !ok {
		t.Fatalf("wrong error type %T", err)
	}
}

func TestConvertFormBadVector(t *testing.T) {
	if _, err := ConvertForm([]float64{1, 2, 3}, testμ, Cartesian, Keplerian); err == nil {
		t.Fatal("short vector must fail")
	} else if verr, ok := err.(VectorError); !ok || verr.Want != 6 || verr.Got != 3 {
		t.Fatalf("wrong error %v", err)
	}
}

func TestCartesianKeplerianRoundTrip(t *testing.T) {
	kepl := []float64{7136.635444e3, 0.3, Deg2rad(45), Deg2rad(90), Deg2rad(30), Deg2rad(60)}
	cart, err := ConvertForm(kepl, testμ, Keplerian, Cartesian)
	if err != nil {
		t.Fatal(err)
	}
	// Radius from the conic equation.
	p := kepl[0] * (1 - kepl[1]*kepl[1])
	r := p / (1 + kepl[1]*math.Cos(kepl[5]))
	if !floats.EqualWithinAbs(norm(cart[:3]), r, 1e-4) {
		t.Fatal("radius does not follow the conic equation")
	}
	// Speed from the vis-viva equation.
	v := math.Sqrt(testμ * (2/r - 1/kepl[0]))
	if !floats.EqualWithinAbs(norm(cart[3:]), v, 1e-7) {
		t.Fatal("speed does not follow the vis-viva equation")
	}
	back, err := ConvertForm(cart, testμ, Cartesian, Keplerian)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(back[0], kepl[0], 1e-3) {
		t.Fatalf("a: %f != %f", back[0], kepl[0])
	}
	for i := 1; i < 6; i++ {
		if !floats.EqualWithinAbs(back[i], kepl[i], 1e-8) {
			t.Fatalf("element %d: %f != %f", i, back[i], kepl[i])
		}
	}
}

func TestAnomalyChain(t *testing.T) {
	for _, ν := range []float64{0.1, 1.5, math.Pi, 4.2, 6.1} {
		kepl := []float64{8000e3, 0.25, Deg2rad(30), Deg2rad(10), Deg2rad(230), ν}
		mean, err := ConvertForm(kepl, testμ, Keplerian, KeplerianMean)
		if err != nil {
			t.Fatal(err)
		}
		// Kepler's equation must hold on the intermediate eccentric anomaly.
		ecc, err := ConvertForm(kepl, testμ, Keplerian, KeplerianEccentric)
		if err != nil {
			t.Fatal(err)
		}
		E, M := ecc[5], mean[5]
		if !floats.EqualWithinAbs(E-0.25*math.Sin(E), M, 1e-9) {
			t.Fatalf("Kepler equation broken at ν=%f", ν)
		}
		back, err := ConvertForm(mean, testμ, KeplerianMean, Keplerian)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualWithinAbs(back[5], ν, 1e-6) {
			t.Fatalf("ν: %f != %f", back[5], ν)
		}
	}
}

func TestHyperbolicAnomaly(t *testing.T) {
	// Negative semi-major axis, e > 1.
	kepl := []float64{-15000e3, 1.5, Deg2rad(30), Deg2rad(10), Deg2rad(40), 0.8}
	mean, err := ConvertForm(kepl, testμ, Keplerian, KeplerianMean)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ConvertForm(mean, testμ, KeplerianMean, Keplerian)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(back[5], kepl[5], 1e-6) {
		t.Fatalf("hyperbolic ν: %f != %f", back[5], kepl[5])
	}
}

func TestCircularForms(t *testing.T) {
	kepl := []float64{7200e3, 0.002, Deg2rad(98.7), Deg2rad(120), Deg2rad(75), Deg2rad(25)}
	circ, err := ConvertForm(kepl, testμ, Keplerian, KeplerianCircular)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(math.Hypot(circ[1], circ[2]), kepl[1], 1e-12) {
		t.Fatal("eccentricity vector norm != e")
	}
	if !floats.EqualWithinAbs(circ[5], mod2pi(kepl[4]+kepl[5]), 1e-12) {
		t.Fatal("u != ω + ν")
	}
	back, err := ConvertForm(circ, testμ, KeplerianCircular, Keplerian)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(back[0], kepl[0], 1e-6) {
		t.Fatal("a fail")
	}
	for i := 1; i < 6; i++ {
		if !floats.EqualWithinAbs(mod2pi(back[i]), mod2pi(kepl[i]), 1e-9) {
			t.Fatalf("element %d: %f != %f", i, back[i], kepl[i])
		}
	}
}

func TestEquinoctialRoundTrip(t *testing.T) {
	kepl := []float64{26560e3, 0.01, Deg2rad(55), Deg2rad(200), Deg2rad(80), Deg2rad(310)}
	equi, err := ConvertForm(kepl, testμ, Keplerian, Equinoctial)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ConvertForm(equi, testμ, Equinoctial, Keplerian)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(back[0], kepl[0], 1e-3) {
		t.Fatal("a fail")
	}
	for i := 1; i < 6; i++ {
		if !floats.EqualWithinAbs(back[i], kepl[i], 1e-9) {
			t.Fatalf("element %d: %f != %f", i, back[i], kepl[i])
		}
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	cart := []float64{-6045e3, -3490e3, 2500e3, -3.457e3, 6.618e3, 2.533e3}
	sph, err := ConvertForm(cart, testμ, Cartesian, Spherical)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(sph[0], norm(cart[:3]), 1e-6) {
		t.Fatal("r fail")
	}
	back, err := ConvertForm(sph, testμ, Spherical, Cartesian)
	if err != nil {
		t.Fatal(err)
	}
	for i := range cart {
		if !floats.EqualWithinAbs(back[i], cart[i], 1e-5) {
			t.Fatalf("component %d: %f != %f", i, back[i], cart[i])
		}
	}
}

func TestCylindricalRoundTrip(t *testing.T) {
	cart := []float64{7000e3, 1000e3, -300e3, 100, 7.3e3, 45}
	cyl, err := ConvertForm(cart, testμ, Cartesian, Cylindrical)
	if err != nil {
		t.Fatal(err)
	}
	if cyl[2] != cart[2] || cyl[5] != cart[5] {
		t.Fatal("z and vz must pass through")
	}
	back, err := ConvertForm(cyl, testμ, Cylindrical, Cartesian)
	if err != nil {
		t.Fatal(err)
	}
	for i := range cart {
		if !floats.EqualWithinAbs(back[i], cart[i], 1e-5) {
			t.Fatalf("component %d: %f != %f", i, back[i], cart[i])
		}
	}
}

func TestTLEFormRoundTrip(t *testing.T) {
	// 15.5 revolutions per day.
	n := 15.5 * 2 * math.Pi / secondsPerDay
	tle := []float64{Deg2rad(51.6), Deg2rad(250), 6.7e-4, Deg2rad(130), Deg2rad(325), n}
	mean, err := ConvertForm(tle, testμ, TLEForm, KeplerianMean)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(mean[0], math.Cbrt(testμ/(n*n)), 1e-6) {
		t.Fatal("semi-major axis from the mean motion fail")
	}
	back, err := ConvertForm(mean, testμ, KeplerianMean, TLEForm)
	if err != nil {
		t.Fatal(err)
	}
	for i := range tle {
		if !floats.EqualWithinAbs(back[i], tle[i], 1e-12) {
			t.Fatalf("element %d: %v != %v", i, back[i], tle[i])
		}
	}
}

func TestMultiHopConversion(t *testing.T) {
	// spherical to equinoctial crosses the whole graph and back.
	kepl := []float64{7500e3, 0.05, Deg2rad(63), Deg2rad(15), Deg2rad(100), Deg2rad(200)}
	sph, err := ConvertForm(kepl, testμ, Keplerian, Spherical)
	if err != nil {
		t.Fatal(err)
	}
	equi, err := ConvertForm(sph, testμ, Spherical, Equinoctial)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ConvertForm(equi, testμ, Equinoctial, Keplerian)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(back[0], kepl[0], 1e-2) {
		t.Fatal("a fail")
	}
	for i := 1; i < 6; i++ {
		if !floats.EqualWithinAbs(back[i], kepl[i], 1e-7) {
			t.Fatalf("element %d: %f != %f", i, back[i], kepl[i])
		}
	}
}
