package orbital

import (
	"math"
)

// Form is a named coordinate representation of a 6-component state vector,
// with an ordered list of component names.
type Form struct {
	Name   string
	Params []string
}

func (f *Form) String() string {
	return f.Name
}

// The supported forms. Conversions between two forms follow the shortest
// path in the graph declared in formNeighbors below.
var (
	// Cartesian is position and velocity.
	Cartesian = &Form{"cartesian", []string{"x", "y", "z", "vx", "vy", "vz"}}
	// Keplerian is the classical orbital element set, with true anomaly.
	Keplerian = &Form{"keplerian", []string{"a", "e", "i", "Ω", "ω", "ν"}}
	// KeplerianEccentric replaces the true anomaly with the eccentric (or
	// hyperbolic) anomaly.
	KeplerianEccentric = &Form{"keplerian_eccentric", []string{"a", "e", "i", "Ω", "ω", "E"}}
	// KeplerianMean replaces the true anomaly with the mean anomaly.
	KeplerianMean = &Form{"keplerian_mean", []string{"a", "e", "i", "Ω", "ω", "M"}}
	// KeplerianCircular avoids the ω singularity of near-circular orbits by
	// using the eccentricity vector and the true argument of latitude.
	KeplerianCircular = &Form{"keplerian_circular", []string{"a", "ex", "ey", "i", "Ω", "u"}}
	// KeplerianMeanCircular is the same with the mean argument of latitude.
	KeplerianMeanCircular = &Form{"keplerian_mean_circular", []string{"a", "ex", "ey", "i", "Ω", "α"}}
	// Spherical is equatorial (not zenithal): r, azimuth, elevation and
	// their rates.
	Spherical = &Form{"spherical", []string{"r", "θ", "φ", "r_dot", "θ_dot", "φ_dot"}}
	// Equinoctial is free of singularities for circular and equatorial
	// orbits.
	Equinoctial = &Form{"equinoctial", []string{"a", "ex", "ey", "ix", "iy", "l"}}
	// Cylindrical form.
	Cylindrical = &Form{"cylindrical", []string{"r", "θ", "z", "r_dot", "θ_dot", "vz"}}
	// TLEForm is the raw element set of a two-line element: inclination,
	// RAAN, eccentricity, argument of perigee, mean anomaly and mean motion.
	// It is consumed by the SGP4 propagator; see the Orbit method of TLE for
	// the documented one-way TLE to cartesian conversion.
	TLEForm = &Form{"tle", []string{"i", "Ω", "e", "ω", "M", "n"}}
)

var formAliases = map[string]*Form{
	"cartesian":               Cartesian,
	"keplerian":               Keplerian,
	"keplerian_eccentric":     KeplerianEccentric,
	"eccentric":               KeplerianEccentric,
	"keplerian_mean":          KeplerianMean,
	"mean":                    KeplerianMean,
	"keplerian_circular":      KeplerianCircular,
	"circular":                KeplerianCircular,
	"keplerian_mean_circular": KeplerianMeanCircular,
	"mean_circular":           KeplerianMeanCircular,
	"spherical":               Spherical,
	"equinoctial":             Equinoctial,
	"cylindrical":             Cylindrical,
	"tle":                     TLEForm,
}

// paramAliases maps ASCII spellings to the greek component names.
var paramAliases = map[string]string{
	"theta":     "θ",
	"phi":       "φ",
	"raan":      "Ω",
	"Omega":     "Ω",
	"omega":     "ω",
	"nu":        "ν",
	"theta_dot": "θ_dot",
	"phi_dot":   "φ_dot",
	"aol":       "u",
	"alpha":     "α",
	"maol":      "α",
	"x_dot":     "vx",
	"y_dot":     "vy",
	"z_dot":     "vz",
}

// FormByName resolves a form from its name or alias.
func FormByName(name string) (*Form, error) {
	if f, ok := formAliases[name]; ok {
		return f, nil
	}
	return nil, UnknownFormError{name}
}

type formConv func(coord []float64, μ float64) ([]float64, error)

// formNeighbors declares the conversion graph. Every edge is implemented in
// both directions in formEdges.
var formNeighbors = map[string][]string{
	"spherical":               {"cartesian"},
	"cartesian":               {"spherical", "keplerian", "cylindrical"},
	"keplerian":               {"cartesian", "keplerian_eccentric", "equinoctial", "keplerian_circular"},
	"keplerian_eccentric":     {"keplerian", "keplerian_mean"},
	"keplerian_mean":          {"keplerian_eccentric", "tle", "keplerian_mean_circular"},
	"tle":                     {"keplerian_mean"},
	"equinoctial":             {"keplerian"},
	"keplerian_circular":      {"keplerian"},
	"keplerian_mean_circular": {"keplerian_mean"},
	"cylindrical":             {"cartesian"},
}

var formEdges = map[string]map[string]formConv{
	"cartesian": {
		"keplerian":   cartesianToKeplerian,
		"spherical":   cartesianToSpherical,
		"cylindrical": cartesianToCylindrical,
	},
	"keplerian": {
		"cartesian":           keplerianToCartesian,
		"keplerian_eccentric": keplerianToEccentric,
		"equinoctial":         keplerianToEquinoctial,
		"keplerian_circular":  keplerianToCircular,
	},
	"keplerian_eccentric": {
		"keplerian":      eccentricToKeplerian,
		"keplerian_mean": eccentricToMean,
	},
	"keplerian_mean": {
		"keplerian_eccentric":     meanToEccentric,
		"tle":                     meanToTLE,
		"keplerian_mean_circular": meanToMeanCircular,
	},
	"tle": {
		"keplerian_mean": tleToMean,
	},
	"equinoctial": {
		"keplerian": equinoctialToKeplerian,
	},
	"keplerian_circular": {
		"keplerian": circularToKeplerian,
	},
	"keplerian_mean_circular": {
		"keplerian_mean": meanCircularToMean,
	},
	"spherical": {
		"cartesian": sphericalToCartesian,
	},
	"cylindrical": {
		"cartesian": cylindricalToCartesian,
	},
}

// formPath returns the chain of form names to traverse, both ends included.
func formPath(from, to string) ([]string, error) {
	if from == to {
		return []string{from}, nil
	}
	// BFS, neighbors visited in declaration order.
	parents := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range formNeighbors[cur] {
			if _, seen := parents[next]; seen {
				continue
			}
			parents[next] = cur
			if next == to {
				path := []string{to}
				for at := cur; at != ""; at = parents[at] {
					path = append([]string{at}, path...)
				}
				return path, nil
			}
			queue = append(queue, next)
		}
	}
	return nil, NoPathError{from, to}
}

// ConvertForm re-expresses a 6-component coordinate vector from one form to
// another, for the gravitational parameter of the frame's center body.
func ConvertForm(coord []float64, μ float64, from, to *Form) ([]float64, error) {
	if len(coord) != 6 {
		return nil, VectorError{6, len(coord)}
	}
	path, err := formPath(from.Name, to.Name)
	if err != nil {
		return nil, err
	}
	out := append([]float64(nil), coord...)
	for i := 0; i < len(path)-1; i++ {
		conv := formEdges[path[i]][path[i+1]]
		if out, err = conv(out, μ); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func cartesianToKeplerian(coord []float64, μ float64) ([]float64, error) {
	r, v := coord[:3], coord[3:]
	h := cross(r, v)
	hNorm := norm(h)
	rNorm := norm(r)
	vNorm := norm(v)

	ξ := vNorm*vNorm/2 - μ/rNorm // specific energy
	a := -μ / (2 * ξ)
	e := math.Sqrt(1 - hNorm*hNorm/(a*μ))
	p := a * (1 - e*e)
	i := math.Acos(h[2] / hNorm)
	Ω := mod2pi(math.Atan2(h[0], -h[1]))

	ων := math.Atan2(r[2]/math.Sin(i), r[0]*math.Cos(Ω)+r[1]*math.Sin(Ω))
	ν := mod2pi(math.Atan2(math.Sqrt(p/μ)*dot(v, r), p-rNorm))
	ω := mod2pi(ων - ν)

	return []float64{a, e, i, Ω, ω, ν}, nil
}

func keplerianToCartesian(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, ν := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]

	p := a * (1 - e*e)
	r := p / (1 + e*math.Cos(ν))
	h := math.Sqrt(μ * p)
	sΩ, cΩ := math.Sincos(Ω)
	sων, cων := math.Sincos(ω + ν)
	si, ci := math.Sincos(i)
	sν := math.Sin(ν)

	x := r * (cΩ*cων - sΩ*sων*ci)
	y := r * (sΩ*cων + cΩ*sων*ci)
	z := r * si * sων
	vx := x*h*e/(r*p)*sν - h/r*(cΩ*sων+sΩ*cων*ci)
	vy := y*h*e/(r*p)*sν - h/r*(sΩ*sων-cΩ*cων*ci)
	vz := z*h*e/(r*p)*sν + h/r*si*cων

	return []float64{x, y, z, vx, vy, vz}, nil
}

func keplerianToEccentric(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, ν := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	var E float64
	if e < 1 {
		cosE := (e + math.Cos(ν)) / (1 + e*math.Cos(ν))
		sinE := (math.Sin(ν) * math.Sqrt(1-e*e)) / (1 + e*math.Cos(ν))
		E = mod2pi(math.Atan2(sinE, cosE))
	} else {
		// Hyperbolic case, E usually marked as H
		coshE := (e + math.Cos(ν)) / (1 + e*math.Cos(ν))
		sinhE := (math.Sin(ν) * math.Sqrt(e*e-1)) / (1 + e*math.Cos(ν))
		E = math.Atanh(sinhE / coshE)
	}
	return []float64{a, e, i, Ω, ω, E}, nil
}

func eccentricToKeplerian(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, E := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	var sinν, cosν float64
	if e < 1 {
		cosν = (math.Cos(E) - e) / (1 - e*math.Cos(E))
		sinν = (math.Sin(E) * math.Sqrt(1-e*e)) / (1 - e*math.Cos(E))
	} else {
		cosν = (math.Cosh(E) - e) / (1 - e*math.Cosh(E))
		sinν = -(math.Sinh(E) * math.Sqrt(e*e-1)) / (1 - e*math.Cosh(E))
	}
	ν := mod2pi(math.Atan2(sinν, cosν))
	return []float64{a, e, i, Ω, ω, ν}, nil
}

func eccentricToMean(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, E := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	var M float64
	if e < 1 {
		M = E - e*math.Sin(E)
	} else {
		M = e*math.Sinh(E) - E
	}
	return []float64{a, e, i, Ω, ω, M}, nil
}

func meanToEccentric(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, M := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	E, err := M2E(e, M)
	if err != nil {
		return nil, err
	}
	return []float64{a, e, i, Ω, ω, E}, nil
}

// keplerMaxIter caps the Newton solve of the Kepler equation.
const keplerMaxIter = 50

// M2E converts the mean anomaly to the eccentric anomaly (or hyperbolic
// anomaly for e > 1) by Newton iteration, from Vallado.
func M2E(e, M float64) (float64, error) {
	const tol = 1e-8

	if e < 1 {
		var E float64
		if (-math.Pi < M && M < 0) || M > math.Pi {
			E = M - e
		} else {
			E = M + e
		}
		next := func(E float64) float64 {
			return E + (M-E+e*math.Sin(E))/(1-e*math.Cos(E))
		}
		E1 := next(E)
		for i := 0; math.Abs(E1-E) >= tol; i++ {
			if i >= keplerMaxIter {
				return 0, ConvergenceError{"Kepler equation", keplerMaxIter}
			}
			E = E1
			E1 = next(E)
		}
		return E1, nil
	}

	// Hyperbolic
	var H float64
	switch {
	case e < 1.6:
		if (-math.Pi < M && M < 0) || M > math.Pi {
			H = M - e
		} else {
			H = M + e
		}
	case e < 3.6 && math.Abs(M) > math.Pi:
		H = M - sign(M)*e
	default:
		H = M / (e - 1)
	}
	next := func(H float64) float64 {
		return H + (M-e*math.Sinh(H)+H)/(e*math.Cosh(H)-1)
	}
	H1 := next(H)
	for i := 0; math.Abs(H1-H) >= tol; i++ {
		if i >= keplerMaxIter {
			return 0, ConvergenceError{"Kepler equation", keplerMaxIter}
		}
		H = H1
		H1 = next(H)
	}
	return H1, nil
}

func keplerianToCircular(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, ν := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	ex := e * math.Cos(ω)
	ey := e * math.Sin(ω)
	u := mod2pi(ω + ν)
	return []float64{a, ex, ey, i, Ω, u}, nil
}

func circularToKeplerian(coord []float64, μ float64) ([]float64, error) {
	a, ex, ey, i, Ω, u := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	e := math.Hypot(ex, ey)
	ω := math.Atan2(ey/e, ex/e)
	ν := u - ω
	return []float64{a, e, i, Ω, ω, ν}, nil
}

func meanToMeanCircular(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, M := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	ex := e * math.Cos(ω)
	ey := e * math.Sin(ω)
	α := mod2pi(ω + M)
	return []float64{a, ex, ey, i, Ω, α}, nil
}

func meanCircularToMean(coord []float64, μ float64) ([]float64, error) {
	a, ex, ey, i, Ω, α := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	e := math.Hypot(ex, ey)
	ω := math.Atan2(ey/e, ex/e)
	M := α - ω
	return []float64{a, e, i, Ω, ω, M}, nil
}

func tleToMean(coord []float64, μ float64) ([]float64, error) {
	i, Ω, e, ω, M, n := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	a := math.Cbrt(μ / (n * n))
	return []float64{a, e, i, Ω, ω, M}, nil
}

func meanToTLE(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, M := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	n := math.Sqrt(μ / (a * a * a))
	return []float64{i, Ω, e, ω, M, n}, nil
}

func cartesianToSpherical(coord []float64, μ float64) ([]float64, error) {
	x, y, z, vx, vy, vz := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	r := norm(coord[:3])
	φ := math.Asin(z / r)
	θ := math.Atan2(y, x)

	rDot := (x*vx + y*vy + z*vz) / r
	φDot := (vz*(x*x+y*y) - z*(x*vx+y*vy)) / (r * r * math.Sqrt(x*x+y*y))
	θDot := (x*vy - y*vx) / (x*x + y*y)

	return []float64{r, θ, φ, rDot, θDot, φDot}, nil
}

func sphericalToCartesian(coord []float64, μ float64) ([]float64, error) {
	r, θ, φ, rDot, θDot, φDot := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	sθ, cθ := math.Sincos(θ)
	sφ, cφ := math.Sincos(φ)
	x := r * cφ * cθ
	y := r * cφ * sθ
	z := r * sφ

	vx := rDot*x/r - y*θDot - z*φDot*cθ
	vy := rDot*y/r + x*θDot - z*φDot*sθ
	vz := rDot*z/r + r*φDot*cφ

	return []float64{x, y, z, vx, vy, vz}, nil
}

func keplerianToEquinoctial(coord []float64, μ float64) ([]float64, error) {
	a, e, i, Ω, ω, ν := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	ex := e * math.Cos(Ω+ω)
	ey := e * math.Sin(Ω+ω)
	ix := math.Tan(i/2) * math.Cos(Ω)
	iy := math.Tan(i/2) * math.Sin(Ω)
	l := Ω + ω + ν
	return []float64{a, ex, ey, ix, iy, l}, nil
}

func equinoctialToKeplerian(coord []float64, μ float64) ([]float64, error) {
	a, ex, ey, ix, iy, l := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	Ω := mod2pi(math.Atan2(iy, ix))
	ω := mod2pi(math.Atan2(ey, ex) - Ω)
	ν := mod2pi(l - Ω - ω)
	e := math.Hypot(ex, ey)
	i := 2 * math.Atan(math.Hypot(ix, iy))
	return []float64{a, e, i, Ω, ω, ν}, nil
}

func cartesianToCylindrical(coord []float64, μ float64) ([]float64, error) {
	x, y, z, vx, vy, vz := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	r := math.Hypot(x, y)
	θ := math.Atan2(y, x)
	rDot := (x*vx + y*vy) / r
	θDot := (x*vy - y*vx) / (x*x + y*y)
	return []float64{r, θ, z, rDot, θDot, vz}, nil
}

func cylindricalToCartesian(coord []float64, μ float64) ([]float64, error) {
	r, θ, z, rDot, θDot, vz := coord[0], coord[1], coord[2], coord[3], coord[4], coord[5]
	sθ, cθ := math.Sincos(θ)
	x := r * cθ
	y := r * sθ
	vx := rDot*cθ - r*sθ*θDot
	vy := rDot*sθ + r*cθ*θDot
	return []float64{x, y, z, vx, vy, vz}, nil
}
