package orbital

import (
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/julian"
	"github.com/soniakeys/meeus/planetposition"
	"github.com/soniakeys/meeus/pluto"
)

const (
	// AU is one astronomical unit in meters.
	AU = 1.49597870700e11
)

// CelestialObject defines a celestial object. All distances in meters, all
// gravitational parameters in m^3/s^2.
type CelestialObject struct {
	Name       string
	Radius     float64
	a          float64 // semi-major axis of the body's own orbit
	μ          float64
	tilt       float64 // axial tilt, degrees
	incl       float64 // ecliptic inclination, degrees
	SOI        float64 // sphere of influence radius
	J2         float64
	J3         float64
	J4         float64
	Flattening float64
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (c CelestialObject) GM() float64 {
	return c.μ
}

// J returns the zonal harmonic J_n factor for the provided n.
func (c CelestialObject) J(n uint8) float64 {
	switch n {
	case 2:
		return c.J2
	case 3:
		return c.J3
	case 4:
		return c.J4
	default:
		return 0.0
	}
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c *CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.a == b.a && c.μ == b.μ && c.SOI == b.SOI && c.J2 == b.J2
}

// CelestialObjectFromString returns the object from its name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "moon":
		return Moon, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	case "pluto":
		return Pluto, nil
	default:
		return CelestialObject{}, UnknownBodyError{name}
	}
}

// HelioOrbit returns the heliocentric cartesian state of a planet at a given
// time, from the VSOP87 theory. The whole ephemeris file is loaded on first
// use and cached on the environment.
func (env *Environment) HelioOrbit(c CelestialObject, dt time.Time) ([]float64, error) {
	if c.Name == Sun.Name {
		return make([]float64, 6), nil
	}

	var l, b, r float64
	if c.Name == Pluto.Name {
		// Special case in Sonia Keys' Meeus
		pl, pb, pr := pluto.Heliocentric(julian.TimeToJD(dt.UTC()))
		l, b, r = pl.Rad(), pb.Rad(), pr*AU
	} else {
		planet, cached := env.planets[c.Name]
		if !cached {
			var vsopPosition int
			switch c.Name {
			case "Mercury":
				vsopPosition = 1
			case "Venus":
				vsopPosition = 2
			case "Earth":
				vsopPosition = 3
			case "Mars":
				vsopPosition = 4
			case "Jupiter":
				vsopPosition = 5
			case "Saturn":
				vsopPosition = 6
			case "Uranus":
				vsopPosition = 7
			case "Neptune":
				vsopPosition = 8
			default:
				return nil, UnknownBodyError{c.Name}
			}
			var err error
			planet, err = planetposition.LoadPlanetPath(vsopPosition-1, env.VSOP87Dir)
			if err != nil {
				return nil, err
			}
			env.planets[c.Name] = planet
		}
		pl, pb, pr := planet.Position2000(julian.TimeToJD(dt.UTC()))
		l, b, r = pl.Rad(), pb.Rad(), pr*AU
	}

	// Cartesian coordinates from L, B, R.
	sB, cB := math.Sincos(b)
	sL, cL := math.Sincos(l)
	R := []float64{r * cB * cL, r * cB * sL, r * sB}

	// Speed from the vis-viva equation, along the prograde direction.
	v := math.Sqrt(2*Sun.μ/r - Sun.μ/c.a)
	vDir := unit(cross(R, []float64{0, 0, -1}))
	return []float64{R[0], R[1], R[2], v * vDir[0], v * vDir[1], v * vDir[2]}, nil
}

/* Definitions */

// Sun is our closest star. Its SOI is the sentinel -1, meaning everything is
// inside it.
var Sun = CelestialObject{"Sun", 695700e3, -1, 1.32712440017987e20, 0.0, 0.0, -1, 0, 0, 0, 0}

// Mercury is the smallest one.
var Mercury = CelestialObject{"Mercury", 2439.7e3, 57909050e3, 2.2032e13, 0.034, 7.005, 112408e3, 0.00006, 0, 0, 0}

// Venus is poisonous.
var Venus = CelestialObject{"Venus", 6051.8e3, 108208601e3, 3.24858599e14, 177.36, 3.39458, 616270e3, 0.000027, 0, 0, 0}

// Earth is home.
var Earth = CelestialObject{"Earth", 6378136.3, 149598023e3, 3.986004415e14, 23.4, 0.00005, 924642e3, 1.0826266835531513e-3, -2.5326564853322355e-6, -1.6196215913670001e-6, 1 / 298.257223563}

// Moon is Earth's companion.
var Moon = CelestialObject{"Moon", 1737.4e3, 384400e3, 4.9027779e12, 6.687, 5.145, 66168e3, 202.7e-6, 0, 0, 0}

// Mars is the vacation place.
var Mars = CelestialObject{"Mars", 3396.19e3, 227939282.5616e3, 4.28283100e13, 25.19, 1.85, 577223e3, 1964e-6, 36e-6, -18e-6, 0}

// Jupiter is big.
var Jupiter = CelestialObject{"Jupiter", 71492e3, 778298361e3, 1.266865361e17, 3.13, 1.30326966, 48219667e3, 0.01475, 0, -0.00058, 0}

// Saturn floats and that's really cool.
var Saturn = CelestialObject{"Saturn", 60268e3, 1429394133e3, 3.7931208e16, 26.73, 2.485, 54800713e3, 0.01645, 0, -0.001, 0}

// Uranus is no joke.
var Uranus = CelestialObject{"Uranus", 25559e3, 2875038615e3, 5.7939513e15, 97.77, 0.773, 51839589e3, 0.012, 0, 0, 0}

// Neptune is the last actual planet.
var Neptune = CelestialObject{"Neptune", 24764e3, 4504449769e3, 6.836529e15, 28.32, 1.767975, 84758736e3, 0.003411, 0, 0, 0}

// Pluto is not a planet and had that down ranking coming. It should have stayed in its lane.
// WARNING: Pluto SOI is not defined.
var Pluto = CelestialObject{"Pluto", 1151e3, 5915799000e3, 9e11, 122.53, 17.14216667, 1, 0, 0, 0, 0}
