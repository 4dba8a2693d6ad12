package orbital

import (
	"math"
	"time"
)

// J2 is the secular analytical propagator: on top of the two-body mean
// motion, the central body's J2 zonal harmonic drifts the node, the argument
// of periapsis and the mean anomaly at their secular rates (Vallado p. 649).
// Short-period oscillations are not modeled.
type J2 struct {
	env   *Environment
	orbit *StateVector
	mean  []float64
	rates []float64
}

// NewJ2 returns an unbound J2 propagator.
func NewJ2(env *Environment) *J2 {
	return &J2{env: env}
}

// Orbit implements the Propagator interface.
func (p *J2) Orbit() *StateVector { return p.orbit }

// SetOrbit implements the Propagator interface.
func (p *J2) SetOrbit(orbit *StateVector) error {
	mean, err := orbit.ToForm(KeplerianMean)
	if err != nil {
		return err
	}
	body := orbit.Frame().Center
	coord := mean.Coord()
	a, e, i := coord[0], coord[1], coord[2]
	n := meanMotion(body.GM(), a)
	p2 := a * (1 - e*e) * a * (1 - e*e)
	com := n * body.Radius * body.Radius * body.J(2) / p2

	sini := math.Sin(i)
	dΩ := -1.5 * com * math.Cos(i)
	dω := 0.75 * com * (4 - 5*sini*sini)
	dM := 0.75 * com * math.Sqrt(1-e*e) * (2 - 3*sini*sini)

	p.orbit = orbit
	p.mean = coord
	p.rates = []float64{0, 0, 0, dΩ, dω, n + dM}
	orbit.Propagator = p
	return nil
}

// Propagate implements the Propagator interface. The output is cartesian, in
// the frame of the bound orbit.
func (p *J2) Propagate(date time.Time) (*StateVector, error) {
	if p.orbit == nil {
		return nil, DomainError{"j2", "no bound orbit"}
	}
	Δt := date.Sub(p.orbit.Date()).Seconds()
	coord := add6(p.mean, scale6(Δt, p.rates))
	for i := 3; i < 6; i++ {
		coord[i] = mod2pi(coord[i])
	}
	cart, err := ConvertForm(coord, p.orbit.Frame().Center.GM(), KeplerianMean, Cartesian)
	if err != nil {
		return nil, err
	}
	sv, err := NewStateVector(p.env, date, cart, Cartesian, p.orbit.Frame())
	if err != nil {
		return nil, err
	}
	sv.Propagator = p
	return sv, nil
}

// Iter implements the Propagator interface.
func (p *J2) Iter(opts PropagationOptions) (*Stream, error) {
	return analyticalIter(p, p.env, opts)
}
