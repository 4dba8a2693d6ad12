package orbital

import (
	"math"
	"time"
)

// ehJ are the zonal harmonics used by the Eckstein-Hechler model, J0 to J6.
var ehJ = []float64{
	1,
	0,
	1.0826266835531513e-3,
	-2.5326564853322355e-6,
	-1.6196215913670001e-6,
	-2.2729608286869828e-7,
	5.4068123910708486e-7,
}

const (
	ehMu = 3.986004415e14
	ehRe = 6378136.3
)

// EcksteinHechler is the analytical propagator for nearly circular Earth
// orbits, accounting for the zonal harmonics up to J6. It does not work near
// the critical inclinations (63.43 and 116.57 deg) nor for equatorial
// orbits, direct or retrograde.
//
// From Eckstein, M. C., and F. Hechler, "A reliable derivation of the
// perturbations due to any zonal and tesseral harmonics of the geopotential
// for nearly-circular satellite orbits", ESRO-SR-13, 1970, limited to the
// zonal terms.
type EcksteinHechler struct {
	env   *Environment
	orbit *StateVector
	mean  []float64
	frame *Frame
	// Osculating selects osculating elements instead of mean elements on
	// output.
	Osculating bool
}

// NewEcksteinHechler returns an unbound propagator producing osculating
// elements.
func NewEcksteinHechler(env *Environment) *EcksteinHechler {
	return &EcksteinHechler{env: env, Osculating: true}
}

// Orbit implements the Propagator interface.
func (p *EcksteinHechler) Orbit() *StateVector { return p.orbit }

// SetOrbit implements the Propagator interface. The orbit is converted to
// mean circular elements in CIRF and checked against the validity domain.
func (p *EcksteinHechler) SetOrbit(orbit *StateVector) error {
	frame, err := p.env.Frames.Get("CIRF")
	if err != nil {
		return err
	}
	moved, err := orbit.To(frame, KeplerianMeanCircular)
	if err != nil {
		return err
	}
	mean := moved.Coord()

	e := math.Hypot(mean[1], mean[2])
	β := math.Sin(mean[3])
	β2 := β * β
	if e > 0.1 {
		return DomainError{"eckstein-hechler", "eccentricity too large"}
	} else if e > 5e-3 {
		p.env.Logger.Log("level", "warning", "subsys", "eckstein-hechler", "msg", "eccentricity too large for good precision", "e", e)
	}
	if β2 < 1e-10 {
		return DomainError{"eckstein-hechler", "nearly equatorial orbit"}
	} else if math.Abs(β2-4.0/5.0) < 1e-3 {
		return DomainError{"eckstein-hechler", "nearly critical orbit"}
	}

	p.orbit = orbit
	p.mean = mean
	p.frame = frame
	orbit.Propagator = p
	return nil
}

// Propagate implements the Propagator interface. The output is in mean
// circular elements, in CIRF.
func (p *EcksteinHechler) Propagate(date time.Time) (*StateVector, error) {
	if p.orbit == nil {
		return nil, DomainError{"eckstein-hechler", "no bound orbit"}
	}
	t := date.Sub(p.orbit.Date()).Seconds()

	a0, ex0, ey0, i0, Ω0, α0 := p.mean[0], p.mean[1], p.mean[2], p.mean[3], p.mean[4], p.mean[5]
	var g [7]float64
	for k := range g {
		g[k] = -ehJ[k] * math.Pow(ehRe/a0, float64(k))
	}

	n0 := math.Sqrt(ehMu) * math.Pow(a0, -1.5)
	c := math.Cos(i0)
	β := math.Sin(i0)
	β2 := β * β
	β4 := β2 * β2
	β6 := β4 * β2

	meanA := a0

	// Eccentricity vector
	ωPrime := -0.75 * g[2] * (4 - 5*β2)
	ωSecond := 1.5 * (5*g[4]*(1-31.0/8.0*β2+49.0/16.0*β4) - 35.0/4.0*g[6])
	ξStar := (ωPrime + ωSecond) * n0 * t
	sx, cx := math.Sincos(ξStar)

	tmpEps1 := (3.0 / 32.0) / ωPrime
	eps1 := tmpEps1*g[4]*β2*(30-35*β2) - 175*tmpEps1*g[6]*β2*(1-3*β2+(33.0/16.0)*β4)
	tmpEps2 := (3.0 / 8.0) * β / ωPrime
	eps2 := tmpEps2*g[3]*(4-5*β2) - tmpEps2*g[5]*(10-35*β2+26.25*β4)

	meanEx := ex0*cx - (1-eps1)*(ey0-eps2)*sx
	meanEy := (1+eps1)*ex0*sx + (ey0-eps2)*cx + eps2

	meanI := i0

	// Right ascension of the ascending node
	tmpΩ := 1.5*g[2] -
		2.25*g[2]*g[2]*(2.5-(19.0/6.0)*β2) +
		(15.0/16.0)*g[4]*(7*β2-4) +
		(105.0/32.0)*g[6]*(2-9*β2+(33.0/4.0)*β4)
	meanΩ := mod2pi(Ω0 + tmpΩ*c*n0*t)

	// Argument of latitude
	deltaα := 1 - 1.5*g[2]*(3-4*β2)
	tmpα := deltaα +
		2.25*g[2]*g[2]*(9-(263.0/12.0)*β2+(341.0/24.0)*β4) +
		(15.0/16.0)*g[4]*(8-31*β2+24.5*β4) +
		(105.0/32.0)*g[6]*(-(10.0/3.0)+25*β2-48.75*β4+27.5*β6)
	meanα := mod2pi(α0 + tmpα*n0*t)

	coord := []float64{meanA, meanEx, meanEy, meanI, meanΩ, meanα}

	if p.Osculating {
		var sinα, cosα [6]float64
		for k := 0; k < 6; k++ {
			sinα[k], cosα[k] = math.Sincos(meanα * float64(k+1))
		}

		qq := -1.5 * g[2] / deltaα
		qh := 3 * (meanEy - eps2) / (8 * ωPrime)
		ql := 3 * meanEx / (8 * β * ωPrime)

		// Semi major-axis, J2 then J2^2, J3 to J6
		deltaA := qq * ((2-3.5*β2)*meanEx*cosα[0] +
			(2-2.5*β2)*meanEy*sinα[0] +
			β2*cosα[1] +
			3.5*β2*(meanEx*cosα[2]+meanEy*sinα[2]))
		deltaA += 0.75 * g[2] * g[2] * β2 * (7*(2-3*β2)*cosα[1] + β2*cosα[3])
		deltaA += -0.75 * g[3] * β * ((4-5*β2)*sinα[0] + (5.0/3.0)*β2*sinα[2])
		deltaA += 0.25 * g[4] * β2 * ((15-17.5*β2)*cosα[1] + 4.375*β2*cosα[3])
		deltaA += 3.75 * g[5] * β * ((2.625*β4-3.5*β2+1)*sinα[0] +
			(7.0/6.0)*β2*(1-1.125*β2)*sinα[2] +
			(21.0/80.0)*β4*sinα[4])
		deltaA += (105.0 / 16.0) * g[6] * β2 * ((3*β2-1-(33.0/16.0)*β4)*cosα[1] +
			0.75*(1.1*β4-β2)*cosα[3] -
			(11.0/80.0)*β4*cosα[5])

		deltaEx := qq * ((1-1.25*β2)*cosα[0] +
			0.5*(3-5*β2)*meanEx*cosα[1] +
			(2-1.5*β2)*meanEy*sinα[1] +
			(7.0/12.0)*β2*cosα[2] +
			(17.0/8.0)*β2*(meanEx*cosα[3]+meanEy*sinα[3]))

		deltaEy := qq * ((1-1.75*β2)*sinα[0] +
			(1-3*β2)*meanEx*sinα[1] +
			(2*β2-1.5)*meanEy*cosα[1] +
			(7.0/12.0)*β2*sinα[2] +
			(17.0/8.0)*β2*(meanEx*sinα[3]-meanEy*cosα[3]))

		deltaΩ := -qq * c * (3.5*meanEx*sinα[0] -
			2.5*meanEy*cosα[0] -
			0.5*sinα[1] +
			(7.0/6.0)*(meanEy*cosα[2]-meanEx*sinα[2]))
		deltaΩ += ql * g[3] * c * (4 - 15*β2)
		deltaΩ += -ql * 2.5 * g[5] * c * (4 - 42*β2 + 52.5*β4)

		deltaI := 0.5 * qq * β * c * (meanEy*sinα[0] -
			meanEx*cosα[0] +
			cosα[1] +
			(7.0/3.0)*(meanEx*cosα[2]+meanEy*sinα[2]))
		deltaI += -qh * g[3] * c * (4 - 5*β2)
		deltaI += qh * 2.5 * g[5] * c * (4 - 14*β2 + 10.5*β4)

		deltaαOsc := qq * ((7-(77.0/8.0)*β2)*meanEx*sinα[0] +
			((55.0/8.0)*β2-7.5)*meanEy*cosα[0] +
			(1.25*β2-0.5)*sinα[1] +
			((77.0/24.0)*β2-(7.0/6.0))*(meanEx*sinα[2]-meanEy*cosα[2]))
		deltaαOsc += ql * g[3] * (53*β2 - 4 - 57.5*β4)
		deltaαOsc += ql * 2.5 * g[5] * (4 - 96*β2 + 269.5*β4 - 183.75*β6)

		coord = []float64{
			meanA * (1 + deltaA),
			meanEx + deltaEx,
			meanEy + deltaEy,
			meanI + deltaI,
			mod2pi(meanΩ + deltaΩ),
			mod2pi(meanα + deltaαOsc),
		}
	}

	sv, err := NewStateVector(p.env, date, coord, KeplerianMeanCircular, p.frame)
	if err != nil {
		return nil, err
	}
	sv.Propagator = p
	return sv, nil
}

// Iter implements the Propagator interface.
func (p *EcksteinHechler) Iter(opts PropagationOptions) (*Stream, error) {
	return analyticalIter(p, p.env, opts)
}

// FitEcksteinHechler finds the mean elements which, propagated through the
// osculating model at the same date, reproduce the target state vector. The
// differential correction is capped at 10 iterations, converging on 1 mm in
// position and 0.1 um/s in velocity.
func FitEcksteinHechler(env *Environment, target *StateVector) (*EcksteinHechler, error) {
	const (
		maxIter = 10
		pEps    = 10e-4
		vEps    = 10e-7
	)

	frame, err := env.Frames.Get("CIRF")
	if err != nil {
		return nil, err
	}
	target, err = target.To(frame, Cartesian)
	if err != nil {
		return nil, err
	}

	// The osculating elements are the best initial guess for the mean ones.
	prop := NewEcksteinHechler(env)
	if err = prop.SetOrbit(target); err != nil {
		return nil, err
	}

	for n := 0; ; n++ {
		if n >= maxIter {
			return nil, ConvergenceError{"Eckstein-Hechler fit", maxIter}
		}
		res, err := prop.Propagate(target.Date())
		if err != nil {
			return nil, err
		}
		cart, err := res.ToFrame(frame)
		if err != nil {
			return nil, err
		}
		resCart, err := cart.Cartesian()
		if err != nil {
			return nil, err
		}
		targetCart, err := target.Cartesian()
		if err != nil {
			return nil, err
		}
		diff := sub6(resCart, targetCart)
		converged := true
		for i := 0; i < 3; i++ {
			if math.Abs(diff[i]) >= pEps || math.Abs(diff[i+3]) >= vEps {
				converged = false
			}
		}
		if converged {
			return prop, nil
		}
		prop.mean = sub6(prop.mean, diff6InMeanSpace(env, frame, prop.mean, diff, target.Date()))
	}
}

// diff6InMeanSpace maps a cartesian residual onto the mean circular elements
// by re-expressing both sides in the mean circular form and differencing.
func diff6InMeanSpace(env *Environment, frame *Frame, mean, cartDiff []float64, date time.Time) []float64 {
	// The residual is small, so the linear map of the form conversion around
	// the current point is approximated by converting the shifted state.
	cart, err := ConvertForm(mean, frame.Center.GM(), KeplerianMeanCircular, Cartesian)
	if err != nil {
		return zero6()
	}
	shifted, err := ConvertForm(add6(cart, cartDiff), frame.Center.GM(), Cartesian, KeplerianMeanCircular)
	if err != nil {
		return zero6()
	}
	diff := sub6(shifted, mean)
	for i := 4; i < 6; i++ {
		// Keep angle residuals in (-pi, pi]
		if diff[i] > math.Pi {
			diff[i] -= 2 * math.Pi
		} else if diff[i] < -math.Pi {
			diff[i] += 2 * math.Pi
		}
	}
	return diff
}
