package orbital

import (
	"time"

	"github.com/ChristopherRabotin/ode"
	"github.com/ready-steady/ode/dopri"
)

// Integration methods of KeplerNum.
const (
	MethodEuler   = "euler"
	MethodRK4     = "rk4"
	MethodDOPRI54 = "dopri54"
)

// KeplerNum is the numerical propagator: N-body newtonian attraction from a
// configurable list of bodies, integrated at a fixed step with the selected
// method, with impulsive maneuvers applied at the step containing their
// date. Propagation runs on an internal fixed-step ephemeris which is then
// interpolated at the requested dates, so the output step is independent of
// the integration step.
type KeplerNum struct {
	env    *Environment
	orbit  *StateVector
	frame  *Frame
	bodies []CelestialObject

	Step   time.Duration
	Method string
	// Tol is the local error tolerance of the adaptive method, in meters.
	Tol float64
}

// NewKeplerNum returns an unbound numerical propagator. A nil frame selects
// EME2000, no bodies selects the frame's center, a zero step selects the
// environment default and an empty method selects RK4.
func NewKeplerNum(env *Environment, step time.Duration, method string, frame *Frame, bodies ...CelestialObject) (*KeplerNum, error) {
	if frame == nil {
		var err error
		if frame, err = env.Frames.Get("EME2000"); err != nil {
			return nil, err
		}
	}
	if len(bodies) == 0 {
		bodies = []CelestialObject{frame.Center}
	}
	if step <= 0 {
		step = env.DefaultStep
	}
	switch method {
	case "":
		method = MethodRK4
	case MethodEuler, MethodRK4, MethodDOPRI54:
	default:
		return nil, UnknownPropagatorError{method}
	}
	// Body frames must be reachable to query positions during integration.
	for _, body := range bodies {
		if body.Name == frame.Center.Name {
			continue
		}
		if _, err := env.BodyFrame(body); err != nil {
			return nil, err
		}
	}
	return &KeplerNum{env: env, frame: frame, bodies: bodies, Step: step, Method: method, Tol: 1e-3}, nil
}

// Orbit implements the Propagator interface.
func (p *KeplerNum) Orbit() *StateVector { return p.orbit }

// Frame returns the integration frame.
func (p *KeplerNum) Frame() *Frame { return p.frame }

// SetOrbit implements the Propagator interface. The orbit is re-expressed as
// cartesian in the integration frame.
func (p *KeplerNum) SetOrbit(orbit *StateVector) error {
	moved, err := orbit.To(p.frame, Cartesian)
	if err != nil {
		return err
	}
	moved.Propagator = p
	p.orbit = moved
	orbit.Propagator = p
	return nil
}

// accel is Newton's law of universal gravitation summed over the bodies.
func (p *KeplerNum) accel(date time.Time, y []float64) ([]float64, error) {
	f := make([]float64, 6)
	copy(f[:3], y[3:])
	for _, body := range p.bodies {
		bodyPos := make([]float64, 6)
		if body.Name != p.frame.Center.Name {
			bodyFrame, err := p.env.Frames.Get(body.Name)
			if err != nil {
				return nil, err
			}
			if bodyPos, err = p.env.Frames.Transform(date, make([]float64, 6), bodyFrame, p.frame); err != nil {
				return nil, err
			}
		}
		diff := []float64{bodyPos[0] - y[0], bodyPos[1] - y[1], bodyPos[2] - y[2]}
		d := norm(diff)
		d3 := d * d * d
		for i := 0; i < 3; i++ {
			f[3+i] += body.GM() * diff[i] / d3
		}
	}
	return f, nil
}

// maneuverInStep reports whether a maneuver date falls in the half-open
// integration step (prev, cur], in either time direction.
func maneuverInStep(m Maneuver, prev, cur time.Time) bool {
	if cur.After(prev) {
		return m.Date.After(prev) && !m.Date.After(cur)
	}
	return m.Date.Before(prev) && !m.Date.Before(cur)
}

// applyManeuvers adds the Δv of every maneuver falling in the step, on the
// end-of-step state.
func (p *KeplerNum) applyManeuvers(y []float64, prev, cur time.Time) []float64 {
	for _, m := range p.orbit.Maneuvers {
		if !maneuverInStep(m, prev, cur) {
			continue
		}
		Δv := m.frameΔv(y)
		y = append(y[:3:3], y[3]+Δv[0], y[4]+Δv[1], y[5]+Δv[2])
	}
	return y
}

// grid lays out the integration dates from the bound orbit to the target,
// always overshooting by up to one step and padding so the interpolation
// window is always full.
func (p *KeplerNum) grid(target time.Time) []time.Time {
	start := p.orbit.Date()
	step := p.Step
	if target.Before(start) {
		step = -step
	}
	dates := []time.Time{start}
	d := start
	for (step > 0 && d.Before(target)) || (step < 0 && d.After(target)) {
		d = d.Add(step)
		dates = append(dates, d)
	}
	for len(dates) < DefaultInterpOrder+1 {
		d = d.Add(step)
		dates = append(dates, d)
	}
	return dates
}

func (p *KeplerNum) sample(date time.Time, y []float64) (*StateVector, error) {
	sv, err := NewStateVector(p.env, date, y, Cartesian, p.frame)
	if err != nil {
		return nil, err
	}
	sv.Propagator = p
	return sv, nil
}

// arc integrates from the bound orbit to the target date, producing the
// internal fixed-step samples.
func (p *KeplerNum) arc(target time.Time) ([]*StateVector, error) {
	if p.orbit == nil {
		return nil, DomainError{"keplernum", "no bound orbit"}
	}
	dates := p.grid(target)
	y, err := p.orbit.Cartesian()
	if err != nil {
		return nil, err
	}
	first, err := p.sample(dates[0], y)
	if err != nil {
		return nil, err
	}
	samples := []*StateVector{first}

	switch p.Method {
	case MethodEuler:
		for k := 1; k < len(dates); k++ {
			h := dates[k].Sub(dates[k-1]).Seconds()
			f, err := p.accel(dates[k-1], y)
			if err != nil {
				return nil, err
			}
			y = p.applyManeuvers(add6(y, scale6(h, f)), dates[k-1], dates[k])
			sv, err := p.sample(dates[k], y)
			if err != nil {
				return nil, err
			}
			samples = append(samples, sv)
		}
	case MethodRK4:
		a := &rk4Arc{p: p, dates: dates, dir: 1, y: y, k: 1, samples: samples}
		if dates[1].Before(dates[0]) {
			a.dir = -1
		}
		ode.NewRK4(0, p.Step.Seconds(), a).Solve()
		if a.err != nil {
			return nil, a.err
		}
		samples = a.samples
	case MethodDOPRI54:
		if samples, err = p.dopriArc(dates, y, samples); err != nil {
			return nil, err
		}
	}
	return samples, nil
}

// rk4Arc adapts one integration arc to the RK4 engine. Integration runs on
// the elapsed time τ, so backward arcs only flip the derivative sign.
type rk4Arc struct {
	p       *KeplerNum
	dates   []time.Time
	dir     float64
	y       []float64
	k       int
	samples []*StateVector
	err     error
}

// GetState implements the ode.Integrable interface.
func (a *rk4Arc) GetState() []float64 { return a.y }

// Stop implements the ode.Integrable interface.
func (a *rk4Arc) Stop(t float64) bool {
	return a.err != nil || a.k >= len(a.dates)
}

// Func implements the ode.Integrable interface.
func (a *rk4Arc) Func(t float64, y []float64) []float64 {
	date := a.dates[0].Add(time.Duration(a.dir * t * float64(time.Second)))
	f, err := a.p.accel(date, y)
	if err != nil {
		a.err = err
		return make([]float64, 6)
	}
	return scale6(a.dir, f)
}

// SetState implements the ode.Integrable interface.
func (a *rk4Arc) SetState(t float64, y []float64) {
	if a.err != nil || a.k >= len(a.dates) {
		return
	}
	prev, cur := a.dates[a.k-1], a.dates[a.k]
	a.y = a.p.applyManeuvers(y, prev, cur)
	sv, err := a.p.sample(cur, a.y)
	if err != nil {
		a.err = err
		return
	}
	a.samples = append(a.samples, sv)
	a.k++
}

// dopriArc integrates with the adaptive Dormand-Prince engine, splitting the
// run at maneuver steps so impulses keep the same step semantics as the
// fixed-step methods.
func (p *KeplerNum) dopriArc(dates []time.Time, y []float64, samples []*StateVector) ([]*StateVector, error) {
	dir := 1.0
	if dates[1].Before(dates[0]) {
		dir = -1
	}
	τ := func(k int) float64 { return dir * dates[k].Sub(dates[0]).Seconds() }

	// grid indices right after each maneuver date
	boundaries := []int{}
	for _, m := range p.orbit.Maneuvers {
		for k := 1; k < len(dates); k++ {
			if maneuverInStep(m, dates[k-1], dates[k]) {
				boundaries = append(boundaries, k)
				break
			}
		}
	}

	cfg := dopri.DefaultConfig()
	cfg.TryStep = p.Step.Seconds()
	cfg.AbsError = p.Tol
	integrator, err := dopri.New(cfg)
	if err != nil {
		return nil, err
	}

	var accelErr error
	dydx := func(x float64, y, f []float64) {
		date := dates[0].Add(time.Duration(dir * x * float64(time.Second)))
		acc, err := p.accel(date, y)
		if err != nil {
			accelErr = err
			acc = make([]float64, 6)
		}
		copy(f, scale6(dir, acc))
	}

	from := 0
	for from < len(dates)-1 {
		to := len(dates) - 1
		for _, b := range boundaries {
			if b > from && b < to {
				to = b
			}
		}
		xs := make([]float64, to-from+1)
		for i := range xs {
			xs[i] = τ(from + i)
		}
		values, _, err := integrator.Compute(dydx, y, xs)
		if err != nil {
			return nil, err
		}
		if accelErr != nil {
			return nil, accelErr
		}
		for i := 1; i < len(xs); i++ {
			yk := append([]float64(nil), values[i*6:(i+1)*6]...)
			yk = p.applyManeuvers(yk, dates[from+i-1], dates[from+i])
			sv, err := p.sample(dates[from+i], yk)
			if err != nil {
				return nil, err
			}
			samples = append(samples, sv)
			y = yk
		}
		from = to
	}
	return samples, nil
}

// Propagate implements the Propagator interface. The state is interpolated
// off the internal fixed-step ephemeris.
func (p *KeplerNum) Propagate(date time.Time) (*StateVector, error) {
	eph, err := p.ephemTo(date, date)
	if err != nil {
		return nil, err
	}
	sv, err := eph.Interpolate(date)
	if err != nil {
		return nil, err
	}
	sv.Propagator = p
	return sv, nil
}

// ephemTo integrates far enough to cover both dates and wraps the samples in
// an interpolating ephemeris.
func (p *KeplerNum) ephemTo(first, last time.Time) (*Ephem, error) {
	if p.orbit == nil {
		return nil, DomainError{"keplernum", "no bound orbit"}
	}
	start := p.orbit.Date()
	samples, err := p.arc(last)
	if err != nil {
		return nil, err
	}
	if (first.Before(start) && last.After(start)) || (first.After(start) && last.Before(start)) {
		// The requested dates straddle the epoch, integrate the other side
		// too.
		other, err := p.arc(first)
		if err != nil {
			return nil, err
		}
		samples = append(samples, other[1:]...)
	}
	return NewEphem(p.env, samples, InterpLagrange)
}

// Iter implements the Propagator interface. The default output step is the
// integration step.
func (p *KeplerNum) Iter(opts PropagationOptions) (*Stream, error) {
	dates, err := opts.dates(p.orbit, p.Step)
	if err != nil {
		return nil, err
	}
	eph, err := p.ephemTo(dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}
	stream, err := eph.Iter(PropagationOptions{Dates: dates, Listeners: opts.Listeners})
	if err != nil {
		return nil, err
	}
	return &Stream{next: func() (*StateVector, error) {
		sv, err := stream.Next()
		if sv != nil {
			sv.Propagator = p
		}
		return sv, err
	}}, nil
}
