package orbital

import (
	"math"
	"sort"
	"time"
)

// Propagator computes the state of a bound orbit at other dates. Analytical
// propagators are pure functions of the date; numerical propagators step an
// integrator and must not be shared across concurrent runs.
type Propagator interface {
	// Orbit returns the bound reference orbit.
	Orbit() *StateVector
	// SetOrbit binds a reference orbit, converting it to whatever internal
	// representation the propagator works in.
	SetOrbit(orbit *StateVector) error
	// Propagate returns the state at the given date.
	Propagate(date time.Time) (*StateVector, error)
	// Iter lazily produces the states over a date range or list.
	Iter(opts PropagationOptions) (*Stream, error)
}

// PropagationOptions configures one call to Iter. Zero values inherit their
// defaults from the bound orbit: Start defaults to the orbit date, Step to
// the environment default, and Stop may be given relative through Until.
// When Start is after Stop with a positive step, the step is negated, so
// callers never pre-negate for backward propagation. Dates, when set, wins
// over the range specification.
type PropagationOptions struct {
	Start, Stop time.Time
	Until       time.Duration
	Step        time.Duration
	Dates       []time.Time
	Inclusive   bool
	Listeners   []Listener
}

// dates resolves the options into the concrete list of dates to visit.
func (opts PropagationOptions) dates(orbit *StateVector, defaultStep time.Duration) ([]time.Time, error) {
	if opts.Dates != nil {
		return opts.Dates, nil
	}
	start := opts.Start
	if start.IsZero() {
		if orbit == nil {
			return nil, DomainError{"iter", "no start date and no bound orbit"}
		}
		start = orbit.Date()
	}
	stop := opts.Stop
	if stop.IsZero() {
		if opts.Until == 0 {
			return nil, DomainError{"iter", "no stop date"}
		}
		stop = start.Add(opts.Until)
	}
	step := opts.Step
	if step == 0 {
		step = defaultStep
	}
	if stop.Before(start) && step > 0 {
		step = -step
	}
	return DateRange(start, stop, step, opts.Inclusive)
}

// Stream is a lazy, finite sequence of states. Next returns nil, nil once
// exhausted. Abandoning a stream early needs no cleanup.
type Stream struct {
	next func() (*StateVector, error)
}

// Next returns the following state of the sequence.
func (s *Stream) Next() (*StateVector, error) {
	return s.next()
}

// All drains the stream.
func (s *Stream) All() ([]*StateVector, error) {
	var states []*StateVector
	for {
		sv, err := s.Next()
		if err != nil {
			return nil, err
		}
		if sv == nil {
			return states, nil
		}
		states = append(states, sv)
	}
}

// streamOf wraps a pre-materialized list.
func streamOf(states []*StateVector) *Stream {
	i := 0
	return &Stream{next: func() (*StateVector, error) {
		if i >= len(states) {
			return nil, nil
		}
		sv := states[i]
		i++
		return sv, nil
	}}
}

/* Listener engine */

// Event marks a detected crossing: which listener fired, when, and a short
// qualifier such as "Asc", "Periapsis" or "AOS".
type Event struct {
	Listener string
	Date     time.Time
	Info     string
}

// Listener maps a state to a signed scalar whose zero crossings are the
// events to detect.
type Listener interface {
	// Name tags the emitted events.
	Name() string
	// Measure is the signed scalar.
	Measure(sv *StateVector) (float64, error)
	// Info classifies a crossing from the state before it and the state at
	// the crossing.
	Info(prev, cross *StateVector) (Event, error)
}

// activeChecker gates listeners whose measure is only meaningful in some
// region, such as the max-elevation listener which only applies in view.
type activeChecker interface {
	Active(sv *StateVector) (bool, error)
}

const (
	// bisectionTol is how closely crossings are located in mission time.
	bisectionTol = time.Millisecond
	// bisectionMaxIter caps the search before RootNotFoundError.
	bisectionMaxIter = 60
)

// speaker runs the listeners over a propagated sequence, interleaving the
// located crossings with the regular samples. The previous values live here,
// never on the listeners, so reusing a listener across runs is safe.
type speaker struct {
	propagate func(date time.Time) (*StateVector, error)
	listeners []Listener
	prev      *StateVector
	measures  []float64
}

func newSpeaker(propagate func(date time.Time) (*StateVector, error), listeners []Listener) *speaker {
	return &speaker{propagate: propagate, listeners: listeners, measures: make([]float64, len(listeners))}
}

// bisect locates the crossing of one listener between two dates bracketing a
// sign change.
func (sp *speaker) bisect(lst Listener, lo, hi time.Time, fLo float64) (*StateVector, error) {
	for i := 0; i < bisectionMaxIter; i++ {
		if hi.Sub(lo) < bisectionTol && lo.Sub(hi) < bisectionTol {
			cross, err := sp.propagate(hi)
			if err != nil {
				return nil, err
			}
			return cross, nil
		}
		mid := lo.Add(hi.Sub(lo) / 2)
		sv, err := sp.propagate(mid)
		if err != nil {
			return nil, err
		}
		fMid, err := lst.Measure(sv)
		if err != nil {
			return nil, err
		}
		if (fLo <= 0) == (fMid <= 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return nil, RootNotFoundError{lst.Name(), bisectionMaxIter}
}

// feed processes one regular sample and returns the states to emit: the
// crossings located since the previous sample, sorted by date, then the
// sample itself.
func (sp *speaker) feed(sv *StateVector) ([]*StateVector, error) {
	out := []*StateVector{}
	measures := make([]float64, len(sp.listeners))
	for i, lst := range sp.listeners {
		f, err := lst.Measure(sv)
		if err != nil {
			return nil, err
		}
		measures[i] = f
		if sp.prev == nil {
			continue
		}
		if checker, gated := lst.(activeChecker); gated {
			active, err := checker.Active(sv)
			if err != nil {
				return nil, err
			}
			if !active {
				continue
			}
		}
		if (sp.measures[i] <= 0) == (f <= 0) {
			continue
		}
		lo, hi := sp.prev.Date(), sv.Date()
		cross, err := sp.bisect(lst, lo, hi, sp.measures[i])
		if err != nil {
			return nil, err
		}
		event, err := lst.Info(sp.prev, cross)
		if err != nil {
			return nil, err
		}
		cross = cross.Copy()
		cross.Event = &event
		out = append(out, cross)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date().Before(out[j].Date()) })
	sp.prev, sp.measures = sv, measures
	return append(out, sv), nil
}

// listen wraps a stream with the listener engine. Without listeners the
// stream passes through untouched.
func listen(base *Stream, propagate func(date time.Time) (*StateVector, error), listeners []Listener) *Stream {
	if len(listeners) == 0 {
		return base
	}
	sp := newSpeaker(propagate, listeners)
	var queue []*StateVector
	return &Stream{next: func() (*StateVector, error) {
		for len(queue) == 0 {
			sv, err := base.Next()
			if err != nil {
				return nil, err
			}
			if sv == nil {
				return nil, nil
			}
			if queue, err = sp.feed(sv); err != nil {
				return nil, err
			}
		}
		sv := queue[0]
		queue = queue[1:]
		return sv, nil
	}}
}

// analyticalIter builds the Iter behavior shared by every propagator whose
// Propagate is a pure function of the date.
func analyticalIter(p Propagator, env *Environment, opts PropagationOptions) (*Stream, error) {
	dates, err := opts.dates(p.Orbit(), env.DefaultStep)
	if err != nil {
		return nil, err
	}
	i := 0
	base := &Stream{next: func() (*StateVector, error) {
		if i >= len(dates) {
			return nil, nil
		}
		sv, err := p.Propagate(dates[i])
		if err != nil {
			return nil, err
		}
		i++
		return sv, nil
	}}
	return listen(base, p.Propagate, opts.Listeners), nil
}

/* Two-body analytical propagator */

// Kepler is the two-body analytical propagator: the mean anomaly advances
// linearly at the mean motion, every other element stays.
type Kepler struct {
	env   *Environment
	orbit *StateVector
	mean  []float64
	n     float64
}

// NewKepler returns an unbound two-body propagator.
func NewKepler(env *Environment) *Kepler {
	return &Kepler{env: env}
}

// Orbit implements the Propagator interface.
func (p *Kepler) Orbit() *StateVector { return p.orbit }

// SetOrbit implements the Propagator interface.
func (p *Kepler) SetOrbit(orbit *StateVector) error {
	mean, err := orbit.ToForm(KeplerianMean)
	if err != nil {
		return err
	}
	p.orbit = orbit
	p.mean = mean.Coord()
	p.n = meanMotion(orbit.Frame().Center.GM(), p.mean[0])
	orbit.Propagator = p
	return nil
}

// Propagate implements the Propagator interface. The output is cartesian, in
// the frame of the bound orbit.
func (p *Kepler) Propagate(date time.Time) (*StateVector, error) {
	if p.orbit == nil {
		return nil, DomainError{"kepler", "no bound orbit"}
	}
	Δt := date.Sub(p.orbit.Date()).Seconds()
	coord := append([]float64(nil), p.mean...)
	coord[5] = mod2pi(coord[5] + p.n*Δt)
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
func (p *Kepler) Iter(opts PropagationOptions) (*Stream, error) {
	return analyticalIter(p, p.env, opts)
}

// meanMotion in rad/s for a semi-major axis in meters.
func meanMotion(μ, a float64) float64 {
	return math.Sqrt(μ / (a * a * a))
}

/* Body center pseudo-propagator */

// BodyCenter pins the center of a celestial body: the state is always zero
// in the body's own frame. It makes bodies usable wherever a propagator is
// expected, such as SOI candidates or frame anchors.
type BodyCenter struct {
	env   *Environment
	body  CelestialObject
	frame *Frame
}

// NewBodyCenter builds (and registers, if needed) the body's frame.
func NewBodyCenter(env *Environment, body CelestialObject) (*BodyCenter, error) {
	frame, err := env.BodyFrame(body)
	if err != nil {
		return nil, err
	}
	return &BodyCenter{env: env, body: body, frame: frame}, nil
}

// Orbit implements the Propagator interface.
func (p *BodyCenter) Orbit() *StateVector {
	sv, _ := p.Propagate(time.Time{})
	return sv
}

// SetOrbit implements the Propagator interface. The body is the orbit.
func (p *BodyCenter) SetOrbit(orbit *StateVector) error { return nil }

// Propagate implements the Propagator interface.
func (p *BodyCenter) Propagate(date time.Time) (*StateVector, error) {
	sv, err := NewStateVector(p.env, date, make([]float64, 6), Cartesian, p.frame)
	if err != nil {
		return nil, err
	}
	sv.Propagator = p
	return sv, nil
}

// Iter implements the Propagator interface.
func (p *BodyCenter) Iter(opts PropagationOptions) (*Stream, error) {
	return analyticalIter(p, p.env, opts)
}
