package orbital

import (
	"sort"
	"time"
)

// Interpolation methods of an Ephem.
const (
	InterpLinear   = "linear"
	InterpLagrange = "lagrange"
)

// DefaultInterpOrder is the Lagrange interpolation order.
const DefaultInterpOrder = 8

// Ephem is a time-ordered sequence of states supporting interpolation at any
// date within its span. All states must share a frame and a form when
// interpolating: blending coordinates expressed against different frames is
// meaningless, so callers unify first.
type Ephem struct {
	env    *Environment
	states []*StateVector
	// Method is InterpLinear or InterpLagrange.
	Method string
	// Order applies to the Lagrange method.
	Order int
}

// NewEphem builds an ephemeris from at least two states, sorted by date.
func NewEphem(env *Environment, states []*StateVector, method string) (*Ephem, error) {
	if len(states) < 2 {
		return nil, DomainError{"ephem", "at least two states are needed"}
	}
	sorted := append([]*StateVector(nil), states...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date().Before(sorted[j].Date()) })
	return &Ephem{env: env, states: sorted, Method: method, Order: DefaultInterpOrder}, nil
}

// Start returns the first covered date.
func (e *Ephem) Start() time.Time { return e.states[0].Date() }

// Stop returns the last covered date.
func (e *Ephem) Stop() time.Time { return e.states[len(e.states)-1].Date() }

// States returns the underlying samples, in date order.
func (e *Ephem) States() []*StateVector { return e.states }

// SetFrame re-expresses every sample in the given frame.
func (e *Ephem) SetFrame(frame *Frame) error {
	for i, sv := range e.states {
		moved, err := sv.ToFrame(frame)
		if err != nil {
			return err
		}
		e.states[i] = moved
	}
	return nil
}

// SetForm re-expresses every sample in the given form.
func (e *Ephem) SetForm(form *Form) error {
	for i, sv := range e.states {
		moved, err := sv.ToForm(form)
		if err != nil {
			return err
		}
		e.states[i] = moved
	}
	return nil
}

// homogeneous verifies the common frame/form invariant of interpolation.
func (e *Ephem) homogeneous() error {
	frame, form := e.states[0].Frame(), e.states[0].Form()
	for _, sv := range e.states[1:] {
		if sv.Frame() != frame || sv.Form() != form {
			return DomainError{"ephem", "interpolation needs a single frame and form, call SetFrame/SetForm first"}
		}
	}
	return nil
}

// Interpolate returns the state at any date within the covered span.
func (e *Ephem) Interpolate(date time.Time) (*StateVector, error) {
	if date.Before(e.Start()) || date.After(e.Stop()) {
		return nil, OutOfRangeError{"date " + date.Format(time.RFC3339Nano)}
	}
	if err := e.homogeneous(); err != nil {
		return nil, err
	}

	// index of the last sample at or before the date
	prev := sort.Search(len(e.states), func(i int) bool {
		return e.states[i].Date().After(date)
	}) - 1
	if prev == len(e.states)-1 {
		prev--
	}

	var coord []float64
	switch e.Method {
	case InterpLinear:
		y0, y1 := e.states[prev], e.states[prev+1]
		span := y1.Date().Sub(y0.Date()).Seconds()
		t := date.Sub(y0.Date()).Seconds() / span
		coord = add6(y0.Coord(), scale6(t, sub6(y1.Coord(), y0.Coord())))
	case InterpLagrange:
		coord = e.lagrange(date, prev)
	default:
		return nil, DomainError{"ephem", "unknown interpolation method '" + e.Method + "'"}
	}

	sv, err := NewStateVector(e.env, date, coord, e.states[0].Form(), e.states[0].Frame())
	if err != nil {
		return nil, err
	}
	return sv, nil
}

// lagrange evaluates the Lagrange polynomial over a window of samples
// centered on the bracketing pair, clamped to the ephemeris bounds.
func (e *Ephem) lagrange(date time.Time, prev int) []float64 {
	order := e.Order
	if order <= 0 {
		order = DefaultInterpOrder
	}
	start := prev - order/2 + 1
	stop := prev + 1 + order/2 + order%2
	if start < 0 {
		stop -= start
		start = 0
	}
	if stop > len(e.states) {
		start -= stop - len(e.states)
		stop = len(e.states)
	}
	if start < 0 {
		start = 0
	}
	window := e.states[start:stop]

	// abscissas in seconds from the window start
	xs := make([]float64, len(window))
	for i, sv := range window {
		xs[i] = sv.Date().Sub(window[0].Date()).Seconds()
	}
	x := date.Sub(window[0].Date()).Seconds()

	coord := make([]float64, 6)
	for i, sv := range window {
		li := 1.0
		for j := range window {
			if j == i {
				continue
			}
			li *= (x - xs[j]) / (xs[i] - xs[j])
		}
		coord = add6(coord, scale6(li, sv.Coord()))
	}
	return coord
}

// Iter lazily produces interpolated states over a date range or list, with
// listener support. Start, stop and step default to the covered span and the
// environment step.
func (e *Ephem) Iter(opts PropagationOptions) (*Stream, error) {
	if opts.Dates == nil {
		if opts.Start.IsZero() {
			opts.Start = e.Start()
		}
		if opts.Stop.IsZero() && opts.Until == 0 {
			opts.Stop = e.Stop()
		}
	}
	dates, err := opts.dates(e.states[0], e.env.DefaultStep)
	if err != nil {
		return nil, err
	}
	i := 0
	base := &Stream{next: func() (*StateVector, error) {
		if i >= len(dates) {
			return nil, nil
		}
		sv, err := e.Interpolate(dates[i])
		if err != nil {
			return nil, err
		}
		i++
		return sv, nil
	}}
	return listen(base, e.Interpolate, opts.Listeners), nil
}

// Ephem materializes a subset or resampling of this ephemeris as a new one,
// keeping the interpolation settings.
func (e *Ephem) Ephem(opts PropagationOptions) (*Ephem, error) {
	stream, err := e.Iter(opts)
	if err != nil {
		return nil, err
	}
	states, err := stream.All()
	if err != nil {
		return nil, err
	}
	sub, err := NewEphem(e.env, states, e.Method)
	if err != nil {
		return nil, err
	}
	sub.Order = e.Order
	return sub, nil
}
