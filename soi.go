package orbital

import (
	"time"
)

// SOINumerical wraps KeplerNum with sphere-of-influence switching: at every
// produced sample the active body is re-evaluated, and when the spacecraft
// enters (or leaves) an alternate body's SOI the integration is rebuilt
// around that body: its frame, its configured step, a force model reduced to
// that body alone, restarting from the transition sample so the output has
// no duplicated nor missing date.
type SOINumerical struct {
	env        *Environment
	central    CelestialObject
	alternates []CelestialObject
	active     CelestialObject
	inner      *KeplerNum
	orbit      *StateVector

	// CentralStep drives the integration inside the central body's SOI,
	// AltStep inside an alternate body's.
	CentralStep, AltStep time.Duration
	Method               string
	// OutFrame, when set, re-expresses every produced state.
	OutFrame *Frame
}

// NewSOINumerical returns an unbound switching propagator around a central
// body and its alternates. Alternate bodies must carry an SOI radius.
func NewSOINumerical(env *Environment, central CelestialObject, centralStep, altStep time.Duration, method string, alternates ...CelestialObject) (*SOINumerical, error) {
	for _, body := range alternates {
		if body.SOI <= 0 {
			return nil, DomainError{"soi", "body " + body.Name + " has no SOI radius"}
		}
		if _, err := env.BodyFrame(body); err != nil {
			return nil, err
		}
	}
	if _, err := env.BodyFrame(central); err != nil {
		return nil, err
	}
	return &SOINumerical{env: env, central: central, alternates: alternates,
		CentralStep: centralStep, AltStep: altStep, Method: method}, nil
}

// Active returns the body whose SOI currently drives the integration.
func (p *SOINumerical) Active() CelestialObject { return p.active }

// Orbit implements the Propagator interface.
func (p *SOINumerical) Orbit() *StateVector { return p.orbit }

// soiCheck returns the first alternate body whose SOI contains the state,
// else the central body.
func (p *SOINumerical) soiCheck(sv *StateVector) (CelestialObject, error) {
	for _, body := range p.alternates {
		frame, err := p.env.Frames.Get(body.Name)
		if err != nil {
			return CelestialObject{}, err
		}
		local, err := sv.To(frame, Spherical)
		if err != nil {
			return CelestialObject{}, err
		}
		if local.Coord()[0] < body.SOI {
			return body, nil
		}
	}
	return p.central, nil
}

// rebind configures the inner propagator around a body and re-expresses the
// orbit in its frame.
func (p *SOINumerical) rebind(body CelestialObject, orbit *StateVector) error {
	frame, err := p.env.Frames.Get(body.Name)
	if err != nil {
		return err
	}
	step := p.CentralStep
	if body.Name != p.central.Name {
		step = p.AltStep
	}
	inner, err := NewKeplerNum(p.env, step, p.Method, frame, body)
	if err != nil {
		return err
	}
	if err = inner.SetOrbit(orbit); err != nil {
		return err
	}
	p.active = body
	p.inner = inner
	p.orbit = inner.Orbit()
	return nil
}

// SetOrbit implements the Propagator interface. Binding selects the SOI the
// orbit starts in.
func (p *SOINumerical) SetOrbit(orbit *StateVector) error {
	body, err := p.soiCheck(orbit)
	if err != nil {
		return err
	}
	if err = p.rebind(body, orbit); err != nil {
		return err
	}
	orbit.Propagator = p
	return nil
}

// outbound re-expresses a produced state in the output frame, if set.
func (p *SOINumerical) outbound(sv *StateVector) (*StateVector, error) {
	if p.OutFrame == nil || sv.Frame() == p.OutFrame {
		return sv, nil
	}
	moved, err := sv.ToFrame(p.OutFrame)
	if err != nil {
		return nil, err
	}
	moved.Propagator = sv.Propagator
	moved.Event = sv.Event
	return moved, nil
}

// Propagate implements the Propagator interface.
func (p *SOINumerical) Propagate(date time.Time) (*StateVector, error) {
	stream, err := p.Iter(PropagationOptions{Dates: []time.Time{date}})
	if err != nil {
		return nil, err
	}
	sv, err := stream.Next()
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, OutOfRangeError{"date " + date.Format(time.RFC3339)}
	}
	return sv, nil
}

// Iter implements the Propagator interface. Listeners run on the produced
// samples across switches.
func (p *SOINumerical) Iter(opts PropagationOptions) (*Stream, error) {
	if p.inner == nil {
		return nil, DomainError{"soi", "no bound orbit"}
	}
	dates, err := opts.dates(p.orbit, p.inner.Step)
	if err != nil {
		return nil, err
	}

	i := 0
	var inner *Stream
	base := &Stream{next: func() (*StateVector, error) {
		if i >= len(dates) {
			return nil, nil
		}
		if inner == nil {
			if inner, err = p.inner.Iter(PropagationOptions{Dates: dates[i:]}); err != nil {
				return nil, err
			}
		}
		sv, err := inner.Next()
		if err != nil {
			return nil, err
		}
		if sv == nil {
			return nil, OutOfRangeError{"date " + dates[i].Format(time.RFC3339)}
		}
		i++

		body, err := p.soiCheck(sv)
		if err != nil {
			return nil, err
		}
		if body.Name != p.active.Name {
			p.env.Logger.Log("level", "info", "subsys", "soi", "switch", body.Name, "date", sv.Date().Format(time.RFC3339))
			if err = p.rebind(body, sv); err != nil {
				return nil, err
			}
			// The transition sample seeds the next segment, the stream
			// resumes at the following date.
			inner = nil
		}
		return p.outbound(sv)
	}}

	propagate := func(date time.Time) (*StateVector, error) {
		sv, err := p.inner.Propagate(date)
		if err != nil {
			return nil, err
		}
		return p.outbound(sv)
	}
	return listen(base, propagate, opts.Listeners), nil
}
