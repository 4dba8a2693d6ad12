package orbital

import (
	"fmt"
	"time"
)

// StateVector is the position of something at a date: six coordinates, the
// form they are expressed in and the frame they are expressed against. When
// produced by a propagator, it also carries that propagator so the orbit can
// be queried at other dates, and the event which triggered it, if any.
type StateVector struct {
	Propagator Propagator
	Event      *Event
	Maneuvers  []Maneuver

	env   *Environment
	date  time.Time
	coord []float64
	form  *Form
	frame *Frame
}

// NewStateVector creates a state vector. The coordinate slice is copied.
func NewStateVector(env *Environment, date time.Time, coord []float64, form *Form, frame *Frame) (*StateVector, error) {
	if len(coord) != 6 {
		return nil, VectorError{6, len(coord)}
	}
	return &StateVector{env: env, date: date, coord: append([]float64(nil), coord...), form: form, frame: frame}, nil
}

// Date returns the epoch of this state.
func (s *StateVector) Date() time.Time {
	return s.date
}

// Coord returns a copy of the six coordinates in the current form.
func (s *StateVector) Coord() []float64 {
	return append([]float64(nil), s.coord...)
}

// Form returns the current coordinate form.
func (s *StateVector) Form() *Form {
	return s.form
}

// Frame returns the current frame.
func (s *StateVector) Frame() *Frame {
	return s.frame
}

// Env returns the environment this state is bound to.
func (s *StateVector) Env() *Environment {
	return s.env
}

// Copy returns an independent copy sharing the propagator binding.
func (s *StateVector) Copy() *StateVector {
	c := *s
	c.coord = append([]float64(nil), s.coord...)
	c.Maneuvers = append([]Maneuver(nil), s.Maneuvers...)
	return &c
}

// Cartesian returns the coordinates converted to the cartesian form, without
// changing this state.
func (s *StateVector) Cartesian() ([]float64, error) {
	return ConvertForm(s.coord, s.frame.Center.GM(), s.form, Cartesian)
}

// ToForm returns a copy of this state expressed in another form.
func (s *StateVector) ToForm(form *Form) (*StateVector, error) {
	coord, err := ConvertForm(s.coord, s.frame.Center.GM(), s.form, form)
	if err != nil {
		return nil, err
	}
	c := s.Copy()
	c.coord = coord
	c.form = form
	return c, nil
}

// ToFrame returns a copy of this state expressed in another frame, keeping
// the form. The transformation itself happens on the cartesian coordinates.
func (s *StateVector) ToFrame(frame *Frame) (*StateVector, error) {
	cart, err := s.Cartesian()
	if err != nil {
		return nil, err
	}
	moved, err := s.env.Frames.Transform(s.date, cart, s.frame, frame)
	if err != nil {
		return nil, err
	}
	coord, err := ConvertForm(moved, frame.Center.GM(), Cartesian, s.form)
	if err != nil {
		return nil, err
	}
	c := s.Copy()
	c.coord = coord
	c.frame = frame
	return c, nil
}

// SetForm converts this state to another form, in place. The date, frame and
// propagator binding are untouched.
func (s *StateVector) SetForm(form *Form) error {
	conv, err := s.ToForm(form)
	if err != nil {
		return err
	}
	s.coord, s.form = conv.coord, conv.form
	return nil
}

// SetFrame re-expresses this state in another frame, in place, keeping the
// form. The re-derivation happens on the cartesian coordinates.
func (s *StateVector) SetFrame(frame *Frame) error {
	moved, err := s.ToFrame(frame)
	if err != nil {
		return err
	}
	s.coord, s.frame = moved.coord, moved.frame
	return nil
}

// To returns a copy of this state in another frame and form.
func (s *StateVector) To(frame *Frame, form *Form) (*StateVector, error) {
	moved, err := s.ToFrame(frame)
	if err != nil {
		return nil, err
	}
	return moved.ToForm(form)
}

// Component returns a single coordinate by name. ASCII aliases of the greek
// component names are accepted ("raan" for Ω, "nu" for ν, and so on).
func (s *StateVector) Component(name string) (float64, error) {
	if alias, ok := paramAliases[name]; ok {
		name = alias
	}
	for i, param := range s.form.Params {
		if param == name {
			return s.coord[i], nil
		}
	}
	return 0, UnknownFormError{s.form.Name + "." + name}
}

// At returns the state of the bound orbit at another date, through the
// propagator which produced this state.
func (s *StateVector) At(date time.Time) (*StateVector, error) {
	if s.Propagator == nil {
		return nil, UnknownPropagatorError{"<unbound>"}
	}
	return s.Propagator.Propagate(date)
}

// String implements the Stringer interface.
func (s *StateVector) String() string {
	return fmt.Sprintf("State[%s, %s]@%s %v", s.frame.Name, s.form.Name, s.date.Format(time.RFC3339Nano), s.coord)
}
