package orbital

import "fmt"

// UnknownFrameError is returned when a frame name cannot be resolved by the
// registry.
type UnknownFrameError struct {
	Name string
}

func (e UnknownFrameError) Error() string {
	return fmt.Sprintf("unknown frame '%s'", e.Name)
}

// UnknownFormError is returned when a form name cannot be resolved.
type UnknownFormError struct {
	Name string
}

func (e UnknownFormError) Error() string {
	return fmt.Sprintf("unknown form '%s'", e.Name)
}

// UnknownBodyError is returned when a celestial body name cannot be resolved.
type UnknownBodyError struct {
	Name string
}

func (e UnknownBodyError) Error() string {
	return fmt.Sprintf("unknown body '%s'", e.Name)
}

// UnknownPropagatorError is returned when a propagator name cannot be resolved.
type UnknownPropagatorError struct {
	Name string
}

func (e UnknownPropagatorError) Error() string {
	return fmt.Sprintf("unknown propagator '%s'", e.Name)
}

// NoPathError is returned when two registered frames (or forms) are not
// connected in their graph.
type NoPathError struct {
	From, To string
}

func (e NoPathError) Error() string {
	return fmt.Sprintf("no path from '%s' to '%s'", e.From, e.To)
}

// UnknownTransformError is returned when neither direction of an edge between
// two adjacent frames is implemented.
type UnknownTransformError struct {
	From, To string
}

func (e UnknownTransformError) Error() string {
	return fmt.Sprintf("no transform implemented between '%s' and '%s'", e.From, e.To)
}

// ConvergenceError is returned when a bounded iterative solve (Kepler
// equation, adaptive step size) exceeds its iteration cap.
type ConvergenceError struct {
	What       string
	Iterations int
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge after %d iterations", e.What, e.Iterations)
}

// RootNotFoundError is returned when the event bisection cannot locate a
// zero-crossing within its iteration cap.
type RootNotFoundError struct {
	Listener   string
	Iterations int
}

func (e RootNotFoundError) Error() string {
	return fmt.Sprintf("no root found for %s after %d bisections", e.Listener, e.Iterations)
}

// OutOfRangeError is returned when a date falls outside the covered span of
// an ephemeris or data table.
type OutOfRangeError struct {
	What string
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: %s", e.What)
}

// VectorError is returned on malformed state input (wrong vector length).
type VectorError struct {
	Want, Got int
}

func (e VectorError) Error() string {
	return fmt.Sprintf("state vector should be %d in length, got %d", e.Want, e.Got)
}

// DomainError is returned when an orbit falls outside the validity domain of
// an analytical propagator.
type DomainError struct {
	Propagator, Reason string
}

func (e DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Propagator, e.Reason)
}
