package orbital

import (
	"math"
	"time"
)

// Maneuver is an impulsive velocity change. The Δv is expressed either in
// the QSW or TNW local orbital frame of the state it applies to, or directly
// in the integration frame when Local is empty. Numerical propagators apply
// it at the integration step containing its date.
type Maneuver struct {
	Date    time.Time
	Δv      []float64
	Local   string
	Comment string
}

// NewManeuver creates an impulsive maneuver. The Δv must have 3 components
// and the local frame must be "QSW", "TNW" or empty.
func NewManeuver(date time.Time, Δv []float64, local string) (Maneuver, error) {
	if len(Δv) != 3 {
		return Maneuver{}, VectorError{3, len(Δv)}
	}
	switch local {
	case "QSW", "TNW", "":
	default:
		return Maneuver{}, UnknownFrameError{local}
	}
	return Maneuver{Date: date, Δv: append([]float64(nil), Δv...), Local: local}, nil
}

// frameΔv expresses the Δv in the integration frame, given the cartesian
// state the impulse applies to.
func (m Maneuver) frameΔv(cart []float64) []float64 {
	switch m.Local {
	case "QSW":
		return MxV33(Transpose33(ToQSW(cart)), m.Δv)
	case "TNW":
		return MxV33(Transpose33(ToTNW(cart)), m.Δv)
	default:
		return append([]float64(nil), m.Δv...)
	}
}

// Hohmann computes a Hohmann transfer between two circular radii about a
// body. It returns the velocity on the transfer ellipse at departure and
// arrival, and the time of flight. The impulses follow as the difference
// with the circular velocities at each radius.
func Hohmann(rI, rF float64, body CelestialObject) (vDeparture, vArrival float64, tof time.Duration) {
	aTransfer := 0.5 * (rI + rF)
	vDeparture = math.Sqrt((2 * body.GM() / rI) - (body.GM() / aTransfer))
	vArrival = math.Sqrt((2 * body.GM() / rF) - (body.GM() / aTransfer))
	tof = time.Duration(math.Pi * math.Sqrt(math.Pow(aTransfer, 3)/body.GM()) * float64(time.Second))
	return
}

// HohmannΔv returns the two impulse magnitudes of a Hohmann transfer, both
// tangential, as TNW maneuvers would apply them.
func HohmannΔv(rI, rF float64, body CelestialObject) (Δv1, Δv2 float64, tof time.Duration) {
	vDeparture, vArrival, tof := Hohmann(rI, rF, body)
	Δv1 = vDeparture - math.Sqrt(body.GM()/rI)
	Δv2 = math.Sqrt(body.GM()/rF) - vArrival
	return
}
