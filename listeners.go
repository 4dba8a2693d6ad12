package orbital

import (
	"fmt"
	"math"
)

// spherical re-expresses a state in the spherical form, optionally in
// another frame first.
func spherical(sv *StateVector, frame *Frame) ([]float64, error) {
	if frame != nil && sv.Frame() != frame {
		moved, err := sv.To(frame, Spherical)
		if err != nil {
			return nil, err
		}
		return moved.Coord(), nil
	}
	moved, err := sv.ToForm(Spherical)
	if err != nil {
		return nil, err
	}
	return moved.Coord(), nil
}

// NodeListener detects ascending and descending node crossings: the zero
// crossings of the latitude, in the given frame or the state's own when nil.
type NodeListener struct {
	Frame *Frame
}

// Name implements the Listener interface.
func (l NodeListener) Name() string { return "node" }

// Measure implements the Listener interface.
func (l NodeListener) Measure(sv *StateVector) (float64, error) {
	coord, err := spherical(sv, l.Frame)
	if err != nil {
		return 0, err
	}
	return coord[2], nil
}

// Info implements the Listener interface.
func (l NodeListener) Info(prev, cross *StateVector) (Event, error) {
	coord, err := spherical(cross, l.Frame)
	if err != nil {
		return Event{}, err
	}
	info := "Asc Node"
	if coord[5] < 0 {
		info = "Desc Node"
	}
	return Event{Listener: l.Name(), Date: cross.Date(), Info: info}, nil
}

// ApsideListener detects periapsis and apoapsis passages: the zero crossings
// of the radial velocity.
type ApsideListener struct {
	Frame *Frame
}

// Name implements the Listener interface.
func (l ApsideListener) Name() string { return "apside" }

// Measure implements the Listener interface.
func (l ApsideListener) Measure(sv *StateVector) (float64, error) {
	coord, err := spherical(sv, l.Frame)
	if err != nil {
		return 0, err
	}
	return coord[3], nil
}

// Info implements the Listener interface.
func (l ApsideListener) Info(prev, cross *StateVector) (Event, error) {
	fPrev, err := l.Measure(prev)
	if err != nil {
		return Event{}, err
	}
	fCross, err := l.Measure(cross)
	if err != nil {
		return Event{}, err
	}
	info := "Apoapsis"
	if fCross > fPrev {
		info = "Periapsis"
	}
	return Event{Listener: l.Name(), Date: cross.Date(), Info: info}, nil
}

// StationSignalListener detects the AOS and LOS of a station: the crossings
// of the given elevation, zero by default, in the station's topocentric
// frame.
type StationSignalListener struct {
	Station *Station
	Elev    float64
}

// Name implements the Listener interface.
func (l StationSignalListener) Name() string { return "signal " + l.Station.Name }

// Measure implements the Listener interface.
func (l StationSignalListener) Measure(sv *StateVector) (float64, error) {
	coord, err := spherical(sv, l.Station.Frame)
	if err != nil {
		return 0, err
	}
	return coord[2] - l.Elev, nil
}

// Info implements the Listener interface.
func (l StationSignalListener) Info(prev, cross *StateVector) (Event, error) {
	coord, err := spherical(cross, l.Station.Frame)
	if err != nil {
		return Event{}, err
	}
	info := "AOS"
	if coord[5] <= 0 {
		info = "LOS"
	}
	return Event{Listener: l.Name(), Date: cross.Date(), Info: info}, nil
}

// StationMaxListener detects the maximum elevation of a pass: the zero
// crossings of the elevation rate, only watched while the object is in view
// and culminating.
type StationMaxListener struct {
	Station *Station
}

// Name implements the Listener interface.
func (l StationMaxListener) Name() string { return "max " + l.Station.Name }

// Measure implements the Listener interface.
func (l StationMaxListener) Measure(sv *StateVector) (float64, error) {
	coord, err := spherical(sv, l.Station.Frame)
	if err != nil {
		return 0, err
	}
	return coord[5], nil
}

// Active implements the activeChecker interface: out of view, or while
// still rising, there is no culmination to look for.
func (l StationMaxListener) Active(sv *StateVector) (bool, error) {
	coord, err := spherical(sv, l.Station.Frame)
	if err != nil {
		return false, err
	}
	return coord[2] > 0 && coord[5] <= 0, nil
}

// Info implements the Listener interface.
func (l StationMaxListener) Info(prev, cross *StateVector) (Event, error) {
	return Event{Listener: l.Name(), Date: cross.Date(), Info: "Max"}, nil
}

// AnomalyListener detects the passage at a given anomaly. The anomaly kind
// is "true", "mean", "eccentric" or "aol" for the argument of latitude.
type AnomalyListener struct {
	Value   float64
	Anomaly string
	Frame   *Frame
}

func (l AnomalyListener) form() (*Form, int, error) {
	switch l.Anomaly {
	case "true", "":
		return Keplerian, 5, nil
	case "mean":
		return KeplerianMean, 5, nil
	case "eccentric":
		return KeplerianEccentric, 5, nil
	case "aol":
		return KeplerianCircular, 5, nil
	default:
		return nil, 0, UnknownFormError{l.Anomaly}
	}
}

func (l AnomalyListener) anomaly(sv *StateVector) (float64, error) {
	form, idx, err := l.form()
	if err != nil {
		return 0, err
	}
	if l.Frame != nil && sv.Frame() != l.Frame {
		if sv, err = sv.ToFrame(l.Frame); err != nil {
			return 0, err
		}
	}
	moved, err := sv.ToForm(form)
	if err != nil {
		return 0, err
	}
	return moved.Coord()[idx], nil
}

// Name implements the Listener interface.
func (l AnomalyListener) Name() string { return "anomaly" }

// Measure implements the Listener interface.
func (l AnomalyListener) Measure(sv *StateVector) (float64, error) {
	anomaly, err := l.anomaly(sv)
	if err != nil {
		return 0, err
	}
	return math.Mod(anomaly-l.Value+3*math.Pi, 2*math.Pi) - math.Pi, nil
}

// Active implements the activeChecker interface: the angle difference wraps,
// so crossings are only watched close to the target value.
func (l AnomalyListener) Active(sv *StateVector) (bool, error) {
	diff, err := l.Measure(sv)
	if err != nil {
		return false, err
	}
	return math.Abs(diff) < 2, nil
}

// Info implements the Listener interface.
func (l AnomalyListener) Info(prev, cross *StateVector) (Event, error) {
	anomaly, err := l.anomaly(cross)
	if err != nil {
		return Event{}, err
	}
	kind := l.Anomaly
	if kind == "" {
		kind = "true"
	}
	return Event{Listener: l.Name(), Date: cross.Date(),
		Info: fmt.Sprintf("%s anomaly = %.2f", kind, Rad2deg(anomaly))}, nil
}

// StationListeners returns the listeners every visibility search uses for a
// station: signal rise/set at the station's minimum elevation, and the pass
// culmination.
func StationListeners(station *Station) []Listener {
	return []Listener{
		StationSignalListener{Station: station, Elev: station.MinElev},
		StationMaxListener{Station: station},
	}
}
