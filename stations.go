package orbital

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

// Station is a ground station: a topocentric frame on the WGS84 ellipsoid
// plus the measurement machinery. The topocentric spherical convention is
// (range, azimuth, elevation): the X axis points north, so the azimuth runs
// counterclockwise from north.
type Station struct {
	Name          string
	Frame         *Frame
	Lat, Lon, Alt float64
	// MinElev is the elevation below which the station does not see, in
	// radians.
	MinElev float64
	// Coordinates is the cartesian position in the parent rotating frame.
	Coordinates []float64

	rangeNoise, rangeRateNoise *distmv.Normal
	env                        *Environment
}

// geodeticToCartesian places a geodetic point on the ellipsoid (Vallado
// p. 144). Latitude and longitude in radians, altitude in meters.
func geodeticToCartesian(lat, lon, alt float64) []float64 {
	e2 := Earth.Flattening * (2 - Earth.Flattening)
	sLat, cLat := math.Sincos(lat)
	sLon, cLon := math.Sincos(lon)
	c := Earth.Radius / math.Sqrt(1-e2*sLat*sLat)
	s := Earth.Radius * (1 - e2) / math.Sqrt(1-e2*sLat*sLat)
	rd := (c + alt) * cLat
	rk := (s + alt) * sLat
	r := math.Hypot(rd, rk)
	return []float64{r * cLat * cLon, r * cLat * sLon, r * sLat, 0, 0, 0}
}

// CreateStation registers a topocentric frame for a ground station and
// returns the station. Latitude and longitude in radians, altitude in
// meters above sea level.
func CreateStation(env *Environment, name string, lat, lon, alt float64) (*Station, error) {
	parent, err := env.Frames.Get("WGS84")
	if err != nil {
		return nil, err
	}
	coordinates := geodeticToCartesian(lat, lon, alt)

	// the trailing R3(pi) places the X axis along the north direction
	rot := MxM33(MxM33(R3(-lon), R2(lat-math.Pi/2)), R3(math.Pi))

	frame := NewFrame(name, Earth, true)
	frame.AddEdge(parent, func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error) {
		return rot, coordinates, nil
	})
	env.Frames.Register(frame)

	return &Station{Name: name, Frame: frame, Lat: lat, Lon: lon, Alt: alt,
		Coordinates: coordinates, env: env}, nil
}

func (s *Station) String() string {
	return fmt.Sprintf("%s (%.4f, %.4f) alt %.1f m", s.Name, Rad2deg(s.Lat), Rad2deg(s.Lon), s.Alt)
}

// SetNoise installs gaussian noise on the range and range-rate measurements,
// from their variances.
func (s *Station) SetNoise(σρ, σρDot float64) {
	seed := rand.New(rand.NewSource(time.Now().UnixNano()))
	ρNoise, ok := distmv.NewNormal([]float64{0}, mat64.NewSymDense(1, []float64{σρ}), seed)
	if !ok {
		panic("NOK in Gaussian")
	}
	ρDotNoise, ok := distmv.NewNormal([]float64{0}, mat64.NewSymDense(1, []float64{σρDot}), seed)
	if !ok {
		panic("NOK in Gaussian")
	}
	s.rangeNoise, s.rangeRateNoise = ρNoise, ρDotNoise
}

// Visibility iterates a propagation as seen from the station: every in-view
// point, re-expressed in the station frame in spherical form. With events
// enabled, the AOS, LOS and max-elevation points of each pass are detected
// and interleaved, and the AOS/LOS points are yielded even though they sit
// at the elevation threshold.
func (s *Station) Visibility(orbit *StateVector, opts PropagationOptions, events bool) (*Stream, error) {
	if orbit.Propagator == nil {
		return nil, UnknownPropagatorError{"<unbound>"}
	}
	if events {
		opts.Listeners = append(opts.Listeners, StationListeners(s)...)
	}
	stream, err := orbit.Propagator.Iter(opts)
	if err != nil {
		return nil, err
	}
	return &Stream{next: func() (*StateVector, error) {
		for {
			sv, err := stream.Next()
			if err != nil || sv == nil {
				return nil, err
			}
			point, err := sv.To(s.Frame, Spherical)
			if err != nil {
				return nil, err
			}
			point.Event = sv.Event
			if point.Coord()[2] < 0 && !s.ownEvent(point.Event) {
				continue
			}
			return point, nil
		}
	}}, nil
}

// ownEvent reports whether an event belongs to this station's listeners.
func (s *Station) ownEvent(event *Event) bool {
	if event == nil {
		return false
	}
	return event.Listener == "signal "+s.Name || event.Listener == "max "+s.Name
}

// Measurement is a range and range-rate observation of a state from a
// station, with and without noise.
type Measurement struct {
	Visible                  bool
	Range, RangeRate         float64
	TrueRange, TrueRangeRate float64
	Date                     time.Time
	Station                  *Station
	State                    *StateVector
}

// Measure observes a state from the station. The measurement carries the
// noiseless values alongside the noisy ones, and whether the state was above
// the station's minimum elevation.
func (s *Station) Measure(sv *StateVector) (Measurement, error) {
	local, err := sv.To(s.Frame, Cartesian)
	if err != nil {
		return Measurement{}, err
	}
	coord := local.Coord()
	ρ := norm(coord[:3])
	ρDot := (coord[0]*coord[3] + coord[1]*coord[4] + coord[2]*coord[5]) / ρ
	el := math.Asin(coord[2] / ρ)

	m := Measurement{
		Visible: el >= s.MinElev,
		Range:   ρ, RangeRate: ρDot,
		TrueRange: ρ, TrueRangeRate: ρDot,
		Date: sv.Date(), Station: s, State: sv,
	}
	if s.rangeNoise != nil {
		m.Range += s.rangeNoise.Rand(nil)[0]
		m.RangeRate += s.rangeRateNoise.Rand(nil)[0]
	}
	return m, nil
}

// StateVector returns the observation as a 2x1 vector.
func (m Measurement) StateVector() *mat64.Vector {
	return mat64.NewVector(2, []float64{m.Range, m.RangeRate})
}

// HTilde returns the 2x6 partials of the observation with respect to the
// observed cartesian state, in the frame of that state.
func (m Measurement) HTilde() (*mat64.Dense, error) {
	station, err := m.Station.env.Frames.Transform(m.Date, make([]float64, 6), m.Station.Frame, m.State.Frame())
	if err != nil {
		return nil, err
	}
	cart, err := m.State.Cartesian()
	if err != nil {
		return nil, err
	}
	H := mat64.NewDense(2, 6, nil)
	for i := 0; i < 3; i++ {
		dr := cart[i] - station[i]
		dv := cart[3+i] - station[3+i]
		H.Set(0, i, dr/m.TrueRange)
		H.Set(1, i, dv/m.TrueRange-(m.TrueRangeRate/(m.TrueRange*m.TrueRange))*dr)
		H.Set(1, i+3, dr/m.TrueRange)
	}
	return H, nil
}
