package orbital

import (
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TLE holds the parsed fields of a two-line element set. Angles are radians,
// the mean motion is rad/s. Parsing covers the fixed-column layout the SGP4
// propagator needs, not a general TLE toolkit.
type TLE struct {
	Name         string
	Line1, Line2 string
	Norad        int
	Epoch        time.Time
	// i, Ω, e, ω, M, n
	I, Ω, E, ω, M, N float64
	Bstar            float64
}

// ParseTLE parses the two lines of an element set. Both lines must be 69
// columns with a valid modulo-10 checksum.
func ParseTLE(line1, line2 string) (*TLE, error) {
	line1, line2 = strings.TrimRight(line1, "\r\n"), strings.TrimRight(line2, "\r\n")
	for lineNo, line := range []string{line1, line2} {
		if len(line) != 69 {
			return nil, DomainError{"tle", "line " + strconv.Itoa(lineNo+1) + " is not 69 columns"}
		}
		if line[0] != byte('1'+lineNo) {
			return nil, DomainError{"tle", "line " + strconv.Itoa(lineNo+1) + " has the wrong line number"}
		}
		if tleChecksum(line[:68]) != int(line[68]-'0') {
			return nil, DomainError{"tle", "line " + strconv.Itoa(lineNo+1) + " checksum mismatch"}
		}
	}

	tle := &TLE{Line1: line1, Line2: line2}
	var err error
	if tle.Norad, err = strconv.Atoi(strings.TrimSpace(line1[2:7])); err != nil {
		return nil, DomainError{"tle", "unreadable catalog number"}
	}
	if tle.Epoch, err = tleEpoch(line1[18:32]); err != nil {
		return nil, err
	}
	if tle.Bstar, err = tleAssumedDecimal(line1[53:61]); err != nil {
		return nil, err
	}

	fields := []struct {
		raw  string
		dst  *float64
		unit float64
	}{
		{line2[8:16], &tle.I, deg2rad},
		{line2[17:25], &tle.Ω, deg2rad},
		{"." + strings.TrimSpace(line2[26:33]), &tle.E, 1},
		{line2[34:42], &tle.ω, deg2rad},
		{line2[43:51], &tle.M, deg2rad},
		{line2[52:63], &tle.N, 2 * math.Pi / secondsPerDay},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return nil, DomainError{"tle", "unreadable element field"}
		}
		*f.dst = v * f.unit
	}
	return tle, nil
}

// tleChecksum sums the digits of a line, counting minus signs as one.
func tleChecksum(line string) int {
	sum := 0
	for _, c := range line {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// tleEpoch decodes the YYDDD.DDDDDDDD epoch field. Years below 57 are in the
// 2000s, the rest in the 1900s.
func tleEpoch(field string) (time.Time, error) {
	yy, err := strconv.Atoi(strings.TrimSpace(field[:2]))
	if err != nil {
		return time.Time{}, DomainError{"tle", "unreadable epoch year"}
	}
	year := 1900 + yy
	if yy < 57 {
		year = 2000 + yy
	}
	doy, err := strconv.ParseFloat(strings.TrimSpace(field[2:]), 64)
	if err != nil {
		return time.Time{}, DomainError{"tle", "unreadable epoch day"}
	}
	jan1 := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return jan1.Add(time.Duration((doy - 1) * float64(24*time.Hour))), nil
}

// tleAssumedDecimal decodes the " 12345-6" notation of the bstar and nddot
// fields, where both the leading decimal point and the exponent marker are
// implied.
func tleAssumedDecimal(field string) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}
	mantissa := field
	exponent := 0
	if cut := strings.LastIndexAny(field, "+-"); cut > 0 {
		var err error
		if exponent, err = strconv.Atoi(field[cut:]); err != nil {
			return 0, DomainError{"tle", "unreadable exponent field"}
		}
		mantissa = field[:cut]
	}
	v, err := strconv.ParseFloat(strings.Replace(mantissa, " ", "", -1), 64)
	if err != nil {
		return 0, DomainError{"tle", "unreadable mantissa field"}
	}
	// implied decimal point before the mantissa
	for v != 0 && math.Abs(v) >= 1 {
		v /= 10
	}
	return v * math.Pow(10, float64(exponent)), nil
}

// Orbit returns the raw element set as a state vector in the TLE form, in
// TEME, at the element epoch.
func (t *TLE) Orbit(env *Environment) (*StateVector, error) {
	frame, err := env.Frames.Get("TEME")
	if err != nil {
		return nil, err
	}
	return NewStateVector(env, t.Epoch, []float64{t.I, t.Ω, t.E, t.ω, t.M, t.N}, TLEForm, frame)
}

// SGP4 is the analytical propagator evaluating a TLE through the full SGP4
// model, in TEME. The TLE to cartesian conversion is one-directional: there
// is no closed form back from a cartesian state to an element set, so the
// propagator binds its TLE at construction and rejects SetOrbit.
type SGP4 struct {
	env   *Environment
	tle   *TLE
	sat   satellite.Satellite
	frame *Frame
	orbit *StateVector
}

// NewSGP4 initializes the SGP4 model from a parsed TLE.
func NewSGP4(env *Environment, tle *TLE) (*SGP4, error) {
	sat := satellite.TLEToSat(tle.Line1, tle.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, DomainError{"sgp4", "model initialization failed: " + sat.ErrorStr}
	}
	frame, err := env.Frames.Get("TEME")
	if err != nil {
		return nil, err
	}
	orbit, err := tle.Orbit(env)
	if err != nil {
		return nil, err
	}
	p := &SGP4{env: env, tle: tle, sat: sat, frame: frame, orbit: orbit}
	orbit.Propagator = p
	return p, nil
}

// Orbit implements the Propagator interface.
func (p *SGP4) Orbit() *StateVector { return p.orbit }

// SetOrbit implements the Propagator interface. It always fails: the model
// only runs off the TLE given at construction.
func (p *SGP4) SetOrbit(orbit *StateVector) error {
	return DomainError{"sgp4", "the element set is bound at construction"}
}

// eval runs the model at a whole UTC second.
func (p *SGP4) eval(utc time.Time) ([]float64, error) {
	pos, vel := satellite.Propagate(p.sat, utc.Year(), int(utc.Month()), utc.Day(),
		utc.Hour(), utc.Minute(), utc.Second())
	coord := []float64{pos.X * 1e3, pos.Y * 1e3, pos.Z * 1e3, vel.X * 1e3, vel.Y * 1e3, vel.Z * 1e3}
	for _, v := range coord {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, DomainError{"sgp4", "model diverged at " + utc.Format(time.RFC3339)}
		}
	}
	return coord, nil
}

// Propagate implements the Propagator interface. The output is cartesian, in
// TEME, in meters and meters per second. The underlying model only takes
// whole seconds, so sub-second dates blend the two bracketing evaluations
// using their velocities.
func (p *SGP4) Propagate(date time.Time) (*StateVector, error) {
	utc := date.UTC()
	floor := utc.Truncate(time.Second)
	coord, err := p.eval(floor)
	if err != nil {
		return nil, err
	}
	if τ := utc.Sub(floor).Seconds(); τ > 0 {
		next, err := p.eval(floor.Add(time.Second))
		if err != nil {
			return nil, err
		}
		for i := 0; i < 3; i++ {
			Δv := next[3+i] - coord[3+i]
			coord[i] += coord[3+i]*τ + 0.5*Δv*τ*τ
			coord[3+i] += Δv * τ
		}
	}
	sv, err := NewStateVector(p.env, date, coord, Cartesian, p.frame)
	if err != nil {
		return nil, err
	}
	sv.Propagator = p
	return sv, nil
}

// Iter implements the Propagator interface.
func (p *SGP4) Iter(opts PropagationOptions) (*Stream, error) {
	return analyticalIter(p, p.env, opts)
}
