package orbital

import (
	"time"

	"github.com/soniakeys/meeus/julian"
)

const (
	// J2000 julian date of the J2000 epoch (2000-01-01T12:00:00 TT).
	J2000 = 2451545.0
	// MJDOffset is the offset between julian date and modified julian date.
	MJDOffset = 2400000.5

	secondsPerDay     = 86400.0
	julianCenturyDays = 36525.0

	// TTMinusTAI is the fixed offset between Terrestrial Time and TAI.
	TTMinusTAI = 32.184
)

// JD returns the julian date of a given time, in the scale of the time itself.
func JD(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// MJD returns the modified julian date of a given time.
func MJD(t time.Time) float64 {
	return JD(t) - MJDOffset
}

// julianCenturyTT returns the number of julian centuries since J2000 in the
// Terrestrial Time scale, for a UTC time and its associated Earth orientation
// data (TAI-UTC offset).
func julianCenturyTT(t time.Time, eop Eop) float64 {
	jd := JD(t) + (eop.TaiUtc+TTMinusTAI)/secondsPerDay
	return (jd - J2000) / julianCenturyDays
}

// julianCenturyUT1 returns the number of julian centuries since J2000 in the
// UT1 scale.
func julianCenturyUT1(t time.Time, eop Eop) float64 {
	return (jdUT1(t, eop) - J2000) / julianCenturyDays
}

// jdUT1 returns the julian date in the UT1 scale.
func jdUT1(t time.Time, eop Eop) float64 {
	return JD(t) + eop.Ut1Utc/secondsPerDay
}

// DateRange generates the dates between start and stop separated by step.
// The stop date is included only when inclusive is set, mirroring the
// behavior of the built-in range over integers. A negative step iterates
// backward, in which case start must be after stop.
func DateRange(start, stop time.Time, step time.Duration, inclusive bool) ([]time.Time, error) {
	if step == 0 {
		return nil, DomainError{"date range", "null step"}
	}
	if sign(float64(stop.Sub(start))) != sign(float64(step)) && !start.Equal(stop) {
		return nil, DomainError{"date range", "start/stop order not coherent with step"}
	}

	in := func(date time.Time) bool {
		if step > 0 {
			if inclusive {
				return !date.After(stop)
			}
			return date.Before(stop)
		}
		if inclusive {
			return !date.Before(stop)
		}
		return date.After(stop)
	}

	var dates []time.Time
	for date := start; in(date); date = date.Add(step) {
		dates = append(dates, date)
	}
	return dates, nil
}
