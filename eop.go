package orbital

import (
	"time"

	"github.com/go-kit/kit/log"
)

// Eop holds the Earth orientation data for a single date: pole coordinates
// and their corrections (arcseconds, except dψ/dε/dX/dY in milliarcseconds),
// length of day (milliseconds) and time scale offsets (seconds).
type Eop struct {
	X, Y       float64
	Dpsi, Deps float64
	Dx, Dy     float64
	Lod        float64
	Ut1Utc     float64
	TaiUtc     float64
}

// EopProvider supplies Earth orientation data for a date given as a modified
// julian date. File parsing of IERS products sits outside this package; any
// source implementing this interface can back the frame transforms.
type EopProvider interface {
	Eop(mjd float64) (Eop, error)
	// Span returns the covered MJD range, used by the extrapolate policy.
	Span() (first, last float64)
}

// MissingPolicy selects the behavior when Earth orientation data is missing
// for a requested date.
type MissingPolicy string

const (
	// PolicyPass silently uses zero values.
	PolicyPass MissingPolicy = "pass"
	// PolicyExtrapolate reuses the closest covered date.
	PolicyExtrapolate MissingPolicy = "extrapolate"
	// PolicyWarn logs a warning and uses zero values.
	PolicyWarn MissingPolicy = "warn"
	// PolicyError fails the transform.
	PolicyError MissingPolicy = "error"
)

// NullEop is an EopProvider with no data. Combined with PolicyPass it yields
// the uncorrected IAU models, which is accurate to a few tens of meters in
// low Earth orbit.
type NullEop struct{}

// Eop implements EopProvider.
func (NullEop) Eop(mjd float64) (Eop, error) {
	return Eop{}, OutOfRangeError{"EOP data"}
}

// Span implements EopProvider.
func (NullEop) Span() (float64, float64) { return 0, 0 }

// eopService applies the configured missing-data policy on top of a provider.
type eopService struct {
	provider EopProvider
	policy   MissingPolicy
	logger   log.Logger
}

func (s *eopService) get(date time.Time) (Eop, error) {
	mjd := MJD(date)
	eop, err := s.provider.Eop(mjd)
	if err == nil {
		return eop, nil
	}

	switch s.policy {
	case PolicyExtrapolate:
		first, last := s.provider.Span()
		closest := first
		if mjd > last {
			closest = last
		}
		if eop, err = s.provider.Eop(closest); err == nil {
			return eop, nil
		}
		// No data at all, same as pass.
		return Eop{}, nil
	case PolicyWarn:
		s.logger.Log("level", "warning", "subsys", "eop", "missing", mjd)
		return Eop{}, nil
	case PolicyError:
		return Eop{}, err
	default:
		return Eop{}, nil
	}
}
