package orbital

import (
	"math"
	"time"

	"github.com/gonum/matrix/mat64"
)

// earthRotationRate is the nominal Earth rotation rate in rad/s, before the
// length-of-day correction.
const earthRotationRate = 7.292115146706979e-5

// nutation1980Term is one row of the IAU 1980 nutation series: the five
// multipliers of the Delaunay arguments (l, l', F, D, Ω) and the sine/cosine
// coefficients A, B, C, D in units of 1e-4 arcsecond.
type nutation1980Term struct {
	l, lp, f, d, om float64
	a, b, c, dd     float64
}

// nutation1980 holds the leading terms of the 1980 nutation theory, sorted
// by decreasing magnitude. The full series has 106 terms; the truncation
// below keeps every term above 0.01 arcsecond, which bounds the error to a
// few milliarcseconds.
var nutation1980 = []nutation1980Term{
	{0, 0, 0, 0, 1, -171996, -174.2, 92025, 8.9},
	{0, 0, 2, -2, 2, -13187, -1.6, 5736, -3.1},
	{0, 0, 2, 0, 2, -2274, -0.2, 977, -0.5},
	{0, 0, 0, 0, 2, 2062, 0.2, -895, 0.5},
	{0, 1, 0, 0, 0, 1426, -3.4, 54, -0.1},
	{1, 0, 0, 0, 0, 712, 0.1, -7, 0},
	{0, 1, 2, -2, 2, -517, 1.2, 224, -0.6},
	{0, 0, 2, 0, 1, -386, -0.4, 200, 0},
	{1, 0, 2, 0, 2, -301, 0, 129, -0.1},
	{0, -1, 2, -2, 2, 217, -0.5, -95, 0.3},
	{1, 0, 0, -2, 0, -158, 0, -1, 0},
	{0, 0, 2, -2, 1, 129, 0.1, -70, 0},
	{-1, 0, 2, 0, 2, 123, 0, -53, 0},
	{1, 0, 0, 0, 1, 63, 0.1, -33, 0},
	{0, 0, 0, 2, 0, 63, 0, -2, 0},
	{-1, 0, 2, 2, 2, -59, 0, 26, 0},
	{-1, 0, 0, 0, 1, -58, -0.1, 32, 0},
	{1, 0, 2, 0, 1, -51, 0, 27, 0},
	{0, 0, 2, 2, 2, -38, 0, 16, 0},
	{2, 0, 2, 0, 2, -31, 0, 13, 0},
}

// delaunay1980 returns the Delaunay arguments in degrees for a TT julian
// century count (Vallado p. 224).
func delaunay1980(ttt float64) (mm, ms, umm, ds, om float64) {
	const r = 360.0

	// mean anomaly of the moon
	mm = 134.96298139 + (1325*r+198.8673981)*ttt + 0.0086972*ttt*ttt + 1.78e-5*ttt*ttt*ttt
	// mean anomaly of the sun
	ms = 357.52772333 + (99*r+359.0503400)*ttt - 0.0001603*ttt*ttt - 3.3e-6*ttt*ttt*ttt
	// L - Omega
	umm = 93.27191028 + (1342*r+82.0175381)*ttt - 0.0036825*ttt*ttt + 3.1e-6*ttt*ttt*ttt
	// mean elongation of the moon from the sun
	ds = 297.85036306 + (1236*r+307.11148)*ttt - 0.0019142*ttt*ttt + 5.3e-6*ttt*ttt*ttt
	// mean longitude of the ascending node of the moon
	om = 125.04452222 - (5*r+134.1362608)*ttt + 0.0020708*ttt*ttt + 2.2e-6*ttt*ttt*ttt
	return
}

// nutation1980Angles returns the mean obliquity, nutation in longitude and
// nutation in obliquity, all in degrees. The eopCorrection flag folds in the
// dψ/dε corrections from the Earth orientation data.
func nutation1980Angles(date time.Time, eop Eop, eopCorrection bool, terms int) (epsilonBar, deltaPsi, deltaEps float64) {
	ttt := julianCenturyTT(date, eop)

	// in arcseconds, then degrees
	epsilonBar = 84381.448 - 46.8150*ttt - 5.9e-4*ttt*ttt + 1.813e-3*ttt*ttt*ttt
	epsilonBar /= 3600.0

	mm, ms, umm, ds, om := delaunay1980(ttt)

	if terms <= 0 || terms > len(nutation1980) {
		terms = len(nutation1980)
	}
	for _, t := range nutation1980[:terms] {
		ap := t.l*mm + t.lp*ms + t.f*umm + t.d*ds + t.om*om
		deltaPsi += (t.a + t.b*ttt) * math.Sin(ap*deg2rad) / 36000000.0
		deltaEps += (t.c + t.dd*ttt) * math.Cos(ap*deg2rad) / 36000000.0
	}

	if eopCorrection {
		deltaPsi += eop.Dpsi / 3600000.0
		deltaEps += eop.Deps / 3600000.0
	}
	return
}

// nutation1980Matrix is the TOD to MOD rotation.
func nutation1980Matrix(date time.Time, eop Eop, eopCorrection bool) *mat64.Dense {
	epsilonBar, deltaPsi, deltaEps := nutation1980Angles(date, eop, eopCorrection, 0)
	epsilon := epsilonBar + deltaEps
	return MxM33(MxM33(R1(-epsilonBar*deg2rad), R3(deltaPsi*deg2rad)), R1(epsilon*deg2rad))
}

// precession1980Angles returns the precession angles zeta, theta and z in
// degrees for a date.
func precession1980Angles(date time.Time, eop Eop) (zeta, theta, z float64) {
	t := julianCenturyTT(date, eop)
	zeta = (2306.2181*t + 0.30188*t*t + 0.017998*t*t*t) / 3600.0
	theta = (2004.3109*t - 0.42665*t*t - 0.041833*t*t*t) / 3600.0
	z = (2306.2181*t + 1.09468*t*t + 0.018203*t*t*t) / 3600.0
	return
}

// precession1980Matrix is the MOD to EME2000 rotation.
func precession1980Matrix(date time.Time, eop Eop) *mat64.Dense {
	zeta, theta, z := precession1980Angles(date, eop)
	return MxM33(MxM33(R3(zeta*deg2rad), R2(-theta*deg2rad)), R3(z*deg2rad))
}

// equinox1980 is the equation of the equinoxes in degrees.
func equinox1980(date time.Time, eop Eop, eopCorrection bool, terms int, kinematic bool) float64 {
	epsilonBar, deltaPsi, _ := nutation1980Angles(date, eop, eopCorrection, terms)

	equin := deltaPsi * 3600.0 * math.Cos(epsilonBar*deg2rad)

	if kinematic && MJD(date) >= 50506 {
		// Starting 1992-02-27, the effect of the moon is applied.
		ttt := julianCenturyTT(date, eop)
		om := 125.04455501 - (5*360.0+134.1361851)*ttt + 0.0020756*ttt*ttt + 2.139e-6*ttt*ttt*ttt
		equin += 0.00264*math.Sin(om*deg2rad) + 6.3e-5*math.Sin(2*om*deg2rad)
	}

	return equin / 3600.0
}

// sideral1980 returns the sideral time in degrees. The model is "mean" for
// GMST, "apparent" for GAST.
func sideral1980(date time.Time, eop Eop, model string, eopCorrection bool) float64 {
	t := julianCenturyUT1(date, eop)

	// GMST in seconds of time
	theta := 67310.54841 + (876600*3600+8640184.812866)*t + 0.093104*t*t - 6.2e-6*t*t*t

	// seconds of time to degrees
	theta /= 240.0

	if model == "apparent" {
		theta += equinox1980(date, eop, eopCorrection, 0, true)
	}

	theta = math.Mod(theta, 360.0)
	if theta < 0 {
		theta += 360.0
	}
	return theta
}

// sideral1980Matrix is the PEF to TOD rotation.
func sideral1980Matrix(date time.Time, eop Eop, model string, eopCorrection bool) *mat64.Dense {
	return R3(-sideral1980(date, eop, model, eopCorrection) * deg2rad)
}

// earthRotationVector is the instantaneous rotation rate vector of the Earth,
// expressed in the pseudo-inertial frame, corrected for length of day.
func earthRotationVector(eop Eop) []float64 {
	lod := eop.Lod / 1000.0
	return []float64{0, 0, earthRotationRate * (1 - lod/secondsPerDay)}
}

// poleMotion1980Matrix is the ITRF to PEF rotation.
func poleMotion1980Matrix(eop Eop) *mat64.Dense {
	xp := eop.X / 3600.0 * deg2rad
	yp := eop.Y / 3600.0 * deg2rad
	return MxM33(R1(yp), R2(xp))
}
