package orbital

import (
	"math"
	"time"

	"github.com/gonum/matrix/mat64"
)

// The CIO-based chain (ITRF-TIRF-CIRF-GCRF) follows the IAU 2010 conventions.
// The CIP coordinates below keep the polynomial part of the development plus
// the dominant periodic terms; the truncation drops the frame bias and the
// sub-milliarcsecond series, so GCRF coincides with EME2000 at that level.

// cipTerm is one periodic term of the X/Y/s developments: sine and cosine
// amplitudes in micro-arcseconds and the multipliers of the lunisolar
// arguments (l, l', F, D, Ω).
type cipTerm struct {
	s, c            float64
	l, lp, f, d, om float64
}

var cipXSeries = []cipTerm{
	{-6844318.44, 1328.67, 0, 0, 0, 0, 1},
	{-523908.04, -544.75, 0, 0, 2, -2, 2},
	{-90552.22, 111.23, 0, 0, 2, 0, 2},
	{82168.76, -27.64, 0, 0, 0, 0, 2},
	{58707.02, 470.05, 0, 1, 0, 0, 0},
	{28288.28, -34.69, 1, 0, 0, 0, 0},
	{-20557.78, -20.84, 0, 1, 2, -2, 2},
	{-15406.85, 15.12, 0, 0, 2, 0, 1},
}

var cipYSeries = []cipTerm{
	{1538.18, 9205236.26, 0, 0, 0, 0, 1},
	{-458.66, 573033.42, 0, 0, 2, -2, 2},
	{137.41, 97846.69, 0, 0, 2, 0, 2},
	{-29.05, -89618.24, 0, 0, 0, 0, 2},
	{-17.40, 22438.42, 0, 1, 0, 0, 0},
	{31.80, 20069.50, 0, 0, 0, 0, 3},
	{36.70, 12902.66, 0, 1, 2, -2, 2},
	{-13.20, -9592.72, 0, 0, 2, 0, 1},
}

var cipSSeries = []cipTerm{
	{-2640.73, 0.39, 0, 0, 0, 0, 1},
	{-63.53, 0.02, 0, 0, 0, 0, 2},
	{-11.75, -0.01, 0, 0, 2, -2, 3},
	{-11.21, -0.01, 0, 0, 2, -2, 1},
}

// cipSum accumulates one series in micro-arcseconds.
func cipSum(series []cipTerm, ttt float64) float64 {
	mm, ms, umm, ds, om := delaunay1980(ttt)
	// Delaunay arguments in radians
	mm *= deg2rad
	ms *= deg2rad
	umm *= deg2rad
	ds *= deg2rad
	om *= deg2rad

	var total float64
	for _, t := range series {
		ap := t.l*mm + t.lp*ms + t.f*umm + t.d*ds + t.om*om
		total += t.s*math.Sin(ap) + t.c*math.Cos(ap)
	}
	return total
}

// cipXYS returns the CIP coordinates X and Y, and the CIO locator s, in
// radians, with the dX/dY corrections from the Earth orientation data.
func cipXYS(date time.Time, eop Eop) (x, y, s float64) {
	ttt := julianCenturyTT(date, eop)

	// Polynomial parts in micro-arcseconds.
	x = -16616.99 + 2004191742.88*ttt - 427219.05*ttt*ttt - 198620.54*ttt*ttt*ttt -
		46.05*math.Pow(ttt, 4) + 5.98*math.Pow(ttt, 5)
	y = -6950.78 - 25381.99*ttt - 22407250.99*ttt*ttt + 1842.28*ttt*ttt*ttt +
		1113.06*math.Pow(ttt, 4) + 0.99*math.Pow(ttt, 5)
	sxy2 := 94.0 + 3808.65*ttt - 122.68*ttt*ttt - 72574.11*ttt*ttt*ttt +
		27.98*math.Pow(ttt, 4) + 15.62*math.Pow(ttt, 5)

	x += cipSum(cipXSeries, ttt)
	y += cipSum(cipYSeries, ttt)
	sxy2 += cipSum(cipSSeries, ttt)

	// micro-arcsecond to arcsecond, plus corrections in milliarcseconds
	xAs := x*1e-6 + eop.Dx/1000.0
	yAs := y*1e-6 + eop.Dy/1000.0
	sAs := sxy2 * 1e-6

	x = xAs / 3600.0 * deg2rad
	y = yAs / 3600.0 * deg2rad
	s = sAs/3600.0*deg2rad - x*y/2
	return
}

// precessionNutation2010Matrix is the CIRF to GCRF rotation.
func precessionNutation2010Matrix(date time.Time, eop Eop) *mat64.Dense {
	x, y, s := cipXYS(date, eop)

	d := math.Atan(math.Sqrt((x*x + y*y) / (1 - x*x - y*y)))
	a := 1 / (1 + math.Cos(d))

	m := mat64.NewDense(3, 3, []float64{
		1 - a*x*x, -a * x * y, x,
		-a * x * y, 1 - a*y*y, y,
		-x, -y, 1 - a*(x*x+y*y)})
	return MxM33(m, R3(s))
}

// era2010 is the Earth rotation angle in radians.
func era2010(date time.Time, eop Eop) float64 {
	jd := jdUT1(date, eop)
	return 2 * math.Pi * (0.779057273264 + 1.00273781191135448*(jd-J2000))
}

// sideral2010Matrix is the TIRF to CIRF rotation.
func sideral2010Matrix(date time.Time, eop Eop) *mat64.Dense {
	return R3(-era2010(date, eop))
}

// poleMotion2010Matrix is the ITRF to TIRF rotation, including the TIO
// locator s'.
func poleMotion2010Matrix(date time.Time, eop Eop) *mat64.Dense {
	ttt := julianCenturyTT(date, eop)
	sPrime := -0.000047 * ttt / 3600.0 * deg2rad
	xp := eop.X / 3600.0 * deg2rad
	yp := eop.Y / 3600.0 * deg2rad
	return MxM33(MxM33(R3(-sPrime), R2(xp)), R1(yp))
}
