package orbital

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat64.Dense, v []float64) (o []float64) {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// MxM33 multiplies two 3x3 matrices.
func MxM33(a, b *mat64.Dense) *mat64.Dense {
	var m mat64.Dense
	m.Mul(a, b)
	return &m
}

// MxV66 applies the same 3x3 rotation to the position and velocity halves of
// a 6-vector.
func MxV66(m *mat64.Dense, v []float64) []float64 {
	r := MxV33(m, v[:3])
	w := MxV33(m, v[3:])
	return []float64{r[0], r[1], r[2], w[0], w[1], w[2]}
}

// Transpose33 returns the transpose, which for a rotation matrix is its
// inverse.
func Transpose33(m *mat64.Dense) *mat64.Dense {
	var t mat64.Dense
	t.Clone(m.T())
	return &t
}

// ToQSW returns the rotation matrix from the inertial frame to the QSW local
// orbital frame (x along the position vector, z along angular momentum).
// The frame is sometimes called RSW or LVLH.
func ToQSW(cart []float64) *mat64.Dense {
	r, v := cart[:3], cart[3:]
	q := unit(r)
	w := unit(cross(r, v))
	s := cross(w, q)
	return mat64.NewDense(3, 3, []float64{
		q[0], q[1], q[2],
		s[0], s[1], s[2],
		w[0], w[1], w[2]})
}

// ToTNW returns the rotation matrix from the inertial frame to the TNW local
// orbital frame (x along the velocity vector, z along angular momentum).
func ToTNW(cart []float64) *mat64.Dense {
	r, v := cart[:3], cart[3:]
	t := unit(v)
	w := unit(cross(r, v))
	n := cross(w, t)
	return mat64.NewDense(3, 3, []float64{
		t[0], t[1], t[2],
		n[0], n[1], n[2],
		w[0], w[1], w[2]})
}
