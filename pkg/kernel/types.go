package kernel

import (
	"fmt"
	"math"
)

// Point3D is a point in model (or sketch) space.
type Point3D struct {
	X, Y, Z float64
}

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Length returns the distance of p from the origin.
func (p Point3D) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Matrix3D is a row-major 4x4 affine transform.
type Matrix3D [16]float64

// Identity returns the identity transform.
func Identity() Matrix3D {
	return Matrix3D{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// CoordinateSystem returns the transform that maps the unit axes onto
// x, y, z and the origin onto origin.
func CoordinateSystem(origin, x, y, z Point3D) Matrix3D {
	return Matrix3D{
		x.X, y.X, z.X, origin.X,
		x.Y, y.Y, z.Y, origin.Y,
		x.Z, y.Z, z.Z, origin.Z,
		0, 0, 0, 1,
	}
}

// Apply transforms p.
func (m Matrix3D) Apply(p Point3D) Point3D {
	return Point3D{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// Mul returns m * n.
func (m Matrix3D) Mul(n Matrix3D) Matrix3D {
	var r Matrix3D
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i*4+k] * n[k*4+j]
			}
			r[i*4+j] = sum
		}
	}
	return r
}

// RigidInverse returns the inverse of a transform whose upper 3x3 block is
// orthonormal. Sketch transforms are always of that form.
func (m Matrix3D) RigidInverse() Matrix3D {
	// Transpose the rotation, then rotate the negated translation.
	r := Matrix3D{
		m[0], m[4], m[8], 0,
		m[1], m[5], m[9], 0,
		m[2], m[6], m[10], 0,
		0, 0, 0, 1,
	}
	t := r.Apply(Point3D{X: -m[3], Y: -m[7], Z: -m[11]})
	r[3], r[7], r[11] = t.X, t.Y, t.Z
	return r
}

// IsRigid reports whether the upper 3x3 block is orthonormal within tol.
func (m Matrix3D) IsRigid(tol float64) bool {
	cols := [3]Point3D{
		{X: m[0], Y: m[4], Z: m[8]},
		{X: m[1], Y: m[5], Z: m[9]},
		{X: m[2], Y: m[6], Z: m[10]},
	}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			dot := cols[i].X*cols[j].X + cols[i].Y*cols[j].Y + cols[i].Z*cols[j].Z
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(dot-want) > tol {
				return false
			}
		}
	}
	return m[12] == 0 && m[13] == 0 && m[14] == 0 && m[15] == 1
}

// Operation is the boolean or creation mode applied when a feature is
// committed.
type Operation int

const (
	OpNewBody Operation = iota
	OpJoin
	OpCut
	OpIntersect
	OpNewComponent
)

func (o Operation) String() string {
	switch o {
	case OpNewBody:
		return "new-body"
	case OpJoin:
		return "join"
	case OpCut:
		return "cut"
	case OpIntersect:
		return "intersect"
	case OpNewComponent:
		return "new-component"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// Direction selects the side of the sketch plane an extent grows into.
type Direction int

const (
	PositiveDirection Direction = iota
	NegativeDirection
)

func (d Direction) String() string {
	if d == NegativeDirection {
		return "negative"
	}
	return "positive"
}

// Accuracy is the requested accuracy of an area-properties computation.
type Accuracy int

const (
	LowAccuracy Accuracy = iota
	MediumAccuracy
	HighAccuracy
	VeryHighAccuracy
)

// AreaProperties are the geometric invariants of a profile.
type AreaProperties struct {
	Area      float64
	Perimeter float64
	Centroid  Point3D
}
