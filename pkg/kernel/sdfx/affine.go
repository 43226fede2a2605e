package sdfx

import (
	"math"

	"github.com/chazu/lignin-replay/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// affineSDF3 places an SDF3 by an orthonormal transform. Distances are
// preserved, so evaluation maps the query point back through the inverse.
type affineSDF3 struct {
	s   sdf.SDF3
	inv kernel.Matrix3D
	bb  sdf.Box3
}

func transform3D(s sdf.SDF3, m kernel.Matrix3D) sdf.SDF3 {
	src := s.BoundingBox()
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i < 8; i++ {
		corner := kernel.Point3D{X: src.Min.X, Y: src.Min.Y, Z: src.Min.Z}
		if i&1 != 0 {
			corner.X = src.Max.X
		}
		if i&2 != 0 {
			corner.Y = src.Max.Y
		}
		if i&4 != 0 {
			corner.Z = src.Max.Z
		}
		p := m.Apply(corner)
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return &affineSDF3{s: s, inv: m.RigidInverse(), bb: sdf.Box3{Min: lo, Max: hi}}
}

func (a *affineSDF3) Evaluate(p v3.Vec) float64 {
	q := a.inv.Apply(kernel.Point3D{X: p.X, Y: p.Y, Z: p.Z})
	return a.s.Evaluate(v3.Vec{X: q.X, Y: q.Y, Z: q.Z})
}

func (a *affineSDF3) BoundingBox() sdf.Box3 {
	return a.bb
}

// mirrorZ reflects through the XY plane.
var mirrorZ = kernel.Matrix3D{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, -1, 0,
	0, 0, 0, 1,
}
