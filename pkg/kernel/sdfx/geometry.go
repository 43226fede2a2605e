package sdfx

import (
	"math"

	"github.com/chazu/lignin-replay/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

type curveKind int

const (
	kindLine curveKind = iota
	kindArc
	kindCircle
)

// arcSegments is the number of polyline segments used for a full turn.
const arcSegments = 96

// curve is a sketch curve in sketch-local 2D coordinates. Arcs and circles
// run counter-clockwise for positive sweep starting at angle0. A piece cut
// from a sketch curve where it meets another curve keeps the handle and seq
// of that curve and points back to it through parent.
type curve struct {
	handle kernel.Handle
	kind   curveKind
	seq    int
	parent *curve

	start, end v2.Vec
	center     v2.Vec
	radius     float64
	angle0     float64
	sweep      float64
}

func (c *curve) Handle() kernel.Handle { return c.handle }

// owner returns the sketch curve c was cut from, or c itself.
func (c *curve) owner() *curve {
	if c.parent != nil {
		return c.parent
	}
	return c
}

// closed reports whether the curve forms a loop on its own.
func (c *curve) closed() bool {
	return c.kind == kindCircle || (c.kind == kindArc && math.Abs(c.sweep) >= 2*math.Pi-1e-12)
}

func (c *curve) length() float64 {
	switch c.kind {
	case kindLine:
		return math.Hypot(c.end.X-c.start.X, c.end.Y-c.start.Y)
	case kindCircle:
		return 2 * math.Pi * c.radius
	default:
		return math.Abs(c.sweep) * c.radius
	}
}

// pointAt returns the point at parameter t in [0,1] along the forward
// direction.
func (c *curve) pointAt(t float64) v2.Vec {
	if c.kind == kindLine {
		return v2.Vec{
			X: c.start.X + t*(c.end.X-c.start.X),
			Y: c.start.Y + t*(c.end.Y-c.start.Y),
		}
	}
	a := c.angle0 + t*c.sweep
	return v2.Vec{X: c.center.X + c.radius*math.Cos(a), Y: c.center.Y + c.radius*math.Sin(a)}
}

// polyline approximates the curve from start to end, both included.
func (c *curve) polyline() []v2.Vec {
	if c.kind == kindLine {
		return []v2.Vec{c.start, c.end}
	}
	n := int(math.Ceil(math.Abs(c.sweep) / (2 * math.Pi) * arcSegments))
	if n < 4 {
		n = 4
	}
	pts := make([]v2.Vec, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = c.pointAt(float64(i) / float64(n))
	}
	return pts
}

// moments returns the signed area and first moments of area (about the y
// and x axes) swept by the curve in its forward direction, by Green's
// theorem. Summed over a closed counter-clockwise loop they give the
// enclosed area A and the integrals of x and y over the region.
func (c *curve) moments() (a, mx, my float64) {
	switch c.kind {
	case kindLine:
		x0, y0 := c.start.X, c.start.Y
		dx, dy := c.end.X-x0, c.end.Y-y0
		a = (x0*c.end.Y - c.end.X*y0) / 2
		mx = dy / 2 * (x0*x0 + x0*dx + dx*dx/3)
		my = -dx / 2 * (y0*y0 + y0*dy + dy*dy/3)
		return a, mx, my
	case kindCircle:
		area := math.Pi * c.radius * c.radius
		return area, c.center.X * area, c.center.Y * area
	}

	r := c.radius
	cx, cy := c.center.X, c.center.Y
	t0, t1 := c.angle0, c.angle0+c.sweep
	s0, s1 := math.Sin(t0), math.Sin(t1)
	k0, k1 := math.Cos(t0), math.Cos(t1)

	a = 0.5 * (r*(cx*(s1-s0)-cy*(k1-k0)) + r*r*(t1-t0))

	c2 := func(t float64) float64 { return t/2 + math.Sin(2*t)/4 }
	c3 := func(t float64) float64 { s := math.Sin(t); return s - s*s*s/3 }
	d2 := func(t float64) float64 { return t/2 - math.Sin(2*t)/4 }
	d3 := func(t float64) float64 { k := math.Cos(t); return -k + k*k*k/3 }

	mx = r / 2 * (cx*cx*(s1-s0) + 2*cx*r*(c2(t1)-c2(t0)) + r*r*(c3(t1)-c3(t0)))
	my = r / 2 * (cy*cy*(k0-k1) + 2*cy*r*(d2(t1)-d2(t0)) + r*r*(d3(t1)-d3(t0)))
	return a, mx, my
}

func dist(a, b v2.Vec) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// pointInPolygon reports whether p lies inside the closed polygon poly
// using the even-odd crossing rule.
func pointInPolygon(p v2.Vec, poly []v2.Vec) bool {
	in := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}
