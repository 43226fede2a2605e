package sdfx

import (
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// areaTolerance is the signed area below which a face is treated as empty.
const areaTolerance = 1e-12

// paramOf returns the parameter in [0,1] at which p lies on c.
func (c *curve) paramOf(p v2.Vec) (float64, bool) {
	if c.kind == kindLine {
		d := v2.Vec{X: c.end.X - c.start.X, Y: c.end.Y - c.start.Y}
		l2 := d.X*d.X + d.Y*d.Y
		t := ((p.X-c.start.X)*d.X + (p.Y-c.start.Y)*d.Y) / l2
		t = math.Max(0, math.Min(1, t))
		if dist(p, c.pointAt(t)) >= vertexTolerance {
			return 0, false
		}
		return t, true
	}

	if math.Abs(dist(p, c.center)-c.radius) >= vertexTolerance {
		return 0, false
	}
	if dist(p, c.start) < vertexTolerance {
		return 0, true
	}
	if dist(p, c.end) < vertexTolerance {
		return 1, true
	}
	off := math.Atan2(p.Y-c.center.Y, p.X-c.center.X) - c.angle0
	if c.sweep > 0 {
		off = math.Mod(math.Mod(off, 2*math.Pi)+2*math.Pi, 2*math.Pi)
	} else {
		off = -math.Mod(math.Mod(-off, 2*math.Pi)+2*math.Pi, 2*math.Pi)
	}
	t := off / c.sweep
	if t > 1 {
		return 0, false
	}
	return t, true
}

// tangent returns the unit direction of travel at parameter t.
func (c *curve) tangent(t float64) v2.Vec {
	if c.kind == kindLine {
		l := c.length()
		return v2.Vec{X: (c.end.X - c.start.X) / l, Y: (c.end.Y - c.start.Y) / l}
	}
	a := c.angle0 + t*c.sweep
	s := math.Copysign(1, c.sweep)
	return v2.Vec{X: -s * math.Sin(a), Y: s * math.Cos(a)}
}

// curvature is positive when the curve turns left in its forward direction.
func (c *curve) curvature() float64 {
	if c.kind == kindLine {
		return 0
	}
	return math.Copysign(1/c.radius, c.sweep)
}

// piece returns the part of c between parameters t0 and t1.
func (c *curve) piece(t0, t1 float64) *curve {
	p := &curve{handle: c.handle, seq: c.seq, parent: c.owner()}
	if c.kind == kindLine {
		p.kind = kindLine
		p.start, p.end = c.pointAt(t0), c.pointAt(t1)
		return p
	}
	p.kind = kindArc
	p.center, p.radius = c.center, c.radius
	p.angle0 = c.angle0 + t0*c.sweep
	p.sweep = (t1 - t0) * c.sweep
	p.start, p.end = p.pointAt(0), p.pointAt(1)
	return p
}

// split cuts c at the given parameters. A closed curve cut at a single
// point becomes one closed piece starting there.
func (c *curve) split(cuts []float64) []*curve {
	closed := c.closed()
	var ts []float64
	for _, t := range cuts {
		p := c.pointAt(t)
		if closed {
			if dist(p, c.start) < vertexTolerance {
				t = 0
			}
		} else if dist(p, c.start) < vertexTolerance || dist(p, c.end) < vertexTolerance {
			continue
		}
		ts = append(ts, t)
	}
	sort.Float64s(ts)

	var uniq []float64
	for _, t := range ts {
		if n := len(uniq); n > 0 && dist(c.pointAt(uniq[n-1]), c.pointAt(t)) < vertexTolerance {
			continue
		}
		uniq = append(uniq, t)
	}

	if len(uniq) == 0 || (closed && len(uniq) == 1 && uniq[0] == 0) {
		return []*curve{c}
	}
	var bounds []float64
	if closed {
		bounds = append(uniq, uniq[0]+1)
	} else {
		bounds = append(append([]float64{0}, uniq...), 1)
	}
	pieces := make([]*curve, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		pieces = append(pieces, c.piece(bounds[i], bounds[i+1]))
	}
	return pieces
}

// crossings returns candidate points where a and b meet. Candidates are
// not guaranteed to lie on either curve.
func crossings(a, b *curve) []v2.Vec {
	var pts []v2.Vec
	for _, c := range []*curve{a, b} {
		if !c.closed() {
			pts = append(pts, c.start, c.end)
		}
	}

	switch {
	case a.kind == kindLine && b.kind == kindLine:
		pts = append(pts, lineLine(a, b)...)
	case a.kind == kindLine:
		pts = append(pts, lineCircle(a, b)...)
	case b.kind == kindLine:
		pts = append(pts, lineCircle(b, a)...)
	default:
		pts = append(pts, circleCircle(a, b)...)
	}
	return pts
}

func lineLine(a, b *curve) []v2.Vec {
	r := v2.Vec{X: a.end.X - a.start.X, Y: a.end.Y - a.start.Y}
	s := v2.Vec{X: b.end.X - b.start.X, Y: b.end.Y - b.start.Y}
	denom := r.X*s.Y - r.Y*s.X
	if math.Abs(denom) < 1e-12*a.length()*b.length() {
		return nil
	}
	q := v2.Vec{X: b.start.X - a.start.X, Y: b.start.Y - a.start.Y}
	t := (q.X*s.Y - q.Y*s.X) / denom
	return []v2.Vec{a.pointAt(t)}
}

func lineCircle(l, c *curve) []v2.Vec {
	d := v2.Vec{X: l.end.X - l.start.X, Y: l.end.Y - l.start.Y}
	f := v2.Vec{X: l.start.X - c.center.X, Y: l.start.Y - c.center.Y}
	a := d.X*d.X + d.Y*d.Y
	b := 2 * (f.X*d.X + f.Y*d.Y)
	k := f.X*f.X + f.Y*f.Y - c.radius*c.radius
	disc := b*b - 4*a*k
	if disc < 0 {
		// A tangent line can miss by rounding.
		return []v2.Vec{l.pointAt(-b / (2 * a))}
	}
	sq := math.Sqrt(disc)
	return []v2.Vec{l.pointAt((-b - sq) / (2 * a)), l.pointAt((-b + sq) / (2 * a))}
}

func circleCircle(a, b *curve) []v2.Vec {
	d := dist(a.center, b.center)
	if d < vertexTolerance || d > a.radius+b.radius+vertexTolerance || d < math.Abs(a.radius-b.radius)-vertexTolerance {
		return nil
	}
	x := (d*d + a.radius*a.radius - b.radius*b.radius) / (2 * d)
	h := math.Sqrt(math.Max(0, a.radius*a.radius-x*x))
	ux, uy := (b.center.X-a.center.X)/d, (b.center.Y-a.center.Y)/d
	base := v2.Vec{X: a.center.X + x*ux, Y: a.center.Y + x*uy}
	return []v2.Vec{
		{X: base.X - h*uy, Y: base.Y + h*ux},
		{X: base.X + h*uy, Y: base.Y - h*ux},
	}
}

// splitCurves cuts every curve at the points where it meets another
// curve, including endpoints resting on another curve's interior.
func splitCurves(curves []*curve) []*curve {
	cuts := make([][]float64, len(curves))
	for i, a := range curves {
		for j := i + 1; j < len(curves); j++ {
			b := curves[j]
			for _, p := range crossings(a, b) {
				ta, okA := a.paramOf(p)
				tb, okB := b.paramOf(p)
				if okA && okB {
					cuts[i] = append(cuts[i], ta)
					cuts[j] = append(cuts[j], tb)
				}
			}
		}
	}
	var out []*curve
	for i, c := range curves {
		out = append(out, c.split(cuts[i])...)
	}
	return out
}

// halfEdge is one direction of travel along an edge of the arrangement.
type halfEdge struct {
	edge      *curve
	reversed  bool
	from, to  int
	angle     float64
	curvature float64
	twin      *halfEdge
	next      *halfEdge
	visited   bool
}

// arrangement is the planar graph formed by the split sketch curves.
type arrangement struct {
	vs    vertexSet
	edges []*curve
	ends  [][2]int
	half  []*halfEdge
	comp  []int
}

// newArrangement splits curves, merges coincident pieces and removes
// every edge that cannot bound a region.
func newArrangement(curves []*curve) *arrangement {
	g := &arrangement{}
	for _, e := range splitCurves(curves) {
		a, b := g.vs.id(e.start), g.vs.id(e.end)
		if a == b && !e.closed() {
			continue
		}
		if g.duplicate(e, a, b) {
			continue
		}
		g.edges = append(g.edges, e)
		g.ends = append(g.ends, [2]int{a, b})
	}
	g.prune()
	g.link()
	return g
}

// duplicate reports whether an edge between a and b already follows the
// same path as e.
func (g *arrangement) duplicate(e *curve, a, b int) bool {
	mid := e.pointAt(0.5)
	for i, o := range g.edges {
		ends := g.ends[i]
		if !(ends == [2]int{a, b} || ends == [2]int{b, a}) {
			continue
		}
		if o.kind == kindLine && e.kind == kindLine {
			return true
		}
		if dist(o.pointAt(0.5), mid) < vertexTolerance {
			return true
		}
	}
	return false
}

// prune repeatedly drops edges with an endpoint no other edge reaches.
func (g *arrangement) prune() {
	for {
		degree := make(map[int]int)
		for _, e := range g.ends {
			degree[e[0]]++
			degree[e[1]]++
		}
		var edges []*curve
		var ends [][2]int
		for i, e := range g.ends {
			if degree[e[0]] == 1 || degree[e[1]] == 1 {
				continue
			}
			edges = append(edges, g.edges[i])
			ends = append(ends, e)
		}
		if len(edges) == len(g.edges) {
			return
		}
		g.edges, g.ends = edges, ends
	}
}

// link builds the half-edges, orders them counter-clockwise around each
// vertex and sets next so that following it traces a face with the face
// on the left.
func (g *arrangement) link() {
	out := make(map[int][]*halfEdge)
	parent := make([]int, len(g.vs.pts))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(v int) int {
		if parent[v] != v {
			parent[v] = find(parent[v])
		}
		return parent[v]
	}

	for i, e := range g.edges {
		a, b := g.ends[i][0], g.ends[i][1]
		fwd := &halfEdge{edge: e, from: a, to: b, curvature: e.curvature()}
		rev := &halfEdge{edge: e, reversed: true, from: b, to: a, curvature: -e.curvature()}
		t0, t1 := e.tangent(0), e.tangent(1)
		fwd.angle = direction(t0.X, t0.Y)
		rev.angle = direction(-t1.X, -t1.Y)
		fwd.twin, rev.twin = rev, fwd
		g.half = append(g.half, fwd, rev)
		out[a] = append(out[a], fwd)
		out[b] = append(out[b], rev)
		parent[find(a)] = find(b)
	}

	pos := make(map[*halfEdge]int, len(g.half))
	for _, hs := range out {
		sort.SliceStable(hs, func(i, j int) bool {
			if math.Abs(hs[i].angle-hs[j].angle) > 1e-12 {
				return hs[i].angle < hs[j].angle
			}
			return hs[i].curvature < hs[j].curvature
		})
		for i, h := range hs {
			pos[h] = i
		}
	}
	for _, h := range g.half {
		around := out[h.to]
		i := pos[h.twin]
		h.next = around[(i-1+len(around))%len(around)]
	}

	g.comp = make([]int, len(g.vs.pts))
	for v := range g.comp {
		g.comp[v] = find(v)
	}
}

// direction returns the angle of (x, y) in [0, 2π).
func direction(x, y float64) float64 {
	a := math.Atan2(y, x)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// face is a closed walk around one face of the arrangement.
type face struct {
	*ring
	comp int
}

// faces walks every face. Bounded faces come back counter-clockwise with
// positive area; the outer boundary of each connected component comes back
// clockwise.
func (g *arrangement) faces() []face {
	var out []face
	for _, start := range g.half {
		if start.visited {
			continue
		}
		var curves []*curve
		var reversed []bool
		h := start
		for i := 0; i <= len(g.half) && !h.visited; i++ {
			h.visited = true
			curves = append(curves, h.edge)
			reversed = append(reversed, h.reversed)
			h = h.next
		}
		out = append(out, face{ring: newRing(curves, reversed), comp: g.comp[start.from]})
	}
	return out
}
