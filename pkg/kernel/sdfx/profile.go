package sdfx

import (
	"errors"
	"math"
	"sort"

	"github.com/chazu/lignin-replay/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/google/uuid"
)

// vertexTolerance is the distance below which curve endpoints are joined.
const vertexTolerance = 1e-7

var errDegenerateProfile = errors.New("sdfx: profile encloses no area")

// ring is a closed chain of curves. Pieces of split sketch curves appear
// as their own entries.
type ring struct {
	curves   []*curve
	reversed []bool
	seq      int

	area, mx, my float64
	perimeter    float64
	poly         []v2.Vec
}

func newRing(curves []*curve, reversed []bool) *ring {
	r := &ring{curves: curves, reversed: reversed, seq: math.MaxInt}
	for i, c := range curves {
		if c.seq < r.seq {
			r.seq = c.seq
		}
		a, mx, my := c.moments()
		pts := c.polyline()
		if reversed[i] {
			a, mx, my = -a, -mx, -my
			for l, h := 0, len(pts)-1; l < h; l, h = l+1, h-1 {
				pts[l], pts[h] = pts[h], pts[l]
			}
		}
		r.area += a
		r.mx += mx
		r.my += my
		r.perimeter += c.length()
		// Consecutive polylines share their joint vertex.
		if len(r.poly) > 0 {
			pts = pts[1:]
		}
		r.poly = append(r.poly, pts...)
	}
	if n := len(r.poly); n > 1 && dist(r.poly[0], r.poly[n-1]) < vertexTolerance {
		r.poly = r.poly[:n-1]
	}
	return r
}

// orientation returns +1 for counter-clockwise traversal, -1 otherwise.
func (r *ring) orientation() float64 {
	if r.area < 0 {
		return -1
	}
	return 1
}

// sample returns a point on the ring boundary.
func (r *ring) sample() v2.Vec {
	return r.curves[0].pointAt(0.5)
}

// loop is a ring viewed as one boundary of a particular profile.
type loop struct {
	*ring
	outer bool
}

func (l loop) IsOuter() bool { return l.outer }

// Curves returns the sketch curves along the loop. Consecutive pieces of
// one sketch curve are reported once.
func (l loop) Curves() []kernel.Curve {
	var owners []*curve
	for _, c := range l.curves {
		o := c.owner()
		if n := len(owners); n > 0 && owners[n-1] == o {
			continue
		}
		owners = append(owners, o)
	}
	if n := len(owners); n > 1 && owners[0] == owners[n-1] {
		owners = owners[:n-1]
	}
	out := make([]kernel.Curve, len(owners))
	for i, c := range owners {
		out[i] = c
	}
	return out
}

// profile is a region bounded by one outer ring minus the rings directly
// nested inside it.
type profile struct {
	handle kernel.Handle
	sketch *sketch
	outer  *ring
	inner  []*ring
}

func (p *profile) Handle() kernel.Handle { return p.handle }

func (p *profile) Loops() []kernel.Loop {
	out := make([]kernel.Loop, 0, 1+len(p.inner))
	out = append(out, loop{ring: p.outer, outer: true})
	for _, r := range p.inner {
		out = append(out, loop{ring: r})
	}
	return out
}

// AreaProperties computes the properties in closed form, so every accuracy
// level returns the same exact result.
func (p *profile) AreaProperties(_ kernel.Accuracy) (kernel.AreaProperties, error) {
	s := p.outer.orientation()
	a, mx, my := s*p.outer.area, s*p.outer.mx, s*p.outer.my
	perimeter := p.outer.perimeter
	for _, r := range p.inner {
		si := r.orientation()
		a -= si * r.area
		mx -= si * r.mx
		my -= si * r.my
		perimeter += r.perimeter
	}
	if a <= 0 {
		return kernel.AreaProperties{}, errDegenerateProfile
	}
	return kernel.AreaProperties{
		Area:      a,
		Perimeter: perimeter,
		Centroid:  kernel.Point3D{X: mx / a, Y: my / a},
	}, nil
}

// vertexSet merges endpoints that lie within vertexTolerance of each other.
type vertexSet struct {
	pts []v2.Vec
}

func (vs *vertexSet) id(p v2.Vec) int {
	for i, q := range vs.pts {
		if dist(p, q) < vertexTolerance {
			return i
		}
	}
	vs.pts = append(vs.pts, p)
	return len(vs.pts) - 1
}

// deriveProfiles returns one profile per bounded face of the planar
// arrangement of the sketch curves. Curves are split where they meet, and
// edges that dangle are ignored. A connected group of curves lying inside a
// face of another group becomes an inner loop of the smallest such face.
// Profiles are ordered by the creation order of the earliest curve on their
// outer loop, then by the order their faces were walked.
func deriveProfiles(s *sketch, curves []*curve) []*profile {
	var bounded, boundaries []face
	for _, f := range newArrangement(curves).faces() {
		switch {
		case f.area > areaTolerance:
			bounded = append(bounded, f)
		case f.area < -areaTolerance:
			boundaries = append(boundaries, f)
		}
	}
	sort.SliceStable(bounded, func(i, j int) bool { return bounded[i].seq < bounded[j].seq })

	profiles := make([]*profile, len(bounded))
	for i, f := range bounded {
		profiles[i] = &profile{handle: kernel.Handle(uuid.NewString()), sketch: s, outer: f.ring}
	}
	for _, b := range boundaries {
		in := -1
		for i, f := range bounded {
			if f.comp == b.comp || f.area <= -b.area || !pointInPolygon(b.sample(), f.poly) {
				continue
			}
			if in < 0 || f.area < bounded[in].area {
				in = i
			}
		}
		if in >= 0 {
			profiles[in].inner = append(profiles[in].inner, b.ring)
		}
	}
	return profiles
}
