package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/lignin-replay/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// minTaperScale keeps tapered extrusions from collapsing to a point.
const minTaperScale = 0.01

var (
	errNoExtent    = errors.New("sdfx: extrude input has no extent")
	errNoTarget    = errors.New("sdfx: operation needs an existing body")
	errZeroExtent  = errors.New("sdfx: extent distance is zero")
	errForeignType = errors.New("sdfx: object belongs to another document")
)

type side struct {
	distance float64
	taper    float64
	dir      kernel.Direction
}

// extrudeInput is the uncommitted definition of an extrude.
type extrudeInput struct {
	profiles    []*profile
	op          kernel.Operation
	sides       []side
	startOffset float64
}

var _ kernel.ExtrudeInput = (*extrudeInput)(nil)

// SetOneSideExtent configures a single extent. Configuring extents resets
// the start to the profile plane.
func (in *extrudeInput) SetOneSideExtent(distance float64, dir kernel.Direction, taper float64) {
	in.sides = []side{{distance: distance, taper: taper, dir: dir}}
	in.startOffset = 0
}

// SetTwoSidesExtent configures one extent on each side of the profile
// plane. Configuring extents resets the start to the profile plane.
func (in *extrudeInput) SetTwoSidesExtent(distanceOne, distanceTwo, taperOne, taperTwo float64) {
	in.sides = []side{
		{distance: distanceOne, taper: taperOne, dir: kernel.PositiveDirection},
		{distance: distanceTwo, taper: taperTwo, dir: kernel.NegativeDirection},
	}
	in.startOffset = 0
}

func (in *extrudeInput) SetStartOffset(offset float64) {
	in.startOffset = offset
}

// feature is a committed extrude.
type feature struct {
	handle kernel.Handle
	name   string
	op     kernel.Operation
	bodies []*body
}

var _ kernel.Feature = (*feature)(nil)

func (f *feature) Handle() kernel.Handle       { return f.handle }
func (f *feature) Operation() kernel.Operation { return f.op }

// Name returns the display name of the feature.
func (f *feature) Name() string { return f.name }

// ring2D returns the 2D SDF of the region enclosed by r.
func ring2D(r *ring) (sdf.SDF2, error) {
	if len(r.curves) == 1 && r.curves[0].kind == kindCircle {
		c := r.curves[0]
		s, err := sdf.Circle2D(c.radius)
		if err != nil {
			return nil, err
		}
		return sdf.Transform2D(s, sdf.Translate2d(c.center)), nil
	}
	return sdf.Polygon2D(r.poly)
}

// profile2D returns the 2D SDF of the profile region and the half extent
// of its outer boundary's smaller side.
func profile2D(p *profile) (sdf.SDF2, float64, error) {
	outer, err := ring2D(p.outer)
	if err != nil {
		return nil, 0, err
	}
	var holes []sdf.SDF2
	for _, r := range p.inner {
		h, err := ring2D(r)
		if err != nil {
			return nil, 0, err
		}
		holes = append(holes, h)
	}
	region := outer
	if len(holes) > 0 {
		region = sdf.Difference2D(outer, sdf.Union2D(holes...))
	}

	lo := v2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := v2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, q := range p.outer.poly {
		lo = v2.Vec{X: math.Min(lo.X, q.X), Y: math.Min(lo.Y, q.Y)}
		hi = v2.Vec{X: math.Max(hi.X, q.X), Y: math.Max(hi.Y, q.Y)}
	}
	half := math.Min(hi.X-lo.X, hi.Y-lo.Y) / 2
	return region, half, nil
}

// sideSolid extrudes region from z=0 to z=h. A tapered side scales the
// region about its centroid so that the far cap is inset by h*tan(taper).
func sideSolid(region sdf.SDF2, centroid v2.Vec, half, h, taper float64) sdf.SDF3 {
	var s sdf.SDF3
	if taper == 0 || half <= 0 {
		s = sdf.Extrude3D(region, h)
	} else {
		k := 1 - h*math.Tan(taper)/half
		if k < minTaperScale {
			k = minTaperScale
		}
		centered := sdf.Transform2D(region, sdf.Translate2d(v2.Vec{X: -centroid.X, Y: -centroid.Y}))
		s = sdf.ScaleExtrude3D(centered, h, v2.Vec{X: k, Y: k})
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: centroid.X, Y: centroid.Y}))
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: h / 2}))
}

// tool builds the solid swept by the input in model space.
func (in *extrudeInput) tool() (sdf.SDF3, error) {
	if len(in.sides) == 0 {
		return nil, errNoExtent
	}
	var parts []sdf.SDF3
	for _, p := range in.profiles {
		region, half, err := profile2D(p)
		if err != nil {
			return nil, fmt.Errorf("sdfx: profile %s: %w", p.handle, err)
		}
		props, err := p.AreaProperties(kernel.HighAccuracy)
		if err != nil {
			return nil, fmt.Errorf("sdfx: profile %s: %w", p.handle, err)
		}
		centroid := v2.Vec{X: props.Centroid.X, Y: props.Centroid.Y}

		var sides []sdf.SDF3
		for _, sd := range in.sides {
			h, dir := sd.distance, sd.dir
			if h == 0 {
				return nil, errZeroExtent
			}
			if h < 0 {
				h = -h
				if dir == kernel.PositiveDirection {
					dir = kernel.NegativeDirection
				} else {
					dir = kernel.PositiveDirection
				}
			}
			s := sideSolid(region, centroid, half, h, sd.taper)
			if dir == kernel.NegativeDirection {
				s = transform3D(s, mirrorZ)
			}
			sides = append(sides, sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: in.startOffset})))
		}
		parts = append(parts, transform3D(sdf.Union3D(sides...), p.sketch.transform))
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return sdf.Union3D(parts...), nil
}
