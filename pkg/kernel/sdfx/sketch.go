package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/lignin-replay/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/google/uuid"
)

// rigidTolerance bounds the deviation from orthonormal accepted by
// SetTransform.
const rigidTolerance = 1e-6

var errDegenerateCurve = errors.New("sdfx: degenerate curve")

// sketch is a planar sketch. Geometry is stored in sketch-local 2D
// coordinates; the Z component of input points is dropped.
type sketch struct {
	doc       *Document
	handle    kernel.Handle
	transform kernel.Matrix3D

	deferred   bool
	dirty      bool
	curves     []*curve
	profiles   []*profile
	recomputes int
}

var _ kernel.Sketch = (*sketch)(nil)

func (s *sketch) Handle() kernel.Handle { return s.handle }

func (s *sketch) SetTransform(m kernel.Matrix3D) error {
	if !s.doc.sketchTransforms {
		return kernel.ErrTransformNotPermitted
	}
	if !m.IsRigid(rigidTolerance) {
		return fmt.Errorf("sdfx: sketch transform is not rigid")
	}
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.transform = m
	return nil
}

func (s *sketch) DeferCompute(deferred bool) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	s.deferred = deferred
	if !deferred && s.dirty {
		s.recompute()
	}
}

func (s *sketch) AddLine(start, end kernel.Point3D) (kernel.Curve, error) {
	a, b := flat(start), flat(end)
	if dist(a, b) < vertexTolerance {
		return nil, fmt.Errorf("%w: zero-length line", errDegenerateCurve)
	}
	return s.add(&curve{kind: kindLine, start: a, end: b}), nil
}

func (s *sketch) AddArc(center, start kernel.Point3D, sweep float64) (kernel.Curve, error) {
	c, p := flat(center), flat(start)
	r := dist(c, p)
	if r < vertexTolerance {
		return nil, fmt.Errorf("%w: zero-radius arc", errDegenerateCurve)
	}
	if sweep == 0 {
		return nil, fmt.Errorf("%w: zero-sweep arc", errDegenerateCurve)
	}
	a0 := math.Atan2(p.Y-c.Y, p.X-c.X)
	cv := &curve{kind: kindArc, center: c, radius: r, angle0: a0, sweep: sweep, start: p}
	cv.end = cv.pointAt(1)
	return s.add(cv), nil
}

func (s *sketch) AddCircle(center kernel.Point3D, radius float64) (kernel.Curve, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: circle radius %g", errDegenerateCurve, radius)
	}
	c := flat(center)
	cv := &curve{kind: kindCircle, center: c, radius: radius, sweep: 2 * math.Pi}
	cv.start = cv.pointAt(0)
	cv.end = cv.start
	return s.add(cv), nil
}

func (s *sketch) add(c *curve) *curve {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	c.handle = kernel.Handle(uuid.NewString())
	c.seq = len(s.curves)
	s.curves = append(s.curves, c)
	s.dirty = true
	if !s.deferred {
		s.recompute()
	}
	return c
}

func (s *sketch) Profiles() []kernel.Profile {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	out := make([]kernel.Profile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p
	}
	return out
}

// Recomputes returns how many times profiles have been derived.
func (s *sketch) Recomputes() int {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.recomputes
}

// recompute derives profiles from the current curves. The caller holds
// doc.mu.
func (s *sketch) recompute() {
	s.profiles = deriveProfiles(s, s.curves)
	s.recomputes++
	s.dirty = false
}

func flat(p kernel.Point3D) v2.Vec {
	return v2.Vec{X: p.X, Y: p.Y}
}
