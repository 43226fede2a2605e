package importer

import (
	"fmt"

	"github.com/chazu/lignin-replay/pkg/kernel"
)

// fakeDoc is a kernel.Document that records every call it receives.
// Profiles are produced by derive when a sketch resumes computation.
type fakeDoc struct {
	calls    []string
	sketches []*fakeSketch
	features int

	derive       func(curves []*fakeCurve) []kernel.Profile
	transformErr error
}

func (d *fakeDoc) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDoc) CreateSketch() (kernel.Sketch, error) {
	d.record("CreateSketch")
	s := &fakeSketch{doc: d, handle: kernel.Handle(fmt.Sprintf("sketch-%d", len(d.sketches)))}
	d.sketches = append(d.sketches, s)
	return s, nil
}

func (d *fakeDoc) NewExtrudeInput(profiles []kernel.Profile, op kernel.Operation) (kernel.ExtrudeInput, error) {
	d.record("NewExtrudeInput(%d, %s)", len(profiles), op)
	return &fakeInput{doc: d, op: op}, nil
}

func (d *fakeDoc) AddExtrude(in kernel.ExtrudeInput) (kernel.Feature, error) {
	d.record("AddExtrude")
	d.features++
	return &fakeFeature{handle: kernel.Handle(fmt.Sprintf("feature-%d", d.features)), op: in.(*fakeInput).op}, nil
}

// countCalls returns how many recorded calls equal name.
func (d *fakeDoc) countCalls(name string) int {
	n := 0
	for _, c := range d.calls {
		if c == name {
			n++
		}
	}
	return n
}

type fakeSketch struct {
	doc      *fakeDoc
	handle   kernel.Handle
	curves   []*fakeCurve
	profiles []kernel.Profile
}

func (s *fakeSketch) Handle() kernel.Handle { return s.handle }

func (s *fakeSketch) SetTransform(m kernel.Matrix3D) error {
	s.doc.record("SetTransform")
	return s.doc.transformErr
}

func (s *fakeSketch) DeferCompute(deferred bool) {
	s.doc.record("DeferCompute(%t)", deferred)
	if !deferred && s.doc.derive != nil {
		s.profiles = s.doc.derive(s.curves)
	}
}

func (s *fakeSketch) add(kind string) *fakeCurve {
	c := &fakeCurve{handle: kernel.Handle(fmt.Sprintf("%s-%d", s.handle, len(s.curves))), kind: kind}
	s.curves = append(s.curves, c)
	return c
}

func (s *fakeSketch) AddLine(start, end kernel.Point3D) (kernel.Curve, error) {
	s.doc.record("AddLine(%g,%g -> %g,%g)", start.X, start.Y, end.X, end.Y)
	return s.add("line"), nil
}

func (s *fakeSketch) AddArc(center, start kernel.Point3D, sweep float64) (kernel.Curve, error) {
	s.doc.record("AddArc(%g,%g from %g,%g sweep %g)", center.X, center.Y, start.X, start.Y, sweep)
	return s.add("arc"), nil
}

func (s *fakeSketch) AddCircle(center kernel.Point3D, radius float64) (kernel.Curve, error) {
	s.doc.record("AddCircle(%g,%g r %g)", center.X, center.Y, radius)
	return s.add("circle"), nil
}

func (s *fakeSketch) Profiles() []kernel.Profile { return s.profiles }

type fakeCurve struct {
	handle kernel.Handle
	kind   string
}

func (c *fakeCurve) Handle() kernel.Handle { return c.handle }

type fakeLoop struct {
	outer  bool
	curves []kernel.Curve
}

func (l *fakeLoop) IsOuter() bool          { return l.outer }
func (l *fakeLoop) Curves() []kernel.Curve { return l.curves }

type fakeProfile struct {
	handle kernel.Handle
	loops  []kernel.Loop
	props  kernel.AreaProperties
	err    error
}

func (p *fakeProfile) Handle() kernel.Handle { return p.handle }
func (p *fakeProfile) Loops() []kernel.Loop  { return p.loops }

func (p *fakeProfile) AreaProperties(kernel.Accuracy) (kernel.AreaProperties, error) {
	return p.props, p.err
}

// newProfile builds a single-loop profile over curves.
func newProfile(handle string, props kernel.AreaProperties, curves ...kernel.Curve) *fakeProfile {
	return &fakeProfile{
		handle: kernel.Handle(handle),
		loops:  []kernel.Loop{&fakeLoop{outer: true, curves: curves}},
		props:  props,
	}
}

type fakeInput struct {
	doc *fakeDoc
	op  kernel.Operation
}

func (in *fakeInput) SetOneSideExtent(distance float64, dir kernel.Direction, taper float64) {
	in.doc.record("SetOneSideExtent(%g, %s, %g)", distance, dir, taper)
}

func (in *fakeInput) SetTwoSidesExtent(d1, d2, t1, t2 float64) {
	in.doc.record("SetTwoSidesExtent(%g, %g, %g, %g)", d1, d2, t1, t2)
}

func (in *fakeInput) SetStartOffset(offset float64) {
	in.doc.record("SetStartOffset(%g)", offset)
}

type fakeFeature struct {
	handle kernel.Handle
	op     kernel.Operation
}

func (f *fakeFeature) Handle() kernel.Handle       { return f.handle }
func (f *fakeFeature) Operation() kernel.Operation { return f.op }
