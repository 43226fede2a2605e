package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/lignin-replay/pkg/kernel"
)

const tol = 1e-9

func pt(x, y float64) kernel.Point3D { return kernel.Point3D{X: x, Y: y} }

// addRect adds the four sides of an axis-aligned rectangle.
func addRect(t *testing.T, s kernel.Sketch, x0, y0, x1, y1 float64) {
	t.Helper()
	corners := []kernel.Point3D{pt(x0, y0), pt(x1, y0), pt(x1, y1), pt(x0, y1)}
	for i := range corners {
		if _, err := s.AddLine(corners[i], corners[(i+1)%4]); err != nil {
			t.Fatalf("AddLine: %v", err)
		}
	}
}

func newSketch(t *testing.T, d *Document) *sketch {
	t.Helper()
	s, err := d.CreateSketch()
	if err != nil {
		t.Fatalf("CreateSketch: %v", err)
	}
	return s.(*sketch)
}

func props(t *testing.T, p kernel.Profile) kernel.AreaProperties {
	t.Helper()
	ap, err := p.AreaProperties(kernel.HighAccuracy)
	if err != nil {
		t.Fatalf("AreaProperties: %v", err)
	}
	return ap
}

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestDeferredComputeRecomputesOnce(t *testing.T) {
	s := newSketch(t, New())
	s.DeferCompute(true)
	addRect(t, s, 0, 0, 4, 4)
	if n := s.Recomputes(); n != 0 {
		t.Fatalf("recomputes while deferred = %d, want 0", n)
	}
	if n := len(s.Profiles()); n != 0 {
		t.Fatalf("profiles while deferred = %d, want 0", n)
	}
	s.DeferCompute(false)
	if n := s.Recomputes(); n != 1 {
		t.Fatalf("recomputes after resume = %d, want 1", n)
	}
	if n := len(s.Profiles()); n != 1 {
		t.Fatalf("profiles = %d, want 1", n)
	}
}

func TestImmediateComputeRecomputesPerCurve(t *testing.T) {
	s := newSketch(t, New())
	addRect(t, s, 0, 0, 4, 4)
	if n := s.Recomputes(); n != 4 {
		t.Fatalf("recomputes = %d, want 4", n)
	}
	if n := len(s.Profiles()); n != 1 {
		t.Fatalf("profiles = %d, want 1", n)
	}
}

func TestSquareAreaProperties(t *testing.T) {
	for _, tc := range []struct {
		name    string
		corners [4]float64
	}{
		{"counter-clockwise", [4]float64{0, 0, 4, 4}},
		{"clockwise", [4]float64{4, 4, 0, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newSketch(t, New())
			c := tc.corners
			addRect(t, s, c[0], c[1], c[2], c[3])
			ps := s.Profiles()
			if len(ps) != 1 {
				t.Fatalf("profiles = %d, want 1", len(ps))
			}
			ap := props(t, ps[0])
			if !near(ap.Area, 16, tol) || !near(ap.Perimeter, 16, tol) {
				t.Errorf("area=%v perimeter=%v, want 16 and 16", ap.Area, ap.Perimeter)
			}
			if !near(ap.Centroid.X, 2, tol) || !near(ap.Centroid.Y, 2, tol) || ap.Centroid.Z != 0 {
				t.Errorf("centroid = %+v, want (2,2,0)", ap.Centroid)
			}
		})
	}
}

func TestPlateWithHole(t *testing.T) {
	s := newSketch(t, New())
	s.DeferCompute(true)
	if _, err := s.AddCircle(pt(2, 2), 1); err != nil {
		t.Fatalf("AddCircle: %v", err)
	}
	addRect(t, s, 0, 0, 4, 4)
	s.DeferCompute(false)

	ps := s.Profiles()
	if len(ps) != 2 {
		t.Fatalf("profiles = %d, want 2", len(ps))
	}

	// Circle was created first, so its profile comes first.
	hole := props(t, ps[0])
	if !near(hole.Area, math.Pi, tol) || !near(hole.Perimeter, 2*math.Pi, tol) {
		t.Errorf("hole area=%v perimeter=%v", hole.Area, hole.Perimeter)
	}
	if len(ps[0].Loops()) != 1 {
		t.Errorf("hole loops = %d, want 1", len(ps[0].Loops()))
	}

	plate := props(t, ps[1])
	if !near(plate.Area, 16-math.Pi, tol) {
		t.Errorf("plate area = %v, want %v", plate.Area, 16-math.Pi)
	}
	if !near(plate.Perimeter, 16+2*math.Pi, tol) {
		t.Errorf("plate perimeter = %v, want %v", plate.Perimeter, 16+2*math.Pi)
	}
	if !near(plate.Centroid.X, 2, tol) || !near(plate.Centroid.Y, 2, tol) {
		t.Errorf("plate centroid = %+v", plate.Centroid)
	}
	loops := ps[1].Loops()
	if len(loops) != 2 || !loops[0].IsOuter() || loops[1].IsOuter() {
		t.Fatalf("plate loops malformed: %d loops", len(loops))
	}
	if len(loops[0].Curves()) != 4 || len(loops[1].Curves()) != 1 {
		t.Errorf("loop curve counts = %d, %d; want 4, 1", len(loops[0].Curves()), len(loops[1].Curves()))
	}
}

func TestHalfDiscCentroid(t *testing.T) {
	s := newSketch(t, New())
	s.DeferCompute(true)
	if _, err := s.AddLine(pt(-1, 0), pt(1, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddArc(pt(0, 0), pt(1, 0), math.Pi); err != nil {
		t.Fatal(err)
	}
	s.DeferCompute(false)

	ps := s.Profiles()
	if len(ps) != 1 {
		t.Fatalf("profiles = %d, want 1", len(ps))
	}
	ap := props(t, ps[0])
	if !near(ap.Area, math.Pi/2, tol) {
		t.Errorf("area = %v, want %v", ap.Area, math.Pi/2)
	}
	if !near(ap.Perimeter, 2+math.Pi, tol) {
		t.Errorf("perimeter = %v, want %v", ap.Perimeter, 2+math.Pi)
	}
	if !near(ap.Centroid.X, 0, tol) || !near(ap.Centroid.Y, 4/(3*math.Pi), tol) {
		t.Errorf("centroid = %+v, want (0, %v)", ap.Centroid, 4/(3*math.Pi))
	}
}

func TestOpenChainHasNoProfiles(t *testing.T) {
	s := newSketch(t, New())
	s.DeferCompute(true)
	for _, seg := range [][2]kernel.Point3D{
		{pt(0, 0), pt(1, 0)},
		{pt(1, 0), pt(1, 1)},
		{pt(1, 1), pt(0, 1)},
	} {
		if _, err := s.AddLine(seg[0], seg[1]); err != nil {
			t.Fatal(err)
		}
	}
	s.DeferCompute(false)
	if n := len(s.Profiles()); n != 0 {
		t.Fatalf("profiles = %d, want 0", n)
	}
}

func addLines(t *testing.T, s kernel.Sketch, segs ...[4]float64) []kernel.Curve {
	t.Helper()
	out := make([]kernel.Curve, len(segs))
	for i, seg := range segs {
		c, err := s.AddLine(pt(seg[0], seg[1]), pt(seg[2], seg[3]))
		if err != nil {
			t.Fatalf("AddLine: %v", err)
		}
		out[i] = c
	}
	return out
}

// areas returns the area of every profile of s, in profile order.
func areas(t *testing.T, s kernel.Sketch) []float64 {
	t.Helper()
	var out []float64
	for _, p := range s.Profiles() {
		out = append(out, props(t, p).Area)
	}
	return out
}

func TestDanglingCurvesAreIgnored(t *testing.T) {
	for _, tc := range []struct {
		name string
		spur [4]float64
	}{
		{"from a corner", [4]float64{1, 1, 2, 2}},
		{"from an edge", [4]float64{0.5, 0, 0.5, -1}},
		{"inside", [4]float64{0.5, 0, 0.5, 0.5}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newSketch(t, New())
			s.DeferCompute(true)
			addRect(t, s, 0, 0, 1, 1)
			addLines(t, s, tc.spur)
			s.DeferCompute(false)

			ps := s.Profiles()
			if len(ps) != 1 {
				t.Fatalf("profiles = %d, want 1", len(ps))
			}
			ap := props(t, ps[0])
			if !near(ap.Area, 1, tol) || !near(ap.Perimeter, 4, tol) {
				t.Errorf("area=%v perimeter=%v, want 1 and 4", ap.Area, ap.Perimeter)
			}
			if n := len(ps[0].Loops()[0].Curves()); n != 4 {
				t.Errorf("outer loop curves = %d, want 4", n)
			}
		})
	}
}

func TestSharedEdge(t *testing.T) {
	t.Run("drawn once", func(t *testing.T) {
		s := newSketch(t, New())
		s.DeferCompute(true)
		addLines(t, s,
			[4]float64{0, 0, 1, 0}, [4]float64{1, 0, 2, 0}, [4]float64{2, 0, 2, 1},
			[4]float64{2, 1, 1, 1}, [4]float64{1, 1, 0, 1}, [4]float64{0, 1, 0, 0},
			[4]float64{1, 0, 1, 1},
		)
		s.DeferCompute(false)
		got := areas(t, s)
		if len(got) != 2 || !near(got[0], 1, tol) || !near(got[1], 1, tol) {
			t.Fatalf("areas = %v, want [1 1]", got)
		}
	})

	t.Run("drawn twice", func(t *testing.T) {
		s := newSketch(t, New())
		s.DeferCompute(true)
		addRect(t, s, 0, 0, 1, 1)
		addRect(t, s, 1, 0, 2, 1)
		s.DeferCompute(false)
		got := areas(t, s)
		if len(got) != 2 || !near(got[0], 1, tol) || !near(got[1], 1, tol) {
			t.Fatalf("areas = %v, want [1 1]", got)
		}
	})
}

func TestDividedSquare(t *testing.T) {
	s := newSketch(t, New())
	s.DeferCompute(true)
	addRect(t, s, 0, 0, 1, 1)
	divider := addLines(t, s, [4]float64{0.5, 0, 0.5, 1})[0]
	s.DeferCompute(false)

	ps := s.Profiles()
	if len(ps) != 2 {
		t.Fatalf("profiles = %d, want 2", len(ps))
	}
	var xs []float64
	for _, p := range ps {
		ap := props(t, p)
		if !near(ap.Area, 0.5, tol) || !near(ap.Perimeter, 3, tol) || !near(ap.Centroid.Y, 0.5, tol) {
			t.Errorf("half = %+v, want area 0.5 perimeter 3", ap)
		}
		xs = append(xs, ap.Centroid.X)

		curves := p.Loops()[0].Curves()
		if len(curves) != 4 {
			t.Fatalf("loop curves = %d, want 4", len(curves))
		}
		found := false
		for _, c := range curves {
			if c.Handle() == divider.Handle() {
				found = true
			}
		}
		if !found {
			t.Errorf("loop does not include the divider")
		}
	}
	if !(near(xs[0], 0.25, tol) && near(xs[1], 0.75, tol)) && !(near(xs[0], 0.75, tol) && near(xs[1], 0.25, tol)) {
		t.Errorf("centroid x = %v, want 0.25 and 0.75", xs)
	}
}

func TestCircleCutByDiameter(t *testing.T) {
	s := newSketch(t, New())
	s.DeferCompute(true)
	if _, err := s.AddCircle(pt(0, 0), 1); err != nil {
		t.Fatal(err)
	}
	addLines(t, s, [4]float64{-2, 0, 2, 0})
	s.DeferCompute(false)

	ps := s.Profiles()
	if len(ps) != 2 {
		t.Fatalf("profiles = %d, want 2", len(ps))
	}
	var ys []float64
	for _, p := range ps {
		ap := props(t, p)
		if !near(ap.Area, math.Pi/2, tol) || !near(ap.Perimeter, 2+math.Pi, tol) {
			t.Errorf("half disc = %+v", ap)
		}
		if n := len(p.Loops()[0].Curves()); n != 2 {
			t.Errorf("loop curves = %d, want 2", n)
		}
		ys = append(ys, ap.Centroid.Y)
	}
	want := 4 / (3 * math.Pi)
	if !near(math.Abs(ys[0]), want, tol) || !near(ys[0], -ys[1], tol) {
		t.Errorf("centroid y = %v, want ±%v", ys, want)
	}
}

func TestOverlappingCircles(t *testing.T) {
	s := newSketch(t, New())
	s.DeferCompute(true)
	for _, x := range []float64{0, 1} {
		if _, err := s.AddCircle(pt(x, 0), 1); err != nil {
			t.Fatal(err)
		}
	}
	s.DeferCompute(false)

	lens := 2*math.Pi/3 - math.Sqrt(3)/2
	got := areas(t, s)
	if len(got) != 3 {
		t.Fatalf("areas = %v, want 3 regions", got)
	}
	sum, lensFound := 0.0, false
	for _, a := range got {
		sum += a
		if near(a, lens, tol) {
			lensFound = true
		}
	}
	if !lensFound {
		t.Errorf("areas = %v, want one of %v", got, lens)
	}
	if !near(sum, 2*math.Pi-lens, tol) {
		t.Errorf("total area = %v, want %v", sum, 2*math.Pi-lens)
	}
}

func TestNestedGroupsBecomeInnerLoops(t *testing.T) {
	s := newSketch(t, New())
	s.DeferCompute(true)
	addRect(t, s, 0, 0, 10, 10)
	addRect(t, s, 2, 2, 8, 8)
	addRect(t, s, 4, 4, 6, 6)
	s.DeferCompute(false)

	got := areas(t, s)
	want := []float64{100 - 36, 36 - 4, 4}
	if len(got) != len(want) {
		t.Fatalf("areas = %v, want %v", got, want)
	}
	for i := range want {
		if !near(got[i], want[i], tol) {
			t.Errorf("area[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDegenerateCurvesRejected(t *testing.T) {
	s := newSketch(t, New())
	if _, err := s.AddLine(pt(1, 1), pt(1, 1)); !errors.Is(err, errDegenerateCurve) {
		t.Errorf("zero-length line: err = %v", err)
	}
	if _, err := s.AddCircle(pt(0, 0), 0); !errors.Is(err, errDegenerateCurve) {
		t.Errorf("zero-radius circle: err = %v", err)
	}
	if _, err := s.AddArc(pt(0, 0), pt(1, 0), 0); !errors.Is(err, errDegenerateCurve) {
		t.Errorf("zero-sweep arc: err = %v", err)
	}
}

func TestSetTransform(t *testing.T) {
	s := newSketch(t, New(WithoutSketchTransforms()))
	if err := s.SetTransform(kernel.Identity()); !errors.Is(err, kernel.ErrTransformNotPermitted) {
		t.Errorf("err = %v, want ErrTransformNotPermitted", err)
	}

	s = newSketch(t, New())
	scaled := kernel.Identity()
	scaled[0] = 2
	if err := s.SetTransform(scaled); err == nil {
		t.Error("expected error for non-rigid transform")
	}
}

func extrudeSquare(t *testing.T, d *Document, op kernel.Operation, configure func(kernel.ExtrudeInput)) kernel.Feature {
	t.Helper()
	s := newSketch(t, d)
	addRect(t, s, 0, 0, 4, 4)
	in, err := d.NewExtrudeInput(s.Profiles(), op)
	if err != nil {
		t.Fatalf("NewExtrudeInput: %v", err)
	}
	configure(in)
	f, err := d.AddExtrude(in)
	if err != nil {
		t.Fatalf("AddExtrude: %v", err)
	}
	return f
}

func checkBounds(t *testing.T, b kernel.Body, wantMin, wantMax [3]float64) {
	t.Helper()
	const eps = 1e-6
	min, max := b.BoundingBox()
	for i := 0; i < 3; i++ {
		if !near(min[i], wantMin[i], eps) || !near(max[i], wantMax[i], eps) {
			t.Fatalf("bounds = %v..%v, want %v..%v", min, max, wantMin, wantMax)
		}
	}
}

func TestOneSideExtrude(t *testing.T) {
	d := New()
	f := extrudeSquare(t, d, kernel.OpNewBody, func(in kernel.ExtrudeInput) {
		in.SetOneSideExtent(2, kernel.PositiveDirection, 0)
	})
	if f.Operation() != kernel.OpNewBody {
		t.Errorf("operation = %s", f.Operation())
	}
	bodies := d.Bodies()
	if len(bodies) != 1 || bodies[0].Name() != "Body1" {
		t.Fatalf("bodies = %d", len(bodies))
	}
	checkBounds(t, bodies[0], [3]float64{0, 0, 0}, [3]float64{4, 4, 2})
}

func TestTwoSidesExtrudeWithOffset(t *testing.T) {
	d := New()
	extrudeSquare(t, d, kernel.OpNewBody, func(in kernel.ExtrudeInput) {
		in.SetTwoSidesExtent(2, 1, 0, 0)
		in.SetStartOffset(0.5)
	})
	checkBounds(t, d.Bodies()[0], [3]float64{0, 0, -0.5}, [3]float64{4, 4, 2.5})
}

func TestExtentResetsStartOffset(t *testing.T) {
	d := New()
	extrudeSquare(t, d, kernel.OpNewBody, func(in kernel.ExtrudeInput) {
		in.SetStartOffset(0.5)
		in.SetOneSideExtent(2, kernel.PositiveDirection, 0)
	})
	checkBounds(t, d.Bodies()[0], [3]float64{0, 0, 0}, [3]float64{4, 4, 2})
}

func TestNegativeDirection(t *testing.T) {
	d := New()
	extrudeSquare(t, d, kernel.OpNewBody, func(in kernel.ExtrudeInput) {
		in.SetOneSideExtent(3, kernel.NegativeDirection, 0)
	})
	checkBounds(t, d.Bodies()[0], [3]float64{0, 0, -3}, [3]float64{4, 4, 0})
}

func TestSketchTransformPlacesSolid(t *testing.T) {
	d := New()
	s := newSketch(t, d)
	yz := kernel.CoordinateSystem(
		kernel.Point3D{},
		kernel.Point3D{Y: 1},
		kernel.Point3D{Z: 1},
		kernel.Point3D{X: 1},
	)
	if err := s.SetTransform(yz); err != nil {
		t.Fatal(err)
	}
	addRect(t, s, 0, 0, 4, 4)
	in, err := d.NewExtrudeInput(s.Profiles(), kernel.OpNewBody)
	if err != nil {
		t.Fatal(err)
	}
	in.SetOneSideExtent(1, kernel.PositiveDirection, 0)
	if _, err := d.AddExtrude(in); err != nil {
		t.Fatal(err)
	}
	checkBounds(t, d.Bodies()[0], [3]float64{0, 0, 0}, [3]float64{1, 4, 4})
}

func TestOperations(t *testing.T) {
	d := New()
	oneSide := func(in kernel.ExtrudeInput) { in.SetOneSideExtent(1, kernel.PositiveDirection, 0) }

	// Cut and intersect need a target.
	s := newSketch(t, d)
	addRect(t, s, 0, 0, 1, 1)
	in, _ := d.NewExtrudeInput(s.Profiles(), kernel.OpCut)
	oneSide(in)
	if _, err := d.AddExtrude(in); !errors.Is(err, errNoTarget) {
		t.Fatalf("cut without body: err = %v", err)
	}

	// Join without a body creates one; the next join merges into it.
	extrudeSquare(t, d, kernel.OpJoin, oneSide)
	extrudeSquare(t, d, kernel.OpJoin, oneSide)
	if n := len(d.Bodies()); n != 1 {
		t.Fatalf("bodies after joins = %d, want 1", n)
	}

	extrudeSquare(t, d, kernel.OpNewBody, oneSide)
	f := extrudeSquare(t, d, kernel.OpCut, oneSide)
	if n := len(f.(*feature).bodies); n != 2 {
		t.Errorf("cut touched %d bodies, want 2", n)
	}
	if n := len(d.Features()); n != 4 {
		t.Errorf("features = %d, want 4", n)
	}
}

func TestForeignProfileRejected(t *testing.T) {
	a, b := New(), New()
	s := newSketch(t, a)
	addRect(t, s, 0, 0, 1, 1)
	if _, err := b.NewExtrudeInput(s.Profiles(), kernel.OpNewBody); !errors.Is(err, errForeignType) {
		t.Fatalf("err = %v, want errForeignType", err)
	}
	if _, err := b.NewExtrudeInput(nil, kernel.OpNewBody); err == nil {
		t.Fatal("expected error for empty profile list")
	}
}

func TestToMesh(t *testing.T) {
	d := New(WithMeshCells(40))
	extrudeSquare(t, d, kernel.OpNewBody, func(in kernel.ExtrudeInput) {
		in.SetOneSideExtent(2, kernel.PositiveDirection, 0.1)
	})
	mesh, err := d.ToMesh(d.Bodies()[0])
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.BodyName != "Body1" {
		t.Errorf("body name = %q", mesh.BodyName)
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
}
