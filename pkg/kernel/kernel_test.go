package kernel

import (
	"math"
	"testing"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	if !(&Mesh{}).IsEmpty() {
		t.Error("IsEmpty() = false for empty mesh, want true")
	}
	if (&Mesh{Vertices: []float32{1, 2, 3}}).IsEmpty() {
		t.Error("IsEmpty() = true for non-empty mesh, want false")
	}
}

// --- Matrix3D ---

func near(a, b Point3D) bool {
	const eps = 1e-12
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestIdentityApply(t *testing.T) {
	p := Point3D{X: 1, Y: -2, Z: 3}
	if got := Identity().Apply(p); got != p {
		t.Errorf("Identity().Apply(%v) = %v", p, got)
	}
}

func TestCoordinateSystem(t *testing.T) {
	// Sketch on the YZ plane, origin at (5, 0, 0).
	m := CoordinateSystem(
		Point3D{X: 5},
		Point3D{Y: 1},
		Point3D{Z: 1},
		Point3D{X: 1},
	)
	got := m.Apply(Point3D{X: 2, Y: 3})
	want := Point3D{X: 5, Y: 2, Z: 3}
	if !near(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
	if !m.IsRigid(1e-12) {
		t.Error("expected rigid transform")
	}
}

func TestRigidInverse(t *testing.T) {
	c, s := math.Cos(0.7), math.Sin(0.7)
	m := CoordinateSystem(
		Point3D{X: 1, Y: 2, Z: 3},
		Point3D{X: c, Y: s},
		Point3D{X: -s, Y: c},
		Point3D{Z: 1},
	)
	inv := m.RigidInverse()
	p := Point3D{X: 0.3, Y: -4, Z: 9}
	if got := inv.Apply(m.Apply(p)); !near(got, p) {
		t.Errorf("inverse round trip = %v, want %v", got, p)
	}
	if got := m.Mul(inv); !near(got.Apply(p), p) {
		t.Errorf("m * inv is not identity")
	}
}

func TestIsRigidRejectsScale(t *testing.T) {
	m := Identity()
	m[0] = 2
	if m.IsRigid(1e-9) {
		t.Error("scaled transform reported as rigid")
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpNewBody, "new-body"},
		{OpJoin, "join"},
		{OpCut, "cut"},
		{OpIntersect, "intersect"},
		{OpNewComponent, "new-component"},
		{Operation(42), "Operation(42)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.op), got, tt.want)
		}
	}
}
