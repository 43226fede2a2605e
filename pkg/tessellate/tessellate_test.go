package tessellate_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/chazu/lignin-replay/pkg/kernel"
	"github.com/chazu/lignin-replay/pkg/kernel/sdfx"
	"github.com/chazu/lignin-replay/pkg/tessellate"
)

// newDocument returns a coarse sdfx document for testing.
func newDocument() *sdfx.Document {
	return sdfx.New(sdfx.WithMeshCells(32))
}

// addBlock extrudes a w x h rectangle at (x, y) by depth.
func addBlock(t *testing.T, doc *sdfx.Document, x, y, w, h, depth float64, op kernel.Operation) {
	t.Helper()
	s, err := doc.CreateSketch()
	if err != nil {
		t.Fatal(err)
	}
	s.DeferCompute(true)
	corners := []kernel.Point3D{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
	for i := range corners {
		if _, err := s.AddLine(corners[i], corners[(i+1)%4]); err != nil {
			t.Fatal(err)
		}
	}
	s.DeferCompute(false)

	in, err := doc.NewExtrudeInput(s.Profiles(), op)
	if err != nil {
		t.Fatal(err)
	}
	in.SetOneSideExtent(depth, kernel.PositiveDirection, 0)
	if _, err := doc.AddExtrude(in); err != nil {
		t.Fatal(err)
	}
}

func TestEmptyDocument(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, newDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected no meshes, got %d", len(meshes))
	}
}

func TestOneMeshPerBody(t *testing.T) {
	doc := newDocument()
	addBlock(t, doc, 0, 0, 10, 10, 5, kernel.OpNewBody)
	addBlock(t, doc, 20, 0, 10, 10, 5, kernel.OpNewBody)

	meshes, err := tessellate.Tessellate(doc.Bodies(), doc)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	for i, want := range []string{"Body1", "Body2"} {
		if meshes[i].BodyName != want {
			t.Errorf("mesh %d body name = %q, want %q", i, meshes[i].BodyName, want)
		}
		if meshes[i].IsEmpty() {
			t.Errorf("mesh %d is empty", i)
		}
	}

	stats := tessellate.Summarize(meshes)
	if stats.Bodies != 2 || stats.Triangles != meshes[0].TriangleCount()+meshes[1].TriangleCount() {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestJoinProducesSingleMesh(t *testing.T) {
	doc := newDocument()
	addBlock(t, doc, 0, 0, 10, 10, 5, kernel.OpNewBody)
	addBlock(t, doc, 5, 5, 10, 10, 5, kernel.OpJoin)

	meshes, err := tessellate.Tessellate(doc.Bodies(), doc)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh after join, got %d", len(meshes))
	}
}

type failingMesher struct{}

func (failingMesher) ToMesh(kernel.Solid) (*kernel.Mesh, error) {
	return nil, errors.New("boom")
}

func TestMesherErrorNamesBody(t *testing.T) {
	doc := newDocument()
	addBlock(t, doc, 0, 0, 1, 1, 1, kernel.OpNewBody)

	_, err := tessellate.Tessellate(doc.Bodies(), failingMesher{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("Body1")) {
		t.Errorf("error %q does not name the body", err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := tessellate.WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := bytes.TrimSpace(buf.Bytes()); string(got) != "[]" {
		t.Errorf("empty output = %s, want []", got)
	}

	buf.Reset()
	mesh := &kernel.Mesh{Vertices: []float32{0, 0, 0}, Normals: []float32{0, 0, 1}, Indices: []uint32{0}, BodyName: "Body1"}
	if err := tessellate.WriteJSON(&buf, []*kernel.Mesh{mesh}); err != nil {
		t.Fatal(err)
	}
	var decoded []kernel.Mesh
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0].BodyName != "Body1" {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestForViewerCyclesPalette(t *testing.T) {
	meshes := make([]*kernel.Mesh, 10)
	for i := range meshes {
		meshes[i] = &kernel.Mesh{BodyName: "Body"}
	}
	out := tessellate.ForViewer(meshes)
	if len(out) != 10 {
		t.Fatalf("expected 10 viewer meshes, got %d", len(out))
	}
	if out[0].Color == out[1].Color {
		t.Error("adjacent bodies share a color")
	}
	if out[0].Color != out[8].Color {
		t.Errorf("palette should wrap after 8 colors: %s vs %s", out[0].Color, out[8].Color)
	}
}

func TestWriteJSONIncludesColor(t *testing.T) {
	var buf bytes.Buffer
	mesh := &kernel.Mesh{Vertices: []float32{0, 0, 0}, BodyName: "Body1"}
	if err := tessellate.WriteJSON(&buf, []*kernel.Mesh{mesh}); err != nil {
		t.Fatal(err)
	}
	var decoded []tessellate.ViewerMesh
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0].Color == "" {
		t.Errorf("decoded %+v", decoded)
	}
}
