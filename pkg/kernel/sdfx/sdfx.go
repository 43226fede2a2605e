// Package sdfx implements kernel.Document in memory on top of the
// github.com/deadsy/sdfx SDF library. Sketch profiles are derived
// analytically from the committed curves; extrude features are built as
// signed distance fields and tessellated with marching cubes.
package sdfx

import (
	"fmt"
	"os"
	"sync"

	"github.com/chazu/lignin-replay/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/google/uuid"
)

// Compile-time interface checks.
var (
	_ kernel.Document = (*Document)(nil)
	_ kernel.Mesher   = (*Document)(nil)
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// body wraps an sdf.SDF3 to implement kernel.Body.
type body struct {
	handle kernel.Handle
	name   string
	solid  sdf.SDF3
}

func (b *body) Handle() kernel.Handle { return b.handle }
func (b *body) Name() string          { return b.name }

// BoundingBox returns the axis-aligned bounding box.
func (b *body) BoundingBox() (min, max [3]float64) {
	bb := b.solid.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Option configures a Document.
type Option func(*Document)

// WithMeshCells sets the marching cubes resolution along the longest axis.
func WithMeshCells(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.meshCells = n
		}
	}
}

// WithoutSketchTransforms makes SetTransform fail with
// kernel.ErrTransformNotPermitted, as a parametric host document does.
func WithoutSketchTransforms() Option {
	return func(d *Document) { d.sketchTransforms = false }
}

// Document is an in-memory CAD document.
type Document struct {
	mu               sync.Mutex
	sketchTransforms bool
	meshCells        int

	sketches []*sketch
	features []*feature
	bodies   []*body
}

// New returns an empty document.
func New(opts ...Option) *Document {
	d := &Document{sketchTransforms: true, meshCells: DefaultMeshCells}
	for _, o := range opts {
		o(d)
	}
	return d
}

// CreateSketch creates a sketch on the XY base plane.
func (d *Document) CreateSketch() (kernel.Sketch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &sketch{
		doc:       d,
		handle:    kernel.Handle(uuid.NewString()),
		transform: kernel.Identity(),
	}
	d.sketches = append(d.sketches, s)
	return s, nil
}

// NewExtrudeInput starts an extrude of profiles. Every profile must come
// from this document.
func (d *Document) NewExtrudeInput(profiles []kernel.Profile, op kernel.Operation) (kernel.ExtrudeInput, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("sdfx: extrude needs at least one profile")
	}
	in := &extrudeInput{op: op}
	for _, p := range profiles {
		pp, ok := p.(*profile)
		if !ok || pp.sketch.doc != d {
			return nil, fmt.Errorf("%w: profile %T", errForeignType, p)
		}
		in.profiles = append(in.profiles, pp)
	}
	return in, nil
}

// AddExtrude commits in and applies its operation to the document bodies.
// Join merges into the most recent body; cut and intersect apply to every
// body.
func (d *Document) AddExtrude(in kernel.ExtrudeInput) (kernel.Feature, error) {
	ei, ok := in.(*extrudeInput)
	if !ok {
		return nil, fmt.Errorf("%w: extrude input %T", errForeignType, in)
	}
	tool, err := ei.tool()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	f := &feature{
		handle: kernel.Handle(uuid.NewString()),
		name:   fmt.Sprintf("Extrude%d", len(d.features)+1),
		op:     ei.op,
	}
	switch ei.op {
	case kernel.OpNewBody, kernel.OpNewComponent:
		f.bodies = append(f.bodies, d.newBody(tool))
	case kernel.OpJoin:
		if len(d.bodies) == 0 {
			f.bodies = append(f.bodies, d.newBody(tool))
			break
		}
		b := d.bodies[len(d.bodies)-1]
		b.solid = sdf.Union3D(b.solid, tool)
		f.bodies = append(f.bodies, b)
	case kernel.OpCut:
		if len(d.bodies) == 0 {
			return nil, fmt.Errorf("%w: %s", errNoTarget, ei.op)
		}
		for _, b := range d.bodies {
			b.solid = sdf.Difference3D(b.solid, tool)
			f.bodies = append(f.bodies, b)
		}
	case kernel.OpIntersect:
		if len(d.bodies) == 0 {
			return nil, fmt.Errorf("%w: %s", errNoTarget, ei.op)
		}
		for _, b := range d.bodies {
			b.solid = sdf.Intersect3D(b.solid, tool)
			f.bodies = append(f.bodies, b)
		}
	default:
		return nil, fmt.Errorf("sdfx: unsupported operation %s", ei.op)
	}
	d.features = append(d.features, f)
	return f, nil
}

// newBody adds a body. The caller holds d.mu.
func (d *Document) newBody(s sdf.SDF3) *body {
	b := &body{
		handle: kernel.Handle(uuid.NewString()),
		name:   fmt.Sprintf("Body%d", len(d.bodies)+1),
		solid:  s,
	}
	d.bodies = append(d.bodies, b)
	return b
}

// Sketches returns the sketches in creation order.
func (d *Document) Sketches() []kernel.Sketch {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]kernel.Sketch, len(d.sketches))
	for i, s := range d.sketches {
		out[i] = s
	}
	return out
}

// Features returns the committed features in timeline order.
func (d *Document) Features() []kernel.Feature {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]kernel.Feature, len(d.features))
	for i, f := range d.features {
		out[i] = f
	}
	return out
}

// Bodies returns the bodies in creation order.
func (d *Document) Bodies() []kernel.Body {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]kernel.Body, len(d.bodies))
	for i, b := range d.bodies {
		out[i] = b
	}
	return out
}

// ToMesh converts a body to a triangle mesh using marching cubes.
func (d *Document) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	b, ok := s.(*body)
	if !ok {
		return nil, fmt.Errorf("%w: solid %T", errForeignType, s)
	}
	d.mu.Lock()
	solid, cells := b.solid, d.meshCells
	d.mu.Unlock()

	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(cells))

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		BodyName: b.name,
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// WriteSTL tessellates the union of all bodies into an STL file at path.
func (d *Document) WriteSTL(path string) error {
	d.mu.Lock()
	solids := make([]sdf.SDF3, len(d.bodies))
	for i, b := range d.bodies {
		solids[i] = b.solid
	}
	cells := d.meshCells
	d.mu.Unlock()

	if len(solids) == 0 {
		return fmt.Errorf("sdfx: document has no bodies")
	}
	render.ToSTL(sdf.Union3D(solids...), path, render.NewMarchingCubesOctree(cells))
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sdfx: write %s: %w", path, err)
	}
	return nil
}
