// Package tessellate turns the bodies of a replayed document into triangle
// meshes. One mesh is produced per body.
package tessellate

import (
	"fmt"

	"github.com/chazu/lignin-replay/pkg/kernel"
)

// Tessellate produces one triangle mesh per body using the provided
// mesher. It is read-only and never mutates the bodies. Bodies that mesh
// to nothing are dropped.
func Tessellate(bodies []kernel.Body, m kernel.Mesher) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, b := range bodies {
		mesh, err := m.ToMesh(b)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for body %s: %w", b.Name(), err)
		}
		if mesh.IsEmpty() {
			continue
		}
		// Prefer the body's name, fall back to its handle.
		if b.Name() != "" {
			mesh.BodyName = b.Name()
		} else {
			mesh.BodyName = string(b.Handle())
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Stats summarizes a set of meshes.
type Stats struct {
	Bodies    int `json:"bodies"`
	Triangles int `json:"triangles"`
	Vertices  int `json:"vertices"`
}

// Summarize counts the geometry in meshes.
func Summarize(meshes []*kernel.Mesh) Stats {
	s := Stats{Bodies: len(meshes)}
	for _, m := range meshes {
		s.Triangles += m.TriangleCount()
		s.Vertices += m.VertexCount()
	}
	return s
}
