package tessellate

import (
	"encoding/json"
	"io"

	"github.com/chazu/lignin-replay/pkg/kernel"
)

// palette assigns distinct colors to bodies in viewer output.
var palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// ViewerMesh is the JSON mesh format consumed by WebGL viewers.
type ViewerMesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	BodyName string    `json:"bodyName"`
	Color    string    `json:"color"`
}

// ForViewer converts meshes to the viewer format, cycling through the
// palette in body order.
func ForViewer(meshes []*kernel.Mesh) []ViewerMesh {
	out := make([]ViewerMesh, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, ViewerMesh{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			BodyName: m.BodyName,
			Color:    palette[i%len(palette)],
		})
	}
	return out
}

// WriteJSON writes meshes as a JSON array of ViewerMesh.
func WriteJSON(w io.Writer, meshes []*kernel.Mesh) error {
	return json.NewEncoder(w).Encode(ForViewer(meshes))
}
