package mesh

import "github.com/Faultbox/brushwork/pkg/obj"

// ModelColour is the flat grey every model is drawn in.
var ModelColour = [3]float32{0.75, 0.75, 0.75}

// BuildModel fan-triangulates every face of m. Corners with the same
// position, normal and texture coordinate share one vertex record; a missing
// normal or texture coordinate is zero.
func BuildModel(m *obj.Model) *Mesh {
	out := &Mesh{Bounds: emptyBounds()}
	seen := make(map[Vertex]uint32)

	for _, f := range m.Faces {
		face := make([]uint32, 0, len(f))
		for _, c := range f {
			vert := Vertex{
				Position: vec32(m.Positions[c.Position]),
				Color:    ModelColour,
			}
			if c.Normal != obj.Missing {
				vert.Attr = vec32(m.Normals[c.Normal])
			}
			if c.TexCoord != obj.Missing {
				uv := m.TexCoords[c.TexCoord]
				vert.TexCoord = [2]float32{float32(uv[0]), float32(uv[1])}
			}
			idx, ok := seen[vert]
			if !ok {
				idx = uint32(len(out.Vertices))
				seen[vert] = idx
				out.Vertices = append(out.Vertices, vert)
				out.Bounds.extend(vert.Position)
			}
			face = append(face, idx)
		}
		out.Indices = append(out.Indices, TriangleFan(face)...)
	}
	return out
}
