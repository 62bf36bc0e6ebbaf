package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/internal/solid"
)

// BuildBrush triangulates every face polygon of s. Identical vertex records
// are shared between triangles of the same brush.
func BuildBrush(s *solid.Solid) *Mesh {
	m := &Mesh{Bounds: emptyBounds()}
	seen := make(map[Vertex]uint32)

	for i := range s.Faces {
		f := &s.Faces[i]
		if len(f.Polygon) < 3 {
			continue
		}
		normal := vec32(f.Plane.Normal)

		face := make([]uint32, 0, len(f.Polygon))
		for _, p := range f.Polygon {
			u, v := f.UV(p)
			vert := Vertex{
				Position: vec32(p),
				Attr:     normal,
				TexCoord: [2]float32{float32(u), float32(v)},
				Color:    s.Colour,
			}
			idx, ok := seen[vert]
			if !ok {
				idx = uint32(len(m.Vertices))
				seen[vert] = idx
				m.Vertices = append(m.Vertices, vert)
				m.Bounds.extend(vert.Position)
			}
			face = append(face, idx)
		}
		m.Indices = append(m.Indices, TriangleFan(face)...)
	}
	return m
}

// TriangleFan splits a convex polygon, given as vertex indices in winding
// order, into len(poly)-2 triangles sharing the first vertex.
func TriangleFan(poly []uint32) []uint32 {
	if len(poly) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(poly)-2)*3)
	out = append(out, poly[0], poly[1], poly[2])
	for _, v := range poly[3:] {
		out = append(out, poly[0], out[len(out)-1], v)
	}
	return out
}

func vec32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
