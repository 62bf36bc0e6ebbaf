// Package mesh turns reconstructed solids into GPU-ready vertex records and
// triangle index lists.
package mesh

import "github.com/chewxy/math32"

// Stride is the size in bytes of one encoded Vertex.
const Stride = 44

// Vertex is one record of the shared brush/displacement vertex buffer.
//
// Attr holds the face normal for brush vertices. Displacement vertices store
// their blend alpha in Attr[0] and leave the rest zero.
type Vertex struct {
	Position [3]float32
	Attr     [3]float32
	TexCoord [2]float32
	Color    [3]float32
}

// Mesh holds triangle data ready for upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: [3]float32{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

func (b *Bounds) extend(p [3]float32) {
	for i := range p {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// VertexBytes returns the encoded vertex records.
func (m *Mesh) VertexBytes() []byte {
	return EncodeVertices(m.Vertices)
}

// IndexBytes returns the encoded index list.
func (m *Mesh) IndexBytes() []byte {
	return EncodeIndices(m.Indices)
}
