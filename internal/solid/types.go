// Package solid rebuilds brush faces from the planes that define them.
//
// A brush (solid) is a convex polyhedron described only by its bounding
// planes. Reconstruct turns each plane into a finite convex polygon by
// clipping an oversized quad against every other plane of the brush.
package solid

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/pkg/geom"
)

// TextureAxis is one half of a face's UV projection.
type TextureAxis struct {
	Direction r3.Vec
	Offset    float64
	Scale     float64
}

// Project returns the texture coordinate of p along this axis.
// A zero scale is treated as 1.
func (a TextureAxis) Project(p r3.Vec) float64 {
	scale := a.Scale
	if scale == 0 {
		scale = 1
	}
	return (r3.Dot(p, a.Direction) + a.Offset) / scale
}

// Face is one bounding plane of a brush together with its computed polygon.
type Face struct {
	ID       uint64
	Plane    geom.Plane
	Triangle [3]r3.Vec // reference points the plane was defined by
	Polygon  geom.Polygon

	Material        string
	UAxis           TextureAxis
	VAxis           TextureAxis
	Rotation        float64
	LightmapScale   int
	SmoothingGroups int

	Displacement *Displacement
}

// UV returns the texture coordinates of a point on the face.
func (f *Face) UV(p r3.Vec) (u, v float64) {
	return f.UAxis.Project(p), f.VAxis.Project(p)
}

// Displacement is a subdivided, deformed surface replacing a quad face.
// All grids are row major with Size() rows and columns.
type Displacement struct {
	Power     int
	Start     r3.Vec
	Normals   [][]r3.Vec
	Distances [][]float64
	Alphas    [][]float64
}

// MaxPower is the largest supported displacement power.
const MaxPower = 4

// Size returns the number of grid points along one edge: 2^Power + 1.
func (d *Displacement) Size() int {
	return 1<<d.Power + 1
}

// Solid is a convex brush.
type Solid struct {
	ID     uint64
	Colour [3]float32 // editor colour, 0..1
	Faces  []Face
}

// IsDisplacement reports whether any face carries a displacement.
func (s *Solid) IsDisplacement() bool {
	for i := range s.Faces {
		if s.Faces[i].Displacement != nil {
			return true
		}
	}
	return false
}

// Face returns the face with the given id.
func (s *Solid) Face(id uint64) (*Face, bool) {
	for i := range s.Faces {
		if s.Faces[i].ID == id {
			return &s.Faces[i], true
		}
	}
	return nil, false
}

// Bounds returns the box around every face polygon.
func (s *Solid) Bounds() r3.Box {
	var points []r3.Vec
	for i := range s.Faces {
		points = append(points, s.Faces[i].Polygon...)
	}
	return geom.Bounds(points...)
}
