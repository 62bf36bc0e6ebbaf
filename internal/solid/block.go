package solid

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/pkg/geom"
)

// Block returns the axis-aligned brush spanning lo..hi with faces in the
// order the editor's block tool writes them (top, bottom, -X, +X, +Y, -Y)
// and face ids 1..6. Polygons are reconstructed before returning.
func Block(id uint64, lo, hi r3.Vec) (*Solid, error) {
	x0, y0, z0 := lo.X, lo.Y, lo.Z
	x1, y1, z1 := hi.X, hi.Y, hi.Z
	tris := [6][3]r3.Vec{
		{{X: x0, Y: y1, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x1, Y: y0, Z: z1}},
		{{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}},
		{{X: x0, Y: y1, Z: z1}, {X: x0, Y: y0, Z: z1}, {X: x0, Y: y0, Z: z0}},
		{{X: x1, Y: y1, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z1}},
		{{X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z0}},
		{{X: x1, Y: y0, Z: z0}, {X: x0, Y: y0, Z: z0}, {X: x0, Y: y0, Z: z1}},
	}
	s := &Solid{ID: id, Colour: [3]float32{1, 1, 1}}
	for i, tri := range tris {
		s.Faces = append(s.Faces, Face{
			ID:       uint64(i + 1),
			Triangle: tri,
			Plane:    geom.PlaneFromPoints(tri[0], tri[1], tri[2]),
			UAxis:    TextureAxis{Direction: r3.Vec{X: 1}, Scale: 0.25},
			VAxis:    TextureAxis{Direction: r3.Vec{Y: -1}, Scale: 0.25},
		})
	}
	if err := Reconstruct(s); err != nil {
		return nil, err
	}
	return s, nil
}
