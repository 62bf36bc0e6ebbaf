package solid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/pkg/geom"
)

// NgonRadius is the half-extent of the starting quad for each face. It must
// exceed any brush the editor can produce.
const NgonRadius = 1e4

// Reconstruct computes the polygon of every face of s from the face planes.
// A face that clips away to fewer than 3 points, or a displacement face that
// does not end up as a quad, invalidates the whole brush; in that case s is
// left unchanged and a *GeometryError is returned.
func Reconstruct(s *Solid) error {
	polys := make([]geom.Polygon, len(s.Faces))
	for i := range s.Faces {
		f := &s.Faces[i]
		poly := baseQuad(f)
		for j := range s.Faces {
			if j == i {
				continue
			}
			other := s.Faces[j].Plane
			if other.Coincident(f.Plane) || other.Coincident(f.Plane.Flip()) {
				continue
			}
			poly, _ = geom.Clip(poly, other)
			if len(poly) == 0 {
				break
			}
		}
		poly = poly.Dedupe(geom.CutPlaces)

		if len(poly) < 3 {
			return &GeometryError{
				BrushID: s.ID,
				FaceID:  f.ID,
				Reason:  fmt.Sprintf("degenerate polygon with %d vertices", len(poly)),
			}
		}
		if f.Displacement != nil && len(poly) != 4 {
			return &GeometryError{
				BrushID: s.ID,
				FaceID:  f.ID,
				Reason:  fmt.Sprintf("displacement side has %d vertices, want 4", len(poly)),
			}
		}
		polys[i] = poly
	}

	for i := range s.Faces {
		s.Faces[i].Polygon = polys[i]
	}
	return nil
}

// baseQuad returns an oversized quad lying on the face plane, centred on the
// plane's reference triangle and wound clockwise seen from outside.
func baseQuad(f *Face) geom.Polygon {
	n := f.Plane.Normal
	// Horizontal planes from rotated points carry normals like (0 0 0.9999999999999999).
	seed := r3.Vec{Z: -1}
	if geom.Round(math.Abs(n.Z), geom.ClassifyPlaces) == 1 {
		seed = r3.Vec{Y: -1}
	}
	localY := r3.Unit(r3.Cross(seed, n))
	localX := r3.Unit(r3.Cross(localY, n))

	center := r3.Scale(1.0/3, r3.Add(r3.Add(f.Triangle[0], f.Triangle[1]), f.Triangle[2]))
	x := r3.Scale(NgonRadius, localX)
	y := r3.Scale(NgonRadius, localY)
	return geom.Polygon{
		r3.Add(center, r3.Sub(y, x)),
		r3.Add(center, r3.Add(x, y)),
		r3.Add(center, r3.Sub(x, y)),
		r3.Sub(center, r3.Add(x, y)),
	}
}
