package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/internal/solid"
	"github.com/Faultbox/brushwork/pkg/geom"
)

var (
	// ErrNoDisplacement is returned for a face without displacement data.
	ErrNoDisplacement = errors.New("face has no displacement")
	// ErrNotQuad is returned when a displacement face is not a 4-gon.
	ErrNotQuad = errors.New("displacement face is not a quad")
	// ErrGridSize is returned when sample rows do not match the power.
	ErrGridSize = errors.New("displacement grid does not match power")
)

// BuildDisplacement tessellates the displaced surface of f. The result has
// (2^power+1)^2 vertices in row-major order and 6*(2^power)^2 indices.
func BuildDisplacement(f *solid.Face, colour [3]float32) (*Mesh, error) {
	d := f.Displacement
	if d == nil {
		return nil, fmt.Errorf("side %d: %w", f.ID, ErrNoDisplacement)
	}
	if len(f.Polygon) != 4 {
		return nil, fmt.Errorf("side %d has %d corners: %w", f.ID, len(f.Polygon), ErrNotQuad)
	}

	size := d.Size()
	if !gridOK(d, size) {
		return nil, fmt.Errorf("side %d power %d: %w", f.ID, d.Power, ErrGridSize)
	}

	corners := rotateToStart(f.Polygon, d.Start)
	a, b, c, dd := corners[0], corners[1], corners[2], corners[3]
	n := float64(size - 1)

	m := &Mesh{
		Vertices: make([]Vertex, 0, size*size),
		Bounds:   emptyBounds(),
	}
	for i := range size {
		left := geom.Lerp(a, dd, float64(i)/n)
		right := geom.Lerp(b, c, float64(i)/n)
		for j := range size {
			base := geom.Lerp(right, left, float64(j)/n)
			pos := r3.Add(base, r3.Scale(d.Distances[i][j], d.Normals[i][j]))
			u, v := f.UV(base)
			vert := Vertex{
				Position: vec32(pos),
				Attr:     [3]float32{blendAlpha(d.Alphas[i][j])},
				TexCoord: [2]float32{float32(u), float32(v)},
				Color:    colour,
			}
			m.Vertices = append(m.Vertices, vert)
			m.Bounds.extend(vert.Position)
		}
	}
	m.Indices = DisplacementIndices(d.Power)
	return m, nil
}

func gridOK(d *solid.Displacement, size int) bool {
	if len(d.Normals) != size || len(d.Distances) != size || len(d.Alphas) != size {
		return false
	}
	for i := range size {
		if len(d.Normals[i]) != size || len(d.Distances[i]) != size || len(d.Alphas[i]) != size {
			return false
		}
	}
	return true
}

// blendAlpha maps an editor alpha (0..255, sometimes 256) to 0..1.
func blendAlpha(a float64) float32 {
	return float32(min(max(a/255, 0), 1))
}

// rotateToStart reorders the corners so the one nearest start comes first.
// Ties keep the earliest corner.
func rotateToStart(poly geom.Polygon, start r3.Vec) [4]r3.Vec {
	best := 0
	bestDist := r3.Norm2(r3.Sub(poly[0], start))
	for i := 1; i < 4; i++ {
		if dist := r3.Norm2(r3.Sub(poly[i], start)); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	var out [4]r3.Vec
	for i := range out {
		out[i] = poly[(best+i)%4]
	}
	return out
}

// DisplacementIndices returns the triangle list for a displacement grid of
// the given power. The split diagonal alternates per cell: within each pair of
// cells, even rows fan around the middle vertex of their top edge and odd rows
// around the middle of their bottom edge.
func DisplacementIndices(power int) []uint32 {
	cells := 1 << power
	w := uint32(cells + 1)
	out := make([]uint32, 0, 6*cells*cells)
	for r := range cells {
		for c := range cells {
			tl := uint32(r)*w + uint32(c)
			tr := tl + 1
			bl := tl + w
			br := bl + 1
			switch {
			case r%2 == 0 && c%2 == 0:
				out = append(out, tl, bl, tr, bl, br, tr)
			case r%2 == 0:
				out = append(out, bl, br, tl, br, tr, tl)
			case c%2 == 0:
				out = append(out, tl, bl, br, tr, tl, br)
			default:
				out = append(out, tr, tl, bl, br, tr, bl)
			}
		}
	}
	return out
}
