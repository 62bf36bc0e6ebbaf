package picking

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/internal/solid"
	"github.com/Faultbox/brushwork/pkg/math"
)

// Margin is how far outside a neighbouring plane a hit point may lie and still
// count as on the brush.
const Margin = 0.01

// Hit identifies the face a ray struck.
type Hit struct {
	Solid uint64
	Face  uint64
	T     float64 // distance along the ray
}

// IntersectSolid casts r against the planes of a convex brush. Faces seen
// from behind are skipped, so a ray starting inside the brush misses it.
func IntersectSolid(r Ray, s *solid.Solid) (Hit, bool) {
	origin, dir := toR3(r.Origin), toR3(r.Direction)
	best := Hit{Solid: s.ID}
	found := false
	for i := range s.Faces {
		f := &s.Faces[i]
		align := r3.Dot(f.Plane.Normal, dir)
		if align >= 0 {
			continue
		}
		d := f.Plane.SignedDistance(origin)
		if d < Margin {
			continue
		}
		t := -d / align
		if found && t >= best.T {
			continue
		}
		if !inside(s, f.ID, r3.Add(origin, r3.Scale(t, dir))) {
			continue
		}
		best.Face, best.T = f.ID, t
		found = true
	}
	return best, found
}

func inside(s *solid.Solid, skip uint64, p r3.Vec) bool {
	for i := range s.Faces {
		f := &s.Faces[i]
		if f.ID != skip && f.Plane.SignedDistance(p) > Margin {
			return false
		}
	}
	return true
}

// Pick returns the nearest brush face hit by r. Solids for which hidden
// reports true are ignored; hidden may be nil.
func Pick(r Ray, solids []*solid.Solid, hidden func(id uint64) bool) (Hit, bool) {
	var best Hit
	found := false
	for _, s := range solids {
		if hidden != nil && hidden(s.ID) {
			continue
		}
		b := s.Bounds()
		box := NewAABB(toArray(b.Min), toArray(b.Max))
		box = pad(box, Margin)
		if t, ok := r.IntersectAABB(box); !ok || (found && float64(t) > best.T+Margin) {
			continue
		}
		if h, ok := IntersectSolid(r, s); ok && (!found || h.T < best.T) {
			best, found = h, true
		}
	}
	return best, found
}

func pad(box AABB, by float32) AABB {
	for i := range 3 {
		box.Min[i] -= by
		box.Max[i] += by
	}
	return box
}

func toR3(v math.Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func toArray(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
