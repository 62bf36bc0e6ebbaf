// Package geom provides the plane, polygon and bounding-box primitives used to
// rebuild brush faces from their defining half-spaces.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tolerances for the .vmf text format. Side distances are classified at
// ClassifyPlaces decimals; clip intersections are snapped to CutPlaces
// decimals, which is the precision the format itself guarantees.
const (
	ClassifyPlaces = 6
	CutPlaces      = 2
)

// Plane is a half-space boundary: points p with Dot(Normal, p) == Distance.
// Normal is unit length.
type Plane struct {
	Normal   r3.Vec
	Distance float64
}

// PlaneFromPoints returns the plane through triangle ABC.
// The normal is Unit(Cross(A-B, C-B)), which points out of a brush for the
// clockwise point order used by .vmf sides.
// Collinear points give the zero Plane.
func PlaneFromPoints(a, b, c r3.Vec) Plane {
	cross := r3.Cross(r3.Sub(a, b), r3.Sub(c, b))
	if cross == (r3.Vec{}) {
		return Plane{}
	}
	n := r3.Unit(cross)
	return Plane{Normal: n, Distance: r3.Dot(n, a)}
}

// SignedDistance returns how far p lies in front of the plane.
func (p Plane) SignedDistance(v r3.Vec) float64 {
	return r3.Dot(p.Normal, v) - p.Distance
}

// Flip returns the same boundary facing the other way.
func (p Plane) Flip() Plane {
	return Plane{Normal: r3.Scale(-1, p.Normal), Distance: -p.Distance}
}

// Coincident reports whether both planes describe the same boundary with the
// same facing, compared at ClassifyPlaces decimals.
func (p Plane) Coincident(o Plane) bool {
	return RoundVec(p.Normal, ClassifyPlaces) == RoundVec(o.Normal, ClassifyPlaces) &&
		Round(p.Distance, ClassifyPlaces) == Round(o.Distance, ClassifyPlaces)
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	scale := math.Pow10(places)
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

// RoundVec rounds every component of v.
func RoundVec(v r3.Vec, places int) r3.Vec {
	return r3.Vec{X: Round(v.X, places), Y: Round(v.Y, places), Z: Round(v.Z, places)}
}

// Lerp interpolates from a to b by t.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}
