package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Polygon is an ordered loop of points. A non-empty face polygon is planar,
// convex and wound clockwise when viewed from outside the brush.
type Polygon []r3.Vec

// Clone returns a copy that shares no storage with p.
func (p Polygon) Clone() Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Centroid returns the average of the points.
func (p Polygon) Centroid() r3.Vec {
	var c r3.Vec
	if len(p) == 0 {
		return c
	}
	for _, v := range p {
		c = r3.Add(c, v)
	}
	return r3.Scale(1/float64(len(p)), c)
}

// Normal returns the Newell normal of the loop (right-handed, unit length).
// A face polygon's Normal points opposite its plane normal.
func (p Polygon) Normal() r3.Vec {
	var n r3.Vec
	for i, a := range p {
		b := p[(i+1)%len(p)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Area returns the polygon's area.
func (p Polygon) Area() float64 {
	var n r3.Vec
	for i, a := range p {
		b := p[(i+1)%len(p)]
		n = r3.Add(n, r3.Cross(a, b))
	}
	return r3.Norm(n) / 2
}

// Dedupe drops consecutive points closer than 10^-places on every axis,
// including the last/first pair.
func (p Polygon) Dedupe(places int) Polygon {
	if len(p) < 2 {
		return p.Clone()
	}
	eps := math.Pow10(-places)
	same := func(a, b r3.Vec) bool {
		return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
	}
	out := make(Polygon, 0, len(p))
	for _, v := range p {
		if len(out) > 0 && same(out[len(out)-1], v) {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && same(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// Bounds returns the axis-aligned box around the points.
func Bounds(points ...r3.Vec) r3.Box {
	if len(points) == 0 {
		return r3.Box{}
	}
	box := r3.Box{Min: points[0], Max: points[0]}
	for _, v := range points[1:] {
		box.Min = r3.Vec{X: math.Min(box.Min.X, v.X), Y: math.Min(box.Min.Y, v.Y), Z: math.Min(box.Min.Z, v.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, v.X), Y: math.Max(box.Max.Y, v.Y), Z: math.Max(box.Max.Z, v.Z)}
	}
	return box
}
