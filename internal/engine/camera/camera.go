// Package camera provides the viewer's cameras. World space is Z-up, as in
// the map editor.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/brushwork/pkg/math"
)

// Camera is anything that can produce a view matrix.
type Camera interface {
	Position() math.Vec3
	ViewMatrix() math.Mat4
}

var worldUp = math.Vec3{Z: 1}

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the XY plane (radians)
	Yaw      float32 // Rotation around Z (radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        512,
		Pitch:           0.5,
		MinDistance:     16,
		MaxDistance:     32768,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sp, cp := math32.Sincos(c.Pitch)
	sy, cy := math32.Sincos(c.Yaw)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cp * sy,
		Y: -c.Distance * cp * cy,
		Z: c.Distance * sp,
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, worldUp)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point in the camera's ground plane.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	// Speed scales with distance for consistent feel
	speed := c.Distance * 0.01

	sy, cy := math32.Sincos(c.Yaw)
	fwd := math.Vec3{X: -sy, Y: cy}
	side := math.Vec3{X: cy, Y: sy}
	c.Center = c.Center.
		Add(fwd.Scale(forward * speed)).
		Add(side.Scale(right * speed)).
		Add(worldUp.Scale(up * speed))
}

// FitToBounds centres the camera on a box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(lo, hi [3]float32) {
	a, b := math.V3(lo), math.V3(hi)
	c.Center = a.Add(b).Scale(0.5)
	c.Distance = clamp(b.Distance(a), c.MinDistance, c.MaxDistance)
	c.Pitch = 0.6
	c.Yaw = 0
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}
