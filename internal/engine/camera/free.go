package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/brushwork/pkg/math"
)

// Move is the keyboard movement intent, each axis in [-1, 1].
type Move struct {
	Forward, Right, Up float32
}

// FreeCamera is a Quake / Source style fly camera. Angles are in degrees;
// yaw 0 looks down +Y, positive yaw turns towards +X and positive pitch
// looks down.
type FreeCamera struct {
	Pos   math.Vec3
	Pitch float32
	Yaw   float32

	Speed       float32 // Units per second
	Sensitivity float32 // Degrees per pixel of mouse motion
}

// NewFreeCamera creates a fly camera at pos.
func NewFreeCamera(pos math.Vec3) *FreeCamera {
	return &FreeCamera{
		Pos:         pos,
		Speed:       512,
		Sensitivity: 0.2,
	}
}

// Position returns the camera position in world space.
func (c *FreeCamera) Position() math.Vec3 {
	return c.Pos
}

// Forward returns the unit view direction.
func (c *FreeCamera) Forward() math.Vec3 {
	sp, cp := math32.Sincos(math.Radians(c.Pitch))
	sy, cy := math32.Sincos(math.Radians(c.Yaw))
	return math.Vec3{X: sy * cp, Y: cy * cp, Z: -sp}
}

// Right returns the unit vector to the camera's right, parallel to the
// ground.
func (c *FreeCamera) Right() math.Vec3 {
	sy, cy := math32.Sincos(math.Radians(c.Yaw))
	return math.Vec3{X: cy, Y: -sy}
}

// Up returns the camera's up vector.
func (c *FreeCamera) Up() math.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the view matrix for this camera.
func (c *FreeCamera) ViewMatrix() math.Mat4 {
	// Eye space looks down -Z; the first rotation turns world +Y into it.
	return math.RotateX(math.Radians(c.Pitch - 90)).
		Mul(math.RotateZ(math.Radians(c.Yaw))).
		Mul(math.Translate(-c.Pos.X, -c.Pos.Y, -c.Pos.Z))
}

// LookAt turns the camera to face target.
func (c *FreeCamera) LookAt(target math.Vec3) {
	d := target.Sub(c.Pos).Normalize()
	if d == (math.Vec3{}) {
		return
	}
	c.Yaw = math32.Atan2(d.X, d.Y) * 180 / math32.Pi
	c.Pitch = -math32.Asin(d.Z) * 180 / math32.Pi
}

// Look applies a mouse motion. Pitch is clamped to straight up or down.
func (c *FreeCamera) Look(dx, dy float32) {
	c.Yaw = math32.Mod(c.Yaw+dx*c.Sensitivity, 360)
	c.Pitch = clamp(c.Pitch+dy*c.Sensitivity, -90, 90)
}

// Update moves the camera along its own axes for dt seconds.
func (c *FreeCamera) Update(m Move, dt float32) {
	step := c.Speed * dt
	c.Pos = c.Pos.
		Add(c.Forward().Scale(m.Forward * step)).
		Add(c.Right().Scale(m.Right * step)).
		Add(c.Up().Scale(m.Up * step))
}
