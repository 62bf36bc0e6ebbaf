package math

import (
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-4

func near(a, b float32) bool {
	return math32.Abs(a-b) < eps
}

func nearVec(a, b Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	for i := range 16 {
		if result[i] != m[i] {
			t.Errorf("M * I element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	got := m.TransformPoint(Vec3{1, 1, 1})
	if !nearVec(got, Vec3{6, 11, 16}) {
		t.Errorf("TransformPoint = %v", got)
	}
	if d := m.TransformDirection(Vec3{1, 0, 0}); !nearVec(d, Vec3{1, 0, 0}) {
		t.Errorf("TransformDirection should ignore translation, got %v", d)
	}
}

func TestRotateZ90(t *testing.T) {
	got := RotateZ(Radians(90)).TransformPoint(Vec3{1, 0, 0})
	if !nearVec(got, Vec3{0, 1, 0}) {
		t.Errorf("RotateZ(90) * X = %v, want (0, 1, 0)", got)
	}
}

func TestRotateX90(t *testing.T) {
	got := RotateX(Radians(90)).TransformPoint(Vec3{0, 1, 0})
	if !nearVec(got, Vec3{0, 0, 1}) {
		t.Errorf("RotateX(90) * Y = %v, want (0, 0, 1)", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(Radians(90), 1, 1, 100)
	if !near(m[0], 1) || !near(m[5], 1) {
		t.Errorf("Perspective focal length: got (%f, %f), want (1, 1)", m[0], m[5])
	}
	if m[11] != -1 {
		t.Errorf("Perspective m[11] = %f, want -1", m[11])
	}
	// The near plane maps to -1 and the far plane to +1 in NDC.
	if z := m.TransformPoint(Vec3{0, 0, -1}).Z; !near(z, -1) {
		t.Errorf("near plane depth = %f", z)
	}
	if z := m.TransformPoint(Vec3{0, 0, -100}).Z; !near(z, 1) {
		t.Errorf("far plane depth = %f", z)
	}
}

func TestLookAt(t *testing.T) {
	// Z-up eye on the +X axis looking at the origin.
	view := LookAt(Vec3{10, 0, 0}, Vec3{}, Vec3{0, 0, 1})
	got := view.TransformPoint(Vec3{})
	if !nearVec(got, Vec3{0, 0, -10}) {
		t.Errorf("origin in view space = %v, want (0, 0, -10)", got)
	}
	up := view.TransformDirection(Vec3{0, 0, 1})
	if !nearVec(up, Vec3{0, 1, 0}) {
		t.Errorf("world up in view space = %v, want (0, 1, 0)", up)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(3, -4, 5).Mul(RotateZ(0.7)).Mul(RotateX(-0.3))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported singular matrix")
	}
	p := Vec3{1, 2, 3}
	if got := inv.TransformPoint(m.TransformPoint(p)); !nearVec(got, p) {
		t.Errorf("inv * m * p = %v, want %v", got, p)
	}

	var zero Mat4
	if _, ok := zero.Inverse(); ok {
		t.Error("zero matrix should not be invertible")
	}
}

func TestVec3(t *testing.T) {
	c := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if c != (Vec3{0, 0, 1}) {
		t.Errorf("X cross Y = %v, want Z", c)
	}
	if l := (Vec3{3, 4, 0}).Length(); l != 5 {
		t.Errorf("Length = %f, want 5", l)
	}
	if n := (Vec3{}).Normalize(); n != (Vec3{}) {
		t.Errorf("Normalize(0) = %v", n)
	}
	if v := V3([3]float32{1, 2, 3}); v.Array() != [3]float32{1, 2, 3} {
		t.Errorf("array round trip = %v", v)
	}
}
