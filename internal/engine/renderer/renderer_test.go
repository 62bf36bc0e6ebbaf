package renderer

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/brushwork/internal/config"
	"github.com/Faultbox/brushwork/pkg/math"
)

func TestParseMode(t *testing.T) {
	for _, name := range config.RenderModes {
		m, err := ParseMode(name)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", name, err)
		}
		if m.String() != name {
			t.Errorf("ParseMode(%q).String() = %q", name, m)
		}
	}
	if _, err := ParseMode("textured"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if s := Mode(7).String(); s != "Mode(7)" {
		t.Errorf("String() = %q", s)
	}
}

func TestModeNext(t *testing.T) {
	m := Flat
	seen := map[Mode]bool{}
	for range numModes {
		seen[m] = true
		m = m.Next()
	}
	if m != Flat || len(seen) != int(numModes) {
		t.Errorf("Next did not cycle through all modes: %v", seen)
	}
}

func TestProjection(t *testing.T) {
	p := Projection(1600, 800, 90, 16384)
	// tan(45°) = 1, so the focal length is 1 vertically and 1/aspect horizontally.
	if math32.Abs(p[5]-1) > 1e-5 || math32.Abs(p[0]-0.5) > 1e-5 {
		t.Errorf("focal lengths = (%f, %f), want (0.5, 1)", p[0], p[5])
	}
	if z := p.TransformPoint(math.Vec3{Z: -Near}).Z; math32.Abs(z+1) > 1e-4 {
		t.Errorf("near plane depth = %f, want -1", z)
	}

	// A zero height must not divide by zero.
	if p := Projection(100, 0, 90, 100); math32.IsNaN(p[0]) || math32.IsInf(p[0], 0) {
		t.Errorf("degenerate viewport gave %f", p[0])
	}
}
