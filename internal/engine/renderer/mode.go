package renderer

import (
	"fmt"

	"github.com/Faultbox/brushwork/pkg/math"
)

// Mode selects how brush faces are shaded.
type Mode int

const (
	Flat Mode = iota
	Stripey
	Wireframe
	numModes
)

var modeNames = [numModes]string{"flat", "stripey", "wireframe"}

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode returns the mode with the given name.
func ParseMode(name string) (Mode, error) {
	for m := range numModes {
		if modeNames[m] == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q", name)
}

// Next cycles through the modes.
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

// fragmentShader returns the brush fragment shader for the mode.
func (m Mode) fragmentShader() string {
	if m == Stripey {
		return "stripey_brush.frag"
	}
	return "flat_brush.frag"
}

// Near is the near clip plane distance.
const Near = 4

// Projection returns the perspective matrix for a viewport. fov is the
// vertical field of view in degrees.
func Projection(width, height int, fov, drawDistance float32) math.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return math.Perspective(math.Radians(fov), aspect, Near, drawDistance)
}
