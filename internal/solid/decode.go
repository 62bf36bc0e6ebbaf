package solid

import (
	"errors"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/pkg/geom"
	"github.com/Faultbox/brushwork/pkg/vmf"
)

// Decode reads a "solid" block. Face polygons are left empty; call
// Reconstruct to compute them.
func Decode(n *vmf.Node) (*Solid, error) {
	id, err := strconv.ParseUint(n.Value("id"), 10, 64)
	if err != nil {
		return nil, &DecodeError{Line: n.Line, Err: fmt.Errorf("id: %w", err)}
	}
	s := &Solid{ID: id, Colour: [3]float32{1, 1, 1}}
	fail := func(err error) (*Solid, error) {
		return nil, &DecodeError{BrushID: id, Line: n.Line, Err: err}
	}

	if ed := n.Child("editor"); ed != nil {
		if c, ok := ed.Get("color"); ok {
			rgb, err := vmf.Floats(c)
			if err != nil || len(rgb) != 3 {
				return fail(fmt.Errorf("editor color %q", c))
			}
			for i := range rgb {
				s.Colour[i] = float32(rgb[i] / 255)
			}
		}
	}

	sides := n.All("side")
	if len(sides) < 4 {
		return fail(fmt.Errorf("%d sides, a solid needs at least 4", len(sides)))
	}
	for _, side := range sides {
		f, err := decodeFace(side)
		if err != nil {
			return fail(err)
		}
		s.Faces = append(s.Faces, f)
	}
	return s, nil
}

func decodeFace(n *vmf.Node) (Face, error) {
	var f Face
	id, err := strconv.ParseUint(n.Value("id"), 10, 64)
	if err != nil {
		return f, fmt.Errorf("side id: %w", err)
	}
	f.ID = id

	f.Triangle, err = vmf.Triangle(n.Value("plane"))
	if err != nil {
		return f, fmt.Errorf("side %d: %w", id, err)
	}
	f.Plane = geom.PlaneFromPoints(f.Triangle[0], f.Triangle[1], f.Triangle[2])
	if r3.Norm(f.Plane.Normal) == 0 {
		return f, fmt.Errorf("side %d: plane points are collinear", id)
	}

	f.Material = n.Value("material")
	if f.UAxis, err = decodeAxis(n, "uaxis"); err != nil {
		return f, fmt.Errorf("side %d: %w", id, err)
	}
	if f.VAxis, err = decodeAxis(n, "vaxis"); err != nil {
		return f, fmt.Errorf("side %d: %w", id, err)
	}

	// optional scalars, absent in hand written maps
	if v, ok := n.Get("rotation"); ok {
		if f.Rotation, err = strconv.ParseFloat(v, 64); err != nil {
			return f, fmt.Errorf("side %d rotation: %w", id, err)
		}
	}
	if v, ok := n.Get("lightmapscale"); ok {
		if f.LightmapScale, err = strconv.Atoi(v); err != nil {
			return f, fmt.Errorf("side %d lightmapscale: %w", id, err)
		}
	}
	if v, ok := n.Get("smoothing_groups"); ok {
		if f.SmoothingGroups, err = strconv.Atoi(v); err != nil {
			return f, fmt.Errorf("side %d smoothing_groups: %w", id, err)
		}
	}

	if disp := n.Child("dispinfo"); disp != nil {
		d, err := decodeDisplacement(disp)
		if err != nil {
			return f, fmt.Errorf("side %d dispinfo: %w", id, err)
		}
		f.Displacement = d
	}
	return f, nil
}

func decodeAxis(n *vmf.Node, key string) (TextureAxis, error) {
	v, ok := n.Get(key)
	if !ok {
		return TextureAxis{Scale: 1}, nil
	}
	dir, off, scale, err := vmf.Axis(v)
	if err != nil {
		return TextureAxis{}, err
	}
	return TextureAxis{Direction: dir, Offset: off, Scale: scale}, nil
}

var errBadRow = errors.New("row length does not match power")

func decodeDisplacement(n *vmf.Node) (*Displacement, error) {
	power, err := strconv.Atoi(n.Value("power"))
	if err != nil {
		return nil, fmt.Errorf("power: %w", err)
	}
	if power < 0 || power > MaxPower {
		return nil, fmt.Errorf("power %d out of range 0..%d", power, MaxPower)
	}
	d := &Displacement{Power: power}
	if d.Start, err = vmf.BracketVec(n.Value("startposition")); err != nil {
		return nil, err
	}

	size := d.Size()
	normals, distances, alphas := n.Child("normals"), n.Child("distances"), n.Child("alphas")
	if normals == nil || distances == nil {
		return nil, errors.New("missing normals or distances")
	}
	for i := 0; i < size; i++ {
		row := "row" + strconv.Itoa(i)

		nr, err := vmf.Vec3s(normals.Value(row))
		if err != nil {
			return nil, fmt.Errorf("normals %s: %w", row, err)
		}
		dr, err := vmf.Floats(distances.Value(row))
		if err != nil {
			return nil, fmt.Errorf("distances %s: %w", row, err)
		}
		ar := make([]float64, size)
		if alphas != nil {
			if ar, err = vmf.Floats(alphas.Value(row)); err != nil {
				return nil, fmt.Errorf("alphas %s: %w", row, err)
			}
		}
		if len(nr) != size || len(dr) != size || len(ar) != size {
			return nil, fmt.Errorf("%s: %w", row, errBadRow)
		}
		d.Normals = append(d.Normals, nr)
		d.Distances = append(d.Distances, dr)
		d.Alphas = append(d.Alphas, ar)
	}
	return d, nil
}
