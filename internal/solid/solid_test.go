package solid

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/pkg/geom"
	"github.com/Faultbox/brushwork/pkg/vmf"
)

func cube(t *testing.T) *Solid {
	t.Helper()
	s, err := Block(1, r3.Vec{X: -64, Y: -64, Z: -64}, r3.Vec{X: 64, Y: 64, Z: 64})
	require.NoError(t, err)
	return s
}

func TestCubeReconstruction(t *testing.T) {
	s := cube(t)
	require.Len(t, s.Faces, 6)

	for _, f := range s.Faces {
		require.Len(t, f.Polygon, 4, "face %d", f.ID)
		for _, v := range f.Polygon {
			for _, c := range []float64{v.X, v.Y, v.Z} {
				assert.Equal(t, 64.0, math.Abs(c), "face %d vertex %v", f.ID, v)
			}
			assert.InDelta(t, 0, f.Plane.SignedDistance(v), 1e-9)
		}
		assert.InDelta(t, 128*128, f.Polygon.Area(), 1e-6, "face %d", f.ID)

		size := geom.Bounds(f.Polygon...).Size()
		extents := []float64{size.X, size.Y, size.Z}
		var sides int
		for _, e := range extents {
			if e == 128 {
				sides++
			} else {
				assert.Equal(t, 0.0, e)
			}
		}
		assert.Equal(t, 2, sides, "face %d is not a 128x128 square", f.ID)

		// clockwise seen from outside
		assert.InDelta(t, -1, r3.Dot(f.Polygon.Normal(), f.Plane.Normal), 1e-9, "face %d winding", f.ID)
	}

	box := s.Bounds()
	assert.Equal(t, r3.Vec{X: -64, Y: -64, Z: -64}, box.Min)
	assert.Equal(t, r3.Vec{X: 64, Y: 64, Z: 64}, box.Max)
	assert.False(t, s.IsDisplacement())
}

func TestWedgeReconstruction(t *testing.T) {
	// block with its +X top edge chamfered away by a 45 degree ramp
	s := &Solid{ID: 7}
	add := func(a, b, c r3.Vec) {
		s.Faces = append(s.Faces, Face{ID: uint64(len(s.Faces) + 1), Triangle: [3]r3.Vec{a, b, c}, Plane: geom.PlaneFromPoints(a, b, c)})
	}
	block, err := Block(0, r3.Vec{X: -64, Y: -64, Z: -64}, r3.Vec{X: 64, Y: 64, Z: 64})
	require.NoError(t, err)
	for _, f := range block.Faces {
		add(f.Triangle[0], f.Triangle[1], f.Triangle[2])
	}
	// ramp through (0,*,64) and (64,*,0), facing +X+Z
	add(r3.Vec{X: 0, Y: 64, Z: 64}, r3.Vec{X: 64, Y: 64, Z: 0}, r3.Vec{X: 64, Y: -64, Z: 0})
	require.InDelta(t, 1, r3.Dot(s.Faces[6].Plane.Normal, r3.Unit(r3.Vec{X: 1, Z: 1})), 1e-9)

	require.NoError(t, Reconstruct(s))
	counts := make([]int, len(s.Faces))
	for i, f := range s.Faces {
		counts[i] = len(f.Polygon)
	}
	// top and +X shrink, the +Y/-Y sides gain a corner
	assert.Equal(t, []int{4, 4, 4, 4, 5, 5, 4}, counts)
	for _, f := range s.Faces {
		assert.InDelta(t, -1, r3.Dot(f.Polygon.Normal(), f.Plane.Normal), 1e-6, "face %d winding", f.ID)
	}
}

func TestReconstructDegenerate(t *testing.T) {
	s := cube(t)
	before := s.Faces[0].Polygon.Clone()
	// a second floor plane above the top face: the top clips away entirely
	tri := [3]r3.Vec{{X: -64, Y: 64, Z: 0}, {X: 64, Y: 64, Z: 0}, {X: 64, Y: -64, Z: 0}}
	s.Faces = append(s.Faces, Face{ID: 99, Triangle: tri, Plane: geom.PlaneFromPoints(tri[0], tri[1], tri[2])})

	err := Reconstruct(s)
	var gerr *GeometryError
	require.True(t, errors.As(err, &gerr), "got %v", err)
	assert.Equal(t, uint64(1), gerr.BrushID)
	assert.Equal(t, uint64(1), gerr.FaceID)
	assert.Contains(t, gerr.Error(), "solid 1 side 1")
	assert.Equal(t, before, s.Faces[0].Polygon, "failed reconstruction must not touch faces")
}

func TestBaseQuadNearlyVerticalNormal(t *testing.T) {
	for _, z := range []float64{0.9999999999999999, -0.9999999999999999, 1, -1} {
		f := &Face{Plane: geom.Plane{Normal: r3.Vec{X: math.Copysign(0, -1), Z: z}, Distance: 64 * z}}
		quad := baseQuad(f)
		require.Len(t, quad, 4)
		for _, v := range quad {
			assert.False(t, math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z), "normal z %v: %v", z, quad)
		}
		assert.InDelta(t, -1, r3.Dot(quad.Normal(), f.Plane.Normal), 1e-9, "normal z %v winding", z)
	}
}

func TestReconstructRotatedHorizontalTriangle(t *testing.T) {
	// top plane given by three points of a rotated pentagon instead of the block corners
	text := strings.Replace(blockVMF(5, ""), "(-64 64 64) (64 64 64) (64 -64 64)", "(100 0 64) (-80.9 58.78 64) (30.9 95.11 64)", 1)
	nodes := parseSolids(t, text)
	require.Len(t, nodes, 1)

	s, err := Build(nodes[0])
	require.NoError(t, err)
	top := s.Faces[0]
	assert.InDelta(t, 1, top.Plane.Normal.Z, 1e-9)
	require.Len(t, top.Polygon, 4)
	assert.InDelta(t, 128*128, top.Polygon.Area(), 1e-6)
	for _, f := range s.Faces {
		assert.InDelta(t, -1, r3.Dot(f.Polygon.Normal(), f.Plane.Normal), 1e-6, "face %d winding", f.ID)
	}
}

// prism returns a regular n-gon prism of the given radius between z 0 and 64.
// Top and bottom are defined by points of the polygon itself.
func prism(id uint64, n int, radius float64) *Solid {
	ring := make([]r3.Vec, n)
	for i := range ring {
		a := math.Pi/2 + 2*math.Pi*float64(i)/float64(n) // counter-clockwise from +Y
		ring[i] = r3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	at := func(p r3.Vec, z float64) r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: z} }

	s := &Solid{ID: id}
	add := func(a, b, c r3.Vec) {
		s.Faces = append(s.Faces, Face{ID: uint64(len(s.Faces) + 1), Triangle: [3]r3.Vec{a, b, c}, Plane: geom.PlaneFromPoints(a, b, c)})
	}
	add(at(ring[2], 64), at(ring[1], 64), at(ring[0], 64))
	add(at(ring[0], 0), at(ring[1], 0), at(ring[2], 0))
	for i, p := range ring {
		q := ring[(i+1)%n]
		add(at(p, 64), at(q, 64), at(q, 0))
	}
	return s
}

func TestReconstructPrisms(t *testing.T) {
	for _, n := range []int{3, 5, 7, 8, 12} {
		t.Run(fmt.Sprintf("%d sides", n), func(t *testing.T) {
			s := prism(uint64(n), n, 128)
			require.InDelta(t, 1, s.Faces[0].Plane.Normal.Z, 1e-9, "top faces up")
			require.InDelta(t, -1, s.Faces[1].Plane.Normal.Z, 1e-9, "bottom faces down")

			require.NoError(t, Reconstruct(s))
			require.Len(t, s.Faces[0].Polygon, n, "top")
			require.Len(t, s.Faces[1].Polygon, n, "bottom")
			for _, f := range s.Faces[2:] {
				assert.Len(t, f.Polygon, 4, "side %d", f.ID)
			}

			want := float64(n) / 2 * 128 * 128 * math.Sin(2*math.Pi/float64(n))
			assert.InDelta(t, want, s.Faces[0].Polygon.Area(), 2)
			for _, f := range s.Faces {
				assert.InDelta(t, -1, r3.Dot(f.Polygon.Normal(), f.Plane.Normal), 1e-3, "face %d winding", f.ID)
			}
		})
	}
}

func TestReconstructDisplacementNeedsQuad(t *testing.T) {
	s := &Solid{ID: 3}
	// triangular prism: the end caps are triangles
	tris := [][3]r3.Vec{
		{{X: 0, Y: 0, Z: 0}, {X: 64, Y: 0, Z: 0}, {X: 64, Y: 64, Z: 0}},    // bottom, -Z
		{{X: 0, Y: 0, Z: 64}, {X: 0, Y: 64, Z: 64}, {X: 64, Y: 64, Z: 64}}, // top, +Z
		{{X: 64, Y: 0, Z: 64}, {X: 64, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}},    // -Y
		{{X: 0, Y: 64, Z: 0}, {X: 0, Y: 64, Z: 64}, {X: 0, Y: 0, Z: 64}},   // -X
		{{X: 0, Y: 64, Z: 64}, {X: 0, Y: 64, Z: 0}, {X: 64, Y: 0, Z: 0}},   // x+y=64
	}
	for i, tri := range tris {
		s.Faces = append(s.Faces, Face{ID: uint64(i + 1), Triangle: tri, Plane: geom.PlaneFromPoints(tri[0], tri[1], tri[2])})
	}
	require.NoError(t, Reconstruct(s))
	require.Len(t, s.Faces[1].Polygon, 3, "top cap")

	s.Faces[1].Displacement = &Displacement{Power: 2}
	err := Reconstruct(s)
	var gerr *GeometryError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, uint64(2), gerr.FaceID)
	assert.True(t, s.IsDisplacement())
}

func TestTextureProjection(t *testing.T) {
	f := Face{
		UAxis: TextureAxis{Direction: r3.Vec{X: 1}, Offset: 16, Scale: 0.25},
		VAxis: TextureAxis{Direction: r3.Vec{Y: -1}, Offset: 0, Scale: 0},
	}
	u, v := f.UV(r3.Vec{X: 8, Y: 4})
	assert.Equal(t, 96.0, u)
	assert.Equal(t, -4.0, v)
}

// blockVMF writes a solid block the way Hammer saves a 128 unit cube.
func blockVMF(id int, disp string) string {
	sides := []string{
		"(-64 64 64) (64 64 64) (64 -64 64)",
		"(-64 -64 -64) (64 -64 -64) (64 64 -64)",
		"(-64 64 64) (-64 -64 64) (-64 -64 -64)",
		"(64 64 -64) (64 -64 -64) (64 -64 64)",
		"(64 64 64) (-64 64 64) (-64 64 -64)",
		"(64 -64 -64) (-64 -64 -64) (-64 -64 64)",
	}
	var b strings.Builder
	fmt.Fprintf(&b, "solid\n{\n\"id\" \"%d\"\n", id)
	for i, p := range sides {
		fmt.Fprintf(&b, "side\n{\n\"id\" \"%d\"\n\"plane\" \"%s\"\n\"material\" \"TOOLS/TOOLSNODRAW\"\n", i+1, p)
		b.WriteString("\"uaxis\" \"[1 0 0 0] 0.25\"\n\"vaxis\" \"[0 -1 0 0] 0.25\"\n\"rotation\" \"0\"\n\"lightmapscale\" \"16\"\n\"smoothing_groups\" \"0\"\n")
		if i == 0 && disp != "" {
			b.WriteString(disp)
		}
		b.WriteString("}\n")
	}
	b.WriteString("editor\n{\n\"color\" \"0 255 51\"\n}\n}\n")
	return b.String()
}

func dispinfoVMF(power int, alpha string) string {
	n := 1<<power + 1
	var normals, dists, alphas strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&normals, "\"row%d\" \"%s\"\n", i, strings.TrimSpace(strings.Repeat("0 0 1 ", n)))
		fmt.Fprintf(&dists, "\"row%d\" \"%s\"\n", i, strings.TrimSpace(strings.Repeat("8 ", n)))
		fmt.Fprintf(&alphas, "\"row%d\" \"%s\"\n", i, strings.TrimSpace(strings.Repeat(alpha+" ", n)))
	}
	return fmt.Sprintf("dispinfo\n{\n\"power\" \"%d\"\n\"startposition\" \"[-64 -64 64]\"\nnormals\n{\n%s}\ndistances\n{\n%s}\nalphas\n{\n%s}\n}\n",
		power, normals.String(), dists.String(), alphas.String())
}

func parseSolids(t *testing.T, text string) []*vmf.Node {
	t.Helper()
	root, err := vmf.ParseBytes([]byte("world\n{\n" + text + "}\n"))
	require.NoError(t, err)
	return root.Solids()
}

func TestDecode(t *testing.T) {
	nodes := parseSolids(t, blockVMF(42, dispinfoVMF(2, "255")))
	require.Len(t, nodes, 1)

	s, err := Build(nodes[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(42), s.ID)
	assert.Equal(t, [3]float32{0, 1, 0.2}, s.Colour)
	require.Len(t, s.Faces, 6)
	assert.True(t, s.IsDisplacement())

	top := s.Faces[0]
	assert.Equal(t, "TOOLS/TOOLSNODRAW", top.Material)
	assert.Equal(t, 16, top.LightmapScale)
	assert.Equal(t, TextureAxis{Direction: r3.Vec{X: 1}, Scale: 0.25}, top.UAxis)
	require.NotNil(t, top.Displacement)
	assert.Equal(t, 5, top.Displacement.Size())
	assert.Len(t, top.Displacement.Normals, 5)
	assert.Equal(t, r3.Vec{Z: 1}, top.Displacement.Normals[4][4])
	assert.Equal(t, 8.0, top.Displacement.Distances[2][3])
	assert.Equal(t, r3.Vec{X: -64, Y: -64, Z: 64}, top.Displacement.Start)

	f, ok := s.Face(4)
	require.True(t, ok)
	assert.Equal(t, r3.Vec{X: 1}, f.Plane.Normal)
	_, ok = s.Face(77)
	assert.False(t, ok)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bad id", strings.Replace(blockVMF(1, ""), "\"id\" \"1\"", "\"id\" \"x\"", 1)},
		{"bad plane", strings.Replace(blockVMF(1, ""), "(-64 64 64) (64 64 64) (64 -64 64)", "(0 0 0) (1 1 1)", 1)},
		{"collinear plane", strings.Replace(blockVMF(1, ""), "(-64 64 64) (64 64 64) (64 -64 64)", "(0 0 0) (1 1 1) (2 2 2)", 1)},
		{"power", blockVMF(1, strings.Replace(dispinfoVMF(2, "0"), "\"power\" \"2\"", "\"power\" \"5\"", 1))},
		{"short row", blockVMF(1, strings.Replace(dispinfoVMF(1, "0"), "\"row0\" \"8 8 8\"", "\"row0\" \"8 8\"", 1))},
		{"too few sides", "solid\n{\n\"id\" \"1\"\n}\n"},
		{"bad rotation", strings.Replace(blockVMF(1, ""), "\"rotation\" \"0\"", "\"rotation\" \"half\"", 1)},
		{"bad lightmapscale", strings.Replace(blockVMF(1, ""), "\"lightmapscale\" \"16\"", "\"lightmapscale\" \"16.5\"", 1)},
		{"bad smoothing groups", strings.Replace(blockVMF(1, ""), "\"smoothing_groups\" \"0\"", "\"smoothing_groups\" \"\"", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := parseSolids(t, tt.text)
			require.Len(t, nodes, 1)
			_, err := Build(nodes[0])
			var derr *DecodeError
			assert.True(t, errors.As(err, &derr), "got %v", err)
		})
	}
}

func TestImportAllPartialFailure(t *testing.T) {
	// brush 2 has its floor moved up onto the top face, leaving no volume
	bad := strings.Replace(blockVMF(2, ""), "(-64 -64 -64) (64 -64 -64) (64 64 -64)", "(-64 -64 64) (64 -64 64) (64 64 64)", 1)
	text := blockVMF(1, "") + bad + blockVMF(3, dispinfoVMF(3, "256")) + blockVMF(4, "")
	nodes := parseSolids(t, text)
	require.Len(t, nodes, 4)

	solids, log := ImportAll(nodes, ImportOptions{Workers: 2})
	require.Len(t, solids, 3)
	assert.Equal(t, []uint64{1, 3, 4}, []uint64{solids[0].ID, solids[1].ID, solids[2].ID})

	require.Equal(t, 1, log.Len())
	var gerr *GeometryError
	require.True(t, errors.As(log.Errors()[0], &gerr))
	assert.Equal(t, uint64(2), gerr.BrushID)
}
