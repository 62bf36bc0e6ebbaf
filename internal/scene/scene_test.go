package scene

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/brushwork/internal/alloc"
	"github.com/Faultbox/brushwork/internal/mesh"
	"github.com/Faultbox/brushwork/internal/solid"
)

// block writes a solid spanning lo..hi the way the editor saves blocks.
// With power >= 0 the top side carries a flat displacement.
func block(id int, lo, hi [3]int, power int) string {
	x0, y0, z0 := lo[0], lo[1], lo[2]
	x1, y1, z1 := hi[0], hi[1], hi[2]
	planes := [][3][3]int{
		{{x0, y1, z1}, {x1, y1, z1}, {x1, y0, z1}},
		{{x0, y0, z0}, {x1, y0, z0}, {x1, y1, z0}},
		{{x0, y1, z1}, {x0, y0, z1}, {x0, y0, z0}},
		{{x1, y1, z0}, {x1, y0, z0}, {x1, y0, z1}},
		{{x1, y1, z1}, {x0, y1, z1}, {x0, y1, z0}},
		{{x1, y0, z0}, {x0, y0, z0}, {x0, y0, z1}},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\tsolid\n\t{\n\t\t\"id\" \"%d\"\n", id)
	for i, p := range planes {
		fmt.Fprintf(&b, "\t\tside\n\t\t{\n\t\t\t\"id\" \"%d\"\n", id*10+i+1)
		fmt.Fprintf(&b, "\t\t\t\"plane\" \"(%d %d %d) (%d %d %d) (%d %d %d)\"\n",
			p[0][0], p[0][1], p[0][2], p[1][0], p[1][1], p[1][2], p[2][0], p[2][1], p[2][2])
		b.WriteString("\t\t\t\"material\" \"DEV/DEV_MEASUREGENERIC01\"\n")
		if i == 0 && power >= 0 {
			n := 1<<power + 1
			fmt.Fprintf(&b, "\t\t\tdispinfo\n\t\t\t{\n\t\t\t\t\"power\" \"%d\"\n\t\t\t\t\"startposition\" \"[%d %d %d]\"\n", power, x0, y0, z1)
			for _, grid := range []struct{ name, cell string }{{"normals", "0 0 1"}, {"distances", "16"}, {"alphas", "0"}} {
				fmt.Fprintf(&b, "\t\t\t\t%s\n\t\t\t\t{\n", grid.name)
				for r := range n {
					fmt.Fprintf(&b, "\t\t\t\t\t\"row%d\" \"%s\"\n", r, strings.TrimSpace(strings.Repeat(grid.cell+" ", n)))
				}
				b.WriteString("\t\t\t\t}\n")
			}
			b.WriteString("\t\t\t}\n")
		}
		b.WriteString("\t\t}\n")
	}
	b.WriteString("\t}\n")
	return b.String()
}

func world(solids ...string) string {
	return "versioninfo\n{\n\t\"editorversion\" \"400\"\n}\nworld\n{\n\t\"id\" \"1\"\n" + strings.Join(solids, "") + "}\n"
}

func newScene(vertexBytes, indexBytes uint64) *Scene {
	a := alloc.New(alloc.Options{VertexCapacity: vertexBytes, IndexCapacity: indexBytes})
	return New(a, Options{Workers: 2})
}

func TestLoad(t *testing.T) {
	// brush 3 has its floor above its ceiling
	text := world(
		block(1, [3]int{-64, -64, -64}, [3]int{64, 64, 64}, -1),
		block(2, [3]int{128, 0, 0}, [3]int{256, 128, 64}, 2),
		block(3, [3]int{0, 0, 64}, [3]int{64, 64, 0}, -1),
	)
	sc := newScene(1<<20, 1<<20)
	rep, err := sc.Load(strings.NewReader(text))
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Solids)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 1, rep.Displacements)
	require.Len(t, rep.Errors, 1)
	var gerr *solid.GeometryError
	require.True(t, errors.As(rep.Errors[0], &gerr))
	assert.Equal(t, uint64(3), gerr.BrushID)

	assert.Equal(t, 2, sc.Len())
	a := sc.Allocator()
	assert.Equal(t, 3, a.Len())
	assert.True(t, a.Superseded(alloc.BrushID(2)))

	// only brush 1 and the displacement are drawn
	brush1, ok := a.Location(alloc.BrushID(1))
	require.True(t, ok)
	assert.Equal(t, uint64(36*4), brush1.Index.Length)
	assert.Equal(t, uint64(24*mesh.Stride), brush1.Vertex.Length)
	disp, ok := a.Location(alloc.DisplacementID(2, 21))
	require.True(t, ok)
	assert.Equal(t, uint64(25*mesh.Stride), disp.Vertex.Length)
	assert.Equal(t, uint64(6*16*4), disp.Index.Length)
	calls := a.DrawCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, alloc.Brush, calls[0].Type)
	assert.Equal(t, uint64(36), calls[0].Count())
	assert.Equal(t, alloc.Displacement, calls[1].Type)

	b, ok := sc.Bounds()
	require.True(t, ok)
	assert.Equal(t, mesh.Bounds{Min: [3]float32{-64, -64, -64}, Max: [3]float32{256, 128, 64}}, b)
}

func TestLoadSyntaxError(t *testing.T) {
	sc := newScene(1<<20, 1<<20)
	_, err := sc.Load(strings.NewReader("world\n{\n\"id\" \"1\"\n"))
	require.Error(t, err)
	assert.Equal(t, 0, sc.Len())
}

func TestHideShowSolid(t *testing.T) {
	sc := newScene(1<<20, 1<<20)
	_, err := sc.Load(strings.NewReader(world(
		block(1, [3]int{-64, -64, -64}, [3]int{64, 64, 64}, -1),
		block(2, [3]int{128, 0, 0}, [3]int{256, 128, 64}, 1),
	)))
	require.NoError(t, err)
	a := sc.Allocator()
	before := a.DrawCalls()

	require.NoError(t, sc.Hide(2))
	assert.True(t, sc.Hidden(2))
	assert.Empty(t, a.DrawList(alloc.Displacement))
	assert.True(t, a.Hidden(alloc.DisplacementID(2, 21)))

	require.NoError(t, sc.Show(2))
	assert.False(t, sc.Hidden(2))
	assert.Equal(t, before, a.DrawCalls())

	assert.True(t, errors.Is(sc.Hide(9), ErrUnknownSolid))
	assert.True(t, errors.Is(sc.Show(9), ErrUnknownSolid))
}

func TestRemoveSolid(t *testing.T) {
	sc := newScene(1<<20, 1<<20)
	_, err := sc.Load(strings.NewReader(world(
		block(1, [3]int{-64, -64, -64}, [3]int{64, 64, 64}, -1),
		block(2, [3]int{128, 0, 0}, [3]int{256, 128, 64}, 1),
	)))
	require.NoError(t, err)
	a := sc.Allocator()

	require.NoError(t, sc.Remove(2))
	assert.Equal(t, 1, sc.Len())
	assert.Equal(t, 1, a.Len())
	assert.Empty(t, a.DrawList(alloc.Displacement))
	_, ok := sc.Solid(2)
	assert.False(t, ok)

	require.NoError(t, sc.Remove(1))
	assert.Equal(t, uint64(0), a.Stats().Vertex.Used)
	_, ok = sc.Bounds()
	assert.False(t, ok)
	assert.True(t, errors.Is(sc.Remove(1), ErrUnknownSolid))
}

func TestAddSolidsRollsBackOnFullBuffer(t *testing.T) {
	cube, err := solid.Block(1, r3.Vec{X: -64, Y: -64, Z: -64}, r3.Vec{X: 64, Y: 64, Z: 64})
	require.NoError(t, err)
	cube.Faces[0].Displacement = &solid.Displacement{Power: 4, Start: r3.Vec{X: -64, Y: -64, Z: 64}}
	d := cube.Faces[0].Displacement
	for range d.Size() {
		d.Normals = append(d.Normals, make([]r3.Vec, d.Size()))
		d.Distances = append(d.Distances, make([]float64, d.Size()))
		d.Alphas = append(d.Alphas, make([]float64, d.Size()))
	}

	// room for the brush but not for 289 displacement vertices
	sc := newScene(100*mesh.Stride, 1<<20)
	err = sc.AddSolids([]*solid.Solid{cube})
	require.True(t, errors.Is(err, alloc.ErrBufferFull), "got %v", err)
	assert.Equal(t, 0, sc.Len())
	assert.Equal(t, 0, sc.Allocator().Len())
	assert.Equal(t, uint64(0), sc.Allocator().Stats().Vertex.Used)
}

func TestAddSolidsDuplicate(t *testing.T) {
	cube, err := solid.Block(5, r3.Vec{X: -64, Y: -64, Z: -64}, r3.Vec{X: 64, Y: 64, Z: 64})
	require.NoError(t, err)
	sc := newScene(1<<20, 1<<20)
	require.NoError(t, sc.AddSolids([]*solid.Solid{cube}))
	assert.True(t, errors.Is(sc.AddSolids([]*solid.Solid{cube}), ErrDuplicateSolid))

	other, err := solid.Block(6, r3.Vec{}, r3.Vec{X: 8, Y: 8, Z: 8})
	require.NoError(t, err)
	assert.True(t, errors.Is(sc.AddSolids([]*solid.Solid{other, other}), ErrDuplicateSolid))
	assert.Equal(t, []*solid.Solid{cube}, sc.Solids())
}
