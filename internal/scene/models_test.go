package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/brushwork/internal/alloc"
	"github.com/Faultbox/brushwork/internal/mesh"
	"github.com/Faultbox/brushwork/pkg/obj"
)

// quad returns a one-face model spanning (x,0,0)..(x+64,64,0).
func quad(t *testing.T, name string, x int) *obj.Model {
	t.Helper()
	text := fmt.Sprintf("o %s\nv %d 0 0\nv %d 0 0\nv %d 64 0\nv %d 64 0\nf 1 2 3 4\n", name, x, x+64, x+64, x)
	m, err := obj.Parse(strings.NewReader(text), name+".obj")
	require.NoError(t, err)
	return m
}

func TestAddModels(t *testing.T) {
	sc := newScene(1<<20, 1<<20)
	_, err := sc.Load(strings.NewReader(world(block(1, [3]int{-64, -64, -64}, [3]int{64, 64, 64}, -1))))
	require.NoError(t, err)
	a := sc.Allocator()

	ids, err := sc.AddModels(quad(t, "left", 128), quad(t, "right", 256))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)
	assert.Equal(t, ids, sc.Models())
	m, ok := sc.Model(2)
	require.True(t, ok)
	assert.Equal(t, "right.obj", m.Name)

	loc, ok := a.Location(alloc.ModelID(1))
	require.True(t, ok)
	assert.Equal(t, uint64(4*mesh.Stride), loc.Vertex.Length)
	assert.Equal(t, uint64(6*4), loc.Index.Length)
	assert.Equal(t, uint64(2*6*4), a.DrawList(alloc.Model).Total())

	b, ok := sc.Bounds()
	require.True(t, ok)
	assert.Equal(t, [3]float32{-64, -64, -64}, b.Min)
	assert.Equal(t, [3]float32{320, 64, 64}, b.Max)

	before := a.DrawCalls()
	require.NoError(t, sc.HideModel(1))
	assert.True(t, a.Hidden(alloc.ModelID(1)))
	assert.Equal(t, uint64(6*4), a.DrawList(alloc.Model).Total())
	require.NoError(t, sc.ShowModel(1))
	assert.Equal(t, before, a.DrawCalls())

	require.NoError(t, sc.RemoveModel(2))
	assert.Equal(t, []uint64{1}, sc.Models())
	_, ok = a.Location(alloc.ModelID(2))
	assert.False(t, ok)

	ids, err = sc.AddModels(quad(t, "again", 0))
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, ids, "ids are not reused")

	for _, err := range []error{sc.HideModel(2), sc.ShowModel(9), sc.RemoveModel(2)} {
		assert.True(t, errors.Is(err, ErrUnknownModel), "got %v", err)
	}
}

func TestAddModelsRollsBackOnFullBuffer(t *testing.T) {
	// room for one quad's indices only
	sc := newScene(1<<20, 6*4)
	_, err := sc.AddModels(quad(t, "a", 0), quad(t, "b", 64))
	require.True(t, errors.Is(err, alloc.ErrBufferFull), "got %v", err)
	assert.Empty(t, sc.Models())
	assert.Equal(t, 0, sc.Allocator().Len())
	assert.Equal(t, 0, sc.Allocator().Pending())

	ids, err := sc.AddModels(quad(t, "a", 0))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)
}

func TestLoadModelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 8 0 0\nv 0 8 0\nf 1 2 3\n"), 0o644))

	sc := newScene(1<<20, 1<<20)
	id, err := sc.LoadModelFile(path)
	require.NoError(t, err)
	m, ok := sc.Model(id)
	require.True(t, ok)
	assert.Equal(t, "tri.obj", m.Name)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.BuildModel(m).Indices)

	_, err = sc.LoadModelFile(filepath.Join(t.TempDir(), "missing.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
