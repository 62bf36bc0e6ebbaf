package mesh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/brushwork/pkg/obj"
)

const ramp = `v 0 0 0
v 64 0 0
v 64 64 0
v 0 64 0
v 0 0 64
vn 0 0 1
f 1//1 2//1 3//1 4//1
f 1 2 5
f 1 2 5
`

func TestBuildModel(t *testing.T) {
	m, err := obj.Parse(strings.NewReader(ramp), "ramp.obj")
	require.NoError(t, err)

	out := BuildModel(m)
	// the quad's four corners carry a normal, the triangle's three do not;
	// the repeated triangle adds no vertices
	require.Len(t, out.Vertices, 7)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 5, 6}, out.Indices)

	assert.Equal(t, [3]float32{0, 64, 0}, out.Vertices[0].Position)
	assert.Equal(t, [3]float32{0, 0, 1}, out.Vertices[0].Attr)
	assert.Equal(t, [3]float32{0, 0, 64}, out.Vertices[4].Position)
	assert.Equal(t, [3]float32{}, out.Vertices[4].Attr)
	for _, v := range out.Vertices {
		assert.Equal(t, ModelColour, v.Color)
	}
	assert.Equal(t, Bounds{Min: [3]float32{0, 0, 0}, Max: [3]float32{64, 64, 64}}, out.Bounds)
	assert.Len(t, out.VertexBytes(), 7*Stride)
}
