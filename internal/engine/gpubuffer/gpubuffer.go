// Package gpubuffer owns the two GL buffers the allocator hands out space
// in. It applies queued uploads with BufferSubData and issues one
// DrawElements per draw-list span.
package gpubuffer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/brushwork/internal/alloc"
	"github.com/Faultbox/brushwork/internal/mesh"
)

// ErrOutOfRange is returned for an upload past the end of a buffer.
var ErrOutOfRange = errors.New("upload out of range")

// Attribute is one vertex attribute inside a vertex record.
type Attribute struct {
	Location   uint32
	Components int32
	Offset     uintptr
}

// Attributes describes the vertex record layout. Location 1 carries the face
// normal for brushes and the blend alpha for displacements.
var Attributes = []Attribute{
	{0, 3, unsafe.Offsetof(mesh.Vertex{}.Position)},
	{1, 3, unsafe.Offsetof(mesh.Vertex{}.Attr)},
	{2, 2, unsafe.Offsetof(mesh.Vertex{}.TexCoord)},
	{3, 3, unsafe.Offsetof(mesh.Vertex{}.Color)},
}

// Buffers is a vertex array with one vertex and one index buffer of fixed
// size.
type Buffers struct {
	vao      uint32
	vbo      uint32
	ebo      uint32
	capacity [2]uint64
	logger   *zap.Logger
}

// New allocates both buffers. A current GL context is required.
func New(vertexBytes, indexBytes uint64, logger *zap.Logger) (*Buffers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Buffers{logger: logger}
	b.capacity[alloc.VertexBuffer] = vertexBytes
	b.capacity[alloc.IndexBuffer] = indexBytes

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, int(vertexBytes), nil, gl.DYNAMIC_DRAW)

	for _, a := range Attributes {
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, gl.FLOAT, false, mesh.Stride, a.Offset)
		gl.EnableVertexAttribArray(a.Location)
	}

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, int(indexBytes), nil, gl.DYNAMIC_DRAW)

	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		b.Close()
		return nil, fmt.Errorf("allocating %d + %d bytes: GL error 0x%x", vertexBytes, indexBytes, code)
	}

	b.logger.Info("buffers allocated",
		zap.Uint64("vertex_bytes", vertexBytes),
		zap.Uint64("index_bytes", indexBytes),
	)
	return b, nil
}

// Close releases the GL objects.
func (b *Buffers) Close() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	for _, id := range []*uint32{&b.vbo, &b.ebo} {
		if *id != 0 {
			gl.DeleteBuffers(1, id)
			*id = 0
		}
	}
}

// Upload writes data at byte offset start of buf.
func (b *Buffers) Upload(buf alloc.Buffer, start uint64, data []byte) error {
	if err := checkRange(buf, b.capacity[buf], start, len(data)); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	target := uint32(gl.ARRAY_BUFFER)
	id := b.vbo
	if buf == alloc.IndexBuffer {
		// The element binding is VAO state; bind the VAO to leave it intact.
		gl.BindVertexArray(b.vao)
		target, id = gl.ELEMENT_ARRAY_BUFFER, b.ebo
	}
	gl.BindBuffer(target, id)
	gl.BufferSubData(target, int(start), len(data), gl.Ptr(data))
	gl.BindVertexArray(0)

	b.logger.Debug("upload",
		zap.Stringer("buffer", buf),
		zap.Uint64("start", start),
		zap.Int("length", len(data)),
	)
	return nil
}

func checkRange(buf alloc.Buffer, capacity, start uint64, n int) error {
	if start > capacity || uint64(n) > capacity-start {
		return fmt.Errorf("%s [%d, %d) past %d: %w", buf, start, start+uint64(n), capacity, ErrOutOfRange)
	}
	return nil
}

// Bind makes the vertex array current.
func (b *Buffers) Bind() {
	gl.BindVertexArray(b.vao)
}

// Unbind clears the vertex array binding.
func (b *Buffers) Unbind() {
	gl.BindVertexArray(0)
}

// Draw issues one indexed draw per call. The vertex array must be bound.
func (b *Buffers) Draw(calls []alloc.DrawCall) {
	for _, c := range calls {
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(c.Count()), gl.UNSIGNED_INT, uintptr(c.Index.Start))
	}
}

var _ alloc.Uploader = (*Buffers)(nil)
