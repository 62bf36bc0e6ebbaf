// Package alloc places renderable vertex and index data into fixed-capacity
// GPU buffers and keeps the per-type draw lists that reference it.
//
// An Allocator is owned by a single goroutine. Every operation updates its
// occupied sets, draw lists and location table as a unit.
package alloc

import (
	"errors"
	"fmt"

	"github.com/Faultbox/brushwork/internal/span"
)

// Buffer identifies one of the two shared GPU buffers.
type Buffer int

// Buffers.
const (
	VertexBuffer Buffer = iota
	IndexBuffer
	numBuffers
)

func (b Buffer) String() string {
	switch b {
	case VertexBuffer:
		return "vertex"
	case IndexBuffer:
		return "index"
	}
	return fmt.Sprintf("Buffer(%d)", int(b))
}

// RenderableType groups renderables that are drawn with the same pipeline.
type RenderableType int

// Renderable types, in draw order.
const (
	Brush RenderableType = iota
	Displacement
	Model
	numTypes
)

func (t RenderableType) String() string {
	switch t {
	case Brush:
		return "brush"
	case Displacement:
		return "displacement"
	case Model:
		return "model"
	}
	return fmt.Sprintf("RenderableType(%d)", int(t))
}

// RenderableID keys a renderable. Brushes and models use ID only;
// displacements use the owning brush in ID and the face in Sub.
type RenderableID struct {
	Type RenderableType
	ID   uint64
	Sub  uint64
}

// BrushID returns the key of a brush.
func BrushID(id uint64) RenderableID {
	return RenderableID{Type: Brush, ID: id}
}

// DisplacementID returns the key of the displacement on face of brush.
func DisplacementID(brush, face uint64) RenderableID {
	return RenderableID{Type: Displacement, ID: brush, Sub: face}
}

// ModelID returns the key of a model.
func ModelID(id uint64) RenderableID {
	return RenderableID{Type: Model, ID: id}
}

// Parent returns the brush a displacement replaces.
func (id RenderableID) Parent() (RenderableID, bool) {
	if id.Type != Displacement {
		return RenderableID{}, false
	}
	return BrushID(id.ID), true
}

func (id RenderableID) String() string {
	if id.Type == Displacement {
		return fmt.Sprintf("%s(%d/%d)", id.Type, id.ID, id.Sub)
	}
	return fmt.Sprintf("%s(%d)", id.Type, id.ID)
}

func (id RenderableID) compare(o RenderableID) int {
	switch {
	case id.Type != o.Type:
		return int(id.Type) - int(o.Type)
	case id.ID != o.ID:
		if id.ID < o.ID {
			return -1
		}
		return 1
	case id.Sub != o.Sub:
		if id.Sub < o.Sub {
			return -1
		}
		return 1
	}
	return 0
}

// Renderable is the CPU-side data of one renderable: encoded vertex records
// and triangle indices relative to its own first vertex.
type Renderable struct {
	Vertices []byte
	Indices  []uint32
}

// Location is where a renderable's data lives.
type Location struct {
	Vertex span.Span
	Index  span.Span
}

// DrawCall is one contiguous run of visible index data.
type DrawCall struct {
	Type  RenderableType
	Index span.Span
}

// Count returns the number of indices to draw.
func (d DrawCall) Count() uint64 {
	return d.Index.Length / 4
}

// Errors.
var (
	ErrBufferFull          = errors.New("buffer full")
	ErrUnknownRenderable   = errors.New("unknown renderable")
	ErrDuplicateRenderable = errors.New("renderable already allocated")
	ErrVertexAlignment     = errors.New("vertex data is not a whole number of records")
	ErrEmptyRenderable     = errors.New("renderable has no vertices or indices")
	ErrTypeMismatch        = errors.New("renderable id does not match batch type")
)

// BufferFullError reports a renderable that found no gap large enough.
type BufferFullError struct {
	Buffer    Buffer
	Requested uint64
}

func (e *BufferFullError) Error() string {
	return fmt.Sprintf("%s buffer full: no gap of %d bytes", e.Buffer, e.Requested)
}

// Is makes errors.Is(err, ErrBufferFull) match.
func (e *BufferFullError) Is(target error) bool {
	return target == ErrBufferFull
}
