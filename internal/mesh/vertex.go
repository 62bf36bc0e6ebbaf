package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrTruncated is returned when a byte slice is not a whole number of records.
var ErrTruncated = errors.New("truncated record")

// AppendBinary appends the little-endian encoding of v to b.
func (v Vertex) AppendBinary(b []byte) []byte {
	for _, f := range v.Position {
		b = binary.LittleEndian.AppendUint32(b, math32.Float32bits(f))
	}
	for _, f := range v.Attr {
		b = binary.LittleEndian.AppendUint32(b, math32.Float32bits(f))
	}
	for _, f := range v.TexCoord {
		b = binary.LittleEndian.AppendUint32(b, math32.Float32bits(f))
	}
	for _, f := range v.Color {
		b = binary.LittleEndian.AppendUint32(b, math32.Float32bits(f))
	}
	return b
}

// EncodeVertices packs vertices into Stride-byte records.
func EncodeVertices(vs []Vertex) []byte {
	b := make([]byte, 0, len(vs)*Stride)
	for _, v := range vs {
		b = v.AppendBinary(b)
	}
	return b
}

// DecodeVertices unpacks records written by EncodeVertices.
func DecodeVertices(b []byte) ([]Vertex, error) {
	if len(b)%Stride != 0 {
		return nil, fmt.Errorf("vertex data of %d bytes: %w", len(b), ErrTruncated)
	}
	out := make([]Vertex, len(b)/Stride)
	for i := range out {
		rec := b[i*Stride : (i+1)*Stride]
		f := func(k int) float32 {
			return math32.Float32frombits(binary.LittleEndian.Uint32(rec[k*4:]))
		}
		out[i] = Vertex{
			Position: [3]float32{f(0), f(1), f(2)},
			Attr:     [3]float32{f(3), f(4), f(5)},
			TexCoord: [2]float32{f(6), f(7)},
			Color:    [3]float32{f(8), f(9), f(10)},
		}
	}
	return out, nil
}

// EncodeIndices packs indices as little-endian uint32.
func EncodeIndices(idx []uint32) []byte {
	b := make([]byte, 0, len(idx)*4)
	for _, i := range idx {
		b = binary.LittleEndian.AppendUint32(b, i)
	}
	return b
}

// DecodeIndices unpacks data written by EncodeIndices.
func DecodeIndices(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("index data of %d bytes: %w", len(b), ErrTruncated)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out, nil
}
