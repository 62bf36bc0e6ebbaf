package alloc

import "github.com/Faultbox/brushwork/internal/span"

// BufferStats summarises the layout of one buffer.
type BufferStats struct {
	Capacity   uint64
	Used       uint64
	Free       uint64
	Gaps       int
	LargestGap uint64
}

// Stats is a snapshot of both buffers.
type Stats struct {
	Vertex      BufferStats
	Index       BufferStats
	Renderables int
	Hidden      int
	DrawCalls   int
}

// Stats returns the current buffer usage.
func (a *Allocator) Stats() Stats {
	return Stats{
		Vertex:      a.bufferStats(VertexBuffer),
		Index:       a.bufferStats(IndexBuffer),
		Renderables: len(a.location),
		Hidden:      len(a.hidden),
		DrawCalls:   len(a.DrawCalls()),
	}
}

func (a *Allocator) bufferStats(buf Buffer) BufferStats {
	used := a.used(buf)
	gaps := span.Complement(used, a.capacity[buf])
	st := BufferStats{
		Capacity: a.capacity[buf],
		Used:     used.Total(),
		Free:     gaps.Total(),
		Gaps:     len(gaps),
	}
	for _, g := range gaps {
		st.LargestGap = max(st.LargestGap, g.Length)
	}
	return st
}
