package alloc

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/brushwork/internal/mesh"
	"github.com/Faultbox/brushwork/internal/span"
)

// Options configures New.
type Options struct {
	VertexCapacity uint64
	IndexCapacity  uint64
	Logger         *zap.Logger
}

// Allocator tracks which byte ranges of the vertex and index buffers belong
// to which renderable. It never grows a buffer and never moves data.
type Allocator struct {
	capacity [numBuffers]uint64
	occupied [numBuffers][numTypes]span.Set
	drawList [numTypes]span.Set

	location map[RenderableID]Location
	hidden   map[RenderableID]struct{}
	// brushes replaced by at least one displacement, with the count
	superseded map[RenderableID]int

	uploads []Upload
	logger  *zap.Logger
}

// New returns an empty allocator.
func New(opts Options) *Allocator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{
		capacity:   [numBuffers]uint64{opts.VertexCapacity, opts.IndexCapacity},
		location:   make(map[RenderableID]Location),
		hidden:     make(map[RenderableID]struct{}),
		superseded: make(map[RenderableID]int),
		logger:     logger,
	}
}

// Capacity returns the size of buf in bytes.
func (a *Allocator) Capacity(buf Buffer) uint64 {
	return a.capacity[buf]
}

// Occupied returns the bytes of buf held by renderables of typ.
func (a *Allocator) Occupied(buf Buffer, typ RenderableType) span.Set {
	return a.occupied[buf][typ].Clone()
}

func (a *Allocator) used(buf Buffer) span.Set {
	var all span.Set
	for _, s := range a.occupied[buf] {
		all = span.Union(all, s)
	}
	return all
}

// FindGaps yields the free ranges of buf that hold at least minSize bytes.
// With a preferred type, gaps bordering data of that type come first so
// renderables of one type stay contiguous. An empty buffer yields the single
// gap covering its whole capacity.
func (a *Allocator) FindGaps(buf Buffer, preferred *RenderableType, minSize uint64) iter.Seq[span.Span] {
	minSize = max(minSize, 1)
	return func(yield func(span.Span) bool) {
		gaps := span.Complement(a.used(buf), a.capacity[buf])
		if preferred == nil {
			for _, g := range gaps {
				if g.Length >= minSize && !yield(g) {
					return
				}
			}
			return
		}

		edges := make(map[uint64]bool)
		for _, s := range a.occupied[buf][*preferred] {
			edges[s.Start] = true
			edges[s.End()] = true
		}
		near := func(g span.Span) bool {
			return edges[g.Start] || edges[g.End()]
		}
		for _, g := range gaps {
			if g.Length >= minSize && near(g) && !yield(g) {
				return
			}
		}
		for _, g := range gaps {
			if g.Length >= minSize && !near(g) && !yield(g) {
				return
			}
		}
	}
}

// gapFill tracks the bytes claimed from one gap during a batch.
type gapFill struct {
	gap  span.Span
	used uint64
	data []byte
}

// placer claims room from the gaps of one buffer in FindGaps order.
type placer struct {
	buf   Buffer
	fills []*gapFill
}

func (a *Allocator) newPlacer(buf Buffer, typ RenderableType) *placer {
	p := &placer{buf: buf}
	for g := range a.FindGaps(buf, &typ, 1) {
		p.fills = append(p.fills, &gapFill{gap: g})
	}
	return p
}

func (p *placer) place(data []byte) (span.Span, error) {
	n := uint64(len(data))
	for _, f := range p.fills {
		if f.gap.Length-f.used < n {
			continue
		}
		s := span.Span{Start: f.gap.Start + f.used, Length: n}
		f.used += n
		f.data = append(f.data, data...)
		return s, nil
	}
	return span.Span{}, &BufferFullError{Buffer: p.buf, Requested: n}
}

func (p *placer) uploads() []Upload {
	var out []Upload
	for _, f := range p.fills {
		if f.used > 0 {
			out = append(out, Upload{Buffer: p.buf, Start: f.gap.Start, Data: f.data})
		}
	}
	return out
}

// AddRenderables places a batch of renderables of one type. Ids are placed in
// sorted order. Each renderable's indices are rebased onto the position of its
// first vertex record. One upload is queued per gap written to.
//
// Placement is planned before anything changes: on error, including a
// *BufferFullError, the allocator is left as it was.
func (a *Allocator) AddRenderables(typ RenderableType, items map[RenderableID]Renderable) error {
	ids := slices.SortedFunc(maps.Keys(items), RenderableID.compare)
	for _, id := range ids {
		r := items[id]
		switch {
		case id.Type != typ:
			return fmt.Errorf("%v in %v batch: %w", id, typ, ErrTypeMismatch)
		case len(r.Vertices) == 0 || len(r.Indices) == 0:
			return fmt.Errorf("%v: %w", id, ErrEmptyRenderable)
		case len(r.Vertices)%mesh.Stride != 0:
			return fmt.Errorf("%v has %d vertex bytes: %w", id, len(r.Vertices), ErrVertexAlignment)
		}
		if _, ok := a.location[id]; ok {
			return fmt.Errorf("%v: %w", id, ErrDuplicateRenderable)
		}
	}

	vertices := a.newPlacer(VertexBuffer, typ)
	indices := a.newPlacer(IndexBuffer, typ)
	placed := make([]Location, len(ids))
	for i, id := range ids {
		r := items[id]
		vs, err := vertices.place(r.Vertices)
		if err != nil {
			a.logger.Warn("allocation failed", zap.Stringer("renderable", id), zap.Error(err))
			return err
		}
		base := uint32(vs.Start / mesh.Stride)
		rebased := make([]uint32, len(r.Indices))
		for k, idx := range r.Indices {
			rebased[k] = idx + base
		}
		is, err := indices.place(mesh.EncodeIndices(rebased))
		if err != nil {
			a.logger.Warn("allocation failed", zap.Stringer("renderable", id), zap.Error(err))
			return err
		}
		placed[i] = Location{Vertex: vs, Index: is}
	}

	for i, id := range ids {
		loc := placed[i]
		a.location[id] = loc
		a.occupied[VertexBuffer][typ] = span.Add(a.occupied[VertexBuffer][typ], loc.Vertex)
		a.occupied[IndexBuffer][typ] = span.Add(a.occupied[IndexBuffer][typ], loc.Index)
		if a.superseded[id] == 0 {
			a.drawList[typ] = span.Add(a.drawList[typ], loc.Index)
		}
		if parent, ok := id.Parent(); ok {
			a.supersede(parent)
		}
	}
	uploads := append(vertices.uploads(), indices.uploads()...)
	a.uploads = append(a.uploads, uploads...)

	a.logger.Debug("renderables placed",
		zap.Stringer("type", typ),
		zap.Int("count", len(ids)),
		zap.Int("uploads", len(uploads)),
	)
	return nil
}

// supersede takes a brush out of the brush draw list while a displacement
// covers it.
func (a *Allocator) supersede(brush RenderableID) {
	a.superseded[brush]++
	if a.superseded[brush] > 1 {
		return
	}
	if loc, ok := a.location[brush]; ok && !a.Hidden(brush) {
		a.drawList[Brush] = span.Remove(a.drawList[Brush], loc.Index)
	}
}

func (a *Allocator) release(brush RenderableID) {
	a.superseded[brush]--
	if a.superseded[brush] > 0 {
		return
	}
	delete(a.superseded, brush)
	if loc, ok := a.location[brush]; ok && !a.Hidden(brush) {
		a.drawList[Brush] = span.Add(a.drawList[Brush], loc.Index)
	}
}

// Hide removes a renderable from its draw list. Its data stays in place.
func (a *Allocator) Hide(id RenderableID) error {
	loc, ok := a.location[id]
	if !ok {
		return fmt.Errorf("hide %v: %w", id, ErrUnknownRenderable)
	}
	if a.Hidden(id) {
		return nil
	}
	a.hidden[id] = struct{}{}
	if a.superseded[id] == 0 {
		a.drawList[id.Type] = span.Remove(a.drawList[id.Type], loc.Index)
	}
	return nil
}

// Show puts a hidden renderable back in its draw list. A brush replaced by a
// displacement only loses its hidden flag.
func (a *Allocator) Show(id RenderableID) error {
	loc, ok := a.location[id]
	if !ok {
		return fmt.Errorf("show %v: %w", id, ErrUnknownRenderable)
	}
	if !a.Hidden(id) {
		return nil
	}
	delete(a.hidden, id)
	if a.superseded[id] == 0 {
		a.drawList[id.Type] = span.Add(a.drawList[id.Type], loc.Index)
	}
	return nil
}

// Free releases the buffer space of a renderable. Freeing the last
// displacement of a brush puts the brush back in the draw list.
func (a *Allocator) Free(id RenderableID) error {
	loc, ok := a.location[id]
	if !ok {
		return fmt.Errorf("free %v: %w", id, ErrUnknownRenderable)
	}
	a.occupied[VertexBuffer][id.Type] = span.Remove(a.occupied[VertexBuffer][id.Type], loc.Vertex)
	a.occupied[IndexBuffer][id.Type] = span.Remove(a.occupied[IndexBuffer][id.Type], loc.Index)
	a.drawList[id.Type] = span.Remove(a.drawList[id.Type], loc.Index)
	delete(a.location, id)
	delete(a.hidden, id)
	if parent, ok := id.Parent(); ok {
		a.release(parent)
	}
	return nil
}

// Location returns where the data of id lives.
func (a *Allocator) Location(id RenderableID) (Location, bool) {
	loc, ok := a.location[id]
	return loc, ok
}

// Hidden reports whether id is hidden.
func (a *Allocator) Hidden(id RenderableID) bool {
	_, ok := a.hidden[id]
	return ok
}

// Superseded reports whether a brush is replaced by a displacement.
func (a *Allocator) Superseded(brush RenderableID) bool {
	return a.superseded[brush] > 0
}

// Len returns the number of allocated renderables.
func (a *Allocator) Len() int {
	return len(a.location)
}

// DrawList returns the visible index ranges of typ.
func (a *Allocator) DrawList(typ RenderableType) span.Set {
	return a.drawList[typ].Clone()
}

// DrawCalls returns one call per visible index range, brushes first.
func (a *Allocator) DrawCalls() []DrawCall {
	var out []DrawCall
	for typ := range numTypes {
		for _, s := range a.drawList[typ] {
			out = append(out, DrawCall{Type: typ, Index: s})
		}
	}
	return out
}
