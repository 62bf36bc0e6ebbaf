// Package scene keeps the solids of a loaded map and their buffer
// allocations in step. It is owned by the render goroutine.
package scene

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"runtime"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/brushwork/internal/alloc"
	"github.com/Faultbox/brushwork/internal/mesh"
	"github.com/Faultbox/brushwork/internal/solid"
	"github.com/Faultbox/brushwork/pkg/vmf"
)

var (
	// ErrUnknownSolid is returned for a brush id the scene does not hold.
	ErrUnknownSolid = errors.New("unknown solid")
	// ErrDuplicateSolid is returned when a brush id is added twice.
	ErrDuplicateSolid = errors.New("solid already in scene")
	// ErrUnknownModel is returned for a model id the scene does not hold.
	ErrUnknownModel = errors.New("unknown model")
)

// Options configures a Scene.
type Options struct {
	// Workers limits parallel reconstruction and tessellation. Zero means
	// GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// Report summarises one Load.
type Report struct {
	Solids        int
	Displacements int
	Skipped       int
	Errors        []error
}

type entry struct {
	solid         *solid.Solid
	bounds        mesh.Bounds
	empty         bool
	displacements []alloc.RenderableID
}

// Scene maps brushes to their renderables.
type Scene struct {
	alloc   *alloc.Allocator
	entries map[uint64]*entry
	models  map[uint64]*modelEntry
	// last model id handed out
	modelID uint64
	log     *solid.ImportLog
	workers int
	logger  *zap.Logger
}

// New returns an empty scene placing data through a.
func New(a *alloc.Allocator, opts Options) *Scene {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scene{
		alloc:   a,
		entries: make(map[uint64]*entry),
		models:  make(map[uint64]*modelEntry),
		log:     solid.NewImportLog(logger),
		workers: workers,
		logger:  logger,
	}
}

// Allocator returns the allocator the scene writes to.
func (s *Scene) Allocator() *alloc.Allocator {
	return s.alloc
}

// ImportLog returns every brush skipped so far.
func (s *Scene) ImportLog() *solid.ImportLog {
	return s.log
}

// LoadFile reads a .vmf file and adds its solids.
func (s *Scene) LoadFile(path string) (Report, error) {
	root, err := vmf.ParseFile(path)
	if err != nil {
		return Report{}, err
	}
	return s.load(root)
}

// Load reads .vmf text and adds its solids. Brushes with invalid geometry
// are skipped and reported; a full buffer fails the whole load.
func (s *Scene) Load(r io.Reader) (Report, error) {
	root, err := vmf.Parse(r)
	if err != nil {
		return Report{}, err
	}
	return s.load(root)
}

func (s *Scene) load(root *vmf.Node) (Report, error) {
	nodes := root.Solids()
	before := s.log.Len()
	solids, log := solid.ImportAll(nodes, solid.ImportOptions{
		Workers: s.workers,
		Log:     s.log,
		Logger:  s.logger,
	})
	rep := Report{
		Solids:  len(solids),
		Skipped: len(nodes) - len(solids),
		Errors:  log.Errors()[before:],
	}
	for _, sol := range solids {
		for i := range sol.Faces {
			if sol.Faces[i].Displacement != nil {
				rep.Displacements++
			}
		}
	}
	if err := s.AddSolids(solids); err != nil {
		return rep, err
	}
	return rep, nil
}

type built struct {
	brush         *mesh.Mesh
	displacements map[alloc.RenderableID]*mesh.Mesh
}

// AddSolids tessellates reconstructed solids and places them in the buffers,
// brushes first. Either every solid is added or none is; uploads queued for a
// batch that is rolled back stay queued and write only to freed space.
func (s *Scene) AddSolids(solids []*solid.Solid) error {
	seen := make(map[uint64]bool, len(solids))
	for _, sol := range solids {
		if _, ok := s.entries[sol.ID]; ok || seen[sol.ID] {
			return fmt.Errorf("solid %d: %w", sol.ID, ErrDuplicateSolid)
		}
		seen[sol.ID] = true
	}

	meshes := make([]built, len(solids))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, sol := range solids {
		g.Go(func() error {
			b := built{brush: mesh.BuildBrush(sol)}
			for k := range sol.Faces {
				f := &sol.Faces[k]
				if f.Displacement == nil {
					continue
				}
				m, err := mesh.BuildDisplacement(f, sol.Colour)
				if err != nil {
					return fmt.Errorf("solid %d: %w", sol.ID, err)
				}
				if b.displacements == nil {
					b.displacements = make(map[alloc.RenderableID]*mesh.Mesh)
				}
				b.displacements[alloc.DisplacementID(sol.ID, f.ID)] = m
			}
			meshes[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	brushes := make(map[alloc.RenderableID]alloc.Renderable, len(solids))
	disps := make(map[alloc.RenderableID]alloc.Renderable)
	for i, sol := range solids {
		if len(meshes[i].brush.Indices) > 0 {
			brushes[alloc.BrushID(sol.ID)] = renderable(meshes[i].brush)
		}
		for id, m := range meshes[i].displacements {
			disps[id] = renderable(m)
		}
	}

	if err := s.alloc.AddRenderables(alloc.Brush, brushes); err != nil {
		return err
	}
	if len(disps) > 0 {
		if err := s.alloc.AddRenderables(alloc.Displacement, disps); err != nil {
			for id := range brushes {
				_ = s.alloc.Free(id)
			}
			return err
		}
	}

	for i, sol := range solids {
		e := &entry{
			solid:  sol,
			bounds: meshes[i].brush.Bounds,
			empty:  len(meshes[i].brush.Vertices) == 0,
		}
		e.displacements = slices.SortedFunc(maps.Keys(meshes[i].displacements), func(a, b alloc.RenderableID) int {
			return cmp.Compare(a.Sub, b.Sub)
		})
		s.entries[sol.ID] = e
	}
	s.logger.Info("solids added",
		zap.Int("brushes", len(brushes)),
		zap.Int("displacements", len(disps)),
		zap.Int("pending_uploads", s.alloc.Pending()),
	)
	return nil
}

func renderable(m *mesh.Mesh) alloc.Renderable {
	return alloc.Renderable{Vertices: m.VertexBytes(), Indices: m.Indices}
}

// renderables returns every allocator key of a solid, brush first.
func (e *entry) renderables() []alloc.RenderableID {
	ids := []alloc.RenderableID{alloc.BrushID(e.solid.ID)}
	return append(ids, e.displacements...)
}

func (s *Scene) each(id uint64, fn func(alloc.RenderableID) error) error {
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("solid %d: %w", id, ErrUnknownSolid)
	}
	for _, rid := range e.renderables() {
		if _, ok := s.alloc.Location(rid); !ok {
			continue // a brush with no faces has no brush renderable
		}
		if err := fn(rid); err != nil {
			return err
		}
	}
	return nil
}

// Hide hides a brush together with its displacements.
func (s *Scene) Hide(id uint64) error {
	return s.each(id, s.alloc.Hide)
}

// Show reverses Hide.
func (s *Scene) Show(id uint64) error {
	return s.each(id, s.alloc.Show)
}

// Hidden reports whether the brush is hidden.
func (s *Scene) Hidden(id uint64) bool {
	return s.alloc.Hidden(alloc.BrushID(id))
}

// Remove frees a brush and its displacements.
func (s *Scene) Remove(id uint64) error {
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("solid %d: %w", id, ErrUnknownSolid)
	}
	// brush first, so releasing its displacements cannot redraw it
	for _, rid := range e.renderables() {
		if _, ok := s.alloc.Location(rid); !ok {
			continue
		}
		if err := s.alloc.Free(rid); err != nil {
			return err
		}
	}
	delete(s.entries, id)
	return nil
}

// Solid returns the brush with the given id.
func (s *Scene) Solid(id uint64) (*solid.Solid, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.solid, true
}

// Solids returns every brush ordered by id.
func (s *Scene) Solids() []*solid.Solid {
	ids := slices.Sorted(maps.Keys(s.entries))
	out := make([]*solid.Solid, len(ids))
	for i, id := range ids {
		out[i] = s.entries[id].solid
	}
	return out
}

// Len returns the number of brushes.
func (s *Scene) Len() int {
	return len(s.entries)
}

// Bounds returns the box around every brush and model. ok is false for an
// empty scene.
func (s *Scene) Bounds() (b mesh.Bounds, ok bool) {
	add := func(o mesh.Bounds) {
		if !ok {
			b, ok = o, true
			return
		}
		for i := range 3 {
			b.Min[i] = min(b.Min[i], o.Min[i])
			b.Max[i] = max(b.Max[i], o.Max[i])
		}
	}
	for _, e := range s.entries {
		if !e.empty {
			add(e.bounds)
		}
	}
	for _, m := range s.models {
		add(m.bounds)
	}
	return b, ok
}
