package scene

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/brushwork/internal/alloc"
	"github.com/Faultbox/brushwork/internal/mesh"
	"github.com/Faultbox/brushwork/pkg/obj"
)

type modelEntry struct {
	model  *obj.Model
	bounds mesh.Bounds
}

// LoadModelFile reads a .obj file and adds it as one model.
func (s *Scene) LoadModelFile(path string) (uint64, error) {
	m, err := obj.ParseFile(path)
	if err != nil {
		return 0, err
	}
	ids, err := s.AddModels(m)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return ids[0], nil
}

// AddModels places models in the buffers and returns their ids in argument
// order. Either every model is added or none is.
func (s *Scene) AddModels(models ...*obj.Model) ([]uint64, error) {
	ids := make([]uint64, len(models))
	meshes := make([]*mesh.Mesh, len(models))
	batch := make(map[alloc.RenderableID]alloc.Renderable, len(models))
	for i, m := range models {
		ids[i] = s.modelID + uint64(i) + 1
		meshes[i] = mesh.BuildModel(m)
		batch[alloc.ModelID(ids[i])] = renderable(meshes[i])
	}
	if err := s.alloc.AddRenderables(alloc.Model, batch); err != nil {
		return nil, err
	}

	s.modelID += uint64(len(models))
	for i, m := range models {
		s.models[ids[i]] = &modelEntry{model: m, bounds: meshes[i].Bounds}
		s.logger.Debug("model added",
			zap.String("name", m.Name),
			zap.Uint64("id", ids[i]),
			zap.Int("faces", len(m.Faces)),
			zap.Int("vertices", len(meshes[i].Vertices)),
		)
	}
	return ids, nil
}

// Model returns the model with the given id.
func (s *Scene) Model(id uint64) (*obj.Model, bool) {
	e, ok := s.models[id]
	if !ok {
		return nil, false
	}
	return e.model, true
}

// Models returns every model id in ascending order.
func (s *Scene) Models() []uint64 {
	return slices.Sorted(maps.Keys(s.models))
}

func (s *Scene) model(id uint64) (alloc.RenderableID, error) {
	if _, ok := s.models[id]; !ok {
		return alloc.RenderableID{}, fmt.Errorf("model %d: %w", id, ErrUnknownModel)
	}
	return alloc.ModelID(id), nil
}

// HideModel takes a model out of the draw list.
func (s *Scene) HideModel(id uint64) error {
	rid, err := s.model(id)
	if err != nil {
		return err
	}
	return s.alloc.Hide(rid)
}

// ShowModel reverses HideModel.
func (s *Scene) ShowModel(id uint64) error {
	rid, err := s.model(id)
	if err != nil {
		return err
	}
	return s.alloc.Show(rid)
}

// RemoveModel frees a model.
func (s *Scene) RemoveModel(id uint64) error {
	rid, err := s.model(id)
	if err != nil {
		return err
	}
	if err := s.alloc.Free(rid); err != nil {
		return err
	}
	delete(s.models, id)
	return nil
}
