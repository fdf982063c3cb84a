// Package registry is the keyed entity store used by render-server style
// integrations: entities are addressed by their ULID rather than by tag,
// and at most one renderer entity is registered at a time.
package registry

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/elements"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/resource"
	"go.uber.org/zap"
)

var (
	ErrDuplicateIdentity = errors.New("entity identifier already registered")
	ErrNotFound          = errors.New("entity not found")
	ErrSlotOccupied      = errors.New("renderer slot occupied")
	ErrLockPoisoned      = errors.New("entity system lock poisoned")
)

// EntitySystem maps identifiers to entity containers. It is not safe for
// concurrent use on its own; share it through Shared.
type EntitySystem struct {
	entities map[ulid.ULID]*entity.Container
	order    []ulid.ULID
	renderer *entity.Container
	log      *zap.Logger
}

func NewEntitySystem(log *zap.Logger) *EntitySystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntitySystem{
		entities: make(map[ulid.ULID]*entity.Container),
		order:    make([]ulid.ULID, 0, 64),
		log:      log,
	}
}

// Spawn registers e under its own identifier, or a fresh one when e has
// none, and returns that identifier.
func (s *EntitySystem) Spawn(e entity.Entity) (ulid.ULID, error) {
	id := identify(e)
	if _, ok := s.entities[id]; ok {
		return id, fmt.Errorf("spawn %s: %w", id, ErrDuplicateIdentity)
	}
	c := s.register(e, id)
	s.entities[id] = c
	s.order = append(s.order, id)
	return id, nil
}

// SpawnModel registers a render-only model entity.
func (s *EntitySystem) SpawnModel(tag string, desc resource.ModelDescriptor) (ulid.ULID, error) {
	return s.Spawn(elements.NewModel(tag, desc))
}

// SpawnRenderer fills the renderer slot. A second renderer is refused and
// the registered one stays in place.
func (s *EntitySystem) SpawnRenderer(e entity.Entity) error {
	if s.renderer != nil {
		return fmt.Errorf("spawn renderer %q: %w", e.Configuration().Tag, ErrSlotOccupied)
	}
	s.renderer = s.register(e, identify(e))
	return nil
}

func (s *EntitySystem) register(e entity.Entity, id ulid.ULID) *entity.Container {
	c := entity.NewContainer(e, id)
	reg := e.OnRegistration(id)
	c.AddTags(reg.Tags...)
	if len(reg.Changes) > 0 {
		s.log.Debug("registration changes ignored outside a world",
			zap.Stringer("id", id),
			zap.Int("changes", len(reg.Changes)),
		)
	}
	return c
}

func identify(e entity.Entity) ulid.ULID {
	if ident, ok := e.(entity.Identified); ok {
		if id := ident.ID(); id != (ulid.ULID{}) {
			return id
		}
	}
	return ulid.Make()
}

func (s *EntitySystem) Renderer() (entity.Entity, bool) {
	if s.renderer == nil {
		return nil, false
	}
	return s.renderer.Entity(), true
}

// DespawnRenderer empties the renderer slot and hands its entity back.
func (s *EntitySystem) DespawnRenderer() (entity.Entity, bool) {
	if s.renderer == nil {
		return nil, false
	}
	e := s.renderer.Entity()
	s.renderer = nil
	return e, true
}

// Despawn removes the entity and hands it back to the caller.
func (s *EntitySystem) Despawn(id ulid.ULID) (entity.Entity, error) {
	c, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("despawn %s: %w", id, ErrNotFound)
	}
	delete(s.entities, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return c.Entity(), nil
}

func (s *EntitySystem) Get(id ulid.ULID) (entity.Entity, error) {
	c, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return c.Entity(), nil
}

func (s *EntitySystem) Contains(id ulid.ULID) bool {
	_, ok := s.entities[id]
	return ok
}

func (s *EntitySystem) Len() int { return len(s.entities) }

// PrepareRenderAndCollectMeshes prepares every render-eligible entity once,
// in spawn order with the renderer last, and returns their meshes.
func (s *EntitySystem) PrepareRenderAndCollectMeshes(r *resource.Realizer) ([]resource.MeshRef, error) {
	containers := make([]*entity.Container, 0, len(s.order)+1)
	for _, id := range s.order {
		containers = append(containers, s.entities[id])
	}
	if s.renderer != nil {
		containers = append(containers, s.renderer)
	}

	var errs []error
	meshes := make([]resource.MeshRef, 0, len(containers))
	for _, c := range containers {
		if !c.Config().DoesRender {
			continue
		}
		if err := c.Prepare(r); err != nil {
			s.log.Error("render preparation failed", zap.Stringer("id", c.ID()), zap.Error(err))
			errs = append(errs, fmt.Errorf("prepare %s: %w", c.ID(), err))
			continue
		}
		meshes = append(meshes, c.Meshes()...)
	}
	return meshes, errors.Join(errs...)
}

// Close releases every registered entity, the renderer included.
func (s *EntitySystem) Close() {
	for _, id := range s.order {
		s.entities[id].Release()
	}
	if s.renderer != nil {
		s.renderer.Release()
		s.renderer = nil
	}
	clear(s.entities)
	s.order = s.order[:0]
}
