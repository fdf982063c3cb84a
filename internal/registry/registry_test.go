package registry

import (
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/elements"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/gpu/memdevice"
	"github.com/orbitalgo/orbital/internal/resource"
)

type named struct {
	entity.Base
	tag string
}

func newNamed(tag string) *named {
	return &named{Base: entity.NewBase(), tag: tag}
}

func (n *named) Configuration() entity.Configuration {
	return entity.Configuration{Tag: n.tag}
}

func TestSpawnDespawn(t *testing.T) {
	s := NewEntitySystem(nil)
	e := newNamed("a")

	id, err := s.Spawn(e)
	if err != nil {
		t.Fatal(err)
	}
	if id != e.ID() {
		t.Errorf("Spawn used %s, want the entity's own %s", id, e.ID())
	}
	if _, err := s.Spawn(e); !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("second Spawn err = %v", err)
	}
	if got, err := s.Get(id); err != nil || got != entity.Entity(e) {
		t.Errorf("Get = %v, %v", got, err)
	}

	anon, err := s.Spawn(&named{tag: "anonymous"})
	if err != nil || anon == (ulid.ULID{}) {
		t.Errorf("anonymous spawn: id %s, err %v", anon, err)
	}

	if _, err := s.Despawn(id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Despawn(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Despawn err = %v", err)
	}
	if _, err := s.Get(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Despawn err = %v", err)
	}
	if s.Len() != 1 || s.Contains(id) {
		t.Errorf("Len = %d, Contains = %v", s.Len(), s.Contains(id))
	}
}

func TestRendererSlot(t *testing.T) {
	s := NewEntitySystem(nil)
	first := newNamed("renderer")
	if err := s.SpawnRenderer(first); err != nil {
		t.Fatal(err)
	}
	if err := s.SpawnRenderer(newNamed("intruder")); !errors.Is(err, ErrSlotOccupied) {
		t.Errorf("second SpawnRenderer err = %v", err)
	}
	got, ok := s.Renderer()
	if !ok || got != entity.Entity(first) {
		t.Error("renderer slot changed")
	}

	if _, ok := s.DespawnRenderer(); !ok {
		t.Fatal("DespawnRenderer missed")
	}
	if err := s.SpawnRenderer(newNamed("next")); err != nil {
		t.Errorf("slot not freed: %v", err)
	}
}

func TestPrepareModels(t *testing.T) {
	dev := memdevice.New()
	r := resource.NewRealizer(dev, dev.Queue(), gpu.TextureFormatBGRA8UnormSrgb, nil)
	s := NewEntitySystem(nil)
	if _, err := s.SpawnModel("tri", resource.ModelDescriptor{Mesh: resource.Triangle()}); err != nil {
		t.Fatal(err)
	}
	if err := s.SpawnRenderer(elements.NewModel("quad", resource.ModelDescriptor{Mesh: resource.Quad()})); err != nil {
		t.Fatal(err)
	}
	_, _ = s.Spawn(newNamed("invisible"))

	for i := 0; i < 2; i++ {
		meshes, err := s.PrepareRenderAndCollectMeshes(r)
		if err != nil {
			t.Fatal(err)
		}
		if len(meshes) != 2 {
			t.Fatalf("pass %d: %d meshes, want 2", i, len(meshes))
		}
		if meshes[1].Mesh.IndexCount() != 6 {
			t.Errorf("renderer mesh not last: index count %d", meshes[1].Mesh.IndexCount())
		}
	}
	if n := dev.Created(memdevice.KindRenderPipeline); n != 2 {
		t.Errorf("pipelines = %d, want 2", n)
	}
	s.Close()
	if dev.LiveTotal() != 0 {
		t.Errorf("live after Close = %d", dev.LiveTotal())
	}
}

func TestSharedPoisoning(t *testing.T) {
	shared := NewShared(NewEntitySystem(nil))
	if err := shared.With(func(s *EntitySystem) error {
		_, err := s.Spawn(newNamed("a"))
		return err
	}); err != nil {
		t.Fatal(err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic swallowed")
			}
		}()
		_ = shared.With(func(*EntitySystem) error { panic("corrupted") })
	}()

	if !shared.Poisoned() {
		t.Error("handle not poisoned")
	}
	called := false
	err := shared.With(func(*EntitySystem) error { called = true; return nil })
	if !errors.Is(err, ErrLockPoisoned) || called {
		t.Errorf("With after poison: err %v, called %v", err, called)
	}
	if err := shared.Close(); !errors.Is(err, ErrLockPoisoned) {
		t.Errorf("Close err = %v", err)
	}
}
