// Package world owns registered entities and drives their update and
// render passes. Changes returned from entity hooks are collected first
// and applied afterwards, in the order they were emitted.
package world

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/camera"
	"github.com/orbitalgo/orbital/internal/core/event"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/gpu"
	"go.uber.org/zap"
)

// ErrDuplicateTagFatal is returned by AddEntity under PanicOnDuplication.
// The host decides whether it ends the process.
var ErrDuplicateTagFatal = errors.New("duplicate entity tag")

// CameraController receives the camera changes entities queue.
// *camera.Manager implements it.
type CameraController interface {
	Spawn(desc camera.Descriptor, activate bool) error
	ApplyChange(change camera.Change) error
}

// Config is the construction-time setup of a World.
type Config struct {
	Policy     DuplicationPolicy
	ClearColor gpu.Color
	Camera     CameraController // may be nil
	Bus        *event.Bus       // may be nil
}

// World is not safe for concurrent use. One goroutine drives it.
type World struct {
	containers []*entity.Container
	clearColor gpu.Color
	policy     DuplicationPolicy
	camera     CameraController
	bus        *event.Bus
	log        *zap.Logger

	// applying is set while a change pass runs. Changes produced meanwhile
	// (registration of spawned entities) join the tail of pending.
	applying bool
	pending  []entity.WorldChange

	// releaseQueue holds discarded containers until FlushReleaseQueue.
	releaseQueue []*entity.Container
}

func New(cfg Config, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		containers:   make([]*entity.Container, 0, 64),
		clearColor:   cfg.ClearColor,
		policy:       cfg.Policy,
		camera:       cfg.Camera,
		bus:          cfg.Bus,
		log:          log,
		releaseQueue: make([]*entity.Container, 0, 16),
	}
}

func (w *World) Policy() DuplicationPolicy { return w.policy }
func (w *World) ClearColor() gpu.Color     { return w.clearColor }
func (w *World) Len() int                  { return len(w.containers) }

// AddEntity registers e under the world's duplication policy. Its
// OnRegistration hook runs exactly once, here. Every tag it reports goes
// through the same policy as the configuration tag: ignored tags are
// dropped, and a fatal collision leaves e unregistered and unreleased.
// The bootstrap changes are applied right away, or appended to the
// running change pass when called from one.
func (w *World) AddEntity(e entity.Entity) error {
	cfg := e.Configuration()
	keep, err := w.claimTag(cfg.Tag)
	if err != nil {
		return fmt.Errorf("add entity %q: %w", cfg.Tag, err)
	}
	if !keep {
		w.log.Debug("duplicate entity ignored", zap.String("tag", cfg.Tag))
		return nil
	}

	id := identify(e)
	c := entity.NewContainer(e, id)
	reg := e.OnRegistration(id)
	for _, tag := range reg.Tags {
		if tag == "" || c.HasTag(tag) {
			continue
		}
		keep, err := w.claimTag(tag)
		if err != nil {
			return fmt.Errorf("add entity %q: registration tag %q: %w", cfg.Tag, tag, err)
		}
		if !keep {
			w.log.Debug("duplicate registration tag dropped",
				zap.String("tag", cfg.Tag),
				zap.String("registration_tag", tag),
			)
			continue
		}
		c.AddTags(tag)
	}
	w.containers = append(w.containers, c)

	event.Emit(w.bus, event.EntitySpawned{ID: id, Tag: cfg.Tag})
	w.log.Debug("entity added",
		zap.String("tag", cfg.Tag),
		zap.Stringer("id", id),
		zap.Stringer("frequency", cfg.UpdateFrequency),
	)

	if len(reg.Changes) == 0 {
		return nil
	}
	if w.applying {
		w.pending = append(w.pending, reg.Changes...)
		return nil
	}
	return w.apply(reg.Changes)
}

// claimTag applies the duplication policy to a tag about to be taken by a
// new entity. keep is false when the tag must not be taken.
func (w *World) claimTag(tag string) (keep bool, err error) {
	n := w.count(tag)
	if n == 0 {
		return true, nil
	}
	switch w.policy {
	case WarnOnDuplication:
		w.log.Warn("duplicate entity tag",
			zap.String("tag", tag),
			zap.Int("existing", n),
		)
	case IgnoreOnDuplication:
		return false, nil
	case OverwriteOnDuplication:
		for {
			c, ok := w.detach(tag)
			if !ok {
				break
			}
			w.discard(c)
		}
	case PanicOnDuplication:
		return false, ErrDuplicateTagFatal
	}
	return true, nil
}

func identify(e entity.Entity) ulid.ULID {
	if ident, ok := e.(entity.Identified); ok {
		if id := ident.ID(); id != (ulid.ULID{}) {
			return id
		}
	}
	return ulid.Make()
}

// RemoveEntity detaches the first entity carrying tag and hands it back.
// Its resources are the caller's to release.
func (w *World) RemoveEntity(tag string) (entity.Entity, bool) {
	c, ok := w.detach(tag)
	if !ok {
		return nil, false
	}
	return c.Entity(), true
}

func (w *World) HasEntity(tag string) bool {
	return w.find(tag) >= 0
}

// GetEntity returns the first inserted entity carrying tag.
func (w *World) GetEntity(tag string) (entity.Entity, bool) {
	i := w.find(tag)
	if i < 0 {
		return nil, false
	}
	return w.containers[i].Entity(), true
}

func (w *World) EntityByID(id ulid.ULID) (entity.Entity, bool) {
	c := w.containerByID(id)
	if c == nil {
		return nil, false
	}
	return c.Entity(), true
}

// Tags lists the configuration tag of every entity in insertion order.
func (w *World) Tags() []string {
	tags := make([]string, len(w.containers))
	for i, c := range w.containers {
		tags[i] = c.Tag()
	}
	return tags
}

func (w *World) find(tag string) int {
	for i, c := range w.containers {
		if c.HasTag(tag) {
			return i
		}
	}
	return -1
}

func (w *World) count(tag string) int {
	n := 0
	for _, c := range w.containers {
		if c.HasTag(tag) {
			n++
		}
	}
	return n
}

func (w *World) containerByID(id ulid.ULID) *entity.Container {
	for _, c := range w.containers {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

func (w *World) detach(tag string) (*entity.Container, bool) {
	i := w.find(tag)
	if i < 0 {
		return nil, false
	}
	c := w.containers[i]
	w.containers = append(w.containers[:i], w.containers[i+1:]...)
	event.Emit(w.bus, event.EntityRemoved{ID: c.ID(), Tag: c.Tag()})
	w.log.Debug("entity removed", zap.String("tag", c.Tag()), zap.Stringer("id", c.ID()))
	return c, true
}

// discard queues a container the world dropped for release at the end of
// the frame.
func (w *World) discard(c *entity.Container) {
	w.releaseQueue = append(w.releaseQueue, c)
}

// FlushReleaseQueue releases the GPU resources of every discarded entity.
// Called by CleanupSystem at the end of each frame.
func (w *World) FlushReleaseQueue() {
	for _, c := range w.releaseQueue {
		c.Release()
	}
	clear(w.releaseQueue)
	w.releaseQueue = w.releaseQueue[:0]
}

// Close releases every entity still registered along with the release
// queue and empties the world.
func (w *World) Close() {
	w.FlushReleaseQueue()
	for _, c := range w.containers {
		c.Release()
	}
	clear(w.containers)
	w.containers = w.containers[:0]
}
