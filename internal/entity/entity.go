// Package entity defines the capability every simulation unit implements,
// the values an entity hands back to its world, and the container the world
// keeps each entity in.
package entity

import (
	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/input"
	"github.com/orbitalgo/orbital/internal/resource"
	"github.com/orbitalgo/orbital/internal/variant"
)

// Entity is a polymorphic simulation unit. Embed Base to get no-op hooks
// and implement Configuration.
type Entity interface {
	Configuration() Configuration

	// OnRegistration is called once, when the entity joins a world, before
	// any other hook.
	OnRegistration(id ulid.ULID) Registration

	// OnUpdate runs once per matching frequency tick. It must not block.
	// Returned changes are applied after every entity of the pass updated.
	OnUpdate(dt float64) []WorldChange

	// OnInputEvent runs for each pending input event, before OnUpdate.
	OnInputEvent(dt float64, ev input.Event)

	// OnMessage runs synchronously when another entity sends to this one.
	OnMessage(msg variant.Message)

	// PrepareRender realizes the entity's GPU resources. The world calls it
	// at most once unless the entity's render state is invalidated.
	PrepareRender(r *resource.Realizer) error

	// Meshes is only meaningful after PrepareRender succeeded.
	Meshes() []resource.MeshRef
}

// Identified entities carry their own identifier. A zero ID lets the owner
// assign one.
type Identified interface {
	ID() ulid.ULID
}

// Releaser entities own GPU resources that must be released when the
// entity is discarded.
type Releaser interface {
	Release()
}

// Registration is what an entity reports when it joins a world: extra
// lookup tags and bootstrap changes.
type Registration struct {
	Tags    []string
	Changes []WorldChange
}

// Base implements every optional hook as a no-op and remembers the
// identifier handed to OnRegistration.
type Base struct {
	id ulid.ULID
}

// NewBase returns a Base with a fresh identifier.
func NewBase() Base { return Base{id: ulid.Make()} }

func (b *Base) ID() ulid.ULID { return b.id }

func (b *Base) OnRegistration(id ulid.ULID) Registration {
	b.id = id
	return Registration{}
}

func (b *Base) OnUpdate(float64) []WorldChange         { return nil }
func (b *Base) OnInputEvent(float64, input.Event)      {}
func (b *Base) OnMessage(variant.Message)              {}
func (b *Base) PrepareRender(*resource.Realizer) error { return nil }
func (b *Base) Meshes() []resource.MeshRef             { return nil }
