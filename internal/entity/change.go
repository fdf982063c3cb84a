package entity

import (
	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/camera"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/variant"
)

// WorldChange is a deferred mutation returned from an entity hook. The set
// of variants is closed; building one has no side effects.
type WorldChange interface {
	worldChange()
}

// SpawnEntity adds Entity to the world as if by AddEntity.
type SpawnEntity struct {
	Entity Entity
}

// RemoveEntity removes the first entity carrying Tag.
type RemoveEntity struct {
	Tag string
}

// ClearColorAdjustment replaces the world's clear color.
type ClearColorAdjustment struct {
	Color gpu.Color
}

// CameraChange is forwarded to the camera controller.
type CameraChange struct {
	Change camera.Change
}

// SpawnCamera creates a camera and optionally makes it the active one.
type SpawnCamera struct {
	Descriptor camera.Descriptor
	Activate   bool
}

// SendMessage delivers Message to the entity identified by Target. A
// missing target drops the message.
type SendMessage struct {
	Target  ulid.ULID
	Message variant.Message
}

// Keep is the explicit no-op.
type Keep struct{}

func (SpawnEntity) worldChange()          {}
func (RemoveEntity) worldChange()         {}
func (ClearColorAdjustment) worldChange() {}
func (CameraChange) worldChange()         {}
func (SpawnCamera) worldChange()          {}
func (SendMessage) worldChange()          {}
func (Keep) worldChange()                 {}
