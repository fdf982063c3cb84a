package elements

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oklog/ulid/v2"
	"github.com/orbitalgo/orbital/internal/camera"
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/input"
)

// Debug camera bindings.
const (
	DebugCameraIdentifier = "DEBUG"
	DebugCameraTag        = "debug camera"

	ActionMoveForward         = "move_forward"
	ActionMoveBackward        = "move_backward"
	ActionMoveLeft            = "move_left"
	ActionMoveRight           = "move_right"
	ActionMoveDown            = "move_down"
	ActionMoveUp              = "move_up"
	ActionMoveForwardBackward = "move_forward_backward"
	ActionMoveLeftRight       = "move_left_right"
	ActionMoveUpDown          = "move_up_down"
)

// DebugCamera spawns and activates its own camera at registration and
// flies it with WASD/QE, the D-pad and the left stick. Movement is view
// aligned: forward follows where the camera looks.
type DebugCamera struct {
	entity.Base
	input *input.Handler
	speed float32
	start mgl32.Vec3
}

func NewDebugCamera(start mgl32.Vec3, speed float32) *DebugCamera {
	h := input.NewHandler()
	h.MapKey("KeyW", ActionMoveForward)
	h.MapKey("KeyS", ActionMoveBackward)
	h.MapKey("KeyA", ActionMoveLeft)
	h.MapKey("KeyD", ActionMoveRight)
	h.MapKey("KeyQ", ActionMoveDown)
	h.MapKey("KeyE", ActionMoveUp)
	h.MapButton("DPadDown", ActionMoveDown)
	h.MapButton("DPadUp", ActionMoveUp)
	h.MapAxis("LeftStickY", ActionMoveForwardBackward)
	h.MapAxis("LeftStickX", ActionMoveLeftRight)
	if speed <= 0 {
		speed = 5
	}
	return &DebugCamera{input: h, speed: speed, start: start}
}

func (d *DebugCamera) Configuration() entity.Configuration {
	return entity.Configuration{Tag: DebugCameraTag, UpdateFrequency: entity.EveryFrame}
}

func (d *DebugCamera) OnRegistration(id ulid.ULID) entity.Registration {
	d.Base.OnRegistration(id)
	return entity.Registration{
		Tags: []string{DebugCameraIdentifier},
		Changes: []entity.WorldChange{entity.SpawnCamera{
			Descriptor: camera.Descriptor{Identifier: DebugCameraIdentifier, Position: d.start},
			Activate:   true,
		}},
	}
}

func (d *DebugCamera) OnInputEvent(_ float64, ev input.Event) {
	d.input.Handle(ev)
}

func (d *DebugCamera) OnUpdate(dt float64) []entity.WorldChange {
	step := d.speed * float32(dt)
	var move mgl32.Vec3
	if v, ok := d.input.DynamicAxis(ActionMoveForwardBackward, ActionMoveForward, ActionMoveBackward); ok {
		move[0] = v * step
	}
	if v, ok := d.input.DynamicAxis(ActionMoveUpDown, ActionMoveUp, ActionMoveDown); ok {
		move[1] = v * step
	}
	if v, ok := d.input.DynamicAxis(ActionMoveLeftRight, ActionMoveRight, ActionMoveLeft); ok {
		move[2] = v * step
	}

	change := camera.Change{Target: DebugCameraIdentifier}
	if move != (mgl32.Vec3{}) {
		change.Position = &camera.PositionChange{Vector: move, Mode: camera.OffsetViewAligned}
	}
	if !change.ChangesSomething() {
		return nil
	}
	return []entity.WorldChange{entity.CameraChange{Change: change}}
}
