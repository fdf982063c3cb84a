// Package camera holds camera values and the manager that applies camera
// changes queued by entities.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const maxPitch = math.Pi/2 - 0.01

// Descriptor describes a camera to spawn. Zero projection fields take defaults.
type Descriptor struct {
	Identifier string
	Position   mgl32.Vec3
	Yaw        float32
	Pitch      float32
	FovY       float32 // radians
	Aspect     float32
	Near       float32
	Far        float32
}

func (d Descriptor) withDefaults() Descriptor {
	if d.FovY == 0 {
		d.FovY = mgl32.DegToRad(45)
	}
	if d.Aspect == 0 {
		d.Aspect = 16.0 / 9.0
	}
	if d.Near == 0 {
		d.Near = 0.1
	}
	if d.Far == 0 {
		d.Far = 100
	}
	return d
}

// OrientationChange rotates a camera. Mode is Overwrite or Offset.
type OrientationChange struct {
	Yaw   float32
	Pitch float32
	Mode  PositionMode
}

// Change is a queued camera update. An empty Target means the active camera.
type Change struct {
	Target      string
	Position    *PositionChange
	Orientation *OrientationChange
}

// ChangesSomething reports whether applying the change can have any effect.
func (c Change) ChangesSomething() bool {
	return c.Position != nil || c.Orientation != nil
}

type Camera struct {
	desc        Descriptor
	position    mgl32.Vec3
	orientation Orientation
}

func newCamera(desc Descriptor) *Camera {
	desc = desc.withDefaults()
	c := &Camera{desc: desc, position: desc.Position}
	c.setOrientation(Orientation{Yaw: desc.Yaw, Pitch: desc.Pitch})
	return c
}

func (c *Camera) Identifier() string       { return c.desc.Identifier }
func (c *Camera) Position() mgl32.Vec3     { return c.position }
func (c *Camera) Orientation() Orientation { return c.orientation }

func (c *Camera) setOrientation(o Orientation) {
	o.Pitch = mgl32.Clamp(o.Pitch, -maxPitch, maxPitch)
	c.orientation = o
}

func (c *Camera) apply(change Change) {
	if change.Orientation != nil {
		o := change.Orientation
		if o.Mode == Overwrite {
			c.setOrientation(Orientation{Yaw: o.Yaw, Pitch: o.Pitch})
		} else {
			c.setOrientation(Orientation{Yaw: c.orientation.Yaw + o.Yaw, Pitch: c.orientation.Pitch + o.Pitch})
		}
	}
	if change.Position != nil {
		orientation := c.orientation
		c.position = ResolvePosition(c.position, &orientation, *change.Position)
	}
}

func (c *Camera) View() mgl32.Mat4 {
	forward, _, up := c.orientation.Basis()
	return mgl32.LookAtV(c.position, c.position.Add(forward), up)
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.desc.FovY, c.desc.Aspect, c.desc.Near, c.desc.Far)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}
