package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PositionMode says how a vector in a change is applied.
//
//   - Overwrite teleports to the vector.
//   - Offset adds the vector in world space.
//   - OffsetViewAligned adds the vector in view space: X is forward, Y is
//     up and Z is right, following where the camera looks. Without a known
//     orientation it behaves exactly like Offset.
type PositionMode uint8

const (
	Overwrite PositionMode = iota
	Offset
	OffsetViewAligned
)

func (m PositionMode) String() string {
	switch m {
	case Overwrite:
		return "overwrite"
	case Offset:
		return "offset"
	case OffsetViewAligned:
		return "offset_view_aligned"
	}
	return "unknown"
}

// ParsePositionMode accepts the String spellings.
func ParsePositionMode(s string) (PositionMode, bool) {
	for m := Overwrite; m <= OffsetViewAligned; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return Overwrite, false
}

type PositionChange struct {
	Vector mgl32.Vec3
	Mode   PositionMode
}

// Orientation is yaw and pitch in radians. Yaw 0 looks down +X.
type Orientation struct {
	Yaw   float32
	Pitch float32
}

var worldUp = mgl32.Vec3{0, 1, 0}

// Basis returns the unit forward, right and up vectors.
func (o Orientation) Basis() (forward, right, up mgl32.Vec3) {
	sy, cy := math.Sincos(float64(o.Yaw))
	sp, cp := math.Sincos(float64(o.Pitch))
	forward = mgl32.Vec3{float32(cy * cp), float32(sp), float32(sy * cp)}.Normalize()
	right = forward.Cross(worldUp).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// ResolvePosition applies change to current. orientation may be nil.
func ResolvePosition(current mgl32.Vec3, orientation *Orientation, change PositionChange) mgl32.Vec3 {
	switch change.Mode {
	case Overwrite:
		return change.Vector
	case OffsetViewAligned:
		if orientation == nil {
			return current.Add(change.Vector)
		}
		forward, right, up := orientation.Basis()
		v := change.Vector
		return current.
			Add(forward.Mul(v.X())).
			Add(up.Mul(v.Y())).
			Add(right.Mul(v.Z()))
	default:
		return current.Add(change.Vector)
	}
}
