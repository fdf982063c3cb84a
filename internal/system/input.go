// Package system holds the frame systems the runner drives each frame:
// input collection, entity updates, rendering and cleanup.
package system

import (
	"time"

	"github.com/orbitalgo/orbital/internal/core/event"
	coresys "github.com/orbitalgo/orbital/internal/core/system"
	"github.com/orbitalgo/orbital/internal/input"
)

// FrameInput is the input shared by the systems of one frame.
type FrameInput struct {
	Number uint64
	Events []input.Event
}

// InputSystem swaps the event bus, dispatches the previous frame's
// notifications to subscribers and publishes the frame's input events.
// Phase 0 (Input).
type InputSystem struct {
	bus   *event.Bus
	frame *FrameInput
}

func NewInputSystem(bus *event.Bus, frame *FrameInput) *InputSystem {
	return &InputSystem{bus: bus, frame: frame}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	s.frame.Number++
	s.frame.Events = event.Pending[input.Event](s.bus)
}
