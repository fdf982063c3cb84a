package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput       Phase = iota // 0: swap event buffers, collect input
	PhaseUpdate                   // 1: every-frame entity updates + deferred changes
	PhaseFixedUpdate              // 2: fixed-rate entity updates
	PhaseRender                   // 3: realize pending resources, submit the frame
	PhaseCleanup                  // 4: release discarded entities
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhaseFixedUpdate:
		return "fixed_update"
	case PhaseRender:
		return "render"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
