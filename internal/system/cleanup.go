package system

import (
	"time"

	coresys "github.com/orbitalgo/orbital/internal/core/system"
	"github.com/orbitalgo/orbital/internal/world"
)

// CleanupSystem releases the GPU resources of entities the world discarded
// this frame. Phase 4 (Cleanup).
type CleanupSystem struct {
	world *world.World
}

func NewCleanupSystem(w *world.World) *CleanupSystem {
	return &CleanupSystem{world: w}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FlushReleaseQueue()
}
