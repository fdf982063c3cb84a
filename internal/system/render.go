package system

import (
	"time"

	"github.com/orbitalgo/orbital/internal/camera"
	coresys "github.com/orbitalgo/orbital/internal/core/system"
	"github.com/orbitalgo/orbital/internal/render"
	"github.com/orbitalgo/orbital/internal/resource"
	"github.com/orbitalgo/orbital/internal/world"
	"go.uber.org/zap"
)

// RenderSystem realizes pending resources, uploads the camera and hands
// the frame to the renderer. Phase 3 (Render).
type RenderSystem struct {
	world    *world.World
	realizer *resource.Realizer
	cameras  *camera.Manager
	renderer render.Renderer
	frame    *FrameInput
	log      *zap.Logger
}

func NewRenderSystem(
	w *world.World,
	realizer *resource.Realizer,
	cameras *camera.Manager,
	renderer render.Renderer,
	frame *FrameInput,
	log *zap.Logger,
) *RenderSystem {
	return &RenderSystem{
		world:    w,
		realizer: realizer,
		cameras:  cameras,
		renderer: renderer,
		frame:    frame,
		log:      log,
	}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	// Failures are logged per entity by the world and not retried.
	meshes, _ := s.world.PrepareRenderAndCollectMeshes(s.realizer)

	if err := s.cameras.Sync(s.realizer.Device(), s.realizer.Queue()); err != nil {
		s.log.Error("camera upload failed", zap.Error(err))
	}

	err := s.renderer.Render(render.Frame{
		Number:         s.frame.Number,
		ClearColor:     s.world.ClearColor(),
		ViewProjection: s.cameras.ViewProjection(),
		Camera:         s.cameras.BindGroup(),
		Meshes:         meshes,
	})
	if err != nil {
		s.log.Error("render failed", zap.Uint64("frame", s.frame.Number), zap.Error(err))
	}
}
