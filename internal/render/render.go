// Package render defines the frame handed from the simulation to a
// renderer backend.
package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/resource"
	"go.uber.org/zap"
)

// Frame is everything a backend needs to draw one frame. Meshes are
// borrowed: they stay valid until the next Cleanup phase.
type Frame struct {
	Number         uint64
	ClearColor     gpu.Color
	ViewProjection mgl32.Mat4
	Camera         gpu.BindGroup // bound at resource.CameraGroup, may be nil
	Meshes         []resource.MeshRef
}

// Renderer draws frames.
type Renderer interface {
	Render(f Frame) error
}

// Recorder is the dry-run renderer: it keeps counters and the last frame
// instead of drawing.
type Recorder struct {
	frames    uint64
	drawCalls uint64
	indices   uint64
	last      Frame
	log       *zap.Logger
}

func NewRecorder(log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{log: log}
}

func (r *Recorder) Render(f Frame) error {
	r.frames++
	r.drawCalls += uint64(len(f.Meshes))
	for _, m := range f.Meshes {
		r.indices += uint64(m.Mesh.IndexCount())
	}
	r.last = f
	r.log.Debug("frame recorded",
		zap.Uint64("frame", f.Number),
		zap.Int("meshes", len(f.Meshes)),
	)
	return nil
}

func (r *Recorder) Frames() uint64    { return r.frames }
func (r *Recorder) DrawCalls() uint64 { return r.drawCalls }
func (r *Recorder) Indices() uint64   { return r.indices }
func (r *Recorder) Last() Frame       { return r.last }
