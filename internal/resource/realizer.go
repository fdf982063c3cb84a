package resource

import (
	"github.com/orbitalgo/orbital/internal/gpu"
	"go.uber.org/zap"
)

// Realizer turns descriptors into live GPU objects. It bundles the device
// and queue an entity needs during render preparation, plus the format of
// the surface pipelines will draw into.
type Realizer struct {
	device        gpu.Device
	queue         gpu.Queue
	surfaceFormat gpu.TextureFormat
	log           *zap.Logger
}

func NewRealizer(device gpu.Device, queue gpu.Queue, surfaceFormat gpu.TextureFormat, log *zap.Logger) *Realizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Realizer{
		device:        device,
		queue:         queue,
		surfaceFormat: surfaceFormat,
		log:           log,
	}
}

func (r *Realizer) Device() gpu.Device               { return r.device }
func (r *Realizer) Queue() gpu.Queue                 { return r.queue }
func (r *Realizer) SurfaceFormat() gpu.TextureFormat { return r.surfaceFormat }
