package wgpudevice

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/orbitalgo/orbital/internal/gpu"
	"github.com/orbitalgo/orbital/internal/render"
	"github.com/orbitalgo/orbital/internal/resource"
	"go.uber.org/zap"
)

// Renderer draws frames into an offscreen colour target owned by the
// renderer. Meshes whose buffers or pipeline come from another device are
// skipped with a warning.
type Renderer struct {
	device *Device
	target *wgpu.Texture
	view   *wgpu.TextureView
	width  uint32
	height uint32
	log    *zap.Logger
}

func NewRenderer(d *Device, width, height uint32, format gpu.TextureFormat, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	wf, err := textureFormat(format)
	if err != nil {
		return nil, err
	}
	target, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Offscreen Target",
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:        wf,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("offscreen target: %w", err)
	}
	view, err := target.CreateView(nil)
	if err != nil {
		target.Release()
		return nil, fmt.Errorf("offscreen target view: %w", err)
	}
	return &Renderer{
		device: d,
		target: target,
		view:   view,
		width:  width,
		height: height,
		log:    log,
	}, nil
}

func (r *Renderer) Render(f render.Frame) error {
	encoder, err := r.device.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("frame %d encoder: %w", f.Number, err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       r.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: f.ClearColor.R, G: f.ClearColor.G, B: f.ClearColor.B, A: f.ClearColor.A},
		}},
	})

	camera, bound := f.Camera.(*bindGroup)
	if !bound && len(f.Meshes) > 0 {
		r.log.Warn("meshes skipped without a camera bind group", zap.Uint64("frame", f.Number))
	}

	drawn := 0
	for _, m := range f.Meshes {
		if !bound {
			break
		}
		pipeline, ok1 := m.Material.Pipeline().(*renderPipeline)
		group, ok2 := m.Material.BindGroup().(*bindGroup)
		vb, ok3 := m.Mesh.VertexBuffer().(*buffer)
		ib, ok4 := m.Mesh.IndexBuffer().(*buffer)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			r.log.Warn("mesh skipped", zap.String("material", m.Material.Label()), zap.Error(ErrForeignHandle))
			continue
		}
		pass.SetPipeline(pipeline.native)
		pass.SetBindGroup(resource.MaterialGroup, group.native, nil)
		pass.SetBindGroup(resource.CameraGroup, camera.native, nil)
		pass.SetVertexBuffer(0, vb.native, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(ib.native, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(m.Mesh.IndexCount(), 1, 0, 0, 0)
		drawn++
	}
	pass.End()
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("frame %d finish: %w", f.Number, err)
	}
	defer cmd.Release()
	r.device.queue.native.Submit(cmd)

	r.log.Debug("frame rendered",
		zap.Uint64("frame", f.Number),
		zap.Int("draws", drawn),
	)
	return nil
}

func (r *Renderer) Size() (width, height uint32) { return r.width, r.height }

func (r *Renderer) Release() {
	r.view.Release()
	r.target.Release()
}
