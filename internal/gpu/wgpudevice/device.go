// Package wgpudevice backs the gpu capability with WebGPU through
// cogentcore/webgpu. Open acquires a headless device; Renderer draws frames
// into an offscreen target.
package wgpudevice

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/orbitalgo/orbital/internal/gpu"
	"go.uber.org/zap"
)

// ErrForeignHandle is returned when a handle created by another device is
// passed in.
var ErrForeignHandle = errors.New("handle not created by this device")

type Options struct {
	Label                string
	ForceFallbackAdapter bool
}

// Device owns the instance, adapter and device triple.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *Queue
	log      *zap.Logger
}

// Open acquires an adapter and device without a surface.
func Open(opts Options, log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: opts.Label})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}

	log.Info("gpu device acquired",
		zap.String("label", opts.Label),
		zap.Bool("fallback_adapter", opts.ForceFallbackAdapter),
	)
	return &Device{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    &Queue{native: device.GetQueue()},
		log:      log,
	}, nil
}

func (d *Device) Queue() *Queue { return d.queue }

// Close releases the queue, device, adapter and instance.
func (d *Device) Close() {
	d.queue.native.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	b, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: bufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, err
	}
	return &buffer{native: b, label: desc.Label, size: desc.Size}, nil
}

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	format, err := textureFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	mips, samples := desc.MipLevelCount, desc.SampleCount
	if mips == 0 {
		mips = 1
	}
	if samples == 0 {
		samples = 1
	}
	t, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Usage:         textureUsage(desc.Usage),
		Dimension:     wgpu.TextureDimension2D,
		Size:          extent(desc.Size),
		Format:        format,
		MipLevelCount: mips,
		SampleCount:   samples,
	})
	if err != nil {
		return nil, err
	}
	return &texture{native: t, desc: *desc}, nil
}

func (d *Device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	lodMax := desc.LodMaxClamp
	if lodMax == 0 {
		lodMax = 32
	}
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  addressMode(desc.AddressModeU),
		AddressModeV:  addressMode(desc.AddressModeV),
		AddressModeW:  addressMode(desc.AddressModeW),
		MagFilter:     filterMode(desc.MagFilter),
		MinFilter:     filterMode(desc.MinFilter),
		MipmapFilter:  mipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   lodMax,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}
	return &sampler{native: s}, nil
}

func (d *Device) CreateShaderModule(desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Source},
	})
	if err != nil {
		return nil, err
	}
	return &shaderModule{native: m}, nil
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = bindGroupLayoutEntry(e)
	}
	l, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &bindGroupLayout{native: l}, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q layout: %w", desc.Label, ErrForeignHandle)
	}
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		out := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.TextureView != nil:
			v, ok := e.TextureView.(*textureView)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: %w", desc.Label, e.Binding, ErrForeignHandle)
			}
			out.TextureView = v.native
		case e.Sampler != nil:
			s, ok := e.Sampler.(*sampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: %w", desc.Label, e.Binding, ErrForeignHandle)
			}
			out.Sampler = s.native
		case e.Buffer != nil:
			b, ok := e.Buffer.(*buffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: %w", desc.Label, e.Binding, ErrForeignHandle)
			}
			out.Buffer = b.native
			out.Size = wgpu.WholeSize
		}
		entries[i] = out
	}
	g, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.native,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &bindGroup{native: g}, nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	module, ok := desc.Module.(*shaderModule)
	if !ok {
		return nil, fmt.Errorf("pipeline %q shader: %w", desc.Label, ErrForeignHandle)
	}
	format, err := textureFormat(desc.TargetFormat)
	if err != nil {
		return nil, err
	}
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		bgl, ok := l.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline %q layout %d: %w", desc.Label, i, ErrForeignHandle)
		}
		layouts[i] = bgl.native
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + " Layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, err
	}

	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module.native,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    vertexBuffers(desc.VertexBuffers),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module.native,
			EntryPoint: desc.FragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		pipelineLayout.Release()
		return nil, err
	}
	return &renderPipeline{native: p, layout: pipelineLayout}, nil
}

func vertexBuffers(in []gpu.VertexBufferLayout) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, len(in))
	for i, l := range in {
		attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
		for j, a := range l.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         vertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		out[i] = wgpu.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		}
	}
	return out
}

// Queue adapts the device queue.
type Queue struct {
	native *wgpu.Queue
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("write buffer: %w", ErrForeignHandle)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("write buffer %q: %d bytes at %d exceed size %d", b.label, len(data), offset, b.size)
	}
	q.native.WriteBuffer(b.native, offset, data)
	return nil
}

func (q *Queue) WriteTexture(tex gpu.Texture, data []byte, layout gpu.TextureDataLayout, size gpu.Extent3D) error {
	t, ok := tex.(*texture)
	if !ok {
		return fmt.Errorf("write texture: %w", ErrForeignHandle)
	}
	ext := extent(size)
	q.native.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.native,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       layout.Offset,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		&ext,
	)
	return nil
}
