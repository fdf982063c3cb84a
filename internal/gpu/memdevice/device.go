// Package memdevice is a software implementation of the gpu capability.
// Every object lives in host memory and every upload is kept, which makes
// it the device of choice for tests and for the dry_run render backend.
package memdevice

import (
	"fmt"
	"strings"
	"sync"

	"github.com/orbitalgo/orbital/internal/gpu"
)

// Kind names a class of device object.
type Kind uint8

const (
	KindBuffer Kind = iota
	KindTexture
	KindTextureView
	KindSampler
	KindShaderModule
	KindBindGroupLayout
	KindBindGroup
	KindRenderPipeline
	kindCount
)

var kindNames = [kindCount]string{
	"buffer", "texture", "texture view", "sampler",
	"shader module", "bind group layout", "bind group", "render pipeline",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Device records everything created through it. Safe for concurrent use.
type Device struct {
	mu       sync.Mutex
	created  [kindCount]int
	released [kindCount]int
	failures map[Kind]error
	queue    *Queue

	textures []*Texture
	buffers  []*Buffer
}

func New() *Device {
	d := &Device{failures: make(map[Kind]error)}
	d.queue = &Queue{device: d}
	return d
}

// Queue returns the device's single upload queue.
func (d *Device) Queue() *Queue { return d.queue }

// FailNext makes the next creation of kind return err.
func (d *Device) FailNext(kind Kind, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[kind] = err
}

// Created reports how many objects of kind were ever created.
func (d *Device) Created(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created[kind]
}

// Live reports how many objects of kind are created and not yet released.
func (d *Device) Live(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created[kind] - d.released[kind]
}

// LiveTotal sums Live over every kind.
func (d *Device) LiveTotal() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for k := Kind(0); k < kindCount; k++ {
		n += d.created[k] - d.released[k]
	}
	return n
}

// Textures returns every texture created so far, in creation order.
func (d *Device) Textures() []*Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Texture(nil), d.textures...)
}

// Buffers returns every buffer created so far, in creation order.
func (d *Device) Buffers() []*Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Buffer(nil), d.buffers...)
}

func (d *Device) create(kind Kind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failures[kind]; ok {
		delete(d.failures, kind)
		return err
	}
	d.created[kind]++
	return nil
}

func (d *Device) release(kind Kind) {
	d.mu.Lock()
	d.released[kind]++
	d.mu.Unlock()
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q: zero size", desc.Label)
	}
	if err := d.create(KindBuffer); err != nil {
		return nil, err
	}
	b := &Buffer{handle: handle{device: d, kind: KindBuffer}, Desc: *desc, Data: make([]byte, desc.Size)}
	d.mu.Lock()
	d.buffers = append(d.buffers, b)
	d.mu.Unlock()
	return b, nil
}

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("texture %q: zero extent %dx%d", desc.Label, desc.Size.Width, desc.Size.Height)
	}
	if desc.Format == gpu.TextureFormatUndefined {
		return nil, fmt.Errorf("texture %q: undefined format", desc.Label)
	}
	if err := d.create(KindTexture); err != nil {
		return nil, err
	}
	t := &Texture{handle: handle{device: d, kind: KindTexture}, Desc: *desc}
	d.mu.Lock()
	d.textures = append(d.textures, t)
	d.mu.Unlock()
	return t, nil
}

func (d *Device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	if err := d.create(KindSampler); err != nil {
		return nil, err
	}
	return &Sampler{handle: handle{device: d, kind: KindSampler}, Desc: *desc}, nil
}

// CreateShaderModule performs the only "compilation" a software device can
// do: the source must declare at least one vertex and one fragment stage.
func (d *Device) CreateShaderModule(desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	if !strings.Contains(desc.Source, "@vertex") || !strings.Contains(desc.Source, "@fragment") {
		return nil, fmt.Errorf("shader %q: missing @vertex or @fragment stage", desc.Label)
	}
	if err := d.create(KindShaderModule); err != nil {
		return nil, err
	}
	return &ShaderModule{handle: handle{device: d, kind: KindShaderModule}, Desc: *desc}, nil
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	if err := d.create(KindBindGroupLayout); err != nil {
		return nil, err
	}
	return &BindGroupLayout{handle: handle{device: d, kind: KindBindGroupLayout}, Desc: *desc}, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	if desc.Layout == nil {
		return nil, fmt.Errorf("bind group %q: nil layout", desc.Label)
	}
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q: foreign layout %T", desc.Label, desc.Layout)
	}
	if len(layout.Desc.Entries) != len(desc.Entries) {
		return nil, fmt.Errorf("bind group %q: %d entries for a layout of %d", desc.Label, len(desc.Entries), len(layout.Desc.Entries))
	}
	if err := d.create(KindBindGroup); err != nil {
		return nil, err
	}
	return &BindGroup{handle: handle{device: d, kind: KindBindGroup}, Desc: *desc}, nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if desc.Module == nil {
		return nil, fmt.Errorf("pipeline %q: nil shader module", desc.Label)
	}
	sm, ok := desc.Module.(*ShaderModule)
	if !ok {
		return nil, fmt.Errorf("pipeline %q: foreign shader module %T", desc.Label, desc.Module)
	}
	for _, entry := range []string{desc.VertexEntryPoint, desc.FragmentEntry} {
		if !strings.Contains(sm.Desc.Source, "fn "+entry) {
			return nil, fmt.Errorf("pipeline %q: entry point %q not found", desc.Label, entry)
		}
	}
	if err := d.create(KindRenderPipeline); err != nil {
		return nil, err
	}
	return &RenderPipeline{handle: handle{device: d, kind: KindRenderPipeline}, Desc: *desc}, nil
}
