package memdevice

import (
	"fmt"
	"sync"

	"github.com/orbitalgo/orbital/internal/gpu"
)

type handle struct {
	device   *Device
	kind     Kind
	once     sync.Once
	released bool
}

func (h *handle) Release() {
	h.once.Do(func() {
		h.released = true
		h.device.release(h.kind)
	})
}

// Released reports whether Release was called.
func (h *handle) Released() bool { return h.released }

type Buffer struct {
	handle
	Desc   gpu.BufferDescriptor
	Data   []byte
	Writes int
}

func (b *Buffer) Label() string { return b.Desc.Label }
func (b *Buffer) Size() uint64  { return b.Desc.Size }

type Texture struct {
	handle
	Desc   gpu.TextureDescriptor
	Data   []byte
	Layout gpu.TextureDataLayout
	Writes int
}

func (t *Texture) Label() string             { return t.Desc.Label }
func (t *Texture) Size() gpu.Extent3D        { return t.Desc.Size }
func (t *Texture) Format() gpu.TextureFormat { return t.Desc.Format }

func (t *Texture) CreateView(desc *gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	if t.released {
		return nil, fmt.Errorf("texture %q: view of released texture", t.Desc.Label)
	}
	if err := t.device.create(KindTextureView); err != nil {
		return nil, err
	}
	v := &TextureView{handle: handle{device: t.device, kind: KindTextureView}, Texture: t}
	if desc != nil {
		v.Desc = *desc
	}
	return v, nil
}

type TextureView struct {
	handle
	Desc    gpu.TextureViewDescriptor
	Texture *Texture
}

type Sampler struct {
	handle
	Desc gpu.SamplerDescriptor
}

type ShaderModule struct {
	handle
	Desc gpu.ShaderModuleDescriptor
}

type BindGroupLayout struct {
	handle
	Desc gpu.BindGroupLayoutDescriptor
}

type BindGroup struct {
	handle
	Desc gpu.BindGroupDescriptor
}

type RenderPipeline struct {
	handle
	Desc gpu.RenderPipelineDescriptor
}

// Queue copies uploads into the target objects.
type Queue struct {
	device *Device
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("write buffer: foreign buffer %T", buf)
	}
	if b.released {
		return fmt.Errorf("write buffer %q: released", b.Desc.Label)
	}
	if offset+uint64(len(data)) > b.Desc.Size {
		return fmt.Errorf("write buffer %q: %d bytes at %d overflow size %d", b.Desc.Label, len(data), offset, b.Desc.Size)
	}
	copy(b.Data[offset:], data)
	b.Writes++
	return nil
}

func (q *Queue) WriteTexture(tex gpu.Texture, data []byte, layout gpu.TextureDataLayout, size gpu.Extent3D) error {
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("write texture: foreign texture %T", tex)
	}
	if t.released {
		return fmt.Errorf("write texture %q: released", t.Desc.Label)
	}
	layers := max(uint64(size.DepthOrArrayLayers), 1)
	if need := uint64(layout.BytesPerRow) * uint64(size.Height) * layers; uint64(len(data)) < need {
		return fmt.Errorf("write texture %q: %d bytes for %d rows x %d layers of %d", t.Desc.Label, len(data), size.Height, layers, layout.BytesPerRow)
	}
	t.Data = append(t.Data[:0], data...)
	t.Layout = layout
	t.Writes++
	return nil
}
