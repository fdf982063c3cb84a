package wgpudevice

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/orbitalgo/orbital/internal/gpu"
)

// releaseOnce guards a native release so handles tolerate double Release.
type releaseOnce struct {
	once sync.Once
}

func (r *releaseOnce) do(fn func()) { r.once.Do(fn) }

type buffer struct {
	releaseOnce
	native *wgpu.Buffer
	label  string
	size   uint64
}

func (b *buffer) Label() string { return b.label }
func (b *buffer) Size() uint64  { return b.size }
func (b *buffer) Release()      { b.do(b.native.Release) }

type texture struct {
	releaseOnce
	native *wgpu.Texture
	desc   gpu.TextureDescriptor
}

func (t *texture) Label() string             { return t.desc.Label }
func (t *texture) Size() gpu.Extent3D        { return t.desc.Size }
func (t *texture) Format() gpu.TextureFormat { return t.desc.Format }
func (t *texture) Release()                  { t.do(t.native.Release) }

// CreateView creates a full view; the descriptor label is not forwarded.
func (t *texture) CreateView(*gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	v, err := t.native.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return &textureView{native: v}, nil
}

type textureView struct {
	releaseOnce
	native *wgpu.TextureView
}

func (v *textureView) Release() { v.do(v.native.Release) }

type sampler struct {
	releaseOnce
	native *wgpu.Sampler
}

func (s *sampler) Release() { s.do(s.native.Release) }

type shaderModule struct {
	releaseOnce
	native *wgpu.ShaderModule
}

func (s *shaderModule) Release() { s.do(s.native.Release) }

type bindGroupLayout struct {
	releaseOnce
	native *wgpu.BindGroupLayout
}

func (l *bindGroupLayout) Release() { l.do(l.native.Release) }

type bindGroup struct {
	releaseOnce
	native *wgpu.BindGroup
}

func (g *bindGroup) Release() { g.do(g.native.Release) }

type renderPipeline struct {
	releaseOnce
	native *wgpu.RenderPipeline
	layout *wgpu.PipelineLayout
}

func (p *renderPipeline) Release() {
	p.do(func() {
		p.native.Release()
		p.layout.Release()
	})
}
