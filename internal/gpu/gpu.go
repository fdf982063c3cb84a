// Package gpu describes the opaque GPU capability the engine consumes.
// The device is created outside the core; everything here is handles and
// descriptors shaped after WebGPU so a backend can map them one to one.
package gpu

// Releaser frees the GPU object behind a handle. Calling Release twice is a no-op.
type Releaser interface {
	Release()
}

type Buffer interface {
	Releaser
	Label() string
	Size() uint64
}

type Texture interface {
	Releaser
	Label() string
	Size() Extent3D
	Format() TextureFormat
	CreateView(desc *TextureViewDescriptor) (TextureView, error)
}

type TextureView interface{ Releaser }

type Sampler interface{ Releaser }

type ShaderModule interface{ Releaser }

type BindGroupLayout interface{ Releaser }

type BindGroup interface{ Releaser }

type RenderPipeline interface{ Releaser }

// Device creates GPU objects. Creation failures (validation, shader
// compilation, out of memory) are returned, never panicked.
type Device interface {
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	CreateTexture(desc *TextureDescriptor) (Texture, error)
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
}

// Queue uploads data into device objects.
type Queue interface {
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	WriteTexture(tex Texture, data []byte, layout TextureDataLayout, size Extent3D) error
}

// Release releases every non-nil handle in order.
func Release(handles ...Releaser) {
	for _, h := range handles {
		if h != nil {
			h.Release()
		}
	}
}
