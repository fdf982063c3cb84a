package gpu

// Color is a linear RGBA colour, one float per channel in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	Black = Color{0, 0, 0, 1}
	White = Color{1, 1, 1, 1}
)

type TextureFormat uint8

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatDepth32Float
)

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case TextureFormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case TextureFormatBGRA8Unorm:
		return "bgra8unorm"
	case TextureFormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	case TextureFormatDepth32Float:
		return "depth32float"
	}
	return "undefined"
}

// ParseTextureFormat maps the WebGPU spelling back to a TextureFormat.
func ParseTextureFormat(s string) (TextureFormat, bool) {
	for f := TextureFormatRGBA8Unorm; f <= TextureFormatDepth32Float; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return TextureFormatUndefined, false
}

type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

type BufferUsage uint32

const (
	BufferUsageCopySrc BufferUsage = 1 << iota
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
)

type AddressMode uint8

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
)

type FilterMode uint8

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

type Extent3D struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
}

type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

type TextureDescriptor struct {
	Label         string
	Size          Extent3D
	MipLevelCount uint32
	SampleCount   uint32
	Format        TextureFormat
	Usage         TextureUsage
}

type TextureViewDescriptor struct {
	Label string
}

type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
	LodMinClamp  float32
	LodMaxClamp  float32
}

// TextureDataLayout describes how uploaded bytes are laid out in memory.
type TextureDataLayout struct {
	Offset       uint64
	BytesPerRow  uint32
	RowsPerImage uint32
}

type ShaderModuleDescriptor struct {
	Label string
	// Source is WGSL text. The core treats it as opaque.
	Source string
}

type BindingType uint8

const (
	BindingTypeTexture BindingType = iota
	BindingTypeSampler
	BindingTypeUniformBuffer
)

type BindGroupLayoutEntry struct {
	Binding uint32
	Type    BindingType
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds exactly one of TextureView, Sampler or Buffer.
type BindGroupEntry struct {
	Binding     uint32
	TextureView TextureView
	Sampler     Sampler
	Buffer      Buffer
}

type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

type VertexFormat uint8

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

type VertexBufferLayout struct {
	ArrayStride uint64
	Attributes  []VertexAttribute
}

type RenderPipelineDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout
	Module           ShaderModule
	VertexEntryPoint string
	FragmentEntry    string
	VertexBuffers    []VertexBufferLayout
	TargetFormat     TextureFormat
}
