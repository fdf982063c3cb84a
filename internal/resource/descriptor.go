package resource

import (
	"image"

	"github.com/orbitalgo/orbital/internal/gpu"
)

// Size is a 2D texel extent.
type Size struct {
	Width, Height uint32
}

// TextureDescriptor is one of SRGB8Image, SRGB8Data, UniformColor,
// DepthTexture or CustomTexture.
type TextureDescriptor interface {
	textureDescriptor()
}

// SRGB8Image uploads a decoded image. When Size is set and differs from the
// image bounds a warning is logged and Size wins.
type SRGB8Image struct {
	Image image.Image
	Size  *Size
}

// SRGB8Data uploads tightly packed RGBA8 rows.
type SRGB8Data struct {
	Data []byte
	Size Size
}

// UniformColor is a single-texel texture of one colour.
type UniformColor struct {
	Color gpu.Color
}

// DepthTexture is a render-attachment depth buffer.
type DepthTexture struct {
	Size Size
}

// CustomTexture hands the three underlying descriptors straight to the
// device. Data, when present, is uploaded as RGBA8 rows.
type CustomTexture struct {
	Texture gpu.TextureDescriptor
	View    gpu.TextureViewDescriptor
	Sampler gpu.SamplerDescriptor
	Data    []byte
}

func (SRGB8Image) textureDescriptor()    {}
func (SRGB8Data) textureDescriptor()     {}
func (UniformColor) textureDescriptor()  {}
func (DepthTexture) textureDescriptor()  {}
func (CustomTexture) textureDescriptor() {}

// EmptyTexture is the placeholder used when a material has nothing to sample.
var EmptyTexture TextureDescriptor = UniformColor{Color: gpu.White}

type MeshDescriptor struct {
	Vertices []Vertex
	Indices  []uint32
}

// MaterialDescriptor composes one albedo texture with a shader. An empty
// Shader selects the built-in unlit shader.
type MaterialDescriptor struct {
	Label  string
	Albedo TextureDescriptor
	Shader string
}

type ModelDescriptor struct {
	Label    string
	Mesh     MeshDescriptor
	Material MaterialDescriptor
}
