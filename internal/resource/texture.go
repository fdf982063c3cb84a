package resource

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/orbitalgo/orbital/internal/gpu"
	"go.uber.org/zap"
)

// Texture owns a device texture, its default view and a sampler.
type Texture struct {
	texture gpu.Texture
	view    gpu.TextureView
	sampler gpu.Sampler
}

func (t *Texture) Texture() gpu.Texture  { return t.texture }
func (t *Texture) View() gpu.TextureView { return t.view }
func (t *Texture) Sampler() gpu.Sampler  { return t.sampler }

func (t *Texture) Release() {
	gpu.Release(t.sampler, t.view, t.texture)
}

// defaultSampler is used by every SRGB8 texture.
var defaultSampler = gpu.SamplerDescriptor{
	Label:        "Standard SRGB u8 Data Texture Sampler",
	AddressModeU: gpu.AddressModeClampToEdge,
	AddressModeV: gpu.AddressModeClampToEdge,
	AddressModeW: gpu.AddressModeClampToEdge,
	MagFilter:    gpu.FilterModeLinear,
	MinFilter:    gpu.FilterModeNearest,
	MipmapFilter: gpu.FilterModeNearest,
	LodMaxClamp:  32,
}

var depthSampler = gpu.SamplerDescriptor{
	Label:        "Depth Texture Sampler",
	AddressModeU: gpu.AddressModeClampToEdge,
	AddressModeV: gpu.AddressModeClampToEdge,
	AddressModeW: gpu.AddressModeClampToEdge,
	MagFilter:    gpu.FilterModeLinear,
	MinFilter:    gpu.FilterModeLinear,
	MipmapFilter: gpu.FilterModeNearest,
	LodMinClamp:  0,
	LodMaxClamp:  100,
}

// RealizeTexture dispatches on the descriptor variant.
func (r *Realizer) RealizeTexture(desc TextureDescriptor) (*Texture, error) {
	var (
		tex *Texture
		err error
	)
	switch d := desc.(type) {
	case UniformColor:
		tex, err = r.uniformColor(d.Color)
	case SRGB8Image:
		tex, err = r.srgb8Image(d)
	case SRGB8Data:
		tex, err = r.srgb8Data(d.Data, d.Size, nil)
	case DepthTexture:
		tex, err = r.depth(d.Size)
	case CustomTexture:
		tex, err = r.custom(d)
	case nil:
		err = fmt.Errorf("nil descriptor")
	default:
		err = fmt.Errorf("unsupported descriptor %T", desc)
	}
	if err != nil {
		return nil, realizationError("texture", "", err)
	}
	return tex, nil
}

// UniformColorTexel converts a colour to one RGBA8 texel.
func UniformColorTexel(c gpu.Color) [4]byte {
	return [4]byte{channel(c.R), channel(c.G), channel(c.B), channel(c.A)}
}

func channel(v float64) byte {
	x := math.Round(v * 256)
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return byte(x)
}

func (r *Realizer) uniformColor(c gpu.Color) (*Texture, error) {
	texel := UniformColorTexel(c)
	return r.srgb8Data(texel[:], Size{Width: 1, Height: 1}, nil)
}

func (r *Realizer) srgb8Image(d SRGB8Image) (*Texture, error) {
	if d.Image == nil {
		return nil, fmt.Errorf("nil image")
	}
	b := d.Image.Bounds()
	actual := Size{Width: uint32(b.Dx()), Height: uint32(b.Dy())}
	size := actual
	if d.Size != nil {
		if *d.Size != actual {
			r.log.Warn("image dimensions differ from texture descriptor",
				zap.Uint32("image_width", actual.Width),
				zap.Uint32("image_height", actual.Height),
				zap.Uint32("texture_width", d.Size.Width),
				zap.Uint32("texture_height", d.Size.Height),
			)
		}
		size = *d.Size
	}
	rgba, ok := d.Image.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), d.Image, b.Min, draw.Src)
	}
	if size == actual {
		return r.srgb8Data(rgba.Pix, size, nil)
	}
	return r.srgb8Data(fitRows(rgba, size), size, nil)
}

// fitRows copies img row by row into a buffer of the declared size. Texels
// outside the image stay transparent; image texels outside size are cut.
func fitRows(img *image.RGBA, size Size) []byte {
	data := make([]byte, texelBytes(size))
	row := 4 * int(size.Width)
	n := min(row, 4*img.Rect.Dx())
	for y := 0; y < min(int(size.Height), img.Rect.Dy()); y++ {
		copy(data[y*row:y*row+n], img.Pix[y*img.Stride:])
	}
	return data
}

// texelBytes is the byte size of tightly packed RGBA8 rows.
func texelBytes(size Size) uint64 {
	return 4 * uint64(size.Width) * uint64(size.Height)
}

func (r *Realizer) srgb8Data(data []byte, size Size, sampler *gpu.SamplerDescriptor) (*Texture, error) {
	if need := texelBytes(size); uint64(len(data)) < need {
		return nil, fmt.Errorf("%d bytes of texel data for %dx%d (need %d)", len(data), size.Width, size.Height, need)
	}
	if sampler == nil {
		sampler = &defaultSampler
	}
	desc := gpu.TextureDescriptor{
		Label:         "Standard SRGB u8 Data Texture",
		Size:          gpu.Extent3D{Width: size.Width, Height: size.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        gpu.TextureFormatRGBA8UnormSrgb,
		Usage:         gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
	}
	tex, err := r.fromDescriptors(&desc, &gpu.TextureViewDescriptor{}, sampler)
	if err != nil {
		return nil, err
	}
	if err := r.upload(tex, data, desc.Size); err != nil {
		tex.Release()
		return nil, err
	}
	return tex, nil
}

func (r *Realizer) upload(tex *Texture, data []byte, size gpu.Extent3D) error {
	layout := gpu.TextureDataLayout{
		BytesPerRow:  4 * size.Width,
		RowsPerImage: size.Height,
	}
	return r.queue.WriteTexture(tex.texture, data, layout, size)
}

func (r *Realizer) depth(size Size) (*Texture, error) {
	desc := gpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          gpu.Extent3D{Width: size.Width, Height: size.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        gpu.TextureFormatDepth32Float,
		Usage:         gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
	}
	return r.fromDescriptors(&desc, &gpu.TextureViewDescriptor{}, &depthSampler)
}

func (r *Realizer) custom(d CustomTexture) (*Texture, error) {
	tex, err := r.fromDescriptors(&d.Texture, &d.View, &d.Sampler)
	if err != nil {
		return nil, err
	}
	if len(d.Data) > 0 {
		if err := r.upload(tex, d.Data, d.Texture.Size); err != nil {
			tex.Release()
			return nil, err
		}
	}
	return tex, nil
}

func (r *Realizer) fromDescriptors(td *gpu.TextureDescriptor, vd *gpu.TextureViewDescriptor, sd *gpu.SamplerDescriptor) (*Texture, error) {
	texture, err := r.device.CreateTexture(td)
	if err != nil {
		return nil, err
	}
	view, err := texture.CreateView(vd)
	if err != nil {
		texture.Release()
		return nil, err
	}
	sampler, err := r.device.CreateSampler(sd)
	if err != nil {
		gpu.Release(view, texture)
		return nil, err
	}
	return &Texture{texture: texture, view: view, sampler: sampler}, nil
}
