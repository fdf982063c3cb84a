package wgpudevice

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/orbitalgo/orbital/internal/gpu"
)

func textureFormat(f gpu.TextureFormat) (wgpu.TextureFormat, error) {
	switch f {
	case gpu.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case gpu.TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb, nil
	case gpu.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm, nil
	case gpu.TextureFormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb, nil
	case gpu.TextureFormatDepth32Float:
		return wgpu.TextureFormatDepth32Float, nil
	}
	return wgpu.TextureFormatUndefined, fmt.Errorf("texture format %v not supported", f)
}

func textureUsage(u gpu.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gpu.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&gpu.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&gpu.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&gpu.TextureUsageStorageBinding != 0 {
		out |= wgpu.TextureUsageStorageBinding
	}
	if u&gpu.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func bufferUsage(u gpu.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&gpu.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&gpu.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&gpu.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&gpu.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&gpu.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	return out
}

func addressMode(m gpu.AddressMode) wgpu.AddressMode {
	switch m {
	case gpu.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case gpu.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	}
	return wgpu.AddressModeClampToEdge
}

func filterMode(m gpu.FilterMode) wgpu.FilterMode {
	if m == gpu.FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func mipmapFilterMode(m gpu.FilterMode) wgpu.MipmapFilterMode {
	if m == gpu.FilterModeLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func vertexFormat(f gpu.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gpu.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case gpu.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	}
	return wgpu.VertexFormatFloat32x3
}

func extent(e gpu.Extent3D) wgpu.Extent3D {
	layers := e.DepthOrArrayLayers
	if layers == 0 {
		layers = 1
	}
	return wgpu.Extent3D{Width: e.Width, Height: e.Height, DepthOrArrayLayers: layers}
}

func bindGroupLayoutEntry(e gpu.BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	out := wgpu.BindGroupLayoutEntry{Binding: e.Binding}
	switch e.Type {
	case gpu.BindingTypeTexture:
		out.Visibility = wgpu.ShaderStageFragment
		out.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	case gpu.BindingTypeSampler:
		out.Visibility = wgpu.ShaderStageFragment
		out.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
	case gpu.BindingTypeUniformBuffer:
		out.Visibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
		out.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}
	}
	return out
}
