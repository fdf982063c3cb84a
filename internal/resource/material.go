package resource

import (
	"github.com/orbitalgo/orbital/internal/gpu"
)

// Material owns its albedo texture and the pipeline state built around it.
// Textures are never shared between materials.
type Material struct {
	label        string
	albedo       *Texture
	shader       gpu.ShaderModule
	layout       gpu.BindGroupLayout
	cameraLayout gpu.BindGroupLayout
	bindGroup    gpu.BindGroup
	pipeline     gpu.RenderPipeline
}

func (m *Material) Label() string                        { return m.label }
func (m *Material) Albedo() *Texture                     { return m.albedo }
func (m *Material) BindGroup() gpu.BindGroup             { return m.bindGroup }
func (m *Material) BindGroupLayout() gpu.BindGroupLayout { return m.layout }
func (m *Material) Pipeline() gpu.RenderPipeline         { return m.pipeline }

func (m *Material) Release() {
	gpu.Release(m.pipeline, m.bindGroup, m.cameraLayout, m.layout, m.shader)
	if m.albedo != nil {
		m.albedo.Release()
	}
}

// Bind groups of every material pipeline.
const (
	MaterialGroup = 0 // albedo texture and sampler
	CameraGroup   = 1 // view-projection uniform
)

var materialLayout = gpu.BindGroupLayoutDescriptor{
	Label: "Material Bind Group Layout",
	Entries: []gpu.BindGroupLayoutEntry{
		{Binding: 0, Type: gpu.BindingTypeTexture},
		{Binding: 1, Type: gpu.BindingTypeSampler},
	},
}

// CameraLayout describes bind group 1 of every material pipeline. The
// renderer binds a group of this shape holding the camera's 4x4
// view-projection matrix.
func CameraLayout() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "Camera Bind Group Layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeUniformBuffer},
		},
	}
}

// RealizeMaterial builds the texture, shader module, bind group and render
// pipeline. On failure everything built so far is released.
func (r *Realizer) RealizeMaterial(desc MaterialDescriptor) (*Material, error) {
	m, err := r.realizeMaterial(desc)
	if err != nil {
		return nil, realizationError("material", desc.Label, err)
	}
	return m, nil
}

func (r *Realizer) realizeMaterial(desc MaterialDescriptor) (m *Material, err error) {
	m = &Material{label: desc.Label}
	defer func() {
		if err != nil {
			m.Release()
			m = nil
		}
	}()

	albedo := desc.Albedo
	if albedo == nil {
		albedo = EmptyTexture
	}
	if m.albedo, err = r.RealizeTexture(albedo); err != nil {
		return m, err
	}

	source := desc.Shader
	if source == "" {
		source = UnlitShader
	}
	if m.shader, err = r.device.CreateShaderModule(&gpu.ShaderModuleDescriptor{
		Label:  desc.Label + " Shader",
		Source: source,
	}); err != nil {
		return m, err
	}

	if m.layout, err = r.device.CreateBindGroupLayout(&materialLayout); err != nil {
		return m, err
	}

	cameraLayout := CameraLayout()
	if m.cameraLayout, err = r.device.CreateBindGroupLayout(&cameraLayout); err != nil {
		return m, err
	}

	if m.bindGroup, err = r.device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  desc.Label + " Bind Group",
		Layout: m.layout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, TextureView: m.albedo.View()},
			{Binding: 1, Sampler: m.albedo.Sampler()},
		},
	}); err != nil {
		return m, err
	}

	m.pipeline, err = r.device.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:            desc.Label + " Render Pipeline",
		BindGroupLayouts: []gpu.BindGroupLayout{m.layout, m.cameraLayout},
		Module:           m.shader,
		VertexEntryPoint: VertexEntryPoint,
		FragmentEntry:    FragmentEntryPoint,
		VertexBuffers:    []gpu.VertexBufferLayout{VertexLayout},
		TargetFormat:     r.surfaceFormat,
	})
	return m, err
}
