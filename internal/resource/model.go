package resource

// Model is exactly one Mesh drawn with exactly one Material.
type Model struct {
	label    string
	mesh     *Mesh
	material *Material
}

func (m *Model) Label() string       { return m.label }
func (m *Model) Mesh() *Mesh         { return m.mesh }
func (m *Model) Material() *Material { return m.material }
func (m *Model) MeshRef() MeshRef    { return MeshRef{Mesh: m.mesh, Material: m.material} }

func (m *Model) Release() {
	m.mesh.Release()
	m.material.Release()
}

// MeshRef is a borrowed draw reference handed to the renderer. It stays
// valid until the owning Model is released.
type MeshRef struct {
	Mesh     *Mesh
	Material *Material
}

// RealizeModel realizes the mesh, then the material. Either failing fails
// the model and nothing partial is returned.
func (r *Realizer) RealizeModel(desc ModelDescriptor) (*Model, error) {
	mesh, err := r.RealizeMesh(desc.Mesh)
	if err != nil {
		return nil, realizationError("model", desc.Label, err)
	}
	matDesc := desc.Material
	if matDesc.Label == "" {
		matDesc.Label = desc.Label
	}
	material, err := r.RealizeMaterial(matDesc)
	if err != nil {
		mesh.Release()
		return nil, realizationError("model", desc.Label, err)
	}
	return &Model{label: desc.Label, mesh: mesh, material: material}, nil
}
