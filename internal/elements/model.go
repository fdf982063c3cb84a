// Package elements holds the built-in entities: a static model, a free-fly
// debug camera, a clear color cycler and a messenger.
package elements

import (
	"github.com/orbitalgo/orbital/internal/entity"
	"github.com/orbitalgo/orbital/internal/resource"
)

// ModelElement renders one model and never updates.
type ModelElement struct {
	entity.Base
	tag   string
	desc  resource.ModelDescriptor
	model *resource.Model
}

func NewModel(tag string, desc resource.ModelDescriptor) *ModelElement {
	if desc.Label == "" {
		desc.Label = tag
	}
	return &ModelElement{tag: tag, desc: desc}
}

func (m *ModelElement) Configuration() entity.Configuration {
	return entity.Configuration{Tag: m.tag, UpdateFrequency: entity.None, DoesRender: true}
}

func (m *ModelElement) Descriptor() resource.ModelDescriptor { return m.desc }

// PrepareRender realizes the model, replacing a previous realization.
func (m *ModelElement) PrepareRender(r *resource.Realizer) error {
	model, err := r.RealizeModel(m.desc)
	if err != nil {
		return err
	}
	m.Release()
	m.model = model
	return nil
}

func (m *ModelElement) Meshes() []resource.MeshRef {
	if m.model == nil {
		return nil
	}
	return []resource.MeshRef{m.model.MeshRef()}
}

func (m *ModelElement) Release() {
	if m.model != nil {
		m.model.Release()
		m.model = nil
	}
}
