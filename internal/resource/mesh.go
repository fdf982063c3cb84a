package resource

import (
	"fmt"

	"github.com/orbitalgo/orbital/internal/gpu"
)

type Mesh struct {
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	indexCount   uint32
}

func (m *Mesh) VertexBuffer() gpu.Buffer { return m.vertexBuffer }
func (m *Mesh) IndexBuffer() gpu.Buffer  { return m.indexBuffer }
func (m *Mesh) IndexCount() uint32       { return m.indexCount }

func (m *Mesh) Release() {
	gpu.Release(m.indexBuffer, m.vertexBuffer)
}

// RealizeMesh uploads vertices and indices verbatim. Winding and index
// bounds are the caller's business.
func (r *Realizer) RealizeMesh(desc MeshDescriptor) (*Mesh, error) {
	m, err := r.realizeMesh(desc)
	if err != nil {
		return nil, realizationError("mesh", "", err)
	}
	return m, nil
}

func (r *Realizer) realizeMesh(desc MeshDescriptor) (*Mesh, error) {
	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return nil, fmt.Errorf("empty mesh: %d vertices, %d indices", len(desc.Vertices), len(desc.Indices))
	}
	vertexData := PackVertices(desc.Vertices)
	indexData := PackIndices(desc.Indices)

	vb, err := r.createBuffer("Mesh Vertex Buffer", gpu.BufferUsageVertex|gpu.BufferUsageCopyDst, vertexData)
	if err != nil {
		return nil, err
	}
	ib, err := r.createBuffer("Mesh Index Buffer", gpu.BufferUsageIndex|gpu.BufferUsageCopyDst, indexData)
	if err != nil {
		vb.Release()
		return nil, err
	}
	return &Mesh{vertexBuffer: vb, indexBuffer: ib, indexCount: uint32(len(desc.Indices))}, nil
}

func (r *Realizer) createBuffer(label string, usage gpu.BufferUsage, data []byte) (gpu.Buffer, error) {
	buf, err := r.device.CreateBuffer(&gpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	if err := r.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}
