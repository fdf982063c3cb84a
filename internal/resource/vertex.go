package resource

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/orbitalgo/orbital/internal/gpu"
)

type Vertex struct {
	Position  mgl32.Vec3
	TexCoords mgl32.Vec2
}

// VertexStride is the byte size of one packed Vertex.
const VertexStride = 5 * 4

// VertexLayout matches the packing produced by PackVertices.
var VertexLayout = gpu.VertexBufferLayout{
	ArrayStride: VertexStride,
	Attributes: []gpu.VertexAttribute{
		{Format: gpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: gpu.VertexFormatFloat32x2, Offset: 3 * 4, ShaderLocation: 1},
	},
}

// PackVertices encodes vertices as little-endian float32 tuples.
func PackVertices(vs []Vertex) []byte {
	out := make([]byte, 0, len(vs)*VertexStride)
	for _, v := range vs {
		for _, f := range [5]float32{v.Position[0], v.Position[1], v.Position[2], v.TexCoords[0], v.TexCoords[1]} {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

// PackIndices encodes indices as little-endian uint32.
func PackIndices(is []uint32) []byte {
	out := make([]byte, 0, len(is)*4)
	for _, i := range is {
		out = binary.LittleEndian.AppendUint32(out, i)
	}
	return out
}

// Triangle is a screen-filling-ish test triangle.
func Triangle() MeshDescriptor {
	return MeshDescriptor{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-1, -1, 0}, TexCoords: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{1, -1, 0}, TexCoords: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{0, 1, 0}, TexCoords: mgl32.Vec2{0.5, 0}},
		},
		Indices: []uint32{0, 1, 2},
	}
}

// Quad is a unit square centred on the origin, facing +Z.
func Quad() MeshDescriptor {
	return MeshDescriptor{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-0.5, -0.5, 0}, TexCoords: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{0.5, -0.5, 0}, TexCoords: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{0.5, 0.5, 0}, TexCoords: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec3{-0.5, 0.5, 0}, TexCoords: mgl32.Vec2{1, 0}},
		},
		Indices: []uint32{0, 1, 3, 1, 2, 3},
	}
}
