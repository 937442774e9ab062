// Package model provides the animated scene graph: nodes, their renderable
// payloads and the animation player driving them.
package model

import (
	"github.com/Faultbox/midgard-rig/pkg/formats"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

// Vertex is one interleaved T2F_V3F vertex: texture coordinate, then position.
type Vertex struct {
	TexCoord [2]float32
	Position [3]float32
}

// VertexSize is the byte stride of Vertex.
const VertexSize = 20

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns an inverted box that any point extends.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

// IsEmpty reports whether no point was added.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0]
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return math.Vec3{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
}

// Radius returns half the box diagonal.
func (b Bounds) Radius() float32 {
	return math.Vec3FromArray(b.Max).Distance(math.Vec3FromArray(b.Min)) / 2
}

// MeshData holds CPU-side geometry ready for upload.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Resource is a GPU object owned by exactly one payload.
type Resource interface {
	Release()
}

// Uploader creates GPU resources.
type Uploader interface {
	UploadMesh(data *MeshData) (Resource, error)
	// UploadTexture takes tightly packed RGBA rows, bottom row first.
	UploadTexture(pixels []byte, width, height int) (Resource, error)
}

// RenderContext receives draw requests while the tree is rendered.
type RenderContext interface {
	BindMaterial(mat *Material)
	DrawMesh(mesh *Mesh, world math.Mat4)
}

// Mesh is uploaded geometry plus the bones that reference it.
type Mesh struct {
	Name       string
	Buffer     Resource
	IndexCount int
	Bounds     Bounds         // Local space
	Bones      []formats.Bone // Kept as data; vertices are not skinned
}

// Material holds fixed-function material state.
type Material struct {
	Name      string
	Diffuse   [4]float32
	Emissive  [4]float32
	Ambient   [4]float32
	Specular  [4]float32
	Shininess float32
	Texture   Resource // nil when untextured
}

// Payload is the renderable content of a node.
type Payload struct {
	Mesh     *Mesh
	Material *Material
}

// release frees the GPU resources of the payload. Safe to call twice.
func (p *Payload) release() {
	if p.Mesh != nil && p.Mesh.Buffer != nil {
		p.Mesh.Buffer.Release()
		p.Mesh.Buffer = nil
	}
	if p.Material != nil && p.Material.Texture != nil {
		p.Material.Texture.Release()
		p.Material.Texture = nil
	}
}
