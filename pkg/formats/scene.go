// Package formats provides readers for 3D model files.
// Every reader produces a Scene, the format-neutral description consumed by
// the importer.
package formats

import (
	"errors"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

// Scene format errors.
var (
	ErrNoScene           = errors.New("model has no scene")
	ErrInvalidNodeIndex  = errors.New("invalid node index")
	ErrInvalidMeshIndex  = errors.New("invalid mesh index")
	ErrNodeCycle         = errors.New("node hierarchy contains a cycle")
	ErrUnsupportedFormat = errors.New("unsupported model format")
)

// SceneNode is one node of the imported hierarchy.
type SceneNode struct {
	Name      string
	Transform math.Mat4 // Local transform relative to the parent
	Meshes    []int     // Indices into Scene.Meshes
	Children  []*SceneNode
}

// VertexWeight binds one vertex to a bone.
type VertexWeight struct {
	Vertex uint32
	Weight float32
}

// Bone references the node driving a set of vertices.
type Bone struct {
	NodeName string
	Offset   math.Mat4 // Mesh space to bone space
	Weights  []VertexWeight
}

// SceneMesh holds the geometry of one drawable primitive.
type SceneMesh struct {
	Name          string
	Positions     [][3]float32
	TexCoords     [][2]float32 // Same length as Positions
	Indices       []uint32     // Triangle list
	Bones         []Bone
	MaterialIndex int
}

// FaceCount returns the number of triangles.
func (m *SceneMesh) FaceCount() int {
	return len(m.Indices) / 3
}

// SceneMaterial holds fixed-function material properties.
type SceneMaterial struct {
	Name           string
	Diffuse        [3]float32
	Emissive       [3]float32
	Ambient        [3]float32
	Specular       [3]float32
	Shininess      float32
	DiffuseTexture string // Empty when untextured
}

// VectorKey is a position or scale keyframe.
type VectorKey struct {
	Time  float64 // Ticks
	Value math.Vec3
}

// QuatKey is a rotation keyframe.
type QuatKey struct {
	Time  float64 // Ticks
	Value math.Quat
}

// NodeAnimation holds the keyframes driving one node.
type NodeAnimation struct {
	NodeName     string
	PositionKeys []VectorKey
	RotationKeys []QuatKey
	ScaleKeys    []VectorKey
}

// lastKeyTime returns the latest last key time over the three tracks.
func (a *NodeAnimation) lastKeyTime() float64 {
	var end float64
	if n := len(a.PositionKeys); n > 0 {
		end = max(end, a.PositionKeys[n-1].Time)
	}
	if n := len(a.RotationKeys); n > 0 {
		end = max(end, a.RotationKeys[n-1].Time)
	}
	if n := len(a.ScaleKeys); n > 0 {
		end = max(end, a.ScaleKeys[n-1].Time)
	}
	return end
}

// SceneAnimation is a named clip.
type SceneAnimation struct {
	Name           string
	TicksPerSecond float64
	Channels       []NodeAnimation
}

// Scene is the format-neutral result of reading a model file.
type Scene struct {
	Root       *SceneNode
	Meshes     []SceneMesh
	Materials  []SceneMaterial
	Animations []SceneAnimation
}

// NodeCount returns the number of nodes in the hierarchy.
func (s *Scene) NodeCount() int {
	count := 0
	var walk func(n *SceneNode)
	walk = func(n *SceneNode) {
		if n == nil {
			return
		}
		count++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return count
}
