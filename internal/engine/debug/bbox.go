// Package debug provides debug visualization utilities.
package debug

import "github.com/Faultbox/midgard-rig/internal/engine/model"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// GenerateBBoxWireframeVertices creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func GenerateBBoxWireframeVertices(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return []float32{
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// BoundsWireframe returns the wireframe of b grown by padding on every side,
// or nil for empty bounds.
func BoundsWireframe(b model.Bounds, padding float32) []float32 {
	if b.IsEmpty() {
		return nil
	}
	return GenerateBBoxWireframeVertices(
		b.Min[0]-padding, b.Min[1]-padding, b.Min[2]-padding,
		b.Max[0]+padding, b.Max[1]+padding, b.Max[2]+padding,
	)
}

// SkeletonLines returns one segment per parent/child pair of nodes, joining
// their world-space origins. Mesh leaves are skipped.
func SkeletonLines(root *model.Node) []float32 {
	var out []float32
	var walk func(n *model.Node)
	walk = func(n *model.Node) {
		from := n.World().Translation()
		for _, c := range n.Children() {
			if c.Name() == "" {
				continue
			}
			to := c.World().Translation()
			out = append(out, from.X, from.Y, from.Z, to.X, to.Y, to.Z)
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
