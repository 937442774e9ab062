package model

import (
	"github.com/Faultbox/midgard-rig/pkg/formats"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

// BuildMeshData interleaves an imported mesh into T2F_V3F vertices.
// Returns nil for meshes without vertices or indices.
func BuildMeshData(src *formats.SceneMesh) *MeshData {
	if len(src.Positions) == 0 || len(src.Indices) == 0 {
		return nil
	}

	data := &MeshData{
		Vertices: make([]Vertex, len(src.Positions)),
		Indices:  append([]uint32(nil), src.Indices...),
		Bounds:   EmptyBounds(),
	}

	for i, pos := range src.Positions {
		v := Vertex{Position: pos}
		if i < len(src.TexCoords) {
			v.TexCoord = src.TexCoords[i]
		}
		data.Vertices[i] = v
		updateBounds(&data.Bounds, pos)
	}

	return data
}

// TransformBounds returns the box enclosing b after transforming it by m.
func TransformBounds(b Bounds, m math.Mat4) Bounds {
	out := EmptyBounds()
	if b.IsEmpty() {
		return out
	}
	for i := 0; i < 8; i++ {
		corner := [3]float32{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		updateBounds(&out, m.TransformPoint(corner))
	}
	return out
}

func mergeBounds(dst *Bounds, b Bounds) {
	if b.IsEmpty() {
		return
	}
	updateBounds(dst, b.Min)
	updateBounds(dst, b.Max)
}

func updateBounds(b *Bounds, p [3]float32) {
	if p[0] < b.Min[0] {
		b.Min[0] = p[0]
	}
	if p[1] < b.Min[1] {
		b.Min[1] = p[1]
	}
	if p[2] < b.Min[2] {
		b.Min[2] = p[2]
	}
	if p[0] > b.Max[0] {
		b.Max[0] = p[0]
	}
	if p[1] > b.Max[1] {
		b.Max[1] = p[1]
	}
	if p[2] > b.Max[2] {
		b.Max[2] = p[2]
	}
}
