// glTF 2.0 (.gltf / .glb) reader.
package formats

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

// GLTFTicksPerSecond is the tick rate recorded for glTF animations.
// glTF keyframe times are seconds and are kept as-is; with this rate the
// runtime conversion tick = seconds * (rate / 1000) is the identity.
const GLTFTicksPerSecond = 1000.0

// ParseGLTFFile reads a .gltf or .glb file from disk.
func ParseGLTFFile(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading glTF file: %w", err)
	}
	return ParseGLTF(doc)
}

// ParseFile reads a model file, picking the reader by extension.
func ParseFile(path string) (*Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return ParseGLTFFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseGLTF converts a decoded glTF document into a Scene.
// Buffers must already be loaded (gltf.Open does this).
func ParseGLTF(doc *gltf.Document) (*Scene, error) {
	p := &gltfParser{
		doc:       doc,
		scene:     &Scene{},
		meshPrims: make(map[uint32][]int),
		skinned:   make(map[int]bool),
	}

	if err := p.parseMaterials(); err != nil {
		return nil, err
	}
	if err := p.parseMeshes(); err != nil {
		return nil, err
	}
	if err := p.parseHierarchy(); err != nil {
		return nil, err
	}
	if err := p.parseAnimations(); err != nil {
		return nil, err
	}

	return p.scene, nil
}

// gltfParser carries the state of one document conversion.
type gltfParser struct {
	doc   *gltf.Document
	scene *Scene

	// meshPrims maps a glTF mesh to the scene meshes built from its primitives.
	meshPrims map[uint32][]int
	// skinned marks scene meshes whose bones were already filled.
	skinned map[int]bool
}

// nodeName returns the node's name, or a stable fallback for unnamed nodes.
func (p *gltfParser) nodeName(idx uint32) string {
	if name := p.doc.Nodes[idx].Name; name != "" {
		return name
	}
	return fmt.Sprintf("node_%d", idx)
}

func (p *gltfParser) parseMaterials() error {
	for i, m := range p.doc.Materials {
		mat := SceneMaterial{
			Name:     m.Name,
			Diffuse:  [3]float32{1, 1, 1},
			Emissive: m.EmissiveFactor,
		}

		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				c := *pbr.BaseColorFactor
				mat.Diffuse = [3]float32{c[0], c[1], c[2]}
			}
			roughness := float32(1)
			if pbr.RoughnessFactor != nil {
				roughness = *pbr.RoughnessFactor
			}
			mat.Shininess = (1 - roughness) * 128
			if pbr.BaseColorTexture != nil {
				path, err := p.texturePath(pbr.BaseColorTexture.Index)
				if err != nil {
					return fmt.Errorf("material %d: %w", i, err)
				}
				mat.DiffuseTexture = path
			}
		}

		p.scene.Materials = append(p.scene.Materials, mat)
	}
	return nil
}

// texturePath resolves a texture index to the URI of its image.
// Embedded images (buffer views, data URIs) have no path and yield "".
func (p *gltfParser) texturePath(texIdx uint32) (string, error) {
	if int(texIdx) >= len(p.doc.Textures) {
		return "", fmt.Errorf("texture index %d out of range", texIdx)
	}
	tex := p.doc.Textures[texIdx]
	if tex.Source == nil || int(*tex.Source) >= len(p.doc.Images) {
		return "", nil
	}
	img := p.doc.Images[*tex.Source]
	if img.URI == "" || img.IsEmbeddedResource() {
		return "", nil
	}
	// URIs are percent-encoded ("my%20skin.png")
	if uri, err := url.PathUnescape(img.URI); err == nil {
		return uri, nil
	}
	return img.URI, nil
}

func (p *gltfParser) parseMeshes() error {
	for mi, m := range p.doc.Meshes {
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			mesh, err := p.parsePrimitive(prim)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			mesh.Name = m.Name
			p.meshPrims[uint32(mi)] = append(p.meshPrims[uint32(mi)], len(p.scene.Meshes))
			p.scene.Meshes = append(p.scene.Meshes, *mesh)
		}
	}
	return nil
}

func (p *gltfParser) parsePrimitive(prim *gltf.Primitive) (*SceneMesh, error) {
	mesh := &SceneMesh{}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return mesh, nil
	}
	positions, err := modeler.ReadPosition(p.doc, p.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	mesh.Positions = positions

	// Missing UVs are filled with zeros
	mesh.TexCoords = make([][2]float32, len(positions))
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(p.doc, p.doc.Accessors[uvIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading texture coordinates: %w", err)
		}
		copy(mesh.TexCoords, uvs)
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(p.doc, p.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
		mesh.Indices = indices
	} else {
		mesh.Indices = make([]uint32, len(positions))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}

	if prim.Material != nil {
		mesh.MaterialIndex = int(*prim.Material)
	}

	return mesh, nil
}

func (p *gltfParser) parseHierarchy() error {
	roots, err := p.rootNodes()
	if err != nil {
		return err
	}

	visited := make(map[uint32]bool)
	var children []*SceneNode
	for _, idx := range roots {
		n, err := p.parseNode(idx, visited)
		if err != nil {
			return err
		}
		children = append(children, n)
	}

	if len(children) == 1 {
		p.scene.Root = children[0]
	} else {
		p.scene.Root = &SceneNode{
			Name:      "RootNode",
			Transform: math.Identity(),
			Children:  children,
		}
	}
	return nil
}

// rootNodes returns the top-level nodes of the default scene, or every
// parentless node when the document declares no scene.
func (p *gltfParser) rootNodes() ([]uint32, error) {
	if len(p.doc.Scenes) > 0 {
		sceneIdx := uint32(0)
		if p.doc.Scene != nil {
			sceneIdx = *p.doc.Scene
		}
		if int(sceneIdx) >= len(p.doc.Scenes) {
			return nil, fmt.Errorf("%w: scene %d", ErrNoScene, sceneIdx)
		}
		return p.doc.Scenes[sceneIdx].Nodes, nil
	}

	if len(p.doc.Nodes) == 0 {
		return nil, ErrNoScene
	}
	hasParent := make([]bool, len(p.doc.Nodes))
	for _, n := range p.doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []uint32
	for i, parented := range hasParent {
		if !parented {
			roots = append(roots, uint32(i))
		}
	}
	return roots, nil
}

func (p *gltfParser) parseNode(idx uint32, visited map[uint32]bool) (*SceneNode, error) {
	if int(idx) >= len(p.doc.Nodes) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNodeIndex, idx)
	}
	if visited[idx] {
		return nil, fmt.Errorf("%w: node %d", ErrNodeCycle, idx)
	}
	visited[idx] = true

	src := p.doc.Nodes[idx]
	node := &SceneNode{
		Name:      p.nodeName(idx),
		Transform: gltfLocalTransform(src),
	}

	if src.Mesh != nil {
		prims, ok := p.meshPrims[*src.Mesh]
		if !ok && int(*src.Mesh) >= len(p.doc.Meshes) {
			return nil, fmt.Errorf("%w: node %d references mesh %d", ErrInvalidMeshIndex, idx, *src.Mesh)
		}
		node.Meshes = append(node.Meshes, prims...)
		if src.Skin != nil {
			if err := p.attachBones(*src.Mesh, *src.Skin); err != nil {
				return nil, fmt.Errorf("node %d: %w", idx, err)
			}
		}
	}

	for _, c := range src.Children {
		child, err := p.parseNode(c, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

// gltfLocalTransform returns the node's local matrix, from either the matrix
// or the TRS properties. Zero values stand for the glTF defaults.
func gltfLocalTransform(n *gltf.Node) math.Mat4 {
	if n.Matrix != [16]float32{} && n.Matrix != [16]float32(math.Identity()) {
		return math.Mat4(n.Matrix)
	}

	return math.LocalTRS(math.Vec3FromArray(n.Translation), gltfRotation(n.Rotation), gltfScale(n.Scale))
}

// gltfRotation converts an (x, y, z, w) quaternion; the zero value is the
// identity.
func gltfRotation(v [4]float32) math.Quat {
	if v == [4]float32{} {
		return math.QuatIdentity()
	}
	return math.Quat{W: v[3], X: v[0], Y: v[1], Z: v[2]}
}

// gltfScale returns the node scale; the zero value is the unit scale.
func gltfScale(v [3]float32) math.Vec3 {
	if v == [3]float32{} {
		return math.Vec3One
	}
	return math.Vec3FromArray(v)
}

// attachBones fills the bones of every scene mesh built from gltfMesh using
// the joints of skin. A mesh shared by several skinned nodes keeps the first
// skin it was seen with.
func (p *gltfParser) attachBones(gltfMesh, skinIdx uint32) error {
	if int(skinIdx) >= len(p.doc.Skins) {
		return fmt.Errorf("skin index %d out of range", skinIdx)
	}
	skin := p.doc.Skins[skinIdx]

	offsets := make([]math.Mat4, len(skin.Joints))
	for i := range offsets {
		offsets[i] = math.Identity()
	}
	if skin.InverseBindMatrices != nil {
		raw, err := modeler.ReadAccessor(p.doc, p.doc.Accessors[*skin.InverseBindMatrices], nil)
		if err != nil {
			return fmt.Errorf("reading inverse bind matrices: %w", err)
		}
		mats, ok := raw.([][4][4]float32)
		if !ok {
			return fmt.Errorf("inverse bind matrices: unexpected type %T", raw)
		}
		for i := 0; i < len(mats) && i < len(offsets); i++ {
			for col := 0; col < 4; col++ {
				for row := 0; row < 4; row++ {
					offsets[i][col*4+row] = mats[i][col][row]
				}
			}
		}
	}

	gm := p.doc.Meshes[gltfMesh]
	sceneMeshes := p.meshPrims[gltfMesh]
	primIdx := 0
	for _, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		meshIdx := sceneMeshes[primIdx]
		primIdx++
		if p.skinned[meshIdx] {
			continue
		}
		p.skinned[meshIdx] = true

		jIdx, hasJoints := prim.Attributes[gltf.JOINTS_0]
		wIdx, hasWeights := prim.Attributes[gltf.WEIGHTS_0]
		if !hasJoints || !hasWeights {
			continue
		}
		joints, err := modeler.ReadJoints(p.doc, p.doc.Accessors[jIdx], nil)
		if err != nil {
			return fmt.Errorf("reading joints: %w", err)
		}
		weights, err := modeler.ReadWeights(p.doc, p.doc.Accessors[wIdx], nil)
		if err != nil {
			return fmt.Errorf("reading weights: %w", err)
		}

		perJoint := make([][]VertexWeight, len(skin.Joints))
		for v := 0; v < len(joints) && v < len(weights); v++ {
			for k := 0; k < 4; k++ {
				w := weights[v][k]
				j := int(joints[v][k])
				if w == 0 || j >= len(perJoint) {
					continue
				}
				perJoint[j] = append(perJoint[j], VertexWeight{Vertex: uint32(v), Weight: w})
			}
		}

		mesh := &p.scene.Meshes[meshIdx]
		for j, vw := range perJoint {
			if len(vw) == 0 {
				continue
			}
			mesh.Bones = append(mesh.Bones, Bone{
				NodeName: p.nodeName(skin.Joints[j]),
				Offset:   offsets[j],
				Weights:  vw,
			})
		}
	}
	return nil
}

func (p *gltfParser) parseAnimations() error {
	for ai, a := range p.doc.Animations {
		anim := SceneAnimation{
			Name:           a.Name,
			TicksPerSecond: GLTFTicksPerSecond,
		}
		if anim.Name == "" {
			anim.Name = fmt.Sprintf("animation_%d", ai)
		}

		// Channels for the same node merge into one NodeAnimation,
		// ordered by first appearance.
		byNode := make(map[uint32]int)
		for ci, ch := range a.Channels {
			if ch.Target.Node == nil || ch.Sampler == nil {
				continue
			}
			if int(*ch.Sampler) >= len(a.Samplers) {
				return fmt.Errorf("animation %q channel %d: invalid sampler %d", anim.Name, ci, *ch.Sampler)
			}
			nodeIdx := *ch.Target.Node
			if int(nodeIdx) >= len(p.doc.Nodes) {
				return fmt.Errorf("animation %q channel %d: %w: %d", anim.Name, ci, ErrInvalidNodeIndex, nodeIdx)
			}

			slot, ok := byNode[nodeIdx]
			if !ok {
				slot = len(anim.Channels)
				byNode[nodeIdx] = slot
				anim.Channels = append(anim.Channels, NodeAnimation{NodeName: p.nodeName(nodeIdx)})
			}
			if err := p.readChannel(&anim.Channels[slot], ch.Target.Path, a.Samplers[*ch.Sampler]); err != nil {
				return fmt.Errorf("animation %q channel %d: %w", anim.Name, ci, err)
			}
		}

		for nodeIdx, slot := range byNode {
			holdRestPose(&anim.Channels[slot], p.doc.Nodes[nodeIdx])
		}

		p.scene.Animations = append(p.scene.Animations, anim)
	}
	return nil
}

func (p *gltfParser) readChannel(dst *NodeAnimation, path gltf.TRSProperty, s *gltf.AnimationSampler) error {
	if path == gltf.TRSWeights {
		return nil
	}
	if s.Input == nil || s.Output == nil {
		return fmt.Errorf("sampler without input or output")
	}

	rawTimes, err := modeler.ReadAccessor(p.doc, p.doc.Accessors[*s.Input], nil)
	if err != nil {
		return fmt.Errorf("reading key times: %w", err)
	}
	times, ok := rawTimes.([]float32)
	if !ok {
		return fmt.Errorf("key times: unexpected type %T", rawTimes)
	}

	rawValues, err := modeler.ReadAccessor(p.doc, p.doc.Accessors[*s.Output], nil)
	if err != nil {
		return fmt.Errorf("reading key values: %w", err)
	}

	// Cubic spline samplers store (in-tangent, value, out-tangent) per key
	stride, offset := 1, 0
	if s.Interpolation == gltf.InterpolationCubicSpline {
		stride, offset = 3, 1
	}

	switch path {
	case gltf.TRSTranslation, gltf.TRSScale:
		values, ok := rawValues.([][3]float32)
		if !ok {
			return fmt.Errorf("vector keys: unexpected type %T", rawValues)
		}
		keys := make([]VectorKey, 0, len(times))
		for i, t := range times {
			vi := i*stride + offset
			if vi >= len(values) {
				break
			}
			keys = append(keys, VectorKey{Time: float64(t), Value: math.Vec3FromArray(values[vi])})
		}
		if path == gltf.TRSTranslation {
			dst.PositionKeys = keys
		} else {
			dst.ScaleKeys = keys
		}

	case gltf.TRSRotation:
		values, err := rotationValues(rawValues)
		if err != nil {
			return err
		}
		keys := make([]QuatKey, 0, len(times))
		for i, t := range times {
			vi := i*stride + offset
			if vi >= len(values) {
				break
			}
			// Rotation keys are stored conjugated; playback conjugates
			// them back
			keys = append(keys, QuatKey{
				Time:  float64(t),
				Value: gltfRotation(values[vi]).Conjugate(),
			})
		}
		dst.RotationKeys = keys
	}
	return nil
}

// rotationValues returns rotation outputs as floats. Quantized outputs are
// normalized integers and are mapped back to [-1, 1].
func rotationValues(raw any) ([][4]float32, error) {
	switch v := raw.(type) {
	case [][4]float32:
		return v, nil
	case [][4]int8:
		return denormalize(v, func(c int8) float32 { return max(float32(c)/127, -1) }), nil
	case [][4]uint8:
		return denormalize(v, func(c uint8) float32 { return float32(c) / 255 }), nil
	case [][4]int16:
		return denormalize(v, func(c int16) float32 { return max(float32(c)/32767, -1) }), nil
	case [][4]uint16:
		return denormalize(v, func(c uint16) float32 { return float32(c) / 65535 }), nil
	}
	return nil, fmt.Errorf("rotation keys: unexpected type %T", raw)
}

func denormalize[T int8 | uint8 | int16 | uint16](in [][4]T, conv func(T) float32) [][4]float32 {
	out := make([][4]float32, len(in))
	for i, q := range in {
		for j, c := range q {
			out[i][j] = conv(c)
		}
	}
	return out
}

// holdRestPose gives every track an animation leaves empty the node's rest
// value, so a bone animated on one property keeps the others. Scale gets a
// second key since a lone scale key is not played.
func holdRestPose(dst *NodeAnimation, n *gltf.Node) {
	end := dst.lastKeyTime()

	if len(dst.PositionKeys) == 0 {
		dst.PositionKeys = []VectorKey{{Time: 0, Value: math.Vec3FromArray(n.Translation)}}
	}
	if len(dst.RotationKeys) == 0 {
		dst.RotationKeys = []QuatKey{{Time: 0, Value: gltfRotation(n.Rotation).Conjugate()}}
	}
	switch len(dst.ScaleKeys) {
	case 0:
		scale := gltfScale(n.Scale)
		dst.ScaleKeys = []VectorKey{{Time: 0, Value: scale}, {Time: end, Value: scale}}
	case 1:
		held := dst.ScaleKeys[0]
		held.Time = max(held.Time, end)
		dst.ScaleKeys = append(dst.ScaleKeys, held)
	}
}
