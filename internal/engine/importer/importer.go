// Package importer turns a parsed scene description into an animated model.
package importer

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/engine/animation"
	"github.com/Faultbox/midgard-rig/internal/engine/model"
	"github.com/Faultbox/midgard-rig/internal/engine/texture"
	"github.com/Faultbox/midgard-rig/internal/logger"
	"github.com/Faultbox/midgard-rig/pkg/formats"
)

// Options configures Load.
type Options struct {
	// BaseDir resolves relative texture paths, usually the model's directory.
	BaseDir string
	// KeySearch is the key lookup applied to every animation.
	KeySearch animation.KeySearch
}

// loadStats summarizes what Load built.
type loadStats struct {
	Nodes         int
	Meshes        int
	SkippedMeshes int
	Textures      int
	Animations    int
}

// Load builds a model from scene. Geometry and textures are uploaded
// through up; textures are read with textures, which may be nil to skip
// them. A texture that fails to load is logged and left out. On error
// every resource uploaded so far is released.
func Load(scene *formats.Scene, up model.Uploader, textures texture.Loader, opts Options) (*model.Model, error) {
	if scene == nil || scene.Root == nil {
		return nil, formats.ErrNoScene
	}

	b := &builder{
		scene:    scene,
		up:       up,
		textures: textures,
		opts:     opts,
		images:   make(map[string]*texture.Image),
	}

	root, err := b.buildNode(scene.Root)
	if err != nil {
		b.releaseAll()
		return nil, err
	}

	sets := make([]*animation.Set, 0, len(scene.Animations))
	for _, a := range scene.Animations {
		sets = append(sets, animation.NewSet(a))
	}
	b.stats.Animations = len(sets)

	m := model.New(root, sets)
	m.SetKeySearch(opts.KeySearch)

	b.stats.Nodes = root.Count()
	logger.Info("model loaded",
		zap.Int("nodes", b.stats.Nodes),
		zap.Int("meshes", b.stats.Meshes),
		zap.Int("skipped_meshes", b.stats.SkippedMeshes),
		zap.Int("textures", b.stats.Textures),
		zap.Int("animations", b.stats.Animations))

	return m, nil
}

// builder holds the state of one Load call.
type builder struct {
	scene    *formats.Scene
	up       model.Uploader
	textures texture.Loader
	opts     Options

	// images caches decoded textures by resolved path; nil marks a failure.
	images   map[string]*texture.Image
	uploaded []model.Resource
	stats    loadStats
}

// buildNode converts src and its subtree: children first, then one leaf
// per mesh, then the node itself.
func (b *builder) buildNode(src *formats.SceneNode) (*model.Node, error) {
	nb := model.NewNodeBuilder(src.Name)

	for _, c := range src.Children {
		child, err := b.buildNode(c)
		if err != nil {
			return nil, err
		}
		nb.Child(child)
	}

	for _, idx := range src.Meshes {
		if idx < 0 || idx >= len(b.scene.Meshes) {
			return nil, fmt.Errorf("node %q: %w: %d", src.Name, formats.ErrInvalidMeshIndex, idx)
		}
		payload, err := b.buildPayload(&b.scene.Meshes[idx])
		if err != nil {
			return nil, fmt.Errorf("node %q mesh %d: %w", src.Name, idx, err)
		}
		if payload == nil {
			continue
		}
		nb.Child(model.NewNodeBuilder("").Payload(payload).Build())
	}

	return nb.Transform(src.Transform).Build(), nil
}

// buildPayload uploads a mesh and its material. Returns nil for meshes
// without geometry.
func (b *builder) buildPayload(src *formats.SceneMesh) (*model.Payload, error) {
	data := model.BuildMeshData(src)
	if data == nil {
		b.stats.SkippedMeshes++
		logger.Debug("skipping empty mesh", zap.String("mesh", src.Name))
		return nil, nil
	}

	buf, err := b.up.UploadMesh(data)
	if err != nil {
		return nil, fmt.Errorf("uploading mesh: %w", err)
	}
	b.uploaded = append(b.uploaded, buf)
	b.stats.Meshes++

	return &model.Payload{
		Mesh: &model.Mesh{
			Name:       src.Name,
			Buffer:     buf,
			IndexCount: len(data.Indices),
			Bounds:     data.Bounds,
			Bones:      src.Bones,
		},
		Material: b.buildMaterial(src.MaterialIndex),
	}, nil
}

// buildMaterial creates the material of one payload. An out-of-range index
// yields a plain white material.
func (b *builder) buildMaterial(idx int) *model.Material {
	if idx < 0 || idx >= len(b.scene.Materials) {
		return &model.Material{Diffuse: [4]float32{1, 1, 1, 1}}
	}
	src := &b.scene.Materials[idx]

	mat := &model.Material{
		Name:      src.Name,
		Diffuse:   withAlpha(src.Diffuse),
		Emissive:  withAlpha(src.Emissive),
		Ambient:   withAlpha(src.Ambient),
		Specular:  withAlpha(src.Specular),
		Shininess: src.Shininess,
	}
	if src.DiffuseTexture != "" {
		mat.Texture = b.loadTexture(src.DiffuseTexture)
	}
	return mat
}

// loadTexture reads, flips and uploads a texture. Failures are logged and
// return nil.
func (b *builder) loadTexture(path string) model.Resource {
	if b.textures == nil {
		return nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.opts.BaseDir, path)
	}

	img, seen := b.images[path]
	if !seen {
		loaded, err := b.textures.Load(path)
		if err != nil {
			logger.Warn("failed to load texture", zap.String("path", path), zap.Error(err))
		} else {
			texture.FlipVertical(loaded)
			img = loaded
		}
		b.images[path] = img
	}
	if img == nil {
		return nil
	}

	tex, err := b.up.UploadTexture(img.Pixels, img.Width, img.Height)
	if err != nil {
		logger.Warn("failed to upload texture", zap.String("path", path), zap.Error(err))
		return nil
	}
	b.uploaded = append(b.uploaded, tex)
	b.stats.Textures++
	return tex
}

func (b *builder) releaseAll() {
	for _, r := range b.uploaded {
		r.Release()
	}
	b.uploaded = nil
}

func withAlpha(c [3]float32) [4]float32 {
	return [4]float32{c[0], c[1], c[2], 1}
}
