// Package renderer draws models with fixed-function OpenGL.
package renderer

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/engine/model"
	"github.com/Faultbox/midgard-rig/internal/logger"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	// FOV is the horizontal field of view in degrees.
	FOV  float32
	Near float32
	Far  float32

	// CameraDistance pushes the model away from the eye along -Z.
	CameraDistance float32
	// CameraHeight lowers the model by this amount so the camera looks at
	// its middle rather than its feet.
	CameraHeight float32

	ClearColor [4]float32
}

// DefaultConfig returns a 90 degree horizontal view over [1, 100].
func DefaultConfig(width, height int) Config {
	return Config{
		Width:          width,
		Height:         height,
		FOV:            90,
		Near:           1,
		Far:            100,
		CameraDistance: 10,
		ClearColor:     [4]float32{0.1, 0.1, 0.15, 1},
	}
}

// Renderer uploads geometry and textures and implements
// model.RenderContext for drawing them.
type Renderer struct {
	config    Config
	view      math.Mat4
	drawCalls int
}

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg, view: view(cfg)}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.TEXTURE_2D)
	gl.TexEnvf(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.REPLACE)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	r.Resize(cfg.Width, cfg.Height)

	return r, nil
}

// Close logs the shutdown. Model resources are released by Model.Close.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
}

// Resize updates the viewport and projection.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height

	proj := projection(r.config)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(proj.Ptr())
	gl.MatrixMode(gl.MODELVIEW)

	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetView replaces the camera transform used from the next Begin.
func (r *Renderer) SetView(m math.Mat4) {
	r.view = m
}

// SetDepthRange changes the clip planes and reloads the projection.
func (r *Renderer) SetDepthRange(near, far float32) {
	r.config.Near = near
	r.config.Far = far
	r.Resize(r.config.Width, r.config.Height)
}

// Begin clears the frame and loads the view matrix.
func (r *Renderer) Begin() {
	r.drawCalls = 0
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(r.view.Ptr())
}

// End finishes the frame and reports GL errors raised during it.
func (r *Renderer) End() {
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		logger.Warn("OpenGL error", zap.Uint32("code", errCode))
	}
}

// DrawCalls returns the number of meshes drawn since Begin.
func (r *Renderer) DrawCalls() int {
	return r.drawCalls
}

// BindMaterial sets the fixed-function material and texture for following
// draws.
func (r *Renderer) BindMaterial(mat *model.Material) {
	gl.Materialfv(gl.FRONT, gl.DIFFUSE, &mat.Diffuse[0])
	gl.Materialfv(gl.FRONT, gl.EMISSION, &mat.Emissive[0])
	gl.Materialfv(gl.FRONT, gl.AMBIENT, &mat.Ambient[0])
	gl.Materialfv(gl.FRONT, gl.SPECULAR, &mat.Specular[0])
	gl.Materialf(gl.FRONT, gl.SHININESS, clampShininess(mat.Shininess))

	if tex, ok := mat.Texture.(*glTexture); ok && tex.id != 0 {
		gl.Enable(gl.TEXTURE_2D)
		gl.BindTexture(gl.TEXTURE_2D, tex.id)
		return
	}
	// Untextured meshes show their diffuse color
	gl.Disable(gl.TEXTURE_2D)
	gl.Color4fv(&mat.Diffuse[0])
}

// DrawMesh draws mesh with the given world transform.
func (r *Renderer) DrawMesh(mesh *model.Mesh, world math.Mat4) {
	buf, ok := mesh.Buffer.(*glMesh)
	if !ok || buf.vbo == 0 {
		return
	}

	gl.PushMatrix()
	gl.MultMatrixf(world.Ptr())

	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.ibo)
	gl.InterleavedArrays(gl.T2F_V3F, 0, nil)
	gl.DrawElements(gl.TRIANGLES, int32(mesh.IndexCount), gl.UNSIGNED_INT, nil)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.PopMatrix()
	r.drawCalls++
}

// projection returns the perspective matrix for cfg.
func projection(cfg Config) math.Mat4 {
	fov := cfg.FOV * gomath.Pi / 180
	return math.HorizontalFrustum(fov, cfg.Width, cfg.Height, cfg.Near, cfg.Far)
}

// view returns the fixed camera transform for cfg.
func view(cfg Config) math.Mat4 {
	return math.Translate(0, -cfg.CameraHeight, -cfg.CameraDistance)
}

// clampShininess keeps the exponent inside the range GL accepts.
func clampShininess(s float32) float32 {
	if s < 0 {
		return 0
	}
	if s > 128 {
		return 128
	}
	return s
}
