package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/engine/model"
	"github.com/Faultbox/midgard-rig/internal/logger"
)

// glMesh owns a vertex and an index buffer.
type glMesh struct {
	vbo uint32
	ibo uint32
}

// Release deletes both buffers.
func (m *glMesh) Release() {
	if m.vbo == 0 {
		return
	}
	buffers := [2]uint32{m.vbo, m.ibo}
	gl.DeleteBuffers(2, &buffers[0])
	m.vbo, m.ibo = 0, 0
}

// glTexture owns a texture object.
type glTexture struct {
	id uint32
}

// Release deletes the texture.
func (t *glTexture) Release() {
	if t.id == 0 {
		return
	}
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

// UploadMesh copies interleaved vertices and indices into static buffers.
func (r *Renderer) UploadMesh(data *model.MeshData) (model.Resource, error) {
	if len(data.Vertices) == 0 || len(data.Indices) == 0 {
		return nil, fmt.Errorf("empty mesh")
	}

	var buffers [2]uint32
	gl.GenBuffers(2, &buffers[0])
	m := &glMesh{vbo: buffers[0], ibo: buffers[1]}

	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*model.VertexSize, gl.Ptr(data.Vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ibo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		m.Release()
		return nil, fmt.Errorf("buffer upload failed: GL error 0x%x", errCode)
	}

	logger.Debug("mesh uploaded",
		zap.Uint32("vbo", m.vbo),
		zap.Int("vertices", len(data.Vertices)),
		zap.Int("indices", len(data.Indices)),
	)
	return m, nil
}

// UploadTexture creates an RGBA8 texture with nearest filtering.
func (r *Renderer) UploadTexture(pixels []byte, width, height int) (model.Resource, error) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return nil, fmt.Errorf("invalid texture %dx%d with %d bytes", width, height, len(pixels))
	}

	t := &glTexture{}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		t.Release()
		return nil, fmt.Errorf("texture upload failed: GL error 0x%x", errCode)
	}

	return t, nil
}
