package renderer

import (
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/midgard-rig/internal/engine/texture"
)

// DrawLines draws world-space line segments, three floats per endpoint.
func (r *Renderer) DrawLines(vertices []float32, color [4]float32) {
	if len(vertices) < 6 {
		return
	}

	gl.Disable(gl.TEXTURE_2D)
	gl.Color4fv(&color[0])

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.DisableClientState(gl.TEXTURE_COORD_ARRAY)
	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.VertexPointer(3, gl.FLOAT, 0, gl.Ptr(vertices))
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.DisableClientState(gl.VERTEX_ARRAY)

	r.drawCalls++
}

// ReadPixels returns the current framebuffer. Rows are bottom to top.
func (r *Renderer) ReadPixels() *texture.Image {
	w, h := r.config.Width, r.config.Height
	img := &texture.Image{
		Pixels: make([]byte, w*h*4),
		Width:  w,
		Height: h,
	}

	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pixels))

	return img
}
