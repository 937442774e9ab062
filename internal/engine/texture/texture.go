// Package texture loads image files into RGBA pixel buffers for upload.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder registration
)

// Image is a tightly packed RGBA8 pixel buffer, top row first unless
// flipped.
type Image struct {
	Pixels []byte
	Width  int
	Height int
}

// Loader reads texture files.
type Loader interface {
	Load(path string) (*Image, error)
}

// FileLoader loads textures from the local filesystem.
type FileLoader struct{}

// Load reads and decodes the image at path.
func (FileLoader) Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}
	img, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return FromImage(img), nil
}

// Decode decodes image data. TGA has no signature and is picked by
// extension; every other format is detected from its header.
func Decode(data []byte, ext string) (image.Image, error) {
	if strings.EqualFold(ext, ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// FromImage converts any image to a packed RGBA buffer.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return &Image{
		Pixels: rgba.Pix,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
}

// FlipVertical reverses the row order in place: row j becomes row
// height-1-j. OpenGL expects the bottom row first.
func FlipVertical(img *Image) {
	stride := img.Width * 4
	if stride == 0 || len(img.Pixels) < stride*img.Height {
		return
	}
	tmp := make([]byte, stride)
	for top, bottom := 0, img.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pixels[top*stride : (top+1)*stride]
		b := img.Pixels[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
