// Package texture loads images into engine textures and prepares them
// for GPU upload. Decoded textures are the source of truth; staged
// uploads derived from them live in an UploadCache that rebuilds on
// change and evicts idle entries.
package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Decoders for the supported texture formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/devblok/depot/resource"
)

// Texture is a decoded image in the engine's canonical RGBA layout.
type Texture struct {
	Width  int
	Height int
	Stride int
	Pix    []uint8
}

// Loader decodes png, jpeg, bmp and tiff files into textures.
type Loader struct {
	// RowPitch, when non-zero, is the row alignment proposed for
	// the pixel rearrangement. See GetPixels.
	RowPitch int
}

// Extensions implements resource.Loader
func (Loader) Extensions() []string {
	return []string{"png", "jpg", "jpeg", "bmp", "tiff", "tif"}
}

// Type implements resource.Loader
func (Loader) Type() string {
	return "texture.Texture"
}

// Load implements resource.Loader
func (l Loader) Load(ctx context.Context, id resource.Identity, io resource.IO, reload bool) (any, error) {
	data, err := io.ReadFile(id.Path)
	if err != nil {
		return nil, fmt.Errorf("reading texture %s: %w", id.Path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", id.Path, err)
	}
	return FromImage(img, l.RowPitch)
}

// FromImage converts any decoded image into a Texture.
func FromImage(img image.Image, rowPitch int) (*Texture, error) {
	pix, stride, err := GetPixels(img, rowPitch)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return &Texture{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Stride: stride,
		Pix:    pix,
	}, nil
}
