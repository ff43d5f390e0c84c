package texture

import (
	"image"
	"image/draw"
)

// GetPixels transforms a given image into the right arrangement of
// pixels by drawing the decoded image onto a controlled RGBA canvas.
// Returns the pixel data and the stride that was actually applied.
func GetPixels(img image.Image, rowPitch int) ([]uint8, int, error) {
	newImg := image.NewRGBA(img.Bounds())
	if rowPitch > 4*img.Bounds().Dx() {
		// apply the proposed row pitch only if it is wider than
		// the tight stride, as we're using only optimal textures.
		newImg.Stride = rowPitch
		newImg.Pix = make([]uint8, rowPitch*img.Bounds().Dy())
	}
	draw.Draw(newImg, newImg.Bounds(), img, image.Point{}, draw.Src)
	return newImg.Pix, newImg.Stride, nil
}
