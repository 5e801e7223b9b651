// Package pixels normalises decoded images into flat 8-bit NRGBA buffers.
package pixels

import (
	"image"
	"image/draw"
)

// NRGBA returns img as a non-premultiplied 8-bit image whose bounds start at
// the origin. An *image.NRGBA already at the origin is returned as is and must
// be treated as read-only by the caller; anything else is converted into a
// new buffer.
func NRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Row returns the 4*w bytes of row y.
func Row(img *image.NRGBA, y int) []uint8 {
	off := y * img.Stride
	return img.Pix[off : off+4*img.Rect.Dx()]
}
