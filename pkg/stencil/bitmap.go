// Package stencil rasterizes text into two-colour bitmaps and classifies
// arbitrary images as black/white stencils.
package stencil

import (
	"bytes"
	"image"
	"image/color"
)

// Palette is the stencil palette. Index 0 is black, index 1 is white, so a
// palette index doubles as the bit hidden in a carrier pixel.
var Palette = color.Palette{
	color.RGBA{0, 0, 0, 0xff},
	color.RGBA{0xff, 0xff, 0xff, 0xff},
}

// Bitmap is a black/white image. Every pixel is exactly one of the two
// Palette colours, so it cannot hold an ambiguous value.
//
// Bitmap implements image.PalettedImage; image/png encodes it as a 1-bit
// image.
type Bitmap struct {
	p *image.Paletted
}

var _ image.PalettedImage = (*Bitmap)(nil)

// New returns an all-black width×height bitmap. Negative sizes are treated
// as zero.
func New(width, height int) *Bitmap {
	return &Bitmap{p: image.NewPaletted(image.Rect(0, 0, max(width, 0), max(height, 0)), Palette)}
}

func (b *Bitmap) ColorModel() color.Model { return b.p.Palette }

func (b *Bitmap) Bounds() image.Rectangle { return b.p.Rect }

func (b *Bitmap) At(x, y int) color.Color { return b.p.At(x, y) }

func (b *Bitmap) ColorIndexAt(x, y int) uint8 { return b.p.ColorIndexAt(x, y) }

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.p.Rect.Dx() }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.p.Rect.Dy() }

// WhiteAt reports whether the pixel at (x, y) is white. Out of range pixels
// are black.
func (b *Bitmap) WhiteAt(x, y int) bool { return b.p.ColorIndexAt(x, y) == 1 }

// SetWhite paints the pixel at (x, y) white or black.
func (b *Bitmap) SetWhite(x, y int, white bool) {
	var idx uint8
	if white {
		idx = 1
	}
	b.p.SetColorIndex(x, y, idx)
}

// Row returns the palette indices of row y, one byte per pixel (0 black,
// 1 white). The slice aliases the bitmap; writes must stay 0 or 1.
func (b *Bitmap) Row(y int) []uint8 {
	off := y * b.p.Stride
	return b.p.Pix[off : off+b.p.Rect.Dx()]
}

// Paletted returns the backing two-colour image.
func (b *Bitmap) Paletted() *image.Paletted { return b.p }

// CountWhite returns the number of white pixels.
func (b *Bitmap) CountWhite() int {
	n := 0
	for y := range b.Height() {
		for _, v := range b.Row(y) {
			n += int(v)
		}
	}
	return n
}

// Equal reports whether both bitmaps have the same size and pixels.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b.p.Rect.Size() != o.p.Rect.Size() {
		return false
	}
	for y := range b.Height() {
		if !bytes.Equal(b.Row(y), o.Row(y)) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	c := New(b.Width(), b.Height())
	for y := range b.Height() {
		copy(c.Row(y), b.Row(y))
	}
	return c
}
