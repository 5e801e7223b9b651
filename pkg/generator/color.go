// color.go - Colour parsing and solid image creation.
package generator

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
)

// IsRandom reports whether s asks for a random colour ("random" or "").
func IsRandom(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == "random"
}

// ParseColor parses a "#rrggbb" (or "rrggbb") colour string.
func ParseColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid color %q: expected 6-char hex", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// NewSolidImage creates a uniform opaque image using draw.Draw.
func NewSolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	c.A = 0xff
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}
