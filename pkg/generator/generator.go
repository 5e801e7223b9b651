// Package generator provides cover image generation for steganography.
//
// A cover is a synthetic carrier: a solid colour, optionally roughened with
// seeded per-channel noise so its bit planes are not uniform. Output goes
// through imageio, so only lossless formats are written.
package generator

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	mrand "math/rand/v2"
	"strings"

	"github.com/samber/lo"

	"github.com/xob0t/stencilsteg/pkg/imageio"
)

// Config holds parameters for cover generation.
type Config struct {
	Width  int    // Pixel width (default: 1280)
	Height int    // Pixel height (default: 720)
	Color  string // Hex "#rrggbb" or "random"
	Noise  int    // Max per-channel deviation from Color, 0-255
	Seed   uint64 // Seed for random colour and noise; 0 picks one
}

// NewCover renders a cover image from cfg.
func NewCover(cfg Config) (*image.NRGBA, error) {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 720
	}
	if cfg.Noise < 0 || cfg.Noise > 255 {
		return nil, fmt.Errorf("invalid noise %d: expected 0-255", cfg.Noise)
	}

	rng, err := newRand(cfg.Seed)
	if err != nil {
		return nil, err
	}

	var base color.NRGBA
	if IsRandom(cfg.Color) {
		v := rng.Uint32()
		base = color.NRGBA{uint8(v), uint8(v >> 8), uint8(v >> 16), 0xff}
	} else {
		r, g, b, err := ParseColor(cfg.Color)
		if err != nil {
			return nil, err
		}
		base = color.NRGBA{r, g, b, 0xff}
	}

	img := NewSolidImage(w, h, base)
	if cfg.Noise == 0 {
		return img, nil
	}

	span := 2*cfg.Noise + 1
	for i := 0; i < len(img.Pix); i += 4 {
		for c := range 3 {
			v := int(img.Pix[i+c]) + rng.IntN(span) - cfg.Noise
			img.Pix[i+c] = uint8(lo.Clamp(v, 0, 255))
		}
	}
	return img, nil
}

// Generate writes a cover to output. The format is inferred from the file
// extension (".png" or ".bmp").
func Generate(output string, cfg Config) error {
	if err := imageio.CheckOutput(output); err != nil {
		return err
	}
	img, err := NewCover(cfg)
	if err != nil {
		return err
	}
	return imageio.Save(output, img)
}

// GenerateToWriter writes a cover to w in the format named by ext.
func GenerateToWriter(w io.Writer, ext string, cfg Config) error {
	img, err := NewCover(cfg)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return imageio.Encode(w, ext, img)
}

func newRand(seed uint64) (*mrand.Rand, error) {
	if seed == 0 {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, fmt.Errorf("random seed: %w", err)
		}
		seed = binary.LittleEndian.Uint64(buf[:])
	}
	return mrand.New(mrand.NewPCG(seed, seed>>32|seed<<32)), nil
}
