// rasterize.go - Text to stencil rendering. Lines are word-wrapped by
// character count and drawn white-on-black from a fixed top-left margin.
package stencil

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Rasterizer defaults.
const (
	DefaultWrapWidth = 60
	DefaultMargin    = 10
	DefaultLinePitch = 10
	DefaultFontSize  = 12
)

// RasterOptions configures a Rasterizer. Zero values select the defaults.
type RasterOptions struct {
	WrapWidth int     // Characters per line (default: 60)
	Margin    int     // Left and top margin in pixels (default: 10)
	LinePitch int     // Vertical advance per line in pixels (default: 10)
	Font      string  // FontBasic, FontGoRegular or a TTF/OTF path
	FontData  []byte  // TTF/OTF bytes; overrides Font when set
	FontSize  float64 // Points, outline fonts only (default: 12)
	Logger    *slog.Logger
}

func (o RasterOptions) withDefaults() RasterOptions {
	if o.WrapWidth == 0 {
		o.WrapWidth = DefaultWrapWidth
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.LinePitch == 0 {
		o.LinePitch = DefaultLinePitch
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	return o
}

// Rasterizer renders text into stencil bitmaps. It is safe for concurrent
// use.
type Rasterizer struct {
	opts      RasterOptions
	asciiOnly bool

	mu     sync.Mutex // guards face; outline faces cache glyphs
	face   font.Face
	ascent int
}

// NewRasterizer validates opts and loads the font.
func NewRasterizer(opts RasterOptions) (*Rasterizer, error) {
	opts = opts.withDefaults()
	if opts.WrapWidth < 1 || opts.LinePitch < 1 || opts.Margin < 0 || opts.FontSize < 0 {
		return nil, fmt.Errorf("%w: wrap=%d pitch=%d margin=%d size=%g",
			ErrInvalidOptions, opts.WrapWidth, opts.LinePitch, opts.Margin, opts.FontSize)
	}

	var fm *FontManager
	var err error
	if opts.FontData != nil {
		fm, err = NewFontManagerFromBytes(opts.FontData)
	} else {
		fm, err = NewFontManager(opts.Font, opts.Logger)
	}
	if err != nil {
		return nil, err
	}
	face, err := fm.GetFace(opts.FontSize, 72)
	if err != nil {
		return nil, err
	}

	return &Rasterizer{
		opts:      opts,
		asciiOnly: fm.ASCIIOnly(),
		face:      face,
		ascent:    face.Metrics().Ascent.Ceil(),
	}, nil
}

var defaultRasterizer = sync.OnceValues(func() (*Rasterizer, error) {
	return NewRasterizer(RasterOptions{})
})

// Rasterize renders text with the default options: 60 characters per line,
// 10px margin, 10px line pitch, 7x13 bitmap font.
func Rasterize(text string, width, height int) (*Bitmap, error) {
	r, err := defaultRasterizer()
	if err != nil {
		return nil, err
	}
	return r.Rasterize(text, width, height)
}

// Rasterize renders text into a new width×height stencil. Lines whose top
// edge falls at or below the bottom of the canvas are skipped; partially
// visible lines are clipped.
func (r *Rasterizer) Rasterize(text string, width, height int) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	// Outline fonts antialias, so glyphs go to a grey canvas first and are
	// thresholded into the bitmap below.
	canvas := image.NewGray(image.Rect(0, 0, width, height))

	r.mu.Lock()
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: r.face,
	}
	top := r.opts.Margin
	for _, line := range r.Lines(text) {
		if top >= height {
			break
		}
		drawer.Dot = fixed.P(r.opts.Margin, top+r.ascent)
		drawer.DrawString(line)
		top += r.opts.LinePitch
	}
	r.mu.Unlock()

	out := New(width, height)
	for y := range height {
		grey := canvas.Pix[y*canvas.Stride : y*canvas.Stride+width]
		bits := out.Row(y)
		for x, v := range grey {
			if v >= Threshold {
				bits[x] = 1
			}
		}
	}
	return out, nil
}

// Lines returns the wrapped lines Rasterize would draw for text, before
// clipping.
func (r *Rasterizer) Lines(text string) []string {
	return Wrap(normalizeText(text, r.asciiOnly), r.opts.WrapWidth)
}

// VisibleLines returns how many lines start inside a canvas of the given
// height.
func (r *Rasterizer) VisibleLines(height int) int {
	if height <= r.opts.Margin {
		return 0
	}
	return (height - r.opts.Margin + r.opts.LinePitch - 1) / r.opts.LinePitch
}
