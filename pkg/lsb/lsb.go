// Package lsb hides a black/white stencil in the least significant bit of a
// carrier image's red channel and recovers it again.
//
// Embedding leaves green, blue and the upper seven bits of red untouched.
// Extraction reads only the red LSB, so it reproduces the stencil exactly
// and discards everything else about the image.
package lsb

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/xob0t/stencilsteg/internal/parallel"
	"github.com/xob0t/stencilsteg/internal/pixels"
	"github.com/xob0t/stencilsteg/pkg/stencil"
)

// ErrDimensionMismatch is returned when carrier and stencil sizes differ.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// DimensionError carries both sizes of a failed Embed.
type DimensionError struct {
	Carrier, Stencil image.Point
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: carrier %dx%d, stencil %dx%d", ErrDimensionMismatch,
		e.Carrier.X, e.Carrier.Y, e.Stencil.X, e.Stencil.Y)
}

func (e *DimensionError) Is(target error) bool { return target == ErrDimensionMismatch }

// Options tunes Embed and Extract.
type Options struct {
	// Rule classifies stencil pixels that are not already a *stencil.Bitmap.
	Rule stencil.Rule
	// Workers bounds the goroutines used per image (default: GOMAXPROCS).
	Workers int
}

// Embed returns a new opaque image whose red LSBs carry st: 1 where st is
// white and 0 where it is black. Carrier alpha is dropped.
//
// st may be a *stencil.Bitmap or any image, which is classified with
// opts.Rule first. Sizes must match; origins may differ.
func Embed(ctx context.Context, carrier, st image.Image, opts Options) (*image.NRGBA, error) {
	cs, ss := carrier.Bounds().Size(), st.Bounds().Size()
	if cs != ss {
		return nil, &DimensionError{Carrier: cs, Stencil: ss}
	}

	bm, ok := st.(*stencil.Bitmap)
	if !ok {
		var err error
		if bm, err = stencil.FromImage(ctx, st, opts.Rule, opts.Workers); err != nil {
			return nil, fmt.Errorf("classify stencil: %w", err)
		}
	}

	src := pixels.NRGBA(carrier)
	out := image.NewNRGBA(image.Rect(0, 0, cs.X, cs.Y))

	err := parallel.Rows(ctx, cs.Y, opts.Workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			in, dst := pixels.Row(src, y), pixels.Row(out, y)
			for x, bit := range bm.Row(y) {
				i := x * 4
				dst[i] = in[i]&^1 | bit
				dst[i+1] = in[i+1]
				dst[i+2] = in[i+2]
				dst[i+3] = 0xff
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Extract rebuilds the stencil from the red LSBs of encoded: 0 is black and
// 1 is white. Every image has a well defined result, so the only possible
// error is cancellation of ctx.
func Extract(ctx context.Context, encoded image.Image, opts Options) (*stencil.Bitmap, error) {
	src := pixels.NRGBA(encoded)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := stencil.New(w, h)

	err := parallel.Rows(ctx, h, opts.Workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			in, bits := pixels.Row(src, y), out.Row(y)
			for x := range bits {
				bits[x] = in[x*4] & 1
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
