// rule.go - Binarization rules for turning arbitrary pixels into stencil bits.
package stencil

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/xob0t/stencilsteg/internal/parallel"
	"github.com/xob0t/stencilsteg/internal/pixels"
)

// Threshold is the smallest red value RuleThreshold classifies as white.
const Threshold = 128

// Rule decides whether a pixel counts as black or white.
type Rule int

const (
	// RuleThreshold classifies a pixel as white when its red channel is at
	// least Threshold.
	RuleThreshold Rule = iota
	// RuleExactWhite classifies only (255,255,255) as white; every other
	// colour is black.
	RuleExactWhite
	// RuleStrict accepts only (0,0,0) and (255,255,255) and rejects
	// everything else with ErrUnclassifiedPixel.
	RuleStrict
)

func (r Rule) String() string {
	switch r {
	case RuleThreshold:
		return "threshold"
	case RuleExactWhite:
		return "exact"
	case RuleStrict:
		return "strict"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// Valid reports whether r is one of the defined rules.
func (r Rule) Valid() bool { return r >= RuleThreshold && r <= RuleStrict }

// ParseRule parses "threshold", "exact" or "strict". Empty selects
// RuleThreshold.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "threshold":
		return RuleThreshold, nil
	case "exact", "exact-white":
		return RuleExactWhite, nil
	case "strict":
		return RuleStrict, nil
	default:
		return 0, fmt.Errorf("unknown binarization rule %q: use threshold, exact or strict", s)
	}
}

// Classify reports whether the 8-bit colour is white under r. ok is false
// only under RuleStrict for a colour that is neither pure black nor pure
// white.
func (r Rule) Classify(red, green, blue uint8) (white, ok bool) {
	pureWhite := red == 0xff && green == 0xff && blue == 0xff
	switch r {
	case RuleExactWhite:
		return pureWhite, true
	case RuleStrict:
		if pureWhite {
			return true, true
		}
		return false, red == 0 && green == 0 && blue == 0
	default:
		return red >= Threshold, true
	}
}

// ClassifyColor is Classify for any color.Color. Alpha is ignored.
func (r Rule) ClassifyColor(c color.Color) (white, ok bool) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return r.Classify(n.R, n.G, n.B)
}

// FromImage converts img into a Bitmap under rule. A *Bitmap input is
// copied as is. Under RuleStrict the first rejected pixel found is reported
// as a *PixelError.
func FromImage(ctx context.Context, img image.Image, rule Rule, workers int) (*Bitmap, error) {
	if b, ok := img.(*Bitmap); ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return b.Clone(), nil
	}

	src := pixels.NRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := New(w, h)

	err := parallel.Rows(ctx, h, workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			in := pixels.Row(src, y)
			bits := out.Row(y)
			for x := range bits {
				i := x * 4
				white, ok := rule.Classify(in[i], in[i+1], in[i+2])
				if !ok {
					return &PixelError{X: x, Y: y, Color: color.NRGBA{in[i], in[i+1], in[i+2], in[i+3]}}
				}
				if white {
					bits[x] = 1
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
