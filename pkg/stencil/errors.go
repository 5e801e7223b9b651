package stencil

import (
	"errors"
	"fmt"
	"image/color"
)

var (
	// ErrInvalidDimensions is returned for a canvas with a non-positive side.
	ErrInvalidDimensions = errors.New("invalid stencil dimensions")
	// ErrInvalidOptions is returned for rasterizer options out of range.
	ErrInvalidOptions = errors.New("invalid rasterizer options")
	// ErrUnclassifiedPixel is returned by RuleStrict for a pixel that is
	// neither pure black nor pure white.
	ErrUnclassifiedPixel = errors.New("unclassified stencil pixel")
)

// PixelError locates the first pixel a strict classification rejected.
type PixelError struct {
	X, Y  int
	Color color.NRGBA
}

func (e *PixelError) Error() string {
	return fmt.Sprintf("%v at (%d,%d): rgb(%d,%d,%d)", ErrUnclassifiedPixel, e.X, e.Y, e.Color.R, e.Color.G, e.Color.B)
}

func (e *PixelError) Is(target error) bool { return target == ErrUnclassifiedPixel }
