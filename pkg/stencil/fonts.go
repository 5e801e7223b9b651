// fonts.go - Font selection for the rasterizer. The default is the fixed-size
// 7x13 bitmap face from golang.org/x/image/font/basicfont; outline fonts go
// through opentype and fall back to the embedded Go Regular font when a
// custom font cannot be loaded.
package stencil

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	// FontBasic selects the built-in 7x13 bitmap face.
	FontBasic = ""
	// FontGoRegular selects the embedded Go Regular outline font.
	FontGoRegular = "goregular"
)

// FontManager resolves a font source into faces.
type FontManager struct {
	basic  bool
	parsed *opentype.Font
}

// NewFontManager creates a font manager for source: FontBasic, FontGoRegular
// or a TTF/OTF path. An unreadable path logs a warning and uses Go Regular.
func NewFontManager(source string, logger *slog.Logger) (*FontManager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var fontData []byte
	switch strings.ToLower(strings.TrimSpace(source)) {
	case FontBasic, "basic":
		return &FontManager{basic: true}, nil
	case FontGoRegular:
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			logger.Warn("could not load custom font, using default", "font", source, "err", err)
		} else {
			fontData = data
		}
	}

	if fontData == nil {
		fontData = goregular.TTF
	}

	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &FontManager{parsed: parsed}, nil
}

// NewFontManagerFromBytes creates a font manager from raw TTF/OTF data.
func NewFontManagerFromBytes(data []byte) (*FontManager, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &FontManager{parsed: parsed}, nil
}

// ASCIIOnly reports whether faces from this manager only carry ASCII glyphs.
func (fm *FontManager) ASCIIOnly() bool { return fm.basic }

// GetFace returns a face at size points. size and dpi are ignored for the
// bitmap face.
func (fm *FontManager) GetFace(size, dpi float64) (font.Face, error) {
	if fm.basic {
		return basicfont.Face7x13, nil
	}
	if dpi <= 0 {
		dpi = 72
	}

	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}
