package stencil

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeText composes text to NFC. For faces that only carry ASCII
// glyphs, combining marks are dropped first so "café" draws as "cafe"
// rather than with a replacement glyph.
func normalizeText(s string, asciiOnly bool) string {
	if !asciiOnly {
		return norm.NFC.String(s)
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return norm.NFC.String(s)
	}
	return out
}
