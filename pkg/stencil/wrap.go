package stencil

import "strings"

// Wrap breaks text into lines of at most width runes. Words are separated by
// any run of whitespace and rejoined with single spaces. A word longer than
// width first fills what is left of the current line and is then split
// across following lines. Whitespace-only text yields no lines.
func Wrap(text string, width int) []string {
	width = max(width, 1)

	var (
		lines []string
		cur   []rune
	)
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > 0 {
			if len(cur) > 0 {
				if len(cur)+1+len(w) <= width {
					cur = append(append(cur, ' '), w...)
					break
				}
				if len(w) > width {
					if n := width - len(cur) - 1; n > 0 {
						cur = append(append(cur, ' '), w[:n]...)
						w = w[n:]
					}
				}
				lines = append(lines, string(cur))
				cur = cur[:0]
				continue
			}

			n := min(len(w), width)
			cur = append(cur, w[:n]...)
			w = w[n:]
			if len(w) > 0 {
				lines = append(lines, string(cur))
				cur = cur[:0]
			}
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
