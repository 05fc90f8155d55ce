package render

import "github.com/mattn/go-runewidth"

// ReverseWidthOffset returns the rune index at which the display width of
// text first reaches width. Zero-width runes count as 0 columns and wide
// runes as 2. A width of 0 yields -1; when text is too narrow the result
// extrapolates past its last index by the missing columns.
func ReverseWidthOffset(text string, width int) int {
	if width == 0 {
		return -1
	}
	w := 0
	i := -1
	for _, r := range text {
		i++
		w += runewidth.RuneWidth(r)
		if w >= width {
			return i
		}
	}
	return i + width - w
}
