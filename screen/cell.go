package screen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Cell is one column of a screen row. Char may hold several code points
// when combining marks follow a base character, and is empty for the
// second column of a double-width glyph.
type Cell struct {
	Char         string
	FG           tcell.Color
	BG           tcell.Color
	Continuation bool // row was soft-wrapped into the next one
}

type Row []Cell

// LineFeed reports whether the row ends in a hard line break rather than
// wrapping into the following row.
func (r Row) LineFeed() bool {
	if len(r) == 0 {
		return true
	}
	return !r[len(r)-1].Continuation
}

// Text returns the concatenated characters of the row, trailing blanks
// included.
func (r Row) Text() string {
	var sb strings.Builder
	for _, c := range r {
		sb.WriteString(c.Char)
	}
	return sb.String()
}

func blankRow(cols int) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = Cell{Char: " "}
	}
	return row
}

// ColorTag renders a color as the short name used in highlight scopes:
// "default", a palette index, or a six digit hex triplet.
func ColorTag(c tcell.Color) string {
	switch {
	case c == tcell.ColorDefault:
		return "default"
	case c.IsRGB():
		return fmt.Sprintf("%06x", c.Hex())
	default:
		return strconv.Itoa(int(c &^ tcell.ColorValid))
	}
}

// ParseColorTag is the inverse of ColorTag. Unknown tags map to the
// default color.
func ParseColorTag(tag string) tcell.Color {
	if tag == "" || tag == "default" {
		return tcell.ColorDefault
	}
	if len(tag) == 6 {
		if v, err := strconv.ParseInt(tag, 16, 32); err == nil {
			return tcell.NewHexColor(int32(v))
		}
	}
	if n, err := strconv.Atoi(tag); err == nil && n >= 0 && n < 256 {
		return tcell.PaletteColor(n)
	}
	return tcell.ColorDefault
}
