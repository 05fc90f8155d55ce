package render

import (
	"strings"
	"unicode/utf8"

	"termview/buffer"
)

// ensurePosition pads buf with empty rows until row exists and with spaces
// until that row is at least col runes long. It never removes text.
func ensurePosition(buf TextBuffer, row, col int) error {
	if last := buf.RowCount() - 1; last < row {
		end := buffer.Cursor{Line: last, Col: utf8.RuneCountInString(buf.Line(last))}
		if err := buf.InsertAt(end, strings.Repeat("\n", row-last)); err != nil {
			return err
		}
	}
	if n := utf8.RuneCountInString(buf.Line(row)); n < col {
		if err := buf.InsertAt(buffer.Cursor{Line: row, Col: n}, strings.Repeat(" ", col-n)); err != nil {
			return err
		}
	}
	return nil
}
