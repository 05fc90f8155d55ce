package render

import (
	"unicode/utf8"

	"termview/buffer"
)

// positionCursor puts a collapsed caret where the screen cursor is,
// padding the buffer if the row or column does not exist yet.
func (s *Session) positionCursor() error {
	if s.cursor.Hidden {
		s.buf.ClearSelection()
		return nil
	}
	row := s.offset + s.cursor.Y
	if row < s.buf.RowCount() {
		line := s.buf.Line(row)
		col := ReverseWidthOffset(line, s.cursor.X) + 1
		if c, ok := s.buf.Caret(); ok && c.Line == row && c.Col == col && col <= utf8.RuneCountInString(line) {
			return nil
		}
	}

	if err := ensurePosition(s.buf, row, 0); err != nil {
		return err
	}
	col := ReverseWidthOffset(s.buf.Line(row), s.cursor.X) + 1
	if err := ensurePosition(s.buf, row, col); err != nil {
		return err
	}
	s.buf.SetCursor(buffer.Cursor{Line: row, Col: col})
	return nil
}

// scrollToCursor scrolls so the last row sits at the bottom of the view,
// but never above the first live screen row.
func (s *Session) scrollToCursor() {
	y := s.buf.RowCount() - s.buf.Height()
	if s.offset > y {
		y = s.offset
	}
	if y < 0 {
		y = 0
	}
	s.buf.SetScrollY(y)
	s.viewportY = s.buf.ScrollY()
}

func (s *Session) scheduleScroll() {
	if s.opts.Defer == nil {
		s.scrollToCursor()
		return
	}
	s.opts.Defer(func() {
		s.ShowCursor(false, true)
	})
}

// ShowCursor moves the caret to the last rendered cursor position and/or
// scrolls the live screen into view. Hosts call it after user input so
// the view snaps back from history.
func (s *Session) ShowCursor(focus, scroll bool) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil
	}
	if focus {
		if err := s.positionCursor(); err != nil {
			return err
		}
	}
	if scroll {
		s.scrollToCursor()
	}
	return nil
}
