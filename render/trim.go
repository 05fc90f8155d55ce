package render

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"termview/buffer"
)

// trimTrailing removes blank rows between the end of the buffer and the
// cursor row, then any whitespace after the cursor on the cursor row.
func (s *Session) trimTrailing() error {
	cursorRow := s.offset + s.cursor.Y
	row := s.buf.RowCount() - 1
	for row > cursorRow {
		if strings.TrimSpace(s.buf.Line(row)) != "" {
			break
		}
		s.decolorize(row)
		if err := s.buf.EraseLines(row, row+1); err != nil {
			return err
		}
		row--
	}
	if row != cursorRow {
		return nil
	}

	line := s.buf.Line(row)
	n := utf8.RuneCountInString(line)
	from := ReverseWidthOffset(line, s.cursor.X) + 1
	if from >= n {
		return nil
	}
	if strings.TrimSpace(string([]rune(line)[from:])) != "" {
		return nil
	}
	return s.buf.Erase(buffer.Cursor{Line: row, Col: from}, buffer.Cursor{Line: row, Col: n})
}

// trimScrollback keeps the buffer under the scrollback cap, then drops
// rows left below the live screen by a taller earlier render.
func (s *Session) trimScrollback() error {
	if err := s.capScrollback(); err != nil {
		return err
	}
	return s.trimTail()
}

// capScrollback evicts the oldest rows once the buffer passes the
// scrollback cap, at least a tenth of the cap at a time. A view reading
// history keeps showing the same rows.
func (s *Session) capScrollback() error {
	limit := s.opts.MaxScrollback
	total := s.buf.RowCount()
	if total <= limit {
		return nil
	}
	live := s.nearLive()
	m := total - limit
	if batch := (limit + 9) / 10; batch > m {
		m = batch
	}
	if m > total {
		m = total
	}
	for r := 0; r < m; r++ {
		s.decolorize(r)
	}
	if err := s.buf.EraseLines(0, m); err != nil {
		return err
	}
	shifted := make(map[int][]int, len(s.colored))
	for r, keys := range s.colored {
		if r-m >= 0 {
			shifted[r-m] = keys
		}
	}
	s.colored = shifted
	s.offset -= m
	if s.offset < 0 {
		s.offset = 0
	}
	if !live {
		s.buf.SetScrollY(s.buf.ScrollY() - m)
		s.viewportY = max(s.viewportY-m, s.buf.ScrollY()+1)
	}
	s.trimmed(0, m)
	s.log.Debug("trimmed scrollback", zap.Int("rows", m), zap.Int("offset", s.offset))
	return nil
}

func (s *Session) trimTail() error {
	if s.rows == 0 {
		return nil
	}
	tail := s.offset + s.rows
	if total := s.buf.RowCount(); total > tail {
		for r := tail; r < total; r++ {
			s.decolorize(r)
		}
		if err := s.buf.EraseLines(tail, total); err != nil {
			return err
		}
		s.trimmed(tail, total)
	}
	return nil
}

func (s *Session) trimmed(from, to int) {
	if s.opts.Trim != nil {
		s.opts.Trim.Trimmed(from, to)
	}
}
