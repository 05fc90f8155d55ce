package render

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"termview/buffer"
	"termview/screen"
)

// Render brings the buffer up to date with the screen model. When the
// view follows the live screen it also trims stale rows and moves the
// caret and scroll position to the cursor. The model is acknowledged only
// once every row has been written.
func (s *Session) Render() error {
	if s == nil {
		return nil
	}
	title, changed, err := s.render()
	if changed && s.opts.OnTitle != nil {
		s.opts.OnTitle(title)
	}
	return err
}

func (s *Session) render() (title string, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return "", false, nil
	}

	start := time.Now()
	snap := s.model.Snapshot()
	if snap == nil {
		return "", false, nil
	}
	if err := s.reconcile(snap); err != nil {
		return "", false, err
	}
	s.model.Acknowledge(snap)
	s.cursor = snap.Cursor
	s.rows = snap.Rows
	changed = s.syncTitle(snap.Title)

	if s.nearLive() {
		if err := s.trimTrailing(); err != nil {
			return s.title, changed, fmt.Errorf("trim trailing: %w", err)
		}
		if err := s.trimScrollback(); err != nil {
			return s.title, changed, fmt.Errorf("trim scrollback: %w", err)
		}
		if err := s.positionCursor(); err != nil {
			return s.title, changed, fmt.Errorf("position cursor: %w", err)
		}
		s.scheduleScroll()
	} else if err := s.capScrollback(); err != nil {
		return s.title, changed, fmt.Errorf("trim scrollback: %w", err)
	}

	s.log.Debug("render",
		zap.Int("history", len(snap.History)),
		zap.Int("dirty", len(snap.Dirty)),
		zap.Int("offset", s.offset),
		zap.Duration("took", time.Since(start)))
	return s.title, changed, nil
}

// reconcile writes history rows, oldest first, each one just above the
// live screen, then the dirty rows in ascending order. The offset is only
// committed once every write succeeded, so a failed pass replays the same
// rows into the same places.
func (s *Session) reconcile(snap *screen.Snapshot) error {
	offset := s.offset
	for _, row := range snap.History {
		offset++
		if err := s.writeRow(offset-1, row); err != nil {
			return fmt.Errorf("history row %d: %w", offset-1, err)
		}
	}
	for _, y := range snap.Dirty {
		if err := s.writeRow(y+offset, snap.Lines[y]); err != nil {
			return fmt.Errorf("screen row %d: %w", y, err)
		}
	}
	s.offset = offset
	return nil
}

func (s *Session) writeRow(target int, row screen.Row) error {
	text, segs := Materialize(row, row.LineFeed())
	if err := ensurePosition(s.buf, target, 0); err != nil {
		return err
	}
	s.decolorize(target)
	if err := s.buf.ReplaceLine(target, text); err != nil {
		return err
	}
	return s.colorize(target, segs)
}

func (s *Session) colorize(row int, segs []Segment) error {
	for _, seg := range segs {
		if !seg.Colored() {
			continue
		}
		if err := ensurePosition(s.buf, row, seg.End); err != nil {
			return err
		}
		n := s.keys.allocate(s.buf)
		s.buf.AddRegion(keyName(n),
			buffer.Cursor{Line: row, Col: seg.Start},
			buffer.Cursor{Line: row, Col: seg.End},
			seg.Scope())
		s.colored[row] = append(s.colored[row], n)
	}
	return nil
}

func (s *Session) decolorize(row int) {
	keys, ok := s.colored[row]
	if !ok {
		return
	}
	for _, n := range keys {
		s.buf.RemoveRegion(keyName(n))
		s.keys.release(n)
	}
	delete(s.colored, row)
}

func (s *Session) syncTitle(title string) bool {
	if title == "" {
		title = s.opts.DefaultTitle
	}
	if title == s.title {
		return false
	}
	s.title = title
	return true
}

// nearLive reports whether the view still sits where the last render put
// it. Scrolling up by a row or more counts as reading history.
func (s *Session) nearLive() bool {
	return s.viewportY <= s.buf.ScrollY()
}
