package render

import (
	"fmt"
	"testing"

	"termview/buffer"
	"termview/screen"
)

type trimLog struct {
	calls [][2]int
}

func (l *trimLog) Trimmed(from, to int) {
	l.calls = append(l.calls, [2]int{from, to})
}

func TestScrollbackCap(t *testing.T) {
	const limit = 100
	buf := buffer.NewBuffer()
	m := newFakeModel(5, 20)
	log := &trimLog{}
	s := Attach(buf, m, Options{MaxScrollback: limit, Trim: log})

	peak := 0
	for i := 0; i < 1000; i++ {
		m.snap.History = append(m.snap.History, textRow(fmt.Sprintf("line %d", i), 20, true))
		if err := s.Render(); err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if n := buf.RowCount(); n > peak {
			peak = n
		}
	}
	// One more pass with nothing queued lets the last trim land.
	if err := s.Render(); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if peak > limit+limit/10 {
		t.Fatalf("buffer grew to %d rows", peak)
	}
	if n := buf.RowCount(); n > limit {
		t.Fatalf("expected at most %d rows after settling, got %d", limit, n)
	}
	if len(log.calls) == 0 {
		t.Fatalf("expected trim notifications")
	}
	for _, c := range log.calls {
		if c[0] == 0 && c[1] < limit/10 {
			t.Fatalf("trim evicted only %d rows", c[1])
		}
	}
	// The newest scrollback row sits just above the live screen.
	if got := buf.Line(s.Offset() - 1); got != "line 999" {
		t.Fatalf("expected newest history row above the screen, got %q", got)
	}
}

func TestTrimBatchEvictsExcess(t *testing.T) {
	buf := buffer.NewBuffer()
	lines := make([]string, 150)
	for i := range lines {
		lines[i] = fmt.Sprint(i)
	}
	buf.Lines = lines
	log := &trimLog{}
	s := Attach(buf, newFakeModel(10, 10), Options{MaxScrollback: 100, Trim: log})
	s.offset = 140
	s.rows = 10
	s.colored[5] = []int{s.keys.allocate(buf)}
	s.colored[120] = []int{s.keys.allocate(buf)}

	if err := s.trimScrollback(); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if buf.RowCount() != 100 || buf.Line(0) != "50" {
		t.Fatalf("expected rows 50..149, got %d rows starting %q", buf.RowCount(), buf.Line(0))
	}
	if s.offset != 90 {
		t.Fatalf("expected offset 90, got %d", s.offset)
	}
	if _, ok := s.colored[5]; ok || len(s.colored[70]) != 1 || len(s.colored) != 1 {
		t.Fatalf("expected colored rows re-keyed, got %v", s.colored)
	}
	if len(log.calls) != 1 || log.calls[0] != [2]int{0, 50} {
		t.Fatalf("unexpected trim notifications %v", log.calls)
	}
}

func TestTrimBatchIsAtLeastATenth(t *testing.T) {
	buf := buffer.NewBuffer()
	buf.Lines = make([]string, 101)
	s := Attach(buf, newFakeModel(1, 1), Options{MaxScrollback: 100})
	s.offset = 100
	s.rows = 1
	if err := s.trimScrollback(); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if buf.RowCount() != 91 || s.offset != 90 {
		t.Fatalf("expected 10 rows evicted, got %d rows offset %d", buf.RowCount(), s.offset)
	}
}

func TestTrimTailBelowScreen(t *testing.T) {
	buf := buffer.NewBufferFromText("h\na\nb\nstale\nstale")
	log := &trimLog{}
	s := Attach(buf, newFakeModel(2, 10), Options{Trim: log})
	s.offset = 1
	s.rows = 2
	if err := s.trimScrollback(); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if got := buf.String(); got != "h\na\nb" {
		t.Fatalf("unexpected buffer %q", got)
	}
	if len(log.calls) != 1 || log.calls[0] != [2]int{3, 5} {
		t.Fatalf("unexpected trim notifications %v", log.calls)
	}
}

func TestTrimTrailingBlankRows(t *testing.T) {
	buf := buffer.NewBufferFromText("$ ls\nout\n  \n\n")
	s := Attach(buf, newFakeModel(4, 10), Options{})
	s.cursor = screen.Cursor{X: 3, Y: 1}
	if err := s.trimTrailing(); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if got := buf.String(); got != "$ ls\nout" {
		t.Fatalf("unexpected buffer %q", got)
	}
}

func TestTrimTrailingSpacesAfterCursor(t *testing.T) {
	buf := buffer.NewBufferFromText("日本   ")
	s := Attach(buf, newFakeModel(1, 10), Options{})
	s.cursor = screen.Cursor{X: 4}
	if err := s.trimTrailing(); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if got := buf.Line(0); got != "日本" {
		t.Fatalf("expected padding after the wide text removed, got %q", got)
	}
}

func TestTrimTrailingKeepsTextAfterCursor(t *testing.T) {
	buf := buffer.NewBufferFromText("abc def  ")
	s := Attach(buf, newFakeModel(1, 10), Options{})
	s.cursor = screen.Cursor{X: 2}
	if err := s.trimTrailing(); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if got := buf.Line(0); got != "abc def  " {
		t.Fatalf("text after the cursor must stay, got %q", got)
	}
}

func TestScrolledUpViewSkipsTrimAndCursor(t *testing.T) {
	buf := buffer.NewBuffer()
	buf.SetHeight(2)
	m := newFakeModel(5, 10)
	for y := 0; y < 5; y++ {
		m.setLine(y, textRow(fmt.Sprint(y), 10, true))
	}
	m.snap.Cursor = screen.Cursor{X: 1, Y: 4}
	s := Attach(buf, m, Options{})
	if err := s.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.ScrollY() != 3 {
		t.Fatalf("expected view to follow the last row, got %d", buf.ScrollY())
	}

	buf.SetScrollY(0)
	m.snap.Cursor = screen.Cursor{X: 0, Y: 0}
	if err := s.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.ScrollY() != 0 {
		t.Fatalf("render must not scroll a view reading history, got %d", buf.ScrollY())
	}
	if c, _ := buf.Caret(); c != (buffer.Cursor{Line: 4, Col: 1}) {
		t.Fatalf("caret must stay while reading history, got %v", c)
	}

	if err := s.ShowCursor(true, true); err != nil {
		t.Fatalf("show cursor: %v", err)
	}
	if c, _ := buf.Caret(); c != (buffer.Cursor{Line: 0, Col: 0}) || buf.ScrollY() != 3 {
		t.Fatalf("expected snap back to the live screen, caret %v scroll %d", c, buf.ScrollY())
	}
}

func TestScrolledUpViewStillCapsScrollback(t *testing.T) {
	const limit = 20
	buf := buffer.NewBuffer()
	buf.SetHeight(2)
	m := newFakeModel(2, 20)
	for i := 0; i < 15; i++ {
		m.snap.History = append(m.snap.History, textRow(fmt.Sprintf("line %d", i), 20, true))
	}
	m.setLine(0, textRow("$", 20, true))
	m.setLine(1, textRow("", 20, true))
	m.snap.Cursor = screen.Cursor{X: 1}
	log := &trimLog{}
	s := Attach(buf, m, Options{MaxScrollback: limit, Trim: log})
	if err := s.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}

	buf.SetScrollY(10)
	for i := 15; i < 45; i++ {
		m.snap.History = append(m.snap.History, textRow(fmt.Sprintf("line %d", i), 20, true))
		if err := s.Render(); err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if n := buf.RowCount(); n > limit {
			t.Fatalf("render %d: buffer grew to %d rows while scrolled up", i, n)
		}
		if y := buf.ScrollY(); y > 0 && buf.Line(y) != "line 10" {
			t.Fatalf("render %d: view drifted to %q", i, buf.Line(y))
		}
	}
	if len(log.calls) == 0 {
		t.Fatalf("expected scrollback evictions while scrolled up")
	}
	if buf.ScrollY() >= s.Offset() {
		t.Fatalf("view must not snap to the live screen, scroll %d offset %d", buf.ScrollY(), s.Offset())
	}
}
