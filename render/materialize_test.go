package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"termview/screen"
)

func cells(text string, fg, bg tcell.Color) screen.Row {
	var row screen.Row
	for _, r := range text {
		row = append(row, screen.Cell{Char: string(r), FG: fg, BG: bg})
	}
	return row
}

func TestMaterializeStripsTrailingWhitespace(t *testing.T) {
	text, segs := Materialize(cells("ab  ", tcell.ColorDefault, tcell.ColorDefault), true)
	if text != "ab" {
		t.Fatalf("expected ab, got %q", text)
	}
	if len(segs) != 1 || segs[0].Start != 0 || segs[0].End != 2 || segs[0].Colored() {
		t.Fatalf("unexpected segments %+v", segs)
	}
}

func TestMaterializeContinuationMarker(t *testing.T) {
	text, _ := Materialize(cells("ab  ", tcell.ColorDefault, tcell.ColorDefault), false)
	if text != "ab"+Continuation {
		t.Fatalf("expected marker after stripped text, got %q", text)
	}
}

func TestMaterializeWrappedRowKeepsColoredTail(t *testing.T) {
	row := append(cells("ab", tcell.ColorDefault, tcell.ColorDefault), cells("    ", tcell.ColorDefault, tcell.ColorMaroon)...)
	text, segs := Materialize(row, false)
	if text != "ab    "+Continuation {
		t.Fatalf("expected colored spaces before the marker, got %q", text)
	}
	if len(segs) != 2 {
		t.Fatalf("expected two segments, got %+v", segs)
	}
	if seg := segs[1]; seg.Start != 2 || seg.End != 6 || seg.BG != tcell.ColorMaroon {
		t.Fatalf("expected red run over columns 2..6, got %+v", seg)
	}
}

func TestMaterializeDropsSegmentsPastText(t *testing.T) {
	row := append(cells("ab", tcell.ColorMaroon, tcell.ColorDefault), cells("   ", tcell.ColorDefault, tcell.ColorDefault)...)
	text, segs := Materialize(row, false)
	if text != "ab"+Continuation {
		t.Fatalf("expected ab with marker, got %q", text)
	}
	if len(segs) != 1 || segs[0].End != 2 {
		t.Fatalf("expected only the colored run, got %+v", segs)
	}
}

func TestMaterializeEmptyRow(t *testing.T) {
	text, segs := Materialize(nil, true)
	if text != "" || segs != nil {
		t.Fatalf("expected nothing, got %q %+v", text, segs)
	}
}

func TestMaterializeMergesRuns(t *testing.T) {
	row := append(cells("ab", tcell.ColorMaroon, tcell.ColorDefault), cells("cd", tcell.ColorDefault, tcell.ColorDefault)...)
	row = append(row, cells("e", tcell.ColorMaroon, tcell.ColorDefault)...)
	text, segs := Materialize(row, true)
	if text != "abcde" {
		t.Fatalf("expected abcde, got %q", text)
	}
	want := []Segment{
		{Start: 0, End: 2, FG: tcell.ColorMaroon, BG: tcell.ColorDefault},
		{Start: 2, End: 4, FG: tcell.ColorDefault, BG: tcell.ColorDefault},
		{Start: 4, End: 5, FG: tcell.ColorMaroon, BG: tcell.ColorDefault},
	}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %+v", len(want), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Fatalf("segment %d: expected %+v, got %+v", i, want[i], segs[i])
		}
	}
}

func TestMaterializeWideCharColumns(t *testing.T) {
	row := screen.Row{
		{Char: "日", FG: tcell.ColorGreen},
		{Char: "", FG: tcell.ColorGreen},
		{Char: "x", FG: tcell.ColorGreen},
	}
	text, segs := Materialize(row, true)
	if text != "日x" {
		t.Fatalf("expected 日x, got %q", text)
	}
	if len(segs) != 1 || segs[0].End != 2 {
		t.Fatalf("expected one run over two runes, got %+v", segs)
	}
}

func TestSegmentScope(t *testing.T) {
	seg := Segment{FG: tcell.ColorMaroon, BG: tcell.ColorDefault}
	if got := seg.Scope(); got != "term.1.default" {
		t.Fatalf("unexpected scope %q", got)
	}
	fg, bg, ok := ParseScope(seg.Scope())
	if !ok || fg != tcell.ColorMaroon || bg != tcell.ColorDefault {
		t.Fatalf("ParseScope gave %v %v %v", fg, bg, ok)
	}
	if _, _, ok := ParseScope("comment"); ok {
		t.Fatalf("expected foreign scope to be rejected")
	}
}

func TestUnwrap(t *testing.T) {
	in := "hello " + Continuation + "\nworld\nnext" + Continuation
	if got := Unwrap(in); got != "hello world\nnext" {
		t.Fatalf("unexpected unwrap %q", got)
	}
}
