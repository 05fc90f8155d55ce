package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"termview/screen"
)

// Continuation marks a row that soft-wraps into the next one. It is zero
// width so it never shows, but copy and search can tell a wrapped row from
// a real line break.
const Continuation = "\u200b"

const scopePrefix = "term."

// Segment is a run of cells sharing colors, in rune columns of the
// materialized text.
type Segment struct {
	Start, End int
	FG, BG     tcell.Color
}

func (s Segment) Colored() bool {
	return s.FG != tcell.ColorDefault || s.BG != tcell.ColorDefault
}

// Scope is the highlight scope for the segment, "term.<fg>.<bg>".
func (s Segment) Scope() string {
	return scopePrefix + screen.ColorTag(s.FG) + "." + screen.ColorTag(s.BG)
}

// Materialize turns a screen row into buffer text plus its color runs.
// Trailing whitespace is not stored unless a colored run covers it; a row
// that does not end in a line feed gets the continuation marker after
// the last kept column. Segments never extend past the kept text.
func Materialize(row screen.Row, lineFeed bool) (string, []Segment) {
	if len(row) == 0 {
		return "", nil
	}
	var sb strings.Builder
	var segs []Segment
	col := 0
	for _, c := range row {
		if c.Char == "" {
			continue
		}
		n := utf8.RuneCountInString(c.Char)
		sb.WriteString(c.Char)
		if last := len(segs) - 1; last >= 0 && segs[last].FG == c.FG && segs[last].BG == c.BG {
			segs[last].End += n
		} else {
			segs = append(segs, Segment{Start: col, End: col + n, FG: c.FG, BG: c.BG})
		}
		col += n
	}
	full := sb.String()
	text := strings.TrimRightFunc(full, unicode.IsSpace)
	keep := utf8.RuneCountInString(text)
	for _, seg := range segs {
		if seg.Colored() && seg.End > keep {
			keep = seg.End
		}
	}
	if keep > utf8.RuneCountInString(text) {
		text = string([]rune(full)[:keep])
	}
	segs = clampSegments(segs, keep)
	if !lineFeed {
		text += Continuation
	}
	return text, segs
}

func clampSegments(segs []Segment, n int) []Segment {
	out := segs[:0]
	for _, seg := range segs {
		if seg.Start >= n {
			break
		}
		if seg.End > n {
			seg.End = n
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseScope splits a highlight scope produced by Segment.Scope back into
// its colors.
func ParseScope(scope string) (fg, bg tcell.Color, ok bool) {
	rest, found := strings.CutPrefix(scope, scopePrefix)
	if !found {
		return tcell.ColorDefault, tcell.ColorDefault, false
	}
	f, b, found := strings.Cut(rest, ".")
	if !found {
		return tcell.ColorDefault, tcell.ColorDefault, false
	}
	return screen.ParseColorTag(f), screen.ParseColorTag(b), true
}

// Unwrap joins soft-wrapped lines back together and drops continuation
// markers, giving the text as the program printed it.
func Unwrap(text string) string {
	text = strings.ReplaceAll(text, Continuation+"\n", "")
	return strings.ReplaceAll(text, Continuation, "")
}
