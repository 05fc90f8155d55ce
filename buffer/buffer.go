package buffer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	ErrReadOnly   = errors.New("buffer is read-only")
	ErrOutOfRange = errors.New("position out of range")
)

// Region is a named span of text carrying a style scope. Regions move
// with edits the way an editor's highlight regions do.
type Region struct {
	Start, End Cursor
	Scope      string
}

func (r Region) Empty() bool {
	return r.Start.Equal(r.End)
}

// Buffer is a line-oriented text buffer. Columns are rune indices.
type Buffer struct {
	Lines     []string
	Selection *Selection // nil = no caret
	ReadOnly  bool

	regions map[string]*Region
	scrollY int
	height  int
}

func NewBuffer() *Buffer {
	return &Buffer{
		Lines:   []string{""},
		regions: make(map[string]*Region),
		height:  24,
	}
}

// NewBufferFromText is mostly useful in tests.
func NewBufferFromText(text string) *Buffer {
	b := NewBuffer()
	b.Lines = strings.Split(text, "\n")
	return b
}

// Reset empties the buffer and drops every region, the selection and the
// scroll position.
func (b *Buffer) Reset() {
	b.Lines = []string{""}
	b.regions = make(map[string]*Region)
	b.Selection = nil
	b.scrollY = 0
}

func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// runeOffset converts a rune column into a byte offset within line.
func runeOffset(line string, col int) int {
	if col <= 0 {
		return 0
	}
	i := 0
	for off := range line {
		if i == col {
			return off
		}
		i++
	}
	return len(line)
}

func (b *Buffer) RowCount() int {
	return len(b.Lines)
}

func (b *Buffer) Line(row int) string {
	if row < 0 || row >= len(b.Lines) {
		return ""
	}
	return b.Lines[row]
}

func (b *Buffer) LineLen(row int) int {
	return RuneLen(b.Line(row))
}

// End returns the position just past the last character.
func (b *Buffer) End() Cursor {
	last := len(b.Lines) - 1
	return Cursor{Line: last, Col: RuneLen(b.Lines[last])}
}

func (b *Buffer) String() string {
	return strings.Join(b.Lines, "\n")
}

func (b *Buffer) validate(pos Cursor) error {
	if pos.Line < 0 || pos.Line >= len(b.Lines) || pos.Col < 0 || pos.Col > RuneLen(b.Lines[pos.Line]) {
		return fmt.Errorf("%w: %s", ErrOutOfRange, pos)
	}
	return nil
}

// InsertAt inserts text (which may contain newlines) at pos.
func (b *Buffer) InsertAt(pos Cursor, text string) error {
	if b.ReadOnly {
		return ErrReadOnly
	}
	if err := b.validate(pos); err != nil {
		return err
	}
	if len(text) == 0 {
		return nil
	}

	line := b.Lines[pos.Line]
	off := runeOffset(line, pos.Col)
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		b.Lines[pos.Line] = line[:off] + text + line[off:]
	} else {
		rest := line[off:]
		b.Lines[pos.Line] = line[:off] + lines[0]

		newLines := make([]string, len(lines)-1)
		copy(newLines, lines[1:])
		newLines[len(newLines)-1] += rest

		after := make([]string, len(b.Lines)-pos.Line-1)
		copy(after, b.Lines[pos.Line+1:])
		b.Lines = append(b.Lines[:pos.Line+1], newLines...)
		b.Lines = append(b.Lines, after...)
	}

	end := posAfterInsert(pos, lines)
	b.adjust(func(p Cursor, isEnd bool) Cursor {
		return shiftForInsert(p, pos, end, isEnd)
	})
	return nil
}

func posAfterInsert(pos Cursor, lines []string) Cursor {
	if len(lines) == 1 {
		return Cursor{Line: pos.Line, Col: pos.Col + RuneLen(lines[0])}
	}
	return Cursor{
		Line: pos.Line + len(lines) - 1,
		Col:  RuneLen(lines[len(lines)-1]),
	}
}

// shiftForInsert moves p to account for text inserted at pos ending at
// end. Region ends sitting exactly on the insertion point stay put so
// appending after a region does not grow it.
func shiftForInsert(p, pos, end Cursor, isEnd bool) Cursor {
	if p.Before(pos) || (isEnd && p.Equal(pos)) {
		return p
	}
	if p.Line == pos.Line {
		return Cursor{Line: end.Line, Col: end.Col + p.Col - pos.Col}
	}
	return Cursor{Line: p.Line + end.Line - pos.Line, Col: p.Col}
}

// Erase removes the text between start and end.
func (b *Buffer) Erase(start, end Cursor) error {
	if b.ReadOnly {
		return ErrReadOnly
	}
	if err := b.validate(start); err != nil {
		return err
	}
	if err := b.validate(end); err != nil {
		return err
	}
	if end.Before(start) {
		start, end = end, start
	}
	if start.Equal(end) {
		return nil
	}

	first := b.Lines[start.Line]
	last := b.Lines[end.Line]
	b.Lines[start.Line] = first[:runeOffset(first, start.Col)] + last[runeOffset(last, end.Col):]
	b.Lines = append(b.Lines[:start.Line+1], b.Lines[end.Line+1:]...)

	b.adjust(func(p Cursor, _ bool) Cursor {
		return shiftForErase(p, start, end)
	})
	return nil
}

func shiftForErase(p, start, end Cursor) Cursor {
	switch {
	case !start.Before(p):
		return p
	case p.Before(end):
		return start
	case p.Line == end.Line:
		return Cursor{Line: start.Line, Col: start.Col + p.Col - end.Col}
	default:
		return Cursor{Line: p.Line - (end.Line - start.Line), Col: p.Col}
	}
}

// ReplaceLine swaps the content of row for text (which should not contain
// newlines).
func (b *Buffer) ReplaceLine(row int, text string) error {
	if row < 0 || row >= len(b.Lines) {
		return fmt.Errorf("%w: row %d", ErrOutOfRange, row)
	}
	if b.Lines[row] == text {
		return nil
	}
	if err := b.Erase(Cursor{Line: row}, Cursor{Line: row, Col: b.LineLen(row)}); err != nil {
		return err
	}
	return b.InsertAt(Cursor{Line: row}, text)
}

// EraseLines removes rows [from, to) including their line breaks. The
// buffer always keeps at least one (possibly empty) row.
func (b *Buffer) EraseLines(from, to int) error {
	if from < 0 {
		from = 0
	}
	if to > len(b.Lines) {
		to = len(b.Lines)
	}
	if from >= to {
		return nil
	}
	switch {
	case to < len(b.Lines):
		return b.Erase(Cursor{Line: from}, Cursor{Line: to})
	case from > 0:
		return b.Erase(Cursor{Line: from - 1, Col: b.LineLen(from - 1)}, b.End())
	default:
		return b.Erase(Cursor{}, b.End())
	}
}

func (b *Buffer) GetTextInRange(start, end Cursor) string {
	if start.Line < 0 || start.Line >= len(b.Lines) || end.Line < 0 || end.Line >= len(b.Lines) {
		return ""
	}
	if end.Before(start) {
		start, end = end, start
	}
	if start.Line == end.Line {
		line := b.Lines[start.Line]
		return line[runeOffset(line, start.Col):runeOffset(line, end.Col)]
	}
	var sb strings.Builder
	firstLine := b.Lines[start.Line]
	sb.WriteString(firstLine[runeOffset(firstLine, start.Col):])
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.Lines[i])
	}
	sb.WriteByte('\n')
	lastLine := b.Lines[end.Line]
	sb.WriteString(lastLine[:runeOffset(lastLine, end.Col)])
	return sb.String()
}

// GetSelectedText returns the selected text, or "" without a selection.
func (b *Buffer) GetSelectedText() string {
	if b.Selection == nil || b.Selection.Empty() {
		return ""
	}
	return b.GetTextInRange(b.Selection.Start, b.Selection.End)
}

// adjust rewrites every region endpoint and the selection after an edit.
func (b *Buffer) adjust(move func(p Cursor, isEnd bool) Cursor) {
	for _, r := range b.regions {
		r.Start = move(r.Start, false)
		r.End = move(r.End, true)
		if r.End.Before(r.Start) {
			r.End = r.Start
		}
	}
	if b.Selection != nil {
		s := NewSelection(move(b.Selection.Start, false), move(b.Selection.End, true))
		b.Selection = &s
	}
}

func (b *Buffer) AddRegion(key string, start, end Cursor, scope string) {
	if end.Before(start) {
		start, end = end, start
	}
	b.regions[key] = &Region{Start: start, End: end, Scope: scope}
}

func (b *Buffer) RemoveRegion(key string) {
	delete(b.regions, key)
}

func (b *Buffer) Region(key string) (Region, bool) {
	r, ok := b.regions[key]
	if !ok {
		return Region{}, false
	}
	return *r, true
}

func (b *Buffer) RegionCount() int {
	return len(b.regions)
}

// RegionsOnLine returns the non-empty regions overlapping row, ordered by
// start column.
func (b *Buffer) RegionsOnLine(row int) []Region {
	var out []Region
	for _, r := range b.regions {
		if r.Empty() || r.Start.Line > row || r.End.Line < row {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// SetCursor collapses the selection to a single caret at pos.
func (b *Buffer) SetCursor(pos Cursor) {
	b.Selection = &Selection{Start: pos, End: pos}
}

func (b *Buffer) ClearSelection() {
	b.Selection = nil
}

// Caret returns the caret position when the selection is a single point.
func (b *Buffer) Caret() (Cursor, bool) {
	if b.Selection == nil || !b.Selection.Empty() {
		return Cursor{}, false
	}
	return b.Selection.Start, true
}

func (b *Buffer) ScrollY() int {
	return b.scrollY
}

func (b *Buffer) SetScrollY(y int) {
	if y > len(b.Lines)-1 {
		y = len(b.Lines) - 1
	}
	if y < 0 {
		y = 0
	}
	b.scrollY = y
}

// Height is the number of rows the viewport shows.
func (b *Buffer) Height() int {
	return b.height
}

func (b *Buffer) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	b.height = h
}
