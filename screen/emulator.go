package screen

import (
	"io"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

type parserState int

const (
	stateNormal parserState = iota
	stateEscape
	stateCSI
	stateOSC
)

// DefaultHistoryLimit caps rows queued for scrollback when nobody drains
// them.
const DefaultHistoryLimit = 10000

type pen struct {
	fg, bg  tcell.Color
	reverse bool
}

// Emulator interprets VT/xterm output into a character grid and keeps
// track of which rows changed and which rows scrolled off the top.
type Emulator struct {
	mu sync.Mutex

	rows, cols int
	cells      [][]Cell
	wrapped    []bool // per-row: true = row soft-wrapped (no hard newline)
	curRow     int
	curCol     int
	scrollTop  int
	scrollBot  int

	// ANSI parser state
	state   parserState
	csiBuf  []byte
	oscBuf  []byte
	pending []byte // incomplete UTF-8 sequence from the previous Write
	pen     pen

	// Alternate screen buffer
	mainCells   [][]Cell
	mainWrapped []bool
	mode        Mode
	hidden      bool

	// Saved cursor state (DECSC/DECRC)
	savedRow int
	savedCol int
	savedPen pen

	title string

	dirty        map[int]uint64
	gen          uint64
	history      []Row
	historyLimit int
	dropped      uint64 // history rows discarded before being acknowledged

	response io.Writer
	onImage  func(row int, data []byte) int
}

type Option func(*Emulator)

// WithResponse sets where replies to device queries are written,
// normally the pty.
func WithResponse(w io.Writer) Option {
	return func(e *Emulator) { e.response = w }
}

// WithHistoryLimit bounds the undrained history queue.
func WithHistoryLimit(n int) Option {
	return func(e *Emulator) { e.historyLimit = n }
}

// WithImageHandler registers a callback for inline images (OSC 1337). It
// receives the row of the cursor counted from the first row not yet
// consumed as history (queued history rows plus the screen row) and the
// decoded payload, and returns how many rows the image occupies; the
// cursor is moved below it. The callback runs with the emulator locked.
func WithImageHandler(fn func(row int, data []byte) int) Option {
	return func(e *Emulator) { e.onImage = fn }
}

func NewEmulator(rows, cols int, opts ...Option) *Emulator {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	e := &Emulator{
		rows:         rows,
		cols:         cols,
		scrollBot:    rows - 1,
		dirty:        make(map[int]uint64),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cells = make([][]Cell, rows)
	for i := range e.cells {
		e.cells[i] = blankRow(cols)
	}
	e.wrapped = make([]bool, rows)
	e.markAllDirty()
	return e
}

func (e *Emulator) Size() (rows, cols int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows, e.cols
}

func (e *Emulator) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

func (e *Emulator) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Emulator) Cursor() Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursorLocked()
}

func (e *Emulator) cursorLocked() Cursor {
	x := e.curCol
	if x > e.cols {
		x = e.cols
	}
	return Cursor{X: x, Y: e.curRow, Hidden: e.hidden}
}

// Line returns a copy of screen row y.
func (e *Emulator) Line(y int) Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	if y < 0 || y >= e.rows {
		return nil
	}
	return e.rowCopy(y)
}

func (e *Emulator) rowCopy(y int) Row {
	row := make(Row, len(e.cells[y]))
	copy(row, e.cells[y])
	if e.wrapped[y] {
		for i := range row {
			row[i].Continuation = true
		}
	}
	return row
}

func (e *Emulator) markDirty(row int) {
	if row < 0 || row >= e.rows {
		return
	}
	e.gen++
	e.dirty[row] = e.gen
}

func (e *Emulator) markRangeDirty(from, to int) {
	for r := from; r <= to; r++ {
		e.markDirty(r)
	}
}

func (e *Emulator) markAllDirty() {
	e.markRangeDirty(0, e.rows-1)
}

// Snapshot implements Model.
func (e *Emulator) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &Snapshot{
		Columns: e.cols,
		Rows:    e.rows,
		Cursor:  e.cursorLocked(),
		Title:   e.title,
		Mode:    e.mode,
		Lines:   make(map[int]Row, len(e.dirty)),
		gens:    make(map[int]uint64, len(e.dirty)),
		dropped: e.dropped,
	}
	for row, gen := range e.dirty {
		s.Dirty = append(s.Dirty, row)
		s.Lines[row] = e.rowCopy(row)
		s.gens[row] = gen
	}
	sort.Ints(s.Dirty)
	if len(e.history) > 0 {
		s.History = make([]Row, len(e.history))
		copy(s.History, e.history)
	}
	return s
}

// Acknowledge implements Model. Rows written again after the snapshot
// was taken stay dirty.
func (e *Emulator) Acknowledge(s *Snapshot) {
	if s == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for row, gen := range s.gens {
		if e.dirty[row] == gen {
			delete(e.dirty, row)
		}
	}
	// Rows dropped from the front of the queue since the snapshot were
	// part of s.History and are no longer there to pop.
	n := len(s.History) - int(e.dropped-s.dropped)
	if n < 0 {
		n = 0
	}
	if n > len(e.history) {
		n = len(e.history)
	}
	e.history = e.history[n:]
	if len(e.history) == 0 {
		e.history = nil
	}
}

func (e *Emulator) Resize(rows, cols int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rows < 1 || cols < 1 || (rows == e.rows && cols == e.cols) {
		return
	}

	e.cells = resizeGrid(e.cells, rows, cols)
	if e.mainCells != nil {
		e.mainCells = resizeGrid(e.mainCells, rows, cols)
		e.mainWrapped = make([]bool, rows)
	}
	e.wrapped = make([]bool, rows)
	for r := range e.dirty {
		if r >= rows {
			delete(e.dirty, r)
		}
	}
	e.rows = rows
	e.cols = cols
	e.scrollTop = 0
	e.scrollBot = rows - 1

	if e.curRow >= rows {
		e.curRow = rows - 1
	}
	if e.curCol >= cols {
		e.curCol = cols - 1
	}
	e.markAllDirty()
}

func resizeGrid(old [][]Cell, rows, cols int) [][]Cell {
	grid := make([][]Cell, rows)
	for i := range grid {
		grid[i] = blankRow(cols)
		if i < len(old) {
			copy(grid[i], old[i])
		}
	}
	return grid
}

// Write feeds raw child output to the parser.
func (e *Emulator) Write(data []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(data)
	if len(e.pending) > 0 {
		data = append(e.pending, data...)
		e.pending = nil
	}

	i := 0
	for i < len(data) {
		b := data[i]
		switch e.state {
		case stateNormal:
			switch b {
			case 0x1b: // ESC
				e.state = stateEscape
			case '\r':
				e.curCol = 0
			case '\n', 0x0b, 0x0c:
				e.lineFeed()
			case '\b':
				if e.curCol >= e.cols {
					e.curCol = e.cols - 1
				}
				if e.curCol > 0 {
					e.curCol--
				}
			case '\t':
				next := ((e.curCol / 8) + 1) * 8
				if next >= e.cols {
					next = e.cols - 1
				}
				e.curCol = next
			case 0x07: // BEL - ignore
			case 0x00, 0x0e, 0x0f: // NUL, SO, SI - ignore
			default:
				if b < 0x20 {
					break
				}
				if b >= 0x80 && !utf8.FullRune(data[i:]) {
					e.pending = append([]byte(nil), data[i:]...)
					return n, nil
				}
				r, size := utf8.DecodeRune(data[i:])
				if r != utf8.RuneError || size > 1 {
					e.putChar(r)
				}
				i += size - 1 // -1 because loop increments
			}
		case stateEscape:
			switch b {
			case '[':
				e.state = stateCSI
				e.csiBuf = e.csiBuf[:0]
			case ']':
				e.state = stateOSC
				e.oscBuf = e.oscBuf[:0]
			case '(', ')':
				// Charset designation, skip next byte
				i++
				e.state = stateNormal
			case 'D': // Index
				e.index()
				e.state = stateNormal
			case 'E': // Next line
				e.curCol = 0
				e.lineFeed()
				e.state = stateNormal
			case 'M': // Reverse index
				e.reverseIndex()
				e.state = stateNormal
			case '7': // DECSC - save cursor
				e.saveCursor()
				e.state = stateNormal
			case '8': // DECRC - restore cursor
				e.restoreCursor()
				e.state = stateNormal
			case 'c': // RIS
				e.reset()
				e.state = stateNormal
			default:
				e.state = stateNormal
			}
		case stateCSI:
			e.csiBuf = append(e.csiBuf, b)
			if b >= 0x40 && b <= 0x7e {
				e.processCSI()
				e.state = stateNormal
			}
		case stateOSC:
			if b == 0x07 || b == 0x1b {
				// End of OSC sequence (BEL or ESC \)
				if b == 0x1b && i+1 < len(data) && data[i+1] == '\\' {
					i++
				}
				e.processOSC()
				e.state = stateNormal
			} else {
				e.oscBuf = append(e.oscBuf, b)
			}
		}
		i++
	}
	return n, nil
}

func (e *Emulator) WriteString(s string) (int, error) {
	return e.Write([]byte(s))
}

func (e *Emulator) currentCell(ch string) Cell {
	fg, bg := e.pen.fg, e.pen.bg
	if e.pen.reverse {
		fg, bg = bg, fg
		if fg == tcell.ColorDefault {
			fg = tcell.ColorBlack
		}
		if bg == tcell.ColorDefault {
			bg = tcell.ColorSilver
		}
	}
	return Cell{Char: ch, FG: fg, BG: bg}
}

func (e *Emulator) putChar(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		e.combine(r)
		return
	}
	if e.curCol+w > e.cols {
		if w > e.cols {
			return
		}
		// Mark current row as soft-wrapped
		e.wrapped[e.curRow] = true
		e.markDirty(e.curRow)
		e.curCol = 0
		e.index()
	}
	e.cells[e.curRow][e.curCol] = e.currentCell(string(r))
	if w == 2 {
		e.cells[e.curRow][e.curCol+1] = e.currentCell("")
	}
	e.markDirty(e.curRow)
	e.curCol += w
}

// combine appends a zero-width rune to the character left of the cursor.
func (e *Emulator) combine(r rune) {
	col := e.curCol - 1
	if col >= e.cols {
		col = e.cols - 1
	}
	for col > 0 && e.cells[e.curRow][col].Char == "" {
		col--
	}
	if col < 0 {
		return
	}
	e.cells[e.curRow][col].Char += string(r)
	e.markDirty(e.curRow)
}

// lineFeed is an explicit newline: the current row ends hard.
func (e *Emulator) lineFeed() {
	if e.wrapped[e.curRow] {
		e.wrapped[e.curRow] = false
		e.markDirty(e.curRow)
	}
	e.index()
}

func (e *Emulator) index() {
	if e.curRow == e.scrollBot {
		e.scrollUp(true)
	} else if e.curRow < e.rows-1 {
		e.curRow++
	}
}

func (e *Emulator) reverseIndex() {
	if e.curRow == e.scrollTop {
		e.scrollDown()
	} else if e.curRow > 0 {
		e.curRow--
	}
}

// scrollUp shifts the scroll region up one row. When keep is set and the
// region starts at the top of the main screen, the evicted row is queued
// as history.
func (e *Emulator) scrollUp(keep bool) {
	if keep && !e.mode.AltScreen && e.scrollTop == 0 {
		e.history = append(e.history, e.rowCopy(0))
		if e.historyLimit > 0 && len(e.history) > e.historyLimit {
			over := len(e.history) - e.historyLimit
			e.dropped += uint64(over)
			e.history = e.history[over:]
		}
	}

	for i := e.scrollTop; i < e.scrollBot; i++ {
		e.cells[i] = e.cells[i+1]
		e.wrapped[i] = e.wrapped[i+1]
	}
	e.cells[e.scrollBot] = blankRow(e.cols)
	e.wrapped[e.scrollBot] = false
	e.markRangeDirty(e.scrollTop, e.scrollBot)
}

func (e *Emulator) scrollDown() {
	for i := e.scrollBot; i > e.scrollTop; i-- {
		e.cells[i] = e.cells[i-1]
		e.wrapped[i] = e.wrapped[i-1]
	}
	e.cells[e.scrollTop] = blankRow(e.cols)
	e.wrapped[e.scrollTop] = false
	e.markRangeDirty(e.scrollTop, e.scrollBot)
}

func (e *Emulator) saveCursor() {
	e.savedRow = e.curRow
	e.savedCol = e.curCol
	e.savedPen = e.pen
}

func (e *Emulator) restoreCursor() {
	e.curRow = e.savedRow
	e.curCol = e.savedCol
	e.pen = e.savedPen
	e.clampCursor()
}

func (e *Emulator) clampCursor() {
	if e.curRow < 0 {
		e.curRow = 0
	}
	if e.curRow >= e.rows {
		e.curRow = e.rows - 1
	}
	if e.curCol < 0 {
		e.curCol = 0
	}
	if e.curCol >= e.cols {
		e.curCol = e.cols - 1
	}
}

func (e *Emulator) enterAltScreen() {
	if e.mode.AltScreen {
		return
	}
	e.mainCells = e.cells
	e.mainWrapped = e.wrapped
	e.cells = make([][]Cell, e.rows)
	for i := range e.cells {
		e.cells[i] = blankRow(e.cols)
	}
	e.wrapped = make([]bool, e.rows)
	e.mode.AltScreen = true
	e.scrollTop = 0
	e.scrollBot = e.rows - 1
	e.markAllDirty()
}

func (e *Emulator) exitAltScreen() {
	if !e.mode.AltScreen {
		return
	}
	e.cells = e.mainCells
	e.wrapped = e.mainWrapped
	e.mainCells = nil
	e.mainWrapped = nil
	e.mode.AltScreen = false
	e.scrollTop = 0
	e.scrollBot = e.rows - 1
	e.markAllDirty()
}

func (e *Emulator) reset() {
	for i := range e.cells {
		e.cells[i] = blankRow(e.cols)
		e.wrapped[i] = false
	}
	e.mainCells = nil
	e.mainWrapped = nil
	e.mode = Mode{}
	e.hidden = false
	e.pen = pen{}
	e.curRow, e.curCol = 0, 0
	e.scrollTop = 0
	e.scrollBot = e.rows - 1
	e.markAllDirty()
}

// Invalidate marks every row dirty and drops queued history, so the next
// render repaints the visible screen from scratch.
func (e *Emulator) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dropped += uint64(len(e.history))
	e.history = nil
	e.markAllDirty()
}

func (e *Emulator) respond(s string) {
	if e.response != nil {
		e.response.Write([]byte(s))
	}
}
