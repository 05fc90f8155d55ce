package screen

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

func (e *Emulator) processCSI() {
	if len(e.csiBuf) == 0 {
		return
	}
	final := e.csiBuf[len(e.csiBuf)-1]
	params := string(e.csiBuf[:len(e.csiBuf)-1])
	if final != 'h' && final != 'l' && strings.ContainsAny(params, "<=>?") {
		return
	}

	// A pending wrap is cancelled by any cursor motion.
	if e.curCol >= e.cols && final != 'm' {
		e.curCol = e.cols - 1
	}

	switch final {
	case 'm': // SGR
		e.processSGR(params)
	case 'A': // Cursor up
		e.curRow -= parseParam(params, 1)
		e.clampCursor()
	case 'B': // Cursor down
		e.curRow += parseParam(params, 1)
		e.clampCursor()
	case 'C': // Cursor forward
		e.curCol += parseParam(params, 1)
		e.clampCursor()
	case 'D': // Cursor back
		e.curCol -= parseParam(params, 1)
		e.clampCursor()
	case 'E': // Cursor next line
		e.curRow += parseParam(params, 1)
		e.curCol = 0
		e.clampCursor()
	case 'F': // Cursor previous line
		e.curRow -= parseParam(params, 1)
		e.curCol = 0
		e.clampCursor()
	case 'G', '`': // Cursor horizontal absolute
		e.curCol = parseParam(params, 1) - 1
		e.clampCursor()
	case 'd': // Cursor vertical absolute
		e.curRow = parseParam(params, 1) - 1
		e.clampCursor()
	case 'H', 'f': // Cursor position
		row, col := parseParamPair(params, 1, 1)
		e.curRow = row - 1
		e.curCol = col - 1
		e.clampCursor()
	case 'J': // Erase display
		e.eraseDisplay(parseParam(params, 0))
	case 'K': // Erase line
		e.eraseLine(parseParam(params, 0))
	case 'r': // Set scroll region
		top, bot := parseParamPair(params, 1, e.rows)
		if top < 1 {
			top = 1
		}
		if bot > e.rows {
			bot = e.rows
		}
		if top < bot {
			e.scrollTop = top - 1
			e.scrollBot = bot - 1
			e.curRow, e.curCol = 0, 0
		}
	case 'L': // Insert lines
		if e.curRow >= e.scrollTop && e.curRow <= e.scrollBot {
			top := e.scrollTop
			e.scrollTop = e.curRow
			for i := parseParam(params, 1); i > 0; i-- {
				e.scrollDown()
			}
			e.scrollTop = top
		}
	case 'M': // Delete lines
		if e.curRow >= e.scrollTop && e.curRow <= e.scrollBot {
			top := e.scrollTop
			e.scrollTop = e.curRow
			for i := parseParam(params, 1); i > 0; i-- {
				e.scrollUp(false)
			}
			e.scrollTop = top
		}
	case 'S': // Scroll up N lines
		for i := parseParam(params, 1); i > 0; i-- {
			e.scrollUp(false)
		}
	case 'T': // Scroll down N lines
		for i := parseParam(params, 1); i > 0; i-- {
			e.scrollDown()
		}
	case 'h', 'l': // Set/reset mode
		e.processMode(params, final == 'h')
	case 's': // Save cursor position (ANSI)
		e.saveCursor()
	case 'u': // Restore cursor position (ANSI)
		e.restoreCursor()
	case 'n': // Device status report
		if parseParam(params, 0) == 6 {
			e.respond(fmt.Sprintf("\x1b[%d;%dR", e.curRow+1, e.curCol+1))
		}
	case 'P': // Delete chars
		n := parseParam(params, 1)
		row := e.cells[e.curRow]
		for i := e.curCol; i < e.cols; i++ {
			if i+n < e.cols {
				row[i] = row[i+n]
			} else {
				row[i] = Cell{Char: " "}
			}
		}
		e.markDirty(e.curRow)
	case '@': // Insert chars
		n := parseParam(params, 1)
		row := e.cells[e.curRow]
		for i := e.cols - 1; i >= e.curCol+n; i-- {
			row[i] = row[i-n]
		}
		for i := e.curCol; i < e.curCol+n && i < e.cols; i++ {
			row[i] = Cell{Char: " "}
		}
		e.markDirty(e.curRow)
	case 'X': // Erase chars
		n := parseParam(params, 1)
		for i := e.curCol; i < e.curCol+n && i < e.cols; i++ {
			e.cells[e.curRow][i] = e.blankCell()
		}
		e.markDirty(e.curRow)
	}
}

func (e *Emulator) processMode(params string, set bool) {
	// Only DEC private modes (prefixed with ?) are handled
	if !strings.HasPrefix(params, "?") {
		return
	}
	for _, code := range splitParams(params[1:]) {
		switch code {
		case 1: // DECCKM - application cursor keys
			e.mode.AppCursorKeys = set
		case 25: // DECTCEM - cursor visibility
			e.hidden = !set
		case 47, 1047: // Alternate screen buffer
			if set {
				e.enterAltScreen()
			} else {
				e.exitAltScreen()
			}
		case 1049: // Alternate screen buffer with save/restore cursor
			if set {
				e.saveCursor()
				e.enterAltScreen()
			} else {
				e.exitAltScreen()
				e.restoreCursor()
			}
		case 2004: // Bracketed paste mode
			e.mode.BracketedPaste = set
		}
	}
}

func (e *Emulator) processOSC() {
	s := string(e.oscBuf)
	// OSC format: "code;content"
	idx := strings.IndexByte(s, ';')
	if idx < 0 {
		return
	}
	code := s[:idx]
	content := s[idx+1:]
	switch code {
	case "0", "1", "2": // Window title / icon name
		e.title = content
	case "1337":
		e.processInlineImage(content)
	}
}

// processInlineImage handles the iTerm2 "File=[args]:base64" payload.
func (e *Emulator) processInlineImage(content string) {
	if e.onImage == nil || !strings.HasPrefix(content, "File=") {
		return
	}
	colon := strings.IndexByte(content, ':')
	if colon < 0 {
		return
	}
	args := content[len("File="):colon]
	if !strings.Contains(args, "inline=1") {
		return
	}
	data, err := base64.StdEncoding.DecodeString(content[colon+1:])
	if err != nil {
		return
	}
	height := e.onImage(len(e.history)+e.curRow, data)
	e.curCol = 0
	for i := 0; i < height; i++ {
		e.lineFeed()
	}
}

func (e *Emulator) processSGR(params string) {
	if params == "" {
		e.pen = pen{}
		return
	}

	codes := splitParams(params)
	for i := 0; i < len(codes); i++ {
		c := codes[i]
		switch {
		case c == 0:
			e.pen = pen{}
		case c == 7:
			e.pen.reverse = true
		case c == 27:
			e.pen.reverse = false
		case c >= 30 && c <= 37:
			e.pen.fg = ansiColor(c - 30)
		case c == 38:
			if col, skip := extendedColor(codes[i+1:]); skip > 0 {
				e.pen.fg = col
				i += skip
			}
		case c == 39:
			e.pen.fg = tcell.ColorDefault
		case c >= 40 && c <= 47:
			e.pen.bg = ansiColor(c - 40)
		case c == 48:
			if col, skip := extendedColor(codes[i+1:]); skip > 0 {
				e.pen.bg = col
				i += skip
			}
		case c == 49:
			e.pen.bg = tcell.ColorDefault
		case c >= 90 && c <= 97:
			e.pen.fg = ansiBrightColor(c - 90)
		case c >= 100 && c <= 107:
			e.pen.bg = ansiBrightColor(c - 100)
		}
	}
}

// extendedColor parses the tail of a 38/48 sequence ("5;n" or "2;r;g;b")
// and returns the color and how many params it consumed.
func extendedColor(rest []int) (tcell.Color, int) {
	if len(rest) >= 2 && rest[0] == 5 {
		return tcell.PaletteColor(rest[1] & 0xff), 2
	}
	if len(rest) >= 4 && rest[0] == 2 {
		return tcell.NewRGBColor(int32(rest[1]), int32(rest[2]), int32(rest[3])), 4
	}
	return tcell.ColorDefault, 0
}

// blankCell is what erase operations leave behind: a space carrying the
// current background.
func (e *Emulator) blankCell() Cell {
	return Cell{Char: " ", BG: e.pen.bg}
}

func (e *Emulator) clearCells(row, from, to int) {
	for j := from; j < to && j < e.cols; j++ {
		e.cells[row][j] = e.blankCell()
	}
	e.markDirty(row)
}

func (e *Emulator) eraseDisplay(mode int) {
	switch mode {
	case 0: // Below
		e.clearCells(e.curRow, e.curCol, e.cols)
		e.wrapped[e.curRow] = false
		for i := e.curRow + 1; i < e.rows; i++ {
			e.clearCells(i, 0, e.cols)
			e.wrapped[i] = false
		}
	case 1: // Above
		e.clearCells(e.curRow, 0, e.curCol+1)
		for i := 0; i < e.curRow; i++ {
			e.clearCells(i, 0, e.cols)
			e.wrapped[i] = false
		}
	case 2, 3: // All
		for i := 0; i < e.rows; i++ {
			e.clearCells(i, 0, e.cols)
			e.wrapped[i] = false
		}
	}
}

func (e *Emulator) eraseLine(mode int) {
	switch mode {
	case 0: // Right
		e.clearCells(e.curRow, e.curCol, e.cols)
		// Erasing to end of line breaks the wrap
		e.wrapped[e.curRow] = false
	case 1: // Left
		e.clearCells(e.curRow, 0, e.curCol+1)
	case 2: // All
		e.clearCells(e.curRow, 0, e.cols)
		e.wrapped[e.curRow] = false
	}
}

// Helper functions for parsing ANSI params

func parseParam(s string, def int) int {
	n := 0
	seen := false
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			n = n*10 + int(ch-'0')
			seen = true
		}
	}
	if !seen || n == 0 {
		return def
	}
	return n
}

func parseParamPair(s string, def1, def2 int) (int, int) {
	parts := strings.Split(s, ";")
	a, b := def1, def2
	if len(parts) >= 1 && parts[0] != "" {
		a = parseParam(parts[0], def1)
	}
	if len(parts) >= 2 && parts[1] != "" {
		b = parseParam(parts[1], def2)
	}
	return a, b
}

func splitParams(s string) []int {
	parts := strings.Split(s, ";")
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		result = append(result, parseParam(p, 0))
	}
	return result
}

func ansiColor(n int) tcell.Color {
	colors := []tcell.Color{
		tcell.ColorBlack, tcell.ColorMaroon, tcell.ColorGreen, tcell.ColorOlive,
		tcell.ColorNavy, tcell.ColorPurple, tcell.ColorTeal, tcell.ColorSilver,
	}
	if n >= 0 && n < len(colors) {
		return colors[n]
	}
	return tcell.ColorWhite
}

func ansiBrightColor(n int) tcell.Color {
	colors := []tcell.Color{
		tcell.ColorGray, tcell.ColorRed, tcell.ColorLime, tcell.ColorYellow,
		tcell.ColorBlue, tcell.ColorFuchsia, tcell.ColorAqua, tcell.ColorWhite,
	}
	if n >= 0 && n < len(colors) {
		return colors[n]
	}
	return tcell.ColorWhite
}
