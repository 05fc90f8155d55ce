package ui

import (
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"termview/buffer"
	"termview/config"
	"termview/highlight"
	"termview/images"
	"termview/render"
)

// View draws a terminal buffer: text from the scroll position down, with
// region colors resolved through the palette and inline images drawn over
// the rows they are anchored to.
type View struct {
	Buf     *buffer.Buffer
	Palette *highlight.Palette
	Images  *images.Store
	Theme   *config.ColorScheme

	focused    bool
	x, y, w, h int

	selecting bool
	anchor    buffer.Cursor

	imgCache map[image.Image][][]tcell.Style
	cacheBG  tcell.Color
}

func NewView(buf *buffer.Buffer, palette *highlight.Palette, store *images.Store) *View {
	return &View{
		Buf:      buf,
		Palette:  palette,
		Images:   store,
		imgCache: make(map[image.Image][][]tcell.Style),
	}
}

func (v *View) theme() *config.ColorScheme {
	if v.Theme == nil {
		return config.Themes["monokai"]
	}
	return v.Theme
}

// base is the style of uncolored text. The palette wins over the theme
// when it defines its own colors.
func (v *View) base() tcell.Style {
	th := v.theme()
	fg, bg := th.Foreground, th.Background
	if v.Palette != nil {
		if v.Palette.FG != tcell.ColorDefault {
			fg = v.Palette.FG
		}
		if v.Palette.BG != tcell.ColorDefault {
			bg = v.Palette.BG
		}
	}
	return tcell.StyleDefault.Foreground(fg).Background(bg)
}

func (v *View) scopeStyle(base tcell.Style, scope string) tcell.Style {
	if v.Palette == nil {
		return base
	}
	fg, bg, _ := v.Palette.Style(scope).Decompose()
	st := base
	if fg != tcell.ColorDefault {
		st = st.Foreground(fg)
	}
	if bg != tcell.ColorDefault {
		st = st.Background(bg)
	}
	return st
}

// Rows is the number of buffer rows the view shows.
func (v *View) Rows() int {
	return v.h
}

func (v *View) Render(scr tcell.Screen, x, y, width, height int) {
	v.x, v.y, v.w, v.h = x, y, width, height
	v.Buf.SetHeight(height)
	base := v.base()
	top := v.Buf.ScrollY()

	for i := 0; i < height; i++ {
		v.drawRow(scr, top+i, y+i, base)
	}
	v.drawImages(scr, top, base)

	caret, ok := v.Buf.Caret()
	if !v.focused || !ok || caret.Line < top || caret.Line >= top+height {
		scr.HideCursor()
		return
	}
	cx := runewidth.StringWidth(string([]rune(v.Buf.Line(caret.Line))[:min(caret.Col, v.Buf.LineLen(caret.Line))]))
	if cx >= width {
		scr.HideCursor()
		return
	}
	scr.ShowCursor(x+cx, y+caret.Line-top)
}

func (v *View) drawRow(scr tcell.Screen, row, sy int, base tcell.Style) {
	regions := v.Buf.RegionsOnLine(row)
	sel := v.Buf.Selection
	hasSel := sel != nil && !sel.Empty()

	col := 0
	sx := v.x
	var prevX int
	end := v.x + v.w
	for _, r := range v.Buf.Line(row) {
		pos := buffer.Cursor{Line: row, Col: col}
		col++
		if string(r) == render.Continuation {
			continue
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			// Combining marks join the previous cell.
			if sx > v.x {
				mainc, comb, st, _ := scr.GetContent(prevX, sy)
				scr.SetContent(prevX, sy, mainc, append(comb, r), st)
			}
			continue
		}
		if sx+rw > end {
			break
		}
		st := base
		for _, reg := range regions {
			if !pos.Before(reg.Start) && pos.Before(reg.End) {
				st = v.scopeStyle(base, reg.Scope)
			}
		}
		if hasSel && sel.Contains(pos) && pos.Before(sel.End) {
			st = st.Reverse(true)
		}
		scr.SetContent(sx, sy, r, nil, st)
		prevX = sx
		sx += rw
	}
	for ; sx < end; sx++ {
		scr.SetContent(sx, sy, ' ', nil, base)
	}
}

func (v *View) drawImages(scr tcell.Screen, top int, base tcell.Style) {
	if v.Images == nil {
		return
	}
	_, bg, _ := base.Decompose()
	if bg != v.cacheBG {
		v.imgCache = make(map[image.Image][][]tcell.Style)
		v.cacheBG = bg
	}
	for _, anchor := range v.Images.Visible(top, top+v.h) {
		p, ok := v.Images.At(anchor)
		if !ok {
			continue
		}
		cells, ok := v.imgCache[p.Image]
		if !ok {
			cells = images.Cells(p, bg)
			v.imgCache[p.Image] = cells
		}
		for i, line := range cells {
			sy := anchor + i - top
			if sy < 0 || sy >= v.h {
				continue
			}
			for j, st := range line {
				if j >= v.w {
					break
				}
				scr.SetContent(v.x+j, v.y+sy, images.HalfBlock, nil, st)
			}
		}
	}
}

// ScrollBy moves the view n rows down (up when negative), never past the
// point where the last row sits at the bottom.
func (v *View) ScrollBy(n int) {
	maxY := max(v.Buf.RowCount()-max(v.h, 1), 0)
	v.Buf.SetScrollY(min(max(v.Buf.ScrollY()+n, 0), maxY))
}

// mouseToBuffer maps a screen cell to a buffer position.
func (v *View) mouseToBuffer(mx, my int) (buffer.Cursor, bool) {
	if my < v.y || my >= v.y+v.h || mx < v.x {
		return buffer.Cursor{}, false
	}
	row := v.Buf.ScrollY() + my - v.y
	if row >= v.Buf.RowCount() {
		row = v.Buf.RowCount() - 1
	}
	target := mx - v.x
	col, w := 0, 0
	for _, r := range v.Buf.Line(row) {
		rw := runewidth.RuneWidth(r)
		if w+rw > target {
			break
		}
		w += rw
		col++
	}
	return buffer.Cursor{Line: row, Col: col}, true
}

// HandleMouse scrolls with the wheel and selects with button one. It
// returns true when a drag selection has just finished.
func (v *View) HandleMouse(ev *tcell.EventMouse) bool {
	mx, my := ev.Position()
	switch btn := ev.Buttons(); {
	case btn&tcell.WheelUp != 0:
		v.ScrollBy(-3)
	case btn&tcell.WheelDown != 0:
		v.ScrollBy(3)
	case btn&tcell.Button1 != 0:
		pos, ok := v.mouseToBuffer(mx, my)
		if !ok {
			return false
		}
		if !v.selecting {
			v.selecting = true
			v.anchor = pos
		}
		s := buffer.NewSelection(v.anchor, pos)
		v.Buf.Selection = &s
	case btn == tcell.ButtonNone:
		if v.selecting {
			v.selecting = false
			return v.Buf.GetSelectedText() != ""
		}
	}
	return false
}

func (v *View) IsFocused() bool   { return v.focused }
func (v *View) SetFocused(f bool) { v.focused = f }
