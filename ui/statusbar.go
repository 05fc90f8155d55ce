package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"termview/config"
)

// StatusBar shows the terminal title on the left and the scroll state on
// the right.
type StatusBar struct {
	Title   string
	Message string // temporary status message
	Rows    int    // buffer rows
	Below   int    // rows below the viewport
	Exited  bool
	Theme   *config.ColorScheme
}

func NewStatusBar() *StatusBar {
	return &StatusBar{Title: config.DefaultTitle}
}

// right is the text aligned to the right edge.
func (s *StatusBar) right() string {
	state := "LIVE"
	if s.Exited {
		state = "EXITED"
	} else if s.Below > 0 {
		state = fmt.Sprintf("↑ %d", s.Below)
	}
	return fmt.Sprintf("%d lines │ %s ", s.Rows, state)
}

func (s *StatusBar) Render(scr tcell.Screen, x, y, width, height int) {
	theme := s.Theme
	if theme == nil {
		theme = config.Themes["monokai"]
	}
	style := tcell.StyleDefault.Background(theme.StatusBarBg).Foreground(theme.StatusBarFg)
	titleStyle := tcell.StyleDefault.Background(theme.TitleBg).Foreground(theme.TitleFg).Bold(true)

	for cx := x; cx < x+width; cx++ {
		scr.SetContent(cx, y, ' ', nil, style)
	}

	col := x
	put := func(text string, st tcell.Style) {
		for _, ch := range text {
			w := runewidth.RuneWidth(ch)
			if w == 0 || col+w > x+width {
				continue
			}
			scr.SetContent(col, y, ch, nil, st)
			col += w
		}
	}

	put(" "+s.Title+" ", titleStyle)
	put(" ", style)
	if s.Message != "" {
		put(s.Message, style)
		return
	}

	right := s.right()
	start := x + width - runewidth.StringWidth(right)
	if start > col+2 {
		col = start
		put(right, style)
	}
}
