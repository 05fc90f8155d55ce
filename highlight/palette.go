package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"

	"termview/render"
)

// Palette resolves terminal highlight scopes to tcell styles. The sixteen
// ANSI colors are taken from a chroma style so the terminal matches the
// editor theme; other colors pass through.
type Palette struct {
	Name string
	ANSI [16]tcell.Color
	FG   tcell.Color
	BG   tcell.Color
}

// Token types that stand in for each of the eight base ANSI colors, tried
// in order.
var ansiTokens = [8][]chroma.TokenType{
	{chroma.Background},
	{chroma.GenericDeleted, chroma.NameTag, chroma.Error},
	{chroma.LiteralString, chroma.GenericInserted},
	{chroma.NameFunction, chroma.LiteralNumber},
	{chroma.Keyword, chroma.NameBuiltin},
	{chroma.KeywordConstant, chroma.NameClass},
	{chroma.NameBuiltin, chroma.Operator},
	{chroma.Text},
}

var defaultANSI = [16]tcell.Color{
	tcell.ColorBlack, tcell.ColorMaroon, tcell.ColorGreen, tcell.ColorOlive,
	tcell.ColorNavy, tcell.ColorPurple, tcell.ColorTeal, tcell.ColorSilver,
	tcell.ColorGray, tcell.ColorRed, tcell.ColorLime, tcell.ColorYellow,
	tcell.ColorBlue, tcell.ColorFuchsia, tcell.ColorAqua, tcell.ColorWhite,
}

// NewPalette derives a palette from the named chroma style. An empty or
// unknown name gives the plain xterm colors.
func NewPalette(name string) *Palette {
	p := &Palette{
		Name: name,
		ANSI: defaultANSI,
		FG:   tcell.ColorDefault,
		BG:   tcell.ColorDefault,
	}
	if name == "" {
		return p
	}
	sty, ok := styles.Registry[name]
	if !ok || sty == nil {
		return p
	}

	bgEntry := sty.Get(chroma.Background)
	if bgEntry.Background.IsSet() {
		p.BG = toTcell(bgEntry.Background)
	}
	if bgEntry.Colour.IsSet() {
		p.FG = toTcell(bgEntry.Colour)
	}

	for i, types := range ansiTokens {
		c, ok := firstColour(sty, i, types)
		if !ok {
			continue
		}
		p.ANSI[i] = toTcell(c)
		p.ANSI[i+8] = toTcell(c.Brighten(0.2))
	}
	return p
}

func firstColour(sty *chroma.Style, index int, types []chroma.TokenType) (chroma.Colour, bool) {
	for _, t := range types {
		e := sty.Get(t)
		// Black is the background; every other slot uses a foreground.
		c := e.Colour
		if index == 0 {
			c = e.Background
		}
		if c.IsSet() {
			return c, true
		}
	}
	return 0, false
}

func toTcell(c chroma.Colour) tcell.Color {
	return tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
}

// Color maps the ANSI palette indices to the palette's colors.
func (p *Palette) Color(c tcell.Color) tcell.Color {
	if c == tcell.ColorDefault || c.IsRGB() {
		return c
	}
	if n := int(c &^ tcell.ColorValid); n >= 0 && n < len(p.ANSI) {
		return p.ANSI[n]
	}
	return c
}

// Base is the style of uncolored terminal text.
func (p *Palette) Base() tcell.Style {
	return tcell.StyleDefault.Foreground(p.FG).Background(p.BG)
}

// Style resolves a region scope such as "term.1.default". Scopes that do
// not come from the terminal resolve to the base style.
func (p *Palette) Style(scope string) tcell.Style {
	fg, bg, ok := render.ParseScope(scope)
	if !ok {
		return p.Base()
	}
	st := p.Base()
	if fg != tcell.ColorDefault {
		st = st.Foreground(p.Color(fg))
	}
	if bg != tcell.ColorDefault {
		st = st.Background(p.Color(bg))
	}
	return st
}
