package images

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
)

// HalfBlock is the glyph used for every image cell: the top pixel is the
// foreground and the bottom pixel the background.
const HalfBlock = '▀'

// Cells renders p into a Rows x Cols grid of styles for HalfBlock cells.
// Transparent pixels are blended over bg.
func Cells(p Placement, bg tcell.Color) [][]tcell.Style {
	if p.Image == nil || p.Cols < 1 || p.Rows < 1 {
		return nil
	}
	b := p.Image.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW < 1 || srcH < 1 {
		return nil
	}
	back := toRGBA(bg)

	out := make([][]tcell.Style, p.Rows)
	pseudoH := p.Rows * 2
	for cy := 0; cy < p.Rows; cy++ {
		topY := min(b.Min.Y+(cy*2)*srcH/pseudoH, b.Max.Y-1)
		botY := min(b.Min.Y+(cy*2+1)*srcH/pseudoH, b.Max.Y-1)
		row := make([]tcell.Style, p.Cols)
		for cx := 0; cx < p.Cols; cx++ {
			srcX := min(b.Min.X+cx*srcW/p.Cols, b.Max.X-1)
			top := blendOverBackground(p.Image.At(srcX, topY), back)
			bot := blendOverBackground(p.Image.At(srcX, botY), back)
			row[cx] = tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
		}
		out[cy] = row
	}
	return out
}

func toRGBA(c tcell.Color) color.RGBA {
	if c == tcell.ColorDefault {
		return color.RGBA{0, 0, 0, 255}
	}
	r, g, b := c.RGB()
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}
