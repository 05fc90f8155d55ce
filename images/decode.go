package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/soniakeys/quant/median"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// cellAspect is the width/height ratio of a terminal cell.
const cellAspect = 0.5

// Decode reads an inline image payload in any registered format.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode inline image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, "", fmt.Errorf("decode inline image: empty %s", format)
	}
	return img, format, nil
}

// Layout fits img into at most maxCols x maxRows cells keeping its aspect
// ratio. Landscape images fill the width and portrait images fill the
// height unless that overflows the other axis.
func Layout(img image.Image, maxCols, maxRows int) (cols, rows int) {
	if img == nil || maxCols < 1 || maxRows < 1 {
		return 0, 0
	}
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW < 1 || srcH < 1 {
		return 0, 0
	}
	aspect := float64(srcW) / float64(srcH)

	if srcW >= srcH {
		cols = maxCols
		rows = int(math.Round(float64(cols) * cellAspect / aspect))
		if rows > maxRows {
			rows = maxRows
			cols = int(math.Round(float64(rows) * aspect / cellAspect))
		}
	} else {
		rows = maxRows
		cols = int(math.Round(float64(rows) * aspect / cellAspect))
		if cols > maxCols {
			cols = maxCols
			rows = int(math.Round(float64(cols) * cellAspect / aspect))
		}
	}
	cols = min(max(cols, 1), maxCols)
	rows = min(max(rows, 1), maxRows)
	return cols, rows
}

// Quantize reduces img to at most n colors for screens without true
// color. Images already within budget come back unchanged.
func Quantize(img image.Image, n int) image.Image {
	if img == nil || n < 2 || n > 256 {
		return img
	}
	if p, ok := img.(*image.Paletted); ok && len(p.Palette) <= n {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	paletted := median.Quantizer(n).Paletted(rgba)
	draw.Draw(paletted, b, rgba, b.Min, draw.Over)
	return paletted
}

func blendOverBackground(src color.Color, bg color.RGBA) color.RGBA {
	c := color.NRGBAModel.Convert(src).(color.NRGBA)
	if c.A == 255 {
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	if c.A == 0 {
		return bg
	}
	a := uint32(c.A)
	inv := uint32(255 - c.A)
	return color.RGBA{
		R: uint8((uint32(c.R)*a + uint32(bg.R)*inv + 127) / 255),
		G: uint8((uint32(c.G)*a + uint32(bg.G)*inv + 127) / 255),
		B: uint8((uint32(c.B)*a + uint32(bg.B)*inv + 127) / 255),
		A: 255,
	}
}
