package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestStoreTrimmedShiftsLaterAnchors(t *testing.T) {
	s := NewStore()
	img := solid(1, 1, color.White)
	s.Add(2, Placement{Image: img, Cols: 1, Rows: 1})
	s.Add(5, Placement{Image: img, Cols: 1, Rows: 1})
	s.Add(9, Placement{Image: img, Cols: 1, Rows: 1})

	s.Trimmed(0, 4)
	if s.Len() != 2 {
		t.Fatalf("expected the image on row 2 to be dropped, have %d", s.Len())
	}
	if _, ok := s.At(1); !ok {
		t.Fatalf("expected row 5 image to move to row 1")
	}
	if _, ok := s.At(5); !ok {
		t.Fatalf("expected row 9 image to move to row 5")
	}
}

func TestStoreTailTrimKeepsEarlierAnchors(t *testing.T) {
	s := NewStore()
	img := solid(1, 1, color.White)
	s.Add(1, Placement{Image: img, Cols: 1, Rows: 1})
	s.Add(7, Placement{Image: img, Cols: 1, Rows: 1})
	s.Trimmed(6, 10)
	if _, ok := s.At(1); !ok || s.Len() != 1 {
		t.Fatalf("expected only the row 1 image to survive, have %d", s.Len())
	}
}

func TestStoreVisibleIncludesImagesReachingIn(t *testing.T) {
	s := NewStore()
	img := solid(1, 1, color.White)
	s.Add(2, Placement{Image: img, Cols: 1, Rows: 4})
	s.Add(10, Placement{Image: img, Cols: 1, Rows: 1})
	s.Add(20, Placement{Image: img, Cols: 1, Rows: 1})
	got := s.Visible(4, 11)
	if len(got) != 2 || got[0] != 2 || got[1] != 10 {
		t.Fatalf("unexpected visible anchors %v", got)
	}
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(3, 2, color.White)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, format, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 3 {
		t.Fatalf("unexpected decode result %s %v", format, img.Bounds())
	}
	if _, _, err := Decode([]byte("hi")); err == nil {
		t.Fatalf("expected an error for a non-image payload")
	}
}

func TestLayoutLandscapeFillsWidth(t *testing.T) {
	cols, rows := Layout(image.NewRGBA(image.Rect(0, 0, 1600, 900)), 120, 80)
	if cols != 120 || rows != 34 {
		t.Fatalf("expected 120x34, got %dx%d", cols, rows)
	}
}

func TestLayoutPortraitFillsHeight(t *testing.T) {
	cols, rows := Layout(image.NewRGBA(image.Rect(0, 0, 900, 1600)), 120, 40)
	if rows != 40 || cols != 45 {
		t.Fatalf("expected 45x40, got %dx%d", cols, rows)
	}
}

func TestCellsUseTopAndBottomPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	cells := Cells(Placement{Image: img, Cols: 1, Rows: 1}, tcell.ColorDefault)
	if len(cells) != 1 || len(cells[0]) != 1 {
		t.Fatalf("unexpected grid %v", cells)
	}
	fg, bg, _ := cells[0][0].Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) || bg != tcell.NewRGBColor(0, 0, 255) {
		t.Fatalf("unexpected colors %v %v", fg, bg)
	}
}

func TestQuantizeLimitsPalette(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(2, 0, color.RGBA{0, 0, 255, 255})
	img.Set(3, 0, color.RGBA{255, 255, 255, 255})
	p, ok := Quantize(img, 2).(*image.Paletted)
	if !ok {
		t.Fatalf("expected a paletted image")
	}
	if len(p.Palette) > 2 {
		t.Fatalf("expected at most 2 colors, got %d", len(p.Palette))
	}
}

func TestBlendOverBackgroundTransparentPixel(t *testing.T) {
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	out := blendOverBackground(color.NRGBA{R: 200, G: 100, B: 50, A: 0}, bg)
	if out != bg {
		t.Fatalf("expected fully transparent pixel to resolve to bg %v, got %v", bg, out)
	}
}

func TestBlendOverBackgroundPartialAlpha(t *testing.T) {
	bg := color.RGBA{R: 0, G: 0, B: 0, A: 255}
	out := blendOverBackground(color.NRGBA{R: 255, G: 0, B: 0, A: 128}, bg)
	if out.R < 126 || out.R > 129 || out.G != 0 || out.B != 0 || out.A != 255 {
		t.Fatalf("unexpected blend result: %+v", out)
	}
}
