package render

import (
	"image/color"
	"slices"
	"testing"
)

var testPalette = []color.RGBA{
	{R: 255, G: 255, B: 0, A: 255},
	{R: 255, G: 182, B: 193, A: 255},
	{R: 46, G: 139, B: 87, A: 255},
}

func TestFillPaletteClampsOutOfRange(t *testing.T) {
	buf := make([]byte, 3*4)
	fillPaletteRGBA(buf, []uint8{0, 1, 9}, testPalette)
	want := []byte{255, 255, 0, 255, 255, 182, 193, 255, 46, 139, 87, 255}
	if !slices.Equal(buf, want) {
		t.Fatalf("got %v, expected %v", buf, want)
	}

	fillPaletteRGBA(buf, []uint8{0, 1, 2}, nil)
	if !slices.Equal(buf, make([]byte, 12)) {
		t.Fatalf("empty palette should clear buffer, got %v", buf)
	}
}

func TestPaletteImageScalesCells(t *testing.T) {
	img := PaletteImage([]uint8{0, 1, 2, 0}, 2, 2, testPalette, 3)
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Fatalf("unexpected bounds %v", b)
	}
	checks := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, testPalette[0]},
		{2, 2, testPalette[0]},
		{3, 0, testPalette[1]},
		{5, 2, testPalette[1]},
		{0, 3, testPalette[2]},
		{5, 5, testPalette[0]},
	}
	for _, c := range checks {
		if got := img.RGBAAt(c.x, c.y); got != c.want {
			t.Fatalf("pixel (%d,%d) = %v, expected %v", c.x, c.y, got, c.want)
		}
	}
}

func TestHistoryMaskNormalizes(t *testing.T) {
	mask := HistoryMask([]uint32{0, 2, 4}, nil)
	if !slices.Equal(mask, []float32{0, 0.5, 1}) {
		t.Fatalf("unexpected mask %v", mask)
	}
	mask = HistoryMask([]uint32{0, 0}, mask)
	if !slices.Equal(mask, []float32{0, 0}) {
		t.Fatalf("all-zero history should give zero mask, got %v", mask)
	}

	buf := make([]byte, 8)
	FillMaskRGBA(buf, []float32{0, 1}, color.RGBA{R: 200, G: 100, B: 40})
	if !slices.Equal(buf[:4], []byte{0, 0, 0, 0}) {
		t.Fatalf("zero intensity should be transparent, got %v", buf[:4])
	}
	if buf[4] != 200 || buf[5] != 100 || buf[6] != 40 || buf[7] != 140 {
		t.Fatalf("full intensity pixel = %v", buf[4:])
	}
}
