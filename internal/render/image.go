package render

import (
	"image"
	"image/color"
)

// PaletteImage renders a w*h grid of palette indices into an RGBA image,
// drawing each cell as a scale×scale block.
func PaletteImage(cells []uint8, w, h int, palette []color.RGBA, scale int) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	if len(cells) != w*h {
		return img
	}
	row := make([]byte, 4*w)
	for y := 0; y < h; y++ {
		fillPaletteRGBA(row, cells[y*w:(y+1)*w], palette)
		for sy := 0; sy < scale; sy++ {
			off := img.PixOffset(0, y*scale+sy)
			line := img.Pix[off : off+4*w*scale]
			for x := 0; x < w; x++ {
				px := row[x*4 : x*4+4]
				for sx := 0; sx < scale; sx++ {
					copy(line[(x*scale+sx)*4:], px)
				}
			}
		}
	}
	return img
}
