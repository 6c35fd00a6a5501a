package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/icza/mjpeg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"epi-ca/internal/render"
	"epi-ca/internal/sims/epidemic"
)

// VideoWriter appends one MJPEG frame per observed turn to an AVI file.
type VideoWriter struct {
	aw      mjpeg.AviWriter
	size    int
	scale   int
	caption bool
	opts    jpeg.Options
	buf     bytes.Buffer
	frames  int
}

// NewVideoWriter creates path and prepares an AVI stream for a size×size
// grid drawn at scale pixels per cell.
func NewVideoWriter(path string, size, scale, fps int) (*VideoWriter, error) {
	if scale <= 0 {
		scale = 1
	}
	if fps <= 0 {
		fps = 20
	}
	aw, err := mjpeg.New(path, int32(size*scale), int32(size*scale), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &VideoWriter{
		aw:      aw,
		size:    size,
		scale:   scale,
		caption: size*scale >= 64,
		opts:    jpeg.Options{Quality: 90},
	}, nil
}

// ObserveTurn encodes the frame's grid as a JPEG and appends it.
func (v *VideoWriter) ObserveTurn(f epidemic.Frame) error {
	if f.Size != v.size {
		return fmt.Errorf("%w: frame %d, video %d", epidemic.ErrSizeMismatch, f.Size, v.size)
	}
	img := FrameImage(f, v.scale, v.caption)
	v.buf.Reset()
	if err := jpeg.Encode(&v.buf, img, &v.opts); err != nil {
		return err
	}
	if err := v.aw.AddFrame(v.buf.Bytes()); err != nil {
		return err
	}
	v.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (v *VideoWriter) Frames() int { return v.frames }

// Close finalizes the AVI index.
func (v *VideoWriter) Close() error { return v.aw.Close() }

// FrameImage renders a frame with the fixed state palette, optionally
// captioned with the turn number.
func FrameImage(f epidemic.Frame, scale int, caption bool) *image.RGBA {
	img := render.PaletteImage(f.Cells, f.Size, f.Size, epidemic.Palette(), scale)
	if caption {
		drawLabel(img, 4, 14, fmt.Sprintf("turn %d", f.Turn))
	}
	return img
}

func drawLabel(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}
