//go:build ebiten

package ui

import (
	"image/color"

	"epi-ca/internal/core"
	"epi-ca/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type historyProvider interface {
	History() []uint32
}

// Overlay draws optional debugging visuals on top of the base simulation.
type Overlay struct {
	sim         core.Sim
	scale       int
	showHistory bool
	maskImg     *ebiten.Image
	maskBuf     []byte
	mask        []float32
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	return &Overlay{sim: sim, scale: scale}
}

// Update toggles the history heat map with the H key.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.showHistory = !o.showHistory
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.showHistory {
		return
	}
	provider, ok := o.sim.(historyProvider)
	if !ok {
		return
	}
	size := o.sim.Size()
	total := size.W * size.H
	if total == 0 {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != size.W || o.maskImg.Bounds().Dy() != size.H {
		o.maskImg = ebiten.NewImage(size.W, size.H)
	}
	if len(o.maskBuf) != 4*total {
		o.maskBuf = make([]byte, 4*total)
	}
	history := provider.History()
	if len(history) != total {
		return
	}
	o.mask = render.HistoryMask(history, o.mask)
	render.FillMaskRGBA(o.maskBuf, o.mask, color.RGBA{R: 64, G: 64, B: 223})
	o.maskImg.WritePixels(o.maskBuf)

	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(o.maskImg, op)
}
