//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"epi-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the legend and parameter panel to the right of the simulation
// view. Parameters are fixed for a run, so the panel is read-only.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int
	title      string

	snapshot core.ParameterSnapshot
	legend   []core.LegendEntry
	status   string

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.title = buildTitle(sim)
	return h
}

// Update refreshes the cached legend, status line and parameter snapshot.
func (h *HUD) Update() {
	if h == nil {
		return
	}
	if provider, ok := h.sim.(core.ParameterProvider); ok {
		h.snapshot = provider.Parameters()
	}
	if provider, ok := h.sim.(core.LegendProvider); ok {
		h.legend = provider.Legend()
	}
	h.status = buildStatus(h.sim)
}

// Draw paints the HUD panel anchored at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height < minPanelHeight {
		height = minPanelHeight
	}
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawContents()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func buildTitle(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Simulation"
	}
	name := sim.Name()
	return strings.ToUpper(name[:1]) + name[1:]
}

func buildStatus(sim core.Sim) string {
	var parts []string
	if tp, ok := sim.(core.TurnProvider); ok {
		parts = append(parts, fmt.Sprintf("turn %d", tp.Turn()))
	}
	if ep, ok := sim.(core.ErrProvider); ok && ep.Err() != nil {
		parts = append(parts, "halted")
	} else if fp, ok := sim.(core.Finisher); ok && fp.Done() {
		parts = append(parts, "done")
	}
	return strings.Join(parts, " - ")
}

func (h *HUD) drawContents() {
	face := basicfont.Face7x13
	bright := color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dim := color.RGBA{R: 160, G: 160, B: 170, A: 255}

	y := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, y, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	if h.status != "" {
		y += lineHeight
		text.Draw(h.panel, h.status, face, panelPadding, y, dim)
	}

	if len(h.legend) > 0 {
		y += sectionGap
		for _, entry := range h.legend {
			y += lineHeight
			h.drawSwatch(image.Rect(panelPadding, y-swatchSize, panelPadding+swatchSize, y), entry.Color)
			text.Draw(h.panel, entry.Label, face, panelPadding+swatchSize+swatchGap, y, bright)
			h.drawRight(strconv.FormatFloat(entry.Value, 'f', 2, 64), y, bright)
		}
	}

	for _, group := range h.snapshot.Groups {
		y += sectionGap + lineHeight
		header := group.Name
		if group.Summary != "" {
			header += " (" + group.Summary + ")"
		}
		text.Draw(h.panel, header, face, panelPadding, y, dim)
		for _, p := range group.Params {
			y += lineHeight
			if y > h.lastHeight-panelPadding {
				return
			}
			text.Draw(h.panel, p.Label, face, panelPadding, y, bright)
			h.drawRight(p.Value, y, bright)
		}
	}
}

func (h *HUD) drawRight(value string, y int, col color.Color) {
	face := basicfont.Face7x13
	bounds := text.BoundString(face, value)
	text.Draw(h.panel, value, face, h.width-panelPadding-bounds.Dx(), y, col)
}

func (h *HUD) drawSwatch(rect image.Rectangle, c color.RGBA) {
	if h.pixel == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(c)
	h.panel.DrawImage(h.pixel, op)
}

const (
	panelPadding   = 12
	lineHeight     = 18
	sectionGap     = 10
	headerBaseline = 18
	swatchSize     = 12
	swatchGap      = 8
	minPanelHeight = 480
)
