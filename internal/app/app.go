//go:build ebiten

package app

import (
	"image/color"
	"time"

	"epi-ca/internal/core"
	"epi-ca/internal/render"
	"epi-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

var fallbackPalette = []color.RGBA{
	{A: 255},
	{R: 255, G: 255, B: 255, A: 255},
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	stepper *core.FixedStep

	palette []color.RGBA

	scale    int
	hudWidth int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation. Turns advance at tps
// while the window itself refreshes at the ebiten tick rate.
func New(sim core.Sim, cfg *Config) *Game {
	gp := render.NewGridPainter(sim.Size().W, sim.Size().H)
	palette := fallbackPalette
	if p, ok := sim.(paletteProvider); ok {
		palette = p.Palette()
	}
	return &Game{
		sim:      sim,
		painter:  gp,
		hud:      ui.NewHUD(sim, cfg.HUDWidth),
		overlay:  ui.NewOverlay(sim, cfg.Scale),
		stepper:  core.NewFixedStep(cfg.TPS),
		palette:  palette,
		scale:    cfg.Scale,
		hudWidth: cfg.HUDWidth,
		seed:     effectiveSeed(sim, cfg.Seed),
	}
}

// Reset reinitializes the simulation state with the provided seed. The seed
// the sim settles on is kept for the next same-seed reset.
func (g *Game) Reset(seed int64) {
	g.seed = reseed(g.sim, seed)
	g.tickOnce = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	g.overlay.Update()

	if ep, ok := g.sim.(core.ErrProvider); ok && ep.Err() != nil {
		return ep.Err()
	}
	if !g.finished() {
		if g.tickOnce || (!g.paused && g.stepper.ShouldStep()) {
			g.sim.Step()
		}
	}
	g.tickOnce = false

	g.hud.Update()
	return nil
}

func (g *Game) finished() bool {
	f, ok := g.sim.(core.Finisher)
	return ok && f.Done()
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hudWidth, s.H * g.scale
}
