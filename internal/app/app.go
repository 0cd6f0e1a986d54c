//go:build ebiten

package app

import (
	"time"

	"grammar-ca/internal/grammar"
	"grammar-ca/internal/render"
	"grammar-ca/internal/sims/rewrite"
	"grammar-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a rewrite sim to the ebiten.Game interface.
type Game struct {
	sim       *rewrite.Sim
	painter   *render.GridPainter
	inspector *ui.Inspector
	hud       *ui.HUD

	fill     float64
	outW     int
	outH     int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation. fill is the share of
// the window the grid occupies.
func New(sim *rewrite.Sim, fill float64, seed int64) *Game {
	size := sim.Size()
	gp := render.NewGridPainter(size.W, size.H)
	gp.HighlightTicks = 8
	return &Game{
		sim:       sim,
		painter:   gp,
		inspector: ui.NewInspector(sim, size.W, size.H),
		hud:       ui.NewHUD(sim),
		fill:      fill,
		seed:      seed,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
}

func (g *Game) viewport() grammar.Viewport {
	return grammar.Viewport{Width: float64(g.outW), Height: float64(g.outH), Fill: g.fill}
}

// Update handles per-frame logic and advances the simulation one tick unless
// paused or converged.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
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

	mx, my := ebiten.CursorPosition()
	p, ok := g.sim.View().CellAt(g.viewport(), float64(mx), float64(my))
	g.inspector.Update(p, ok)

	if (!g.paused && !g.sim.Converged()) || g.tickOnce {
		g.sim.Step()
		g.tickOnce = false
	}
	g.hud.Update()
	return nil
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	frame := g.sim.View().Snapshot()
	g.painter.Blit(screen, g.viewport(), frame.Categories, frame.Ages, g.sim.Palette())
	g.inspector.Draw(screen, g.viewport())
	g.hud.Draw(screen)
}

// Layout uses the window size as the logical screen. Ages restart whenever
// the window is resized.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outW || outsideHeight != g.outH {
		g.outW, g.outH = outsideWidth, outsideHeight
		g.sim.ResetAges()
	}
	return outsideWidth, outsideHeight
}
