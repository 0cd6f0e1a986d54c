//go:build ebiten

package ui

import (
	"image/color"

	"grammar-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the sim's parameter snapshot in a translucent panel in the
// top-left corner. H toggles it, tab expands the per-rule counters.
type HUD struct {
	p        core.ParameterProvider
	show     bool
	rules    bool
	snapshot core.ParameterSnapshot
	pixel    *ebiten.Image
}

// NewHUD constructs a HUD reading from p.
func NewHUD(p core.ParameterProvider) *HUD {
	h := &HUD{p: p, show: true}
	h.pixel = ebiten.NewImage(1, 1)
	h.pixel.Fill(color.White)
	return h
}

// Update refreshes the cached parameter snapshot and handles toggles.
func (h *HUD) Update() {
	if h == nil {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		h.show = !h.show
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		h.rules = !h.rules
	}
	h.snapshot = h.p.Parameters()
}

// Draw paints the panel.
func (h *HUD) Draw(screen *ebiten.Image) {
	if h == nil || !h.show {
		return
	}
	var lines []string
	if h.rules {
		lines = StatusLines(h.snapshot)
	} else {
		lines = StatusLines(h.snapshot, "Rules")
	}
	if len(lines) == 0 {
		return
	}
	face := basicfont.Face7x13
	width := 0
	for _, l := range lines {
		if w := text.BoundString(face, l).Dx(); w > width {
			width = w
		}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(width+2*panelPadding), float64(len(lines)*lineHeight+2*panelPadding))
	op.ColorScale.ScaleWithColor(color.RGBA{R: 16, G: 16, B: 20, A: 200})
	screen.DrawImage(h.pixel, op)

	for i, l := range lines {
		text.Draw(screen, l, face, panelPadding, panelPadding+i*lineHeight+labelBaseline, color.RGBA{R: 220, G: 220, B: 230, A: 255})
	}
}

const (
	panelPadding  = 8
	lineHeight    = 15
	labelBaseline = 11
)
