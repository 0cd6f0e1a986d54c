//go:build ebiten

package ui

import (
	"image/color"

	"grammar-ca/internal/core"
	"grammar-ca/internal/grammar"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// Inspector outlines the cell under the cursor and prints its readout along
// the bottom edge of the screen.
type Inspector struct {
	d       Describer
	w, h    int
	show    bool
	hover   core.Point
	hovered bool
	pixel   *ebiten.Image
}

// NewInspector constructs an inspector for a w*h grid.
func NewInspector(d Describer, w, h int) *Inspector {
	o := &Inspector{d: d, w: w, h: h, show: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles visibility with I and records the hovered cell.
func (o *Inspector) Update(p core.Point, ok bool) {
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		o.show = !o.show
	}
	o.hover, o.hovered = p, ok
}

// Draw renders the outline and readout.
func (o *Inspector) Draw(screen *ebiten.Image, v grammar.Viewport) {
	if !o.show {
		return
	}
	if o.hovered && o.w > 0 && o.h > 0 {
		left, top, dw, dh := v.Drawn()
		cw, ch := dw/float64(o.w), dh/float64(o.h)
		x := left + float64(o.hover.X)*cw
		y := top + float64(o.hover.Y)*ch
		o.drawFrame(screen, x, y, cw, ch, color.RGBA{R: 255, G: 210, B: 40, A: 255})
	}
	line := HoverLine(o.d, o.hover, o.hovered)
	face := basicfont.Face7x13
	y := screen.Bounds().Dy() - 6
	text.Draw(screen, line, face, 7, y+1, color.Black)
	text.Draw(screen, line, face, 6, y, color.RGBA{R: 230, G: 230, B: 240, A: 255})
}

func (o *Inspector) drawFrame(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	t := 1.0
	if w > 8 {
		t = 2
	}
	o.drawRect(screen, x, y, w, t, col)
	o.drawRect(screen, x, y+h-t, w, t, col)
	o.drawRect(screen, x, y, t, h, col)
	o.drawRect(screen, x+w-t, y, t, h, col)
}

func (o *Inspector) drawRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
