//go:build ebiten

package render

import (
	"image/color"

	"grammar-ca/internal/grammar"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter keeps one RGBA image per grid and uploads category bytes into
// it every frame.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte

	// HighlightTicks is the age window passed to Highlight; zero disables it.
	HighlightTicks int
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Blit uploads cells and stretches them over the rectangle v leaves for the
// grid on dst. ages may be nil.
func (gp *GridPainter) Blit(dst *ebiten.Image, v grammar.Viewport, cells []uint8, ages []int, palette []color.RGBA) {
	if len(cells) != gp.w*gp.h {
		return
	}
	FillPalette(gp.buf, cells, palette)
	if len(ages) == len(cells) {
		Highlight(gp.buf, ages, gp.HighlightTicks)
	}
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	left, top, w, h := v.Drawn()
	op.GeoM.Scale(w/float64(gp.w), h/float64(gp.h))
	op.GeoM.Translate(left, top)
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
