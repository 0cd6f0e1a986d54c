package grammar

import (
	"math"

	"grammar-ca/internal/core"
)

// Viewport describes an output surface the grid is drawn onto. The grid is
// stretched to Fill of the surface on each axis and centered; Fill outside
// (0, 1] means the whole surface.
type Viewport struct {
	Width, Height float64
	Fill          float64
}

func (v Viewport) fill() float64 {
	if v.Fill <= 0 || v.Fill > 1 {
		return 1
	}
	return v.Fill
}

// Drawn returns the rectangle the grid occupies on the surface.
func (v Viewport) Drawn() (left, top, width, height float64) {
	f := v.fill()
	width, height = v.Width*f, v.Height*f
	return (v.Width - width) / 2, (v.Height - height) / 2, width, height
}

// CellAt translates (vx, vy), measured from the surface's top-left corner,
// into the coordinate of a w*h grid. Positions in the margin or outside the
// surface report false.
func (v Viewport) CellAt(w, h int, vx, vy float64) (core.Point, bool) {
	if v.Width <= 0 || v.Height <= 0 || w <= 0 || h <= 0 {
		return core.Point{}, false
	}
	left, top, drawnW, drawnH := v.Drawn()
	fx := (vx - left) / drawnW
	fy := (vy - top) / drawnH
	if fx < 0 || fy < 0 || fx >= 1 || fy >= 1 {
		return core.Point{}, false
	}
	p := core.Point{X: int(math.Floor(fx * float64(w))), Y: int(math.Floor(fy * float64(h)))}
	return p, core.NewBounds(w, h).In(p)
}
