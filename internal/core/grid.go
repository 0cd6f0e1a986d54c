package core

// Point addresses a single cell by column and row.
type Point struct {
	X, Y int
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Dirs lists the four cardinal offsets in a fixed order: up, right, down, left.
var Dirs = [4]Point{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// Bounds describes a row-major grid of W*H cells. Coordinates outside the
// bounds never wrap; callers treat them as "no cell".
type Bounds struct {
	W, H int
}

// NewBounds clamps non-positive dimensions to 1.
func NewBounds(w, h int) Bounds {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return Bounds{W: w, H: h}
}

// In reports whether p lies on the grid.
func (b Bounds) In(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.W && p.Y < b.H
}

// Index returns the linear slice index for p. The result is only meaningful
// when In(p) holds.
func (b Bounds) Index(p Point) int { return p.Y*b.W + p.X }

// At converts a linear index back into a Point.
func (b Bounds) At(i int) Point { return Point{X: i % b.W, Y: i / b.W} }

// Len returns the number of cells.
func (b Bounds) Len() int { return b.W * b.H }
