package grammar

import "grammar-ca/internal/core"

// GridReader is the read-only view handed to the matcher and to viewers.
type GridReader interface {
	Dimensions() (int, int)
	Get(x, y int) (Cell, bool)
	Category(p core.Point) (Category, bool)
}

// Grid stores W*H cells in row-major order. Live bits for every cell share a
// single backing slice, words per cell.
type Grid struct {
	bounds core.Bounds
	cats   []Category
	ages   []int
	words  int
	live   []uint64
}

// NewGrid allocates a grid filled with fill, age 0 and every live bit set.
// rules sizes the per-cell liveness mask.
func NewGrid(w, h, rules int, fill Category) *Grid {
	b := core.NewBounds(w, h)
	words := maskWords(rules)
	g := &Grid{
		bounds: b,
		cats:   make([]Category, b.Len()),
		ages:   make([]int, b.Len()),
		words:  words,
		live:   make([]uint64, b.Len()*words),
	}
	g.Fill(fill)
	return g
}

// Dimensions returns width and height.
func (g *Grid) Dimensions() (int, int) { return g.bounds.W, g.bounds.H }

// Bounds returns the grid geometry.
func (g *Grid) Bounds() core.Bounds { return g.bounds }

// In reports whether p addresses a cell.
func (g *Grid) In(p core.Point) bool { return g.bounds.In(p) }

func (g *Grid) mask(i int) LiveMask {
	return LiveMask(g.live[i*g.words : (i+1)*g.words : (i+1)*g.words])
}

// Get returns a copy of the cell at (x, y), false when out of bounds.
func (g *Grid) Get(x, y int) (Cell, bool) {
	p := core.Point{X: x, Y: y}
	if !g.bounds.In(p) {
		return Cell{}, false
	}
	i := g.bounds.Index(p)
	live := make(LiveMask, g.words)
	copy(live, g.mask(i))
	return Cell{Category: g.cats[i], Age: g.ages[i], Live: live}, true
}

// Category returns only the category at p, without copying the mask.
func (g *Grid) Category(p core.Point) (Category, bool) {
	if !g.bounds.In(p) {
		return 0, false
	}
	return g.cats[g.bounds.Index(p)], true
}

// Set overwrites the cell at (x, y). It reports false and changes nothing when
// out of bounds. Only the engine calls Set; it keeps the index in step.
func (g *Grid) Set(x, y int, c Cell) bool {
	p := core.Point{X: x, Y: y}
	if !g.bounds.In(p) {
		return false
	}
	i := g.bounds.Index(p)
	g.cats[i] = c.Category
	g.ages[i] = c.Age
	m := g.mask(i)
	if c.Live == nil {
		m.SetAll()
		return true
	}
	for w := range m {
		m[w] = 0
	}
	copy(m, c.Live)
	return true
}

// AgeAll advances every cell's age by one tick.
func (g *Grid) AgeAll() {
	for i := range g.ages {
		g.ages[i]++
	}
}

// ResetAges zeroes every age.
func (g *Grid) ResetAges() {
	for i := range g.ages {
		g.ages[i] = 0
	}
}

// Fill reinitializes every cell to c, age 0, fully live.
func (g *Grid) Fill(c Category) {
	for i := range g.cats {
		g.cats[i] = c
		g.ages[i] = 0
	}
	for i := range g.live {
		g.live[i] = ^uint64(0)
	}
}

// IsLive reports whether rule n may still start at p.
func (g *Grid) IsLive(p core.Point, n int) bool {
	if !g.bounds.In(p) {
		return false
	}
	return g.mask(g.bounds.Index(p)).IsLive(n)
}

// Kill marks rule n as not worth scanning from p.
func (g *Grid) Kill(p core.Point, n int) {
	if !g.bounds.In(p) {
		return
	}
	g.mask(g.bounds.Index(p)).Kill(n)
}

// SetFullyLive sets every rule bit at p and resets its age.
func (g *Grid) SetFullyLive(p core.Point) {
	if !g.bounds.In(p) {
		return
	}
	i := g.bounds.Index(p)
	g.mask(i).SetAll()
	g.ages[i] = 0
}

// Categories copies every category into dst as display bytes, growing dst
// when needed.
func (g *Grid) Categories(dst []uint8) []uint8 {
	if cap(dst) < len(g.cats) {
		dst = make([]uint8, len(g.cats))
	}
	dst = dst[:len(g.cats)]
	for i, c := range g.cats {
		dst[i] = uint8(c)
	}
	return dst
}

// Ages copies every age into dst, growing dst when needed.
func (g *Grid) Ages(dst []int) []int {
	if cap(dst) < len(g.ages) {
		dst = make([]int, len(g.ages))
	}
	dst = dst[:len(g.ages)]
	copy(dst, g.ages)
	return dst
}
