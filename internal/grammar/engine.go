package grammar

import (
	"errors"
	"fmt"
	"slices"

	"grammar-ca/internal/core"
	"grammar-ca/internal/logging"
)

// ErrBadPath is returned by Apply for a path that does not fit the rule or
// the grid. Nothing is written when it is returned.
var ErrBadPath = errors.New("path does not fit rule")

// TickResult describes what one Tick did. Applied false means no rule
// matched anywhere: the grid has converged under the current rule set.
type TickResult struct {
	Tick    int
	Applied bool
	// Rule is the index of the applied rule, -1 when nothing was applied.
	Rule int
	Path []core.Point
	// Matches counts the candidate matches the applied rule had this tick.
	Matches int
	// Scanned counts live candidates handed to the matcher across all rules.
	Scanned int
}

// Stats summarizes a run so far.
type Stats struct {
	Ticks     int
	Rewrites  int
	Fired     []int
	Converged bool
}

// Frame is a copy of the grid taken between ticks for viewers that live
// outside the engine's goroutine.
type Frame struct {
	Tick       int
	Width      int
	Height     int
	Categories []uint8
	Ages       []int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the randomness used for direction shuffles, match choice
// and noise seeding.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine owns the grid and its category index and is the only code path that
// mutates either. It is not safe for concurrent use; callers serialize Tick
// and reads.
type Engine struct {
	rules *RuleSet
	grid  *Grid
	index *Index
	rng   Rand
	log   logging.Logger

	ticks     int
	rewrites  int
	fired     []int
	converged bool

	matches [][]core.Point
}

// NewEngine builds a w*h grid filled with fill for the given rule set.
func NewEngine(rules *RuleSet, w, h int, fill Category, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		grid:  NewGrid(w, h, rules.Len(), fill),
		rng:   core.NewRNG(1),
		log:   logging.Nop(),
		fired: make([]int, rules.Len()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.index = NewIndex(e.grid)
	return e
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() *RuleSet { return e.rules }

// Grid returns a read-only view of the grid.
func (e *Engine) Grid() GridReader { return e.grid }

// Dimensions returns the grid width and height.
func (e *Engine) Dimensions() (int, int) { return e.grid.Dimensions() }

// Get returns the cell at (x, y), false when out of bounds.
func (e *Engine) Get(x, y int) (Cell, bool) { return e.grid.Get(x, y) }

// Count returns how many cells currently hold c.
func (e *Engine) Count(c Category) int { return e.index.Count(c) }

// Tick performs one rewrite attempt: age every cell, then walk the rules in
// priority order and commit one randomly chosen match of the first rule that
// has any.
func (e *Engine) Tick() TickResult {
	e.ticks++
	e.grid.AgeAll()
	res := TickResult{Tick: e.ticks, Rule: -1}

	for i := 0; i < e.rules.Len(); i++ {
		r := e.rules.At(i)
		cands := e.index.Candidates(r.Head())
		if len(cands) == 0 {
			continue
		}
		matches := e.matches[:0]
		for _, c := range cands {
			if !e.grid.IsLive(c, r.Index) {
				continue
			}
			res.Scanned++
			if path, ok := Search(e.grid, c, r, e.rng); ok {
				matches = append(matches, path)
				continue
			}
			if !CanStart(e.grid, c, r) {
				e.grid.Kill(c, r.Index)
			}
		}
		e.matches = matches
		if len(matches) == 0 {
			continue
		}
		chosen := matches[e.rng.IntN(len(matches))]
		e.apply(r, chosen)
		clear(e.matches)
		res.Applied = true
		res.Rule = r.Index
		res.Path = chosen
		res.Matches = len(matches)
		return res
	}

	if !e.converged {
		e.log.Infof("converged after %d ticks, %d rewrites", e.ticks, e.rewrites)
	}
	e.converged = true
	return res
}

// Apply rewrites path with rule after checking the path is a straight
// cardinal line that still holds the rule's left-hand side. Tick commits through the same write path.
func (e *Engine) Apply(rule int, path []core.Point) error {
	if rule < 0 || rule >= e.rules.Len() {
		return fmt.Errorf("%w: no rule %d", ErrBadPath, rule)
	}
	r := e.rules.At(rule)
	if len(path) != r.Len() {
		return fmt.Errorf("%w: %d cells for rule of length %d", ErrBadPath, len(path), r.Len())
	}
	if !straight(path) {
		return fmt.Errorf("%w: %v is not a straight line", ErrBadPath, path)
	}
	for i, p := range path {
		c, ok := e.grid.Category(p)
		if !ok {
			return fmt.Errorf("%w: %v out of bounds", ErrBadPath, p)
		}
		if c != r.Lhs[i] {
			return fmt.Errorf("%w: %v holds %d, rule wants %d", ErrBadPath, p, c, r.Lhs[i])
		}
	}
	e.apply(r, path)
	return nil
}

// straight reports whether every step of path takes the same cardinal
// offset, which also rules out repeated cells.
func straight(path []core.Point) bool {
	if len(path) < 2 {
		return true
	}
	d := core.Point{X: path[1].X - path[0].X, Y: path[1].Y - path[0].Y}
	if !slices.Contains(core.Dirs[:], d) {
		return false
	}
	for i := 2; i < len(path); i++ {
		if path[i-1].Add(d) != path[i] {
			return false
		}
	}
	return true
}

// apply writes every cell of the match and keeps the index and the
// neighbors' live bits in step before returning.
func (e *Engine) apply(r Rule, path []core.Point) {
	for i, p := range path {
		old, _ := e.grid.Category(p)
		next := r.Rhs[i]
		e.grid.Set(p.X, p.Y, Cell{Category: next})
		e.index.OnCategoryChanged(p, old, next)
		for _, d := range core.Dirs {
			e.grid.SetFullyLive(p.Add(d))
		}
	}
	e.rewrites++
	e.fired[r.Index]++
	e.converged = false
	e.log.Debugf("tick %d: rule %d %q at %v", e.ticks, r.Index, r.Text, path[0])
}

// Run ticks until a tick applies nothing or maxTicks ticks have run. A
// non-positive maxTicks means no limit.
func (e *Engine) Run(maxTicks int) (ticks int, converged bool) {
	for maxTicks <= 0 || ticks < maxTicks {
		ticks++
		if !e.Tick().Applied {
			return ticks, true
		}
	}
	return ticks, false
}

// Reset refills the grid with fill and clears run statistics.
func (e *Engine) Reset(fill Category) {
	e.grid.Fill(fill)
	e.restart()
}

// SeedNoise fills the grid with categories drawn from weights. Zero or
// negative weights never appear; with no positive weight the grid is filled
// with fallback.
func (e *Engine) SeedNoise(weights map[Category]float64, fallback Category) {
	cats := make([]Category, 0, len(weights))
	total := 0.0
	for c, w := range weights {
		if w > 0 {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		e.Reset(fallback)
		return
	}
	slices.Sort(cats)
	for _, c := range cats {
		total += weights[c]
	}

	e.grid.Fill(fallback)
	w, h := e.grid.Dimensions()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pick := e.rng.Float64() * total
			c := cats[len(cats)-1]
			for _, cand := range cats {
				pick -= weights[cand]
				if pick < 0 {
					c = cand
					break
				}
			}
			e.grid.Set(x, y, Cell{Category: c})
		}
	}
	e.restart()
}

func (e *Engine) restart() {
	e.index.Rebuild(e.grid)
	e.ticks = 0
	e.rewrites = 0
	clear(e.fired)
	e.converged = false
}

// ResetAges zeroes every cell's age, used when a viewer's output size changes.
func (e *Engine) ResetAges() { e.grid.ResetAges() }

// Stats reports run counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Ticks:     e.ticks,
		Rewrites:  e.rewrites,
		Fired:     append([]int(nil), e.fired...),
		Converged: e.converged,
	}
}

// Snapshot copies the grid for readers outside the tick loop.
func (e *Engine) Snapshot() Frame {
	w, h := e.grid.Dimensions()
	return Frame{
		Tick:       e.ticks,
		Width:      w,
		Height:     h,
		Categories: e.grid.Categories(nil),
		Ages:       e.grid.Ages(nil),
	}
}

// Categories copies the category of every cell into dst, row-major.
func (e *Engine) Categories(dst []uint8) []uint8 { return e.grid.Categories(dst) }

// CellAt maps a position inside v back to the grid cell drawn there.
func (e *Engine) CellAt(v Viewport, vx, vy float64) (core.Point, bool) {
	w, h := e.grid.Dimensions()
	return v.CellAt(w, h, vx, vy)
}

// Reader is the read-only surface viewers get. Engine implements it.
type Reader interface {
	Dimensions() (int, int)
	Get(x, y int) (Cell, bool)
	CellAt(v Viewport, vx, vy float64) (core.Point, bool)
	Stats() Stats
	Snapshot() Frame
}

var _ Reader = (*Engine)(nil)
