package grammar

import (
	"github.com/zyedidia/generic/mapset"

	"grammar-ca/internal/core"
)

// Rand is the randomness the engine consumes. *math/rand/v2.Rand and
// *core.RNG satisfy it; tests substitute scripted sources.
type Rand interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

type search struct {
	g       GridReader
	rule    Rule
	rng     Rand
	visited mapset.Set[core.Point]
	path    []core.Point
}

// Search looks for one occurrence of r.Lhs starting at start. The first step
// tries the four cardinal directions in shuffled order and commits to the
// first whose neighbor holds Lhs[1]; the rest of the match must continue in
// a straight line along that direction. A failure after committing is final:
// other directions are not retried, so some valid matches are missed.
//
// The returned path is ordered from start to end and has r.Len() entries.
func Search(g GridReader, start core.Point, r Rule, rng Rand) ([]core.Point, bool) {
	if r.Len() == 0 {
		return nil, false
	}
	s := &search{
		g:       g,
		rule:    r,
		rng:     rng,
		visited: mapset.New[core.Point](),
		path:    make([]core.Point, 0, r.Len()),
	}
	if !s.step(start, 0, core.Point{}) {
		return nil, false
	}
	return s.path, true
}

func (s *search) step(cur core.Point, depth int, dir core.Point) bool {
	c, ok := s.g.Category(cur)
	if !ok || c != s.rule.Lhs[depth] {
		return false
	}
	s.visited.Put(cur)
	s.path = append(s.path, cur)
	if depth == s.rule.Len()-1 {
		return true
	}
	if depth == 0 {
		if dir, ok = s.commit(cur); !ok {
			return false
		}
	}
	next := cur.Add(dir)
	if s.visited.Has(next) {
		return false
	}
	return s.step(next, depth+1, dir)
}

// commit picks the first shuffled direction whose neighbor satisfies the
// one-cell lookahead.
func (s *search) commit(cur core.Point) (core.Point, bool) {
	dirs := core.Dirs
	if s.rng != nil {
		s.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	}
	want := s.rule.Lhs[1]
	for _, d := range dirs {
		if c, ok := s.g.Category(cur.Add(d)); ok && c == want {
			return d, true
		}
	}
	return core.Point{}, false
}

// CanStart reports whether start could begin a match of r at all: it holds
// Lhs[0] and, for rules longer than one cell, some cardinal neighbor holds
// Lhs[1]. The engine kills a cell's bit for r when this is false.
func CanStart(g GridReader, start core.Point, r Rule) bool {
	c, ok := g.Category(start)
	if !ok || r.Len() == 0 || c != r.Lhs[0] {
		return false
	}
	if r.Len() == 1 {
		return true
	}
	for _, d := range core.Dirs {
		if n, ok := g.Category(start.Add(d)); ok && n == r.Lhs[1] {
			return true
		}
	}
	return false
}
