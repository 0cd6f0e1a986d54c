package grammar

import (
	"testing"

	"grammar-ca/internal/core"
)

// firstRand keeps the cardinal order fixed (up, right, down, left) and always
// picks the first match.
type firstRand struct{}

func (firstRand) IntN(int) int                { return 0 }
func (firstRand) Float64() float64            { return 0 }
func (firstRand) Shuffle(int, func(i, j int)) {}

func cats(t *testing.T, s string) []Category {
	t.Helper()
	a := DefaultAlphabet()
	out := make([]Category, 0, len(s))
	for _, r := range s {
		c, ok := a.Lookup(r)
		if !ok {
			t.Fatalf("unknown symbol %q", r)
		}
		out = append(out, c)
	}
	return out
}

func rule(t *testing.T, lhs, rhs string) Rule {
	t.Helper()
	return Rule{Lhs: cats(t, lhs), Rhs: cats(t, rhs), Text: lhs + "=" + rhs}
}

func ruleSet(t *testing.T, rules ...Rule) *RuleSet {
	t.Helper()
	rs, err := NewRuleSet(rules)
	if err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	return rs
}

// newEngine lays out rows (one string per row, default alphabet symbols) on a
// fresh engine.
func newEngine(t *testing.T, rs *RuleSet, rng Rand, rows ...string) *Engine {
	t.Helper()
	e := NewEngine(rs, len(rows[0]), len(rows), White, WithRand(rng))
	for y, row := range rows {
		for x, c := range cats(t, row) {
			e.grid.Set(x, y, Cell{Category: c})
		}
	}
	e.index.Rebuild(e.grid)
	return e
}

func rowsOf(e *Engine) []string {
	a := DefaultAlphabet()
	w, h := e.Dimensions()
	out := make([]string, h)
	for y := 0; y < h; y++ {
		row := make([]Category, w)
		for x := 0; x < w; x++ {
			row[x], _ = e.grid.Category(core.Point{X: x, Y: y})
		}
		out[y] = a.Format(row)
	}
	return out
}

// checkIndex asserts every coordinate is filed under exactly its grid
// category.
func checkIndex(t *testing.T, e *Engine) {
	t.Helper()
	b := e.grid.Bounds()
	total := 0
	for c := 0; c < MaxCategories; c++ {
		total += e.index.Count(Category(c))
	}
	if total != b.Len() {
		t.Fatalf("index holds %d coordinates, grid has %d", total, b.Len())
	}
	for i := 0; i < b.Len(); i++ {
		p := b.At(i)
		c, _ := e.grid.Category(p)
		if !e.index.Contains(c, p) {
			t.Fatalf("%v missing from bucket %d", p, c)
		}
	}
}
