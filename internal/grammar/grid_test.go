package grammar

import (
	"errors"
	"slices"
	"testing"

	"grammar-ca/internal/core"
)

func TestGridOutOfBoundsIsAbsent(t *testing.T) {
	g := NewGrid(3, 2, 4, White)
	for _, p := range []core.Point{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 3, Y: 0}, {X: 0, Y: 2}} {
		if _, ok := g.Get(p.X, p.Y); ok {
			t.Fatalf("Get(%v) should be absent", p)
		}
		if g.Set(p.X, p.Y, Cell{Category: Red}) {
			t.Fatalf("Set(%v) should be refused", p)
		}
		if g.IsLive(p, 0) {
			t.Fatalf("IsLive(%v) should be false", p)
		}
		g.Kill(p, 0)
		g.SetFullyLive(p)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			c, ok := g.Get(x, y)
			if !ok || c.Category != White || c.Age != 0 || c.Live.Count() != 64 {
				t.Fatalf("cell (%d,%d) = %+v, want fresh white", x, y, c)
			}
		}
	}
}

func TestGridSetCopiesLiveBits(t *testing.T) {
	g := NewGrid(2, 1, 3, White)
	live := make(LiveMask, 1)
	live[0] = 0b010
	g.Set(1, 0, Cell{Category: Blue, Age: 7, Live: live})
	live[0] = 0

	c, _ := g.Get(1, 0)
	if c.Category != Blue || c.Age != 7 {
		t.Fatalf("unexpected cell %+v", c)
	}
	if c.Live.IsLive(0) || !c.Live.IsLive(1) || c.Live.IsLive(2) {
		t.Fatalf("live bits not copied: %b", c.Live[0])
	}
	c.Live.Kill(1)
	if !g.IsLive(core.Point{X: 1, Y: 0}, 1) {
		t.Fatal("Get must hand out a copy of the mask")
	}
	if !g.IsLive(core.Point{X: 0, Y: 0}, 2) {
		t.Fatal("neighbor masks must not share words")
	}
}

func TestSetFullyLiveResetsAge(t *testing.T) {
	g := NewGrid(1, 1, 2, Gray)
	p := core.Point{}
	g.AgeAll()
	g.Kill(p, 0)
	g.Kill(p, 1)
	g.SetFullyLive(p)
	c, _ := g.Get(0, 0)
	if c.Age != 0 || !c.Live.IsLive(0) || !c.Live.IsLive(1) {
		t.Fatalf("expected fresh fully live cell, got %+v", c)
	}
}

func TestLiveMaskBounds(t *testing.T) {
	m := make(LiveMask, maskWords(70))
	if len(m) != 2 {
		t.Fatalf("70 rules need 2 words, got %d", len(m))
	}
	if maskWords(0) != 1 {
		t.Fatal("an empty rule set still gets one word")
	}
	m.SetAll()
	m.Kill(69)
	m.Kill(-1)
	m.Kill(500)
	if m.IsLive(69) || !m.IsLive(68) || m.IsLive(500) || m.IsLive(-1) {
		t.Fatal("unexpected bit state")
	}
}

func TestIndexTracksCategoryChanges(t *testing.T) {
	g := NewGrid(3, 3, 1, White)
	ix := NewIndex(g)
	if ix.Count(White) != 9 || len(ix.Candidates(Black)) != 0 {
		t.Fatal("fresh index should hold only white")
	}
	p := core.Point{X: 2, Y: 1}
	g.Set(p.X, p.Y, Cell{Category: Black})
	ix.OnCategoryChanged(p, White, Black)
	ix.OnCategoryChanged(p, Black, Black)

	if ix.Contains(White, p) || !ix.Contains(Black, p) {
		t.Fatal("p should have moved to black")
	}
	if got := ix.Candidates(Black); len(got) != 1 || got[0] != p {
		t.Fatalf("black candidates = %v", got)
	}
	whites := ix.Candidates(White)
	if len(whites) != 8 {
		t.Fatalf("expected 8 white candidates, got %d", len(whites))
	}
	for i := 1; i < len(whites); i++ {
		a, b := whites[i-1], whites[i]
		if a.Y > b.Y || (a.Y == b.Y && a.X >= b.X) {
			t.Fatalf("candidates not in row-major order: %v", whites)
		}
	}
}

func TestIndexKeepsOrderAcrossInterleavedChanges(t *testing.T) {
	g := NewGrid(4, 3, 1, White)
	ix := NewIndex(g)
	moves := []core.Point{{X: 3, Y: 2}, {X: 0, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 1}}
	for _, p := range moves {
		ix.OnCategoryChanged(p, White, Black)
	}
	ix.OnCategoryChanged(core.Point{X: 2, Y: 1}, Black, White)
	ix.OnCategoryChanged(core.Point{X: 2, Y: 1}, White, Black)
	ix.OnCategoryChanged(core.Point{X: 0, Y: 0}, Black, White)

	want := []core.Point{{X: 0, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 3, Y: 2}}
	if got := ix.Candidates(Black); !slices.Equal(got, want) {
		t.Fatalf("black candidates = %v, want %v", got, want)
	}
	if got := ix.Candidates(White); len(got) != 8 || got[0] != (core.Point{X: 0, Y: 0}) {
		t.Fatalf("white candidates = %v", got)
	}
}

func TestRuleSetValidation(t *testing.T) {
	if _, err := NewRuleSet([]Rule{{Lhs: []Category{Black}, Rhs: []Category{Black, White}}}); !errors.Is(err, ErrRuleLength) {
		t.Fatalf("expected ErrRuleLength, got %v", err)
	}
	if _, err := NewRuleSet([]Rule{{}}); !errors.Is(err, ErrEmptyRule) {
		t.Fatalf("expected ErrEmptyRule, got %v", err)
	}
	src := []Rule{{Lhs: []Category{Red}, Rhs: []Category{Blue}}, {Lhs: []Category{Blue}, Rhs: []Category{Red}, Index: 9}}
	rs, err := NewRuleSet(src)
	if err != nil {
		t.Fatal(err)
	}
	src[0].Lhs[0] = Pink
	if rs.At(0).Lhs[0] != Red {
		t.Fatal("rule set must copy its rules")
	}
	if rs.At(1).Index != 1 {
		t.Fatal("indices follow list position")
	}
}

func TestAlphabet(t *testing.T) {
	a := DefaultAlphabet()
	if a.Len() != 6 {
		t.Fatalf("default alphabet has %d symbols", a.Len())
	}
	if c, ok := a.Lookup('p'); !ok || c != Pink {
		t.Fatal("p should map to pink")
	}
	if _, ok := a.Lookup('x'); ok {
		t.Fatal("x is not a symbol")
	}
	if c, ok := a.ByName("Gray"); !ok || c != Gray {
		t.Fatal("ByName should be case-insensitive")
	}
	if got := a.Format([]Category{Black, White, Blue}); got != "kwb" {
		t.Fatalf("Format = %q", got)
	}
	if _, err := NewAlphabet([]Symbol{{Rune: 'a'}, {Rune: 'a'}}); !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := NewAlphabet([]Symbol{{Rune: '='}}); !errors.Is(err, ErrReservedSymbolUse) {
		t.Fatalf("expected reserved symbol error, got %v", err)
	}
	if _, err := NewAlphabet(nil); !errors.Is(err, ErrEmptyAlphabet) {
		t.Fatalf("expected empty error, got %v", err)
	}
}

func TestViewportCellAt(t *testing.T) {
	full := Viewport{Width: 100, Height: 50}
	if p, ok := full.CellAt(10, 5, 0, 0); !ok || p != (core.Point{}) {
		t.Fatalf("top-left = %v %v", p, ok)
	}
	if p, ok := full.CellAt(10, 5, 99.9, 49.9); !ok || p != (core.Point{X: 9, Y: 4}) {
		t.Fatalf("bottom-right = %v %v", p, ok)
	}
	if _, ok := full.CellAt(10, 5, 100, 10); ok {
		t.Fatal("right edge is outside")
	}

	inset := Viewport{Width: 100, Height: 100, Fill: 0.9}
	if _, ok := inset.CellAt(10, 10, 2, 50); ok {
		t.Fatal("margin should not map to a cell")
	}
	if p, ok := inset.CellAt(10, 10, 50, 50); !ok || p != (core.Point{X: 5, Y: 5}) {
		t.Fatalf("center = %v %v", p, ok)
	}
	if _, ok := (Viewport{}).CellAt(10, 10, 0, 0); ok {
		t.Fatal("empty viewport maps nothing")
	}
}
