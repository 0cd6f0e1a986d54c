package tui

import (
	"strings"
	"testing"

	"grammar-ca/internal/config"
	"grammar-ca/internal/core"
	"grammar-ca/internal/grammar"
	"grammar-ca/internal/rules"
	"grammar-ca/internal/sims/rewrite"

	"github.com/gdamore/tcell/v2"
)

func newTestViewer(t *testing.T, opts ...Option) (*Viewer, tcell.SimulationScreen) {
	t.Helper()
	rs, err := rules.Parse(strings.NewReader("kw=kk\n"))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	cfg := config.Default()
	cfg.Width = 8
	cfg.Height = 4
	cfg.Seed = 11
	sim, err := rewrite.NewWithRules(cfg, grammar.DefaultAlphabet(), rs, nil)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(8, 5)
	return New(screen, sim, 60, opts...), screen
}

func rowText(s tcell.Screen, y, w int) string {
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestDrawPaintsGrid(t *testing.T) {
	v, screen := newTestViewer(t)
	v.Draw()

	cells := v.sim.Cells()
	palette := v.sim.Palette()
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			_, _, style, _ := screen.GetContent(x, y)
			_, bg, _ := style.Decompose()
			c := palette[cells[y*8+x]]
			want := tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
			if bg != want {
				t.Fatalf("cell (%d,%d) background = %v, want %v", x, y, bg, want)
			}
		}
	}
	if status := rowText(screen, 4, 8); !strings.HasPrefix(status, " tick 0") {
		t.Fatalf("status line = %q", status)
	}
}

func TestHoverMapsScreenToGrid(t *testing.T) {
	v, _ := newTestViewer(t)
	v.Hover(3, 2)
	if !v.hovered || v.hover != (core.Point{X: 3, Y: 2}) {
		t.Fatalf("hover = %v %v", v.hover, v.hovered)
	}
	if !strings.Contains(v.statusLine(), "(3,2)") {
		t.Fatalf("status line misses hovered cell: %q", v.statusLine())
	}
	v.Hover(3, 4)
	if v.hovered {
		t.Fatal("status row should not map to a cell")
	}
}

func TestResizeResetsAges(t *testing.T) {
	v, _ := newTestViewer(t)
	v.paused = true
	v.tickOnce = true
	v.Advance(1)
	aged := 0
	for _, a := range v.sim.View().Snapshot().Ages {
		if a > 0 {
			aged++
		}
	}
	if aged == 0 {
		t.Fatal("expected aged cells after a tick")
	}
	v.Resize(16, 9)
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			if c, _ := v.sim.View().Get(x, y); c.Age != 0 {
				t.Fatalf("age at (%d,%d) = %d after resize", x, y, c.Age)
			}
		}
	}
}

func TestKeys(t *testing.T) {
	v, _ := newTestViewer(t)
	if v.handleKey(tcell.KeyRune, ' ') || !v.paused {
		t.Fatal("space should pause")
	}
	v.Advance(5)
	if got := v.sim.View().Stats().Ticks; got != 0 {
		t.Fatalf("paused viewer ticked %d times", got)
	}
	v.handleKey(tcell.KeyRune, 'n')
	v.Advance(5)
	if got := v.sim.View().Stats().Ticks; got != 1 {
		t.Fatalf("single step ran %d ticks", got)
	}
	v.handleKey(tcell.KeyEnter, 0)
	if v.paused {
		t.Fatal("enter should resume")
	}
	v.handleKey(tcell.KeyTab, 0)
	if !v.rules {
		t.Fatal("tab should show rules")
	}
	if !v.handleKey(tcell.KeyRune, 'q') || !v.handleKey(tcell.KeyEscape, 0) {
		t.Fatal("q and escape should quit")
	}
}

func TestAdvanceStopsAtConvergence(t *testing.T) {
	var results []grammar.TickResult
	v, _ := newTestViewer(t, WithTickHook(func(r grammar.TickResult) {
		results = append(results, r)
	}))
	v.Advance(1000)
	if !v.sim.Converged() {
		t.Fatal("expected convergence")
	}
	if len(results) != v.sim.View().Stats().Ticks {
		t.Fatalf("hook saw %d ticks, sim ran %d", len(results), v.sim.View().Stats().Ticks)
	}
	if results[len(results)-1].Applied {
		t.Fatal("last hooked tick should be the non-applying one")
	}
	v.Advance(10)
	if len(results) != v.sim.View().Stats().Ticks {
		t.Fatal("converged viewer kept ticking")
	}
}
