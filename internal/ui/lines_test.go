package ui

import (
	"slices"
	"testing"

	"grammar-ca/internal/core"
)

func TestStatusLines(t *testing.T) {
	snap := core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "Run", Params: []core.Parameter{
			core.IntParam("ticks", "Ticks", 12),
			core.BoolParam("converged", "Converged", false),
		}},
		{Name: "Rules", Summary: "times each rule fired", Params: []core.Parameter{
			core.IntParam("rule_0", "kw=kk", 3),
		}},
	}}

	got := StatusLines(snap)
	want := []string{
		"Run",
		"  Ticks: 12",
		"  Converged: false",
		"Rules (times each rule fired)",
		"  kw=kk: 3",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}

	got = StatusLines(snap, "Rules")
	if len(got) != 4 || got[3] != "Rules (times each rule fired)" {
		t.Fatalf("collapsed lines = %q", got)
	}
}

type fakeDescriber map[core.Point]string

func (f fakeDescriber) Describe(x, y int) (string, bool) {
	s, ok := f[core.Point{X: x, Y: y}]
	return s, ok
}

func TestHoverLine(t *testing.T) {
	d := fakeDescriber{{X: 1, Y: 2}: "(1,2) white"}
	if got := HoverLine(d, core.Point{X: 1, Y: 2}, true); got != "(1,2) white" {
		t.Fatalf("hover = %q", got)
	}
	hint := HoverLine(d, core.Point{}, false)
	if hint == "" || hint == "(1,2) white" {
		t.Fatalf("hint = %q", hint)
	}
	if got := HoverLine(d, core.Point{X: 9, Y: 9}, true); got != hint {
		t.Fatalf("unknown cell = %q, want hint", got)
	}
}
