package ui

import (
	"fmt"

	"grammar-ca/internal/core"
)

// StatusLines flattens a parameter snapshot into display lines: one header
// per group followed by "label: value" rows. Groups listed in collapsed show
// only their header and summary.
func StatusLines(s core.ParameterSnapshot, collapsed ...string) []string {
	var lines []string
	for _, g := range s.Groups {
		header := g.Name
		if g.Summary != "" {
			header += " (" + g.Summary + ")"
		}
		lines = append(lines, header)
		if contains(collapsed, g.Name) {
			continue
		}
		for _, p := range g.Params {
			lines = append(lines, fmt.Sprintf("  %s: %s", p.Label, p.Value))
		}
	}
	return lines
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Describer is implemented by sims that can describe a single cell.
type Describer interface {
	Describe(x, y int) (string, bool)
}

// HoverLine returns the readout for the cell under the cursor, or a hint when
// the cursor is outside the grid.
func HoverLine(d Describer, p core.Point, ok bool) string {
	if !ok {
		return "hover a cell to inspect it"
	}
	line, ok := d.Describe(p.X, p.Y)
	if !ok {
		return "hover a cell to inspect it"
	}
	return line
}
