package core

import (
	"fmt"
	"image/color"
	"sort"
)

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Sim defines the minimal contract a grid simulation must implement.
// Cells returns one byte per cell in row-major order; the value is an index
// into the sim's palette.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}

// PaletteProvider is implemented by sims whose cell values index a color table.
type PaletteProvider interface {
	Palette() []color.RGBA
}

// Converger is implemented by sims that can report they have stopped changing.
type Converger interface {
	Converged() bool
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) (Sim, error)

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Names lists registered sims in sorted order.
func Names() []string {
	names := make([]string, 0, len(sims))
	for name := range sims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New looks up name in the registry and builds it with cfg.
func New(name string, cfg map[string]string) (Sim, error) {
	f, ok := sims[name]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q (have %v)", name, Names())
	}
	return f(cfg)
}
