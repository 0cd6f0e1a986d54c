// Package rewrite exposes the grammar engine as a registered core.Sim.
package rewrite

import (
	"fmt"
	"image/color"
	"strconv"

	"grammar-ca/internal/config"
	"grammar-ca/internal/core"
	"grammar-ca/internal/grammar"
	"grammar-ca/internal/logging"
	"grammar-ca/internal/rules"
)

// Name is the registry key.
const Name = "rewrite"

// Sim drives a grammar.Engine one tick per Step and keeps a display buffer
// of category bytes for painters.
type Sim struct {
	cfg      config.Config
	alphabet *grammar.Alphabet
	rules    *grammar.RuleSet
	fill     grammar.Category
	noise    map[grammar.Category]float64
	log      logging.Logger

	seed   int64
	engine *grammar.Engine
	cells  []uint8
	last   grammar.TickResult
}

// New builds the alphabet and loads the rules file named by cfg.
func New(cfg config.Config, log logging.Logger) (*Sim, error) {
	if log == nil {
		log = logging.Nop()
	}
	a, err := cfg.BuildAlphabet()
	if err != nil {
		return nil, err
	}
	rs, err := rules.NewLoader(a, log).LoadFile(cfg.Rules)
	if err != nil {
		return nil, err
	}
	return NewWithRules(cfg, a, rs, log)
}

// NewWithRules builds a Sim from an already parsed rule set and resets it
// with cfg.Seed.
func NewWithRules(cfg config.Config, a *grammar.Alphabet, rs *grammar.RuleSet, log logging.Logger) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}
	fill, err := cfg.FillCategory(a)
	if err != nil {
		return nil, err
	}
	noise, err := cfg.NoiseWeights(a)
	if err != nil {
		return nil, err
	}
	s := &Sim{cfg: cfg, alphabet: a, rules: rs, fill: fill, noise: noise, log: log}
	s.Reset(cfg.Seed)
	return s, nil
}

// Name returns the simulation identifier.
func (s *Sim) Name() string { return Name }

// Size returns the grid dimensions.
func (s *Sim) Size() core.Size { return core.Size{W: s.cfg.Width, H: s.cfg.Height} }

// Cells exposes the category of every cell, row-major.
func (s *Sim) Cells() []uint8 { return s.cells }

// Palette returns the alphabet colors indexed by category.
func (s *Sim) Palette() []color.RGBA { return s.alphabet.Palette() }

// Alphabet returns the alphabet the rules were read with.
func (s *Sim) Alphabet() *grammar.Alphabet { return s.alphabet }

// Rules returns the loaded rule set.
func (s *Sim) Rules() *grammar.RuleSet { return s.rules }

// Seed returns the seed of the current run.
func (s *Sim) Seed() int64 { return s.seed }

// Reset rebuilds the engine with a fresh RNG and reseeds the grid. A zero
// seed reuses the configured one.
func (s *Sim) Reset(seed int64) {
	if seed == 0 {
		seed = s.cfg.Seed
	}
	s.seed = seed
	s.engine = grammar.NewEngine(s.rules, s.cfg.Width, s.cfg.Height, s.fill,
		grammar.WithRand(core.NewRNG(seed)), grammar.WithLogger(s.log))
	s.engine.SeedNoise(s.noise, s.fill)
	s.last = grammar.TickResult{Rule: -1}
	s.refresh()
	s.log.Debugf("%s reset: %dx%d seed %d, %d rules", Name, s.cfg.Width, s.cfg.Height, seed, s.rules.Len())
}

// Step runs one engine tick.
func (s *Sim) Step() {
	s.last = s.engine.Tick()
	if s.last.Applied {
		s.refresh()
	}
}

// Run ticks until convergence or maxTicks ticks, non-positive meaning no
// limit, and reports how many ticks ran.
func (s *Sim) Run(maxTicks int) (int, bool) {
	n, converged := s.engine.Run(maxTicks)
	s.refresh()
	return n, converged
}

func (s *Sim) refresh() {
	s.cells = s.engine.Categories(s.cells)
}

// Converged reports whether the last tick found no match.
func (s *Sim) Converged() bool { return s.engine.Stats().Converged }

// Last returns the result of the most recent Step.
func (s *Sim) Last() grammar.TickResult { return s.last }

// View returns the engine's read-only surface for viewers.
func (s *Sim) View() grammar.Reader { return s.engine }

// ResetAges zeroes cell ages after a viewer changes output size.
func (s *Sim) ResetAges() { s.engine.ResetAges() }

// Describe formats the cell at (x, y) for inspection readouts.
func (s *Sim) Describe(x, y int) (string, bool) {
	c, ok := s.engine.Get(x, y)
	if !ok {
		return "", false
	}
	sym := s.alphabet.Symbol(c.Category)
	return fmt.Sprintf("(%d,%d) %s [%c] age %d live %d/%d",
		x, y, sym.Name, sym.Rune, c.Age, liveRules(c.Live, s.rules.Len()), s.rules.Len()), true
}

func liveRules(m grammar.LiveMask, n int) int {
	live := 0
	for i := 0; i < n; i++ {
		if m.IsLive(i) {
			live++
		}
	}
	return live
}

// Parameters reports run status for overlays and status lines.
func (s *Sim) Parameters() core.ParameterSnapshot {
	st := s.engine.Stats()
	last := "-"
	if s.last.Applied {
		last = s.rules.At(s.last.Rule).Text
	}
	ruleParams := make([]core.Parameter, s.rules.Len())
	for i, r := range s.rules.All() {
		ruleParams[i] = core.IntParam("rule_"+strconv.Itoa(i), r.Text, st.Fired[i])
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				core.IntParam("w", "Width", s.cfg.Width),
				core.IntParam("h", "Height", s.cfg.Height),
				core.Int64Param("seed", "Seed", s.seed),
			},
		},
		{
			Name: "Run",
			Params: []core.Parameter{
				core.IntParam("ticks", "Ticks", st.Ticks),
				core.IntParam("rewrites", "Rewrites", st.Rewrites),
				core.BoolParam("converged", "Converged", st.Converged),
				core.StringParam("last_rule", "Last rule", last),
			},
		},
		{Name: "Rules", Params: ruleParams, Summary: "times each rule fired"},
	}}
}

func init() {
	core.Register(Name, func(m map[string]string) (core.Sim, error) {
		cfg := config.FromMap(m)
		return New(cfg, logging.New(cfg.LogLevel))
	})
}
