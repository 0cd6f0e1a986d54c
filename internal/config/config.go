// Package config resolves a run's settings from defaults, an optional YAML
// file, GRAMMAR_CA_* environment variables and command-line flags, in that
// order of precedence (flags win).
package config

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"grammar-ca/internal/grammar"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "GRAMMAR_CA_"

// Symbol configures one alphabet entry.
type Symbol struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
	Color  string `yaml:"color"`
}

// Config holds everything a command needs to build and drive an engine.
type Config struct {
	Sim      string             `yaml:"sim"`
	Width    int                `yaml:"width"`
	Height   int                `yaml:"height"`
	Seed     int64              `yaml:"seed"`
	Rules    string             `yaml:"rules"`
	Fill     string             `yaml:"fill"`
	Noise    map[string]float64 `yaml:"noise"`
	Alphabet []Symbol           `yaml:"alphabet"`
	TPS      int                `yaml:"tps"`
	Scale    int                `yaml:"scale"`
	MaxTicks int                `yaml:"max_ticks"`
	LogLevel string             `yaml:"log_level"`
	Addr     string             `yaml:"addr"`

	// File is the YAML file Resolve loads, set by the -config flag.
	File string `yaml:"-"`

	flags map[string]string
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Sim:      "rewrite",
		Width:    100,
		Height:   100,
		Seed:     42,
		Rules:    "rules/caves.txt",
		Fill:     "w",
		Noise:    map[string]float64{"k": 0.45, "w": 0.55},
		TPS:      60,
		Scale:    6,
		LogLevel: "info",
		Addr:     ":8080",
	}
}

type resolver struct {
	name  string
	usage string
	get   func(*Config) string
	set   func(*Config, string) error
}

func intSetter(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

var resolvers = []resolver{
	{
		name:  "sim",
		usage: "simulation to run",
		get:   func(c *Config) string { return c.Sim },
		set:   func(c *Config, v string) error { c.Sim = v; return nil },
	},
	{
		name:  "w",
		usage: "grid width in cells",
		get:   func(c *Config) string { return strconv.Itoa(c.Width) },
		set:   intSetter(func(c *Config) *int { return &c.Width }),
	},
	{
		name:  "h",
		usage: "grid height in cells",
		get:   func(c *Config) string { return strconv.Itoa(c.Height) },
		set:   intSetter(func(c *Config) *int { return &c.Height }),
	},
	{
		name:  "seed",
		usage: "seed for noise and rule choices",
		get:   func(c *Config) string { return strconv.FormatInt(c.Seed, 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			c.Seed = n
			return nil
		},
	},
	{
		name:  "rules",
		usage: "rule file path",
		get:   func(c *Config) string { return c.Rules },
		set:   func(c *Config, v string) error { c.Rules = v; return nil },
	},
	{
		name:  "fill",
		usage: "category symbol or name for a uniform grid",
		get:   func(c *Config) string { return c.Fill },
		set:   func(c *Config, v string) error { c.Fill = v; return nil },
	},
	{
		name:  "noise",
		usage: "initial noise weights, e.g. k:0.45,w:0.55 (empty for a uniform fill)",
		get:   func(c *Config) string { return FormatNoise(c.Noise) },
		set: func(c *Config, v string) error {
			n, err := ParseNoise(v)
			if err != nil {
				return err
			}
			c.Noise = n
			return nil
		},
	},
	{
		name:  "tps",
		usage: "ticks per second for interactive viewers",
		get:   func(c *Config) string { return strconv.Itoa(c.TPS) },
		set:   intSetter(func(c *Config) *int { return &c.TPS }),
	},
	{
		name:  "scale",
		usage: "pixel scale multiplier",
		get:   func(c *Config) string { return strconv.Itoa(c.Scale) },
		set:   intSetter(func(c *Config) *int { return &c.Scale }),
	},
	{
		name:  "max-ticks",
		usage: "stop after this many ticks (0 runs until convergence)",
		get:   func(c *Config) string { return strconv.Itoa(c.MaxTicks) },
		set:   intSetter(func(c *Config) *int { return &c.MaxTicks }),
	},
	{
		name:  "log-level",
		usage: "debug, info, warn or error",
		get:   func(c *Config) string { return c.LogLevel },
		set:   func(c *Config, v string) error { c.LogLevel = v; return nil },
	},
	{
		name:  "addr",
		usage: "HTTP listen address",
		get:   func(c *Config) string { return c.Addr },
		set:   func(c *Config, v string) error { c.Addr = v; return nil },
	},
}

// EnvName returns the environment variable read for a flag name.
func EnvName(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	noise := cfg.Noise
	cfg.Noise = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Noise == nil {
		cfg.Noise = noise
	}
	cfg.File = path
	return cfg, nil
}

// Bind registers -config and one flag per setting on fs. Flag values are
// applied by Resolve, after the file and the environment.
func (c *Config) Bind(fs *flag.FlagSet) {
	c.flags = map[string]string{}
	fs.StringVar(&c.File, "config", c.File, "YAML run configuration file")
	for _, r := range resolvers {
		usage := fmt.Sprintf("%s (env %s)", r.usage, EnvName(r.name))
		fs.Func(r.name, usage+" (default "+strconv.Quote(r.get(c))+")", func(v string) error {
			if err := r.set(&Config{}, v); err != nil {
				return err
			}
			c.flags[r.name] = v
			return nil
		})
	}
}

// Resolve layers the config file, environment (looked up with getenv, usually
// os.Getenv) and explicitly set flags over c, then validates the result.
func (c *Config) Resolve(getenv func(string) string) error {
	flags := c.flags
	if c.File != "" {
		loaded, err := Load(c.File)
		if err != nil {
			return err
		}
		*c = loaded
	}
	c.flags = flags
	if getenv != nil {
		for _, r := range resolvers {
			if v := getenv(EnvName(r.name)); v != "" {
				if err := r.set(c, v); err != nil {
					return fmt.Errorf("%s: %w", EnvName(r.name), err)
				}
			}
		}
	}
	for _, r := range resolvers {
		if v, ok := flags[r.name]; ok {
			if err := r.set(c, v); err != nil {
				return fmt.Errorf("-%s: %w", r.name, err)
			}
		}
	}
	return c.Validate()
}

// AlphabetKey is the registry map key carrying a custom alphabet as a YAML
// flow sequence. It has no flag; the alphabet only comes from a config file.
const AlphabetKey = "alphabet"

// FromMap applies flag-named keys from m over the defaults. Malformed values
// are ignored, as the sim registry passes user-provided maps straight through.
func FromMap(m map[string]string) Config {
	c := Default()
	for _, r := range resolvers {
		if v, ok := m[r.name]; ok {
			_ = r.set(&c, v)
		}
	}
	if v, ok := m[AlphabetKey]; ok && v != "" {
		var syms []Symbol
		if err := yaml.Unmarshal([]byte(v), &syms); err == nil {
			c.Alphabet = syms
		}
	}
	return c
}

// ToMap renders the config as a string map for the sim registry: every
// flag-settable field plus the alphabet under AlphabetKey.
func (c Config) ToMap() map[string]string {
	m := make(map[string]string, len(resolvers)+1)
	for _, r := range resolvers {
		m[r.name] = r.get(&c)
	}
	if len(c.Alphabet) > 0 {
		m[AlphabetKey] = formatAlphabet(c.Alphabet)
	}
	return m
}

func formatAlphabet(syms []Symbol) string {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, s := range syms {
		entry := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
		for _, kv := range [][2]string{{"symbol", s.Symbol}, {"name", s.Name}, {"color", s.Color}} {
			entry.Content = append(entry.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: kv[0]},
				&yaml.Node{Kind: yaml.ScalarNode, Value: kv[1], Style: yaml.DoubleQuotedStyle})
		}
		node.Content = append(node.Content, entry)
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid size %dx%d must be positive", c.Width, c.Height))
	}
	if c.TPS <= 0 {
		errs = append(errs, fmt.Errorf("tps %d must be positive", c.TPS))
	}
	if c.Scale <= 0 {
		errs = append(errs, fmt.Errorf("scale %d must be positive", c.Scale))
	}
	if c.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("max ticks %d must not be negative", c.MaxTicks))
	}
	if c.Rules == "" {
		errs = append(errs, errors.New("no rules file configured"))
	}
	return errors.Join(errs...)
}

// ParseNoise parses "k:0.4,w:0.6". An empty string yields no weights.
func ParseNoise(s string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("noise entry %q is not symbol:weight", part)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("noise entry %q: %w", part, err)
		}
		out[strings.TrimSpace(key)] = w
	}
	return out, nil
}

// FormatNoise renders weights in ParseNoise syntax with keys sorted.
func FormatNoise(n map[string]float64) string {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + strconv.FormatFloat(n[k], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// BuildAlphabet returns the configured alphabet, or the default six colors
// when none is configured.
func (c Config) BuildAlphabet() (*grammar.Alphabet, error) {
	if len(c.Alphabet) == 0 {
		return grammar.DefaultAlphabet(), nil
	}
	symbols := make([]grammar.Symbol, len(c.Alphabet))
	for i, s := range c.Alphabet {
		if utf8.RuneCountInString(s.Symbol) != 1 {
			return nil, fmt.Errorf("alphabet entry %d: symbol %q must be one character", i, s.Symbol)
		}
		r, _ := utf8.DecodeRuneInString(s.Symbol)
		col, err := parseColor(s.Color)
		if err != nil {
			return nil, fmt.Errorf("alphabet entry %q: %w", s.Symbol, err)
		}
		name := s.Name
		if name == "" {
			name = s.Symbol
		}
		symbols[i] = grammar.Symbol{Rune: r, Name: name, Color: col}
	}
	return grammar.NewAlphabet(symbols)
}

func parseColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{A: 255}, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// FillCategory resolves Fill against a.
func (c Config) FillCategory(a *grammar.Alphabet) (grammar.Category, error) {
	cat, ok := a.ByName(c.Fill)
	if !ok {
		return 0, fmt.Errorf("fill %q is not in the alphabet", c.Fill)
	}
	return cat, nil
}

// NoiseWeights resolves Noise keys against a.
func (c Config) NoiseWeights(a *grammar.Alphabet) (map[grammar.Category]float64, error) {
	out := make(map[grammar.Category]float64, len(c.Noise))
	for k, w := range c.Noise {
		cat, ok := a.ByName(k)
		if !ok {
			return nil, fmt.Errorf("noise symbol %q is not in the alphabet", k)
		}
		out[cat] += w
	}
	return out, nil
}
