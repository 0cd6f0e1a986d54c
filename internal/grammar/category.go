package grammar

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// Category is an opaque cell value drawn from an Alphabet.
type Category uint8

// Categories of the default alphabet.
const (
	Black Category = iota
	White
	Gray
	Red
	Pink
	Blue
)

// MaxCategories bounds the alphabet so a category always fits a display byte.
const MaxCategories = 256

// Symbol binds a category to its rule-file character, a name and a color.
type Symbol struct {
	Rune  rune
	Name  string
	Color color.RGBA
}

// Alphabet is the ordered set of categories a run uses. Position in the
// alphabet is the Category value.
type Alphabet struct {
	symbols []Symbol
	byRune  map[rune]Category
}

var (
	ErrEmptyAlphabet     = errors.New("alphabet has no symbols")
	ErrAlphabetTooLarge  = fmt.Errorf("alphabet exceeds %d symbols", MaxCategories)
	ErrDuplicateSymbol   = errors.New("duplicate alphabet symbol")
	ErrReservedSymbolUse = errors.New("symbol is reserved by the rule syntax")
)

// NewAlphabet validates symbols and builds the rune lookup.
func NewAlphabet(symbols []Symbol) (*Alphabet, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptyAlphabet
	}
	if len(symbols) > MaxCategories {
		return nil, ErrAlphabetTooLarge
	}
	a := &Alphabet{
		symbols: append([]Symbol(nil), symbols...),
		byRune:  make(map[rune]Category, len(symbols)),
	}
	for i, s := range symbols {
		if strings.ContainsRune("=()/ \t", s.Rune) {
			return nil, fmt.Errorf("%w: %q", ErrReservedSymbolUse, s.Rune)
		}
		if _, dup := a.byRune[s.Rune]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, s.Rune)
		}
		a.byRune[s.Rune] = Category(i)
	}
	return a, nil
}

var defaultSymbols = []Symbol{
	{Rune: 'k', Name: "black", Color: color.RGBA{R: 0, G: 0, B: 0, A: 255}},
	{Rune: 'w', Name: "white", Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	{Rune: 'g', Name: "gray", Color: color.RGBA{R: 128, G: 128, B: 128, A: 255}},
	{Rune: 'r', Name: "red", Color: color.RGBA{R: 255, G: 0, B: 0, A: 255}},
	{Rune: 'p', Name: "pink", Color: color.RGBA{R: 255, G: 192, B: 203, A: 255}},
	{Rune: 'b', Name: "blue", Color: color.RGBA{R: 0, G: 0, B: 255, A: 255}},
}

// DefaultAlphabet returns the six-color table used by the bundled rule files.
func DefaultAlphabet() *Alphabet {
	a, err := NewAlphabet(defaultSymbols)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of categories.
func (a *Alphabet) Len() int { return len(a.symbols) }

// Lookup maps a rule-file character to its category.
func (a *Alphabet) Lookup(r rune) (Category, bool) {
	c, ok := a.byRune[r]
	return c, ok
}

// ByName finds a category by its symbol name or single-character symbol.
func (a *Alphabet) ByName(name string) (Category, bool) {
	for i, s := range a.symbols {
		if strings.EqualFold(s.Name, name) || string(s.Rune) == name {
			return Category(i), true
		}
	}
	return 0, false
}

// Symbol returns the symbol for c; unknown categories get a placeholder.
func (a *Alphabet) Symbol(c Category) Symbol {
	if int(c) >= len(a.symbols) {
		return Symbol{Rune: '?', Name: fmt.Sprintf("category(%d)", c)}
	}
	return a.symbols[c]
}

// Palette returns one color per category, indexable by Category.
func (a *Alphabet) Palette() []color.RGBA {
	p := make([]color.RGBA, len(a.symbols))
	for i, s := range a.symbols {
		p[i] = s.Color
	}
	return p
}

// Format renders a category sequence with the alphabet's characters.
func (a *Alphabet) Format(cats []Category) string {
	var b strings.Builder
	for _, c := range cats {
		b.WriteRune(a.Symbol(c).Rune)
	}
	return b.String()
}
