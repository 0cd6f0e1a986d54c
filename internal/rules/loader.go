// Package rules reads rewrite rules from their text form.
//
// One rule per line: LEFT=RIGHT, both sides the same number of alphabet
// symbols. Anything after // is a comment. A line wrapped in parentheses is
// accepted and read the same as an unwrapped one. The right-hand side is
// stored reversed, matching the files this format was written for.
package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"grammar-ca/internal/grammar"
	"grammar-ca/internal/logging"
)

var (
	// ErrSideCount is returned when a line does not split into exactly two sides.
	ErrSideCount = errors.New("rule must have exactly two sides separated by '='")
	// ErrSideLength is returned when the two sides differ in length.
	ErrSideLength = errors.New("rule sides are not equal in length")
	// ErrUnknownSymbol is returned for a character outside the alphabet.
	ErrUnknownSymbol = errors.New("unknown category symbol")
)

// LoadError reports a rule line that could not be parsed. Loading stops at
// the first one.
type LoadError struct {
	Line int
	Text string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader parses rule files against an alphabet.
type Loader struct {
	alphabet *grammar.Alphabet
	log      logging.Logger
}

// NewLoader returns a Loader; a nil alphabet means the default one.
func NewLoader(a *grammar.Alphabet, log logging.Logger) *Loader {
	if a == nil {
		a = grammar.DefaultAlphabet()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Loader{alphabet: a, log: log}
}

// stripComment drops a trailing // comment and surrounding space.
func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// ParseLine parses a single line. ok is false for blank and comment-only
// lines.
func (l *Loader) ParseLine(line string) (r grammar.Rule, ok bool, err error) {
	code := stripComment(line)
	if code == "" {
		return grammar.Rule{}, false, nil
	}
	if strings.HasPrefix(code, "(") {
		code = strings.NewReplacer("(", "", ")", "").Replace(code)
	}
	sides := strings.Split(code, "=")
	if len(sides) != 2 {
		return grammar.Rule{}, false, fmt.Errorf("%w: got %d", ErrSideCount, len(sides))
	}
	left, right := sides[0], sides[1]
	if utf8.RuneCountInString(left) != utf8.RuneCountInString(right) {
		return grammar.Rule{}, false, fmt.Errorf("%w: %d != %d", ErrSideLength,
			utf8.RuneCountInString(left), utf8.RuneCountInString(right))
	}
	lhs, err := l.categories(left)
	if err != nil {
		return grammar.Rule{}, false, err
	}
	rhs, err := l.categories(right)
	if err != nil {
		return grammar.Rule{}, false, err
	}
	slices.Reverse(rhs)
	r = grammar.Rule{Lhs: lhs, Rhs: rhs, Text: code}
	if err := r.Validate(); err != nil {
		return grammar.Rule{}, false, err
	}
	return r, true, nil
}

func (l *Loader) categories(side string) ([]grammar.Category, error) {
	out := make([]grammar.Category, 0, len(side))
	for _, ch := range side {
		c, ok := l.alphabet.Lookup(ch)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownSymbol, ch)
		}
		out = append(out, c)
	}
	return out, nil
}

// Parse reads every rule from r in order.
func (l *Loader) Parse(r io.Reader) (*grammar.RuleSet, error) {
	var list []grammar.Rule
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		rule, ok, err := l.ParseLine(text)
		if err != nil {
			return nil, &LoadError{Line: n, Text: text, Err: err}
		}
		if !ok {
			continue
		}
		l.log.Debugf("rule %d: %s (lhs %s, rhs %s)", len(list), rule.Text,
			l.alphabet.Format(rule.Lhs), l.alphabet.Format(rule.Rhs))
		list = append(list, rule)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return grammar.NewRuleSet(list)
}

// LoadFile parses the rule file at path.
func (l *Loader) LoadFile(path string) (*grammar.RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	rs, err := l.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.log.Infof("loaded %d rules from %s", rs.Len(), path)
	return rs, nil
}

// Parse reads rules with the default alphabet.
func Parse(r io.Reader) (*grammar.RuleSet, error) {
	return NewLoader(nil, nil).Parse(r)
}
