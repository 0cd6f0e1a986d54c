package grammar

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRule is returned for a rule with no cells on either side.
	ErrEmptyRule = errors.New("rule has an empty side")
	// ErrRuleLength is returned when the two sides differ in length.
	ErrRuleLength = errors.New("rule sides differ in length")
)

// Rule rewrites a straight run of cells matching Lhs into Rhs, position by
// position.
type Rule struct {
	// Index is the rule's position in its RuleSet: its priority and its
	// liveness bit.
	Index int
	Lhs   []Category
	Rhs   []Category
	// Text is the source line the rule was parsed from, if any.
	Text string
}

// Len returns the number of cells the rule spans.
func (r Rule) Len() int { return len(r.Lhs) }

// Head is the category a match must start on.
func (r Rule) Head() Category { return r.Lhs[0] }

// Validate checks the side-length invariant.
func (r Rule) Validate() error {
	if len(r.Lhs) == 0 || len(r.Rhs) == 0 {
		return ErrEmptyRule
	}
	if len(r.Lhs) != len(r.Rhs) {
		return fmt.Errorf("%w: %d != %d", ErrRuleLength, len(r.Lhs), len(r.Rhs))
	}
	return nil
}

// RuleSet is an ordered, immutable list of rules.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet validates rules, copies them and assigns each its index.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make([]Rule, len(rules))}
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rs.rules[i] = Rule{
			Index: i,
			Lhs:   append([]Category(nil), r.Lhs...),
			Rhs:   append([]Category(nil), r.Rhs...),
			Text:  r.Text,
		}
	}
	return rs, nil
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// At returns rule i. The returned slices must not be modified.
func (rs *RuleSet) At(i int) Rule { return rs.rules[i] }

// All returns a copy of the rule list.
func (rs *RuleSet) All() []Rule { return append([]Rule(nil), rs.rules...) }
