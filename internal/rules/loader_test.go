package rules

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"grammar-ca/internal/grammar"
)

func TestParseLineReversesRightSide(t *testing.T) {
	l := NewLoader(nil, nil)
	r, ok, err := l.ParseLine("kwg=rpb")
	if err != nil || !ok {
		t.Fatalf("ParseLine: ok=%v err=%v", ok, err)
	}
	if !slices.Equal(r.Lhs, []grammar.Category{grammar.Black, grammar.White, grammar.Gray}) {
		t.Fatalf("lhs = %v", r.Lhs)
	}
	if !slices.Equal(r.Rhs, []grammar.Category{grammar.Blue, grammar.Pink, grammar.Red}) {
		t.Fatalf("rhs should be reversed, got %v", r.Rhs)
	}
}

func TestParseLineSkipsBlankAndComments(t *testing.T) {
	l := NewLoader(nil, nil)
	for _, line := range []string{"", "   ", "// just a note", "  // indented note"} {
		if _, ok, err := l.ParseLine(line); ok || err != nil {
			t.Fatalf("line %q: ok=%v err=%v, want skipped", line, ok, err)
		}
	}
	r, ok, err := l.ParseLine("kw=wk // trailing")
	if err != nil || !ok || r.Text != "kw=wk" {
		t.Fatalf("trailing comment not stripped: %+v %v %v", r, ok, err)
	}
}

func TestParseLineStripsParentheses(t *testing.T) {
	l := NewLoader(nil, nil)
	plain, _, err := l.ParseLine("kww=kgg")
	if err != nil {
		t.Fatal(err)
	}
	wrapped, ok, err := l.ParseLine("(kww=kgg)")
	if err != nil || !ok {
		t.Fatalf("wrapped line: ok=%v err=%v", ok, err)
	}
	if !slices.Equal(plain.Lhs, wrapped.Lhs) || !slices.Equal(plain.Rhs, wrapped.Rhs) {
		t.Fatal("parenthesized rule should parse identically")
	}
}

func TestParseLineErrors(t *testing.T) {
	l := NewLoader(nil, nil)
	cases := map[string]error{
		"kww=kg":   ErrSideLength,
		"kw":       ErrSideCount,
		"k=w=g":    ErrSideCount,
		"kx=kk":    ErrUnknownSymbol,
		"kw= k":    ErrUnknownSymbol,
		"=":        grammar.ErrEmptyRule,
		"kwk=KWK":  ErrUnknownSymbol,
		"(kw)=(k)": ErrSideLength,
	}
	for line, want := range cases {
		if _, _, err := l.ParseLine(line); !errors.Is(err, want) {
			t.Errorf("ParseLine(%q) = %v, want %v", line, err, want)
		}
	}
}

func TestParseReportsOffendingLine(t *testing.T) {
	src := "kw=wk\n\n// comment\nkww=k\n"
	_, err := Parse(strings.NewReader(src))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Line != 4 || le.Text != "kww=k" {
		t.Fatalf("unexpected location %d %q", le.Line, le.Text)
	}
	if !errors.Is(err, ErrSideLength) {
		t.Fatal("LoadError should unwrap to the cause")
	}
}

func TestParseKeepsOrder(t *testing.T) {
	rs, err := Parse(strings.NewReader("r=b\n(kw=wk)\nggg=www // three\n"))
	if err != nil {
		t.Fatal(err)
	}
	if rs.Len() != 3 {
		t.Fatalf("expected 3 rules, got %d", rs.Len())
	}
	for i, want := range []int{1, 2, 3} {
		if r := rs.At(i); r.Index != i || r.Len() != want {
			t.Fatalf("rule %d = %+v", i, r)
		}
	}
}

func TestCustomAlphabet(t *testing.T) {
	a, err := grammar.NewAlphabet([]grammar.Symbol{{Rune: '#', Name: "wall"}, {Rune: '.', Name: "floor"}})
	if err != nil {
		t.Fatal(err)
	}
	r, ok, err := NewLoader(a, nil).ParseLine("#.#=###")
	if err != nil || !ok {
		t.Fatalf("ParseLine: %v", err)
	}
	if !slices.Equal(r.Lhs, []grammar.Category{0, 1, 0}) {
		t.Fatalf("lhs = %v", r.Lhs)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.txt")
	if err := os.WriteFile(path, []byte("kwk=kkk\nwkw=www\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := NewLoader(nil, nil).LoadFile(path)
	if err != nil || rs.Len() != 2 {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, err := NewLoader(nil, nil).LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestBundledRuleFilesParse(t *testing.T) {
	for _, name := range []string{"caves.txt", "frame.txt"} {
		if _, err := NewLoader(nil, nil).LoadFile(filepath.Join("..", "..", "rules", name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
