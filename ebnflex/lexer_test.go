package ebnflex

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/ebnf"
)

const testGrammar = `
Identifier = letter { letter | digit } .
Number = digit { digit } .
WhiteSpace = " " | "\t" | "\n" .
Arrow = "->" | "-" .
letter = "a" … "z" | "A" … "Z" | "_" .
digit = "0" … "9" .
`

func mustGrammar(t *testing.T, src string) ebnf.Grammar {
	t.Helper()
	g, err := ParseGrammar("test.ebnf", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	return g
}

func mustLexer(t *testing.T, input string) *Lexer {
	t.Helper()
	l, err := NewLexer(mustGrammar(t, testGrammar), []byte(input), "")
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	return l
}

func TestLexerNewLexer(t *testing.T) {
	l, err := NewLexer(mustGrammar(t, testGrammar), []byte("abc"), "input.txt")
	if err != nil {
		t.Fatal(err)
	}
	want := Position{Filename: "input.txt", Offset: 0, Line: 1, Column: 1}
	if got := l.Position(); got != want {
		t.Errorf("Position() = %+v, want %+v", got, want)
	}
	if got := want.String(); got != "input.txt:1:1" {
		t.Errorf("String() = %q, want %q", got, "input.txt:1:1")
	}
}

func TestLexerTokenize(t *testing.T) {
	l := mustLexer(t, "foo 42\nbar")
	got, err := l.Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	want := []Token{
		{Kind: "Identifier", Literal: "foo", Position: Position{Offset: 0, Line: 1, Column: 1}},
		{Kind: "WhiteSpace", Literal: " ", Position: Position{Offset: 3, Line: 1, Column: 4}},
		{Kind: "Number", Literal: "42", Position: Position{Offset: 4, Line: 1, Column: 5}},
		{Kind: "WhiteSpace", Literal: "\n", Position: Position{Offset: 6, Line: 1, Column: 7}},
		{Kind: "Identifier", Literal: "bar", Position: Position{Offset: 7, Line: 2, Column: 1}},
		{Kind: KindEOF, Position: Position{Offset: 10, Line: 2, Column: 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerSkipKinds(t *testing.T) {
	l := mustLexer(t, "a1 b2\t c3")
	l.SetSkipKinds("WhiteSpace")
	got, err := l.Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	var kinds, literals []string
	for _, tok := range got {
		kinds = append(kinds, tok.Kind)
		literals = append(literals, tok.Literal)
	}
	if diff := cmp.Diff([]string{"Identifier", "Identifier", "Identifier", KindEOF}, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a1", "b2", "c3", ""}, literals); diff != "" {
		t.Errorf("literals mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerLongestMatch(t *testing.T) {
	l := mustLexer(t, "->-")
	tests := []string{"->", "-"}
	for _, want := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind != "Arrow" || tok.Literal != want {
			t.Errorf("NextToken() = %s %q, want Arrow %q", tok.Kind, tok.Literal, want)
		}
	}
}

func TestLexerErrorToken(t *testing.T) {
	l := mustLexer(t, "☃x$")
	want := []struct {
		kind    string
		literal string
		column  int
	}{
		{KindError, "☃", 1},
		{"Identifier", "x", 2},
		{KindError, "$", 3},
	}
	for _, w := range want {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind != w.kind || tok.Literal != w.literal || tok.Position.Column != w.column {
			t.Errorf("NextToken() = %s, want %s %q at column %d", tok, w.kind, w.literal, w.column)
		}
	}
	tok, err := l.NextToken()
	if err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
	if tok.Kind != KindEOF || tok.Position.Offset != 3 {
		t.Errorf("EOF token = %+v", tok)
	}
}

func TestLexerEmptyInput(t *testing.T) {
	l := mustLexer(t, "")
	tok, err := l.NextToken()
	if err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
	if tok.Kind != KindEOF {
		t.Errorf("Kind = %q, want %q", tok.Kind, KindEOF)
	}
}

func TestLexerInvalidUTF8(t *testing.T) {
	_, err := NewLexer(mustGrammar(t, testGrammar), []byte{'a', 0xff}, "bad.txt")
	if err == nil {
		t.Fatal("NewLexer accepted invalid UTF-8")
	}
	if !strings.HasPrefix(err.Error(), "bad.txt: ") {
		t.Errorf("error = %q, want filename prefix", err)
	}
}

func TestCompileTokens(t *testing.T) {
	g := mustGrammar(t, `
		Word = "a" … "z" { "a" … "z" } .
		Dot = "." .
		Sign = [ "+" | "-" ] digit .
		Empty = .
		digit = "0" … "9" .
	`)
	patterns, err := CompileTokens(g)
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[string]string)
	var names []string
	for _, p := range patterns {
		got[p.Name] = p.Expr
		names = append(names, p.Name)
		if p.Pattern() == nil {
			t.Errorf("%s: Pattern() is nil", p.Name)
		}
	}
	if diff := cmp.Diff([]string{"Dot", "Sign", "Word"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	want := map[string]string{
		"Word": `[a-z](?:[a-z])*`,
		"Dot":  `\.`,
		"Sign": `(?:(?:\+|-))?(?:[0-9])`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expressions mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileTokensErrors(t *testing.T) {
	tests := []struct {
		name    string
		grammar string
		want    error
	}{
		{"recursive", `List = "a" [ List ] .`, ErrRecursiveToken},
		{"indirect", `List = item . item = "(" [ List ] ")" .`, ErrRecursiveToken},
		{"undefined", `Word = letter .`, ErrUndefinedProduction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileTokens(mustGrammar(t, tt.grammar))
			if !errors.Is(err, tt.want) {
				t.Errorf("CompileTokens error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadGrammar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.ebnf")
	if err := os.WriteFile(path, []byte(testGrammar), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadGrammar(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g["Identifier"]; !ok {
		t.Error("grammar is missing Identifier")
	}

	if _, err := LoadGrammar(filepath.Join(t.TempDir(), "missing.ebnf")); err == nil {
		t.Error("LoadGrammar succeeded for a missing file")
	}
}

func TestNewLexerFromPatternLiterals(t *testing.T) {
	patterns := []TokenPattern{
		{Name: "Word", Expr: `[a-z]+`},
		{Name: "Space", Expr: ` `},
	}
	l, err := NewLexerFromPatterns(patterns, []byte("ab c"), "")
	if err != nil {
		t.Fatal(err)
	}
	l.SetSkipKinds("Space")
	got, err := l.Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	var kinds []string
	for _, tok := range got {
		kinds = append(kinds, tok.Kind+" "+tok.Literal)
	}
	if diff := cmp.Diff([]string{"Word ab", "Word c", KindEOF + " "}, kinds); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	if patterns[0].Pattern() != nil {
		t.Error("NewLexerFromPatterns modified the caller's patterns")
	}

	if _, err := NewLexerFromPatterns([]TokenPattern{{Name: "Bad", Expr: `[`}}, nil, ""); err == nil {
		t.Error("NewLexerFromPatterns accepted an invalid expression")
	}
}
