// Package ebnflex provides lexical scanning based on EBNF grammars.
package ebnflex

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/strscan/strscan"
)

var log = commonlog.GetLogger("strscan.ebnflex")

// Position represents a location in source code.
// Offset and Column count codepoints.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token with its position.
type Token struct {
	Kind     string
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

const (
	KindEOF   = "EOF"
	KindError = "ERROR"
)

// Lexer tokenizes input based on the token productions of an EBNF grammar.
type Lexer struct {
	patterns []TokenPattern
	scanner  *strscan.Scanner
	filename string
	line     int
	column   int
	skip     map[string]bool
}

// NewLexer creates a lexer for the given grammar and input.
func NewLexer(grammar ebnf.Grammar, input []byte, filename string) (*Lexer, error) {
	patterns, err := CompileTokens(grammar)
	if err != nil {
		return nil, err
	}
	return NewLexerFromPatterns(patterns, input, filename)
}

// NewLexerFromPatterns creates a lexer from token patterns. Patterns not
// produced by CompileTokens are compiled from their Expr.
func NewLexerFromPatterns(patterns []TokenPattern, input []byte, filename string) (*Lexer, error) {
	compiled := make([]TokenPattern, len(patterns))
	for i, tp := range patterns {
		if tp.re == nil {
			re, err := strscan.CompileLongest(tp.Expr)
			if err != nil {
				return nil, fmt.Errorf("compile %s: %w", tp.Name, err)
			}
			tp.re = re
		}
		compiled[i] = tp
	}

	s, err := strscan.New(string(input))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &Lexer{
		patterns: compiled,
		scanner:  s,
		filename: filename,
		line:     1,
		column:   1,
		skip:     make(map[string]bool),
	}, nil
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	return ParseGrammar(filename, f)
}

// ParseGrammar parses an EBNF grammar from r.
func ParseGrammar(filename string, r io.Reader) (ebnf.Grammar, error) {
	grammar, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return grammar, nil
}

// SetSkipKinds sets which token kinds are dropped instead of returned.
func (l *Lexer) SetSkipKinds(kinds ...string) {
	l.skip = make(map[string]bool, len(kinds))
	for _, k := range kinds {
		l.skip[k] = true
	}
}

// Position returns the current position in the input.
func (l *Lexer) Position() Position {
	return Position{
		Filename: l.filename,
		Offset:   l.scanner.Position(),
		Line:     l.line,
		Column:   l.column,
	}
}

func (l *Lexer) advance(text string) {
	for _, r := range text {
		if r == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	}
}

// NextToken returns the next token from the input.
// Every token pattern is tried at the current position and the longest match
// wins; ties go to the name that sorts first. Input that no token matches is
// returned one character at a time as ERROR tokens.
func (l *Lexer) NextToken() (Token, error) {
	for {
		if l.scanner.Terminated() {
			return Token{Kind: KindEOF, Position: l.Position()}, io.EOF
		}

		tok := l.scan()
		if l.skip[tok.Kind] {
			log.Debugf("%s: skipped %s", tok.Position, tok.Kind)
			continue
		}
		return tok, nil
	}
}

func (l *Lexer) scan() Token {
	startPos := l.Position()

	var best *TokenPattern
	bestLen := 0
	for i := range l.patterns {
		tp := &l.patterns[i]
		m, ok := l.scanner.Check(tp.re)
		if !ok {
			continue
		}
		if n := utf8.RuneCountInString(m); n > bestLen {
			best = tp
			bestLen = n
		}
	}

	if best == nil {
		ch, _ := l.scanner.ScanChar()
		l.advance(ch)
		return Token{Kind: KindError, Literal: ch, Position: startPos}
	}

	literal, _ := l.scanner.Scan(best.re)
	l.advance(literal)
	return Token{Kind: best.Name, Literal: literal, Position: startPos}
}

// Tokenize reads all tokens from input.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			tokens = append(tokens, tok)
			break
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
