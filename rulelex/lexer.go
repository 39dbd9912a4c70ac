package rulelex

import (
	"fmt"
	"io"

	"github.com/dhamidi/strscan/strscan"
)

// Position is a location in the input. Offset and Column count codepoints.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a piece of input matched by a rule.
type Token struct {
	Kind     string
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

// UnexpectedError is returned when no rule matches at a position.
type UnexpectedError struct {
	Position Position
	Char     string
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: unexpected %q", e.Position, e.Char)
}

// Lexer applies rules to an input in order.
type Lexer struct {
	rules   []Rule
	scanner *strscan.Scanner
	line    int
	column  int
}

// New creates a lexer over input. Rules built as struct literals are
// compiled from their Expr.
func New(rules []Rule, input string) (*Lexer, error) {
	compiledRules := make([]Rule, len(rules))
	for i, rule := range rules {
		if rule.pattern == nil {
			re, err := compiled.Get(rule.Expr)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			rule.pattern = re
		}
		compiledRules[i] = rule
	}

	s, err := strscan.New(input)
	if err != nil {
		return nil, err
	}
	return &Lexer{rules: compiledRules, scanner: s, line: 1, column: 1}, nil
}

// Position returns the current position.
func (l *Lexer) Position() Position {
	return Position{Offset: l.scanner.Position(), Line: l.line, Column: l.column}
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

// Next returns the next token, or io.EOF at the end of the input. When no
// rule matches, the lexer stays in place and returns an *UnexpectedError.
func (l *Lexer) Next() (Token, error) {
next:
	for !l.scanner.Terminated() {
		pos := l.Position()
		for _, rule := range l.rules {
			literal, ok := l.scanner.Scan(rule.pattern)
			if !ok {
				continue
			}
			l.advance(literal)
			if rule.Skip {
				continue next
			}
			return Token{Kind: rule.Name, Literal: literal, Position: pos}, nil
		}
		return Token{}, &UnexpectedError{Position: pos, Char: l.scanner.Peek(1)}
	}
	return Token{}, io.EOF
}

// All returns every remaining token.
func (l *Lexer) All() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}
