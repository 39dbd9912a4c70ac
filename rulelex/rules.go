// Package rulelex tokenizes input with an ordered list of regular expression
// rules, the first matching rule winning.
package rulelex

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/strscan/strscan"
)

// Rule is a named token pattern. Tokens of a Skip rule are consumed but not
// returned. Rules are built with NewRule or ParseRules; a Rule literal is
// compiled from Expr when passed to New.
type Rule struct {
	Name string
	Expr string
	Skip bool

	pattern *strscan.Regexp
}

// compiled is shared by all rules so repeated expressions compile once.
var compiled = strscan.NewCache()

// NewRule compiles expr into a rule. A name starting with an underscore
// marks the rule as skipped.
func NewRule(name, expr string) (Rule, error) {
	re, err := compiled.Get(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", name, err)
	}
	return Rule{Name: name, Expr: expr, Skip: strings.HasPrefix(name, "_"), pattern: re}, nil
}

// SyntaxError describes a malformed rules file.
type SyntaxError struct {
	Filename string
	Position Position
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Position.Line, e.Position.Column, e.Msg)
}

var (
	ruleBlank   = strscan.MustCompile(`[ \t]+`)
	ruleComment = strscan.MustCompile(`#[^\n]*`)
	ruleNewline = strscan.MustCompile(`\r?\n`)
	ruleName    = strscan.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	ruleEquals  = strscan.MustCompile(`=`)
	ruleRegexp  = strscan.MustCompile(`/((?:\\.|[^/\\\n])*)/`)
)

// ParseRules reads a rules file. Each non-blank line holds one rule of the
// form
//
//	Name = /regexp/
//
// where a slash inside the regexp is written as \/. Lines starting with #
// are comments.
func ParseRules(filename string, r io.Reader) ([]Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	s, err := strscan.New(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	p := &ruleParser{filename: filename, s: s, line: 1}
	return p.parse()
}

type ruleParser struct {
	filename  string
	s         *strscan.Scanner
	line      int
	lineStart int
}

func (p *ruleParser) position() Position {
	return Position{
		Offset: p.s.Position(),
		Line:   p.line,
		Column: p.s.Position() - p.lineStart + 1,
	}
}

func (p *ruleParser) errorf(format string, args ...any) error {
	return &SyntaxError{Filename: p.filename, Position: p.position(), Msg: fmt.Sprintf(format, args...)}
}

func (p *ruleParser) newline() bool {
	if _, ok := p.s.Skip(ruleNewline); !ok {
		return false
	}
	p.line++
	p.lineStart = p.s.Position()
	return true
}

func (p *ruleParser) parse() ([]Rule, error) {
	var rules []Rule
	seen := make(map[string]bool)

	for {
		p.s.Skip(ruleBlank)
		p.s.Skip(ruleComment)
		if p.newline() {
			continue
		}
		if p.s.Terminated() {
			return rules, nil
		}

		namePos := p.position()
		name, ok := p.s.Scan(ruleName)
		if !ok {
			return nil, p.errorf("expected rule name, found %q", p.s.Peek(1))
		}
		if seen[name] {
			return nil, &SyntaxError{Filename: p.filename, Position: namePos, Msg: "duplicate rule " + name}
		}
		seen[name] = true

		p.s.Skip(ruleBlank)
		if _, ok := p.s.Skip(ruleEquals); !ok {
			return nil, p.errorf("expected '=' after %s", name)
		}
		p.s.Skip(ruleBlank)

		exprPos := p.position()
		if _, ok := p.s.Scan(ruleRegexp); !ok {
			return nil, p.errorf("expected /regexp/ for %s", name)
		}
		body, _ := p.s.Capture(0)
		rule, err := NewRule(name, strings.ReplaceAll(body, `\/`, `/`))
		if err != nil {
			return nil, &SyntaxError{Filename: p.filename, Position: exprPos, Msg: err.Error()}
		}
		rules = append(rules, rule)

		p.s.Skip(ruleBlank)
		p.s.Skip(ruleComment)
		if !p.newline() && !p.s.Terminated() {
			return nil, p.errorf("unexpected %q after rule %s", p.s.Peek(1), name)
		}
	}
}
