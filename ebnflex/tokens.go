package ebnflex

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/strscan/strscan"
)

var (
	// ErrRecursiveToken is returned when a token production refers to itself.
	ErrRecursiveToken = errors.New("recursive token production")

	// ErrUndefinedProduction is returned for references to unknown names.
	ErrUndefinedProduction = errors.New("undefined production")
)

// TokenPattern is a token production translated to a regular expression.
type TokenPattern struct {
	Name string
	Expr string

	re *strscan.Regexp
}

// Pattern returns the compiled pattern used to scan the token.
func (tp TokenPattern) Pattern() *strscan.Regexp { return tp.re }

// IsTokenName reports whether a production name denotes a token, that is,
// whether it starts with an uppercase letter.
func IsTokenName(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

// CompileTokens translates every token production of grammar into a
// leftmost-longest regular expression. Productions without an expression
// are ignored. The result is sorted by name.
func CompileTokens(grammar ebnf.Grammar) ([]TokenPattern, error) {
	c := &tokenCompiler{
		grammar:  grammar,
		done:     make(map[string]string),
		visiting: make(map[string]bool),
	}

	names := make([]string, 0, len(grammar))
	for name, prod := range grammar {
		if prod.Expr == nil || !IsTokenName(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	patterns := make([]TokenPattern, 0, len(names))
	for _, name := range names {
		expr, err := c.name(name)
		if err != nil {
			return nil, err
		}
		re, err := strscan.CompileLongest(expr)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		log.Debugf("token %s = /%s/", name, expr)
		patterns = append(patterns, TokenPattern{Name: name, Expr: expr, re: re})
	}
	return patterns, nil
}

type tokenCompiler struct {
	grammar  ebnf.Grammar
	done     map[string]string
	visiting map[string]bool
}

func (c *tokenCompiler) name(name string) (string, error) {
	if expr, ok := c.done[name]; ok {
		return expr, nil
	}
	if c.visiting[name] {
		return "", fmt.Errorf("%w: %s", ErrRecursiveToken, name)
	}
	prod, ok := c.grammar[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUndefinedProduction, name)
	}

	c.visiting[name] = true
	defer delete(c.visiting, name)

	expr, err := c.expr(prod.Expr)
	if err != nil {
		return "", err
	}
	c.done[name] = expr
	return expr, nil
}

func (c *tokenCompiler) expr(expr ebnf.Expression) (string, error) {
	switch e := expr.(type) {
	case nil:
		return "", nil

	case *ebnf.Token:
		return regexp.QuoteMeta(e.String), nil

	case *ebnf.Range:
		lo, err := rangeBound(e.Begin)
		if err != nil {
			return "", err
		}
		hi, err := rangeBound(e.End)
		if err != nil {
			return "", err
		}
		return "[" + classChar(lo) + "-" + classChar(hi) + "]", nil

	case ebnf.Sequence:
		var b strings.Builder
		for _, item := range e {
			s, err := c.expr(item)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil

	case ebnf.Alternative:
		alts := make([]string, 0, len(e))
		for _, alt := range e {
			s, err := c.expr(alt)
			if err != nil {
				return "", err
			}
			alts = append(alts, s)
		}
		return "(?:" + strings.Join(alts, "|") + ")", nil

	case *ebnf.Group:
		s, err := c.expr(e.Body)
		return "(?:" + s + ")", err

	case *ebnf.Option:
		s, err := c.expr(e.Body)
		return "(?:" + s + ")?", err

	case *ebnf.Repetition:
		s, err := c.expr(e.Body)
		return "(?:" + s + ")*", err

	case *ebnf.Name:
		s, err := c.name(e.String)
		return "(?:" + s + ")", err

	default:
		return "", fmt.Errorf("unsupported expression %T at %s", expr, expr.Pos())
	}
}

func rangeBound(tok *ebnf.Token) (rune, error) {
	r, w := utf8.DecodeRuneInString(tok.String)
	if w == 0 || w != len(tok.String) {
		return 0, fmt.Errorf("range bound %q at %s is not a single character", tok.String, tok.Pos())
	}
	return r, nil
}

// classChar escapes r for use inside a character class.
func classChar(r rune) string {
	if strings.ContainsRune(`\]^-[`, r) {
		return `\` + string(r)
	}
	return string(r)
}
