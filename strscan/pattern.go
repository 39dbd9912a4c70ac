package strscan

import (
	"fmt"
	"regexp"
	"sync"
)

// Pattern is the matching capability a Scanner delegates to.
//
// Both methods return byte spans into s in the layout of
// regexp.Regexp.FindStringSubmatchIndex: pairs of offsets for the whole
// match followed by each capture group, -1 for groups that did not
// participate, and nil when there is no match.
//
// Offsets must lie within s, on codepoint boundaries, with each start not
// after its end. A Scanner treats a result that breaks these rules as no
// match.
type Pattern interface {
	// MatchPrefix matches at the very start of s.
	MatchPrefix(s string) []int
	// FindFirst returns the leftmost match anywhere in s.
	FindFirst(s string) []int
}

// Regexp is a Pattern backed by the standard regexp engine.
type Regexp struct {
	expr     string
	search   *regexp.Regexp
	anchored *regexp.Regexp
}

// Compile parses expr using RE2 syntax with leftmost-first semantics.
func Compile(expr string) (*Regexp, error) {
	return compile(expr, false)
}

// CompileLongest is like Compile but prefers the leftmost-longest match,
// the way a lexer picks between alternatives.
func CompileLongest(expr string) (*Regexp, error) {
	return compile(expr, true)
}

// MustCompile is like Compile but panics if expr cannot be parsed.
func MustCompile(expr string) *Regexp {
	re, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("strscan: Compile(%q): %v", expr, err))
	}
	return re
}

func compile(expr string, longest bool) (*Regexp, error) {
	search, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	anchored, err := regexp.Compile(`\A(?:` + expr + `)`)
	if err != nil {
		return nil, err
	}
	if longest {
		search.Longest()
		anchored.Longest()
	}
	return &Regexp{expr: expr, search: search, anchored: anchored}, nil
}

// String returns the source text used to compile the pattern.
func (re *Regexp) String() string { return re.expr }

// NumCaptures returns the number of capture groups in the pattern.
func (re *Regexp) NumCaptures() int { return re.search.NumSubexp() }

// MatchPrefix implements Pattern.
func (re *Regexp) MatchPrefix(s string) []int {
	return re.anchored.FindStringSubmatchIndex(s)
}

// FindFirst implements Pattern.
func (re *Regexp) FindFirst(s string) []int {
	return re.search.FindStringSubmatchIndex(s)
}

// Cache compiles expressions once and hands out the shared result.
// It is safe for concurrent use.
type Cache struct {
	longest bool

	mu       sync.Mutex
	compiled map[string]*Regexp
}

// NewCache returns an empty cache using leftmost-first semantics.
func NewCache() *Cache {
	return &Cache{compiled: make(map[string]*Regexp)}
}

// NewLongestCache returns an empty cache using leftmost-longest semantics.
func NewLongestCache() *Cache {
	return &Cache{longest: true, compiled: make(map[string]*Regexp)}
}

// Get returns the compiled form of expr, compiling it on first use.
// Compilation errors are not cached.
func (c *Cache) Get(expr string) (*Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if re, ok := c.compiled[expr]; ok {
		return re, nil
	}
	re, err := compile(expr, c.longest)
	if err != nil {
		return nil, err
	}
	c.compiled[expr] = re
	return re, nil
}

// Len returns the number of compiled expressions held by the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.compiled)
}
