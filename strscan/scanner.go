package strscan

import (
	"sort"
	"unicode/utf8"
)

// anyChar matches exactly one codepoint, newlines included.
var anyChar = MustCompile(`(?s).`)

type group struct {
	text string
	ok   bool
}

// match is the outcome of the most recent successful attempt.
// start and end are codepoint offsets of the whole match.
type match struct {
	whole    string
	captures []group
	start    int
	end      int
}

// A Scanner holds the source, the cursor, and the most recent match.
type Scanner struct {
	src     string
	offsets []int // byte offset of every codepoint, then len(src)

	pos      int
	prev     int
	undoable bool

	last *match
}

// New creates a scanner positioned at the start of src.
// It fails with ErrInvalidUTF8 if src is not valid UTF-8.
func New(src string) (*Scanner, error) {
	s := &Scanner{}
	if err := s.SetSource(src); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is like New but panics on invalid input.
func MustNew(src string) *Scanner {
	s, err := New(src)
	if err != nil {
		panic("strscan: " + err.Error())
	}
	return s
}

// SetSource replaces the source and reinitializes the scanner as if it had
// just been created. On error the scanner is left unchanged.
func (s *Scanner) SetSource(src string) error {
	if err := validate(src); err != nil {
		return err
	}
	s.src = src
	s.offsets = appendOffsets(make([]int, 0, len(src)+1), src, 0)
	s.Reset()
	return nil
}

// appendOffsets appends the byte offset of every codepoint of text, shifted
// by base, followed by the end offset.
func appendOffsets(offsets []int, text string, base int) []int {
	for i := range text {
		offsets = append(offsets, base+i)
	}
	return append(offsets, base+len(text))
}

func (s *Scanner) length() int { return len(s.offsets) - 1 }

// slice returns the source between two codepoint offsets.
func (s *Scanner) slice(from, to int) string {
	return s.src[s.offsets[from]:s.offsets[to]]
}

// index converts a byte offset on a codepoint boundary to a codepoint offset.
func (s *Scanner) index(byteOffset int) int {
	return sort.SearchInts(s.offsets, byteOffset)
}

// attempt runs p against the remainder and records the result. On success
// it returns the codepoint offset just past the match.
func (s *Scanner) attempt(p Pattern, anchored bool) (int, bool) {
	rem := s.Remainder()

	var loc []int
	if anchored {
		loc = p.MatchPrefix(rem)
	} else {
		loc = p.FindFirst(rem)
	}

	// Empty matches are rejected so scanning loops always make progress.
	if !validSpans(loc, rem) || loc[0] == loc[1] || (anchored && loc[0] != 0) {
		s.last = nil
		s.undoable = false
		return 0, false
	}

	base := s.offsets[s.pos]
	m := &match{
		whole: rem[loc[0]:loc[1]],
		start: s.index(base + loc[0]),
		end:   s.index(base + loc[1]),
	}
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			m.captures = append(m.captures, group{})
			continue
		}
		m.captures = append(m.captures, group{text: rem[loc[i]:loc[i+1]], ok: true})
	}
	s.last = m
	return m.end, true
}

// validSpans reports whether loc is a well-formed result for rem: an even
// number of offsets, the whole match present, and every participating span
// ordered, in range and on codepoint boundaries.
func validSpans(loc []int, rem string) bool {
	if len(loc) < 2 || len(loc)%2 != 0 || loc[0] < 0 {
		return false
	}
	for i := 0; i < len(loc); i += 2 {
		lo, hi := loc[i], loc[i+1]
		if lo < 0 && hi < 0 && i > 0 {
			continue
		}
		if lo < 0 || hi < lo || hi > len(rem) {
			return false
		}
		if !onBoundary(rem, lo) || !onBoundary(rem, hi) {
			return false
		}
	}
	return true
}

func onBoundary(s string, i int) bool {
	return i == len(s) || utf8.RuneStart(s[i])
}

func (s *Scanner) advance(to int) {
	s.prev = s.pos
	s.pos = to
	s.undoable = true
}

// Scan matches p at the cursor. On success it advances past the match and
// returns the matched text.
func (s *Scanner) Scan(p Pattern) (string, bool) {
	end, ok := s.attempt(p, true)
	if !ok {
		return "", false
	}
	s.advance(end)
	return s.last.whole, true
}

// ScanUntil finds the first match of p at or after the cursor. On success it
// advances past the match and returns everything from the old cursor through
// the end of the match.
func (s *Scanner) ScanUntil(p Pattern) (string, bool) {
	from := s.pos
	end, ok := s.attempt(p, false)
	if !ok {
		return "", false
	}
	s.advance(end)
	return s.slice(from, end), true
}

// Check is like Scan but never moves the cursor.
func (s *Scanner) Check(p Pattern) (string, bool) {
	if _, ok := s.attempt(p, true); !ok {
		return "", false
	}
	s.undoable = false
	return s.last.whole, true
}

// CheckUntil is like ScanUntil but never moves the cursor.
func (s *Scanner) CheckUntil(p Pattern) (string, bool) {
	end, ok := s.attempt(p, false)
	if !ok {
		return "", false
	}
	s.undoable = false
	return s.slice(s.pos, end), true
}

// ScanChar scans a single codepoint, including line terminators.
func (s *Scanner) ScanChar() (string, bool) {
	return s.Scan(anyChar)
}

// Skip is like Scan but returns the number of codepoints advanced.
func (s *Scanner) Skip(p Pattern) (int, bool) {
	from := s.pos
	if _, ok := s.Scan(p); !ok {
		return 0, false
	}
	return s.pos - from, true
}

// SkipUntil is like ScanUntil but returns the number of codepoints advanced.
func (s *Scanner) SkipUntil(p Pattern) (int, bool) {
	from := s.pos
	if _, ok := s.ScanUntil(p); !ok {
		return 0, false
	}
	return s.pos - from, true
}

// Peek returns up to n codepoints following the cursor without touching any
// state. Fewer are returned near the end of the source.
func (s *Scanner) Peek(n int) string {
	if n <= 0 {
		return ""
	}
	if rest := s.length() - s.pos; n > rest {
		n = rest
	}
	return s.slice(s.pos, s.pos+n)
}

// Source returns the full source text.
func (s *Scanner) Source() string { return s.src }

// Remainder returns the source from the cursor onward.
func (s *Scanner) Remainder() string { return s.src[s.offsets[s.pos]:] }

// Position returns the cursor as a codepoint offset.
func (s *Scanner) Position() int { return s.pos }

// Len returns the length of the source in codepoints.
func (s *Scanner) Len() int { return s.length() }

// Terminated reports whether the cursor is at the end of the source.
func (s *Scanner) Terminated() bool { return s.pos == s.length() }

// Match returns the text of the most recent match.
func (s *Scanner) Match() (string, bool) {
	if s.last == nil {
		return "", false
	}
	return s.last.whole, true
}

// Capture returns the i-th capture group of the most recent match, counting
// from zero. Groups that did not participate in the match are absent.
func (s *Scanner) Capture(i int) (string, bool) {
	if s.last == nil || i < 0 || i >= len(s.last.captures) {
		return "", false
	}
	g := s.last.captures[i]
	return g.text, g.ok
}

// Captures returns the number of capture groups of the most recent match.
func (s *Scanner) Captures() int {
	if s.last == nil {
		return 0
	}
	return len(s.last.captures)
}

// PreMatch returns the source preceding the most recent match. The bound is
// the start of the match itself, so after Check or CheckUntil it is not the
// cursor.
func (s *Scanner) PreMatch() (string, bool) {
	if s.last == nil {
		return "", false
	}
	return s.slice(0, s.last.start), true
}

// PostMatch returns the source following the most recent match, including
// anything appended with Concat since the match was made. After Check or
// CheckUntil it starts past the checked text, not at the cursor, so
// PreMatch, Match and PostMatch always concatenate to Source.
func (s *Scanner) PostMatch() (string, bool) {
	if s.last == nil {
		return "", false
	}
	return s.src[s.offsets[s.last.end]:], true
}

// Reset moves the cursor to the start and clears the match.
func (s *Scanner) Reset() {
	s.pos = 0
	s.prev = 0
	s.undoable = false
	s.last = nil
}

// Terminate moves the cursor to the end of the source and clears the match.
func (s *Scanner) Terminate() {
	s.prev = s.pos
	s.pos = s.length()
	s.undoable = false
	s.last = nil
}

// Concat appends text to the source. The cursor and match are untouched, so a
// terminated scanner can continue into the new text.
func (s *Scanner) Concat(text string) error {
	if err := validate(text); err != nil {
		return err
	}
	base := len(s.src)
	s.src += text
	s.offsets = appendOffsets(s.offsets[:len(s.offsets)-1], text, base)
	return nil
}

// Unscan restores the cursor to where it was before the last advancing match
// and clears the match. Only one level is kept: it fails with
// ErrNothingToUnscan unless the most recent matching attempt was a successful Scan,
// ScanUntil, ScanChar, Skip or SkipUntil.
func (s *Scanner) Unscan() error {
	if s.last == nil || !s.undoable {
		return ErrNothingToUnscan
	}
	s.pos = s.prev
	s.undoable = false
	s.last = nil
	return nil
}
