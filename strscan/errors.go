package strscan

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 is returned when a source or appended text is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")

	// ErrNothingToUnscan is returned by Unscan when no advancing match is on record.
	ErrNothingToUnscan = errors.New("nothing to unscan")
)

// validate returns an ErrInvalidUTF8 wrapper naming the first bad byte of text.
func validate(text string) error {
	if utf8.ValidString(text) {
		return nil
	}
	for i, r := range text {
		if r == utf8.RuneError {
			if _, w := utf8.DecodeRuneInString(text[i:]); w == 1 {
				return fmt.Errorf("%w at byte %d", ErrInvalidUTF8, i)
			}
		}
	}
	return ErrInvalidUTF8
}
