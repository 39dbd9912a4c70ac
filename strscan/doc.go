// Package strscan provides a stateful string scanner for hand-written lexers.
//
// A Scanner walks a source string from left to right. Each matching
// operation runs a Pattern against the remainder of the source, either
// anchored at the cursor (Scan, Check) or searching ahead of it (ScanUntil,
// CheckUntil). The most recent match is kept so its text, capture groups and
// surrounding context can be inspected until the next attempt.
//
// All positions and lengths are counted in Unicode codepoints, never bytes:
//
//	s := strscan.MustNew("☃ snow")
//	s.ScanChar()   // "☃", true
//	s.Position()   // 1
//
// A failed match is not an error. Every matching operation reports absence
// through its boolean result and clears the recorded match. Only two
// conditions produce errors: a source that is not valid UTF-8, and Unscan
// without a match to undo.
//
// A Scanner is not safe for concurrent use.
package strscan
