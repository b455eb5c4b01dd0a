// Package textnorm normalizes OCR output so it can be compared against
// expected field values despite recognition noise, mixed scripts, and
// formatting artifacts.
//
// Documents processed by the verifier commonly mix Latin-script text
// (including French) with Arabic-script text, so normalization preserves
// both scripts alongside ASCII digits and drops everything else.
package textnorm

import (
	"strings"
	"unicode"
)

// CleanText lowercases the input, removes every character that is not a
// Latin-script letter, an Arabic-script letter, an ASCII digit, or
// whitespace, collapses whitespace runs to single spaces, and trims the
// ends. It is deterministic, total, and idempotent: cleaning an already
// cleaned string is a no-op.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			if b.Len() > 0 {
				pendingSpace = true
			}
		case r >= '0' && r <= '9', unicode.Is(unicode.Latin, r), unicode.Is(unicode.Arabic, r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}

	return b.String()
}

// ExtractDigits strips everything except ASCII digits.
//
// Registration numbers and dates are matched on their digit sequence
// rather than fuzzy string similarity: OCR renders formatted numbers with
// unpredictable punctuation, which makes edit distance on the raw tokens
// unreliable.
func ExtractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
