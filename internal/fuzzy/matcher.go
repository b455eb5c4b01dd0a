// Package fuzzy decides whether an expected short string (a name, a
// facility keyword) is present in a larger noisy text.
//
// OCR errors are typically local character-level noise (an accidental
// substitution, merge, or split) rather than semantic rewrites, so the
// matcher scores candidates with Levenshtein edit distance, which models
// exactly that error class.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// DefaultThreshold is the minimum similarity for a token to count as a
// match. It is an empirical tolerance: high enough to reject unrelated
// words, low enough to absorb a couple of OCR character errors in short
// names.
const DefaultThreshold = 0.7

// levenshtein uses unit costs for substitution, insertion, and deletion.
var levenshtein = metrics.NewLevenshtein()

// Distance returns the Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	return levenshtein.Distance(a, b)
}

// Similarity returns 1 - distance/max(len(a), len(b)) in [0, 1].
// It returns 0 if either string is empty.
func Similarity(a, b string) float64 {
	if utf8.RuneCountInString(a) == 0 || utf8.RuneCountInString(b) == 0 {
		return 0
	}
	return strutil.Similarity(a, b, levenshtein)
}

// Match reports the outcome of a keyword search in noisy text.
type Match struct {
	// Found is true when the keyword was located above the threshold.
	Found bool

	// Similarity is the best similarity score seen, in [0, 1].
	Similarity float64

	// MatchedWord is the token from the text that matched. It is only
	// set when Found is true.
	MatchedWord string
}

// Contains searches for keyword in text, tolerating OCR noise.
//
// The text is tokenized on whitespace and every token is scored against
// the keyword; the first token achieving the maximum similarity wins.
// Found is true iff the best similarity is at least threshold.
//
// When the token-level search misses, a literal substring check of the
// lowercased keyword inside the lowercased text is treated as a perfect
// match. This handles multi-word keywords that tokenization would
// otherwise never match as a single token.
func Contains(text, keyword string, threshold float64) Match {
	keyword = strings.ToLower(keyword)
	text = strings.ToLower(text)

	var best Match
	for _, word := range strings.Fields(text) {
		if s := Similarity(word, keyword); s > best.Similarity {
			best.Similarity = s
			best.MatchedWord = word
		}
	}

	if best.MatchedWord != "" && best.Similarity >= threshold {
		best.Found = true
		return best
	}

	if keyword != "" && strings.Contains(text, keyword) {
		return Match{Found: true, Similarity: 1, MatchedWord: keyword}
	}

	best.MatchedWord = ""
	return best
}
