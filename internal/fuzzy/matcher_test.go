package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"benali", "benali", 0},
		{"benali", "bena1i", 1},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Distance(tt.a, tt.b), "Distance(%q, %q)", tt.a, tt.b)
		require.Equal(t, tt.want, Distance(tt.b, tt.a), "Distance must be symmetric for %q, %q", tt.a, tt.b)
	}
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"", "abc"},
		{"abc", ""},
		{"a", "a"},
		{"benali", "bena1i"},
		{"pharmacie", "centrale"},
		{"الدكتور", "دكتور"},
	}

	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		require.GreaterOrEqual(t, s, 0.0, "Similarity(%q, %q)", p[0], p[1])
		require.LessOrEqual(t, s, 1.0, "Similarity(%q, %q)", p[0], p[1])
	}

	// Identity for any non-empty string.
	for _, s := range []string{"a", "benali", "clinique el amal"} {
		require.Equal(t, 1.0, Similarity(s, s))
	}

	// Empty on either side is 0, not 1.
	require.Equal(t, 0.0, Similarity("", ""))
	require.Equal(t, 0.0, Similarity("abc", ""))
	require.Equal(t, 0.0, Similarity("", "abc"))
}

func TestSimilarityEditDistanceRatio(t *testing.T) {
	// One substitution in a six-letter word: 1 - 1/6.
	require.InDelta(t, 5.0/6.0, Similarity("bena1i", "benali"), 1e-9)
}

func TestContainsExactToken(t *testing.T) {
	m := Contains("dr ahmed benali licence n 12345", "benali", DefaultThreshold)

	require.True(t, m.Found)
	require.Equal(t, 1.0, m.Similarity)
	require.Equal(t, "benali", m.MatchedWord)
}

func TestContainsToleratesOCRNoise(t *testing.T) {
	// Digit-for-letter substitution, a classic recognition error.
	m := Contains("dr ahmed bena1i licence n 12345", "benali", DefaultThreshold)

	require.True(t, m.Found)
	require.InDelta(t, 5.0/6.0, m.Similarity, 1e-9)
	require.Equal(t, "bena1i", m.MatchedWord)
}

func TestContainsRejectsUnrelatedText(t *testing.T) {
	m := Contains("pharmacie centrale ouverte 24h", "benali", DefaultThreshold)

	require.False(t, m.Found)
	require.Less(t, m.Similarity, DefaultThreshold)
	require.Empty(t, m.MatchedWord)
}

func TestContainsMultiWordFallback(t *testing.T) {
	// No single token can match a multi-word keyword; the substring
	// fallback treats the literal occurrence as a perfect match.
	m := Contains("clinique el amal alger centre", "el amal", DefaultThreshold)

	require.True(t, m.Found)
	require.Equal(t, 1.0, m.Similarity)
	require.Equal(t, "el amal", m.MatchedWord)
}

func TestContainsCaseInsensitive(t *testing.T) {
	m := Contains("Dr Ahmed BENALI", "Benali", DefaultThreshold)

	require.True(t, m.Found)
	require.Equal(t, "benali", m.MatchedWord)
}

func TestContainsFirstOccurrenceWinsTies(t *testing.T) {
	// Both tokens are at distance 1 from the keyword; the left-to-right
	// scan must keep the first.
	m := Contains("benalx benalz", "benali", 0.5)

	require.True(t, m.Found)
	require.Equal(t, "benalx", m.MatchedWord)
}

func TestContainsEmptyKeyword(t *testing.T) {
	m := Contains("some text", "", DefaultThreshold)

	require.False(t, m.Found)
	require.Equal(t, 0.0, m.Similarity)
}

func TestContainsThresholdMonotonic(t *testing.T) {
	texts := []string{
		"dr ahmed bena1i licence n 12345",
		"pharmacie centrale ouverte 24h",
		"clinique el amal alger",
	}
	keywords := []string{"benali", "el amal", "centrale"}

	thresholds := []float64{0.1, 0.3, 0.5, 0.7, 0.9, 1.0}
	for _, text := range texts {
		for _, keyword := range keywords {
			prevFound := true
			for _, th := range thresholds {
				found := Contains(text, keyword, th).Found
				if found {
					// Raising the threshold must never turn not-found into found.
					require.True(t, prevFound,
						"found at threshold %g but not at a lower one (text %q, keyword %q)", th, text, keyword)
				}
				prevFound = found
			}
		}
	}
}
