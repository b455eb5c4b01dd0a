package textnorm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "Dr. Ahmed BENALI, Licence N: 12345!",
			want:  "dr ahmed benali licence n 12345",
		},
		{
			name:  "collapses whitespace runs",
			input: "Nom :\t Benali \n\n Licence",
			want:  "nom benali licence",
		},
		{
			name:  "keeps accented latin letters",
			input: "Délivré à Sétif",
			want:  "délivré à sétif",
		},
		{
			name:  "keeps arabic script",
			input: "الدكتور بن علي 123",
			want:  "الدكتور بن علي 123",
		},
		{
			name:  "drops punctuation between characters without inserting spaces",
			input: "AB-12/34",
			want:  "ab1234",
		},
		{
			name:  "trims ends",
			input: "   benali   ",
			want:  "benali",
		},
		{
			name:  "punctuation only",
			input: "!!! --- ???",
			want:  "",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"Dr. Ahmed BENALI, Licence N: 12345!",
		"Nom :\t Benali \n\n Licence",
		"الدكتور بن علي 123",
		"Délivré à Sétif",
		"",
		"   mixed الن 42 text!  ",
	}
	for _, input := range inputs {
		once := CleanText(input)
		require.Equal(t, once, CleanText(once), "re-cleaning %q must be a no-op", input)
	}
}

func TestExtractDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AB-12/34", "1234"},
		{"", ""},
		{"no digits here", ""},
		{"01/01/2020", "01012020"},
		{"Licence N 12345 delivre le 01 01 2020", "1234501012020"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ExtractDigits(tt.input), "input %q", tt.input)
	}
}
