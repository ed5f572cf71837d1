package metrics

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercase tokens. The rule is fixed so that
// scores are reproducible across runs and reimplementations: any rune
// that is neither a letter nor a digit is a separator, which covers
// whitespace and punctuation; casing is folded with Unicode lowercase.
// Total over all inputs, including malformed UTF-8.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ngramCounts returns the count of each n-gram in tokens. N-grams are
// keyed by joining tokens with a unit separator, which cannot appear in
// a token because it is neither a letter nor a digit.
func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x1f")]++
	}
	return counts
}
