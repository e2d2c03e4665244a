// Package similarity provides an alternative candidate-pair source for
// near-duplicate and semantically close facts: a MinHash signature
// filter with banding, and a term-frequency vector filter with an exact
// hash short-circuit. Both rank pairs with a shared priority score and
// truncate to the pair budget.
package similarity

import (
	"strings"
	"unicode"
)

// stopwords removed during tokenization. Kept small: similarity here is
// a recall filter, not a ranking model.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "to": true, "in": true, "on": true, "at": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"by": true, "for": true, "with": true, "as": true, "that": true,
	"this": true, "these": true, "those": true, "it": true, "its": true,
	"from": true, "has": true, "have": true, "had": true, "will": true,
}

// Tokenize lowercases, strips punctuation, splits on whitespace, and
// removes stopwords and single-character tokens. CJK runs are split
// into individual characters so shingling still works without a
// segmenter.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var b strings.Builder
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if stopwords[tok] {
			continue
		}
		// Single CJK characters carry meaning; single latin letters do not.
		if len(tok) == 1 && tok[0] < 0x80 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Shingles builds n-gram shingles over a token stream. Streams shorter
// than n yield the tokens themselves.
func Shingles(tokens []string, n int) []string {
	if n <= 1 || len(tokens) < n {
		out := make([]string, len(tokens))
		copy(out, tokens)
		return out
	}
	shingles := make([]string, 0, len(tokens)-n+1)
	seen := make(map[string]bool)
	for i := 0; i+n <= len(tokens); i++ {
		s := strings.Join(tokens[i:i+n], " ")
		if !seen[s] {
			seen[s] = true
			shingles = append(shingles, s)
		}
	}
	return shingles
}
