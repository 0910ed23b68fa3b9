package dedup

import (
	"strings"
	"unicode"
)

// shortTokens are short words kept by the tokenizer despite the length
// cutoff because they carry market meaning on their own.
var shortTokens = map[string]struct{}{
	"ai":  {},
	"us":  {},
	"eu":  {},
	"fed": {},
}

// TitleSimilarity returns a normalized edit similarity between two titles
// in [0,1], computed over the lowercased, trimmed strings as
// 2*matches/(len(a)+len(b)). It catches near-verbatim wire-syndicated
// headlines. Returns 0 when either string is empty.
func TitleSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == "" || b == "" {
		return 0.0
	}

	ra := []rune(a)
	rb := []rune(b)

	matches := commonSubsequenceLength(ra, rb)

	return 2.0 * float64(matches) / float64(len(ra)+len(rb))
}

// commonSubsequenceLength computes the longest common subsequence length
// with a two-row dynamic program. Titles are short, so the quadratic cost
// is irrelevant.
func commonSubsequenceLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// JaccardSimilarity returns the token-set Jaccard index of two strings.
// It catches the same event phrased differently across outlets. Returns 0
// when either token set is empty.
func JaccardSimilarity(a, b string) float64 {
	setA := Tokenize(a)
	setB := Tokenize(b)

	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0

	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// Tokenize lowercases the text, strips non-alphanumeric characters, splits
// on whitespace and keeps tokens longer than two characters plus a few
// short market terms.
func Tokenize(text string) map[string]struct{} {
	cleaned := make([]rune, 0, len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			cleaned = append(cleaned, r)
		case unicode.IsSpace(r):
			cleaned = append(cleaned, ' ')
		}
	}

	tokens := make(map[string]struct{})

	for _, word := range strings.Fields(string(cleaned)) {
		if len(word) > 2 {
			tokens[word] = struct{}{}
			continue
		}

		if _, ok := shortTokens[word]; ok {
			tokens[word] = struct{}{}
		}
	}

	return tokens
}
