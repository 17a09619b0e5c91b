// Package search implements edit-distance based fuzzy matching and ranking.
//
// The package knows nothing about books or notes: callers hand it strings, or
// a collection plus a function that extracts the searchable text of an item.
//
// # Usage
//
//	results := search.RankedSearch(books, "direito civl", func(b entities.Book) string {
//		return b.Title + " " + b.About
//	}, search.DefaultThreshold)
package search

import (
	"strings"
	"unicode/utf8"
)

// DefaultThreshold is the similarity a candidate must reach to count as a fuzzy match.
const DefaultThreshold = 0.6

// minTokenLength is the shortest word considered during token-level matching.
const minTokenLength = 3

// tokenPenalty keeps token-level matches ranked below whole-string and exact
// matches of equal raw similarity.
const tokenPenalty = 0.8

// EditDistance returns the minimum number of single-character insertions,
// deletions and substitutions that turn a into b. The comparison is rune-wise
// and case-sensitive; callers that want case folding lower both inputs first.
func EditDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// matrix[i][j] is the distance between ra[:i] and rb[:j]
	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// Similarity returns a score in [0,1] derived from the case-insensitive edit
// distance of a and b, normalised by the longer input. Two empty strings are
// identical and score 1.
func Similarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}

	// Lowercasing can lengthen a rune (İ), so the distance may exceed maxLen.
	distance := EditDistance(strings.ToLower(a), strings.ToLower(b))
	return max(0, float64(maxLen-distance)/float64(maxLen))
}

// FuzzyMatch reports whether query matches text. A case-insensitive substring
// always matches; otherwise the whole strings, or any pair of words of at
// least three characters, must reach threshold similarity.
func FuzzyMatch(query, text string, threshold float64) bool {
	if query == "" || text == "" {
		return false
	}

	if strings.Contains(strings.ToLower(text), strings.ToLower(query)) {
		return true
	}

	if Similarity(query, text) >= threshold {
		return true
	}

	return bestTokenSimilarity(query, text) >= threshold
}

// bestTokenSimilarity returns the highest similarity between any query word and
// any text word, ignoring words shorter than minTokenLength. It returns 0 when
// either side has no eligible words.
func bestTokenSimilarity(query, text string) float64 {
	queryTokens := tokens(query)
	textTokens := tokens(text)

	best := 0.0
	for _, qt := range queryTokens {
		for _, tt := range textTokens {
			if s := Similarity(qt, tt); s > best {
				best = s
			}
		}
	}
	return best
}

func tokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTokenLength {
			out = append(out, f)
		}
	}
	return out
}
