package search

import (
	"sort"
	"strings"
)

// MatchType tells how a result matched the query.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
)

// Result is a single ranked hit.
type Result[T any] struct {
	Item      T         `json:"item"`
	Score     float64   `json:"score"`
	MatchType MatchType `json:"match_type"`
}

// RankedSearch scores every item against query and returns the matches sorted
// by descending score. Items below threshold are dropped.
//
// An empty query is the "no filter" case: every item comes back as an exact
// match with score 1, in input order.
func RankedSearch[T any](items []T, query string, extractText func(T) string, threshold float64) []Result[T] {
	if query == "" {
		results := make([]Result[T], 0, len(items))
		for _, item := range items {
			results = append(results, Result[T]{Item: item, Score: 1, MatchType: MatchExact})
		}
		return results
	}

	lowerQuery := strings.ToLower(query)
	results := make([]Result[T], 0)

	for _, item := range items {
		text := extractText(item)
		if text == "" {
			continue
		}

		if strings.Contains(strings.ToLower(text), lowerQuery) {
			results = append(results, Result[T]{Item: item, Score: 1, MatchType: MatchExact})
			continue
		}

		if sim := Similarity(query, text); sim >= threshold {
			results = append(results, Result[T]{Item: item, Score: sim, MatchType: MatchFuzzy})
			continue
		}

		if best := bestTokenSimilarity(query, text); best >= threshold {
			results = append(results, Result[T]{Item: item, Score: best * tokenPenalty, MatchType: MatchFuzzy})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// Items unwraps the matched items of a result set, preserving rank order.
func Items[T any](results []Result[T]) []T {
	items := make([]T, 0, len(results))
	for _, r := range results {
		items = append(items, r.Item)
	}
	return items
}
