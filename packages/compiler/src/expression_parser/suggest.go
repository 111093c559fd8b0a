package expression_parser

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const maxSuggestionDistance = 2

// Suggest returns the candidate closest to word, or "" when nothing is close
// enough to be worth a "did you mean" hint. Subsequence matches win over
// edit distance.
func Suggest(word string, candidates []string) string {
	if word == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(word, candidates)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", maxSuggestionDistance+1
	lower := strings.ToLower(word)
	for _, candidate := range candidates {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate))
		if d < bestDistance && d < len(candidate) {
			best, bestDistance = candidate, d
		}
	}
	return best
}
