// Package matcher ranks taxonomy entries against a free-text query with
// a deterministic tiered heuristic. It is pure and case-insensitive.
package matcher

import (
	"sort"
	"strings"

	"eshop/mapper/internal/domain"
)

const DefaultLimit = 10

// Candidate pairs a category with its score for one query.
type Candidate struct {
	Category domain.FlatCategory
	Score    int
}

// Tiered base scores. The highest matching tier wins, tiers do not
// stack; a candidate matching neither name nor path is excluded.
const (
	scoreExactName  = 100
	scoreNamePrefix = 50
	scoreNameSubstr = 30
	scorePathSubstr = 10
)

// Rank scores every category against the query and returns the scoring
// candidates sorted by descending score. Ties keep the source order of
// the taxonomy. On top of the tier score each candidate gets a
// specificity bonus of max(0, 20 - 2*(segments-1)), which favors
// shorter paths.
func Rank(categories []domain.FlatCategory, query string) []Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	candidates := make([]Candidate, 0)
	for _, c := range categories {
		name := strings.ToLower(c.Name)
		path := strings.ToLower(c.FullPath)

		var score int
		switch {
		case name == q:
			score = scoreExactName
		case strings.HasPrefix(name, q):
			score = scoreNamePrefix
		case strings.Contains(name, q):
			score = scoreNameSubstr
		case strings.Contains(path, q):
			score = scorePathSubstr
		default:
			continue
		}

		if bonus := 20 - 2*(domain.PathDepth(c.FullPath)-1); bonus > 0 {
			score += bonus
		}

		candidates = append(candidates, Candidate{Category: c, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

// Search returns the top matching categories for a query, truncated to
// limit (DefaultLimit when limit is not positive). Used both by the
// batch pipeline and for on-demand lookups.
func Search(categories []domain.FlatCategory, query string, limit int) []domain.FlatCategory {
	if limit <= 0 {
		limit = DefaultLimit
	}

	candidates := Rank(categories, query)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]domain.FlatCategory, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Category)
	}
	return out
}

// IsDecisive reports whether the ranked list's top candidate can be
// accepted without verification: it must sit at the exact-name tier and
// not share its score with the runner-up.
func IsDecisive(candidates []Candidate) bool {
	if len(candidates) == 0 {
		return false
	}
	if candidates[0].Score < scoreExactName {
		return false
	}
	return len(candidates) == 1 || candidates[1].Score < candidates[0].Score
}
