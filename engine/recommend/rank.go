package recommend

import (
	"sort"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
)

// Rank orders candidates descending by blended score and truncates to limit.
// Ties break lexicographically by candidate ID so repeated invocations over
// the same inputs return the identical sequence. Pure sort+slice: candidate
// content is never mutated.
func Rank(candidates []domain.Candidate, scores []float64, limit int) []domain.ScoredResult {
	results := make([]domain.ScoredResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.ScoredResult{Candidate: c, Score: scores[i]}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Candidate.ID < results[j].Candidate.ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i
	}
	return results
}
