package recommend

import (
	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
	"github.com/JobSwipeAI/jobswipe-mvp/pkg/fn"
)

// FilterSwiped removes candidates the user has already decided on. A decision
// is any like or dislike whose most recent record is not undone; both actions
// mean "do not resurface".
//
// Swipe records must be supplied in ascending order of their CreatedAt
// ordering key (the swipe store's contract); duplicates for the same
// candidate resolve last-write-wins over that order. Input order of the
// surviving candidates is preserved.
func FilterSwiped(candidates []domain.Candidate, swipes []domain.SwipeRecord) []domain.Candidate {
	if len(swipes) == 0 {
		return candidates
	}
	latest := fn.KeyBy(swipes, func(s domain.SwipeRecord) string { return s.CandidateID })
	return fn.Filter(candidates, func(c domain.Candidate) bool {
		rec, ok := latest[c.ID]
		return !ok || rec.Undone
	})
}
