package recommend

import (
	"testing"
	"time"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
)

func pool(ids ...string) []domain.Candidate {
	out := make([]domain.Candidate, len(ids))
	for i, id := range ids {
		out[i] = domain.Candidate{ID: id, IsActive: true, Source: domain.SourceCurated}
	}
	return out
}

func swipe(candidateID string, action domain.SwipeAction, undone bool, at time.Time) domain.SwipeRecord {
	return domain.SwipeRecord{
		UserID:      "user-1",
		CandidateID: candidateID,
		Action:      action,
		Undone:      undone,
		CreatedAt:   at,
	}
}

func ids(cs []domain.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestFilterSwipedRemovesDecided(t *testing.T) {
	now := time.Now()
	swipes := []domain.SwipeRecord{
		swipe("a", domain.ActionLike, false, now),
		swipe("c", domain.ActionDislike, false, now),
	}

	got := FilterSwiped(pool("a", "b", "c", "d"), swipes)
	if want := []string{"b", "d"}; len(got) != 2 || got[0].ID != want[0] || got[1].ID != want[1] {
		t.Errorf("survivors = %v, want %v", ids(got), want)
	}
}

func TestFilterSwipedBothActionsExclude(t *testing.T) {
	now := time.Now()
	for _, action := range []domain.SwipeAction{domain.ActionLike, domain.ActionDislike} {
		got := FilterSwiped(pool("a"), []domain.SwipeRecord{swipe("a", action, false, now)})
		if len(got) != 0 {
			t.Errorf("%s: candidate should be excluded", action)
		}
	}
}

func TestFilterSwipedUndoneResurfaces(t *testing.T) {
	now := time.Now()
	got := FilterSwiped(pool("a"), []domain.SwipeRecord{swipe("a", domain.ActionLike, true, now)})
	if len(got) != 1 {
		t.Error("undone swipe should not exclude the candidate")
	}
}

func TestFilterSwipedLastWriteWins(t *testing.T) {
	base := time.Now()
	// like → undone like → dislike: the dislike is the effective decision.
	swipes := []domain.SwipeRecord{
		swipe("a", domain.ActionLike, false, base),
		swipe("a", domain.ActionLike, true, base.Add(time.Minute)),
		swipe("a", domain.ActionDislike, false, base.Add(2*time.Minute)),
	}
	if got := FilterSwiped(pool("a"), swipes); len(got) != 0 {
		t.Error("latest record is an effective dislike; candidate must be excluded")
	}

	// like → dislike undone: last record is undone, candidate resurfaces.
	swipes = []domain.SwipeRecord{
		swipe("b", domain.ActionLike, false, base),
		swipe("b", domain.ActionDislike, true, base.Add(time.Minute)),
	}
	if got := FilterSwiped(pool("b"), swipes); len(got) != 1 {
		t.Error("latest record undone; candidate must resurface")
	}
}

func TestFilterSwipedPreservesOrder(t *testing.T) {
	got := FilterSwiped(pool("d", "a", "c", "b"), []domain.SwipeRecord{
		swipe("a", domain.ActionLike, false, time.Now()),
	})
	if want := []string{"d", "c", "b"}; len(got) != 3 || got[0].ID != want[0] || got[1].ID != want[1] || got[2].ID != want[2] {
		t.Errorf("order = %v, want %v", ids(got), want)
	}
}

func TestFilterSwipedNoSwipes(t *testing.T) {
	in := pool("a", "b")
	if got := FilterSwiped(in, nil); len(got) != 2 {
		t.Errorf("survivors = %v", ids(got))
	}
}
