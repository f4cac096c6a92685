package domain

// ValidateCandidate checks a normalized candidate before it enters the
// scoring pipeline. Callers are expected to pre-filter inactive postings;
// this re-asserts it anyway.
func ValidateCandidate(c Candidate) error {
	if c.ID == "" {
		return NewValidationError("id", "", ErrMissingID)
	}
	if !c.IsActive {
		return NewValidationError("is_active", "false", ErrInactive)
	}
	if c.Source != SourceCurated && c.Source != SourceCrawled {
		return NewValidationError("source", string(c.Source), ErrUnknownSource)
	}
	return nil
}

// ValidateProfile checks a user profile at the pipeline entry point.
func ValidateProfile(p UserProfile) error {
	if p.ID == "" {
		return NewValidationError("id", "", ErrMissingID)
	}
	if len(p.Skills) == 0 && p.Experience == "" && p.Headline == "" {
		return NewValidationError("skills", "", ErrEmptyProfile)
	}
	return nil
}

// ValidateSwipe checks a swipe record handed in by the swipe store.
func ValidateSwipe(s SwipeRecord) error {
	if s.UserID == "" {
		return NewValidationError("user_id", "", ErrMissingID)
	}
	if s.CandidateID == "" {
		return NewValidationError("candidate_id", "", ErrMissingID)
	}
	if s.Action != ActionLike && s.Action != ActionDislike {
		return NewValidationError("action", string(s.Action), ErrUnknownAction)
	}
	return nil
}
