// Package domain defines the canonical types shared across the recommendation
// pipeline. It acts as the validation gate at pipeline entry points: no business
// logic downstream of the normalizer ever touches loosely-typed input.
package domain

import "time"

// Source identifies the inventory a candidate was reconciled from.
type Source string

const (
	// SourceCurated marks postings entered directly into the primary store.
	SourceCurated Source = "curated"
	// SourceCrawled marks postings ingested via automated collection.
	SourceCrawled Source = "crawled"
)

// Source priorities are fixed per provenance and never derived from content.
const (
	PriorityCurated = 1.0
	PriorityCrawled = 0.5
)

// Priority returns the static ranking weight for the source.
// Unknown sources get the crawled (lower-trust) weight.
func (s Source) Priority() float64 {
	if s == SourceCurated {
		return PriorityCurated
	}
	return PriorityCrawled
}

// EmploymentType classifies a posting's employment arrangement.
type EmploymentType string

const (
	FullTime   EmploymentType = "full_time"
	PartTime   EmploymentType = "part_time"
	Contract   EmploymentType = "contract"
	Internship EmploymentType = "internship"
)

// ValidEmploymentTypes is the set of recognised employment types.
var ValidEmploymentTypes = map[EmploymentType]bool{
	FullTime: true, PartTime: true, Contract: true, Internship: true,
}

// Salary is a compensation range. Visible reports whether the posting
// disclosed any compensation information at all; a visible salary may still
// carry a zero range when only free text was available.
type Salary struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Visible  bool    `json:"visible"`
}

// Location is a posting's place of work. Lat/Lng are nil when the source
// provided no coordinates.
type Location struct {
	City    string   `json:"city"`
	State   string   `json:"state,omitempty"`
	Country string   `json:"country"`
	Remote  bool     `json:"remote"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Candidate is the canonical representation of a job posting after
// normalization, regardless of which inventory it arrived from.
type Candidate struct {
	ID               string         `json:"id"`
	Employer         string         `json:"employer"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	EmploymentType   EmploymentType `json:"employment_type"`
	Salary           Salary         `json:"salary"`
	Location         Location       `json:"location"`
	Skills           []string       `json:"skills"`
	Requirements     []string       `json:"requirements"`
	Responsibilities []string       `json:"responsibilities"`
	Benefits         []string       `json:"benefits"`
	IsActive         bool           `json:"is_active"`
	PostedAt         time.Time      `json:"posted_at"`
	ExpiresAt        time.Time      `json:"expires_at"`
	Source           Source         `json:"source"`
	Priority         float64        `json:"priority"`
}

// UserProfile is the requesting user's content profile. The derived content
// vector is computed per request and never persisted here.
type UserProfile struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
	Headline   string   `json:"headline,omitempty"`
}

// SwipeAction is a user's decision on a candidate.
type SwipeAction string

const (
	ActionLike    SwipeAction = "like"
	ActionDislike SwipeAction = "dislike"
)

// SwipeRecord is a single like/dislike event. Undone swipes no longer count
// as a decision. CreatedAt is the ordering key for last-write-wins when the
// same (user, candidate) pair carries multiple records.
type SwipeRecord struct {
	UserID      string      `json:"user_id"`
	CandidateID string      `json:"candidate_id"`
	Action      SwipeAction `json:"action"`
	Undone      bool        `json:"undone"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ScoredResult pairs a candidate with its blended score and final rank.
// Created per request and consumed immediately by the caller.
type ScoredResult struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
	Rank      int       `json:"rank"`
}
