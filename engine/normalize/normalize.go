// Package normalize reconciles job records arriving from two structurally
// different inventories into the canonical domain.Candidate shape. A batch
// never fails wholesale: single-record conversion failures are reported as
// RecordError values, counted, and dropped by the batch helpers.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
)

// Source-specific defaults, applied when a record omits the field.
const (
	defaultCurrency       = "USD"
	curatedDefaultCountry = "USA"
	crawledDefaultCountry = "India"
)

// RecordError reports a single-record conversion failure. The caller drops
// the record and continues with the rest of the batch.
type RecordError struct {
	Source domain.Source
	ID     string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("normalize %s record %q: %v", e.Source, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Curated maps a record from the primary (curated) store into a Candidate.
//
// Skills arrive as a comma-separated string or an already-decoded string
// list, depending on whether the record came off the wire or out of the
// store. Location is comma-separated and parsed positionally. Salary is
// never available from this source and is emitted hidden. Requirements
// wraps the single free-text field if present.
func Curated(rec RawRecord) (domain.Candidate, error) {
	id := rec.str("_id", "id")
	if id == "" {
		return domain.Candidate{}, &RecordError{Source: domain.SourceCurated, Err: domain.ErrMissingID}
	}

	var requirements []string
	if req := strings.TrimSpace(rec.str("requirements")); req != "" {
		requirements = []string{req}
	}

	loc := parseLocation(rec.str("location"), curatedDefaultCountry)
	loc.Remote = rec.boolOr("remote", false)
	loc.Lat = rec.coord("lat")
	loc.Lng = rec.coord("lng")

	skillsVal, ok := rec["skills_required"]
	if !ok {
		skillsVal = rec["skills"]
	}
	skills, err := listField(skillsVal)
	if err != nil {
		return domain.Candidate{}, &RecordError{Source: domain.SourceCurated, ID: id, Err: fmt.Errorf("skills: %w", err)}
	}

	c := domain.Candidate{
		ID:             id,
		Employer:       rec.str("employer_id", "employer"),
		Title:          rec.str("title"),
		Description:    rec.str("description"),
		EmploymentType: parseEmploymentType(rec.str("employment_type")),
		Salary:         domain.Salary{Currency: defaultCurrency},
		Location:       loc,
		Skills:         skills,
		Requirements:   requirements,
		IsActive:       rec.boolOr("is_active", true),
		PostedAt:       rec.timeVal("posted_at"),
		ExpiresAt:      rec.timeVal("expires_at"),
		Source:         domain.SourceCurated,
		Priority:       domain.PriorityCurated,
	}

	if err := domain.ValidateCandidate(c); err != nil {
		return domain.Candidate{}, &RecordError{Source: domain.SourceCurated, ID: id, Err: err}
	}
	return c, nil
}

// Crawled maps a record collected by the crawler into a Candidate.
//
// List fields run through the JSON-or-delimited fallback chain; a field
// present in a shape neither tier accepts fails the whole record, matching
// the strictness of the curated side. The salary field is free text fed to
// the currency heuristic, and the remote flag is derived from a free-text
// field matched against a fixed affirmative set.
func Crawled(rec RawRecord) (domain.Candidate, error) {
	id := rec.str("id", "external_id", "_id")
	if id == "" {
		return domain.Candidate{}, &RecordError{Source: domain.SourceCrawled, Err: domain.ErrMissingID}
	}

	var listErr error
	list := func(field string) []string {
		out, err := listField(rec[field])
		if err != nil && listErr == nil {
			listErr = fmt.Errorf("%s: %w", field, err)
		}
		return out
	}

	loc := parseLocation(rec.str("location"), crawledDefaultCountry)
	loc.Remote = isAffirmative(rec.str("remote", "remote_allowed"))

	c := domain.Candidate{
		ID:               id,
		Employer:         rec.str("company", "employer"),
		Title:            rec.str("title"),
		Description:      rec.str("description"),
		EmploymentType:   parseEmploymentType(rec.str("employment_type", "job_type")),
		Salary:           parseCrawledSalary(rec.str("salary")),
		Location:         loc,
		Skills:           list("skills"),
		Requirements:     list("requirements"),
		Responsibilities: list("responsibilities"),
		Benefits:         list("benefits"),
		IsActive:         rec.boolOr("is_active", true),
		PostedAt:         rec.timeVal("posted_at"),
		ExpiresAt:        rec.timeVal("expires_at"),
		Source:           domain.SourceCrawled,
		Priority:         domain.PriorityCrawled,
	}
	if listErr != nil {
		return domain.Candidate{}, &RecordError{Source: domain.SourceCrawled, ID: id, Err: listErr}
	}

	if err := domain.ValidateCandidate(c); err != nil {
		return domain.Candidate{}, &RecordError{Source: domain.SourceCrawled, ID: id, Err: err}
	}
	return c, nil
}

// BatchResult is the outcome of normalizing one source batch. Dropped is the
// diagnostics counter required for observability; it never blocks a response.
type BatchResult struct {
	Candidates []domain.Candidate
	Dropped    int
}

// Batch applies convert to every record, dropping and counting failures.
func Batch(recs []RawRecord, convert func(RawRecord) (domain.Candidate, error), logger *slog.Logger) BatchResult {
	if logger == nil {
		logger = slog.Default()
	}
	out := BatchResult{Candidates: make([]domain.Candidate, 0, len(recs))}
	for _, rec := range recs {
		c, err := convert(rec)
		if err != nil {
			out.Dropped++
			logger.Debug("normalize: record dropped", "err", err)
			continue
		}
		out.Candidates = append(out.Candidates, c)
	}
	return out
}

// CuratedBatch normalizes a batch from the curated store.
func CuratedBatch(recs []RawRecord, logger *slog.Logger) BatchResult {
	return Batch(recs, Curated, logger)
}

// CrawledBatch normalizes a batch from the crawled feed.
func CrawledBatch(recs []RawRecord, logger *slog.Logger) BatchResult {
	return Batch(recs, Crawled, logger)
}
