// Package postgres backs the curated side of the engine: user profiles,
// the curated job inventory, and the swipe ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
	"github.com/JobSwipeAI/jobswipe-mvp/engine/normalize"
)

// NewPool creates and verifies a pgxpool connection pool.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    headline   TEXT NOT NULL DEFAULT '',
    experience TEXT NOT NULL DEFAULT '',
    skills     TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS curated_jobs (
    id              TEXT PRIMARY KEY,
    employer_id     TEXT NOT NULL DEFAULT '',
    title           TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    employment_type TEXT NOT NULL DEFAULT '',
    location        TEXT NOT NULL DEFAULT '',
    skills_required TEXT[] NOT NULL DEFAULT '{}',
    requirements    TEXT NOT NULL DEFAULT '',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    posted_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS swipes (
    user_id      TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    action       TEXT NOT NULL,
    undone       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS swipes_user_created_idx
    ON swipes (user_id, created_at);
`

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Store wraps a connection pool with the queries the engine needs.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store over the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Profile loads the user's profile. Unknown users map to
// domain.ErrUserNotFound.
func (s *Store) Profile(ctx context.Context, userID string) (domain.UserProfile, error) {
	var p domain.UserProfile
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, headline, experience, skills
		 FROM users
		 WHERE id = $1`,
		userID,
	).Scan(&p.ID, &p.Name, &p.Headline, &p.Experience, &p.Skills)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, fmt.Errorf("user %s: %w", userID, domain.ErrUserNotFound)
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("profile query: %w", err)
	}
	return p, nil
}

// SaveProfile upserts a user profile.
func (s *Store) SaveProfile(ctx context.Context, p domain.UserProfile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, headline, experience, skills)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   headline = EXCLUDED.headline,
		   experience = EXCLUDED.experience,
		   skills = EXCLUDED.skills`,
		p.ID, p.Name, p.Headline, p.Experience, p.Skills,
	)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	return nil
}

// CuratedJobs serves the curated inventory as raw records for the
// normalizer. It deliberately does not interpret the columns.
type CuratedJobs struct {
	pool *pgxpool.Pool
}

// NewCuratedJobs returns the curated inventory source.
func NewCuratedJobs(pool *pgxpool.Pool) *CuratedJobs {
	return &CuratedJobs{pool: pool}
}

// Active returns every active curated posting.
func (c *CuratedJobs) Active(ctx context.Context) ([]normalize.RawRecord, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, employer_id, title, description, employment_type,
		        location, skills_required, requirements, is_active, posted_at
		 FROM curated_jobs
		 WHERE is_active`,
	)
	if err != nil {
		return nil, fmt.Errorf("curated query: %w", err)
	}
	defer rows.Close()

	var recs []normalize.RawRecord
	for rows.Next() {
		var (
			id, employerID, title, description string
			employmentType, location           string
			skills                             []string
			requirements                       string
			isActive                           bool
			postedAt                           time.Time
		)
		if err := rows.Scan(&id, &employerID, &title, &description, &employmentType,
			&location, &skills, &requirements, &isActive, &postedAt); err != nil {
			return nil, fmt.Errorf("curated scan: %w", err)
		}
		recs = append(recs, curatedRecord(id, employerID, title, description,
			employmentType, location, skills, requirements, isActive, postedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("curated rows: %w", err)
	}
	return recs, nil
}

// curatedRecord assembles a raw record in the curated inventory's schema.
func curatedRecord(id, employerID, title, description, employmentType, location string,
	skills []string, requirements string, isActive bool, postedAt time.Time) normalize.RawRecord {
	return normalize.RawRecord{
		"_id":             id,
		"employer_id":     employerID,
		"title":           title,
		"description":     description,
		"employment_type": employmentType,
		"location":        location,
		"skills_required": skills,
		"requirements":    requirements,
		"is_active":       isActive,
		"posted_at":       postedAt,
	}
}

// Swipes is the swipe ledger.
type Swipes struct {
	pool *pgxpool.Pool
}

// NewSwipes returns the swipe ledger over the given pool.
func NewSwipes(pool *pgxpool.Pool) *Swipes {
	return &Swipes{pool: pool}
}

// ForUser returns the user's swipes ascending by creation time, which is
// the ordering the filter's last-write-wins resolution relies on.
func (s *Swipes) ForUser(ctx context.Context, userID string) ([]domain.SwipeRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, candidate_id, action, undone, created_at
		 FROM swipes
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("swipes query: %w", err)
	}
	defer rows.Close()

	var recs []domain.SwipeRecord
	for rows.Next() {
		var r domain.SwipeRecord
		if err := rows.Scan(&r.UserID, &r.CandidateID, &r.Action, &r.Undone, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("swipes scan: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("swipes rows: %w", err)
	}
	return recs, nil
}

// Record appends one swipe to the ledger.
func (s *Swipes) Record(ctx context.Context, r domain.SwipeRecord) error {
	if err := domain.ValidateSwipe(r); err != nil {
		return err
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO swipes (user_id, candidate_id, action, undone, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.UserID, r.CandidateID, r.Action, r.Undone, created,
	)
	if err != nil {
		return fmt.Errorf("record swipe: %w", err)
	}
	return nil
}
