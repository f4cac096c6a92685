// Package recommend orchestrates the recommendation pipeline: it reconciles
// job records from the curated and crawled inventories, filters out
// candidates the user already swiped, scores the rest against the user
// profile, and returns a deterministically ordered top-N list.
//
// The service is stateless per request and safe for concurrent use; all
// collaborators are injected.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
	"github.com/JobSwipeAI/jobswipe-mvp/engine/normalize"
	"github.com/JobSwipeAI/jobswipe-mvp/pkg/fn"
	"github.com/JobSwipeAI/jobswipe-mvp/pkg/metrics"
)

// ProfileStore yields the requesting user's profile. Implementations return
// domain.ErrUserNotFound when the identity is unknown.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (domain.UserProfile, error)
}

// JobSource yields one inventory's active raw job records. The two sources
// share no schema; only the normalizer interprets the records.
type JobSource interface {
	Active(ctx context.Context) ([]normalize.RawRecord, error)
}

// SwipeStore yields the user's swipe records ordered ascending by CreatedAt.
// The ordering is the store's contract: the filter resolves duplicate
// records per candidate last-write-wins over it.
type SwipeStore interface {
	ForUser(ctx context.Context, userID string) ([]domain.SwipeRecord, error)
}

// Embedder turns text into fixed-size content vectors. It must be pure and
// deterministic for identical text. EmbedBatch bounds external round-trips
// to O(1) per request instead of O(candidates).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorCache is an optional read-through cache of (content hash → vector).
// It is an additive optimization: the pipeline behaves identically with a
// nil cache.
type VectorCache interface {
	Lookup(ctx context.Context, keys []string) (map[string][]float32, error)
	Store(ctx context.Context, vectors map[string][]float32) error
}

// Options configures pipeline behaviour.
type Options struct {
	// SimWeight and PriorityWeight blend content similarity with source
	// priority. They must sum to 1 to keep scores in [0,1].
	SimWeight      float64
	PriorityWeight float64
	// DefaultLimit replaces a non-positive caller limit.
	DefaultLimit int
	// EmbedTimeout bounds the embedding round-trips for one request.
	EmbedTimeout time.Duration
	// EmbedBatchSize is the max texts per embedding call.
	EmbedBatchSize int
}

// DefaultOptions returns the standard pipeline configuration. Curated
// postings get a durable but not overwhelming boost: a crawled posting with
// strong similarity can still outrank a weak curated one.
func DefaultOptions() Options {
	return Options{
		SimWeight:      0.7,
		PriorityWeight: 0.3,
		DefaultLimit:   10,
		EmbedTimeout:   10 * time.Second,
		EmbedBatchSize: 100,
	}
}

// Service runs the recommendation pipeline.
type Service struct {
	profiles ProfileStore
	curated  JobSource
	crawled  JobSource
	swipes   SwipeStore
	embed    Embedder
	cache    VectorCache // may be nil
	opts     Options
	logger   *slog.Logger

	droppedRecords *metrics.Counter
	cacheHits      *metrics.Counter
	requestSeconds *metrics.Histogram
}

// Deps bundles the collaborators injected into a Service.
type Deps struct {
	Profiles ProfileStore
	Curated  JobSource
	Crawled  JobSource
	Swipes   SwipeStore
	Embedder Embedder
	Cache    VectorCache // optional
	Logger   *slog.Logger
	Metrics  *metrics.Registry // optional
}

// New creates a Service.
func New(deps Deps, opts Options) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultOptions().DefaultLimit
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = DefaultOptions().EmbedBatchSize
	}
	return &Service{
		profiles: deps.Profiles,
		curated:  deps.Curated,
		crawled:  deps.Crawled,
		swipes:   deps.Swipes,
		embed:    deps.Embedder,
		cache:    deps.Cache,
		opts:     opts,
		logger:   deps.Logger,

		droppedRecords: deps.Metrics.Counter("recommend_dropped_records_total",
			"Raw job records dropped during normalization"),
		cacheHits: deps.Metrics.Counter("recommend_vector_cache_hits_total",
			"Candidate vectors served from the vector cache"),
		requestSeconds: deps.Metrics.Histogram("recommend_request_seconds",
			"End-to-end recommendation latency", nil),
	}
}

// Recommend runs the full pipeline for one user and returns the ordered
// top-N results. Request-level failures surface as domain sentinels
// (ErrUserNotFound, ErrNoCandidates, ErrEmbeddingUnavailable); record-level
// failures are absorbed and counted.
func (s *Service) Recommend(ctx context.Context, userID string, limit int) ([]domain.ScoredResult, error) {
	ctx, span := otel.Tracer("engine/recommend").Start(ctx, "recommend")
	defer span.End()
	defer s.requestSeconds.Since(time.Now())

	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}

	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommend: profile %s: %w", userID, err)
	}
	if err := domain.ValidateProfile(profile); err != nil {
		return nil, fmt.Errorf("recommend: profile %s: %w", userID, err)
	}

	pool, dropped, err := s.candidatePool(ctx)
	if err != nil {
		return nil, err
	}
	s.droppedRecords.Add(int64(dropped))
	span.SetAttributes(
		attribute.Int("candidates", len(pool)),
		attribute.Int("dropped_records", dropped),
	)

	swipes, err := s.swipes.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommend: swipes %s: %w", userID, err)
	}
	pool = FilterSwiped(pool, swipes)
	if len(pool) == 0 {
		return nil, fmt.Errorf("recommend: user %s: %w", userID, domain.ErrNoCandidates)
	}

	userVec, candVecs, err := s.embedAll(ctx, profile, pool)
	if err != nil {
		// No sound fallback score exists; partial results would bias rankings.
		return nil, fmt.Errorf("recommend: %w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	scores := make([]float64, len(pool))
	for i, c := range pool {
		sim := RescaleUnit(Cosine(userVec, candVecs[i]))
		scores[i] = Blend(sim, c.Priority, s.opts)
	}

	results := Rank(pool, scores, limit)
	s.logger.Info("recommend done",
		"user", userID,
		"candidates", len(pool),
		"dropped", dropped,
		"returned", len(results),
	)
	return results, nil
}

// candidatePool fetches and normalizes both inventories concurrently. Merge
// order does not affect the final ranking; only the identity tie-break does.
func (s *Service) candidatePool(ctx context.Context) ([]domain.Candidate, int, error) {
	fetched := fn.FanOutResult(
		func() fn.Result[[]normalize.RawRecord] { return fn.FromPair(s.curated.Active(ctx)) },
		func() fn.Result[[]normalize.RawRecord] { return fn.FromPair(s.crawled.Active(ctx)) },
	)
	raw, err := fetched.Unwrap()
	if err != nil {
		return nil, 0, fmt.Errorf("recommend: fetch candidates: %w", err)
	}

	batches := fn.FanOut(
		func() normalize.BatchResult { return normalize.CuratedBatch(raw[0], s.logger) },
		func() normalize.BatchResult { return normalize.CrawledBatch(raw[1], s.logger) },
	)

	pool := make([]domain.Candidate, 0, len(batches[0].Candidates)+len(batches[1].Candidates))
	pool = append(pool, batches[0].Candidates...)
	pool = append(pool, batches[1].Candidates...)
	return pool, batches[0].Dropped + batches[1].Dropped, nil
}

// embedAll computes the user vector and all candidate vectors: one call for
// the profile, batched calls for candidate blobs, with a read-through vector
// cache in between when one is configured. Candidates with empty blobs keep
// a nil (neutral) vector and are never sent to the embedder.
func (s *Service) embedAll(ctx context.Context, profile domain.UserProfile, pool []domain.Candidate) ([]float32, [][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.EmbedTimeout)
	defer cancel()

	userVec, err := s.embed.Embed(ctx, ProfileBlob(profile))
	if err != nil {
		return nil, nil, err
	}

	blobs := fn.Map(pool, ContentBlob)
	vectors := make([][]float32, len(blobs))

	var missing []int
	for i, blob := range blobs {
		if blob != "" {
			missing = append(missing, i)
		}
	}

	if s.cache != nil && len(missing) > 0 {
		keys := fn.Map(missing, func(i int) string { return ContentKey(blobs[i]) })
		hits, err := s.cache.Lookup(ctx, fn.Unique(keys))
		if err != nil {
			s.logger.Warn("vector cache lookup failed, embedding everything", "err", err)
		} else {
			still := missing[:0]
			for _, i := range missing {
				if vec, ok := hits[ContentKey(blobs[i])]; ok {
					vectors[i] = vec
					s.cacheHits.Inc()
					continue
				}
				still = append(still, i)
			}
			missing = still
		}
	}

	fresh := make(map[string][]float32, len(missing))
	for _, batch := range fn.Chunk(missing, s.opts.EmbedBatchSize) {
		texts := fn.Map(batch, func(i int) string { return blobs[i] })
		embedded, err := s.embed.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, nil, err
		}
		if len(embedded) != len(batch) {
			return nil, nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(batch))
		}
		for j, i := range batch {
			vectors[i] = embedded[j]
			fresh[ContentKey(blobs[i])] = embedded[j]
		}
	}

	if s.cache != nil && len(fresh) > 0 {
		// Best-effort write-back; a cache failure never fails the request.
		if err := s.cache.Store(ctx, fresh); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("vector cache store failed", "err", err)
		}
	}

	return userVec, vectors, nil
}
