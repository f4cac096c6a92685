// Package ingest consumes crawled job postings from NATS and writes them
// into the Redis feed the recommendation engine reads from. Each message
// runs through a staged pipeline: normalize to prove the record is usable,
// then store the raw record so the engine's own normalizer stays the single
// interpreter of the crawled schema.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
	"github.com/JobSwipeAI/jobswipe-mvp/engine/normalize"
	"github.com/JobSwipeAI/jobswipe-mvp/pkg/fn"
	"github.com/JobSwipeAI/jobswipe-mvp/pkg/metrics"
	"github.com/JobSwipeAI/jobswipe-mvp/pkg/natsutil"
)

const (
	// CrawledSubject carries raw crawled postings from the crawlers.
	CrawledSubject = "jobs.crawled"
	// DLQSubject receives postings the pipeline could not process.
	DLQSubject = "jobs.crawled.dlq"
	// QueueGroup shares the subject across worker instances.
	QueueGroup = "jobswipe-ingest"

	// DefaultRate bounds feed writes per second per worker.
	DefaultRate = 50
)

// DeadLetter wraps a rejected posting with the reason it was rejected.
type DeadLetter struct {
	Record normalize.RawRecord `json:"record"`
	Reason string              `json:"reason"`
	At     time.Time           `json:"at"`
}

// FeedWriter is the slice of the Redis feed the pipeline needs.
type FeedWriter interface {
	Add(ctx context.Context, id string, rec normalize.RawRecord, expiresAt time.Time) error
}

// checked pairs the raw record with its normalized form. The candidate is
// only used for identity and expiry; the feed stores the raw record.
type checked struct {
	rec       normalize.RawRecord
	candidate domain.Candidate
}

// normalizeStage proves the record converts to a valid candidate.
var normalizeStage fn.Stage[normalize.RawRecord, checked] = func(_ context.Context, rec normalize.RawRecord) fn.Result[checked] {
	c, err := normalize.Crawled(rec)
	if err != nil {
		return fn.Err[checked](err)
	}
	return fn.Ok(checked{rec: rec, candidate: c})
}

// newStoreStage writes the accepted record to the feed.
func newStoreStage(feed FeedWriter) fn.Stage[checked, string] {
	return func(ctx context.Context, ch checked) fn.Result[string] {
		if err := feed.Add(ctx, ch.candidate.ID, ch.rec, ch.candidate.ExpiresAt); err != nil {
			return fn.Err[string](fmt.Errorf("feed write: %w", err))
		}
		return fn.Ok(ch.candidate.ID)
	}
}

// Worker consumes crawled postings and maintains the feed.
type Worker struct {
	feed     FeedWriter
	nc       *nats.Conn
	limiter  *rate.Limiter
	log      *slog.Logger
	pipeline fn.Stage[normalize.RawRecord, string]

	ingested *metrics.Counter
	rejected *metrics.Counter
}

// Opts configures a Worker.
type Opts struct {
	// RatePerSecond caps feed writes; zero means DefaultRate.
	RatePerSecond int
	Logger        *slog.Logger
	Metrics       *metrics.Registry // optional
}

// NewWorker creates a Worker over the given feed and NATS connection.
func NewWorker(feed FeedWriter, nc *nats.Conn, opts Opts) *Worker {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = DefaultRate
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	w := &Worker{
		feed:    feed,
		nc:      nc,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RatePerSecond),
		log:     opts.Logger,
	}
	w.pipeline = fn.Then(
		fn.TracedStage("ingest.normalize", normalizeStage),
		fn.TracedStage("ingest.store", newStoreStage(feed)),
	)
	if opts.Metrics != nil {
		w.ingested = opts.Metrics.Counter("ingest_postings_total",
			"Crawled postings accepted into the feed")
		w.rejected = opts.Metrics.Counter("ingest_rejected_total",
			"Crawled postings rejected and dead-lettered")
	}
	return w
}

// Handle processes one crawled posting. Rejected postings go to the DLQ;
// the error return is for the caller's accounting, delivery is not retried.
func (w *Worker) Handle(ctx context.Context, rec normalize.RawRecord) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	id, err := w.pipeline(ctx, rec).Unwrap()
	if err != nil {
		if w.rejected != nil {
			w.rejected.Inc()
		}
		w.log.Warn("rejecting crawled posting", "error", err)
		w.deadLetter(ctx, rec, err)
		return err
	}

	if w.ingested != nil {
		w.ingested.Inc()
	}
	w.log.Debug("ingested crawled posting", "id", id)
	return nil
}

// deadLetter publishes the rejected record for offline inspection.
// Best effort: a DLQ failure is logged, never propagated.
func (w *Worker) deadLetter(ctx context.Context, rec normalize.RawRecord, cause error) {
	if w.nc == nil {
		return
	}
	dl := DeadLetter{Record: rec, Reason: cause.Error(), At: time.Now().UTC()}
	if err := natsutil.Publish(ctx, w.nc, DLQSubject, dl); err != nil {
		w.log.Error("dead letter publish failed", "error", err)
	}
}

// Run subscribes the worker to the crawled subject and blocks until ctx is
// done.
func (w *Worker) Run(ctx context.Context) error {
	sub, err := natsutil.QueueSubscribe(w.nc, w.log, CrawledSubject, QueueGroup,
		func(msgCtx context.Context, rec normalize.RawRecord) {
			w.Handle(msgCtx, rec)
		})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", CrawledSubject, err)
	}
	defer sub.Unsubscribe()

	w.log.Info("ingest worker running", "subject", CrawledSubject, "queue", QueueGroup)
	<-ctx.Done()
	return ctx.Err()
}
