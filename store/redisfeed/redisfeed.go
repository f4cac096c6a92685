// Package redisfeed keeps the crawled job feed in Redis. Crawled postings
// arrive continuously and age out quickly, so they live in a hash of raw
// JSON records plus a sorted set indexing expiry times for pruning.
package redisfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/normalize"
)

const (
	recordsKey = "jobs:crawled"
	expiryKey  = "jobs:crawled:expiry"

	// DefaultTTL is how long a crawled posting stays in the feed when the
	// publisher does not supply an expiry.
	DefaultTTL = 14 * 24 * time.Hour
)

// NewClient parses redisURL and verifies connectivity.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Feed is the crawled posting store.
type Feed struct {
	rdb *redis.Client
	log *slog.Logger
}

// New returns a Feed over the given client.
func New(rdb *redis.Client, log *slog.Logger) *Feed {
	if log == nil {
		log = slog.Default()
	}
	return &Feed{rdb: rdb, log: log}
}

// Active returns every crawled posting currently in the feed as raw records
// for the normalizer. Records that fail to decode are logged and skipped so
// one corrupt entry cannot take down the feed.
func (f *Feed) Active(ctx context.Context) ([]normalize.RawRecord, error) {
	entries, err := f.rdb.HGetAll(ctx, recordsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("feed hgetall: %w", err)
	}

	recs := make([]normalize.RawRecord, 0, len(entries))
	for id, raw := range entries {
		rec, err := decodeRecord(id, []byte(raw))
		if err != nil {
			f.log.Warn("skipping corrupt feed entry", "id", id, "error", err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// decodeRecord parses one stored entry and stamps the hash field name as the
// record id if the payload itself carries none.
func decodeRecord(id string, raw []byte) (normalize.RawRecord, error) {
	var rec normalize.RawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = id
	}
	return rec, nil
}

// Add upserts one crawled posting. A zero expiresAt falls back to DefaultTTL
// from now.
func (f *Feed) Add(ctx context.Context, id string, rec normalize.RawRecord, expiresAt time.Time) error {
	if id == "" {
		return fmt.Errorf("feed add: empty id")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("feed add %s: %w", id, err)
	}
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(DefaultTTL)
	}

	pipe := f.rdb.TxPipeline()
	pipe.HSet(ctx, recordsKey, id, raw)
	pipe.ZAdd(ctx, expiryKey, redis.Z{Score: float64(expiresAt.Unix()), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("feed add %s: %w", id, err)
	}
	return nil
}

// Prune removes postings whose expiry is at or before now and returns how
// many were dropped.
func (f *Feed) Prune(ctx context.Context, now time.Time) (int, error) {
	max := fmt.Sprintf("%d", now.Unix())
	expired, err := f.rdb.ZRangeByScore(ctx, expiryKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("feed prune range: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	pipe := f.rdb.TxPipeline()
	pipe.HDel(ctx, recordsKey, expired...)
	pipe.ZRemRangeByScore(ctx, expiryKey, "-inf", max)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("feed prune: %w", err)
	}
	return len(expired), nil
}
