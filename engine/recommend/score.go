package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
)

// ContentBlob concatenates a candidate's title, description, and skills into
// the single text handed to the embedding function.
func ContentBlob(c domain.Candidate) string {
	parts := make([]string, 0, 3)
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	if len(c.Skills) > 0 {
		parts = append(parts, strings.Join(c.Skills, " "))
	}
	return strings.Join(parts, "\n")
}

// ProfileBlob builds the user-side text from the profile's free-text fields.
func ProfileBlob(p domain.UserProfile) string {
	parts := make([]string, 0, 3)
	if p.Headline != "" {
		parts = append(parts, p.Headline)
	}
	if p.Experience != "" {
		parts = append(parts, p.Experience)
	}
	if len(p.Skills) > 0 {
		parts = append(parts, strings.Join(p.Skills, " "))
	}
	return strings.Join(parts, "\n")
}

// ContentKey returns the cache key for a content blob. Keyed by content hash,
// not candidate identity, since posting content can change under the same ID.
func ContentKey(blob string) string {
	sum := sha256.Sum256([]byte(blob))
	return hex.EncodeToString(sum[:])
}

// Cosine computes cosine similarity between two vectors. A nil or zero-norm
// vector is the defined neutral form: similarity is 0, which rescales to the
// neutral 0.5 rather than excluding the candidate.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RescaleUnit maps a cosine value from [-1,1] to [0,1] so the blended score
// stays non-negative. Out-of-range inputs (float error) are clamped.
func RescaleUnit(cos float64) float64 {
	v := (cos + 1) / 2
	return math.Min(1, math.Max(0, v))
}

// Blend combines content similarity with the source priority. With both
// inputs in [0,1] and weights summing to 1, the blend already lies in [0,1];
// no re-normalization is needed for ranking.
func Blend(similarity, priority float64, opts Options) float64 {
	return similarity*opts.SimWeight + priority*opts.PriorityWeight
}
