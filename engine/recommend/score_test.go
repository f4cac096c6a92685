package recommend

import (
	"math"
	"strings"
	"testing"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
)

func TestContentBlob(t *testing.T) {
	c := domain.Candidate{
		Title:       "Backend Engineer",
		Description: "Build APIs.",
		Skills:      []string{"python", "django"},
	}
	blob := ContentBlob(c)
	for _, want := range []string{"Backend Engineer", "Build APIs.", "python django"} {
		if !strings.Contains(blob, want) {
			t.Errorf("blob missing %q: %q", want, blob)
		}
	}

	if ContentBlob(domain.Candidate{}) != "" {
		t.Error("empty candidate should produce an empty blob")
	}
}

func TestProfileBlob(t *testing.T) {
	p := domain.UserProfile{
		Headline:   "Data engineer",
		Experience: "5 years of pipelines",
		Skills:     []string{"python", "sql"},
	}
	blob := ProfileBlob(p)
	if !strings.Contains(blob, "python sql") || !strings.Contains(blob, "Data engineer") {
		t.Errorf("blob = %q", blob)
	}
}

func TestContentKeyTiedToContent(t *testing.T) {
	a := ContentKey("engineer")
	if a != ContentKey("engineer") {
		t.Error("key must be deterministic")
	}
	if a == ContentKey("engineer ") {
		t.Error("different content must produce different keys")
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"nil a", nil, []float32{1}, 0},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRescaleUnit(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-1, 0},
		{0, 0.5},
		{1, 1},
		{-1.000001, 0}, // float error clamps
		{1.000001, 1},
	}
	for _, tt := range tests {
		if got := RescaleUnit(tt.in); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("RescaleUnit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBlendPriorityMonotonicity(t *testing.T) {
	opts := DefaultOptions()
	// Holding similarity fixed, curated must never score below crawled.
	for _, sim := range []float64{0, 0.25, 0.5, 0.75, 1} {
		curated := Blend(sim, domain.PriorityCurated, opts)
		crawled := Blend(sim, domain.PriorityCrawled, opts)
		if curated < crawled {
			t.Errorf("sim=%v: curated %v < crawled %v", sim, curated, crawled)
		}
		if curated < 0 || curated > 1 || crawled < 0 || crawled > 1 {
			t.Errorf("sim=%v: blend out of [0,1]", sim)
		}
	}
}

func TestBlendStrongCrawledBeatsWeakCurated(t *testing.T) {
	opts := DefaultOptions()
	strongCrawled := Blend(0.95, domain.PriorityCrawled, opts)
	weakCurated := Blend(0.2, domain.PriorityCurated, opts)
	if strongCrawled <= weakCurated {
		t.Errorf("strong crawled %v should outrank weak curated %v", strongCrawled, weakCurated)
	}
}
