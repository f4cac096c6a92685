package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embedServer(t *testing.T, status int, dims int) (*httptest.Server, *[]string) {
	t.Helper()
	var lastInput []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		lastInput = req.Input

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		embeddings := make([][]float32, len(req.Input))
		for i := range embeddings {
			vec := make([]float32, dims)
			vec[0] = float32(i + 1)
			embeddings[i] = vec
		}
		json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
	}))
	t.Cleanup(srv.Close)
	return srv, &lastInput
}

func TestEmbed(t *testing.T) {
	srv, _ := embedServer(t, http.StatusOK, 4)
	c := NewEmbedClient(srv.URL, "all-minilm")

	vec, err := c.Embed(context.Background(), "backend engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 4 || vec[0] != 1 {
		t.Errorf("vec = %v", vec)
	}
}

func TestEmbedBatchSingleRoundTrip(t *testing.T) {
	srv, lastInput := embedServer(t, http.StatusOK, 4)
	c := NewEmbedClient(srv.URL, "all-minilm")

	out, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d vectors, want 3", len(out))
	}
	if len(*lastInput) != 3 {
		t.Errorf("server saw %d inputs, want one batched call with 3", len(*lastInput))
	}
}

func TestEmbedBatchEmpty(t *testing.T) {
	c := NewEmbedClient("http://unused", "all-minilm")
	out, err := c.EmbedBatch(context.Background(), nil)
	if err != nil || out != nil {
		t.Errorf("got %v, %v", out, err)
	}
}

func TestEmbedServerError(t *testing.T) {
	srv, _ := embedServer(t, http.StatusInternalServerError, 0)
	c := NewEmbedClient(srv.URL, "all-minilm")

	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{}})
	}))
	t.Cleanup(srv.Close)

	c := NewEmbedClient(srv.URL, "all-minilm")
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error on count mismatch")
	}
}
