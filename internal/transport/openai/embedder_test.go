package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/gfinder/docchat/internal/domain"
	"github.com/gfinder/docchat/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func newTestEmbedder(t *testing.T, serverURL string, dims int) *Embedder {
	t.Helper()
	return NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    serverURL,
		Model:      "test-model",
		Dimensions: dims,
		Provider:   "test",
		Logger:     zap.NewNop(),
	})
}

func TestBatchEmbed_PreservesInputOrder(t *testing.T) {
	vec1 := []float32{0.1, 0.2}
	vec2 := []float32{0.3, 0.4}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		// Vectors returned out of order; the client must restore by Index.
		resp := embeddingResponse{Object: "list", Model: "test-model"}
		resp.Data = []embeddingData{
			{Object: "embedding", Embedding: vec2, Index: 1},
			{Object: "embedding", Embedding: vec1, Index: 0},
		}
		resp.Usage.PromptTokens = 20
		resp.Usage.TotalTokens = 20

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	emb := newTestEmbedder(t, server.URL, 2)

	result, err := emb.BatchEmbed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}

	if len(result.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(result.Embeddings))
	}
	if result.Embeddings[0][0] != 0.1 {
		t.Errorf("expected first vec[0]=0.1, got %f", result.Embeddings[0][0])
	}
	if result.Embeddings[1][0] != 0.3 {
		t.Errorf("expected second vec[0]=0.3, got %f", result.Embeddings[1][0])
	}
	if result.TotalTokens != 20 {
		t.Errorf("expected TotalTokens=20, got %d", result.TotalTokens)
	}
}

func TestBatchEmbed_EmptyInput(t *testing.T) {
	emb := newTestEmbedder(t, "http://unused", 4)

	result, err := emb.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embeddings != nil {
		t.Errorf("expected nil embeddings for empty input, got %v", result.Embeddings)
	}
}

func TestBatchEmbed_EmptyTextsGetZeroVectors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req struct {
			Input []string `json:"input"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) != 1 || req.Input[0] != "text" {
			t.Errorf("only the non-empty text should reach the provider, got %v", req.Input)
		}

		resp := embeddingResponse{Object: "list", Model: "test-model"}
		resp.Data = []embeddingData{
			{Object: "embedding", Embedding: []float32{0.5, 0.5, 0.5}, Index: 0},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	emb := newTestEmbedder(t, server.URL, 3)

	result, err := emb.BatchEmbed(context.Background(), []string{"", "text", ""})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one provider call, got %d", calls)
	}
	if len(result.Embeddings) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(result.Embeddings))
	}
	for _, i := range []int{0, 2} {
		for _, v := range result.Embeddings[i] {
			if v != 0 {
				t.Errorf("vector %d should be all zeros, got %v", i, result.Embeddings[i])
			}
		}
		if len(result.Embeddings[i]) != 3 {
			t.Errorf("zero vector dimension = %d, expected 3", len(result.Embeddings[i]))
		}
	}
	if result.Embeddings[1][0] != 0.5 {
		t.Errorf("real vector misplaced: %v", result.Embeddings[1])
	}
}

func TestBatchEmbed_AllEmptyTextsSkipProvider(t *testing.T) {
	emb := newTestEmbedder(t, "http://unused", 2)

	result, err := emb.BatchEmbed(context.Background(), []string{"", ""})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if len(result.Embeddings) != 2 {
		t.Fatalf("expected 2 zero vectors, got %d", len(result.Embeddings))
	}
}

func TestBatchEmbed_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingResponse{Object: "list", Model: "test-model"}
		resp.Data = []embeddingData{
			{Object: "embedding", Embedding: []float32{0.1}, Index: 0},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	emb := newTestEmbedder(t, server.URL, 1)

	_, err := emb.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable for count mismatch, got %v", err)
	}
}

func TestBatchEmbed_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	emb := newTestEmbedder(t, server.URL, 2)

	_, err := emb.BatchEmbed(context.Background(), []string{"hello"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable for 429 response, got %v", err)
	}
}
