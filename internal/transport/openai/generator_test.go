package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/gfinder/docchat/internal/domain"
)

func newTestGenerator(serverURL string) *Generator {
	return NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func TestGenerate_PromptContainsSources(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 1 {
			prompt = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("回答本文"))
	}))
	defer server.Close()

	gen := newTestGenerator(server.URL)

	docs := []domain.RankedDocument{
		{Document: domain.Document{Title: "環境基本計画", URL: "https://example.org/plan", Summary: "計画の概要"}, Score: 0.9},
	}

	answer, err := gen.Generate(context.Background(), "計画の目的は？", docs)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "回答本文" {
		t.Errorf("unexpected answer: %q", answer)
	}

	for _, want := range []string{"環境基本計画", "https://example.org/plan", "計画の概要", "計画の目的は？"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGenerate_TrimsWhitespace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("  answer  \n"))
	}))
	defer server.Close()

	gen := newTestGenerator(server.URL)

	answer, err := gen.Generate(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "answer" {
		t.Errorf("expected trimmed answer, got %q", answer)
	}
}

func TestGenerate_BlankAnswerIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("   "))
	}))
	defer server.Close()

	gen := newTestGenerator(server.URL)

	_, err := gen.Generate(context.Background(), "q", nil)
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed for blank answer, got %v", err)
	}
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream failure", "type": "server_error"},
		})
	}))
	defer server.Close()

	gen := newTestGenerator(server.URL)

	_, err := gen.Generate(context.Background(), "q", nil)
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}
