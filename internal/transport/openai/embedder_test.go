package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pageqa/internal/domain"
	"github.com/kailas-cloud/pageqa/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func embeddingServer(t *testing.T, vec []float32, tokens int, onInput func(string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if onInput != nil && len(req.Input) > 0 {
			onInput(req.Input[0])
		}

		resp := embeddingResponse{Object: "list", Model: req.Model}
		if vec != nil {
			resp.Data = append(resp.Data, struct {
				Object    string    `json:"object"`
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{
				Object:    "embedding",
				Embedding: vec,
				Index:     0,
			})
		}
		resp.Usage.PromptTokens = tokens
		resp.Usage.TotalTokens = tokens

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbedder_Embed(t *testing.T) {
	expectedVec := []float32{0.1, 0.2, 0.3, 0.4}

	server := embeddingServer(t, expectedVec, 10, nil)
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		Dimensions: 4,
		Logger:     zap.NewNop(),
	})

	result, err := emb.Embed(context.Background(), "hello world", domain.RoleDocument)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(result.Embedding) != len(expectedVec) {
		t.Fatalf("expected %d dimensions, got %d", len(expectedVec), len(result.Embedding))
	}
	for i, v := range result.Embedding {
		if v != expectedVec[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, expectedVec[i])
		}
	}
	if result.PromptTokens != 10 || result.TotalTokens != 10 {
		t.Errorf("usage = (%d, %d), expected (10, 10)", result.PromptTokens, result.TotalTokens)
	}
}

func TestEmbedder_RoleInstructionPrefix(t *testing.T) {
	var sent []string
	server := embeddingServer(t, []float32{0.1}, 1, func(input string) {
		sent = append(sent, input)
	})
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:              "test-key",
		BaseURL:             server.URL,
		Model:               "test-model",
		DocumentInstruction: "passage: ",
		QueryInstruction:    "query: ",
		Logger:              zap.NewNop(),
	})

	if _, err := emb.Embed(context.Background(), "hello", domain.RoleDocument); err != nil {
		t.Fatalf("document embed failed: %v", err)
	}
	if _, err := emb.Embed(context.Background(), "hello", domain.RoleQuery); err != nil {
		t.Fatalf("query embed failed: %v", err)
	}

	if len(sent) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(sent))
	}
	if sent[0] != "passage: hello" {
		t.Errorf("document input = %q, expected %q", sent[0], "passage: hello")
	}
	if sent[1] != "query: hello" {
		t.Errorf("query input = %q, expected %q", sent[1], "query: hello")
	}
}

func TestEmbedder_EmptyText(t *testing.T) {
	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: "http://unused",
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "", domain.RoleDocument)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding for empty text, got %v", err)
	}
}

func TestEmbedder_EmptyProviderResult(t *testing.T) {
	server := embeddingServer(t, nil, 0, nil)
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	// Repeated calls must keep failing, never return a zero-length vector.
	for i := 0; i < 2; i++ {
		result, err := emb.Embed(context.Background(), "hello", domain.RoleDocument)
		if !errors.Is(err, domain.ErrEmbedding) {
			t.Fatalf("expected ErrEmbedding, got %v", err)
		}
		if len(result.Embedding) != 0 {
			t.Fatalf("expected no embedding on error, got %v", result.Embedding)
		}
	}
}

func TestEmbedder_ZeroLengthVector(t *testing.T) {
	server := embeddingServer(t, []float32{}, 1, nil)
	defer server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "hello", domain.RoleDocument)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding for zero-length vector, got %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
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

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "hello", domain.RoleDocument)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the HTTP status: %v", err)
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("error should carry the API message: %v", err)
	}
}

func TestEmbedder_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	emb := NewEmbedder(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "hello", domain.RoleDocument)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding for transport error, got %v", err)
	}
}
