package tei

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/pageqa/internal/domain"
)

func TestMeanPool(t *testing.T) {
	tests := []struct {
		name   string
		tokens [][]float32
		want   []float32
	}{
		{
			name:   "three tokens two dims",
			tokens: [][]float32{{1, 2}, {3, 4}, {5, 0}},
			want:   []float32{3, 2},
		},
		{
			name:   "single token is identity",
			tokens: [][]float32{{0.5, -1, 2}},
			want:   []float32{0.5, -1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MeanPool(tt.tokens)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d dims, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("dim %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMeanPool_RejectsEmptyAndRagged(t *testing.T) {
	if _, err := MeanPool(nil); !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("nil tokens: expected ErrEmbedding, got %v", err)
	}
	if _, err := MeanPool([][]float32{{}}); !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("zero-length token: expected ErrEmbedding, got %v", err)
	}
	if _, err := MeanPool([][]float32{{1, 2}, {3}}); !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("ragged tokens: expected ErrEmbedding, got %v", err)
	}
}

func TestEmbed_PoolsServerTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Inputs != "hello world" {
			t.Errorf("unexpected input %q", req.Inputs)
		}
		_ = json.NewEncoder(w).Encode([][]float32{{1, 2}, {3, 4}, {5, 0}})
	}))
	t.Cleanup(srv.Close)

	e := NewEmbedder(Config{Endpoint: srv.URL})
	res, err := e.Embed(context.Background(), "hello world", domain.RoleDocument)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{3, 2}
	if len(res.Embedding) != 2 || res.Embedding[0] != want[0] || res.Embedding[1] != want[1] {
		t.Errorf("expected pooled %v, got %v", want, res.Embedding)
	}
}

func TestEmbed_EmptyServerResultIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{})
	}))
	t.Cleanup(srv.Close)

	e := NewEmbedder(Config{Endpoint: srv.URL})
	for i := 0; i < 2; i++ {
		_, err := e.Embed(context.Background(), "text", domain.RoleQuery)
		if !errors.Is(err, domain.ErrEmbedding) {
			t.Fatalf("expected ErrEmbedding for empty provider result, got %v", err)
		}
	}
}

func TestEmbed_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"not a vector"}`))
	}))
	t.Cleanup(srv.Close)

	e := NewEmbedder(Config{Endpoint: srv.URL})
	_, err := e.Embed(context.Background(), "text", domain.RoleDocument)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	e := NewEmbedder(Config{Endpoint: srv.URL})
	_, err := e.Embed(context.Background(), "text", domain.RoleDocument)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}
