package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pageqa/internal/domain"
	"github.com/kailas-cloud/pageqa/internal/metrics"
)

const providerName = "local"

// Embedder is the local embedding variant: it calls a token-level embedding
// server (text-embeddings-inference style API) and reduces the per-token
// vectors to one fixed-length vector by mean pooling. The role parameter is
// accepted but does not change the embedding.
type Embedder struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// Config holds the local embedding server settings.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewEmbedder creates a local token-embedding provider.
func NewEmbedder(cfg Config) *Embedder {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type embedRequest struct {
	Inputs string `json:"inputs"`
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string, role domain.Role) (domain.EmbeddingResult, error) {
	if text == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("empty input text: %w", domain.ErrEmbedding)
	}

	body, err := json.Marshal(embedRequest{Inputs: text})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.endpoint, string(role), "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("embedding server request: %w: %w", domain.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.endpoint, string(role), "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("embedding server status %s: %w", resp.Status, domain.ErrEmbedding)
	}

	var tokens [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.endpoint, string(role), "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("decode embedding response: %w: %w", domain.ErrEmbedding, err)
	}

	pooled, err := MeanPool(tokens)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.endpoint, string(role), "error").Inc()
		return domain.EmbeddingResult{}, err
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.endpoint, string(role), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.endpoint).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: pooled}, nil
}

// HealthCheck verifies the embedding server is reachable.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding server unreachable: %w", err)
	}
	// Any HTTP response means the server is up; GET on the embed route
	// typically returns 405.
	_ = resp.Body.Close()
	return nil
}

// MeanPool reduces a non-empty sequence of equal-length token vectors to a
// single vector whose i-th element is the arithmetic mean of the i-th
// elements across all tokens.
func MeanPool(tokens [][]float32) ([]float32, error) {
	if len(tokens) == 0 || len(tokens[0]) == 0 {
		return nil, fmt.Errorf("empty token embeddings: %w", domain.ErrEmbedding)
	}

	dim := len(tokens[0])
	sums := make([]float64, dim)
	for _, tok := range tokens {
		if len(tok) != dim {
			return nil, fmt.Errorf("ragged token embeddings (%d vs %d): %w", len(tok), dim, domain.ErrEmbedding)
		}
		for i, v := range tok {
			sums[i] += float64(v)
		}
	}

	pooled := make([]float32, dim)
	for i, s := range sums {
		pooled[i] = float32(s / float64(len(tokens)))
	}
	return pooled, nil
}
