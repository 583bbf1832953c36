package domain

import "context"

// Role marks what an embedding is produced for. Retrieval-tuned providers
// compute different vectors for indexed content and for search queries;
// providers that ignore the distinction still accept it.
type Role string

const (
	// RoleDocument marks content being indexed.
	RoleDocument Role = "document"
	// RoleQuery marks content being searched for.
	RoleQuery Role = "query"
)

// Record is the persisted unit of the corpus: one extracted paragraph
// together with its embedding vector. Immutable once stored.
type Record struct {
	ID     string
	Vector []float32
	Text   string
}

// Retrieved is a single query hit: a stored text with its similarity score.
type Retrieved struct {
	ID    string
	Text  string
	Score float64
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string, role Role) (EmbeddingResult, error)
}

// Generator synthesizes an answer from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// HealthChecker verifies an external collaborator is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
