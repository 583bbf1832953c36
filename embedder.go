package pageqa

import (
	"context"

	"github.com/kailas-cloud/pageqa/internal/domain"
)

// Role marks whether text is embedded for storage or for search. Providers
// may prepend different instructions per role.
type Role string

const (
	// RoleDocument embeds text that will be stored in the corpus.
	RoleDocument Role = "document"
	// RoleQuery embeds a question used to search the corpus.
	RoleQuery Role = "query"
)

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string, role Role) (EmbeddingResult, error)
}

// Generator synthesizes an answer from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// embedderAdapter bridges a public Embedder to the domain interface.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string, role domain.Role) (domain.EmbeddingResult, error) {
	res, err := a.inner.Embed(ctx, text, Role(role))
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embedding,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// generatorAdapter bridges a public Generator to the domain interface.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, system, user string) (string, error) {
	return a.inner.Generate(ctx, system, user)
}
