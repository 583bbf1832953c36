package chi

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pageqa/internal/domain"
	answeruc "github.com/kailas-cloud/pageqa/internal/usecase/answer"
	ingestuc "github.com/kailas-cloud/pageqa/internal/usecase/ingest"
)

type mockExtractor struct {
	extractFn func(ctx context.Context, url string) ([]string, error)
}

func (m *mockExtractor) Extract(ctx context.Context, url string) ([]string, error) {
	return m.extractFn(ctx, url)
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string, role domain.Role) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string, role domain.Role) (domain.EmbeddingResult, error) {
	return m.embedFn(ctx, text, role)
}

type mockCorpus struct {
	addFn   func(ctx context.Context, rec domain.Record) error
	queryFn func(ctx context.Context, vector []float32, k int) ([]domain.Retrieved, error)
}

func (m *mockCorpus) Add(ctx context.Context, rec domain.Record) error {
	return m.addFn(ctx, rec)
}

func (m *mockCorpus) Query(ctx context.Context, vector []float32, k int) ([]domain.Retrieved, error) {
	return m.queryFn(ctx, vector, k)
}

type mockGenerator struct {
	generateFn func(ctx context.Context, system, user string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	return m.generateFn(ctx, system, user)
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func okEmbedder() *mockEmbedder {
	return &mockEmbedder{
		embedFn: func(ctx context.Context, text string, role domain.Role) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
		},
	}
}

// newTestServer builds a Server around the given mocks, filling in
// healthy defaults for anything nil.
func newTestServer(ext *mockExtractor, emb *mockEmbedder, corpus *mockCorpus, gen *mockGenerator) *Server {
	if ext == nil {
		ext = &mockExtractor{extractFn: func(ctx context.Context, url string) ([]string, error) {
			return nil, nil
		}}
	}
	if emb == nil {
		emb = okEmbedder()
	}
	if corpus == nil {
		corpus = &mockCorpus{
			addFn: func(ctx context.Context, rec domain.Record) error { return nil },
			queryFn: func(ctx context.Context, vector []float32, k int) ([]domain.Retrieved, error) {
				return nil, nil
			},
		}
	}
	if gen == nil {
		gen = &mockGenerator{generateFn: func(ctx context.Context, system, user string) (string, error) {
			return "ok", nil
		}}
	}

	logger := zap.NewNop()
	ingestSvc := ingestuc.New(ext, emb, corpus, logger)
	answerSvc := answeruc.New(emb, corpus, gen, logger)
	return NewServer(ingestSvc, answerSvc, &mockPinger{}, &mockHealthChecker{}, logger)
}
