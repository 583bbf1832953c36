package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pageqa/internal/domain"
	"github.com/kailas-cloud/pageqa/internal/metrics"
)

// topK is the fixed number of retrieved paragraphs per question.
const topK = 3

const systemInstruction = "You are a helpful assistant. Answer the question " +
	"using only the provided context. If the context does not contain the " +
	"answer, say that you don't know."

// Service answers questions over the ingested corpus: embed the question,
// retrieve the nearest stored paragraphs, and have a generative model
// synthesize an answer grounded in them. Read-only with respect to the
// collection.
type Service struct {
	embedder  domain.Embedder
	corpus    Retriever
	generator domain.Generator
	logger    *zap.Logger
}

// New creates an answering service.
func New(embedder domain.Embedder, corpus Retriever, generator domain.Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embedder: embedder, corpus: corpus, generator: generator, logger: logger}
}

// Ask returns a natural-language answer to question, grounded in the topK
// nearest stored paragraphs.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	start := time.Now()

	answer, err := s.ask(ctx, question)
	if err != nil {
		metrics.AnswerRequestsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.AnswerRequestsTotal.WithLabelValues("success").Inc()
	metrics.AnswerRequestDuration.Observe(time.Since(start).Seconds())
	return answer, nil
}

func (s *Service) ask(ctx context.Context, question string) (string, error) {
	res, err := s.embedder.Embed(ctx, question, domain.RoleQuery)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.corpus.Query(ctx, res.Embedding, topK)
	if err != nil {
		return "", fmt.Errorf("query corpus: %w: %w", domain.ErrRetrieval, err)
	}

	contextBlock, err := serializeContext(hits)
	if err != nil {
		return "", fmt.Errorf("serialize context: %w", err)
	}

	user := fmt.Sprintf("Question: %s\n\nContext:\n%s", question, contextBlock)

	answer, err := s.generator.Generate(ctx, systemInstruction, user)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Debug("question answered",
		zap.Int("retrieved", len(hits)),
		zap.Int("context_bytes", len(contextBlock)),
	)
	return answer, nil
}

// serializeContext renders the retrieved texts, in store order, as a single
// string the generative model can read. The exact format is not a contract;
// it only has to deterministically include every retrieved text.
func serializeContext(hits []domain.Retrieved) (string, error) {
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	data, err := json.Marshal(texts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
