package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pageqa/internal/domain"
	"github.com/kailas-cloud/pageqa/internal/metrics"
)

// Service populates the collection from a URL: extract paragraphs, embed
// each with the document role, store each under a fresh id. Units are
// processed strictly one at a time in extraction order; the first failure
// aborts the remaining units of the run.
type Service struct {
	extractor Extractor
	embedder  domain.Embedder
	corpus    Corpus
	logger    *zap.Logger
}

// New creates an ingestion service.
func New(extractor Extractor, embedder domain.Embedder, corpus Corpus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{extractor: extractor, embedder: embedder, corpus: corpus, logger: logger}
}

// Ingest scrapes url and stores one record per extracted paragraph.
// It returns the number of units stored; on error that count covers the
// well-defined prefix ingested before the failure.
func (s *Service) Ingest(ctx context.Context, url string) (int, error) {
	paragraphs, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", url, err)
	}

	stored := 0
	for i, text := range paragraphs {
		res, err := s.embedder.Embed(ctx, text, domain.RoleDocument)
		if err != nil {
			return stored, fmt.Errorf("embed paragraph %d: %w", i, err)
		}

		rec := domain.Record{
			ID:     uuid.NewString(),
			Vector: res.Embedding,
			Text:   text,
		}
		if err := s.corpus.Add(ctx, rec); err != nil {
			return stored, fmt.Errorf("store paragraph %d: %w", i, err)
		}

		stored++
		metrics.RecordsIngestedTotal.Inc()
	}

	s.logger.Info("page ingested",
		zap.String("url", url),
		zap.Int("records", stored),
	)
	return stored, nil
}
