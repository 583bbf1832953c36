package ingest

import (
	"context"

	"github.com/kailas-cloud/pageqa/internal/domain"
)

// Extractor fetches a page and returns its cleaned paragraph texts in
// document order.
type Extractor interface {
	Extract(ctx context.Context, url string) ([]string, error)
}

// Corpus persists records into the collection.
type Corpus interface {
	Add(ctx context.Context, rec domain.Record) error
}
