package answer

import (
	"context"

	"github.com/kailas-cloud/pageqa/internal/domain"
)

// Retriever answers nearest-neighbor queries over the collection.
type Retriever interface {
	Query(ctx context.Context, vector []float32, k int) ([]domain.Retrieved, error)
}
