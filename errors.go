package pageqa

import "github.com/kailas-cloud/pageqa/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrFetch             = domain.ErrFetch
	ErrParse             = domain.ErrParse
	ErrEmbedding         = domain.ErrEmbedding
	ErrStoreUnavailable  = domain.ErrStoreUnavailable
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrRetrieval         = domain.ErrRetrieval
	ErrGeneration        = domain.ErrGeneration
)
