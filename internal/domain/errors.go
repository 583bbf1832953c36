package domain

import "errors"

var (
	// ErrFetch signals an incomplete or non-success page fetch.
	ErrFetch = errors.New("fetch failed")
	// ErrParse signals a body that could not be parsed as markup.
	ErrParse = errors.New("parse failed")
	// ErrEmbedding signals an embedding provider failure or malformed vector.
	ErrEmbedding = errors.New("embedding failed")
	// ErrStoreUnavailable signals an unreachable vector store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDimensionMismatch signals a vector whose length disagrees with the
	// collection's established dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrRetrieval signals a failed nearest-neighbor query.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration signals a failed or empty generative model response.
	ErrGeneration = errors.New("generation failed")
)
