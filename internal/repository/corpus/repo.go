package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/pageqa/internal/db"
	"github.com/kailas-cloud/pageqa/internal/domain"
)

// store is the consumer interface for the corpus (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo persists records of a single named collection and answers
// nearest-neighbor queries over it.
type Repo struct {
	store     store
	name      string
	keyPrefix string
	hnsw      HNSWConfig
}

// New creates a corpus repository scoped to one collection name.
func New(s store, name, keyPrefix string) *Repo {
	return &Repo{
		store:     s,
		name:      name,
		keyPrefix: keyPrefix,
		hnsw:      HNSWConfig{M: 32, EFConstruct: 400},
	}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Ensure creates the collection if it does not exist yet (get-or-create).
// Repeated calls with the same name are no-ops. An existing collection with
// a different dimensionality fails with ErrDimensionMismatch.
func (r *Repo) Ensure(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dim)
	}

	meta, err := r.store.HGetAll(ctx, r.metaKey())
	if err != nil {
		return storeErr("read collection meta", err)
	}

	if len(meta) > 0 {
		stored, err := dimFromMeta(meta)
		if err != nil {
			return err
		}
		if stored != dim {
			return fmt.Errorf(
				"collection %s has dimension %d, embedder produces %d: %w",
				r.name, stored, dim, domain.ErrDimensionMismatch,
			)
		}
		return r.ensureIndex(ctx, dim)
	}

	// First reference: HSET metadata then FT.CREATE. On index failure the
	// metadata is rolled back so a later Ensure can retry cleanly.
	if err := r.store.HSet(ctx, r.metaKey(), metaToHash(dim)); err != nil {
		return storeErr("write collection meta", err)
	}
	if err := r.store.CreateIndex(ctx, r.indexDef(dim)); err != nil && !errors.Is(err, db.ErrIndexExists) {
		cleanupErr := r.store.Del(ctx, r.metaKey())
		return storeErr("create index", errors.Join(err, cleanupErr))
	}
	return nil
}

// Add inserts one record. The vector length must match the collection's
// established dimensionality; a mismatch fails before anything is written.
// Adding to a collection that was never Ensure'd establishes it with the
// record's dimensionality.
func (r *Repo) Add(ctx context.Context, rec domain.Record) error {
	meta, err := r.store.HGetAll(ctx, r.metaKey())
	if err != nil {
		return storeErr("read collection meta", err)
	}

	if len(meta) == 0 {
		if err := r.Ensure(ctx, len(rec.Vector)); err != nil {
			return err
		}
	} else {
		dim, err := dimFromMeta(meta)
		if err != nil {
			return err
		}
		if len(rec.Vector) != dim {
			return fmt.Errorf(
				"record vector has length %d, collection %s expects %d: %w",
				len(rec.Vector), r.name, dim, domain.ErrDimensionMismatch,
			)
		}
	}

	if err := r.store.HSet(ctx, r.docKey(rec.ID), recordToHash(rec)); err != nil {
		return storeErr("write record", err)
	}
	return nil
}

// Query returns up to k stored texts nearest to the query vector, ordered by
// ascending distance. An empty or absent collection yields an empty result.
func (r *Repo) Query(ctx context.Context, vector []float32, k int) ([]domain.Retrieved, error) {
	meta, err := r.store.HGetAll(ctx, r.metaKey())
	if err != nil {
		return nil, storeErr("read collection meta", err)
	}
	if len(meta) == 0 {
		return nil, nil
	}

	dim, err := dimFromMeta(meta)
	if err != nil {
		return nil, err
	}
	if len(vector) != dim {
		return nil, fmt.Errorf(
			"query vector has length %d, collection %s expects %d: %w",
			len(vector), r.name, dim, domain.ErrDimensionMismatch,
		)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldText, "__vector_score"},
	})
	if err != nil {
		return nil, storeErr("knn search", err)
	}

	out := make([]domain.Retrieved, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, domain.Retrieved{
			ID:    r.idFromKey(e.Key),
			Text:  e.Fields[fieldText],
			Score: e.Score,
		})
	}
	return out, nil
}

// Count returns the number of records in the collection.
func (r *Repo) Count(ctx context.Context) (int, error) {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return 0, storeErr("probe index", err)
	}
	if !exists {
		return 0, nil
	}
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, storeErr("count records", err)
	}
	return n, nil
}

func (r *Repo) ensureIndex(ctx context.Context, dim int) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return storeErr("probe index", err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, r.indexDef(dim)); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return storeErr("create index", err)
	}
	return nil
}

func (r *Repo) indexDef(dim int) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:        r.indexName(),
		StorageType: db.StorageHash,
		Prefixes:    []string{r.docPrefix()},
		Fields: []db.IndexField{
			{
				Name: fieldText,
				Type: db.IndexFieldText,
			},
			{
				Name:              fieldVector,
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
}

func (r *Repo) metaKey() string {
	return fmt.Sprintf("%scorpus:%s:meta", r.keyPrefix, r.name)
}

func (r *Repo) docPrefix() string {
	return fmt.Sprintf("%scorpus:%s:doc:", r.keyPrefix, r.name)
}

func (r *Repo) docKey(id string) string {
	return r.docPrefix() + id
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%scorpus:%s:idx", r.keyPrefix, r.name)
}

func (r *Repo) idFromKey(key string) string {
	prefix := r.docPrefix()
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return key
}

// storeErr maps backend failures onto the unavailable-store sentinel so
// callers see one error class for an unreachable or broken backing service.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
