package pageqa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pageqa/internal/db"
	dbRedis "github.com/kailas-cloud/pageqa/internal/db/redis"
	"github.com/kailas-cloud/pageqa/internal/domain"
	corpusrepo "github.com/kailas-cloud/pageqa/internal/repository/corpus"
	"github.com/kailas-cloud/pageqa/internal/repository/embcache"
	"github.com/kailas-cloud/pageqa/internal/scrape"
	openaiTransport "github.com/kailas-cloud/pageqa/internal/transport/openai"
	"github.com/kailas-cloud/pageqa/internal/transport/tei"
	answeruc "github.com/kailas-cloud/pageqa/internal/usecase/answer"
	ingestuc "github.com/kailas-cloud/pageqa/internal/usecase/ingest"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for test substitution.
type ingestUseCase interface {
	Ingest(ctx context.Context, url string) (int, error)
}

type answerUseCase interface {
	Ask(ctx context.Context, question string) (string, error)
}

type corpusCounter interface {
	Count(ctx context.Context) (int, error)
}

// Client is the pageqa SDK entry point.
type Client struct {
	store     db.Store
	ingestSvc ingestUseCase
	answerSvc answerUseCase
	counter   corpusCounter
}

// New creates a pageqa Client and connects to the store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		collection:    "scraped_data_v3",
		keyPrefix:     "pageqa:",
		scrapeTimeout: 15 * time.Second,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("pageqa: store address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("pageqa: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("pageqa: store not ready: %w", err)
	}

	return wireClient(ctx, store, cfg)
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	embedder, err := resolveEmbedder(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	if cfg.cacheEmbeddings {
		embedder = embcache.New(embedder, store, cfg.keyPrefix, nil, logger)
	}

	generator := resolveGenerator(cfg, logger)

	repo := corpusrepo.New(store, cfg.collection, cfg.keyPrefix)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		repo = repo.WithHNSW(corpusrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}
	if cfg.dimensions > 0 {
		if err := repo.Ensure(ctx, cfg.dimensions); err != nil {
			store.Close()
			return nil, fmt.Errorf("pageqa: ensure collection: %w", err)
		}
	}

	extractor := scrape.NewExtractor(scrape.Config{
		Timeout:   cfg.scrapeTimeout,
		UserAgent: cfg.userAgent,
		Logger:    logger,
	})

	return &Client{
		store:     store,
		ingestSvc: ingestuc.New(extractor, embedder, repo, logger),
		answerSvc: answeruc.New(embedder, repo, generator, logger),
		counter:   repo,
	}, nil
}

func resolveEmbedder(cfg *clientConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch {
	case cfg.embedder != nil:
		return &embedderAdapter{inner: cfg.embedder}, nil
	case cfg.localEndpoint != "":
		return tei.NewEmbedder(tei.Config{
			Endpoint: cfg.localEndpoint,
			Logger:   logger,
		}), nil
	case cfg.openaiAPIKey != "" && cfg.embeddingModel != "":
		return openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:              cfg.openaiAPIKey,
			BaseURL:             cfg.openaiBaseURL,
			Model:               cfg.embeddingModel,
			Dimensions:          cfg.dimensions,
			DocumentInstruction: cfg.docInstruction,
			QueryInstruction:    cfg.queryInstruction,
			Logger:              logger,
		}), nil
	default:
		return nil, errors.New("pageqa: embedder required (use WithOpenAI, WithLocalEmbedder or WithEmbedder)")
	}
}

func resolveGenerator(cfg *clientConfig, logger *zap.Logger) domain.Generator {
	switch {
	case cfg.generator != nil:
		return &generatorAdapter{inner: cfg.generator}
	case cfg.openaiAPIKey != "" && cfg.chatModel != "":
		return openaiTransport.NewChat(&openaiTransport.ChatConfig{
			APIKey:  cfg.openaiAPIKey,
			BaseURL: cfg.openaiBaseURL,
			Model:   cfg.chatModel,
			Logger:  logger,
		})
	default:
		return &noGenerator{}
	}
}

// noGenerator fails Ask on clients configured for ingest only.
type noGenerator struct{}

func (*noGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	return "", fmt.Errorf("pageqa: no generator configured (use WithOpenAI or WithGenerator): %w", domain.ErrGeneration)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ingest scrapes the page at url and stores one embedded record per
// paragraph. Returns the number of records stored; on a mid-page failure
// the count covers the paragraphs stored before the error.
func (c *Client) Ingest(ctx context.Context, url string) (int, error) {
	return c.ingestSvc.Ingest(ctx, url)
}

// Ask answers a question grounded on the most similar stored paragraphs.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	return c.answerSvc.Ask(ctx, question)
}

// Count returns the number of records in the corpus.
func (c *Client) Count(ctx context.Context) (int, error) {
	return c.counter.Count(ctx)
}
