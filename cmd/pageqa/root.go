package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pageqa/internal/config"
	"github.com/kailas-cloud/pageqa/internal/db"
	dbRedis "github.com/kailas-cloud/pageqa/internal/db/redis"
	"github.com/kailas-cloud/pageqa/internal/domain"
	logpkg "github.com/kailas-cloud/pageqa/internal/logger"
	"github.com/kailas-cloud/pageqa/internal/metrics"
	corpusrepo "github.com/kailas-cloud/pageqa/internal/repository/corpus"
	"github.com/kailas-cloud/pageqa/internal/repository/embcache"
	"github.com/kailas-cloud/pageqa/internal/scrape"
	openaiTransport "github.com/kailas-cloud/pageqa/internal/transport/openai"
	"github.com/kailas-cloud/pageqa/internal/transport/tei"
	answeruc "github.com/kailas-cloud/pageqa/internal/usecase/answer"
	ingestuc "github.com/kailas-cloud/pageqa/internal/usecase/ingest"
	"github.com/kailas-cloud/pageqa/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "pageqa",
	Short:        "Scrape a web page into a vector corpus and answer questions over it",
	Version:      fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
	SilenceUsage: true,
}

// healthEmbedder is what every embedding provider gives us before caching
// decorators are layered on top.
type healthEmbedder interface {
	domain.Embedder
	domain.HealthChecker
}

// app is the composition root shared by all commands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    db.Store
	embedder domain.Embedder
	health   domain.HealthChecker
	ingest   *ingestuc.Service
	answer   *answeruc.Service
}

func newApp(ctx context.Context) (*app, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting pageqa",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Strings("store_addrs", cfg.Store.Addrs),
		zap.String("collection", cfg.Corpus.Collection),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Store.Addrs,
		Password: cfg.Store.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeoutSec)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	logger.Info("Connected to store")

	metrics.RegisterPipelineMetrics()

	base := buildEmbedder(cfg, logger)

	var embedder domain.Embedder = base
	if cfg.Corpus.CacheEmbeddings {
		embedder = embcache.New(base, store, cfg.Store.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
		logger.Info("Embedding cache enabled")
	}

	repo := corpusrepo.New(store, cfg.Corpus.Collection, cfg.Store.KeyPrefix)
	if cfg.Embedding.Dimensions > 0 {
		if err := repo.Ensure(ctx, cfg.Embedding.Dimensions); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure collection: %w", err)
		}
	}

	extractor := scrape.NewExtractor(scrape.Config{
		Timeout:   time.Duration(cfg.Scrape.TimeoutSec) * time.Second,
		UserAgent: cfg.Scrape.UserAgent,
		Logger:    logger,
	})

	chat := openaiTransport.NewChat(&openaiTransport.ChatConfig{
		APIKey:  cfg.Chat.APIKey,
		BaseURL: cfg.Chat.BaseURL,
		Model:   cfg.Chat.Model,
		Logger:  logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		embedder: embedder,
		health:   base,
		ingest:   ingestuc.New(extractor, embedder, repo, logger),
		answer:   answeruc.New(embedder, repo, chat, logger),
	}, nil
}

func buildEmbedder(cfg config.Config, logger *zap.Logger) healthEmbedder {
	if cfg.Embedding.Provider == "local" {
		return tei.NewEmbedder(tei.Config{
			Endpoint: cfg.Embedding.LocalEndpoint,
			Logger:   logger,
		})
	}
	return openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:              cfg.Embedding.APIKey,
		BaseURL:             cfg.Embedding.BaseURL,
		Model:               cfg.Embedding.Model,
		Dimensions:          cfg.Embedding.Dimensions,
		DocumentInstruction: cfg.Embedding.DocumentInstruction,
		QueryInstruction:    cfg.Embedding.QueryInstruction,
		Logger:              logger,
	})
}

func (a *app) close() {
	_ = a.logger.Sync()
	a.store.Close()
}
