package pageqa

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	collection string
	keyPrefix  string

	dimensions      int
	hnswM           int
	hnswEFConstruct int
	cacheEmbeddings bool

	embedder  Embedder
	generator Generator

	openaiAPIKey     string
	openaiBaseURL    string
	embeddingModel   string
	chatModel        string
	docInstruction   string
	queryInstruction string
	localEndpoint    string

	scrapeTimeout time.Duration
	userAgent     string

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCollection sets the corpus collection name.
// Default: "scraped_data_v3".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "pageqa:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithVectorDimensions fixes the corpus dimensionality up front, creating
// the index on connect. When unset the dimension is established by the
// first ingested paragraph.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithEmbeddingCache caches embeddings in Redis keyed by text and role,
// skipping repeat provider calls on re-ingest. Default: disabled.
func WithEmbeddingCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheEmbeddings = true
	})
}

// WithEmbedder sets a custom embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets a custom answer generator.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithOpenAI wires both embeddings and answer generation through an
// OpenAI-compatible API.
func WithOpenAI(apiKey, embeddingModel, chatModel string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openaiAPIKey = apiKey
		c.embeddingModel = embeddingModel
		c.chatModel = chatModel
	})
}

// WithBaseURL overrides the OpenAI-compatible API base URL.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openaiBaseURL = url
	})
}

// WithInstructions sets role instruction prefixes prepended to the text
// before embedding (document side and query side respectively).
func WithInstructions(document, query string) Option {
	return optionFunc(func(c *clientConfig) {
		c.docInstruction = document
		c.queryInstruction = query
	})
}

// WithLocalEmbedder embeds via a local token-embedding server with mean
// pooling instead of an OpenAI-compatible API.
func WithLocalEmbedder(endpoint string) Option {
	return optionFunc(func(c *clientConfig) {
		c.localEndpoint = endpoint
	})
}

// WithScrapeTimeout bounds a single page fetch. Default: 15s.
func WithScrapeTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.scrapeTimeout = d
	})
}

// WithUserAgent sets the User-Agent header sent on page fetches.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
