package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	ScrapeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pageqa",
			Name:      "scrape_requests_total",
			Help:      "Total number of page scrape attempts",
		},
		[]string{"status"},
	)

	ScrapeParagraphsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pageqa",
			Name:      "scrape_paragraphs_total",
			Help:      "Total paragraphs extracted from scraped pages",
		},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pageqa",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "role", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pageqa",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pageqa",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pageqa",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RecordsIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pageqa",
			Name:      "records_ingested_total",
			Help:      "Total records written to the corpus",
		},
	)

	AnswerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pageqa",
			Name:      "answer_requests_total",
			Help:      "Total number of question-answer requests",
		},
		[]string{"status"},
	)

	AnswerRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pageqa",
			Name:      "answer_request_duration_seconds",
			Help:      "End-to-end answer latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ScrapeRequestsTotal)
	prometheus.MustRegister(ScrapeParagraphsTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(RecordsIngestedTotal)
	prometheus.MustRegister(AnswerRequestsTotal)
	prometheus.MustRegister(AnswerRequestDuration)
	pipelineMetricsRegistered = true
}
