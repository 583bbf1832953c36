package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pageqa/internal/db"
	"github.com/kailas-cloud/pageqa/internal/domain"
	"github.com/kailas-cloud/pageqa/internal/metrics"
	answeruc "github.com/kailas-cloud/pageqa/internal/usecase/answer"
	ingestuc "github.com/kailas-cloud/pageqa/internal/usecase/ingest"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest       = "bad_request"
	codeFetchFailed      = "fetch_failed"
	codeParseFailed      = "parse_failed"
	codeEmbeddingError   = "embedding_provider_error"
	codeStoreUnavailable = "store_unavailable"
	codeDimMismatch      = "vector_dim_mismatch"
	codeRetrievalFailed  = "retrieval_failed"
	codeGenerationFailed = "generation_failed"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the ingest and answer pipelines over HTTP.
type Server struct {
	ingest        *ingestuc.Service
	answer        *answeruc.Service
	store         db.Pinger
	embedder      domain.HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	answer *answeruc.Service,
	store db.Pinger,
	embedder domain.HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:   ingest,
		answer:   answer,
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrFetch, http.StatusBadGateway, codeFetchFailed),
		sentinelHandler(domain.ErrParse, http.StatusBadGateway, codeParseFailed),
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway, codeEmbeddingError),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, codeDimMismatch),
		sentinelHandler(domain.ErrRetrieval, http.StatusBadGateway, codeRetrievalFailed),
		sentinelHandler(domain.ErrGeneration, http.StatusBadGateway, codeGenerationFailed),
	}
	return s
}

// Router assembles the chi router with the full middleware chain.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Post("/v1/ingest", s.Ingest)
	r.Post("/v1/ask", s.Ask)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

type ingestRequest struct {
	URL string `json:"url"`
}

type ingestResponse struct {
	Stored int `json:"stored"`
}

// Ingest handles POST /v1/ingest.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "url is required")
		return
	}

	stored, err := s.ingest.Ingest(r.Context(), req.URL)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Stored: stored})
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "question is required")
		return
	}

	answer, err := s.answer.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"store":    "ok",
		"embedder": "ok",
	}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		checks["store"] = "fail"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}
	if err := s.embedder.HealthCheck(r.Context()); err != nil {
		checks["embedder"] = "fail"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: status, Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrFetch,
		domain.ErrParse,
		domain.ErrEmbedding,
		domain.ErrStoreUnavailable,
		domain.ErrDimensionMismatch,
		domain.ErrRetrieval,
		domain.ErrGeneration,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
