package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gfinder/docchat/internal/domain"
	"github.com/gfinder/docchat/internal/repository/refdata"
	healthuc "github.com/gfinder/docchat/internal/usecase/health"
	pipelineuc "github.com/gfinder/docchat/internal/usecase/pipeline"
)

const maxQuestionLen = 2000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over the conversation pipeline.
type Server struct {
	pipeline      *pipelineuc.Service
	health        *healthuc.Service
	refdata       *refdata.Snapshot
	sessions      *Registry
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	pipeline *pipelineuc.Service,
	health *healthuc.Service,
	ref *refdata.Snapshot,
	sessions *Registry,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline: pipeline,
		health:   health,
		refdata:  ref,
		sessions: sessions,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrRankingFailed, http.StatusBadGateway, codeRankingFailed),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, codeGenerationFailed),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chirouter.Router) {
	r.Route("/v1", func(r chirouter.Router) {
		r.Post("/sessions", s.CreateSession)
		r.Delete("/sessions/{id}", s.DeleteSession)
		r.Put("/sessions/{id}/filters", s.SetFilters)
		r.Post("/sessions/{id}/ask", s.Ask)
		r.Get("/sessions/{id}/history", s.GetHistory)
		r.Get("/refdata/regions", s.ListRegions)
		r.Get("/refdata/categories", s.ListCategories)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// CreateSession handles POST /v1/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID})
}

// DeleteSession handles DELETE /v1/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// SetFilters handles PUT /v1/sessions/{id}/filters.
// Replacing the filter state clears the conversation history.
func (s *Server) SetFilters(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req filtersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess.SetFilters(req.toState())
	w.WriteHeader(http.StatusNoContent)
}

// Ask handles POST /v1/sessions/{id}/ask. Runs one full pipeline
// execution and returns the terminal outcome.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is required")
		return
	}
	if len(question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is too long")
		return
	}

	outcome, err := s.pipeline.Ask(r.Context(), sess, question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Outcome: string(outcome.Kind),
		Answer:  outcome.Answer,
		Sources: sourcesToItems(outcome.Sources),
	})
}

// GetHistory handles GET /v1/sessions/{id}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	turns := sess.History()
	if turns == nil {
		turns = []pipelineuc.Turn{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Turns: turns})
}

// ListRegions handles GET /v1/refdata/regions.
func (s *Server) ListRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"regions": s.refdata.Regions()})
}

// ListCategories handles GET /v1/refdata/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.refdata.Categories()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrStoreUnavailable,
		domain.ErrEmbeddingUnavailable,
		domain.ErrRankingFailed,
		domain.ErrGenerationFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
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
