// Package httpapi is the thin HTTP boundary over the analysis pipeline.
// It owns request ids and timestamps; the pipeline itself persists nothing.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"truthsignal/internal/domain"
)

// Analyzer is the pipeline surface the boundary consumes.
type Analyzer interface {
	Analyze(ctx context.Context, html string) domain.TrustVerdict
}

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	pipeline Analyzer
	validate *validator.Validate
	logger   *slog.Logger
}

// New wires the pipeline into HTTP handlers.
func New(pipeline Analyzer, log *slog.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   log,
	}
}

// Router builds the chi router with permissive CORS so browser extensions
// can call the API directly.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	return r
}

type analyzeRequest struct {
	URL         string `json:"url" validate:"required"`
	HTMLContent string `json:"html_content" validate:"required"`
}

type analyzeResponse struct {
	TrustScore        string   `json:"trust_score"`
	Reasons           []string `json:"reasons"`
	Summary           string   `json:"summary"`
	ScanID            string   `json:"scan_id"`
	AnalysisTimestamp string   `json:"analysis_timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "truthsignal API is running"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url and html_content are required"})
		return
	}

	scanID := uuid.NewString()
	s.info("analyze request", "scan_id", scanID, "url", req.URL, "html_bytes", len(req.HTMLContent))

	verdict := s.pipeline.Analyze(r.Context(), req.HTMLContent)

	writeJSON(w, http.StatusOK, analyzeResponse{
		TrustScore:        string(verdict.Score),
		Reasons:           verdict.Reasons,
		Summary:           verdict.Summary,
		ScanID:            scanID,
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
