package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joescharf/devteam/internal/models"
	"github.com/joescharf/devteam/internal/pipeline"
	"github.com/joescharf/devteam/internal/store"
)

// Launcher starts a delivery pipeline run. Implemented by pipeline.Pipeline;
// an interface so tests can script outcomes.
type Launcher interface {
	Run(ctx context.Context, in pipeline.PipelineInput) (*pipeline.PipelineResult, error)
}

// Server provides the REST API handlers.
type Server struct {
	store    store.Store
	launcher Launcher
	log      *slog.Logger
}

// NewServer creates a new API server. The launcher may be nil when the
// server runs read-only (no API key configured); POST /runs then returns
// 503.
func NewServer(s store.Store, launcher Launcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: s, launcher: launcher, log: logger}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/runs", s.listRuns)
	mux.HandleFunc("POST /api/v1/runs", s.createRun)
	mux.HandleFunc("GET /api/v1/runs/{id}", s.getRun)
	mux.HandleFunc("GET /api/v1/runs/{id}/reviews", s.listRunReviews)
	mux.HandleFunc("GET /api/v1/runs/{id}/documents", s.listRunDocuments)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Runs ---

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunListFilter{
		Status: models.RunStatus(r.URL.Query().Get("status")),
		Scope:  models.Scope(r.URL.Query().Get("scope")),
	}
	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*models.PipelineRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

type createRunRequest struct {
	ProductName              string `json:"product_name"`
	ProductContext           string `json:"product_context"`
	TargetAudience           string `json:"target_audience"`
	Scope                    string `json:"scope"`
	RepoOwner                string `json:"repo_owner"`
	RepoName                 string `json:"repo_name"`
	EnableResearch           bool   `json:"enable_research"`
	EnableCompetitorAnalysis bool   `json:"enable_competitor_analysis"`
}

// createRun launches a pipeline in the background and returns 202 with the
// launch parameters echoed. Progress is observable through GET /runs.
func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	if s.launcher == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not configured: missing API key")
		return
	}

	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "product_name is required")
		return
	}

	in := pipeline.PipelineInput{
		ProductName:              req.ProductName,
		ProductContext:           req.ProductContext,
		TargetAudience:           req.TargetAudience,
		Scope:                    models.Scope(req.Scope),
		RepoOwner:                req.RepoOwner,
		RepoName:                 req.RepoName,
		EnableResearch:           req.EnableResearch,
		EnableCompetitorAnalysis: req.EnableCompetitorAnalysis,
	}

	// The run outlives the HTTP request; it gets its own context.
	go func() {
		if _, err := s.launcher.Run(context.Background(), in); err != nil {
			s.log.Error("pipeline run failed", "product", in.ProductName, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":       "accepted",
		"product_name": req.ProductName,
	})
}

func (s *Server) listRunReviews(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.GetRun(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	reviews, err := s.store.ListReviews(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reviews == nil {
		reviews = []*models.ReviewRecord{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) listRunDocuments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.GetRun(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	docs, err := s.store.ListDocuments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.StageDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}
