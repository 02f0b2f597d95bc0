// Package server exposes the feature engine over HTTP, for spot-checking
// pages and inspecting run history without regenerating a dataset.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/xssvec/xssvec/internal/catalog"
	"github.com/xssvec/xssvec/internal/extract"
	"github.com/xssvec/xssvec/internal/store"
)

// ExtractRequest is the JSON request for the /extract endpoint.
type ExtractRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// SchemaResponse is the JSON response for the /schema endpoint.
type SchemaResponse struct {
	Columns []string `json:"columns"`
}

// ErrorResponse is the JSON body of every error status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves feature extraction over HTTP.
type Server struct {
	extractor *extract.Extractor
	cats      *catalog.Catalog
	store     *store.Store // nil disables /stats
	logger    *slog.Logger
	server    *http.Server
}

// NewServer creates a server around the given extractor. st may be nil.
func NewServer(cats *catalog.Catalog, st *store.Store, logger *slog.Logger) *Server {
	return &Server{
		extractor: extract.NewExtractor(cats, logger),
		cats:      cats,
		store:     st,
		logger:    logger,
	}
}

// Handler returns the route table, exposed separately so tests can drive it
// without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", s.handleExtract)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start runs the HTTP server on addr until it fails or is shut down.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleExtract handles the /extract POST endpoint: one page's HTML and URL
// in, the full feature record out.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	start := time.Now()
	defer func() {
		s.logger.Info("extract request processed",
			"duration", time.Since(start), "path", r.URL.Path)
	}()

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid JSON request")
		return
	}

	feats, err := s.extractor.PageFromHTML(r.Context(), req.HTML, req.URL)
	if err != nil {
		s.logger.Error("extraction failed", "url", req.URL, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Extraction failed")
		return
	}

	s.sendJSON(w, http.StatusOK, feats)
}

// handleSchema returns the canonical column order of the configured catalog.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, SchemaResponse{Columns: s.cats.Schema()})
}

// handleStats summarizes stored runs.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.sendError(w, http.StatusServiceUnavailable, "No store configured")
		return
	}
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		s.logger.Error("reading store stats", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Stats unavailable")
		return
	}
	s.sendJSON(w, http.StatusOK, stats)
}

// handleHealth handles the /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) sendError(w http.ResponseWriter, statusCode int, message string) {
	s.sendJSON(w, statusCode, ErrorResponse{Error: message})
}
