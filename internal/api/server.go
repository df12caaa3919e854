// Package api exposes the design pipeline over HTTP.
//
// The service is a thin adapter: request decoding, error mapping and
// persistence live here; all design semantics stay in pkg/pipeline. Routes:
//
//	POST /api/v1/designs      run the pipeline, persist and return the snapshot
//	GET  /api/v1/designs      list stored run IDs
//	GET  /api/v1/designs/{id} fetch a stored snapshot
//	GET  /healthz             liveness probe
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/layout"
	"github.com/mvollan/stirlingforge/pkg/pipeline"
	"github.com/mvollan/stirlingforge/pkg/store"
)

// Server wires the pipeline runner and snapshot store into an HTTP handler.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger

	// catalogDir is applied to every run; API callers cannot point the
	// service at arbitrary paths.
	catalogDir string
}

// NewServer creates a Server. The catalog directory is fixed at construction.
func NewServer(runner *pipeline.Runner, st store.Store, catalogDir string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger, catalogDir: catalogDir}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1/designs", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
	})
	return r
}

// createRequest is the POST body: the serializable subset of pipeline
// options a caller may set.
type createRequest struct {
	Overrides map[string]float64 `json:"overrides,omitempty"`
	Policy    string             `json:"policy,omitempty"`
	Refresh   bool               `json:"refresh,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidOptions, err, "decode request"))
		return
	}

	opts := pipeline.Options{
		Overrides:  req.Overrides,
		Refresh:    req.Refresh,
		CatalogDir: s.catalogDir,
		Logger:     s.logger,
	}
	if req.Policy != "" {
		opts.Policy = layout.Policy(req.Policy)
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.Set(r.Context(), result.Snapshot); err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("design created",
		"run_id", result.Snapshot.RunID,
		"cached_derived", result.CacheInfo.DerivedHit,
		"cached_layout", result.CacheInfo.LayoutHit)
	writeSnapshot(w, http.StatusCreated, result.Snapshot)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSnapshot(w, http.StatusOK, snap)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_ids": ids})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
