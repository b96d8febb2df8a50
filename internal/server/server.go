// Package server provides the HTTP API for deepsearch.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/deepsearch/internal/config"
	"github.com/hyperjump/deepsearch/internal/ingest"
	"github.com/hyperjump/deepsearch/internal/metrics"
	"github.com/hyperjump/deepsearch/internal/search"
	"github.com/hyperjump/deepsearch/internal/storage"
	"github.com/hyperjump/deepsearch/internal/vector"
	"go.uber.org/zap"
)

// RequestTimeout bounds every API call, ingest and search included.
const RequestTimeout = 60 * time.Second

const maxBodyBytes = 10 << 20

// Server is the HTTP server for the deepsearch API.
type Server struct {
	engine      *search.Engine
	coordinator *ingest.Coordinator
	storage     storage.Storage
	index       vector.VectorIndex
	config      *config.Config
	metrics     *metrics.Metrics
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies. m may be nil, in
// which case /metrics is not served.
func NewServer(
	engine *search.Engine,
	coordinator *ingest.Coordinator,
	storage storage.Storage,
	index vector.VectorIndex,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:      engine,
		coordinator: coordinator,
		storage:     storage,
		index:       index,
		config:      cfg,
		metrics:     m,
		logger:      logger,
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.config.Debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/ingest", s.handleIngest)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Get("/status", s.handleStatus)
		r.Get("/orphans", s.handleOrphans)
		r.Post("/repair", s.handleRepair)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops. It returns
// http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
