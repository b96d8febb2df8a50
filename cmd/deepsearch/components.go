package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/deepsearch/internal/config"
	"github.com/hyperjump/deepsearch/internal/embedding"
	"github.com/hyperjump/deepsearch/internal/extract"
	"github.com/hyperjump/deepsearch/internal/ingest"
	"github.com/hyperjump/deepsearch/internal/metrics"
	"github.com/hyperjump/deepsearch/internal/models"
	"github.com/hyperjump/deepsearch/internal/search"
	"github.com/hyperjump/deepsearch/internal/server"
	"github.com/hyperjump/deepsearch/internal/storage"
	"github.com/hyperjump/deepsearch/internal/vector"
)

// Components holds the wired service dependencies.
type Components struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Storage     *storage.SQLiteStorage
	Embedder    embedding.Embedder
	Index       *vector.FlatIndex
	Coordinator *ingest.Coordinator
	Engine      *search.Engine
}

// initializeComponents opens storage and the vector index and builds the
// embedder, coordinator and search engine. m may be nil.
func initializeComponents(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	index, err := vector.LoadOrCreate(cfg.Storage.IndexPath, cfg.Embedding.Dimensions)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load vector index: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		_ = index.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	coordinator := ingest.NewCoordinator(store, embedder, index,
		ingest.WithLogger(logger),
		ingest.WithMetrics(m),
		ingest.WithExtractor(extract.NewExtractor()),
	)
	engine := search.NewEngine(coordinator, index, store, cfg.Search,
		search.WithLogger(logger),
		search.WithMetrics(m),
	)
	m.SetIndexSize(index.Size())

	return &Components{
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
		Storage:     store,
		Embedder:    embedder,
		Index:       index,
		Coordinator: coordinator,
		Engine:      engine,
	}, nil
}

// Close releases the embedder, index and storage in that order.
func (c *Components) Close() error {
	return errors.Join(
		c.Embedder.Close(),
		c.Index.Close(),
		c.Storage.Close(),
	)
}

// Status reports the same fields as GET /api/v1/status.
func (c *Components) Status(ctx context.Context) (*models.StatusResponse, error) {
	return server.CollectStatus(ctx, c.Storage, c.Coordinator, c.Index, c.Config)
}
