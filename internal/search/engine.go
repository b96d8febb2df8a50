// Package search answers semantic queries: the query text is embedded, the
// vector index ranks documents, and the store supplies their content.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/deepsearch/internal/config"
	"github.com/hyperjump/deepsearch/internal/metrics"
	"github.com/hyperjump/deepsearch/internal/models"
	"github.com/hyperjump/deepsearch/internal/storage"
	"github.com/hyperjump/deepsearch/internal/vector"
	"go.uber.org/zap"
)

// QueryEmbedder turns query text into a vector of the index dimension.
type QueryEmbedder interface {
	QueryVector(ctx context.Context, text string) ([]float32, error)
}

// Engine runs semantic search.
type Engine struct {
	embedder    QueryEmbedder
	vectorIndex vector.VectorIndex
	storage     storage.Storage
	config      config.SearchConfig
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records search latency.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(
	embedder QueryEmbedder,
	vectorIndex vector.VectorIndex,
	storage storage.Storage,
	cfg config.SearchConfig,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		embedder:    embedder,
		vectorIndex: vectorIndex,
		storage:     storage,
		config:      cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Search validates query, ranks documents by cosine similarity and returns
// them in index order. Results the store cannot resolve are omitted, so Total
// may be less than TopK.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (resp *models.SearchResponse, err error) {
	startTime := time.Now()
	defer func() { e.metrics.ObserveSearch(time.Since(startTime), err) }()

	if err := query.Validate(e.config.DefaultTopK, e.config.MaxTopK); err != nil {
		return nil, err
	}

	queryVec, err := e.embedder.QueryVector(ctx, query.Query)
	if err != nil {
		return nil, err
	}
	hits, err := e.vectorIndex.Search(ctx, queryVec, query.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.DocumentID
	}
	docs, err := e.storage.FetchDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	response := &models.SearchResponse{
		Results: make([]*models.SearchResult, 0, len(hits)),
		Query:   query.Query,
	}
	for _, h := range hits {
		doc, ok := docs[h.DocumentID]
		if !ok {
			e.logger.Warn("Indexed document missing from store", zap.Int64("document_id", h.DocumentID))
			continue
		}
		response.Results = append(response.Results, models.ResultFromDocument(doc, float64(h.Score)))
	}
	response.Total = len(response.Results)
	response.QueryTime = time.Since(startTime).Milliseconds()

	e.logger.Debug("Search completed",
		zap.String("query", query.Query),
		zap.Int("top_k", query.TopK),
		zap.Int("results", response.Total),
		zap.Int64("query_time_ms", response.QueryTime))
	return response, nil
}

// GetDocument returns a stored document rendered as a result with score 1.0.
// It returns storage.ErrNotFound when the ID does not exist.
func (e *Engine) GetDocument(ctx context.Context, id int64) (*models.SearchResult, error) {
	doc, err := e.storage.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.ResultFromDocument(doc, 1.0), nil
}
