// Package ingest ties the embedding provider, the document store and the
// vector index together. Documents are embedded first, stored second and
// indexed last, so the index never references a document the store lacks.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/deepsearch/internal/embedding"
	"github.com/hyperjump/deepsearch/internal/extract"
	"github.com/hyperjump/deepsearch/internal/metrics"
	"github.com/hyperjump/deepsearch/internal/storage"
	"github.com/hyperjump/deepsearch/internal/vector"
	"go.uber.org/zap"
)

// Coordinator ingests documents into the store and the vector index.
type Coordinator struct {
	store     storage.Storage
	embedder  embedding.Embedder
	index     vector.VectorIndex
	extractor *extract.Extractor
	logger    *zap.Logger
	metrics   *metrics.Metrics

	// writeMu covers the window between a store insert and the matching index
	// add, so Orphans never sees a document whose vector is still on its way.
	// Embedding happens outside it.
	writeMu sync.Mutex
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. Partial ingests are logged at error level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMetrics records ingest outcomes and the index size.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithExtractor sets the extractor used by IngestFile. Without one, files are read as plain text.
func WithExtractor(e *extract.Extractor) Option {
	return func(c *Coordinator) { c.extractor = e }
}

// NewCoordinator creates a coordinator over the given collaborators.
func NewCoordinator(store storage.Storage, embedder embedding.Embedder, index vector.VectorIndex, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		embedder: embedder,
		index:    index,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Ingest embeds content, stores it with metadata and indexes the vector.
// It returns the new document ID. If the index step fails after the store
// insert, the returned error is a *PartialIngestError and the ID is still returned.
func (c *Coordinator) Ingest(ctx context.Context, content string, metadata map[string]interface{}) (int64, error) {
	vec, err := c.embed(ctx, content)
	if err != nil {
		c.metrics.ObserveIngest(metrics.OutcomeEmbeddingError)
		return 0, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	id, err := c.store.InsertDocument(ctx, content, metadata)
	if err != nil {
		c.metrics.ObserveIngest(metrics.OutcomeStoreError)
		return 0, fmt.Errorf("%w: %w", ErrStore, err)
	}

	// The document is stored; a cancelled caller must not turn it into an orphan.
	if err := c.index.Add(context.WithoutCancel(ctx), [][]float32{vec}, []int64{id}); err != nil {
		c.metrics.ObserveIngest(metrics.OutcomeIndexError)
		c.logger.Error("Document stored but not indexed; run repair",
			zap.Int64("document_id", id), zap.Error(err))
		return id, &PartialIngestError{DocumentID: id, Err: err}
	}

	c.metrics.ObserveIngest(metrics.OutcomeSuccess)
	c.metrics.SetIndexSize(c.index.Size())
	c.logger.Debug("Document ingested", zap.Int64("document_id", id), zap.Int("content_length", len(content)))
	return id, nil
}

// QueryVector embeds query text for the search path.
func (c *Coordinator) QueryVector(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text)
}

func (c *Coordinator) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vec) != c.index.Dimensions() {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding,
			&vector.DimensionError{Expected: c.index.Dimensions(), Actual: len(vec)})
	}
	return vec, nil
}

// Orphans returns the IDs of stored documents that have no vector, in ascending order.
func (c *Coordinator) Orphans(ctx context.Context) ([]int64, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ids, err := c.store.ListDocumentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	indexed := make(map[int64]struct{}, c.index.Size())
	for _, id := range c.index.DocumentIDs() {
		indexed[id] = struct{}{}
	}
	orphans := make([]int64, 0)
	for _, id := range ids {
		if _, ok := indexed[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	return orphans, nil
}

// RepairReport summarizes a Repair run.
type RepairReport struct {
	Checked  int     `json:"checked"`
	Orphans  []int64 `json:"orphans"`
	Repaired int     `json:"repaired"`
	// Skipped counts orphans that were indexed by someone else while this
	// run was embedding them.
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Repair re-embeds every orphaned document from its stored content and adds
// it to the index. Documents are never deleted. Failures for individual
// documents are joined into the returned error; the report is always non-nil.
func (c *Coordinator) Repair(ctx context.Context) (*RepairReport, error) {
	report := &RepairReport{Orphans: []int64{}}
	total, err := c.store.CountDocuments(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrStore, err)
	}
	report.Checked = int(total)

	orphans, err := c.Orphans(ctx)
	if err != nil {
		return report, err
	}
	report.Orphans = orphans

	var errs []error
	for _, id := range orphans {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		added, err := c.repairOne(ctx, id)
		if err != nil {
			report.Failed++
			errs = append(errs, fmt.Errorf("document %d: %w", id, err))
			c.logger.Warn("Repair failed", zap.Int64("document_id", id), zap.Error(err))
			continue
		}
		if !added {
			report.Skipped++
			continue
		}
		report.Repaired++
	}

	c.metrics.ObserveRepair(report.Repaired, report.Failed)
	c.metrics.SetIndexSize(c.index.Size())
	c.logger.Info("Repair finished",
		zap.Int("checked", report.Checked),
		zap.Int("orphans", len(orphans)),
		zap.Int("repaired", report.Repaired),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, errors.Join(errs...)
}

// repairOne embeds document id and indexes it unless it gained a slot in the
// meantime. It reports whether a vector was added.
func (c *Coordinator) repairOne(ctx context.Context, id int64) (bool, error) {
	doc, err := c.store.GetDocument(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStore, err)
	}
	vec, err := c.embed(ctx, doc.Content)
	if err != nil {
		return false, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.indexed(id) {
		return false, nil
	}
	if err := c.index.Add(context.WithoutCancel(ctx), [][]float32{vec}, []int64{id}); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Coordinator) indexed(id int64) bool {
	for _, existing := range c.index.DocumentIDs() {
		if existing == id {
			return true
		}
	}
	return false
}
