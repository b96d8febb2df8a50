package server

import (
	"context"

	"github.com/hyperjump/deepsearch/internal/config"
	"github.com/hyperjump/deepsearch/internal/ingest"
	"github.com/hyperjump/deepsearch/internal/models"
	"github.com/hyperjump/deepsearch/internal/storage"
	"github.com/hyperjump/deepsearch/internal/vector"
)

// CollectStatus gathers the counts and settings reported by GET /api/v1/status.
// The CLI uses it for direct-mode status as well. Disk usage is left at zero
// when it cannot be measured.
func CollectStatus(
	ctx context.Context,
	store storage.Storage,
	coordinator *ingest.Coordinator,
	index vector.VectorIndex,
	cfg *config.Config,
) (*models.StatusResponse, error) {
	docCount, err := store.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	orphans, err := coordinator.Orphans(ctx)
	if err != nil {
		return nil, err
	}
	status := &models.StatusResponse{
		Documents:         docCount,
		IndexedVectors:    index.Size(),
		Orphans:           len(orphans),
		Dimensions:        index.Dimensions(),
		DatabasePath:      cfg.Storage.DatabasePath,
		IndexPath:         cfg.Storage.IndexPath,
		EmbeddingProvider: cfg.Embedding.Provider,
		EmbeddingModel:    cfg.Embedding.Model,
		WatchDirectories:  cfg.Watch.Directories,
	}
	if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.IndexPath); err == nil {
		status.DiskUsageBytes = diskBytes
	}
	return status, nil
}
