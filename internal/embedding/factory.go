package embedding

import (
	"fmt"

	"github.com/hyperjump/deepsearch/internal/config"
	"go.uber.org/zap"
)

// New creates the embedder selected by cfg.Provider. A provider that cannot
// be constructed is an error; there is no silent fallback to the mock.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		e, err := NewOpenAIEmbedder(OpenAIConfig{
			BaseURL:           cfg.BaseURL,
			APIKey:            cfg.APIKey,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Using OpenAI embedder", zap.String("model", cfg.Model), zap.String("base_url", e.baseURL))
		return e, nil
	case config.ProviderONNX:
		e, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("onnx embedder: %w", err)
		}
		logger.Info("Using ONNX embedder", zap.String("model_path", cfg.ModelPath))
		return e, nil
	case config.ProviderMock:
		logger.Warn("Using mock embedder; search results are not semantic")
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
