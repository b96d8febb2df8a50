package embedding

import (
	"testing"

	"github.com/hyperjump/deepsearch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Mock(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: config.ProviderMock, Dimensions: 16}, nil)
	require.NoError(t, err)
	defer e.Close()
	assert.IsType(t, &MockEmbedder{}, e)
	assert.Equal(t, 16, e.Dimensions())
}

func TestNew_OpenAI(t *testing.T) {
	e, err := New(config.EmbeddingConfig{
		Provider:   config.ProviderOpenAI,
		Model:      "text-embedding-3-small",
		APIKey:     "sk-test",
		Dimensions: 1536,
	}, nil)
	require.NoError(t, err)
	defer e.Close()
	assert.IsType(t, &OpenAIEmbedder{}, e)
}

func TestNew_OpenAIWithoutKey(t *testing.T) {
	_, err := New(config.EmbeddingConfig{Provider: config.ProviderOpenAI, Model: "m", Dimensions: 4}, nil)
	assert.Error(t, err)
}

func TestNew_ONNXMissingModel(t *testing.T) {
	_, err := New(config.EmbeddingConfig{
		Provider:   config.ProviderONNX,
		ModelPath:  "/nonexistent/model.onnx",
		Dimensions: 4,
		MaxTokens:  8,
	}, nil)
	assert.Error(t, err)
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(config.EmbeddingConfig{Provider: "cohere", Dimensions: 4}, nil)
	assert.Error(t, err)
}
