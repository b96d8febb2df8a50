// Package embedding provides text embedding providers: an OpenAI-compatible
// HTTP API, local ONNX models, and a deterministic mock for tests.
package embedding

import "context"

// Embedder turns text into a vector of exactly Dimensions() floats. Embed
// must return an error rather than a vector of another length.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}
