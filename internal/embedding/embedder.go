// Package embedding provides the text embedding providers used to encode intent patterns
// and user queries, plus caching decorators around them.
package embedding

import "context"

// Embedder produces vector embeddings for text. Outputs for identical text must be
// stable for the lifetime of the embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
