// Package embeddings defines the embedding interface the recall engine
// uses to vectorize fact text.
package embeddings

import "context"

// Embedder converts text into vector embeddings.
type Embedder interface {
	// Embed returns the embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
