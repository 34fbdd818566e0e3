package interfaces

import (
	"context"
)

// EmbeddingService provides vector embedding generation for queries and
// document text.
type EmbeddingService interface {
	// GenerateEmbedding creates a vector embedding for text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateQueryEmbedding generates an embedding for a search query
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// ModelName returns the embedding model name
	ModelName() string

	// Dimension returns the embedding dimension
	Dimension() int

	// IsAvailable checks if the embedding service is available
	IsAvailable(ctx context.Context) bool
}
