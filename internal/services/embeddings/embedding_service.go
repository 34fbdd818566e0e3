package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Service implements EmbeddingService interface
type Service struct {
	llmService interfaces.LLMService
	modelName  string
	dimension  int
	logger     arbor.ILogger
}

// NewService creates a new embedding service
func NewService(llmService interfaces.LLMService, modelName string, dimension int, logger arbor.ILogger) interfaces.EmbeddingService {
	return &Service{
		llmService: llmService,
		modelName:  modelName,
		dimension:  dimension,
		logger:     logger,
	}
}

// GenerateEmbedding creates a vector embedding for text
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	start := time.Now()
	embedding, err := s.llmService.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(embedding) == 0 {
		return nil, fmt.Errorf("LLM service returned empty embedding")
	}

	s.logger.Debug().
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return embedding, nil
}

// GenerateQueryEmbedding generates an embedding for a search query.
// Queries and stored text share one embedding space, so no prefix handling
// is applied.
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

// ModelName returns the embedding model name
func (s *Service) ModelName() string {
	return s.modelName
}

// Dimension returns the embedding dimension
func (s *Service) Dimension() int {
	return s.dimension
}

// IsAvailable checks if the embedding service is available
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.llmService == nil {
		return false
	}

	if err := s.llmService.HealthCheck(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("LLM service not available")
		return false
	}

	return true
}
