package retrieval

import (
	"context"
	"fmt"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
)

// Service implements the RetrievalService interface. Resume chunks carry
// real cosine similarity scores from the vector index; web and job chunks
// come back in provider rank order, so they get synthetic descending scores
// that keep them comparable in a fused candidate list.
type Service struct {
	embeddings interfaces.EmbeddingService
	vectors    interfaces.VectorIndex
	webSearch  interfaces.WebSearchProvider
	jobSearch  interfaces.JobSearchProvider
	topK       int
	logger     arbor.ILogger
}

var _ interfaces.RetrievalService = (*Service)(nil)

// syntheticScoreStep is the per-rank decay applied to provider-ordered
// results: rank i scores 1 - i*0.05
const syntheticScoreStep = 0.05

// NewService creates a new retrieval service. The web and job providers may
// be nil when their services failed to initialize; the matching source then
// returns empty results instead of failing the pipeline.
func NewService(embeddings interfaces.EmbeddingService, vectors interfaces.VectorIndex, webSearch interfaces.WebSearchProvider, jobSearch interfaces.JobSearchProvider, topK int, logger arbor.ILogger) *Service {
	return &Service{
		embeddings: embeddings,
		vectors:    vectors,
		webSearch:  webSearch,
		jobSearch:  jobSearch,
		topK:       topK,
		logger:     logger,
	}
}

// ResumeChunks embeds the query and searches the resume namespace of the
// vector index, scoped to the requesting user
func (s *Service) ResumeChunks(ctx context.Context, query, userID, resumeID string) ([]models.RetrievedChunk, error) {
	embedding, err := s.embeddings.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed retrieval query: %w", err)
	}

	filter := &interfaces.VectorFilter{
		UserID:   userID,
		ResumeID: resumeID,
	}
	matches, err := s.vectors.Query(ctx, interfaces.NamespaceResumeChunks, embedding, s.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query resume chunks: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(matches))
	for _, match := range matches {
		chunks = append(chunks, models.RetrievedChunk{
			ID:         match.ID,
			Score:      match.Score,
			Content:    match.Metadata.Content,
			DocumentID: match.Metadata.DocumentID,
			ChunkIndex: match.Metadata.ChunkIndex,
			Source:     models.SourceRAG,
		})
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("chunk_count", len(chunks)).
		Msg("Resume retrieval completed")

	return chunks, nil
}

// WebChunks searches the web and assigns descending synthetic scores
func (s *Service) WebChunks(ctx context.Context, query string) ([]models.RetrievedChunk, error) {
	if s.webSearch == nil {
		return nil, nil
	}

	results, err := s.webSearch.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("web retrieval failed: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(results))
	for i, result := range results {
		content := result.Snippet
		if content == "" {
			content = result.Title
		}
		if result.URL != "" {
			content = fmt.Sprintf("%s\nSource: %s", content, result.URL)
		}

		chunks = append(chunks, models.RetrievedChunk{
			ID:      fmt.Sprintf("web-%d", i),
			Score:   syntheticScore(i),
			Content: content,
			Source:  models.SourceWeb,
		})
	}

	s.logger.Debug().Int("chunk_count", len(chunks)).Msg("Web retrieval completed")

	return chunks, nil
}

// JobChunks searches job postings and formats each into a text chunk
func (s *Service) JobChunks(ctx context.Context, query *models.JobQuery) ([]models.RetrievedChunk, error) {
	if s.jobSearch == nil {
		return nil, nil
	}

	postings, err := s.jobSearch.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("job retrieval failed: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(postings))
	for i, posting := range postings {
		id := posting.ID
		if id == "" {
			id = fmt.Sprintf("job-%d", i)
		}
		chunks = append(chunks, models.RetrievedChunk{
			ID:      id,
			Score:   syntheticScore(i),
			Content: posting.FormatChunkText(),
			Source:  models.SourceJob,
		})
	}

	s.logger.Debug().Int("chunk_count", len(chunks)).Msg("Job retrieval completed")

	return chunks, nil
}

// syntheticScore maps a provider rank to a score comparable with cosine
// similarities. Scores never go below zero.
func syntheticScore(rank int) float64 {
	score := 1.0 - float64(rank)*syntheticScoreStep
	if score < 0 {
		return 0
	}
	return score
}
