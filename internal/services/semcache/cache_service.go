package semcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
)

// Service implements the SemanticCache interface with a two-hop layout:
// question embeddings live in the vector index with a pointer key in their
// metadata, and the serialized answer bundle lives in the blob store under
// that key. Cache entries are scoped to a user so one user's answers are
// never served to another.
type Service struct {
	embeddings interfaces.EmbeddingService
	vectors    interfaces.VectorIndex
	blobs      interfaces.BlobStore
	threshold  float64
	logger     arbor.ILogger
}

var _ interfaces.SemanticCache = (*Service)(nil)

// NewService creates a new semantic cache service
func NewService(embeddings interfaces.EmbeddingService, vectors interfaces.VectorIndex, blobs interfaces.BlobStore, threshold float64, logger arbor.ILogger) *Service {
	return &Service{
		embeddings: embeddings,
		vectors:    vectors,
		blobs:      blobs,
		threshold:  threshold,
		logger:     logger,
	}
}

// Lookup returns a previously stored bundle whose question embedding is
// within the similarity threshold. Any failure along the path is reported as
// a miss; the cache never blocks an answer.
func (s *Service) Lookup(ctx context.Context, query, userID string) (*models.AnswerBundle, bool) {
	embedding, err := s.embeddings.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cache lookup embedding failed, treating as miss")
		return nil, false
	}

	filter := &interfaces.VectorFilter{UserID: userID}
	matches, err := s.vectors.Query(ctx, interfaces.NamespaceAnswerCache, embedding, 1, filter)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cache vector query failed, treating as miss")
		return nil, false
	}

	if len(matches) == 0 {
		return nil, false
	}

	top := matches[0]
	if top.Score < s.threshold {
		s.logger.Debug().
			Float64("score", top.Score).
			Float64("threshold", s.threshold).
			Msg("Cache near-miss below similarity threshold")
		return nil, false
	}

	data, err := s.blobs.Get(ctx, top.Metadata.PointerKey)
	if err != nil {
		// Dangling pointer, likely a janitor race. Treat as a miss.
		s.logger.Warn().
			Err(err).
			Str("pointer_key", top.Metadata.PointerKey).
			Msg("Cache blob fetch failed, treating as miss")
		return nil, false
	}

	var bundle models.AnswerBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		s.logger.Warn().Err(err).Str("pointer_key", top.Metadata.PointerKey).Msg("Cache blob unmarshal failed, treating as miss")
		return nil, false
	}

	s.logger.Debug().
		Float64("score", top.Score).
		Str("cached_query", top.Metadata.Query).
		Msg("Semantic cache hit")

	return &bundle, true
}

// Store persists the bundle under a freshly generated key. Writes are
// append-only: near-duplicate questions each get their own entry and lookup
// resolves between them by similarity.
func (s *Service) Store(ctx context.Context, query string, bundle *models.AnswerBundle, userID string) {
	if bundle == nil {
		return
	}

	embedding, err := s.embeddings.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cache store embedding failed, skipping write")
		return
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cache bundle marshal failed, skipping write")
		return
	}

	key := common.NewCacheKey()
	if err := s.blobs.Set(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Str("pointer_key", key).Msg("Cache blob write failed, skipping write")
		return
	}

	metadata := interfaces.VectorMetadata{
		Query:      query,
		PointerKey: key,
		UserID:     userID,
		CreatedAt:  time.Now(),
	}
	if err := s.vectors.Upsert(ctx, interfaces.NamespaceAnswerCache, key, embedding, metadata); err != nil {
		// Orphaned blob; the janitor has no pointer to it, so clean up now.
		s.logger.Warn().Err(err).Str("pointer_key", key).Msg("Cache vector write failed, removing blob")
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("pointer_key", key).Msg("Failed to remove orphaned cache blob")
		}
		return
	}

	s.logger.Debug().Str("pointer_key", key).Msg("Answer cached")
}
