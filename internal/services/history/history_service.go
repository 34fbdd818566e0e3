package history

import (
	"context"
	"fmt"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
)

// Service implements the HistoryService interface. History is bounded twice
// before it reaches a prompt: a hard message count at the storage query, then
// a token budget that drops the oldest survivors first.
type Service struct {
	conversations interfaces.ConversationStorage
	logger        arbor.ILogger
}

var _ interfaces.HistoryService = (*Service)(nil)

// NewService creates a new history service
func NewService(conversations interfaces.ConversationStorage, logger arbor.ILogger) *Service {
	return &Service{
		conversations: conversations,
		logger:        logger,
	}
}

// GetHistory returns the most recent messageLimit turns in chronological
// order
func (s *Service) GetHistory(ctx context.Context, conversationID string, messageLimit int) ([]models.ConversationTurn, error) {
	if conversationID == "" {
		return nil, nil
	}

	turns, err := s.conversations.ListRecentTurns(ctx, conversationID, messageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	// Storage returns newest-first; prompts need chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

// WindowByTokenBudget drops oldest turns until the estimated token cost fits
// maxTokens. The newest turn is always a candidate first, so a single
// oversized turn yields an empty window rather than a blown budget.
func (s *Service) WindowByTokenBudget(turns []models.ConversationTurn, maxTokens int) []models.ConversationTurn {
	if maxTokens <= 0 || len(turns) == 0 {
		return nil
	}

	total := 0
	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		cost := turns[i].EstimatedTokens()
		if total+cost > maxTokens {
			break
		}
		total += cost
		start = i
	}

	if start == len(turns) {
		return nil
	}

	windowed := turns[start:]
	if len(windowed) < len(turns) {
		s.logger.Debug().
			Int("kept", len(windowed)).
			Int("dropped", len(turns)-len(windowed)).
			Int("tokens", total).
			Msg("History window trimmed to token budget")
	}
	return windowed
}
