package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// ConversationStorage implements the ConversationStorage interface for Badger
type ConversationStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewConversationStorage creates a new ConversationStorage instance
func NewConversationStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ConversationStorage {
	return &ConversationStorage{
		db:     db,
		logger: logger,
	}
}

// CreateConversation creates a conversation with the default title
func (s *ConversationStorage) CreateConversation(ctx context.Context, userID, resumeID string) (*models.Conversation, error) {
	conversation := &models.Conversation{
		ID:        common.NewConversationID(),
		UserID:    userID,
		ResumeID:  resumeID,
		Title:     models.DefaultConversationTitle,
		CreatedAt: time.Now(),
	}

	if err := s.db.Store().Insert(conversation.ID, conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.logger.Debug().Str("conversation_id", conversation.ID).Str("user_id", userID).Msg("Conversation created")
	return conversation, nil
}

// GetConversation returns a conversation by ID
func (s *ConversationStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.Store().Get(id, &conversation)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

// UpdateTitle sets the conversation title
func (s *ConversationStorage) UpdateTitle(ctx context.Context, id, title string) error {
	var conversation models.Conversation
	err := s.db.Store().Get(id, &conversation)
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get conversation: %w", err)
	}

	conversation.Title = title
	if err := s.db.Store().Update(id, &conversation); err != nil {
		return fmt.Errorf("failed to update conversation title: %w", err)
	}
	return nil
}

// AppendTurn persists a turn and returns its generated ID
func (s *ConversationStorage) AppendTurn(ctx context.Context, turn *models.ConversationTurn) (string, error) {
	if turn.ConversationID == "" {
		return "", fmt.Errorf("conversation ID is required")
	}
	if turn.ID == "" {
		turn.ID = common.NewMessageID()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(turn.ID, turn); err != nil {
		return "", fmt.Errorf("failed to append turn: %w", err)
	}
	return turn.ID, nil
}

// ListRecentTurns returns up to limit turns in descending recency order
func (s *ConversationStorage) ListRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	query := badgerhold.Where("ConversationID").Eq(conversationID).Index("ConversationID").
		SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var turns []models.ConversationTurn
	if err := s.db.Store().Find(&turns, query); err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	return turns, nil
}
