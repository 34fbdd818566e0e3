package interfaces

import (
	"context"
	"errors"

	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
)

// ErrConversationNotFound is returned when a conversation ID does not exist
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStorage persists conversations and their append-only turns
type ConversationStorage interface {
	// CreateConversation creates a conversation with the default title
	CreateConversation(ctx context.Context, userID, resumeID string) (*models.Conversation, error)

	// GetConversation returns a conversation by ID, or ErrConversationNotFound
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)

	// UpdateTitle sets the conversation title. The engine calls this once,
	// when the title is still the default; turns themselves are immutable.
	UpdateTitle(ctx context.Context, id, title string) error

	// AppendTurn persists a turn and returns its generated ID
	AppendTurn(ctx context.Context, turn *models.ConversationTurn) (string, error)

	// ListRecentTurns returns up to limit turns in descending recency order
	ListRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error)
}
