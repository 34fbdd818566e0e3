package models

import "time"

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DefaultConversationTitle is the placeholder title a new conversation
// carries until the first user message replaces it.
const DefaultConversationTitle = "New conversation"

// Conversation groups the turns of one chat session
type Conversation struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id" badgerholdIndex:"UserID"`
	ResumeID  string    `json:"resume_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationTurn is one append-only message within a conversation.
// Turns are never mutated after persistence.
type ConversationTurn struct {
	ID             string           `json:"id" badgerhold:"key"`
	ConversationID string           `json:"conversation_id" badgerholdIndex:"ConversationID"`
	Role           Role             `json:"role"`
	Content        string           `json:"content"`
	Source         SourceTag        `json:"source"`
	CitedChunks    []RetrievedChunk `json:"cited_chunks,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// EstimatedTokens returns a cheap deterministic token-cost approximation
// for history windowing: character count divided by four, rounded up.
func (t *ConversationTurn) EstimatedTokens() int {
	return (len(t.Content) + 3) / 4
}
