package common

import (
	"github.com/google/uuid"
)

// NewConversationID generates a unique conversation ID
// Format: conv_<uuid>
func NewConversationID() string {
	return "conv_" + uuid.New().String()
}

// NewMessageID generates a unique conversation message ID
// Format: msg_<uuid>
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}

// NewCacheKey generates a fresh semantic-cache pointer key.
// Every cache write gets its own key; entries are never overwritten.
// Format: cache_<uuid>
func NewCacheKey() string {
	return "cache_" + uuid.New().String()
}
