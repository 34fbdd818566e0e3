package interfaces

import (
	"context"

	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
)

// AnswerEngine is the conversational retrieval-answering pipeline exposed to
// the API layer. Answer always returns a structured bundle; recoverable
// failures are resolved inside the engine and fatal ones surface as an error
// bundle, never as a raised fault.
type AnswerEngine interface {
	Answer(ctx context.Context, question models.Question) *models.AnswerBundle
}

// QueryClassifier turns raw question text into a structured analysis.
// Classify never fails: provider or parse errors yield the safe
// irrelevant/zero-confidence default.
type QueryClassifier interface {
	Classify(ctx context.Context, question string) *models.QueryAnalysis
}

// SemanticCache caches answer bundles keyed by question-embedding
// similarity. Both operations are best-effort; failures are logged by the
// implementation and reported as a miss or a no-op.
type SemanticCache interface {
	// Lookup returns a previously stored bundle whose question embedding is
	// within the similarity threshold, or ok=false on a miss.
	Lookup(ctx context.Context, query, userID string) (*models.AnswerBundle, bool)

	// Store persists the bundle under a freshly generated key
	Store(ctx context.Context, query string, bundle *models.AnswerBundle, userID string)
}

// HistoryService provides bounded chronological conversation history
type HistoryService interface {
	// GetHistory returns the most recent messageLimit turns in
	// chronological order
	GetHistory(ctx context.Context, conversationID string, messageLimit int) ([]models.ConversationTurn, error)

	// WindowByTokenBudget drops oldest turns until the estimated token cost
	// fits maxTokens, preserving chronological order
	WindowByTokenBudget(turns []models.ConversationTurn, maxTokens int) []models.ConversationTurn
}

// RetrievalService fans out to the retrieval sources
type RetrievalService interface {
	// ResumeChunks embeds the query and searches the resume namespace
	ResumeChunks(ctx context.Context, query, userID, resumeID string) ([]models.RetrievedChunk, error)

	// WebChunks searches the web and assigns descending synthetic scores
	WebChunks(ctx context.Context, query string) ([]models.RetrievedChunk, error)

	// JobChunks searches job postings and formats each into a text chunk
	JobChunks(ctx context.Context, query *models.JobQuery) ([]models.RetrievedChunk, error)
}
