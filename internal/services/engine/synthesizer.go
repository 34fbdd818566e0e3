package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
)

// synthesizer assembles prompts and invokes the completion provider for the
// cascade strategies. History rides along as a structured message sequence
// ahead of the final user turn, never as concatenated text.
type synthesizer struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// refusalPhrases mark a synthesized answer as a refusal even when the model
// produced fluent text. An answer echoing one of these is rejected so the
// cascade can try the next strategy.
var refusalPhrases = []string{
	"don't have enough",
	"no matching jobs",
}

const minAcceptedAnswerLength = 10

// invoke sends the system prompt, prior turns, and the question to the
// completion provider and returns the plain-text answer
func (s *synthesizer) invoke(ctx context.Context, systemPrompt string, history []models.ConversationTurn, question string) (string, error) {
	messages := make([]interfaces.Message, 0, len(history)+2)
	messages = append(messages, interfaces.Message{Role: "system", Content: systemPrompt})

	for _, turn := range history {
		role := string(turn.Role)
		if role != "user" && role != "assistant" {
			continue
		}
		messages = append(messages, interfaces.Message{Role: role, Content: turn.Content})
	}

	messages = append(messages, interfaces.Message{Role: "user", Content: question})

	return s.llm.Chat(ctx, messages)
}

// accepted reports whether a synthesized answer can be returned to the user.
// Too-short answers and refusals fall through to the next cascade strategy.
func accepted(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) <= minAcceptedAnswerLength {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

// formatChunks renders chunks as a numbered context block
func formatChunks(chunks []models.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, strings.TrimSpace(chunk.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}
