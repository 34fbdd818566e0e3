package llm

import (
	"testing"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are a career assistant."},
		{Role: "user", Content: "What skills do I have?"},
		{Role: "assistant", Content: "You have Go and SQL."},
		{Role: "user", Content: "What about Python?"},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	require.NoError(t, err)

	assert.Equal(t, "You are a career assistant.", systemText)
	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, genai.RoleUser, contents[2].Role)
	assert.Equal(t, "What about Python?", contents[2].Parts[0].Text)
}

func TestConvertMessagesToGeminiRequiresUserMessage(t *testing.T) {
	_, _, err := convertMessagesToGemini([]interfaces.Message{
		{Role: "system", Content: "prompt"},
		{Role: "assistant", Content: "reply"},
	})
	assert.Error(t, err)

	_, _, err = convertMessagesToGemini(nil)
	assert.Error(t, err)
}

func TestConvertMessagesToGeminiKeepsFirstSystemMessage(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "first system prompt"},
		{Role: "system", Content: "second system prompt"},
		{Role: "user", Content: "question"},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	require.NoError(t, err)
	assert.Equal(t, "first system prompt", systemText)
	assert.Len(t, contents, 1)
}

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are a career assistant."},
		{Role: "user", Content: "What skills do I have?"},
		{Role: "assistant", Content: "You have Go and SQL."},
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	require.NoError(t, err)

	assert.Equal(t, "You are a career assistant.", systemText)
	require.Len(t, claudeMessages, 2)
	assert.Equal(t, "user", string(claudeMessages[0].Role))
	assert.Equal(t, "assistant", string(claudeMessages[1].Role))
}

func TestConvertMessagesToClaudeRequiresUserMessage(t *testing.T) {
	_, _, err := convertMessagesToClaude([]interfaces.Message{
		{Role: "assistant", Content: "reply"},
	})
	assert.Error(t, err)
}
