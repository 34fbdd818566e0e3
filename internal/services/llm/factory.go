package llm

import (
	"fmt"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// NewLLMServices creates the chat and embedding services for the configured
// provider. Embeddings always come from Gemini because Anthropic has no
// embedding endpoint; when Gemini is also the chat provider the same service
// instance serves both roles.
func NewLLMServices(cfg *common.Config, logger arbor.ILogger) (chat interfaces.LLMService, embedder interfaces.LLMService, err error) {
	logger.Info().Str("provider", string(cfg.LLM.Provider)).Msg("Initializing LLM services")

	gemini, err := NewGeminiService(&cfg.Gemini, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini service: %w", err)
	}

	switch cfg.LLM.Provider {
	case common.LLMProviderGemini:
		return gemini, gemini, nil

	case common.LLMProviderClaude:
		claude, err := NewClaudeService(&cfg.Claude, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Claude service: %w", err)
		}
		return claude, gemini, nil

	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider '%s': must be 'gemini' or 'claude'", cfg.LLM.Provider)
	}
}
