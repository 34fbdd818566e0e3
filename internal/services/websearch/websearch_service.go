package websearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"
)

// Service implements the WebSearchProvider interface using the Gemini API
// with GoogleSearch grounding. Results come from the grounding chunks of the
// response in the order the model cited them; snippets are assembled from
// the grounding support segments that cite each source.
type Service struct {
	config *common.WebSearchConfig
	client *genai.Client
	logger arbor.ILogger
}

var _ interfaces.WebSearchProvider = (*Service)(nil)

const maxSnippetChars = 500

// NewService creates a new web search service
func NewService(geminiConfig *common.GeminiConfig, webConfig *common.WebSearchConfig, logger arbor.ILogger) (*Service, error) {
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for web search (set via GEMINI_API_KEY or gemini.api_key in config)")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Info().
		Str("model", webConfig.Model).
		Int("max_results", webConfig.MaxResults).
		Msg("Web search service initialized")

	return &Service{
		config: webConfig,
		client: client,
		logger: logger,
	}, nil
}

// Search executes a grounded search and returns ranked organic results
func (s *Service) Search(ctx context.Context, query string) ([]models.WebResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	searchTool := &genai.Tool{GoogleSearch: &genai.GoogleSearch{}}
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{searchTool},
	}

	prompt := fmt.Sprintf(`You are a career research assistant. Search the web to answer the following query.
Provide specific facts with sources.

Query: %s`, query)

	startTime := time.Now()
	s.logger.Debug().Str("query", query).Msg("Executing grounded web search")

	resp, err := s.client.Models.GenerateContent(
		ctx,
		s.config.Model,
		[]*genai.Content{
			genai.NewContentFromText(prompt, genai.RoleUser),
		},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}

	results := s.extractResults(resp)

	if len(results) > s.config.MaxResults && s.config.MaxResults > 0 {
		results = results[:s.config.MaxResults]
	}

	s.logger.Debug().
		Str("query", query).
		Int("result_count", len(results)).
		Dur("duration", time.Since(startTime)).
		Msg("Web search completed")

	return results, nil
}

// extractResults builds WebResults from the response grounding metadata
func (s *Service) extractResults(resp *genai.GenerateContentResponse) []models.WebResult {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}

	candidate := resp.Candidates[0]
	gm := candidate.GroundingMetadata
	if gm == nil || len(gm.GroundingChunks) == 0 {
		return nil
	}

	// Map cited text segments back to the source they support
	snippets := make(map[int]*strings.Builder)
	for _, support := range gm.GroundingSupports {
		if support.Segment == nil || support.Segment.Text == "" {
			continue
		}
		for _, idx := range support.GroundingChunkIndices {
			builder, ok := snippets[int(idx)]
			if !ok {
				builder = &strings.Builder{}
				snippets[int(idx)] = builder
			}
			if builder.Len() > 0 {
				builder.WriteString(" ")
			}
			builder.WriteString(support.Segment.Text)
		}
	}

	results := make([]models.WebResult, 0, len(gm.GroundingChunks))
	for i, chunk := range gm.GroundingChunks {
		if chunk.Web == nil {
			continue
		}

		snippet := ""
		if builder, ok := snippets[i]; ok {
			snippet = builder.String()
		}
		if len(snippet) > maxSnippetChars {
			snippet = snippet[:maxSnippetChars]
		}

		results = append(results, models.WebResult{
			Title:   chunk.Web.Title,
			Snippet: snippet,
			URL:     chunk.Web.URI,
		})
	}

	return results
}
