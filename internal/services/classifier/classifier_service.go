package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
)

// Service implements the QueryClassifier interface using a single LLM call
// that returns strict JSON. Classification is advisory: any failure in the
// call or the parse collapses to the irrelevant/zero-confidence default so
// the engine's guardrail handles it, and the user still gets a response.
type Service struct {
	llmService interfaces.LLMService
	logger     arbor.ILogger
}

var _ interfaces.QueryClassifier = (*Service)(nil)

// classificationResult is the wire shape the model is instructed to return
type classificationResult struct {
	Intent         string   `json:"intent"`
	Confidence     *float64 `json:"confidence"`
	RewrittenQuery string   `json:"rewritten_query"`
	JobTitle       string   `json:"job_title,omitempty"`
	JobLocation    string   `json:"job_location,omitempty"`
	JobSkills      []string `json:"job_skills,omitempty"`
	Reasoning      string   `json:"reasoning,omitempty"`
}

const classifyPromptTemplate = `You are the query analyzer for a career assistant that answers questions about a user's resume, gives career guidance, and searches live job postings.

User question:
%s

Classify the question and return ONLY valid JSON (no markdown, no explanation):
{
  "intent": "resume_query|career_guidance|job_search|irrelevant",
  "confidence": 0.0,
  "rewritten_query": "standalone search query with pronouns resolved",
  "job_title": "job title to search for (job_search only)",
  "job_location": "location to search in (job_search only)",
  "job_skills": ["relevant skills (job_search only)"],
  "reasoning": "one short sentence"
}

Guidelines:
- resume_query: asks about the user's own experience, skills, or background
- career_guidance: asks for advice on career moves, interviews, or growth
- job_search: asks to find open positions or current openings
- irrelevant: unrelated to careers, resumes, or jobs
- confidence: how certain you are of the intent, between 0.0 and 1.0
- rewritten_query: rephrase the question so it stands alone without conversation context`

const classifyTimeout = 30 * time.Second

// NewService creates a new classifier service
func NewService(llmService interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		llmService: llmService,
		logger:     logger,
	}
}

// Classify analyzes a question and returns its intent, confidence, and
// retrieval parameters. It never returns an error: failures degrade to the
// safe default analysis.
func (s *Service) Classify(ctx context.Context, question string) *models.QueryAnalysis {
	fallback := &models.QueryAnalysis{
		Intent:         models.IntentIrrelevant,
		Confidence:     0,
		RewrittenQuery: question,
	}

	if strings.TrimSpace(question) == "" {
		return fallback
	}
	if s.llmService == nil {
		s.logger.Warn().Msg("LLM service not configured, using default query analysis")
		return fallback
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	prompt := fmt.Sprintf(classifyPromptTemplate, question)
	response, err := s.llmService.Chat(timeoutCtx, []interfaces.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Query classification call failed, using default analysis")
		return fallback
	}

	analysis, err := s.parseAnalysis(question, response)
	if err != nil {
		s.logger.Warn().Err(err).Str("response", response).Msg("Failed to parse classification response, using default analysis")
		return fallback
	}

	s.logger.Debug().
		Str("intent", string(analysis.Intent)).
		Float64("confidence", analysis.Confidence).
		Str("rewritten_query", analysis.RewrittenQuery).
		Msg("Query classified")

	return analysis
}

// parseAnalysis converts the raw LLM response into a validated QueryAnalysis
func (s *Service) parseAnalysis(question, response string) (*models.QueryAnalysis, error) {
	jsonStr := extractJSON(response)

	var result classificationResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	intent := models.Intent(result.Intent)
	if !models.ValidIntent(result.Intent) {
		return nil, fmt.Errorf("unknown intent %q", result.Intent)
	}

	// Missing confidence defaults to 0.8, except for irrelevant intent which
	// stays at zero so the guardrail catches it. Out-of-range values clamp
	// into [0, 1].
	var confidence float64
	switch {
	case result.Confidence == nil:
		if intent != models.IntentIrrelevant {
			confidence = 0.8
		}
	case *result.Confidence < 0:
		confidence = 0
	case *result.Confidence > 1:
		confidence = 1
	default:
		confidence = *result.Confidence
	}

	rewritten := strings.TrimSpace(result.RewrittenQuery)
	if rewritten == "" {
		rewritten = question
	}

	analysis := &models.QueryAnalysis{
		Intent:         intent,
		Confidence:     confidence,
		RewrittenQuery: rewritten,
		Reasoning:      result.Reasoning,
	}

	if intent == models.IntentJobSearch {
		skills := result.JobSkills
		if skills == nil {
			skills = []string{}
		}
		analysis.JobParams = &models.JobParameters{
			Title:    strings.TrimSpace(result.JobTitle),
			Location: strings.TrimSpace(result.JobLocation),
			Skills:   skills,
		}
	}

	return analysis, nil
}

// extractJSON extracts JSON from a response, handling markdown code blocks
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		var jsonLines []string
		inCodeBlock := false

		for _, line := range lines {
			if strings.HasPrefix(line, "```") {
				if inCodeBlock {
					break
				}
				inCodeBlock = true
				continue
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}

		if len(jsonLines) > 0 {
			return strings.Join(jsonLines, "\n")
		}
	}

	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx >= 0 && endIdx > startIdx {
		return response[startIdx : endIdx+1]
	}

	return response
}
