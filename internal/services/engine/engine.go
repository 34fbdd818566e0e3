package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
)

// Engine implements the AnswerEngine interface: the full pipeline from raw
// question to structured answer bundle.
//
// State machine per question:
//
//	received -> cache_check -> {hit: done | miss -> classify ->
//	{blocked: done | proceed -> history_fetch -> retrieve ->
//	cascade(job? -> combined -> rag -> web) ->
//	{accepted: done+cache_store | exhausted: done(error)}}}
//
// Every terminal state persists exactly one assistant turn and returns a
// bundle. Recoverable failures are resolved here; only a failed user-turn
// persist or a panic produces the apology bundle, and even that crosses the
// boundary as a bundle, never as an error.
type Engine struct {
	config        *common.EngineConfig
	classifier    interfaces.QueryClassifier
	cache         interfaces.SemanticCache
	history       interfaces.HistoryService
	retrieval     interfaces.RetrievalService
	conversations interfaces.ConversationStorage
	synth         *synthesizer
	sourceTimeout time.Duration
	logger        arbor.ILogger
}

var _ interfaces.AnswerEngine = (*Engine)(nil)

const maxTitleChars = 60

// NewEngine creates a new answer engine
func NewEngine(
	config *common.EngineConfig,
	classifier interfaces.QueryClassifier,
	cache interfaces.SemanticCache,
	history interfaces.HistoryService,
	retrieval interfaces.RetrievalService,
	conversations interfaces.ConversationStorage,
	llm interfaces.LLMService,
	logger arbor.ILogger,
) *Engine {
	return &Engine{
		config:        config,
		classifier:    classifier,
		cache:         cache,
		history:       history,
		retrieval:     retrieval,
		conversations: conversations,
		synth:         &synthesizer{llm: llm, logger: logger},
		sourceTimeout: config.SourceTimeoutDuration(),
		logger:        logger,
	}
}

// Answer runs the pipeline for one question. It always returns a bundle.
func (e *Engine) Answer(ctx context.Context, question models.Question) (bundle *models.AnswerBundle) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", common.GetStackTrace()).
				Msg("Panic recovered in answer pipeline")
			bundle = e.apologyBundle()
		}
	}()

	if strings.TrimSpace(question.Text) == "" {
		return &models.AnswerBundle{
			ConversationID: question.ConversationID,
			Answer:         "Please enter a question.",
			CitedChunks:    []models.RetrievedChunk{},
			Source:         models.SourceError,
		}
	}

	conversation, err := e.resolveConversation(ctx, question)
	if err != nil {
		e.logger.Error().Err(err).Str("user_id", question.UserID).Msg("Failed to resolve conversation")
		return e.apologyBundle()
	}

	userTurn := &models.ConversationTurn{
		ConversationID: conversation.ID,
		Role:           models.RoleUser,
		Content:        question.Text,
	}
	if _, err := e.conversations.AppendTurn(ctx, userTurn); err != nil {
		// The initiating user turn is the one persist the pipeline cannot
		// proceed without.
		e.logger.Error().Err(err).Str("conversation_id", conversation.ID).Msg("Failed to persist user turn")
		return e.apologyBundle()
	}

	e.maybeSetTitle(ctx, conversation, question.Text)

	if cached, ok := e.cache.Lookup(ctx, question.Text, question.UserID); ok {
		cached.ConversationID = conversation.ID
		e.persistAssistantTurn(ctx, conversation.ID, cached)
		e.logger.Info().Str("conversation_id", conversation.ID).Str("source", string(cached.Source)).Msg("Answer served from semantic cache")
		return cached
	}

	analysis := e.classifier.Classify(ctx, question.Text)

	// Guardrail: nothing below the confidence floor reaches retrieval
	if analysis.Intent == models.IntentIrrelevant || analysis.Confidence < e.config.MinConfidence {
		e.logger.Info().
			Str("conversation_id", conversation.ID).
			Str("intent", string(analysis.Intent)).
			Float64("confidence", analysis.Confidence).
			Msg("Question blocked by guardrail")
		refusal := &models.AnswerBundle{
			ConversationID: conversation.ID,
			Answer:         guardrailMessage,
			CitedChunks:    []models.RetrievedChunk{},
			Source:         models.SourceError,
		}
		e.persistAssistantTurn(ctx, conversation.ID, refusal)
		return refusal
	}

	historyTurns := e.loadHistory(ctx, conversation.ID)

	result := e.runCascade(ctx, question, analysis, historyTurns)
	result.ConversationID = conversation.ID

	e.persistAssistantTurn(ctx, conversation.ID, result)

	// Refusals and error outcomes are never cached, so a transient failure
	// can't harden into a permanent wrong answer.
	if result.Source != models.SourceError {
		e.cache.Store(ctx, question.Text, result, question.UserID)
	}

	e.logger.Info().
		Str("conversation_id", conversation.ID).
		Str("intent", string(analysis.Intent)).
		Str("source", string(result.Source)).
		Int("cited_chunks", len(result.CitedChunks)).
		Msg("Answer pipeline completed")

	return result
}

// resolveConversation loads the addressed conversation or creates a new one.
// An unknown conversation ID starts a fresh conversation rather than
// failing the question.
func (e *Engine) resolveConversation(ctx context.Context, question models.Question) (*models.Conversation, error) {
	if question.ConversationID != "" {
		conversation, err := e.conversations.GetConversation(ctx, question.ConversationID)
		if err == nil {
			return conversation, nil
		}
		if err != interfaces.ErrConversationNotFound {
			return nil, err
		}
		e.logger.Warn().Str("conversation_id", question.ConversationID).Msg("Conversation not found, starting a new one")
	}

	return e.conversations.CreateConversation(ctx, question.UserID, question.ResumeID)
}

// maybeSetTitle replaces the default conversation title with a truncated
// form of the first question. Best-effort.
func (e *Engine) maybeSetTitle(ctx context.Context, conversation *models.Conversation, questionText string) {
	if conversation.Title != models.DefaultConversationTitle {
		return
	}

	title := strings.TrimSpace(questionText)
	if len(title) > maxTitleChars {
		title = strings.TrimSpace(title[:maxTitleChars]) + "..."
	}

	if err := e.conversations.UpdateTitle(ctx, conversation.ID, title); err != nil {
		e.logger.Warn().Err(err).Str("conversation_id", conversation.ID).Msg("Failed to update conversation title")
		return
	}
	conversation.Title = title
}

// loadHistory fetches recent turns and windows them to the token budget.
// History is optional context; failures degrade to an empty window.
func (e *Engine) loadHistory(ctx context.Context, conversationID string) []models.ConversationTurn {
	turns, err := e.history.GetHistory(ctx, conversationID, e.config.HistoryMessageLimit)
	if err != nil {
		e.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("Failed to load history, continuing without it")
		return nil
	}
	return e.history.WindowByTokenBudget(turns, e.config.HistoryTokenBudget)
}

// runCascade executes the ordered fallback cascade:
// job (job_search intent only) -> combined -> rag -> web -> error.
// Each step falls through on empty sources, a failed relevance gate, or a
// rejected synthesis.
func (e *Engine) runCascade(ctx context.Context, question models.Question, analysis *models.QueryAnalysis, historyTurns []models.ConversationTurn) *models.AnswerBundle {
	if analysis.Intent == models.IntentJobSearch {
		if result := e.attemptJob(ctx, question, analysis, historyTurns); result != nil {
			return result
		}
		e.logger.Debug().Msg("Job strategy fell through, continuing cascade with rewritten query")
	}

	resumeChunks, webChunks := e.fetchResumeAndWeb(ctx, analysis.RewrittenQuery, question.UserID, question.ResumeID)

	resumeRelevant := e.relevant(resumeChunks)
	webRelevant := e.relevant(webChunks)

	if resumeRelevant && webRelevant {
		prompt := fmt.Sprintf(combinedPromptTemplate, formatChunks(resumeChunks), formatChunks(webChunks))
		cited := append(append([]models.RetrievedChunk{}, resumeChunks...), webChunks...)
		if result := e.attempt(ctx, prompt, historyTurns, question.Text, cited, models.SourceCombined); result != nil {
			return result
		}
	}

	if resumeRelevant {
		prompt := fmt.Sprintf(resumePromptTemplate, formatChunks(resumeChunks))
		if result := e.attempt(ctx, prompt, historyTurns, question.Text, resumeChunks, models.SourceRAG); result != nil {
			return result
		}
	}

	if webRelevant {
		prompt := fmt.Sprintf(webPromptTemplate, formatChunks(webChunks))
		if result := e.attempt(ctx, prompt, historyTurns, question.Text, webChunks, models.SourceWeb); result != nil {
			return result
		}
	}

	return &models.AnswerBundle{
		Answer:      insufficientInfoMessage,
		CitedChunks: []models.RetrievedChunk{},
		Source:      models.SourceError,
	}
}

// attemptJob runs the job strategy: job postings plus resume chunks queried
// with the extracted skills for context. Returns nil to fall through.
func (e *Engine) attemptJob(ctx context.Context, question models.Question, analysis *models.QueryAnalysis, historyTurns []models.ConversationTurn) *models.AnswerBundle {
	jobQuery := &models.JobQuery{}
	if analysis.JobParams != nil {
		jobQuery.Title = analysis.JobParams.Title
		jobQuery.Location = analysis.JobParams.Location
		jobQuery.Skills = analysis.JobParams.Skills
	}

	skillText := analysis.RewrittenQuery
	if len(jobQuery.Skills) > 0 {
		skillText = strings.Join(jobQuery.Skills, " ")
	}

	var (
		wg          sync.WaitGroup
		jobChunks   []models.RetrievedChunk
		skillChunks []models.RetrievedChunk
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		jobChunks = e.fetchJob(ctx, jobQuery)
	}()
	go func() {
		defer wg.Done()
		skillChunks = e.fetchResume(ctx, skillText, question.UserID, question.ResumeID)
	}()
	wg.Wait()

	if len(jobChunks) == 0 {
		e.logger.Debug().Msg("Job search returned no postings")
		return nil
	}

	prompt := fmt.Sprintf(jobPromptTemplate, formatChunks(jobChunks), formatChunks(skillChunks))
	return e.attempt(ctx, prompt, historyTurns, question.Text, jobChunks, models.SourceJob)
}

// attempt runs one synthesis strategy and returns nil when the answer is
// rejected so the cascade can advance
func (e *Engine) attempt(ctx context.Context, systemPrompt string, historyTurns []models.ConversationTurn, questionText string, cited []models.RetrievedChunk, source models.SourceTag) *models.AnswerBundle {
	answer, err := e.synth.invoke(ctx, systemPrompt, historyTurns, questionText)
	if err != nil {
		e.logger.Warn().Err(err).Str("source", string(source)).Msg("Synthesis attempt failed, advancing cascade")
		return nil
	}
	if !accepted(answer) {
		e.logger.Debug().Str("source", string(source)).Int("answer_length", len(answer)).Msg("Synthesis attempt rejected, advancing cascade")
		return nil
	}

	return &models.AnswerBundle{
		Answer:      strings.TrimSpace(answer),
		CitedChunks: cited,
		Source:      source,
	}
}

// fetchResumeAndWeb issues resume and web retrieval concurrently and joins
// before gating, bounding latency to the slower of the two
func (e *Engine) fetchResumeAndWeb(ctx context.Context, query, userID, resumeID string) (resumeChunks, webChunks []models.RetrievedChunk) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		resumeChunks = e.fetchResume(ctx, query, userID, resumeID)
	}()
	go func() {
		defer wg.Done()
		webChunks = e.fetchWeb(ctx, query)
	}()
	wg.Wait()
	return resumeChunks, webChunks
}

// fetchResume retrieves resume chunks with a per-source timeout. Failures
// and timeouts degrade to an empty set.
func (e *Engine) fetchResume(ctx context.Context, query, userID, resumeID string) []models.RetrievedChunk {
	sourceCtx, cancel := context.WithTimeout(ctx, e.sourceTimeout)
	defer cancel()

	chunks, err := e.retrieval.ResumeChunks(sourceCtx, query, userID, resumeID)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Resume retrieval failed, treating as empty")
		return nil
	}
	return chunks
}

// fetchWeb retrieves web chunks with a per-source timeout
func (e *Engine) fetchWeb(ctx context.Context, query string) []models.RetrievedChunk {
	sourceCtx, cancel := context.WithTimeout(ctx, e.sourceTimeout)
	defer cancel()

	chunks, err := e.retrieval.WebChunks(sourceCtx, query)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Web retrieval failed, treating as empty")
		return nil
	}
	return chunks
}

// fetchJob retrieves job chunks with a per-source timeout
func (e *Engine) fetchJob(ctx context.Context, query *models.JobQuery) []models.RetrievedChunk {
	sourceCtx, cancel := context.WithTimeout(ctx, e.sourceTimeout)
	defer cancel()

	chunks, err := e.retrieval.JobChunks(sourceCtx, query)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Job retrieval failed, treating as empty")
		return nil
	}
	return chunks
}

// relevant applies the relevance gate: at least two chunks at or above the
// configured minimum score
func (e *Engine) relevant(chunks []models.RetrievedChunk) bool {
	count := 0
	for _, chunk := range chunks {
		if chunk.Score >= e.config.RelevanceMinScore {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// persistAssistantTurn appends the terminal answer as an assistant turn.
// By this point the user turn is already durable, so a failed assistant
// persist is logged and the answer still returned.
func (e *Engine) persistAssistantTurn(ctx context.Context, conversationID string, bundle *models.AnswerBundle) {
	turn := &models.ConversationTurn{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        bundle.Answer,
		Source:         bundle.Source,
		CitedChunks:    bundle.CitedChunks,
	}
	if _, err := e.conversations.AppendTurn(ctx, turn); err != nil {
		e.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("Failed to persist assistant turn")
	}
}

// apologyBundle is the fatal-path response. The conversation id is left
// empty on purpose: the caller cannot rely on anything having been persisted.
func (e *Engine) apologyBundle() *models.AnswerBundle {
	return &models.AnswerBundle{
		ConversationID: "",
		Answer:         apologyMessage,
		CitedChunks:    []models.RetrievedChunk{},
		Source:         models.SourceError,
	}
}
