package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
)

type fakeClassifier struct {
	analysis *models.QueryAnalysis
	calls    int
}

func (f *fakeClassifier) Classify(ctx context.Context, question string) *models.QueryAnalysis {
	f.calls++
	if f.analysis != nil {
		return f.analysis
	}
	return &models.QueryAnalysis{Intent: models.IntentResumeQuery, Confidence: 0.9, RewrittenQuery: question}
}

type fakeCache struct {
	hit         *models.AnswerBundle
	lookupCalls int
	storedQuery string
	stored      *models.AnswerBundle
}

func (f *fakeCache) Lookup(ctx context.Context, query, userID string) (*models.AnswerBundle, bool) {
	f.lookupCalls++
	if f.hit != nil {
		// Hand out a copy so the engine's mutation doesn't alias the fixture
		bundle := *f.hit
		return &bundle, true
	}
	return nil, false
}

func (f *fakeCache) Store(ctx context.Context, query string, bundle *models.AnswerBundle, userID string) {
	f.storedQuery = query
	f.stored = bundle
}

type fakeHistory struct {
	turns []models.ConversationTurn
}

func (f *fakeHistory) GetHistory(ctx context.Context, conversationID string, messageLimit int) ([]models.ConversationTurn, error) {
	return f.turns, nil
}

func (f *fakeHistory) WindowByTokenBudget(turns []models.ConversationTurn, maxTokens int) []models.ConversationTurn {
	return turns
}

type fakeRetrieval struct {
	resumeChunks []models.RetrievedChunk
	webChunks    []models.RetrievedChunk
	jobChunks    []models.RetrievedChunk

	resumeCalls   int
	webCalls      int
	jobCalls      int
	lastResumeQry string
	lastJobQuery  *models.JobQuery
}

func (f *fakeRetrieval) ResumeChunks(ctx context.Context, query, userID, resumeID string) ([]models.RetrievedChunk, error) {
	f.resumeCalls++
	f.lastResumeQry = query
	return f.resumeChunks, nil
}

func (f *fakeRetrieval) WebChunks(ctx context.Context, query string) ([]models.RetrievedChunk, error) {
	f.webCalls++
	return f.webChunks, nil
}

func (f *fakeRetrieval) JobChunks(ctx context.Context, query *models.JobQuery) ([]models.RetrievedChunk, error) {
	f.jobCalls++
	f.lastJobQuery = query
	return f.jobChunks, nil
}

type fakeConversations struct {
	conversations map[string]*models.Conversation
	turns         []*models.ConversationTurn
	failUserTurn  bool
	nextID        int
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{conversations: map[string]*models.Conversation{}}
}

func (f *fakeConversations) CreateConversation(ctx context.Context, userID, resumeID string) (*models.Conversation, error) {
	f.nextID++
	conversation := &models.Conversation{
		ID:       fmt.Sprintf("conv-%d", f.nextID),
		UserID:   userID,
		ResumeID: resumeID,
		Title:    models.DefaultConversationTitle,
	}
	f.conversations[conversation.ID] = conversation
	return conversation, nil
}

func (f *fakeConversations) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	if conversation, ok := f.conversations[id]; ok {
		return conversation, nil
	}
	return nil, interfaces.ErrConversationNotFound
}

func (f *fakeConversations) UpdateTitle(ctx context.Context, id, title string) error {
	if conversation, ok := f.conversations[id]; ok {
		conversation.Title = title
		return nil
	}
	return interfaces.ErrConversationNotFound
}

func (f *fakeConversations) AppendTurn(ctx context.Context, turn *models.ConversationTurn) (string, error) {
	if f.failUserTurn && turn.Role == models.RoleUser {
		return "", errors.New("storage unavailable")
	}
	f.turns = append(f.turns, turn)
	return "turn-id", nil
}

func (f *fakeConversations) ListRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConversations) turnsByRole(role models.Role) []*models.ConversationTurn {
	var out []*models.ConversationTurn
	for _, turn := range f.turns {
		if turn.Role == role {
			out = append(out, turn)
		}
	}
	return out
}

type fakeSynthLLM struct {
	response string
	err      error
	calls    int
	messages [][]interfaces.Message
}

func (f *fakeSynthLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSynthLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	f.calls++
	f.messages = append(f.messages, messages)
	return f.response, f.err
}

func (f *fakeSynthLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeSynthLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeCloud }
func (f *fakeSynthLLM) Close() error                          { return nil }

type engineFixture struct {
	engine        *Engine
	classifier    *fakeClassifier
	cache         *fakeCache
	retrieval     *fakeRetrieval
	conversations *fakeConversations
	llm           *fakeSynthLLM
}

func newFixture() *engineFixture {
	config := &common.EngineConfig{
		MinConfidence:       0.6,
		RelevanceMinScore:   0.5,
		TopK:                6,
		HistoryMessageLimit: 20,
		HistoryTokenBudget:  2000,
		SourceTimeout:       "5s",
	}

	f := &engineFixture{
		classifier:    &fakeClassifier{},
		cache:         &fakeCache{},
		retrieval:     &fakeRetrieval{},
		conversations: newFakeConversations(),
		llm:           &fakeSynthLLM{response: "Here is a grounded answer built from your resume."},
	}
	f.engine = NewEngine(
		config,
		f.classifier,
		f.cache,
		&fakeHistory{},
		f.retrieval,
		f.conversations,
		f.llm,
		arbor.NewLogger(),
	)
	return f
}

func question(text string) models.Question {
	return models.Question{Text: text, UserID: "alice", ResumeID: "resume-1"}
}

func scoredChunks(source models.SourceTag, scores ...float64) []models.RetrievedChunk {
	chunks := make([]models.RetrievedChunk, 0, len(scores))
	for i, score := range scores {
		chunks = append(chunks, models.RetrievedChunk{
			ID:      fmt.Sprintf("%s-%d", source, i),
			Score:   score,
			Content: fmt.Sprintf("chunk %d content", i),
			Source:  source,
		})
	}
	return chunks
}

func TestAnswerResumeOnlyPath(t *testing.T) {
	f := newFixture()
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.85, 0.7)

	bundle := f.engine.Answer(context.Background(), question("how many years of Go do I have?"))

	if bundle.Source != models.SourceRAG {
		t.Errorf("Expected rag source, got %s", bundle.Source)
	}
	if len(bundle.CitedChunks) != 3 {
		t.Errorf("Expected 3 cited chunks, got %d", len(bundle.CitedChunks))
	}
	if bundle.Answer != f.llm.response {
		t.Errorf("Expected synthesized answer, got %q", bundle.Answer)
	}
	if bundle.ConversationID == "" {
		t.Error("Answer must carry the conversation ID")
	}

	// Web was empty, so only the rag strategy synthesized
	if f.llm.calls != 1 {
		t.Errorf("Expected 1 synthesis call, got %d", f.llm.calls)
	}
	if f.cache.storedQuery != "how many years of Go do I have?" {
		t.Errorf("Successful answer should be cached under the question text, got %q", f.cache.storedQuery)
	}

	userTurns := f.conversations.turnsByRole(models.RoleUser)
	assistantTurns := f.conversations.turnsByRole(models.RoleAssistant)
	if len(userTurns) != 1 || len(assistantTurns) != 1 {
		t.Errorf("Expected one user and one assistant turn, got %d/%d", len(userTurns), len(assistantTurns))
	}
}

func TestAnswerGuardrailBlocksLowConfidence(t *testing.T) {
	f := newFixture()
	f.classifier.analysis = &models.QueryAnalysis{
		Intent:         models.IntentCareerGuidance,
		Confidence:     0.1,
		RewrittenQuery: "what is the weather",
	}

	bundle := f.engine.Answer(context.Background(), question("what's the weather like?"))

	if bundle.Source != models.SourceError {
		t.Errorf("Expected error source, got %s", bundle.Source)
	}
	if bundle.Answer != guardrailMessage {
		t.Errorf("Expected guardrail refusal, got %q", bundle.Answer)
	}
	if f.retrieval.resumeCalls+f.retrieval.webCalls+f.retrieval.jobCalls != 0 {
		t.Error("Blocked questions must not reach retrieval")
	}
	if f.llm.calls != 0 {
		t.Error("Blocked questions must not reach synthesis")
	}
	if f.cache.stored != nil {
		t.Error("Refusals must not be cached")
	}
	if len(f.conversations.turnsByRole(models.RoleAssistant)) != 1 {
		t.Error("Refusal must still be persisted as an assistant turn")
	}
}

func TestAnswerGuardrailBlocksIrrelevantIntent(t *testing.T) {
	f := newFixture()
	f.classifier.analysis = &models.QueryAnalysis{
		Intent:         models.IntentIrrelevant,
		Confidence:     0.99,
		RewrittenQuery: "pizza recipe",
	}

	bundle := f.engine.Answer(context.Background(), question("give me a pizza recipe"))

	if bundle.Answer != guardrailMessage {
		t.Errorf("Irrelevant intent must be refused regardless of confidence, got %q", bundle.Answer)
	}
}

func TestAnswerJobSearchFallsThroughOnNoPostings(t *testing.T) {
	f := newFixture()
	f.classifier.analysis = &models.QueryAnalysis{
		Intent:         models.IntentJobSearch,
		Confidence:     0.95,
		RewrittenQuery: "golang developer jobs in Berlin",
		JobParams:      &models.JobParameters{Title: "Golang Developer", Location: "Berlin", Skills: []string{"Go"}},
	}
	f.retrieval.jobChunks = nil
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.8, 0.75)

	bundle := f.engine.Answer(context.Background(), question("find me Go jobs in Berlin"))

	if f.retrieval.jobCalls != 1 {
		t.Errorf("Expected job retrieval to run once, got %d", f.retrieval.jobCalls)
	}
	if f.retrieval.lastJobQuery == nil || f.retrieval.lastJobQuery.Title != "Golang Developer" {
		t.Errorf("Job query must carry the extracted parameters, got %+v", f.retrieval.lastJobQuery)
	}
	if bundle.Source != models.SourceRAG {
		t.Errorf("Empty job results should fall through to the resume path, got %s", bundle.Source)
	}
	if f.retrieval.lastResumeQry != "golang developer jobs in Berlin" {
		t.Errorf("Fallback retrieval should use the rewritten query, got %q", f.retrieval.lastResumeQry)
	}
}

func TestAnswerJobSearchSuccess(t *testing.T) {
	f := newFixture()
	f.classifier.analysis = &models.QueryAnalysis{
		Intent:         models.IntentJobSearch,
		Confidence:     0.95,
		RewrittenQuery: "golang developer jobs",
		JobParams:      &models.JobParameters{Title: "Golang Developer", Skills: []string{"Go", "Kubernetes"}},
	}
	f.retrieval.jobChunks = scoredChunks(models.SourceJob, 1.0, 0.95)

	bundle := f.engine.Answer(context.Background(), question("find me Go jobs"))

	if bundle.Source != models.SourceJob {
		t.Errorf("Expected job source, got %s", bundle.Source)
	}
	if len(bundle.CitedChunks) != 2 {
		t.Errorf("Job answers cite the postings, got %d chunks", len(bundle.CitedChunks))
	}
	// Successful job strategy never reaches the resume/web cascade fan-out
	if f.retrieval.webCalls != 0 {
		t.Errorf("Web retrieval should not run after a job hit, got %d calls", f.retrieval.webCalls)
	}
}

func TestAnswerCacheHitSkipsClassification(t *testing.T) {
	f := newFixture()
	f.cache.hit = &models.AnswerBundle{
		Answer:      "cached answer from an earlier session",
		CitedChunks: []models.RetrievedChunk{},
		Source:      models.SourceRAG,
	}

	bundle := f.engine.Answer(context.Background(), question("what skills do I have?"))

	if bundle.Answer != f.cache.hit.Answer {
		t.Errorf("Expected the cached answer, got %q", bundle.Answer)
	}
	if bundle.ConversationID == "" {
		t.Error("Cached answer must be restamped with the live conversation ID")
	}
	if f.classifier.calls != 0 {
		t.Error("Cache hit must not invoke classification")
	}
	if f.llm.calls != 0 {
		t.Error("Cache hit must not invoke synthesis")
	}
	if f.retrieval.resumeCalls+f.retrieval.webCalls+f.retrieval.jobCalls != 0 {
		t.Error("Cache hit must not reach retrieval")
	}
	if len(f.conversations.turnsByRole(models.RoleAssistant)) != 1 {
		t.Error("Cache hit must still append a fresh assistant turn")
	}
}

func TestAnswerCombinedPath(t *testing.T) {
	f := newFixture()
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.8)
	f.retrieval.webChunks = scoredChunks(models.SourceWeb, 1.0, 0.95)

	bundle := f.engine.Answer(context.Background(), question("how do my skills compare to the market?"))

	if bundle.Source != models.SourceCombined {
		t.Errorf("Both sources relevant should synthesize combined, got %s", bundle.Source)
	}
	if len(bundle.CitedChunks) != 4 {
		t.Errorf("Combined answers cite both source sets, got %d chunks", len(bundle.CitedChunks))
	}
}

func TestAnswerRelevanceGateRequiresTwoChunks(t *testing.T) {
	f := newFixture()
	// One strong chunk is not enough for the gate
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.2, 0.1)

	bundle := f.engine.Answer(context.Background(), question("what certifications do I hold?"))

	if f.llm.calls != 0 {
		t.Errorf("Failed relevance gate must not synthesize, got %d calls", f.llm.calls)
	}
	if bundle.Answer != insufficientInfoMessage {
		t.Errorf("Exhausted cascade should return the insufficient-info message, got %q", bundle.Answer)
	}
	if bundle.Source != models.SourceError {
		t.Errorf("Exhausted cascade carries the error source, got %s", bundle.Source)
	}
	if f.cache.stored != nil {
		t.Error("Error outcomes must not be cached")
	}
}

func TestAnswerCascadeAdvancesOnRefusal(t *testing.T) {
	f := newFixture()
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.8)
	f.retrieval.webChunks = scoredChunks(models.SourceWeb, 1.0, 0.95)
	f.llm.response = "I don't have enough information to answer that."

	bundle := f.engine.Answer(context.Background(), question("what was my salary in 2015?"))

	// combined, rag, and web all synthesized and were all rejected
	if f.llm.calls != 3 {
		t.Errorf("Expected 3 synthesis attempts across the cascade, got %d", f.llm.calls)
	}
	if bundle.Answer != insufficientInfoMessage {
		t.Errorf("Expected the insufficient-info message, got %q", bundle.Answer)
	}
}

func TestAnswerEmptyQuestion(t *testing.T) {
	f := newFixture()

	bundle := f.engine.Answer(context.Background(), models.Question{Text: "   ", UserID: "alice", ConversationID: "conv-9"})

	if bundle.Answer != "Please enter a question." {
		t.Errorf("Expected the empty-question prompt, got %q", bundle.Answer)
	}
	if bundle.Source != models.SourceError {
		t.Errorf("Expected error source, got %s", bundle.Source)
	}
	if bundle.ConversationID != "conv-9" {
		t.Errorf("Empty-question bundle should echo the addressed conversation, got %q", bundle.ConversationID)
	}
	if len(f.conversations.turns) != 0 {
		t.Error("Empty questions must not be persisted")
	}
}

func TestAnswerUserTurnPersistFailure(t *testing.T) {
	f := newFixture()
	f.conversations.failUserTurn = true

	bundle := f.engine.Answer(context.Background(), question("what skills do I have?"))

	if bundle.Answer != apologyMessage {
		t.Errorf("Expected apology on failed user-turn persist, got %q", bundle.Answer)
	}
	if bundle.ConversationID != "" {
		t.Errorf("Apology bundle carries no conversation ID, got %q", bundle.ConversationID)
	}
	if f.llm.calls != 0 {
		t.Error("Pipeline must stop before synthesis when the user turn cannot be persisted")
	}
}

func TestAnswerUnknownConversationStartsFresh(t *testing.T) {
	f := newFixture()
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.8)

	bundle := f.engine.Answer(context.Background(), models.Question{
		Text:           "what skills do I have?",
		UserID:         "alice",
		ConversationID: "conv-does-not-exist",
	})

	if bundle.ConversationID == "" || bundle.ConversationID == "conv-does-not-exist" {
		t.Errorf("Unknown conversation should start a fresh one, got %q", bundle.ConversationID)
	}
}

func TestAnswerSetsConversationTitle(t *testing.T) {
	f := newFixture()
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.8)

	longQuestion := "could you please walk me through every skill listed on my resume and how recent each one is?"
	bundle := f.engine.Answer(context.Background(), question(longQuestion))

	conversation := f.conversations.conversations[bundle.ConversationID]
	if conversation == nil {
		t.Fatal("Conversation was not created")
	}
	if conversation.Title == models.DefaultConversationTitle {
		t.Error("First question should replace the default title")
	}
	if len(conversation.Title) > maxTitleChars+3 {
		t.Errorf("Title should be truncated, got %d chars", len(conversation.Title))
	}
}

func TestAnswerDeterministicRouting(t *testing.T) {
	f := newFixture()
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.85, 0.7)

	first := f.engine.Answer(context.Background(), question("how many years of Go do I have?"))

	// Same inputs route identically on a second fixture
	g := newFixture()
	g.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.85, 0.7)
	second := g.engine.Answer(context.Background(), question("how many years of Go do I have?"))

	if first.Source != second.Source {
		t.Errorf("Routing must be deterministic for identical inputs, got %s then %s", first.Source, second.Source)
	}
	if len(first.CitedChunks) != len(second.CitedChunks) {
		t.Errorf("Citation counts must match, got %d then %d", len(first.CitedChunks), len(second.CitedChunks))
	}
}

func TestAnswerHistoryRidesAlongAsMessages(t *testing.T) {
	f := newFixture()
	f.retrieval.resumeChunks = scoredChunks(models.SourceRAG, 0.9, 0.8)
	f.engine.history = &fakeHistory{turns: []models.ConversationTurn{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}}

	f.engine.Answer(context.Background(), question("and what about Python?"))

	if f.llm.calls != 1 {
		t.Fatalf("Expected 1 synthesis call, got %d", f.llm.calls)
	}
	messages := f.llm.messages[0]
	// system prompt + 2 history turns + question
	if len(messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(messages))
	}
	if messages[0].Role != "system" {
		t.Errorf("First message must be the system prompt, got %s", messages[0].Role)
	}
	if messages[1].Content != "earlier question" || messages[2].Content != "earlier answer" {
		t.Error("History turns must precede the question in order")
	}
	if messages[3].Role != "user" || messages[3].Content != "and what about Python?" {
		t.Errorf("Final message must be the current question, got %s/%q", messages[3].Role, messages[3].Content)
	}
}

func TestAcceptedRejectsShortAndRefusalAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"normal answer", "You have eight years of Go experience.", true},
		{"empty", "", false},
		{"whitespace", "    ", false},
		{"too short", "Yes.", false},
		{"refusal phrasing", "I don't have enough information for that.", false},
		{"job refusal phrasing", "There are no matching jobs right now.", false},
		{"refusal in mixed case", "I DON'T HAVE ENOUGH data.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := accepted(tt.answer); got != tt.want {
				t.Errorf("accepted(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestFormatChunks(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Content: "first chunk"},
		{Content: "second chunk"},
	}

	formatted := formatChunks(chunks)
	if formatted != "[1] first chunk\n\n[2] second chunk" {
		t.Errorf("Unexpected chunk formatting: %q", formatted)
	}

	if formatChunks(nil) != "(none)" {
		t.Error("Empty chunk list should render as (none)")
	}
}
