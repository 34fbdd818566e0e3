package app

import (
	"context"
	"fmt"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/classifier"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/embeddings"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/engine"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/history"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/jobsearch"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/llm"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/retrieval"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/semcache"
	"github.com/PrahladMehta/CareerMatch-AI/internal/services/websearch"
	badgerstorage "github.com/PrahladMehta/CareerMatch-AI/internal/storage/badger"
	"github.com/ternarybob/arbor"
)

// App aggregates the wired application services. Everything is constructed
// once here and passed by reference; no package carries ambient globals.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	ChatLLM        interfaces.LLMService
	EmbedLLM       interfaces.LLMService
	Engine         interfaces.AnswerEngine

	janitor *semcache.Janitor
}

// New wires the full service graph. Optional collaborators (web search, job
// search) log a warning and stay nil on init failure; the retrieval layer
// treats a nil provider as an empty source.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badgerstorage.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	chatLLM, embedLLM, err := llm.NewLLMServices(config, logger)
	if err != nil {
		storageManager.Close()
		return nil, err
	}

	embeddingService := embeddings.NewService(embedLLM, config.Gemini.EmbedModel, config.Gemini.EmbedDimension, logger)

	var webProvider interfaces.WebSearchProvider
	if config.WebSearch.Enabled {
		webService, err := websearch.NewService(&config.Gemini, &config.WebSearch, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Web search unavailable, continuing without it")
		} else {
			webProvider = webService
		}
	} else {
		logger.Info().Msg("Web search disabled by configuration")
	}

	var jobProvider interfaces.JobSearchProvider
	jobService, err := jobsearch.NewService(&config.JobSearch, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Job search unavailable, continuing without it")
	} else {
		jobProvider = jobService
	}

	cacheService := semcache.NewService(
		embeddingService,
		storageManager.VectorIndex(),
		storageManager.BlobStore(),
		config.Engine.CacheSimilarity,
		logger,
	)

	var janitor *semcache.Janitor
	if ttl := config.Engine.CacheTTLDuration(); ttl > 0 {
		janitor = semcache.NewJanitor(storageManager.VectorIndex(), storageManager.BlobStore(), ttl, logger)
		if err := janitor.Start(config.Engine.CacheSweepSchedule); err != nil {
			logger.Warn().Err(err).Msg("Cache janitor failed to start, entries will not expire")
			janitor = nil
		}
	} else {
		logger.Info().Msg("Cache expiry disabled by configuration")
	}

	retrievalService := retrieval.NewService(
		embeddingService,
		storageManager.VectorIndex(),
		webProvider,
		jobProvider,
		config.Engine.TopK,
		logger,
	)

	answerEngine := engine.NewEngine(
		&config.Engine,
		classifier.NewService(chatLLM, logger),
		cacheService,
		history.NewService(storageManager.ConversationStorage(), logger),
		retrievalService,
		storageManager.ConversationStorage(),
		chatLLM,
		logger,
	)

	app := &App{
		Config:         config,
		Logger:         logger,
		StorageManager: storageManager,
		ChatLLM:        chatLLM,
		EmbedLLM:       embedLLM,
		Engine:         answerEngine,
		janitor:        janitor,
	}

	app.runStartupHealthChecks()

	logger.Info().Msg("Application initialized")
	return app, nil
}

// runStartupHealthChecks probes the LLM providers so bad credentials surface
// in the startup log rather than on the first user request
func (a *App) runStartupHealthChecks() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.ChatLLM.HealthCheck(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Chat LLM health check failed at startup")
	}
	if a.EmbedLLM != a.ChatLLM {
		if err := a.EmbedLLM.HealthCheck(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Embedding LLM health check failed at startup")
		}
	}
}

// Close releases application resources in reverse dependency order
func (a *App) Close() {
	if a.janitor != nil {
		a.janitor.Stop()
	}

	if a.ChatLLM != nil {
		if err := a.ChatLLM.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close chat LLM service")
		}
	}
	if a.EmbedLLM != nil && a.EmbedLLM != a.ChatLLM {
		if err := a.EmbedLLM.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close embedding LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage manager")
		}
	}

	a.Logger.Info().Msg("Application closed")
}
