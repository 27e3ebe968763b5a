package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/handlers"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/queue"
	"github.com/ternarybob/citare/internal/services/analyzer"
	"github.com/ternarybob/citare/internal/services/authority"
	"github.com/ternarybob/citare/internal/services/fetch"
	"github.com/ternarybob/citare/internal/services/llm"
	"github.com/ternarybob/citare/internal/services/score"
	"github.com/ternarybob/citare/internal/services/search"
	badgerstore "github.com/ternarybob/citare/internal/storage/badger"
)

// App holds the wired service graph. Construction order matters: storage
// first, then the LLM provider, then everything built on top of them.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	ctx       context.Context
	cancelCtx context.CancelFunc

	StorageManager *badgerstore.Manager
	LLMService     interfaces.LLMService
	FetchService   interfaces.FetchService
	SearchService  interfaces.SearchService
	Authority      *authority.Estimator
	Scorer         *score.Scorer
	Orchestrator   *analyzer.Orchestrator
	QueueManager   *queue.Manager
	Worker         *queue.Worker

	QueueHandler *handlers.QueueHandler
}

// New builds the application from configuration. On return the queue has
// been recovered: any jobs left in processing by a crashed run are pending
// again.
func New(cfg *common.Config) (*App, error) {
	logger := common.GetLogger()
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	storageManager, err := badgerstore.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.StorageManager = storageManager

	llmService, err := llm.NewLLMService(cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	a.LLMService = llmService

	a.FetchService = fetch.NewFetchService(cfg.Fetch, logger)
	a.Authority = authority.NewEstimator(cfg.Authority, logger)
	a.Scorer = score.NewScorer(llmService, cfg.Scoring, logger)

	a.Orchestrator = analyzer.NewOrchestrator(
		a.FetchService,
		a.Scorer,
		a.Authority,
		storageManager.AnalysisStorage(),
		cfg.Analyzer,
		logger,
	)

	a.QueueManager = queue.NewManager(storageManager.JobStorage(), cfg.Queue, logger)
	a.Worker = queue.NewWorker(a.QueueManager, llmService, a.Orchestrator, cfg.Queue, logger)

	// Grounded search rides on the Gemini client, so it is only available
	// when Gemini is the active provider.
	if cfg.Search.Enabled {
		if gemini, ok := llmService.(*llm.GeminiService); ok {
			a.SearchService = search.NewGeminiSearchService(gemini.Client(), cfg.Gemini, cfg.Search, logger)
			a.Worker.SetSearchService(a.SearchService)
		} else {
			logger.Debug().Str("provider", llmService.Name()).Msg("Grounded search unavailable for provider")
		}
	}

	a.QueueHandler = handlers.NewQueueHandler(
		a.Worker,
		a.QueueManager,
		storageManager.JobStorage(),
		storageManager.AnalysisStorage(),
		cfg,
		logger,
	)

	recovered, err := a.QueueManager.RecoverOnStartup(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to recover queue: %w", err)
	}
	if recovered > 0 {
		logger.Info().Int("jobs", recovered).Msg("Recovered orphaned jobs on startup")
	}

	return a, nil
}

// Context returns the application lifetime context.
func (a *App) Context() context.Context {
	return a.ctx
}

// Close tears down services in reverse construction order.
func (a *App) Close() {
	a.cancelCtx()

	if a.Authority != nil {
		a.Authority.Close()
	}
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("LLM service close failed")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage close failed")
		}
	}
}
