package queue

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
	"github.com/ternarybob/citare/internal/services/citations"
)

// CitationAnalyzer is the per-citation pipeline surface the worker drives.
type CitationAnalyzer interface {
	AnalyzeCitations(ctx context.Context, job *models.Job, cites []models.Citation) []*models.PageAnalysis
}

// WorkerStats is a snapshot of worker counters for the status endpoint.
type WorkerStats struct {
	Processed uint64 `json:"processed"`
	Errors    uint64 `json:"errors"`
	Busy      bool   `json:"busy"`
}

// Worker is the single polling loop that drains the job queue. Re-entrancy
// is guarded by an explicit busy flag so overlapping poll triggers are
// no-ops; inter-job processing is serialized with a fixed delay as a
// deliberate throughput throttle against downstream rate limits.
type Worker struct {
	manager  *Manager
	llm      interfaces.LLMService
	analyzer CitationAnalyzer
	searcher interfaces.SearchService
	cfg      common.QueueConfig
	logger   arbor.ILogger

	busy      atomic.Bool
	processed atomic.Uint64
	errors    atomic.Uint64
	now       func() time.Time
}

// NewWorker creates the polling worker.
func NewWorker(manager *Manager, llm interfaces.LLMService, citationAnalyzer CitationAnalyzer, cfg common.QueueConfig, logger arbor.ILogger) *Worker {
	return &Worker{
		manager:  manager,
		llm:      llm,
		analyzer: citationAnalyzer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// SetSearchService installs an optional grounded-search fallback used when
// a response carries no citations of its own.
func (w *Worker) SetSearchService(searcher interfaces.SearchService) {
	w.searcher = searcher
}

// IsBusy reports whether a poll invocation is currently draining.
func (w *Worker) IsBusy() bool {
	return w.busy.Load()
}

func (w *Worker) markBusy() bool {
	return w.busy.CompareAndSwap(false, true)
}

func (w *Worker) release() {
	w.busy.Store(false)
}

// Stats returns the worker counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Processed: w.processed.Load(),
		Errors:    w.errors.Load(),
		Busy:      w.busy.Load(),
	}
}

// Poll drains available jobs for a bounded number of cycles, then yields.
// Overlapping invocations return immediately.
func (w *Worker) Poll(ctx context.Context) {
	if !w.markBusy() {
		w.logger.Debug().Msg("Poll skipped, worker busy")
		return
	}
	defer w.release()

	maxCycles := w.cfg.MaxCycles
	if maxCycles <= 0 {
		maxCycles = 5
	}
	batchSize := w.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	interJobDelay := common.ParseDurationOr(w.cfg.InterJobDelay, 0)

	for cycle := 0; cycle < maxCycles; cycle++ {
		if ctx.Err() != nil {
			return
		}

		jobs, err := w.manager.ClaimBatch(ctx, batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("Batch claim failed")
			return
		}
		if len(jobs) == 0 {
			return
		}

		w.logger.Debug().
			Int("cycle", cycle+1).
			Int("claimed", len(jobs)).
			Msg("Processing claimed batch")

		for i, job := range jobs {
			if i > 0 && interJobDelay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(interJobDelay):
				}
			}
			w.processJob(ctx, job)
		}
	}
}

// processJob executes the job's query and analyzes every citation. Only
// job-level failures (the upstream query itself failing) trigger the
// retry/fail path - individual citation failures are recorded and skipped.
func (w *Worker) processJob(ctx context.Context, job *models.Job) {
	started := w.now()
	w.logger.Info().
		Str("job_id", job.ID).
		Str("query", job.Payload.Query).
		Int("attempt", job.Attempts+1).
		Msg("Processing job")

	result, err := w.executeQuery(ctx, job)
	if err != nil {
		w.errors.Add(1)
		if failErr := w.manager.Fail(ctx, job, err); failErr != nil {
			w.logger.Error().Err(failErr).Str("job_id", job.ID).Msg("Failed to record job failure")
		}
		return
	}

	analyses := w.analyzer.AnalyzeCitations(ctx, job, result.Citations)

	if err := w.manager.Complete(ctx, job); err != nil {
		w.errors.Add(1)
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job completed")
		return
	}

	w.processed.Add(1)
	w.logger.Info().
		Str("job_id", job.ID).
		Int("citations", len(result.Citations)).
		Int("analyses", len(analyses)).
		Dur("duration", w.now().Sub(started)).
		Msg("Job finished")
}

// executeQuery runs the job's query against the LLM platform and derives
// citations and brand mentions from the response.
func (w *Worker) executeQuery(ctx context.Context, job *models.Job) (*models.QueryExecutionResult, error) {
	response, err := w.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: querySystemPrompt(job.Payload)},
		{Role: "user", Content: job.Payload.Query},
	})
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	cites := citations.ExtractCitations(response)
	if len(cites) == 0 && w.searcher != nil {
		cites = w.searchFallback(ctx, job)
	}
	mentions := citations.DetectMentions(response, job.Payload, cites)

	w.logger.Debug().
		Str("job_id", job.ID).
		Int("citations", len(cites)).
		Bool("brand_mentioned", mentions.Brand.Mentioned).
		Msg("Query executed")

	return &models.QueryExecutionResult{
		Platform:     job.Payload.Platform,
		ResponseText: response,
		Citations:    cites,
		Mentions:     mentions,
	}, nil
}

// searchFallback sources citations from grounded web search when the model
// response contained none. Search failure is not a job failure.
func (w *Worker) searchFallback(ctx context.Context, job *models.Job) []models.Citation {
	results, err := w.searcher.Search(ctx, job.Payload.Query)
	if err != nil {
		w.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Search fallback failed")
		return nil
	}

	cites := make([]models.Citation, 0, len(results))
	for i, result := range results {
		normalized, err := common.NormalizeCitationURL(result.URL)
		if err != nil {
			continue
		}
		cites = append(cites, models.Citation{
			URL:      normalized,
			Title:    result.Title,
			Position: i + 1,
			Source:   models.CitationSourceSearch,
		})
	}
	return cites
}

func querySystemPrompt(payload models.QueryPayload) string {
	return fmt.Sprintf(
		"You are a helpful assistant answering a research question. "+
			"Cite your sources as markdown links or a trailing Sources section. "+
			"Platform context: %s.", payload.Platform)
}
