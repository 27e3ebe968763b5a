package main

import (
	"encoding/json"
	"fmt"

	"github.com/ternarybob/citare/internal/app"
	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/models"
)

// runAnalyzeURL runs the per-citation pipeline on a single URL and prints
// the resulting PageAnalysis as JSON. No job is enqueued.
func runAnalyzeURL() int {
	application, err := app.New(config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer application.Close()

	job := models.NewJob(common.NewJobID(), common.NewRunID(), models.QueryPayload{
		Platform: *platform,
		Brand: models.Brand{
			Name:   *brandName,
			Domain: *brandDomain,
		},
	}, 1)

	citation := models.Citation{
		URL:      *analyzeURL,
		Position: 1,
		Source:   models.CitationSourceBareURL,
	}

	analysis, err := application.Orchestrator.AnalyzeCitation(application.Context(), job, citation)
	if err != nil {
		logger.Error().Err(err).Msg("Analysis could not be persisted")
		return 1
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode analysis")
		return 1
	}
	fmt.Println(string(out))
	return 0
}

// runAnalyze enqueues a single query, drains the queue once and exits.
// Useful for smoke-testing a configuration without the server.
func runAnalyze() int {
	application, err := app.New(config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer application.Close()

	payload := models.QueryPayload{
		Platform: *platform,
		Query:    *queryText,
		Brand: models.Brand{
			Name:   *brandName,
			Domain: *brandDomain,
		},
	}

	ctx := application.Context()
	job, err := application.QueueManager.Enqueue(ctx, common.NewRunID(), payload, config.Queue.MaxAttempts)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue query")
		return 1
	}

	logger.Info().Str("job_id", job.ID).Str("query", payload.Query).Msg("Query enqueued")

	application.Worker.Poll(ctx)

	stored, err := application.StorageManager.JobStorage().GetJob(ctx, job.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read job result")
		return 1
	}

	analyses, err := application.StorageManager.AnalysisStorage().ListAnalysesByJob(ctx, job.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read analyses")
		return 1
	}

	logger.Info().
		Str("job_id", stored.ID).
		Str("status", string(stored.Status)).
		Int("analyses", len(analyses)).
		Msg("Analysis run finished")

	if stored.Status != models.JobStatusCompleted {
		return 1
	}
	return 0
}
