package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
)

// Manager owns job state transitions. Claims, completions, failures and
// staleness reclaims all go through the store so ownership survives process
// restarts.
type Manager struct {
	jobs       interfaces.JobStorage
	logger     arbor.ILogger
	workerID   string
	staleAfter time.Duration
	now        func() time.Time
}

// NewManager creates the queue manager.
func NewManager(jobs interfaces.JobStorage, cfg common.QueueConfig, logger arbor.ILogger) *Manager {
	return &Manager{
		jobs:       jobs,
		logger:     logger,
		workerID:   common.WorkerID(),
		staleAfter: common.ParseDurationOr(cfg.StaleAfter, 5*time.Minute),
		now:        time.Now,
	}
}

// ClaimBatch reclaims stale jobs, then atomically moves up to n pending jobs
// (oldest-created-first, attempts remaining) into processing under this
// worker's claim.
func (m *Manager) ClaimBatch(ctx context.Context, n int) ([]*models.Job, error) {
	if reclaimed, err := m.ReclaimStale(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("Stale job reclaim failed")
	} else if reclaimed > 0 {
		m.logger.Info().Int("count", reclaimed).Msg("Reclaimed stale processing jobs")
	}

	candidates, err := m.jobs.ClaimablePending(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimable jobs: %w", err)
	}

	now := m.now()
	var claimed []*models.Job
	for _, job := range candidates {
		job.MarkClaimed(m.workerID, now)
		if err := m.jobs.SaveJob(ctx, job); err != nil {
			m.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to claim job")
			continue
		}
		claimed = append(claimed, job)
	}

	return claimed, nil
}

// Complete transitions a job into its completed terminal state.
func (m *Manager) Complete(ctx context.Context, job *models.Job) error {
	job.MarkCompleted(m.now())
	if err := m.jobs.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("failed to complete job %s: %w", job.ID, err)
	}
	m.logger.Info().Str("job_id", job.ID).Msg("Job completed")
	return nil
}

// Fail records a failed attempt. The job dead-letters at max attempts,
// otherwise it returns to pending for the next poll cycle - there is no
// in-process backoff beyond the poll interval.
func (m *Manager) Fail(ctx context.Context, job *models.Job, jobErr error) error {
	job.MarkFailed(jobErr.Error(), m.now())
	if err := m.jobs.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("failed to record job failure for %s: %w", job.ID, err)
	}

	if job.Status == models.JobStatusFailed {
		m.logger.Error().
			Str("job_id", job.ID).
			Int("attempts", job.Attempts).
			Str("error", job.LastError).
			Msg("Job exhausted retry budget, dead-lettered")
	} else {
		m.logger.Warn().
			Str("job_id", job.ID).
			Int("attempts", job.Attempts).
			Msg("Job attempt failed, returned to pending")
	}
	return nil
}

// ReclaimStale forces jobs stuck in processing past the staleness window
// back to pending, regardless of which claimant held them. Returns the
// number of jobs reclaimed.
func (m *Manager) ReclaimStale(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.staleAfter)
	stale, err := m.jobs.StaleProcessing(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale jobs: %w", err)
	}

	reclaimed := 0
	for _, job := range stale {
		previousClaimant := job.ClaimedBy
		job.MarkReclaimed(fmt.Sprintf("reclaimed: stale in processing beyond %s (claimant %s)", m.staleAfter, previousClaimant))
		if err := m.jobs.SaveJob(ctx, job); err != nil {
			m.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to reclaim stale job")
			continue
		}
		m.logger.Warn().
			Str("job_id", job.ID).
			Str("previous_claimant", previousClaimant).
			Msg("Reclaimed stale job")
		reclaimed++
	}

	return reclaimed, nil
}

// Enqueue persists a new pending job for a query payload.
func (m *Manager) Enqueue(ctx context.Context, runID string, payload models.QueryPayload, maxAttempts int) (*models.Job, error) {
	job := models.NewJob(common.NewJobID(), runID, payload, maxAttempts)
	job.CreatedAt = m.now()
	if err := m.jobs.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	m.logger.Info().
		Str("job_id", job.ID).
		Str("query", payload.Query).
		Msg("Job enqueued")
	return job, nil
}

// RecoverOnStartup forces any jobs left in processing by a previous process
// back to pending. Runs once before polling starts.
func (m *Manager) RecoverOnStartup(ctx context.Context) (int, error) {
	return m.jobs.ResetProcessing(ctx, "reset: found in processing at startup, claimant presumed dead")
}
