package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// JobStorage implements the JobStorage interface for Badger
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStorage) SaveJob(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("job not found: %s", jobID)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *JobStorage) ClaimablePending(ctx context.Context, limit int) ([]*models.Job, error) {
	var jobs []models.Job
	// BadgerHold can't compare two fields of the same record, so the
	// attempts-remaining filter runs as a match function.
	query := badgerhold.Where("Status").Eq(models.JobStatusPending).
		And("Attempts").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
		job, ok := ra.Record().(*models.Job)
		if !ok {
			return false, fmt.Errorf("unexpected record type %T", ra.Record())
		}
		return job.Attempts < job.MaxAttempts, nil
	}).
		SortBy("CreatedAt")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}

	result := make([]*models.Job, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *JobStorage) StaleProcessing(ctx context.Context, cutoff time.Time) ([]*models.Job, error) {
	var jobs []models.Job
	err := s.db.Store().Find(&jobs,
		badgerhold.Where("Status").Eq(models.JobStatusProcessing).
			And("StartedAt").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
			job, ok := ra.Record().(*models.Job)
			if !ok {
				return false, fmt.Errorf("unexpected record type %T", ra.Record())
			}
			return job.StartedAt != nil && job.StartedAt.Before(cutoff), nil
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to query stale jobs: %w", err)
	}

	result := make([]*models.Job, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *JobStorage) ListJobsByStatus(ctx context.Context, status models.JobStatus, limit int) ([]*models.Job, error) {
	var jobs []models.Job
	query := badgerhold.Where("Status").Eq(status).SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs by status: %w", err)
	}

	result := make([]*models.Job, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *JobStorage) CountJobsByStatus(ctx context.Context, status models.JobStatus) (int, error) {
	count, err := s.db.Store().Count(&models.Job{}, badgerhold.Where("Status").Eq(status))
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *JobStorage) ResetProcessing(ctx context.Context, reason string) (int, error) {
	var jobs []models.Job
	if err := s.db.Store().Find(&jobs, badgerhold.Where("Status").Eq(models.JobStatusProcessing)); err != nil {
		return 0, err
	}

	count := 0
	for i := range jobs {
		jobs[i].MarkReclaimed(reason)
		if err := s.SaveJob(ctx, &jobs[i]); err != nil {
			s.logger.Warn().Err(err).Str("job_id", jobs[i].ID).Msg("Failed to reset processing job")
			continue
		}
		count++
	}
	return count, nil
}

func (s *JobStorage) DeleteJob(ctx context.Context, jobID string) error {
	if err := s.db.Store().Delete(jobID, &models.Job{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}
