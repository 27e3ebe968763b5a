package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/citare/internal/models"
)

// JobStorage persists Job records. The store is the single source of truth
// for claim ownership; no in-memory locks survive a process restart.
type JobStorage interface {
	SaveJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, jobID string) (*models.Job, error)

	// ClaimablePending returns up to limit pending jobs with remaining
	// attempts, ordered oldest-created-first.
	ClaimablePending(ctx context.Context, limit int) ([]*models.Job, error)

	// StaleProcessing returns processing jobs whose StartedAt is older than
	// the cutoff, regardless of claimant.
	StaleProcessing(ctx context.Context, cutoff time.Time) ([]*models.Job, error)

	ListJobsByStatus(ctx context.Context, status models.JobStatus, limit int) ([]*models.Job, error)
	CountJobsByStatus(ctx context.Context, status models.JobStatus) (int, error)

	// ResetProcessing forces every processing job back to pending. Used for
	// crash recovery on startup. Returns the number of jobs reset.
	ResetProcessing(ctx context.Context, reason string) (int, error)

	DeleteJob(ctx context.Context, jobID string) error
}

// AnalysisStorage persists PageAnalysis records append-only
type AnalysisStorage interface {
	SaveAnalysis(ctx context.Context, analysis *models.PageAnalysis) error
	GetAnalysis(ctx context.Context, id string) (*models.PageAnalysis, error)
	ListAnalysesByJob(ctx context.Context, jobID string) ([]*models.PageAnalysis, error)
	CountAnalyses(ctx context.Context) (int, error)
}

// StorageManager provides access to all storage implementations
type StorageManager interface {
	JobStorage() JobStorage
	AnalysisStorage() AnalysisStorage

	// Maintenance runs store housekeeping (value-log garbage collection)
	Maintenance(ctx context.Context) error

	Close() error
}
