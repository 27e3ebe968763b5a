package models

import (
	"time"
)

// JobStatus represents the lifecycle state of a queued job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is a unit of queued work: one research query to execute against an LLM
// platform, with every cited page analyzed afterwards.
//
// Lifecycle: created pending by an upstream query-generation step, mutated only
// by the queue manager. The store is the single source of truth for claim
// ownership - a claimant that dies without releasing leaves the job in
// processing until the staleness reclaim forces it back to pending.
type Job struct {
	ID    string `json:"id" badgerhold:"key"`
	RunID string `json:"run_id" badgerholdIndex:"RunID"`

	// Payload is the immutable query snapshot taken at creation time
	Payload QueryPayload `json:"payload"`

	Status      JobStatus `json:"status" badgerholdIndex:"Status"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	ClaimedBy   string    `json:"claimed_by,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	LastError string `json:"last_error,omitempty"`
}

// NewJob creates a pending job for a query payload
func NewJob(id, runID string, payload QueryPayload, maxAttempts int) *Job {
	return &Job{
		ID:          id,
		RunID:       runID,
		Payload:     payload,
		Status:      JobStatusPending,
		MaxAttempts: maxAttempts,
		CreatedAt:   time.Now(),
	}
}

// IsTerminal returns true if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Exhausted returns true once the retry budget is spent
func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// MarkClaimed transitions the job into processing under the given claimant
func (j *Job) MarkClaimed(workerID string, now time.Time) {
	j.Status = JobStatusProcessing
	j.ClaimedBy = workerID
	j.StartedAt = &now
}

// MarkCompleted transitions the job into its completed terminal state
func (j *Job) MarkCompleted(now time.Time) {
	j.Status = JobStatusCompleted
	j.ClaimedBy = ""
	j.CompletedAt = &now
}

// MarkFailed records a failed attempt. The job dead-letters once attempts
// reach the maximum, otherwise it returns to pending for the next poll cycle.
func (j *Job) MarkFailed(errMsg string, now time.Time) {
	j.Attempts++
	j.LastError = errMsg
	j.ClaimedBy = ""
	if j.Attempts >= j.MaxAttempts {
		j.Status = JobStatusFailed
		j.CompletedAt = &now
		return
	}
	j.Status = JobStatusPending
	j.StartedAt = nil
}

// MarkReclaimed forces a stuck processing job back to pending so another
// worker can pick it up. The previous claimant is recorded in the error
// annotation for visibility.
func (j *Job) MarkReclaimed(reason string) {
	j.Status = JobStatusPending
	j.LastError = reason
	j.ClaimedBy = ""
	j.StartedAt = nil
}
