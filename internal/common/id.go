package common

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// NewJobID generates a unique job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewAnalysisID generates a unique page analysis ID with the "pa_" prefix
func NewAnalysisID() string {
	return "pa_" + uuid.New().String()
}

// NewRunID generates a unique run ID with the "run_" prefix
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// WorkerID identifies this process as a job claimant. Claim ownership lives in
// the store, not in memory, so the ID only needs to survive for the lifetime
// of the process.
func WorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s:%d", hostname, os.Getpid())
}
