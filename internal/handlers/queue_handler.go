package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
	"github.com/ternarybob/citare/internal/queue"
)

// QueueHandler exposes the operational surface of the job queue: manual
// trigger, status counters and job submission. None of these carry business
// logic - the worker owns processing.
type QueueHandler struct {
	worker    *queue.Worker
	manager   *queue.Manager
	jobs      interfaces.JobStorage
	analyses  interfaces.AnalysisStorage
	cfg       *common.Config
	logger    arbor.ILogger
	startedAt time.Time
}

// NewQueueHandler creates the queue handler.
func NewQueueHandler(worker *queue.Worker, manager *queue.Manager, jobs interfaces.JobStorage, analyses interfaces.AnalysisStorage, cfg *common.Config, logger arbor.ILogger) *QueueHandler {
	return &QueueHandler{
		worker:    worker,
		manager:   manager,
		jobs:      jobs,
		analyses:  analyses,
		cfg:       cfg,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// TriggerHandler kicks the queue poll loop. If the worker is already busy
// the trigger is a no-op, mirroring overlapping schedule fires.
func (h *QueueHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Poll runs detached; overlapping triggers while busy are no-ops.
	alreadyBusy := h.worker.IsBusy()
	if !alreadyBusy {
		go h.worker.Poll(context.Background())
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":       "triggered",
		"already_busy": alreadyBusy,
	})
}

// StatusHandler reports job counts by status, worker counters and uptime.
func (h *QueueHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	counts := make(map[string]int)
	for _, status := range []models.JobStatus{
		models.JobStatusPending,
		models.JobStatusProcessing,
		models.JobStatusCompleted,
		models.JobStatusFailed,
	} {
		count, err := h.jobs.CountJobsByStatus(r.Context(), status)
		if err != nil {
			h.logger.Error().Err(err).Str("status", string(status)).Msg("Failed to count jobs")
			writeError(w, http.StatusInternalServerError, "failed to count jobs")
			return
		}
		counts[string(status)] = count
	}

	analyses, err := h.analyses.CountAnalyses(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count analyses")
		writeError(w, http.StatusInternalServerError, "failed to count analyses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":     counts,
		"analyses": analyses,
		"worker":   h.worker.Stats(),
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
		"version":  common.GetVersion(),
	})
}

// HealthHandler reports liveness.
func (h *QueueHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   common.GetVersion(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// enqueueRequest is the POST /api/jobs payload.
type enqueueRequest struct {
	RunID string              `json:"run_id,omitempty"`
	Query models.QueryPayload `json:"query"`
}

// JobsHandler accepts new jobs (POST) and lists jobs by status (GET).
func (h *QueueHandler) JobsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.enqueueJob(w, r)
	case http.MethodGet:
		h.listJobs(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *QueueHandler) enqueueJob(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.RunID == "" {
		req.RunID = common.NewRunID()
	}

	job, err := h.manager.Enqueue(r.Context(), req.RunID, req.Query, h.cfg.Queue.MaxAttempts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to enqueue job")
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

func (h *QueueHandler) listJobs(w http.ResponseWriter, r *http.Request) {
	status := models.JobStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.JobStatusPending
	}

	jobs, err := h.jobs.ListJobsByStatus(r.Context(), status, 100)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list jobs")
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"count":  len(jobs),
		"jobs":   jobs,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
