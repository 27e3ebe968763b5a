package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
	"github.com/ternarybob/citare/internal/queue"
)

type memJobs struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: make(map[string]*models.Job)}
}

func (m *memJobs) SaveJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *memJobs) GetJob(_ context.Context, jobID string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	clone := *job
	return &clone, nil
}

func (m *memJobs) ClaimablePending(_ context.Context, limit int) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Job
	for _, job := range m.jobs {
		if job.Status == models.JobStatusPending && !job.Exhausted() {
			clone := *job
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memJobs) StaleProcessing(_ context.Context, _ time.Time) ([]*models.Job, error) {
	return nil, nil
}

func (m *memJobs) ListJobsByStatus(_ context.Context, status models.JobStatus, limit int) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Job
	for _, job := range m.jobs {
		if job.Status == status {
			clone := *job
			out = append(out, &clone)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memJobs) CountJobsByStatus(_ context.Context, status models.JobStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, job := range m.jobs {
		if job.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memJobs) ResetProcessing(_ context.Context, _ string) (int, error) { return 0, nil }
func (m *memJobs) DeleteJob(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, jobID)
	return nil
}

type memAnalyses struct {
	count int
}

func (m *memAnalyses) SaveAnalysis(_ context.Context, _ *models.PageAnalysis) error { return nil }
func (m *memAnalyses) GetAnalysis(_ context.Context, _ string) (*models.PageAnalysis, error) {
	return nil, fmt.Errorf("not found")
}
func (m *memAnalyses) ListAnalysesByJob(_ context.Context, _ string) ([]*models.PageAnalysis, error) {
	return nil, nil
}
func (m *memAnalyses) CountAnalyses(_ context.Context) (int, error) { return m.count, nil }

type noopLLM struct{}

func (noopLLM) Chat(_ context.Context, _ []interfaces.Message) (string, error) {
	return "no sources here", nil
}
func (noopLLM) Name() string                        { return "noop" }
func (noopLLM) HealthCheck(_ context.Context) error { return nil }
func (noopLLM) Close() error                        { return nil }

type noopAnalyzer struct{}

func (noopAnalyzer) AnalyzeCitations(_ context.Context, _ *models.Job, _ []models.Citation) []*models.PageAnalysis {
	return nil
}

func newTestHandler(t *testing.T) (*QueueHandler, *memJobs) {
	t.Helper()
	cfg := common.DefaultConfig()
	logger := common.GetLogger()
	store := newMemJobs()
	manager := queue.NewManager(store, cfg.Queue, logger)
	worker := queue.NewWorker(manager, noopLLM{}, noopAnalyzer{}, cfg.Queue, logger)
	return NewQueueHandler(worker, manager, store, &memAnalyses{count: 7}, cfg, logger), store
}

func TestStatusReportsCountsAndWorker(t *testing.T) {
	h, store := newTestHandler(t)

	job := models.NewJob("job_1", "run_1", models.QueryPayload{Query: "best crm"}, 3)
	require.NoError(t, store.SaveJob(context.Background(), job))

	rec := httptest.NewRecorder()
	h.StatusHandler(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs     map[string]int    `json:"jobs"`
		Analyses int               `json:"analyses"`
		Worker   queue.WorkerStats `json:"worker"`
		Version  string            `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Jobs["pending"])
	assert.Equal(t, 0, body.Jobs["processing"])
	assert.Equal(t, 7, body.Analyses)
	assert.False(t, body.Worker.Busy)
	assert.NotEmpty(t, body.Version)
}

func TestTriggerRequiresPost(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.TriggerHandler(rec, httptest.NewRequest(http.MethodGet, "/api/trigger", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.TriggerHandler(rec, httptest.NewRequest(http.MethodPost, "/api/trigger", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestEnqueueJob(t *testing.T) {
	h, store := newTestHandler(t)

	payload := `{"query": {"query": "best crm for startups", "platform": "claude", "brand": {"name": "Acme", "domain": "acme.com"}}}`
	rec := httptest.NewRecorder()
	h.JobsHandler(rec, httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(payload)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, "best crm for startups", job.Payload.Query)

	count, err := store.CountJobsByStatus(context.Background(), models.JobStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEnqueueRejectsEmptyQuery(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.JobsHandler(rec, httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"query": {}}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
