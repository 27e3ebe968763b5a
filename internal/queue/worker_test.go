package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
)

type scriptedLLM struct {
	response string
	err      error
	calls    int
}

func (s *scriptedLLM) Chat(_ context.Context, _ []interfaces.Message) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *scriptedLLM) Name() string                        { return "scripted" }
func (s *scriptedLLM) HealthCheck(_ context.Context) error { return nil }
func (s *scriptedLLM) Close() error                        { return nil }

type recordingAnalyzer struct {
	mu       sync.Mutex
	received [][]models.Citation
}

func (r *recordingAnalyzer) AnalyzeCitations(_ context.Context, _ *models.Job, cites []models.Citation) []*models.PageAnalysis {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, cites)
	out := make([]*models.PageAnalysis, len(cites))
	for i := range cites {
		out[i] = &models.PageAnalysis{ID: fmt.Sprintf("pa_%d", i)}
	}
	return out
}

func newTestWorker(store *memJobs, llm interfaces.LLMService, an CitationAnalyzer) *Worker {
	m := NewManager(store, testQueueConfig(), common.GetLogger())
	return NewWorker(m, llm, an, testQueueConfig(), common.GetLogger())
}

type scriptedSearch struct {
	results []interfaces.SearchResult
	err     error
	calls   int
}

func (s *scriptedSearch) Search(_ context.Context, _ string) ([]interfaces.SearchResult, error) {
	s.calls++
	return s.results, s.err
}

func TestPollProcessesJobToCompletion(t *testing.T) {
	store := newMemJobs()
	seedJob(t, store, "job_1", time.Now().Add(-time.Minute))

	llm := &scriptedLLM{response: `The strongest option is [Acme](https://acme.com/crm).`}
	an := &recordingAnalyzer{}
	w := newTestWorker(store, llm, an)

	w.Poll(context.Background())

	stored, err := store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)

	require.Len(t, an.received, 1)
	require.Len(t, an.received[0], 1)
	assert.Equal(t, "https://acme.com/crm", an.received[0][0].URL)

	stats := w.Stats()
	assert.Equal(t, uint64(1), stats.Processed)
	assert.Equal(t, uint64(0), stats.Errors)
	assert.False(t, stats.Busy)
}

func TestPollFailsJobOnQueryError(t *testing.T) {
	store := newMemJobs()
	seedJob(t, store, "job_1", time.Now().Add(-time.Minute))

	llm := &scriptedLLM{err: fmt.Errorf("model unavailable")}
	an := &recordingAnalyzer{}
	w := newTestWorker(store, llm, an)

	w.Poll(context.Background())

	stored, err := store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	// Attempts exhaust within one poll because the failed job returns to
	// pending and later drain cycles re-claim it.
	assert.Equal(t, models.JobStatusFailed, stored.Status)
	assert.Equal(t, 3, stored.Attempts)
	assert.Contains(t, stored.LastError, "model unavailable")
	assert.Empty(t, an.received)
	assert.Equal(t, uint64(3), w.Stats().Errors)
}

func TestPollReentrancyIsNoOp(t *testing.T) {
	store := newMemJobs()
	seedJob(t, store, "job_1", time.Now().Add(-time.Minute))

	llm := &scriptedLLM{response: "no citations here"}
	w := newTestWorker(store, llm, &recordingAnalyzer{})

	require.True(t, w.markBusy())
	w.Poll(context.Background())

	stored, err := store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, stored.Status)
	assert.Equal(t, 0, llm.calls)

	w.release()
	w.Poll(context.Background())
	stored, err = store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
}

func TestPollDrainsBoundedCycles(t *testing.T) {
	store := newMemJobs()
	base := time.Now().Add(-time.Hour)
	// More jobs than max_cycles * batch_size can drain in one poll.
	total := 30
	for i := 0; i < total; i++ {
		seedJob(t, store, fmt.Sprintf("job_%02d", i), base.Add(time.Duration(i)*time.Second))
	}

	llm := &scriptedLLM{response: "answer with no sources"}
	w := newTestWorker(store, llm, &recordingAnalyzer{})

	w.Poll(context.Background())

	completed, err := store.CountJobsByStatus(context.Background(), models.JobStatusCompleted)
	require.NoError(t, err)
	pending, err := store.CountJobsByStatus(context.Background(), models.JobStatusPending)
	require.NoError(t, err)

	// 5 cycles x 5 batch = 25 jobs per poll invocation.
	assert.Equal(t, 25, completed)
	assert.Equal(t, 5, pending)
}

func TestPollStopsWhenQueueEmpty(t *testing.T) {
	store := newMemJobs()
	llm := &scriptedLLM{response: "unused"}
	w := newTestWorker(store, llm, &recordingAnalyzer{})

	w.Poll(context.Background())
	assert.Equal(t, 0, llm.calls)
}

func TestSearchFallbackFillsMissingCitations(t *testing.T) {
	store := newMemJobs()
	seedJob(t, store, "job_1", time.Now().Add(-time.Minute))

	llm := &scriptedLLM{response: "The best tool depends on your team size and budget."}
	an := &recordingAnalyzer{}
	search := &scriptedSearch{results: []interfaces.SearchResult{
		{Title: "Acme CRM review", URL: "https://reviews.example/acme?ref=abc"},
		{Title: "", URL: "ftp://not-a-web-url"},
	}}
	w := newTestWorker(store, llm, an)
	w.SetSearchService(search)

	w.Poll(context.Background())

	assert.Equal(t, 1, search.calls)
	require.Len(t, an.received, 1)
	require.Len(t, an.received[0], 1)
	assert.Equal(t, "https://reviews.example/acme", an.received[0][0].URL)
	assert.Equal(t, models.CitationSourceSearch, an.received[0][0].Source)
}

func TestSearchFallbackSkippedWhenResponseHasCitations(t *testing.T) {
	store := newMemJobs()
	seedJob(t, store, "job_1", time.Now().Add(-time.Minute))

	llm := &scriptedLLM{response: `See [Acme](https://acme.com/crm) for details.`}
	search := &scriptedSearch{results: []interfaces.SearchResult{{URL: "https://unused.example"}}}
	w := newTestWorker(store, llm, &recordingAnalyzer{})
	w.SetSearchService(search)

	w.Poll(context.Background())
	assert.Equal(t, 0, search.calls)
}
