package score

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
)

// fakeLLM returns scripted responses in order, or an error.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeLLM) Chat(_ context.Context, _ []interfaces.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.responses) {
		return "", fmt.Errorf("unexpected call %d", f.calls)
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeLLM) Name() string                        { return "fake" }
func (f *fakeLLM) HealthCheck(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                        { return nil }

func newTestScorer(llm interfaces.LLMService) *Scorer {
	return NewScorer(llm, common.DefaultConfig().Scoring, common.GetLogger())
}

func ptr(v float64) *float64 { return &v }

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name     string
		input    *float64
		expected float64
	}{
		{"legacy scale low", ptr(1), 1},
		{"legacy scale mid", ptr(3), 5},
		{"legacy scale high", ptr(5), 9},
		{"modern scale", ptr(7), 7},
		{"modern scale top", ptr(10), 10},
		{"below range", ptr(0), 5},
		{"above range", ptr(11), 5},
		{"negative", ptr(-3), 5},
		{"missing", nil, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, normalizeScore(tt.input, 5), 0.001)
		})
	}
}

func TestClampSentiment(t *testing.T) {
	assert.InDelta(t, 0.5, clampSentiment(ptr(0.5)), 0.001)
	assert.InDelta(t, 1.0, clampSentiment(ptr(3)), 0.001)
	assert.InDelta(t, -1.0, clampSentiment(ptr(-2)), 0.001)
	assert.InDelta(t, 0.0, clampSentiment(nil), 0.001)
}

func TestExtractJSONFromWrapperText(t *testing.T) {
	wrapped := "Sure, here is the assessment:\n```json\n{\"depth_score\": 8}\n```\nLet me know if you need more."
	raw, err := extractJSON(wrapped)
	require.NoError(t, err)
	assert.JSONEq(t, `{"depth_score": 8}`, raw)

	plain := `Here you go: {"depth_score": 7} hope that helps`
	raw, err = extractJSON(plain)
	require.NoError(t, err)
	assert.JSONEq(t, `{"depth_score": 7}`, raw)

	_, err = extractJSON("no json here at all")
	assert.Error(t, err)
}

func TestScoreQuality(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"depth_score": 8, "uniqueness_score": 4, "optimization_score": 12, "content_type": "article",
		  "has_statistics": true, "has_quotes": false, "has_citations": true, "sentiment": 0.6}`,
	}}
	s := newTestScorer(llm)

	quality := s.ScoreQuality(context.Background(), "page text", models.OnPageSignals{}, models.TechnicalSignals{})

	assert.False(t, quality.Fallback)
	assert.InDelta(t, 8, quality.DepthScore, 0.001)
	assert.InDelta(t, 7, quality.UniquenessScore, 0.001)   // 4 on legacy scale -> 4*2-1
	assert.InDelta(t, 5, quality.OptimizationScore, 0.001) // out of range -> default
	assert.Equal(t, "article", quality.ContentType)
	assert.True(t, quality.HasStatistics)
	assert.True(t, quality.HasCitations)
	assert.InDelta(t, 0.6, quality.Sentiment, 0.001)
}

func TestScoreQualityFallsBackOnTransportError(t *testing.T) {
	s := newTestScorer(&fakeLLM{err: fmt.Errorf("connection refused")})

	quality := s.ScoreQuality(context.Background(), "page text", models.OnPageSignals{}, models.TechnicalSignals{})

	assert.Equal(t, models.DefaultContentQuality(), quality)
}

func TestScoreQualityFallsBackOnMalformedJSON(t *testing.T) {
	s := newTestScorer(&fakeLLM{responses: []string{"I cannot assess this page."}})

	quality := s.ScoreQuality(context.Background(), "page text", models.OnPageSignals{}, models.TechnicalSignals{})

	assert.True(t, quality.Fallback)
	assert.Equal(t, models.DefaultContentQuality(), quality)
}

func TestScoreQualityFallsBackOnInvalidContentType(t *testing.T) {
	s := newTestScorer(&fakeLLM{responses: []string{
		`{"depth_score": 8, "content_type": "advertisement"}`,
	}})

	quality := s.ScoreQuality(context.Background(), "page text", models.OnPageSignals{}, models.TechnicalSignals{})

	assert.Equal(t, models.DefaultContentQuality(), quality)
}

func TestAssessEEAT(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"experience": {"score": 7, "evidence": "first-hand testing"},
		  "expertise": {"score": 3, "evidence": "author bio"},
		  "authoritativeness": {"score": 20, "evidence": "out of range"},
		  "trustworthiness": {"score": 9, "evidence": "https citations"},
		  "overall": 7, "strengths": ["hands-on"], "improvements": ["add sources"]}`,
	}}
	s := newTestScorer(llm)

	quality := models.ContentQuality{DepthScore: 6} // below proxy threshold
	eeat := s.AssessEEAT(context.Background(), "page text", quality)

	assert.False(t, eeat.Proxied)
	assert.False(t, eeat.Fallback)
	assert.InDelta(t, 7, eeat.Experience.Score, 0.001)
	assert.InDelta(t, 5, eeat.Expertise.Score, 0.001) // 3 legacy -> 5
	assert.InDelta(t, 5, eeat.Authoritativeness.Score, 0.001)
	assert.InDelta(t, 9, eeat.Trustworthiness.Score, 0.001)
	assert.Equal(t, []string{"hands-on"}, eeat.Strengths)
	assert.Equal(t, 1, llm.calls)
}

func TestAssessEEATProxyShortCircuit(t *testing.T) {
	llm := &fakeLLM{}
	s := newTestScorer(llm)

	quality := models.ContentQuality{DepthScore: 9, UniquenessScore: 8, OptimizationScore: 7}
	eeat := s.AssessEEAT(context.Background(), "page text", quality)

	assert.True(t, eeat.Proxied)
	assert.Equal(t, 0, llm.calls)
	assert.InDelta(t, 9, eeat.Experience.Score, 0.001)
}

func TestAssessEEATFallsBackOnError(t *testing.T) {
	s := newTestScorer(&fakeLLM{err: fmt.Errorf("timeout")})

	eeat := s.AssessEEAT(context.Background(), "page text", models.ContentQuality{DepthScore: 5})

	assert.Equal(t, models.DefaultEEAT(), eeat)
}
