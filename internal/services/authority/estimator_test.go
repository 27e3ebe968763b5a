package authority

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/citare/internal/common"
)

func newTestEstimator(t *testing.T, minInterval string) *Estimator {
	t.Helper()
	e := NewEstimator(common.AuthorityConfig{MinInterval: minInterval}, common.GetLogger())
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEstimateOverrideDomains(t *testing.T) {
	e := newTestEstimator(t, "")

	da, err := e.Estimate(context.Background(), "www.wikipedia.org")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, da.Authority, 95)
	assert.LessOrEqual(t, da.Authority, 100)
	assert.Equal(t, 0, da.SpamScore)
}

func TestEstimateTLDBrackets(t *testing.T) {
	e := newTestEstimator(t, "")

	gov, err := e.Estimate(context.Background(), "nih.gov")
	require.NoError(t, err)
	com, err := e.Estimate(context.Background(), "randomstartupname.com")
	require.NoError(t, err)

	assert.Greater(t, gov.Authority, com.Authority)
	assert.Less(t, gov.SpamScore, com.SpamScore)
}

func TestEstimateIsDeterministicPerDomain(t *testing.T) {
	e := newTestEstimator(t, "")

	first, err := e.Estimate(context.Background(), "example.com")
	require.NoError(t, err)
	second, err := e.Estimate(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEstimateDiffersWithinBracket(t *testing.T) {
	e := newTestEstimator(t, "")

	a, err := e.Estimate(context.Background(), "somevendorsite.com")
	require.NoError(t, err)
	b, err := e.Estimate(context.Background(), "othervendorsite.com")
	require.NoError(t, err)

	assert.NotEqual(t, a.BacklinkCount, b.BacklinkCount)
}

func TestEstimateBounds(t *testing.T) {
	e := newTestEstimator(t, "")

	for _, domain := range []string{"a.gov", "wikipedia.org", "x.io", "tiny.co"} {
		da, err := e.Estimate(context.Background(), domain)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, da.Authority, 1, domain)
		assert.LessOrEqual(t, da.Authority, 100, domain)
		assert.GreaterOrEqual(t, da.PageAuthority, 1, domain)
		assert.LessOrEqual(t, da.PageAuthority, 100, domain)
	}
}

func TestEstimateSerializedWithSpacing(t *testing.T) {
	e := newTestEstimator(t, "50ms")

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Estimate(context.Background(), "example.com")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Three serialized requests with 50ms spacing cannot finish instantly.
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestEstimateHonorsContext(t *testing.T) {
	e := newTestEstimator(t, "1h")

	// First request occupies the worker's rate slot.
	go func() { _, _ = e.Estimate(context.Background(), "first.com") }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := e.Estimate(ctx, "second.com")
	assert.Error(t, err)
}
