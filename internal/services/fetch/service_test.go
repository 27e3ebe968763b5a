package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/models"
)

func testService(t *testing.T) *Service {
	t.Helper()
	cfg := common.DefaultConfig().Fetch
	cfg.MinBodyBytes = 10
	return NewFetchService(cfg, common.GetLogger())
}

// tierResponse scripts one tier attempt for the fake runner.
type tierResponse struct {
	html   string
	status int
	err    error
}

func scriptTiers(s *Service, responses map[string]tierResponse) *[]string {
	attempted := &[]string{}
	s.run = func(_ context.Context, spec tierSpec, _ string) (string, int, error) {
		*attempted = append(*attempted, spec.name)
		r, ok := responses[spec.name]
		if !ok {
			return "", 0, fmt.Errorf("unscripted tier %s", spec.name)
		}
		return r.html, r.status, r.err
	}
	return attempted
}

func TestFetch404IsTerminal(t *testing.T) {
	s := testService(t)
	attempted := scriptTiers(s, map[string]tierResponse{
		models.FetchMethodBasic: {status: 404},
	})

	result, err := s.Fetch(context.Background(), "https://example.com/missing")
	require.Error(t, err)
	assert.Nil(t, result)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindNotFound, fe.Kind)
	assert.Equal(t, 404, fe.StatusCode)
	assert.Equal(t, []string{"basic"}, *attempted)
}

func TestFetchSPAFingerprintEscalates(t *testing.T) {
	s := testService(t)
	spaHTML := `<html><body><div id="root"></div><script>window.__NEXT_DATA__={}</script></body></html>`
	fullHTML := `<html><body><article>` + strings.Repeat("rendered content ", 20) + `</article></body></html>`

	attempted := scriptTiers(s, map[string]tierResponse{
		models.FetchMethodBasic:   {html: spaHTML, status: 200},
		models.FetchMethodPremium: {html: fullHTML, status: 200},
	})

	result, err := s.Fetch(context.Background(), "https://example.com/app-page")
	require.NoError(t, err)
	assert.Equal(t, "premium", result.Method)
	assert.Equal(t, fullHTML, result.HTML)
	assert.Equal(t, []string{"basic", "premium"}, *attempted)
}

func TestFetch403Escalates(t *testing.T) {
	s := testService(t)
	html := `<html><body>` + strings.Repeat("content ", 10) + `</body></html>`

	attempted := scriptTiers(s, map[string]tierResponse{
		models.FetchMethodBasic:   {status: 403},
		models.FetchMethodPremium: {html: html, status: 200},
	})

	result, err := s.Fetch(context.Background(), "https://example.com/guarded")
	require.NoError(t, err)
	assert.Equal(t, "premium", result.Method)
	assert.Equal(t, []string{"basic", "premium"}, *attempted)
}

func TestFinalTierOnlyAfterPremiumTimeout(t *testing.T) {
	s := testService(t)
	html := `<html><body>` + strings.Repeat("content ", 10) + `</body></html>`

	attempted := scriptTiers(s, map[string]tierResponse{
		models.FetchMethodBasic:   {status: 500},
		models.FetchMethodPremium: {err: context.DeadlineExceeded},
		models.FetchMethodFinal:   {html: html, status: 200},
	})

	result, err := s.Fetch(context.Background(), "https://example.com/slow")
	require.NoError(t, err)
	assert.Equal(t, "final", result.Method)
	assert.Equal(t, []string{"basic", "premium", "final"}, *attempted)
}

func TestFinalTierSkippedOnNonTimeoutPremiumFailure(t *testing.T) {
	s := testService(t)

	attempted := scriptTiers(s, map[string]tierResponse{
		models.FetchMethodBasic:   {status: 500},
		models.FetchMethodPremium: {err: fmt.Errorf("connection refused")},
	})

	_, err := s.Fetch(context.Background(), "https://example.com/broken")
	require.Error(t, err)
	assert.Equal(t, []string{"basic", "premium"}, *attempted)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindNetwork, fe.Kind)
}

func TestFetchBasicTierAgainstServer(t *testing.T) {
	body := `<html><body><article>` + strings.Repeat("static page content ", 20) + `</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	s := testService(t)
	result, err := s.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "basic", result.Method)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, body, result.HTML)
}

func TestClassifySkips(t *testing.T) {
	skipped := []string{
		"https://www.google.com/search?q=best+crm",
		"https://twitter.com/someone/status/1",
		"https://example.com/whitepaper.pdf",
		"https://example.com/404",
		"https://example.com/error/page",
		"ftp://example.com/file",
	}
	for _, u := range skipped {
		assert.NotNil(t, Classify(u), "expected skip: %s", u)
	}

	allowed := []string{
		"https://example.com/blog/best-crm-tools",
		"https://example.com/404-test",
		"https://docs.google.com/document/d/abc",
	}
	for _, u := range allowed {
		assert.Nil(t, Classify(u), "expected fetchable: %s", u)
	}
}

func TestLooksLikeSPA(t *testing.T) {
	assert.True(t, LooksLikeSPA(`<html><body><div id="root"></div></body></html>`))
	assert.True(t, LooksLikeSPA(`<html><body><script>window.__NUXT__={}</script></body></html>`))

	article := `<html><body><article>` + strings.Repeat("plenty of server rendered words ", 30) + `</article></body></html>`
	assert.False(t, LooksLikeSPA(article))
}
