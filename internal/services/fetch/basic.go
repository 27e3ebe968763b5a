package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchBasic performs a plain HTTP GET with no script execution. Resource
// blocking is implicit: nothing beyond the document itself is requested.
func (s *Service) fetchBasic(ctx context.Context, spec tierSpec, rawURL string) (string, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, spec.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	// Cap reads to keep a hostile page from exhausting memory.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}
