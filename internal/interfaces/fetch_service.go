package interfaces

import (
	"context"
)

// FetchResult is the successful outcome of a tiered fetch
type FetchResult struct {
	HTML       string `json:"html"`
	Method     string `json:"method"` // "basic", "premium", "final"
	StatusCode int    `json:"status_code"`
}

// FetchService resolves a URL to HTML via an escalating sequence of fetch
// strategies. Failures are returned as *fetch.Error values carrying the tier,
// status code and classification.
type FetchService interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}
