package interfaces

import (
	"context"
)

// SearchResult is one ordered web search hit
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchService augments citation sources when a response carries none
type SearchService interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
