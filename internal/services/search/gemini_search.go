package search

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
)

// GeminiSearchService implements the SearchService interface using Gemini
// with the GoogleSearch grounding tool. Grounding chunks from the response
// metadata become the result list.
type GeminiSearchService struct {
	client     *genai.Client
	model      string
	maxResults int
	logger     arbor.ILogger
}

// NewGeminiSearchService builds a grounded search service on top of an
// existing Gemini client.
func NewGeminiSearchService(client *genai.Client, geminiCfg common.GeminiConfig, searchCfg common.SearchConfig, logger arbor.ILogger) *GeminiSearchService {
	model := geminiCfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	maxResults := searchCfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &GeminiSearchService{
		client:     client,
		model:      model,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Search runs the query through Gemini with web grounding enabled and
// returns the grounded sources in order.
func (s *GeminiSearchService) Search(ctx context.Context, query string) ([]interfaces.SearchResult, error) {
	searchTool := &genai.Tool{GoogleSearch: &genai.GoogleSearch{}}
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{searchTool},
	}

	prompt := fmt.Sprintf("Search the web for: %s\nSummarize the most relevant findings with sources.", query)

	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("grounded search failed: %w", err)
	}

	var results []interfaces.SearchResult
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		gm := resp.Candidates[0].GroundingMetadata
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			results = append(results, interfaces.SearchResult{
				Title: chunk.Web.Title,
				URL:   chunk.Web.URI,
			})
			if len(results) >= s.maxResults {
				break
			}
		}
	}

	s.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("Grounded search completed")

	return results, nil
}
