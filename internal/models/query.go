package models

// Brand identifies a tracked brand by display name and primary domain
type Brand struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// QueryPayload is the immutable query snapshot carried by a job
type QueryPayload struct {
	Platform    string   `json:"platform"` // e.g. "chatgpt", "claude", "gemini"
	Query       string   `json:"query"`
	Brand       Brand    `json:"brand"`
	Competitors []Brand  `json:"competitors,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// MentionType classifies how a brand appears in a response, strongest first
type MentionType string

const (
	MentionRecommendation MentionType = "recommendation"
	MentionFeature        MentionType = "feature"
	MentionCitationOnly   MentionType = "citation"
	MentionBare           MentionType = "mention"
	MentionNone           MentionType = "none"
)

// BrandMention reports whether and how one brand surfaced in a response
type BrandMention struct {
	Brand       Brand       `json:"brand"`
	Mentioned   bool        `json:"mentioned"`
	Type        MentionType `json:"type"`
	ViaCitation bool        `json:"via_citation"` // Matched through a cited hostname
}

// MentionSummary aggregates brand and competitor mention detection
type MentionSummary struct {
	Brand       BrandMention   `json:"brand"`
	Competitors []BrandMention `json:"competitors,omitempty"`
}

// ResponseClassification carries lightweight metadata about the response
type ResponseClassification struct {
	Topic       string  `json:"topic,omitempty"`
	Intent      string  `json:"intent,omitempty"`
	FunnelStage string  `json:"funnel_stage,omitempty"`
	Sentiment   float64 `json:"sentiment"` // [-1, 1]
}

// QueryExecutionResult is the ephemeral outcome of executing one query
// against an LLM platform. It is consumed by the analyzer and never persisted
// standalone - only the derived PageAnalysis records are stored.
type QueryExecutionResult struct {
	Platform       string                 `json:"platform"`
	ResponseText   string                 `json:"response_text"`
	Citations      []Citation             `json:"citations"`
	Mentions       MentionSummary         `json:"mentions"`
	Classification ResponseClassification `json:"classification"`
}
