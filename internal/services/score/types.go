package score

// Payloads decoded from model completions. Every field is a pointer so a
// missing field is distinguishable from a zero value; normalization maps
// missing or out-of-range fields to component defaults instead of trusting
// the shape of external JSON.

type qualityPayload struct {
	DepthScore        *float64 `json:"depth_score"`
	UniquenessScore   *float64 `json:"uniqueness_score"`
	OptimizationScore *float64 `json:"optimization_score"`
	ContentType       string   `json:"content_type" validate:"omitempty,oneof=article product landing documentation listicle comparison other"`
	HasStatistics     *bool    `json:"has_statistics"`
	HasQuotes         *bool    `json:"has_quotes"`
	HasCitations      *bool    `json:"has_citations"`
	Sentiment         *float64 `json:"sentiment"`
}

type eeatDimensionPayload struct {
	Score    *float64 `json:"score"`
	Evidence string   `json:"evidence"`
}

type eeatPayload struct {
	Experience        *eeatDimensionPayload `json:"experience"`
	Expertise         *eeatDimensionPayload `json:"expertise"`
	Authoritativeness *eeatDimensionPayload `json:"authoritativeness"`
	Trustworthiness   *eeatDimensionPayload `json:"trustworthiness"`
	Overall           *float64              `json:"overall"`
	Strengths         []string              `json:"strengths"`
	Improvements      []string              `json:"improvements"`
}
