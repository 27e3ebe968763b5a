package models

import (
	"time"
)

// Analysis record statuses. Records are append-only: re-analysis creates a new
// record rather than mutating an existing one.
const (
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusWithErrors = "completed_with_errors"
)

// Fetch methods recorded on a CrawlOutcome
const (
	FetchMethodBasic   = "basic"
	FetchMethodPremium = "premium"
	FetchMethodFinal   = "final"
	FetchMethodNone    = "none"
)

// Crawl error classifications
const (
	CrawlErrorNone     = ""
	CrawlErrorSkipped  = "skipped"   // Pre-flight classifier rejected the URL
	CrawlErrorNotFound = "not_found" // 404, terminal at any tier
	CrawlErrorClient   = "client"    // Other 4xx
	CrawlErrorServer   = "server"    // 5xx or transport failure
	CrawlErrorBlocked  = "blocked"   // Anti-scraping protection suspected
)

// Content type classifications returned by the semantic scorer
const (
	ContentTypeArticle    = "article"
	ContentTypeProduct    = "product"
	ContentTypeLanding    = "landing"
	ContentTypeDocs       = "documentation"
	ContentTypeListicle   = "listicle"
	ContentTypeComparison = "comparison"
	ContentTypeOther      = "other"
)

// TechnicalSignals are deterministic structural facts about the fetched page
type TechnicalSignals struct {
	IsCrawlable           bool     `json:"is_crawlable"`
	HasSchemaMarkup       bool     `json:"has_schema_markup"`
	SchemaTypes           []string `json:"schema_types,omitempty"`
	HeadingStructureScore float64  `json:"heading_structure_score"` // [1,10]
	HasARIA               bool     `json:"has_aria"`
	ARIAAttributes        []string `json:"aria_attributes,omitempty"` // Suffixes: label, hidden, ...
	PublishDate           string   `json:"publish_date,omitempty"`
	ModifiedDate          string   `json:"modified_date,omitempty"`
	MobileFriendly        bool     `json:"mobile_friendly"`
	Language              string   `json:"language,omitempty"`
}

// OnPageSignals are deterministic content-shape facts about the fetched page
type OnPageSignals struct {
	Title             string `json:"title,omitempty"`
	MetaDescription   string `json:"meta_description,omitempty"`
	Author            string `json:"author,omitempty"`
	WordCount         int    `json:"word_count"`
	H1Count           int    `json:"h1_count"`
	H2Count           int    `json:"h2_count"`
	H3Count           int    `json:"h3_count"`
	ListCount         int    `json:"list_count"`
	TableCount        int    `json:"table_count"`
	InternalLinkCount int    `json:"internal_link_count"`
	HasClearAuthor    bool   `json:"has_clear_author"`
	KeywordMatches    int    `json:"keyword_matches"`
}

// ContentQuality holds semantic quality scores. Every score is normalized to
// [1,10] regardless of the scale the model replied with; sentiment stays on
// [-1,1].
type ContentQuality struct {
	DepthScore        float64 `json:"depth_score"`
	UniquenessScore   float64 `json:"uniqueness_score"`
	OptimizationScore float64 `json:"optimization_score"`
	ContentType       string  `json:"content_type"`
	HasStatistics     bool    `json:"has_statistics"`
	HasQuotes         bool    `json:"has_quotes"`
	HasCitations      bool    `json:"has_citations"`
	Sentiment         float64 `json:"sentiment"`
	Fallback          bool    `json:"fallback"` // True when defaults were substituted
}

// EEATDimension is one scored rubric dimension with free-text evidence
type EEATDimension struct {
	Score    float64 `json:"score"` // [1,10]
	Evidence string  `json:"evidence,omitempty"`
}

// EEATAssessment is the four-dimension authority rubric
type EEATAssessment struct {
	Experience        EEATDimension `json:"experience"`
	Expertise         EEATDimension `json:"expertise"`
	Authoritativeness EEATDimension `json:"authoritativeness"`
	Trustworthiness   EEATDimension `json:"trustworthiness"`
	Overall           float64       `json:"overall"` // [1,10]
	Strengths         []string      `json:"strengths,omitempty"`
	Improvements      []string      `json:"improvements,omitempty"`
	Proxied           bool          `json:"proxied"`  // Derived from quality scores, no dedicated model call
	Fallback          bool          `json:"fallback"` // True when defaults were substituted
}

// DomainAuthority is a heuristic estimate, not ground truth
type DomainAuthority struct {
	Authority        int `json:"authority"`      // [0,100]
	PageAuthority    int `json:"page_authority"` // [0,100]
	BacklinkCount    int `json:"backlink_count"`
	ReferringDomains int `json:"referring_domains"`
	SpamScore        int `json:"spam_score"` // [0,17], Moz-style
}

// CrawlOutcome records how (or whether) the page was fetched
type CrawlOutcome struct {
	StatusCode int    `json:"status_code"`
	Method     string `json:"method"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
}

// PageAnalysis is the persisted per-citation output unit. A crawl failure
// still yields a complete record with explicit defaults - downstream consumers
// must never see a missing record as a substitute for a failed one.
type PageAnalysis struct {
	ID    string `json:"id" badgerhold:"key"`
	JobID string `json:"job_id" badgerholdIndex:"JobID"`
	RunID string `json:"run_id"`

	URL                string `json:"url"`
	Domain             string `json:"domain"`
	IsClientDomain     bool   `json:"is_client_domain"`
	IsCompetitorDomain bool   `json:"is_competitor_domain"`

	Technical TechnicalSignals `json:"technical_seo"`
	OnPage    OnPageSignals    `json:"on_page"`
	Quality   ContentQuality   `json:"content_quality"`
	EEAT      EEATAssessment   `json:"eeat"`
	Authority DomainAuthority  `json:"domain_authority"`
	Crawl     CrawlOutcome     `json:"crawl"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultContentQuality returns the documented default quality object used
// whenever scoring cannot run or its output cannot be trusted.
func DefaultContentQuality() ContentQuality {
	return ContentQuality{
		DepthScore:        5,
		UniquenessScore:   5,
		OptimizationScore: 5,
		ContentType:       ContentTypeOther,
		Sentiment:         0,
		Fallback:          true,
	}
}

// DefaultEEAT returns the documented default EEAT assessment
func DefaultEEAT() EEATAssessment {
	return EEATAssessment{
		Experience:        EEATDimension{Score: 5},
		Expertise:         EEATDimension{Score: 5},
		Authoritativeness: EEATDimension{Score: 5},
		Trustworthiness:   EEATDimension{Score: 5},
		Overall:           5,
		Fallback:          true,
	}
}
