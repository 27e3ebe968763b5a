package models

// Citation extraction source tags, in decreasing order of structure
const (
	CitationSourceEmbeddedLink = "embedded-link" // Markdown [text](url)
	CitationSourceNumberedRef  = "numbered-ref"  // [n] markers resolved to URLs
	CitationSourceReferences   = "references"    // Trailing References/Sources section
	CitationSourceBareURL      = "bare-url"      // Plain URL in prose
	CitationSourceSearch       = "search"        // Grounded web search fallback
)

// Citation is a URL a language-model response presents as a source. URLs are
// normalized (scheme+host+path, query and fragment dropped) and restricted to
// http/https before a Citation is constructed.
type Citation struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Position int    `json:"position"`
	Source   string `json:"source"`
}
