package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitlePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		url      string
		expected string
	}{
		{
			name:     "title tag wins",
			html:     `<html><head><title>From Title</title><meta property="og:title" content="From OG"></head><body><h1>From H1</h1></body></html>`,
			url:      "https://example.com/best-crm-tools",
			expected: "From Title",
		},
		{
			name:     "og title when title empty",
			html:     `<html><head><title></title><meta property="og:title" content="From OG"></head><body><h1>From H1</h1></body></html>`,
			url:      "https://example.com/best-crm-tools",
			expected: "From OG",
		},
		{
			name:     "first h1 when no meta",
			html:     `<html><body><h1>From H1</h1><h1>Second H1</h1></body></html>`,
			url:      "https://example.com/best-crm-tools",
			expected: "From H1",
		},
		{
			name:     "url basename as last resort",
			html:     `<html><body><p>no headings</p></body></html>`,
			url:      "https://example.com/guides/best-crm-tools.html",
			expected: "best crm tools",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.html, tt.url)
			assert.Equal(t, tt.expected, titleOf(doc))
		})
	}
}

func TestDatePrecedence(t *testing.T) {
	html := `<html><head>
		<meta property="article:published_time" content="2024-03-01T10:00:00Z">
		<meta name="date" content="2023-01-01">
		<script type="application/ld+json">{"@type":"Article","datePublished":"2022-06-15"}</script>
	</head><body></body></html>`
	doc := mustParse(t, html, "https://example.com/")

	assert.Equal(t, "2024-03-01T10:00:00Z", doc.PublishDate())
}

func TestPublishDateFallsBackToJSONLD(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Article","datePublished":"2022-06-15","dateModified":"2022-07-01"}</script>
	</head><body></body></html>`
	doc := mustParse(t, html, "https://example.com/")

	assert.Equal(t, "2022-06-15", doc.PublishDate())
	assert.Equal(t, "2022-07-01", doc.ModifiedDate())
}

func TestSchemaTypesDeduplicated(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Article"}</script>
		<script type="application/ld+json">{"@graph":[{"@type":"Article"},{"@type":"Organization"}]}</script>
	</head><body>
		<div itemscope itemtype="https://schema.org/Article"></div>
	</body></html>`
	doc := mustParse(t, html, "https://example.com/")

	assert.Equal(t, []string{"Article", "Organization"}, doc.SchemaTypes())
}

func TestHeadingStructureScore(t *testing.T) {
	full := `<html lang="en"><body>
		<article>
			<h1>Only One</h1>
			<h2>Section</h2>
			<h3>Subsection</h3>
		</article>
	</body></html>`
	doc := mustParse(t, full, "https://example.com/")
	assert.InDelta(t, 10.0, HeadingStructureScore(doc), 0.001)

	// H3s without any H2 lose the nesting credit; two H1s lose the H1 credit.
	broken := `<html><body>
		<div><h1>One</h1><h1>Two</h1><h3>Orphan</h3></div>
	</body></html>`
	doc = mustParse(t, broken, "https://example.com/")
	assert.InDelta(t, 1.0, HeadingStructureScore(doc), 0.001)
}

func TestExtractSignals(t *testing.T) {
	html := `<html lang="en"><head>
		<title>Acme CRM Review</title>
		<meta name="description" content="An in-depth review">
		<meta name="author" content="Jane Doe">
		<meta name="viewport" content="width=device-width">
		<script type="application/ld+json">{"@type":"Review","datePublished":"2024-01-10"}</script>
	</head><body>
		<article>
			<h1>Acme CRM Review</h1>
			<h2>Pricing</h2>
			<p>Acme is a solid CRM for small teams. The CRM market is crowded.</p>
			<ul><li>Pro: fast</li></ul>
			<a href="/pricing">pricing</a>
		</article>
	</body></html>`
	doc := mustParse(t, html, "https://example.com/reviews/acme")

	technical, onPage := Extract(doc, []string{"CRM", "missing"})

	assert.True(t, technical.IsCrawlable)
	assert.True(t, technical.HasSchemaMarkup)
	assert.Equal(t, []string{"Review"}, technical.SchemaTypes)
	assert.True(t, technical.MobileFriendly)
	assert.Equal(t, "2024-01-10", technical.PublishDate)
	assert.Equal(t, "en", technical.Language)

	assert.Equal(t, "Acme CRM Review", onPage.Title)
	assert.Equal(t, "An in-depth review", onPage.MetaDescription)
	assert.Equal(t, "Jane Doe", onPage.Author)
	assert.True(t, onPage.HasClearAuthor)
	assert.Equal(t, 1, onPage.H1Count)
	assert.Equal(t, 1, onPage.H2Count)
	assert.Equal(t, 1, onPage.ListCount)
	assert.Equal(t, 1, onPage.InternalLinkCount)
	assert.Equal(t, 3, onPage.KeywordMatches)
}

func TestAuthorFromJSONLD(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Article","author":{"@type":"Person","name":"John Smith"}}</script>
	</head><body></body></html>`
	doc := mustParse(t, html, "https://example.com/")

	assert.Equal(t, "John Smith", authorOf(doc))
}
