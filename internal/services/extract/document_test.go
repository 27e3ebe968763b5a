package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, html, pageURL string) *ParsedDocument {
	t.Helper()
	doc, err := ParseDocument(html, pageURL)
	require.NoError(t, err)
	return doc
}

func TestListCountsIgnorePrefixedTags(t *testing.T) {
	html := `<html><body>
		<ul><li>one</li></ul>
		<ultra-container>not a list</ultra-container>
		<ulcustom>also not a list</ulcustom>
	</body></html>`
	doc := mustParse(t, html, "https://example.com/page")

	assert.Equal(t, 1, doc.UnorderedListCount())
	assert.Equal(t, 0, doc.OrderedListCount())
}

func TestTableCount(t *testing.T) {
	html := `<html><body>
		<table><tr><td>a</td></tr></table>
		<table class="data"><tr><td>b</td></tr></table>
	</body></html>`
	doc := mustParse(t, html, "https://example.com/")

	assert.Equal(t, 2, doc.TableCount())
}

func TestARIAAttributes(t *testing.T) {
	html := `<html><body>
		<nav aria-label="Main" aria-expanded="false"></nav>
		<button aria-label="Close"></button>
	</body></html>`
	doc := mustParse(t, html, "https://example.com/")

	attrs := doc.ARIAAttributes()
	assert.Equal(t, []string{"expanded", "label"}, attrs)
}

func TestVisibleTextStripsChrome(t *testing.T) {
	html := `<html><body>
		<nav>navigation links</nav>
		<script>var x = 1;</script>
		<article>real page content here</article>
		<footer>copyright</footer>
	</body></html>`
	doc := mustParse(t, html, "https://example.com/")

	text := doc.VisibleText()
	assert.Contains(t, text, "real page content here")
	assert.NotContains(t, text, "navigation links")
	assert.NotContains(t, text, "var x = 1")
	assert.NotContains(t, text, "copyright")
}

func TestInternalLinkCount(t *testing.T) {
	html := `<html><body>
		<a href="/docs">internal root-relative</a>
		<a href="https://example.com/about">internal absolute</a>
		<a href="https://other.org/page">external</a>
		<a href="//cdn.example.net/asset">protocol-relative external</a>
	</body></html>`
	doc := mustParse(t, html, "https://example.com/start")

	assert.Equal(t, 2, doc.InternalLinkCount())
}

func TestLanguage(t *testing.T) {
	doc := mustParse(t, `<html lang="en-US"><body></body></html>`, "https://example.com/")
	assert.Equal(t, "en-US", doc.Language())

	doc = mustParse(t, `<html><body></body></html>`, "https://example.com/")
	assert.Equal(t, "", doc.Language())
}
