package extract

import (
	"regexp"
	"strings"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/models"
)

// Extract derives the technical and on-page signal sets from a parsed
// document. All signals are computed from markup alone; no network or LLM
// calls happen here.
func Extract(doc *ParsedDocument, keywords []string) (models.TechnicalSignals, models.OnPageSignals) {
	schemaTypes := doc.SchemaTypes()
	aria := doc.ARIAAttributes()
	h1, h2, h3 := doc.HeadingCounts()
	author := authorOf(doc)

	technical := models.TechnicalSignals{
		IsCrawlable:           true,
		HasSchemaMarkup:       len(schemaTypes) > 0,
		SchemaTypes:           schemaTypes,
		HeadingStructureScore: HeadingStructureScore(doc),
		HasARIA:               len(aria) > 0 || doc.HasRoleAttributes(),
		ARIAAttributes:        aria,
		PublishDate:           doc.PublishDate(),
		ModifiedDate:          doc.ModifiedDate(),
		MobileFriendly:        doc.Find(`meta[name="viewport"]`).Length() > 0,
		Language:              doc.Language(),
	}

	text := doc.VisibleText()

	onPage := models.OnPageSignals{
		Title:             titleOf(doc),
		MetaDescription:   descriptionOf(doc),
		Author:            author,
		WordCount:         len(strings.Fields(text)),
		H1Count:           h1,
		H2Count:           h2,
		H3Count:           h3,
		ListCount:         doc.UnorderedListCount() + doc.OrderedListCount(),
		TableCount:        doc.TableCount(),
		InternalLinkCount: doc.InternalLinkCount(),
		HasClearAuthor:    author != "",
		KeywordMatches:    keywordMatches(text, keywords),
	}

	return technical, onPage
}

// titleOf resolves the page title with a fixed precedence: the title tag,
// then og:title, then the first H1, then the URL basename.
func titleOf(doc *ParsedDocument) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := doc.MetaContent(`meta[property="og:title"]`); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return common.URLBasename(doc.URL)
}

func descriptionOf(doc *ParsedDocument) string {
	if d := doc.MetaContent(`meta[name="description"]`); d != "" {
		return d
	}
	return doc.MetaContent(`meta[property="og:description"]`)
}

func authorOf(doc *ParsedDocument) string {
	if a := doc.MetaContent(`meta[name="author"]`); a != "" {
		return a
	}
	return jsonLDAuthor(doc)
}

// keywordMatches counts whole-word, case-insensitive occurrences of the
// tracked keywords in the visible text.
func keywordMatches(text string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			continue
		}
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}
