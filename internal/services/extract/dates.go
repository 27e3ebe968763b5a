package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// dateRule is one entry in the ordered date resolution list. Precedence is
// expressed as data so the order is auditable in one place.
type dateRule struct {
	selector string
	attr     string // Attribute holding the value; empty means element text
}

// Publish-date rules in precedence order: OpenGraph/article meta, Dublin
// Core, HTML5 time element. JSON-LD datePublished is handled separately by
// the schema scanner and appended as the final fallback.
var publishDateRules = []dateRule{
	{selector: `meta[property='article:published_time']`, attr: "content"},
	{selector: `meta[property='og:article:published_time']`, attr: "content"},
	{selector: `meta[name='DC.date.issued']`, attr: "content"},
	{selector: `meta[name='DC.date']`, attr: "content"},
	{selector: `meta[name='date']`, attr: "content"},
	{selector: `time[datetime][pubdate]`, attr: "datetime"},
	{selector: `time[datetime]`, attr: "datetime"},
}

var modifiedDateRules = []dateRule{
	{selector: `meta[property='article:modified_time']`, attr: "content"},
	{selector: `meta[property='og:updated_time']`, attr: "content"},
	{selector: `meta[name='DC.date.modified']`, attr: "content"},
	{selector: `meta[name='last-modified']`, attr: "content"},
}

// resolveDate walks the rule list and accepts the first non-empty match
func resolveDate(doc *ParsedDocument, rules []dateRule) string {
	for _, rule := range rules {
		sel := doc.Find(rule.selector).First()
		if sel.Length() == 0 {
			continue
		}
		value := selectionValue(sel, rule.attr)
		if value != "" {
			return value
		}
	}
	return ""
}

func selectionValue(sel *goquery.Selection, attr string) string {
	if attr == "" {
		return strings.TrimSpace(sel.Text())
	}
	value, _ := sel.Attr(attr)
	return strings.TrimSpace(value)
}

// PublishDate resolves the publish date, falling back to JSON-LD
// datePublished when no metadata pattern matched.
func (d *ParsedDocument) PublishDate() string {
	if date := resolveDate(d, publishDateRules); date != "" {
		return date
	}
	return jsonLDDate(d, "datePublished")
}

// ModifiedDate resolves the last-modified date, falling back to JSON-LD
// dateModified.
func (d *ParsedDocument) ModifiedDate() string {
	if date := resolveDate(d, modifiedDateRules); date != "" {
		return date
	}
	return jsonLDDate(d, "dateModified")
}
