package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParsedDocument wraps a fetched page behind one parsing abstraction. All
// signal extraction goes through it, so the mix of goquery selection and
// anchored-regex scans stays swappable without touching callers.
type ParsedDocument struct {
	URL  string
	Host string

	raw string
	doc *goquery.Document
}

// Tag-start patterns are anchored on the tag boundary so <ul> never matches
// <ultra-container> or <ulcustom>.
var (
	ulTagPattern    = regexp.MustCompile(`(?i)<ul[\s>]`)
	olTagPattern    = regexp.MustCompile(`(?i)<ol[\s>]`)
	tableTagPattern = regexp.MustCompile(`(?i)<table[\s>]`)
	ariaAttrPattern = regexp.MustCompile(`(?i)aria-([a-z]+)\s*=`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ParseDocument parses raw HTML fetched from pageURL
func ParseDocument(html, pageURL string) (*ParsedDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	host := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		host = strings.ToLower(parsed.Hostname())
	}

	return &ParsedDocument{
		URL:  pageURL,
		Host: host,
		raw:  html,
		doc:  doc,
	}, nil
}

// Find exposes goquery selection for the extraction helpers
func (d *ParsedDocument) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// RawHTML returns the unparsed page source
func (d *ParsedDocument) RawHTML() string {
	return d.raw
}

// UnorderedListCount counts <ul> tags via a tag-boundary-anchored scan
func (d *ParsedDocument) UnorderedListCount() int {
	return len(ulTagPattern.FindAllStringIndex(d.raw, -1))
}

// OrderedListCount counts <ol> tags
func (d *ParsedDocument) OrderedListCount() int {
	return len(olTagPattern.FindAllStringIndex(d.raw, -1))
}

// TableCount counts <table> tags
func (d *ParsedDocument) TableCount() int {
	return len(tableTagPattern.FindAllStringIndex(d.raw, -1))
}

// ARIAAttributes returns the sorted set of aria-* suffixes used on the page
func (d *ParsedDocument) ARIAAttributes() []string {
	seen := make(map[string]bool)
	var attrs []string
	for _, match := range ariaAttrPattern.FindAllStringSubmatch(d.raw, -1) {
		suffix := strings.ToLower(match[1])
		if !seen[suffix] {
			seen[suffix] = true
			attrs = append(attrs, suffix)
		}
	}
	sort.Strings(attrs)
	return attrs
}

// HasRoleAttributes reports whether any element declares an ARIA role
func (d *ParsedDocument) HasRoleAttributes() bool {
	return d.doc.Find("[role]").Length() > 0
}

// VisibleText returns the page text with scripts, styles, navigation chrome
// and embedded frames stripped. Word counts must come from this text - raw
// HTML word counts drastically overcount.
func (d *ParsedDocument) VisibleText() string {
	body := d.doc.Find("body").Clone()
	if body.Length() == 0 {
		return ""
	}

	body.Find("script, style, noscript, iframe").Remove()
	body.Find("nav, header, footer, aside").Remove()

	text := body.Text()
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// WordCount counts words in the visible text
func (d *ParsedDocument) WordCount() int {
	text := d.VisibleText()
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

// InternalLinkCount counts links pointing at the page's own host, counting
// root-relative hrefs as internal.
func (d *ParsedDocument) InternalLinkCount() int {
	count := 0
	d.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
			count++
			return
		}
		if d.Host != "" {
			if parsed, err := url.Parse(href); err == nil && strings.EqualFold(parsed.Hostname(), d.Host) {
				count++
			}
		}
	})
	return count
}

// MetaContent returns the content attribute of the first matching meta tag
func (d *ParsedDocument) MetaContent(selector string) string {
	content, _ := d.doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// Language returns the declared document language, if any
func (d *ParsedDocument) Language() string {
	lang, _ := d.doc.Find("html").Attr("lang")
	return strings.TrimSpace(lang)
}

// HeadingCounts returns the number of h1/h2/h3 elements
func (d *ParsedDocument) HeadingCounts() (h1, h2, h3 int) {
	return d.doc.Find("h1").Length(), d.doc.Find("h2").Length(), d.doc.Find("h3").Length()
}
