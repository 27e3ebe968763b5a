package citations

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/models"
)

var (
	numberedRefPattern = regexp.MustCompile(`^\s*\[(\d+)\][.:)]?\s+(?:.*?\s)?(https?://\S+)`)
	bareURLPattern     = regexp.MustCompile(`https?://[^\s<>"'\)\]]+`)
	referencesHeading  = regexp.MustCompile(`(?i)^#{0,6}\s*\**\s*(references|sources)\s*\**\s*:?\s*$`)
)

// ExtractCitations pulls cited URLs out of a language-model response. The
// strategies run in decreasing order of structure: markdown links, numbered
// reference markers, a trailing References/Sources section, and finally bare
// URLs in prose. Bare URLs are used only when nothing structured was found.
// Results are normalized and deduplicated, keeping first-seen order.
func ExtractCitations(responseText string) []models.Citation {
	var found []models.Citation

	found = append(found, markdownLinks(responseText)...)
	found = append(found, numberedRefs(responseText)...)
	found = append(found, referencesSection(responseText)...)

	if len(found) == 0 {
		found = bareURLs(responseText)
	}

	return dedupe(found)
}

// markdownLinks walks the goldmark AST collecting [text](url) links and
// <autolink> URLs.
func markdownLinks(responseText string) []models.Citation {
	source := []byte(responseText)
	doc := goldmark.New().Parser().Parse(gtext.NewReader(source))

	var cites []models.Citation
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			cites = append(cites, models.Citation{
				URL:    string(node.Destination),
				Title:  nodeText(node, source),
				Source: models.CitationSourceEmbeddedLink,
			})
		case *ast.AutoLink:
			cites = append(cites, models.Citation{
				URL:    string(node.URL(source)),
				Source: models.CitationSourceEmbeddedLink,
			})
		}
		return ast.WalkContinue, nil
	})

	return cites
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
		}
	}
	return strings.TrimSpace(b.String())
}

// numberedRefs matches lines of the form "[3] Some title https://..." that
// resolve bracketed citation markers used earlier in the response.
func numberedRefs(responseText string) []models.Citation {
	var cites []models.Citation
	for _, line := range strings.Split(responseText, "\n") {
		m := numberedRefPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		cites = append(cites, models.Citation{
			URL:    m[2],
			Source: models.CitationSourceNumberedRef,
		})
	}
	return cites
}

// referencesSection parses everything below a trailing "References" or
// "Sources" heading for URLs, structured or bare.
func referencesSection(responseText string) []models.Citation {
	lines := strings.Split(responseText, "\n")
	start := -1
	for i, line := range lines {
		if referencesHeading.MatchString(strings.TrimSpace(line)) {
			start = i + 1
		}
	}
	if start < 0 || start >= len(lines) {
		return nil
	}

	var cites []models.Citation
	for _, line := range lines[start:] {
		for _, raw := range bareURLPattern.FindAllString(line, -1) {
			cites = append(cites, models.Citation{
				URL:    raw,
				Source: models.CitationSourceReferences,
			})
		}
	}
	return cites
}

func bareURLs(responseText string) []models.Citation {
	var cites []models.Citation
	for _, raw := range bareURLPattern.FindAllString(responseText, -1) {
		cites = append(cites, models.Citation{
			URL:    raw,
			Source: models.CitationSourceBareURL,
		})
	}
	return cites
}

// dedupe normalizes URLs, drops the unusable ones, and keeps the first
// occurrence of each canonical URL. Positions are assigned after dedup.
func dedupe(cites []models.Citation) []models.Citation {
	seen := make(map[string]bool)
	var out []models.Citation
	for _, c := range cites {
		normalized, err := common.NormalizeCitationURL(c.URL)
		if err != nil || seen[normalized] {
			continue
		}
		seen[normalized] = true
		c.URL = normalized
		c.Position = len(out) + 1
		out = append(out, c)
	}
	return out
}
