package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spaMarkers = []string{
	"window.__NUXT__",
	"window.__NEXT_DATA__",
	"data-reactroot",
	"ng-version=",
	"id=\"___gatsby\"",
	"window.__INITIAL_STATE__",
}

var spaRootSelectors = []string{"#root", "#app", "#__next", "#___gatsby"}

// LooksLikeSPA inspects basic-tier HTML for signs that the real content is
// rendered client-side: empty framework root containers, heavy script weight
// relative to visible words, or well-known framework markers. A positive
// result forces escalation to a rendering tier even on a 2xx response.
func LooksLikeSPA(html string) bool {
	for _, marker := range spaMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	for _, sel := range spaRootSelectors {
		root := doc.Find(sel).First()
		if root.Length() > 0 && len(strings.TrimSpace(root.Text())) < 50 {
			return true
		}
	}

	scriptBytes := 0
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		scriptBytes += len(s.Text())
	})
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	visibleWords := len(strings.Fields(body.Text()))

	// Pages dominated by inline script with almost no visible text are
	// almost always hydrated client-side.
	return scriptBytes > 5000 && visibleWords < 100
}
