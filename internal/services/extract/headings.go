package extract

// HeadingStructureScore builds an additive quality score for the page's
// heading hierarchy, capped at 10:
//
//	+2 semantic HTML5 structure elements present
//	+2 exactly one H1
//	+2 H2 subheadings present
//	+2 consistent H2 -> H3 nesting (no H3s orphaned without any H2)
//	+1 document language declared
//
// The base of 1 keeps the score on the same [1,10] scale as the semantic
// quality scores.
func HeadingStructureScore(doc *ParsedDocument) float64 {
	score := 1.0

	if doc.Find("main, article, section").Length() > 0 {
		score += 2
	}

	h1, h2, h3 := doc.HeadingCounts()
	if h1 == 1 {
		score += 2
	}
	if h2 > 0 {
		score += 2
	}
	if h3 == 0 || h2 > 0 {
		score += 2
	}
	if doc.Language() != "" {
		score += 1
	}

	if score > 10 {
		score = 10
	}
	return score
}
