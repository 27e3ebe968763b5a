package citations

import (
	"regexp"
	"strings"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/models"
)

// DetectMentions checks the response text and citation hostnames for the
// tracked brand and each competitor.
func DetectMentions(responseText string, payload models.QueryPayload, cites []models.Citation) models.MentionSummary {
	summary := models.MentionSummary{
		Brand: detectBrand(responseText, payload.Brand, cites),
	}
	for _, competitor := range payload.Competitors {
		summary.Competitors = append(summary.Competitors, detectBrand(responseText, competitor, cites))
	}
	return summary
}

func detectBrand(responseText string, brand models.Brand, cites []models.Citation) models.BrandMention {
	inText := wholeWordMatch(responseText, brand.Name)
	viaCitation := citedDomainMatch(brand.Domain, cites)

	return models.BrandMention{
		Brand:       brand,
		Mentioned:   inText || viaCitation,
		Type:        classifyMention(responseText, brand.Name, inText, viaCitation),
		ViaCitation: viaCitation,
	}
}

func wholeWordMatch(text, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

func citedDomainMatch(domain string, cites []models.Citation) bool {
	if domain == "" {
		return false
	}
	for _, c := range cites {
		if common.SameDomain(domain, common.DomainOf(c.URL)) {
			return true
		}
	}
	return false
}

// classifyMention picks the strongest applicable mention type via literal
// phrase containment, checked in fixed priority order.
func classifyMention(responseText, name string, inText, viaCitation bool) models.MentionType {
	if !inText && !viaCitation {
		return models.MentionNone
	}
	if !inText {
		return models.MentionCitationOnly
	}

	lower := strings.ToLower(responseText)
	lowerName := strings.ToLower(strings.TrimSpace(name))

	recommendationPhrases := []string{
		"recommend " + lowerName,
		"i'd recommend " + lowerName,
		lowerName + " is recommended",
		lowerName + " is the best",
		lowerName + " is my top",
		"top pick is " + lowerName,
		"best choice is " + lowerName,
		"best option is " + lowerName,
	}
	for _, phrase := range recommendationPhrases {
		if strings.Contains(lower, phrase) {
			return models.MentionRecommendation
		}
	}

	featurePhrases := []string{
		lowerName + " is ",
		lowerName + " offers",
		lowerName + " provides",
		lowerName + " supports",
		lowerName + " includes",
	}
	for _, phrase := range featurePhrases {
		if strings.Contains(lower, phrase) {
			return models.MentionFeature
		}
	}

	return models.MentionBare
}
