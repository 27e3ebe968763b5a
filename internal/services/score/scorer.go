package score

import (
	"context"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
)

// Scorer produces semantic quality and EEAT assessments from page text via
// the language-model service. Scoring never fails the caller: any transport,
// parse, or validation error yields the documented default objects instead.
type Scorer struct {
	llm      interfaces.LLMService
	logger   arbor.ILogger
	cfg      common.ScoringConfig
	validate *validator.Validate
}

// NewScorer creates a semantic scorer backed by the given LLM service.
func NewScorer(llm interfaces.LLMService, cfg common.ScoringConfig, logger arbor.ILogger) *Scorer {
	return &Scorer{
		llm:      llm,
		logger:   logger,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// PageText converts page HTML to markdown text bounded to the configured
// character limit, suitable for embedding in a prompt.
func (s *Scorer) PageText(pageURL, html string) string {
	converter := md.NewConverter(pageURL, true, nil)
	text, err := converter.ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", pageURL).Msg("Markdown conversion failed, using raw text")
		text = html
	}
	text = strings.TrimSpace(text)
	if len(text) > s.cfg.TextLimit {
		text = text[:s.cfg.TextLimit]
	}
	return text
}

// ScoreQuality assesses content quality from the page text and the
// structural signals already computed.
func (s *Scorer) ScoreQuality(ctx context.Context, text string, onPage models.OnPageSignals, technical models.TechnicalSignals) models.ContentQuality {
	prompt := buildQualityPrompt(text, onPage, technical)

	response, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: qualitySystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Quality scoring call failed, using defaults")
		return models.DefaultContentQuality()
	}

	var payload qualityPayload
	if err := decodeStrict(response, &payload); err != nil {
		s.logger.Warn().Err(err).Msg("Quality scoring response unparseable, using defaults")
		return models.DefaultContentQuality()
	}
	if err := s.validate.Struct(&payload); err != nil {
		s.logger.Warn().Err(err).Msg("Quality scoring response invalid, using defaults")
		return models.DefaultContentQuality()
	}

	def := models.DefaultContentQuality()
	quality := models.ContentQuality{
		DepthScore:        normalizeScore(payload.DepthScore, def.DepthScore),
		UniquenessScore:   normalizeScore(payload.UniquenessScore, def.UniquenessScore),
		OptimizationScore: normalizeScore(payload.OptimizationScore, def.OptimizationScore),
		ContentType:       payload.ContentType,
		HasStatistics:     boolOr(payload.HasStatistics, false),
		HasQuotes:         boolOr(payload.HasQuotes, false),
		HasCitations:      boolOr(payload.HasCitations, false),
		Sentiment:         clampSentiment(payload.Sentiment),
	}
	if quality.ContentType == "" {
		quality.ContentType = models.ContentTypeOther
	}
	return quality
}

// AssessEEAT runs the independent EEAT rubric prompt. When the quality depth
// score is already high, the quality scores are reused as an EEAT proxy to
// avoid a redundant model call.
func (s *Scorer) AssessEEAT(ctx context.Context, text string, quality models.ContentQuality) models.EEATAssessment {
	if !quality.Fallback && quality.DepthScore >= s.cfg.EEATProxyThreshold {
		s.logger.Debug().
			Float64("depth_score", quality.DepthScore).
			Msg("Reusing quality scores as EEAT proxy")
		return proxyEEAT(quality)
	}

	response, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: eeatSystemPrompt},
		{Role: "user", Content: buildEEATPrompt(text)},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("EEAT assessment call failed, using defaults")
		return models.DefaultEEAT()
	}

	var payload eeatPayload
	if err := decodeStrict(response, &payload); err != nil {
		s.logger.Warn().Err(err).Msg("EEAT assessment response unparseable, using defaults")
		return models.DefaultEEAT()
	}

	return models.EEATAssessment{
		Experience:        normalizeDimension(payload.Experience),
		Expertise:         normalizeDimension(payload.Expertise),
		Authoritativeness: normalizeDimension(payload.Authoritativeness),
		Trustworthiness:   normalizeDimension(payload.Trustworthiness),
		Overall:           normalizeScore(payload.Overall, 5),
		Strengths:         payload.Strengths,
		Improvements:      payload.Improvements,
	}
}

func normalizeDimension(p *eeatDimensionPayload) models.EEATDimension {
	if p == nil {
		return models.EEATDimension{Score: 5}
	}
	return models.EEATDimension{
		Score:    normalizeScore(p.Score, 5),
		Evidence: p.Evidence,
	}
}

// proxyEEAT derives an EEAT assessment from the general quality scores.
func proxyEEAT(quality models.ContentQuality) models.EEATAssessment {
	evidence := "Derived from high content quality scores"
	return models.EEATAssessment{
		Experience:        models.EEATDimension{Score: quality.DepthScore, Evidence: evidence},
		Expertise:         models.EEATDimension{Score: quality.DepthScore, Evidence: evidence},
		Authoritativeness: models.EEATDimension{Score: quality.UniquenessScore, Evidence: evidence},
		Trustworthiness:   models.EEATDimension{Score: quality.OptimizationScore, Evidence: evidence},
		Overall:           (quality.DepthScore*2 + quality.UniquenessScore + quality.OptimizationScore) / 4,
		Proxied:           true,
	}
}

const qualitySystemPrompt = `You are a content quality analyst. Respond with a single JSON object and no other text.`

const eeatSystemPrompt = `You are an EEAT (Experience, Expertise, Authoritativeness, Trustworthiness) assessor. Respond with a single JSON object and no other text.`

func buildQualityPrompt(text string, onPage models.OnPageSignals, technical models.TechnicalSignals) string {
	var b strings.Builder
	b.WriteString("Assess the quality of this web page.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", onPage.Title)
	fmt.Fprintf(&b, "Word count: %d\n", onPage.WordCount)
	fmt.Fprintf(&b, "Headings: %d H1, %d H2, %d H3\n", onPage.H1Count, onPage.H2Count, onPage.H3Count)
	fmt.Fprintf(&b, "Lists: %d, Tables: %d\n", onPage.ListCount, onPage.TableCount)
	fmt.Fprintf(&b, "Schema markup: %v (%s)\n", technical.HasSchemaMarkup, strings.Join(technical.SchemaTypes, ", "))
	fmt.Fprintf(&b, "Clear author: %v\n\n", onPage.HasClearAuthor)
	b.WriteString("Page text (markdown, may be truncated):\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n\n")
	b.WriteString(`Return JSON with exactly these fields:
{
  "depth_score": <integer 1-10>,
  "uniqueness_score": <integer 1-10>,
  "optimization_score": <integer 1-10>,
  "content_type": "<article|product|landing|documentation|listicle|comparison|other>",
  "has_statistics": <boolean>,
  "has_quotes": <boolean>,
  "has_citations": <boolean>,
  "sentiment": <number -1.0 to 1.0>
}`)
	return b.String()
}

func buildEEATPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Assess this web page against the EEAT rubric.\n\n")
	b.WriteString("Page text (markdown, may be truncated):\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n\n")
	b.WriteString(`Return JSON with exactly these fields:
{
  "experience": {"score": <integer 1-10>, "evidence": "<short justification>"},
  "expertise": {"score": <integer 1-10>, "evidence": "<short justification>"},
  "authoritativeness": {"score": <integer 1-10>, "evidence": "<short justification>"},
  "trustworthiness": {"score": <integer 1-10>, "evidence": "<short justification>"},
  "overall": <integer 1-10>,
  "strengths": ["<strength>"],
  "improvements": ["<improvement>"]
}`)
	return b.String()
}
