package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
	"github.com/ternarybob/citare/internal/services/extract"
	"github.com/ternarybob/citare/internal/services/fetch"
)

// QualityScorer is the semantic scoring surface the orchestrator needs.
// Implementations never fail: they substitute defaults instead.
type QualityScorer interface {
	PageText(pageURL, html string) string
	ScoreQuality(ctx context.Context, text string, onPage models.OnPageSignals, technical models.TechnicalSignals) models.ContentQuality
	AssessEEAT(ctx context.Context, text string, quality models.ContentQuality) models.EEATAssessment
}

// Orchestrator runs the per-citation analysis pipeline: fetch, extract,
// score, estimate authority, compose and persist a PageAnalysis. Every
// citation yields a persisted record, even under total fetch failure.
type Orchestrator struct {
	fetcher   interfaces.FetchService
	scorer    QualityScorer
	authority interfaces.AuthorityEstimator
	analyses  interfaces.AnalysisStorage
	cfg       common.AnalyzerConfig
	logger    arbor.ILogger
	now       func() time.Time
}

// NewOrchestrator wires the analysis pipeline.
func NewOrchestrator(
	fetcher interfaces.FetchService,
	scorer QualityScorer,
	authority interfaces.AuthorityEstimator,
	analyses interfaces.AnalysisStorage,
	cfg common.AnalyzerConfig,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		fetcher:   fetcher,
		scorer:    scorer,
		authority: authority,
		analyses:  analyses,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// AnalyzeCitations processes each citation sequentially with a fixed delay
// between items. A citation's failure never aborts the batch.
func (o *Orchestrator) AnalyzeCitations(ctx context.Context, job *models.Job, cites []models.Citation) []*models.PageAnalysis {
	delay := common.ParseDurationOr(o.cfg.InterStepDelay, 0)

	var analyses []*models.PageAnalysis
	for i, citation := range cites {
		if i > 0 && delay > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				o.logger.Warn().Err(err).Msg("Citation analysis interrupted")
				break
			}
		}

		analysis, err := o.AnalyzeCitation(ctx, job, citation)
		if err != nil {
			o.logger.Error().
				Err(err).
				Str("job_id", job.ID).
				Str("url", citation.URL).
				Msg("Citation analysis could not be persisted")
			continue
		}
		analyses = append(analyses, analysis)
	}
	return analyses
}

// AnalyzeCitation runs the pipeline for one cited URL under a hard
// wall-clock budget. A budget breach yields a default-filled record, not a
// crashed job.
func (o *Orchestrator) AnalyzeCitation(ctx context.Context, job *models.Job, citation models.Citation) (*models.PageAnalysis, error) {
	budget := common.ParseDurationOr(o.cfg.CitationBudget, 5*time.Minute)
	budgetCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	analysis := o.newAnalysis(job, citation)

	result, fetchErr := o.fetcher.Fetch(budgetCtx, citation.URL)
	if fetchErr != nil {
		o.recordFetchFailure(analysis, fetchErr)
	} else {
		o.analyzePage(budgetCtx, analysis, citation, result, job.Payload.Keywords)
	}

	o.estimateAuthority(budgetCtx, analysis)

	return analysis, o.persist(ctx, analysis)
}

// newAnalysis builds the default-filled record every pipeline outcome
// decorates. Defaults-never-nulls: a failed step leaves its documented
// default object in place rather than an absence.
func (o *Orchestrator) newAnalysis(job *models.Job, citation models.Citation) *models.PageAnalysis {
	domain := common.DomainOf(citation.URL)

	isCompetitor := false
	for _, competitor := range job.Payload.Competitors {
		if common.SameDomain(competitor.Domain, domain) {
			isCompetitor = true
			break
		}
	}

	return &models.PageAnalysis{
		ID:                 common.NewAnalysisID(),
		JobID:              job.ID,
		RunID:              job.RunID,
		URL:                citation.URL,
		Domain:             domain,
		IsClientDomain:     common.SameDomain(job.Payload.Brand.Domain, domain),
		IsCompetitorDomain: isCompetitor,
		Quality:            models.DefaultContentQuality(),
		EEAT:               models.DefaultEEAT(),
		Crawl: models.CrawlOutcome{
			Method: models.FetchMethodNone,
		},
		Status:    models.AnalysisStatusCompleted,
		CreatedAt: o.now().UTC(),
	}
}

func (o *Orchestrator) recordFetchFailure(analysis *models.PageAnalysis, fetchErr error) {
	analysis.Crawl.Success = false
	analysis.Crawl.Error = fetchErr.Error()
	analysis.Crawl.ErrorKind = models.CrawlErrorServer

	var fe *fetch.Error
	if errors.As(fetchErr, &fe) {
		analysis.Crawl.StatusCode = fe.StatusCode
		if fe.Tier != "" && fe.Tier != "preflight" {
			analysis.Crawl.Method = fe.Tier
		}
		analysis.Crawl.ErrorKind = crawlErrorKind(fe.Kind)
	}

	o.logger.Debug().
		Str("url", analysis.URL).
		Str("error_kind", analysis.Crawl.ErrorKind).
		Msg("Citation not fetchable, recording defaults")
}

func crawlErrorKind(kind fetch.ErrorKind) string {
	switch kind {
	case fetch.KindSkipped:
		return models.CrawlErrorSkipped
	case fetch.KindNotFound:
		return models.CrawlErrorNotFound
	case fetch.KindClient:
		return models.CrawlErrorClient
	case fetch.KindBlocked:
		return models.CrawlErrorBlocked
	default:
		return models.CrawlErrorServer
	}
}

// analyzePage runs extraction and scoring over successfully fetched HTML.
func (o *Orchestrator) analyzePage(ctx context.Context, analysis *models.PageAnalysis, citation models.Citation, result *interfaces.FetchResult, keywords []string) {
	analysis.Crawl = models.CrawlOutcome{
		StatusCode: result.StatusCode,
		Method:     result.Method,
		Success:    true,
	}

	doc, err := extract.ParseDocument(result.HTML, citation.URL)
	if err != nil {
		// Unparseable HTML degrades to the crawl outcome plus defaults.
		analysis.Crawl.Error = fmt.Sprintf("document parse failed: %v", err)
		analysis.Status = models.AnalysisStatusWithErrors
		return
	}

	technical, onPage := extract.Extract(doc, keywords)
	analysis.Technical = technical
	analysis.OnPage = onPage

	text := o.scorer.PageText(citation.URL, result.HTML)
	analysis.Quality = o.scorer.ScoreQuality(ctx, text, onPage, technical)
	analysis.EEAT = o.scorer.AssessEEAT(ctx, text, analysis.Quality)
}

func (o *Orchestrator) estimateAuthority(ctx context.Context, analysis *models.PageAnalysis) {
	if analysis.Domain == "" {
		return
	}
	da, err := o.authority.Estimate(ctx, analysis.Domain)
	if err != nil {
		o.logger.Warn().Err(err).Str("domain", analysis.Domain).Msg("Authority estimation failed")
		return
	}
	analysis.Authority = *da
}

// persist writes the record, retrying once with a degraded status before
// giving up.
func (o *Orchestrator) persist(ctx context.Context, analysis *models.PageAnalysis) error {
	err := o.analyses.SaveAnalysis(ctx, analysis)
	if err == nil {
		return nil
	}

	o.logger.Warn().
		Err(err).
		Str("analysis_id", analysis.ID).
		Msg("Analysis persistence failed, retrying with degraded status")

	analysis.Status = models.AnalysisStatusWithErrors
	if retryErr := o.analyses.SaveAnalysis(ctx, analysis); retryErr != nil {
		return fmt.Errorf("analysis persistence failed after retry: %w", retryErr)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
