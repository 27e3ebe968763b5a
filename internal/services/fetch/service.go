package fetch

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
)

// Service resolves a URL to HTML through an escalating sequence of fetch
// tiers. It is stateless aside from the pre-flight classifier and the
// rotating proxy cursor.
type Service struct {
	cfg      common.FetchConfig
	logger   arbor.ILogger
	client   *http.Client
	proxyIdx atomic.Uint32

	// run executes one tier attempt; swapped out in tests.
	run func(ctx context.Context, spec tierSpec, rawURL string) (string, int, error)
}

// NewFetchService creates the tiered fetch service.
func NewFetchService(cfg common.FetchConfig, logger arbor.ILogger) *Service {
	s := &Service{
		cfg:    cfg,
		logger: logger,
		client: newHTTPClient(),
	}
	s.run = s.runTier
	return s
}

func (s *Service) runTier(ctx context.Context, spec tierSpec, rawURL string) (string, int, error) {
	if spec.renderJS {
		return s.fetchRendered(ctx, spec, rawURL)
	}
	return s.fetchBasic(ctx, spec, rawURL)
}

// Fetch walks the tier list in order. A 404 at any tier is terminal; a 403
// or an undersized body escalates; a 2xx whose HTML carries a client-side
// rendering fingerprint escalates from the basic tier. The final tier runs
// only when the premium tier failed with a timeout-shaped error.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*interfaces.FetchResult, error) {
	if skipErr := Classify(rawURL); skipErr != nil {
		s.logger.Debug().
			Str("url", rawURL).
			Str("reason", skipErr.Message).
			Msg("URL rejected by pre-flight classifier")
		return nil, skipErr
	}

	tiers := buildTiers(s.cfg)

	var lastErr *Error
	prevTimedOut := false

	for i, spec := range tiers {
		if spec.afterTimeoutOnly && !prevTimedOut {
			break
		}

		s.logger.Debug().
			Str("url", rawURL).
			Str("tier", spec.name).
			Msg("Attempting fetch tier")

		html, status, err := s.run(ctx, spec, rawURL)
		if err != nil {
			lastErr = wrapTierError(spec.name, err)
			if lastErr.Terminal() {
				return nil, lastErr
			}
			prevTimedOut = lastErr.Kind == KindTimeout
			s.logger.Warn().
				Str("url", rawURL).
				Str("tier", spec.name).
				Str("kind", string(lastErr.Kind)).
				Msg("Fetch tier failed")
			continue
		}
		prevTimedOut = false

		if status < 200 || status >= 300 {
			lastErr = newStatusError(spec.name, status)
			if lastErr.Terminal() {
				return nil, lastErr
			}
			// 403 and friends escalate to a tier that looks more like a
			// real browser.
			continue
		}

		if len(strings.TrimSpace(html)) < s.cfg.MinBodyBytes {
			lastErr = &Error{
				Tier:       spec.name,
				StatusCode: status,
				Kind:       KindClient,
				Message:    "body too small",
			}
			continue
		}

		if i == 0 && LooksLikeSPA(html) {
			lastErr = &Error{
				Tier:       spec.name,
				StatusCode: status,
				Kind:       KindClient,
				Message:    "client-side rendering detected",
			}
			s.logger.Debug().
				Str("url", rawURL).
				Msg("SPA fingerprint detected, escalating to rendering tier")
			continue
		}

		s.logger.Debug().
			Str("url", rawURL).
			Str("method", spec.name).
			Int("status", status).
			Int("size", len(html)).
			Msg("Fetch succeeded")

		return &interfaces.FetchResult{
			HTML:       html,
			Method:     spec.name,
			StatusCode: status,
		}, nil
	}

	if lastErr == nil {
		lastErr = &Error{Tier: "none", Kind: KindNetwork, Message: "no fetch tier attempted"}
	}
	return nil, lastErr
}
