package authority

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/models"
)

// authorityBracket is the heuristic baseline for a class of domains. Jitter
// keeps same-bracket domains from producing identical outputs.
type authorityBracket struct {
	authority int
	jitter    int
	backlinks int
	referring int
	spam      int
}

var tldBrackets = map[string]authorityBracket{
	"gov": {authority: 85, jitter: 10, backlinks: 500000, referring: 8000, spam: 1},
	"edu": {authority: 80, jitter: 10, backlinks: 300000, referring: 6000, spam: 1},
	"org": {authority: 55, jitter: 15, backlinks: 50000, referring: 1500, spam: 3},
	"io":  {authority: 45, jitter: 15, backlinks: 20000, referring: 800, spam: 4},
	"com": {authority: 40, jitter: 20, backlinks: 15000, referring: 600, spam: 5},
}

var defaultBracket = authorityBracket{authority: 30, jitter: 15, backlinks: 5000, referring: 200, spam: 7}

// Known high-visibility domains that the TLD heuristic undershoots.
var domainOverrides = map[string]authorityBracket{
	"wikipedia.org":     {authority: 95, jitter: 3, backlinks: 5000000, referring: 100000, spam: 0},
	"github.com":        {authority: 92, jitter: 3, backlinks: 3000000, referring: 80000, spam: 0},
	"stackoverflow.com": {authority: 90, jitter: 3, backlinks: 2000000, referring: 60000, spam: 0},
	"medium.com":        {authority: 85, jitter: 5, backlinks: 1000000, referring: 40000, spam: 2},
	"forbes.com":        {authority: 88, jitter: 4, backlinks: 1500000, referring: 50000, spam: 1},
	"nytimes.com":       {authority: 92, jitter: 3, backlinks: 4000000, referring: 90000, spam: 0},
	"reddit.com":        {authority: 88, jitter: 4, backlinks: 2500000, referring: 70000, spam: 2},
	"g2.com":            {authority: 78, jitter: 5, backlinks: 400000, referring: 12000, spam: 2},
	"capterra.com":      {authority: 76, jitter: 5, backlinks: 350000, referring: 10000, spam: 2},
	"trustpilot.com":    {authority: 80, jitter: 5, backlinks: 600000, referring: 20000, spam: 3},
}

type request struct {
	domain string
	result chan *models.DomainAuthority
}

// Estimator produces heuristic domain authority figures. Requests are
// serialized through a single worker goroutine with a fixed minimum spacing
// between evaluations.
type Estimator struct {
	logger   arbor.ILogger
	limiter  *rate.Limiter
	requests chan request
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewEstimator creates the estimator and starts its worker.
func NewEstimator(cfg common.AuthorityConfig, logger arbor.ILogger) *Estimator {
	interval := common.ParseDurationOr(cfg.MinInterval, 0)
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Estimator{
		logger:   logger,
		limiter:  limiter,
		requests: make(chan request),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go e.worker()
	return e
}

func (e *Estimator) worker() {
	for req := range e.requests {
		// The wait is abandoned on shutdown; the estimate itself is local
		// and cheap, so it is still answered.
		_ = e.limiter.Wait(e.ctx)
		req.result <- estimate(req.domain)
	}
	close(e.done)
}

// Estimate computes the authority figures for a domain. Blocks until the
// serialized queue reaches this request or the context expires.
func (e *Estimator) Estimate(ctx context.Context, domain string) (*models.DomainAuthority, error) {
	req := request{domain: domain, result: make(chan *models.DomainAuthority, 1)}

	select {
	case e.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-req.result:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker. Pending Estimate calls that already queued will
// still complete.
func (e *Estimator) Close() error {
	e.cancel()
	close(e.requests)
	<-e.done
	return nil
}

func estimate(domain string) *models.DomainAuthority {
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "www."))
	bracket := bracketFor(domain)

	// Jitter is seeded from the domain so repeat estimates for the same
	// domain are stable across calls and restarts.
	rng := rand.New(rand.NewSource(int64(domainHash(domain))))

	authority := bracket.authority + rng.Intn(bracket.jitter+1)
	if authority > 100 {
		authority = 100
	}

	pageAuthority := authority - 5 - rng.Intn(10)
	if pageAuthority < 1 {
		pageAuthority = 1
	}

	return &models.DomainAuthority{
		Authority:        authority,
		PageAuthority:    pageAuthority,
		BacklinkCount:    bracket.backlinks + rng.Intn(bracket.backlinks/10+1),
		ReferringDomains: bracket.referring + rng.Intn(bracket.referring/10+1),
		SpamScore:        bracket.spam,
	}
}

func bracketFor(domain string) authorityBracket {
	if bracket, ok := domainOverrides[domain]; ok {
		return bracket
	}

	parts := strings.Split(domain, ".")
	tld := parts[len(parts)-1]
	bracket, ok := tldBrackets[tld]
	if !ok {
		bracket = defaultBracket
	}

	// Short memorable domains tend to be older and better linked.
	name := parts[0]
	if len(parts) >= 2 {
		name = parts[len(parts)-2]
	}
	switch {
	case len(name) <= 5:
		bracket.authority += 8
	case len(name) <= 10:
		bracket.authority += 4
	}

	return bracket
}

func domainHash(domain string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(domain))
	return h.Sum32()
}
