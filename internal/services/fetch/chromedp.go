package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

var blockedResourcePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
	"*.css", "*.woff", "*.woff2", "*.ttf", "*.mp4", "*.webm",
}

// fetchRendered runs a full browser fetch for the premium and final tiers.
// The premium tier blocks heavy resources and waits for network quiescence;
// the final tier loads everything and settles for the DOM load event.
func (s *Service) fetchRendered(ctx context.Context, spec tierSpec, rawURL string) (string, int, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, s.allocatorOptions(spec)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			s.logger.Debug().Msgf("chromedp: "+format, args...)
		}),
	)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, spec.timeout)
	defer cancel()

	statusCode := trackDocumentStatus(runCtx, rawURL)

	tasks := chromedp.Tasks{network.Enable()}
	if spec.blockResources {
		tasks = append(tasks, network.SetBlockedURLs(blockedResourcePatterns))
	}
	tasks = append(tasks, chromedp.Navigate(rawURL))
	if spec.waitNetworkIdle {
		tasks = append(tasks, waitNetworkIdle(500*time.Millisecond))
	} else {
		tasks = append(tasks, chromedp.WaitReady("body"))
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(runCtx, tasks); err != nil {
		return "", statusCode(), err
	}

	return html, statusCode(), nil
}

func (s *Service) allocatorOptions(spec tierSpec) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserAgent(s.cfg.UserAgent),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.WindowSize(1920, 1080),
	}

	if s.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	if s.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ChromePath))
	}
	if spec.useProxy {
		if proxy := s.nextProxy(); proxy != "" {
			opts = append(opts, chromedp.ProxyServer(proxy))
		}
	}

	return opts
}

// nextProxy rotates through the configured egress identities.
func (s *Service) nextProxy() string {
	if len(s.cfg.ProxyServers) == 0 {
		return ""
	}
	idx := s.proxyIdx.Add(1) - 1
	return s.cfg.ProxyServers[int(idx)%len(s.cfg.ProxyServers)]
}

// trackDocumentStatus listens for the main document response and returns an
// accessor for its status code. Zero means no response was observed.
func trackDocumentStatus(ctx context.Context, rawURL string) func() int {
	var mu sync.Mutex
	status := 0

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if status == 0 || strings.HasPrefix(resp.Response.URL, rawURL) {
			status = int(resp.Response.Status)
		}
	})

	return func() int {
		mu.Lock()
		defer mu.Unlock()
		return status
	}
}

// waitNetworkIdle blocks until no requests have been in flight for the idle
// window, or the surrounding context expires.
func waitNetworkIdle(idle time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var mu sync.Mutex
		inflight := 0
		activity := make(chan struct{}, 1)

		notify := func() {
			select {
			case activity <- struct{}{}:
			default:
			}
		}

		chromedp.ListenTarget(ctx, func(ev interface{}) {
			mu.Lock()
			defer mu.Unlock()
			switch ev.(type) {
			case *network.EventRequestWillBeSent:
				inflight++
			case *network.EventLoadingFinished, *network.EventLoadingFailed:
				if inflight > 0 {
					inflight--
				}
			default:
				return
			}
			notify()
		})

		timer := time.NewTimer(idle)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-activity:
				mu.Lock()
				busy := inflight > 0
				mu.Unlock()
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				if !busy {
					timer.Reset(idle)
				}
			case <-timer.C:
				mu.Lock()
				busy := inflight > 0
				mu.Unlock()
				if !busy {
					return nil
				}
				timer.Reset(idle)
			}
		}
	})
}
