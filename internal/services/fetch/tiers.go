package fetch

import (
	"time"

	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/models"
)

// tierSpec describes one fetch strategy. Escalation walks the tiers in
// order; the decision logic lives in the service loop, not per tier.
type tierSpec struct {
	name           string
	timeout        time.Duration
	renderJS       bool
	useProxy       bool
	blockResources bool
	// waitNetworkIdle holds out for network quiescence; when false a
	// rendering tier settles for the DOM load event.
	waitNetworkIdle bool
	// afterTimeoutOnly tiers run only when the previous tier failed with a
	// timeout-shaped error.
	afterTimeoutOnly bool
}

func buildTiers(cfg common.FetchConfig) []tierSpec {
	basicTimeout := common.ParseDurationOr(cfg.BasicTimeout, 15*time.Second)
	premiumTimeout := common.ParseDurationOr(cfg.PremiumTimeout, 30*time.Second)

	return []tierSpec{
		{
			name:           models.FetchMethodBasic,
			timeout:        basicTimeout,
			blockResources: true,
		},
		{
			name:            models.FetchMethodPremium,
			timeout:         premiumTimeout,
			renderJS:        true,
			useProxy:        true,
			blockResources:  true,
			waitNetworkIdle: true,
		},
		{
			name:             models.FetchMethodFinal,
			timeout:          premiumTimeout,
			renderJS:         true,
			useProxy:         true,
			afterTimeoutOnly: true,
		},
	}
}
