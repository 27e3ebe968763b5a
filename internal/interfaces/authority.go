package interfaces

import (
	"context"

	"github.com/ternarybob/citare/internal/models"
)

// AuthorityEstimator produces heuristic domain authority estimates. Requests
// are serialized through a single-concurrency queue with fixed minimum spacing
// between evaluations.
type AuthorityEstimator interface {
	Estimate(ctx context.Context, domain string) (*models.DomainAuthority, error)
}
