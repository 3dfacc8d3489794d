// Package service declares the narrow contracts the assessment engine's
// leaf probes are built against, so infrastructure implementations
// (real HTTP transports, fakes in tests) can be swapped without touching
// the orchestration in package application.
package service

import (
	"context"

	"github.com/handlebauer/ar-io-observer/internal/entity"
)

// Resolver issues a single, unretried probe of a name against a gateway
// host. Implementations must not synthesize a resolution on transport or
// protocol failure; they must return an error instead.
type Resolver interface {
	Resolve(ctx context.Context, host, name string) (entity.ArnsResolution, error)
}

// OwnershipProber checks a gateway's claimed identity against the wallet
// set that is entitled to operate it.
type OwnershipProber interface {
	AssessOwnership(ctx context.Context, host string, expectedWallets []string) entity.OwnershipAssessment
}
