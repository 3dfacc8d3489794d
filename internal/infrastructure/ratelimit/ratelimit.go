// Package ratelimit provides a thin wrapper around golang.org/x/time/rate
// shared by every outbound probe so a single flag controls the observer's
// total request rate against the gateway fleet.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Gate throttles callers before they issue an outbound probe. A nil *Gate
// is a valid, unthrottled gate.
type Gate struct {
	limiter *rate.Limiter
}

// New creates a Gate allowing ratePerSecond probes per second, with a burst
// of one. A ratePerSecond of zero or less disables throttling.
func New(ratePerSecond float64) *Gate {
	if ratePerSecond <= 0 {
		return &Gate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Gate{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1)}
}

// Wait blocks until the gate admits one probe, or ctx is canceled.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil || g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}
