// Package ownership implements the gateway identity check: fetch a
// gateway's /ar-io/info endpoint and confirm its claimed wallet is one of
// the wallets entitled to operate that FQDN.
package ownership

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/handlebauer/ar-io-observer/internal/entity"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/ratelimit"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/resolver"
)

// Config configures an HTTPProber's dial-timeout profile, matching the
// Resolver's own DNS/connect/TLS/idle phase budget so both probes hold
// gateways to the same standard.
type Config struct {
	DNSTimeout     time.Duration
	ConnectTimeout time.Duration
	TLSTimeout     time.Duration
	IdleTimeout    time.Duration
	Limiter        *ratelimit.Gate
}

// HTTPProber implements service.OwnershipProber over a real HTTPS client.
type HTTPProber struct {
	client  *http.Client
	limiter *ratelimit.Gate
}

// New creates an HTTPProber from cfg, sharing the Resolver's phase-timeout
// dialer so a slow-drip /ar-io/info response is bound by the same
// socket-idle timeout as a name resolution.
func New(cfg Config) *HTTPProber {
	transport := resolver.NewTransport(resolver.Config{
		DNSTimeout:     cfg.DNSTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
		TLSTimeout:     cfg.TLSTimeout,
		IdleTimeout:    cfg.IdleTimeout,
	})
	return &HTTPProber{
		client:  &http.Client{Transport: transport},
		limiter: cfg.Limiter,
	}
}

type infoResponse struct {
	Wallet *string `json:"wallet"`
}

// AssessOwnership fetches https://{host}/ar-io/info and compares its
// wallet field against expectedWallets, which the caller must have
// pre-sorted ascending so the mismatch message is deterministic.
func (p *HTTPProber) AssessOwnership(ctx context.Context, host string, expectedWallets []string) entity.OwnershipAssessment {
	assessment := entity.OwnershipAssessment{ExpectedWallets: expectedWallets}

	if err := p.limiter.Wait(ctx); err != nil {
		reason := err.Error()
		assessment.FailureReason = &reason
		return assessment
	}

	url := fmt.Sprintf("https://%s/ar-io/info", host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		reason := err.Error()
		assessment.FailureReason = &reason
		return assessment
	}

	resp, err := p.client.Do(req)
	if err != nil {
		reason := err.Error()
		assessment.FailureReason = &reason
		return assessment
	}
	defer resp.Body.Close()

	var info infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		reason := err.Error()
		assessment.FailureReason = &reason
		return assessment
	}

	if info.Wallet == nil {
		reason := "No wallet found"
		assessment.FailureReason = &reason
		return assessment
	}

	assessment.ObservedWallet = info.Wallet
	if !contains(expectedWallets, *info.Wallet) {
		reason := fmt.Sprintf("Wallet mismatch: expected one of %s but found %s", strings.Join(expectedWallets, ", "), *info.Wallet)
		assessment.FailureReason = &reason
		return assessment
	}

	assessment.Pass = true
	return assessment
}

func contains(wallets []string, wallet string) bool {
	i := sort.SearchStrings(wallets, wallet)
	return i < len(wallets) && wallets[i] == wallet
}
