package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handlebauer/ar-io-observer/internal/entity"
	"github.com/handlebauer/ar-io-observer/internal/repository"
)

// Config configures a ReportBuilder run.
type Config struct {
	ObserverAddress              string
	GatewayAssessmentConcurrency int
}

// HostAssessorFactory builds the HostAssessor used for one gateway.
// ReportBuilder invokes it once per gateway so implementations may vary
// concurrency limits or reference-host wiring per call if needed; the
// wiring in cmd/ar-io-observer builds a fresh *HostAssessor on every call.
type HostAssessorFactory func() *HostAssessor

// ReportBuilder is the top-level orchestrator: it fetches epoch bounds and
// name lists, fans out across the gateway fleet with bounded concurrency,
// and assembles the ObserverReport.
type ReportBuilder struct {
	cfg         Config
	heights     repository.EpochHeightSource
	names       repository.ArnsNamesSource
	hosts       repository.GatewayHostsSource
	assessorFor HostAssessorFactory
	observer    ProgressObserver
	logger      *zap.Logger
	now         func() time.Time
}

// NewReportBuilder wires a ReportBuilder from its sources and a factory
// producing the HostAssessor used for every gateway. A nil logger falls
// back to a no-op logger.
func NewReportBuilder(
	cfg Config,
	heights repository.EpochHeightSource,
	names repository.ArnsNamesSource,
	hosts repository.GatewayHostsSource,
	assessorFor HostAssessorFactory,
	observer ProgressObserver,
	logger *zap.Logger,
) *ReportBuilder {
	if cfg.GatewayAssessmentConcurrency < 1 {
		cfg.GatewayAssessmentConcurrency = 1
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportBuilder{
		cfg:         cfg,
		heights:     heights,
		names:       names,
		hosts:       hosts,
		assessorFor: assessorFor,
		observer:    observer,
		logger:      logger,
		now:         time.Now,
	}
}

// GenerateReport produces a complete ObserverReport, or a fatal error when
// one of the source interfaces cannot supply its inputs. No error escapes
// this method once the gateway fan-out has started: individual probe and
// gateway failures are always captured as pass=false records.
func (b *ReportBuilder) GenerateReport(ctx context.Context) (entity.ObserverReport, error) {
	epochStart, err := b.heights.GetEpochStartHeight(ctx)
	if err != nil {
		b.logger.Error("fatal source error", zap.String("source", "epochHeightSource"), zap.Error(err))
		return entity.ObserverReport{}, fmt.Errorf("epoch height source: %w", err)
	}
	epochEnd, err := b.heights.GetEpochEndHeight(ctx)
	if err != nil {
		b.logger.Error("fatal source error", zap.String("source", "epochHeightSource"), zap.Error(err))
		return entity.ObserverReport{}, fmt.Errorf("epoch height source: %w", err)
	}

	prescribedNames, err := b.names.GetPrescribedNames(ctx, epochStart)
	if err != nil {
		b.logger.Error("fatal source error", zap.String("source", "arnsNamesSource"), zap.Error(err))
		return entity.ObserverReport{}, fmt.Errorf("arns names source: %w", err)
	}
	chosenNames, err := b.names.GetChosenNames(ctx, epochStart)
	if err != nil {
		b.logger.Error("fatal source error", zap.String("source", "arnsNamesSource"), zap.Error(err))
		return entity.ObserverReport{}, fmt.Errorf("arns names source: %w", err)
	}

	hosts, err := b.hosts.GetHosts(ctx)
	if err != nil {
		b.logger.Error("fatal source error", zap.String("source", "gatewayHostsSource"), zap.Error(err))
		return entity.ObserverReport{}, fmt.Errorf("gateway hosts source: %w", err)
	}

	expectedWalletsByFQDN := groupWalletsByFQDN(hosts)

	assessments := make(map[string]entity.GatewayAssessment, len(expectedWalletsByFQDN))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.cfg.GatewayAssessmentConcurrency)

	for fqdn, wallets := range expectedWalletsByFQDN {
		fqdn, wallets := fqdn, wallets
		group.Go(func() error {
			b.observer.OnGatewayStarted(fqdn)
			assessment := b.assessorFor().AssessHost(groupCtx, fqdn, prescribedNames, chosenNames, wallets)
			b.observer.OnGatewayAssessed(fqdn, assessment)

			mu.Lock()
			assessments[fqdn] = assessment
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return entity.ObserverReport{
		FormatVersion:      entity.FormatVersion,
		ObserverAddress:    b.cfg.ObserverAddress,
		EpochStartHeight:   epochStart,
		EpochEndHeight:     epochEnd,
		GeneratedAt:        b.now().Unix(),
		GatewayAssessments: assessments,
	}, nil
}

// groupWalletsByFQDN collapses gateway-registry entries that share an FQDN
// into a single, sorted, deduplicated wallet set per FQDN.
func groupWalletsByFQDN(hosts []entity.GatewayHost) map[string][]string {
	seen := make(map[string]map[string]struct{})
	for _, h := range hosts {
		wallets, ok := seen[h.FQDN]
		if !ok {
			wallets = make(map[string]struct{})
			seen[h.FQDN] = wallets
		}
		wallets[h.Wallet] = struct{}{}
	}

	result := make(map[string][]string, len(seen))
	for fqdn, wallets := range seen {
		list := make([]string, 0, len(wallets))
		for w := range wallets {
			list = append(list, w)
		}
		sort.Strings(list)
		result[fqdn] = list
	}
	return result
}
