// Command ar-io-observer audits a fleet of ArNS gateways for one epoch and
// emits a JSON report summarizing per-gateway compliance.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/handlebauer/ar-io-observer/internal/application"
	"github.com/handlebauer/ar-io-observer/internal/config"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/auditlog"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/dedup"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/ownership"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/ratelimit"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/resolver"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/sources"
	"github.com/handlebauer/ar-io-observer/internal/logging"
	"github.com/handlebauer/ar-io-observer/internal/metrics"
	"github.com/handlebauer/ar-io-observer/internal/presenter"
	"github.com/handlebauer/ar-io-observer/internal/reportio"
	"github.com/handlebauer/ar-io-observer/internal/service"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, shutting down gracefully")
		cancel()
	}()

	run := func(ctx context.Context) error {
		return runOnce(ctx, cfg, logger)
	}

	if cfg.Schedule == "" {
		if err := run(ctx); err != nil && err != context.Canceled {
			logger.Error("run failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	runScheduled(ctx, cfg, logger, run)
}

// runScheduled repeats run on cfg.Schedule's cron expression until ctx is
// cancelled.
func runScheduled(ctx context.Context, cfg *config.Config, logger *zap.Logger, run func(context.Context) error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.Schedule, func() {
		if err := run(ctx); err != nil && err != context.Canceled {
			logger.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Error("invalid schedule expression", zap.String("schedule", cfg.Schedule), zap.Error(err))
		os.Exit(1)
	}

	c.Start()
	logger.Info("scheduler started", zap.String("schedule", cfg.Schedule))
	<-ctx.Done()
	<-c.Stop().Done()
}

// runOnce assembles the dependency graph and produces a single report.
func runOnce(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	gatewayHosts, err := sources.LoadGatewayHosts(cfg.GatewaysFile)
	if err != nil {
		return fmt.Errorf("load gateways file: %w", err)
	}
	arnsNames, err := sources.LoadArnsNames(cfg.NamesFile)
	if err != nil {
		return fmt.Errorf("load names file: %w", err)
	}
	epochHeights := sources.StaticEpochHeights{Start: cfg.EpochStart, End: cfg.EpochEnd}

	limiter := ratelimit.New(cfg.ProbeRate)

	auditWriter, err := auditlog.Open(cfg.AuditLogFile)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer auditWriter.Close()

	spamFilter := dedup.NewFilter(100_000, 0.01)
	recorder := auditlog.NewDedupingRecorder(auditWriter, spamFilter)

	metricsCollector := metrics.New()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, metricsCollector, logger)
	}

	var resolverSvc service.Resolver = resolver.New(resolver.Config{
		DNSTimeout:     cfg.DNSTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
		TLSTimeout:     cfg.TLSTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		Limiter:        limiter,
	})
	resolverSvc = auditlog.NewRecordingResolver(resolverSvc, recorder)
	resolverSvc = metricsCollector.InstrumentResolver(resolverSvc)

	var ownershipSvc service.OwnershipProber = ownership.New(ownership.Config{
		DNSTimeout:     cfg.DNSTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
		TLSTimeout:     cfg.TLSTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		Limiter:        limiter,
	})
	ownershipSvc = auditlog.NewRecordingOwnershipProber(ownershipSvc, recorder)
	ownershipSvc = metricsCollector.InstrumentOwnershipProber(ownershipSvc)

	nameAssessor := application.NewNameAssessor(resolverSvc, cfg.ReferenceGatewayHost)

	observer, stopPresenter := buildObserver(cfg, metricsCollector, logger)
	defer stopPresenter()

	builder := application.NewReportBuilder(
		application.Config{
			ObserverAddress:              cfg.ObserverAddress,
			GatewayAssessmentConcurrency: cfg.GatewayAssessmentConcurrency,
		},
		epochHeights,
		arnsNames,
		gatewayHosts,
		func() *application.HostAssessor {
			return application.NewHostAssessor(ownershipSvc, nameAssessor, cfg.NameAssessmentConcurrency)
		},
		observer,
		logger,
	)

	report, err := builder.GenerateReport(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	writer, err := reportio.NewWriter(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("open report output: %w", err)
	}
	defer writer.Close()

	if err := writer.Write(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info("report generated",
		zap.Int64("epochStartHeight", report.EpochStartHeight),
		zap.Int64("epochEndHeight", report.EpochEndHeight),
		zap.Int("gatewaysAssessed", len(report.GatewayAssessments)),
	)
	return nil
}

// buildObserver wires the progress observer for this run: the TUI
// dashboard when --dashboard is set, a plain progress bar otherwise, fanned
// out alongside the metrics collector either way. The returned func stops
// whichever presenter was started.
func buildObserver(cfg *config.Config, metricsCollector *metrics.Metrics, logger *zap.Logger) (application.ProgressObserver, func()) {
	if cfg.Dashboard {
		dashboard := presenter.NewDashboard()
		program := dashboard.Start()
		go func() {
			if _, err := program.Run(); err != nil {
				logger.Error("dashboard exited with an error", zap.Error(err))
			}
		}()
		return application.MultiObserver(dashboard, metricsCollector), func() { program.Quit() }
	}

	bar := presenter.NewProgressBar()
	return application.MultiObserver(bar, metricsCollector), bar.Wait
}

func serveMetrics(addr string, m *metrics.Metrics, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server failed", zap.Error(err))
	}
}
