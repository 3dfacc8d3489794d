// Package metrics exposes Prometheus collectors for probe outcomes,
// durations and per-run gateway pass rates. It never blocks or alters
// assessment control flow: every recording method is safe to call from
// any goroutine and returns nothing an assessment could branch on.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/handlebauer/ar-io-observer/internal/entity"
	"github.com/handlebauer/ar-io-observer/internal/service"
)

// Metrics owns a dedicated Prometheus registry and the collectors described
// in the observability contract.
type Metrics struct {
	registry           *prometheus.Registry
	probeAttempts      *prometheus.CounterVec
	probeDuration      *prometheus.HistogramVec
	gatewayAssessments *prometheus.CounterVec
	namePassRatio      prometheus.Gauge
}

// New registers and returns a Metrics instance on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		probeAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "observer_probe_attempts_total",
			Help: "Count of probe attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "observer_probe_duration_seconds",
			Help:    "Probe duration in seconds by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		gatewayAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "observer_gateway_assessments_total",
			Help: "Count of completed gateway assessments by result.",
		}, []string{"result"}),
		namePassRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "observer_name_pass_ratio",
			Help: "Fraction of assessed names that passed for the last gateway assessed.",
		}),
	}

	registry.MustRegister(m.probeAttempts, m.probeDuration, m.gatewayAssessments, m.namePassRatio)
	return m
}

// Handler returns the promhttp handler for this Metrics' registry, to be
// mounted at the operator's chosen --metrics-addr.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnGatewayStarted satisfies application.ProgressObserver; gateway starts
// carry no metric of their own.
func (m *Metrics) OnGatewayStarted(string) {}

// OnGatewayAssessed records a completed gateway assessment's pass/fail
// result and the fraction of names that passed.
func (m *Metrics) OnGatewayAssessed(_ string, assessment entity.GatewayAssessment) {
	result := "fail"
	if assessment.Pass {
		result = "pass"
	}
	m.gatewayAssessments.WithLabelValues(result).Inc()

	total := len(assessment.ArnsAssessments.PrescribedNames) + len(assessment.ArnsAssessments.ChosenNames)
	if total == 0 {
		return
	}
	passed := 0
	for _, a := range assessment.ArnsAssessments.PrescribedNames {
		if a.Pass {
			passed++
		}
	}
	for _, a := range assessment.ArnsAssessments.ChosenNames {
		if a.Pass {
			passed++
		}
	}
	m.namePassRatio.Set(float64(passed) / float64(total))
}

// InstrumentedResolver wraps a service.Resolver, recording probe_attempts
// and probe_duration for kind="resolve".
type InstrumentedResolver struct {
	next    service.Resolver
	metrics *Metrics
}

// InstrumentResolver wraps next with Metrics recording.
func (m *Metrics) InstrumentResolver(next service.Resolver) *InstrumentedResolver {
	return &InstrumentedResolver{next: next, metrics: m}
}

// Resolve delegates to the wrapped resolver and records its outcome.
func (r *InstrumentedResolver) Resolve(ctx context.Context, host, name string) (entity.ArnsResolution, error) {
	start := time.Now()
	resolution, err := r.next.Resolve(ctx, host, name)
	r.metrics.probeDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case resolution.StatusCode == 404:
		outcome = "not_found"
	}
	r.metrics.probeAttempts.WithLabelValues("resolve", outcome).Inc()
	return resolution, err
}

// InstrumentedOwnershipProber wraps a service.OwnershipProber, recording
// probe_attempts and probe_duration for kind="ownership".
type InstrumentedOwnershipProber struct {
	next    service.OwnershipProber
	metrics *Metrics
}

// InstrumentOwnershipProber wraps next with Metrics recording.
func (m *Metrics) InstrumentOwnershipProber(next service.OwnershipProber) *InstrumentedOwnershipProber {
	return &InstrumentedOwnershipProber{next: next, metrics: m}
}

// AssessOwnership delegates to the wrapped prober and records its outcome.
func (p *InstrumentedOwnershipProber) AssessOwnership(ctx context.Context, host string, expectedWallets []string) entity.OwnershipAssessment {
	start := time.Now()
	assessment := p.next.AssessOwnership(ctx, host, expectedWallets)
	p.metrics.probeDuration.WithLabelValues("ownership").Observe(time.Since(start).Seconds())

	outcome := "ok"
	if !assessment.Pass {
		outcome = "error"
	}
	p.metrics.probeAttempts.WithLabelValues("ownership", outcome).Inc()
	return assessment
}
