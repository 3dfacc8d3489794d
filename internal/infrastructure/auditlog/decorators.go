package auditlog

import (
	"context"
	"time"

	"github.com/handlebauer/ar-io-observer/internal/entity"
	"github.com/handlebauer/ar-io-observer/internal/service"
)

// RecordingResolver wraps a service.Resolver, appending one audit-log entry
// per Resolve call. The wrapped call's result and error are returned
// unchanged; recording failures are swallowed since the audit log is a
// diagnostic side channel, not part of the report contract.
type RecordingResolver struct {
	next   service.Resolver
	writer Recorder
}

// NewRecordingResolver wraps next so every resolution is recorded to writer.
func NewRecordingResolver(next service.Resolver, writer Recorder) *RecordingResolver {
	return &RecordingResolver{next: next, writer: writer}
}

// Resolve delegates to the wrapped resolver and records the outcome.
func (r *RecordingResolver) Resolve(ctx context.Context, host, name string) (entity.ArnsResolution, error) {
	start := time.Now()
	resolution, err := r.next.Resolve(ctx, host, name)
	entry := Entry{
		Time:       start,
		Kind:       "resolve",
		Host:       host,
		Name:       name,
		StatusCode: resolution.StatusCode,
		DurationMs: time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		entry.Outcome = "error"
		entry.Error = truncateError(err)
	case resolution.StatusCode == 404:
		entry.Outcome = "not_found"
	default:
		entry.Outcome = "ok"
	}
	_ = r.writer.Record(entry)
	return resolution, err
}

// RecordingOwnershipProber wraps a service.OwnershipProber, appending one
// audit-log entry per AssessOwnership call.
type RecordingOwnershipProber struct {
	next   service.OwnershipProber
	writer Recorder
}

// NewRecordingOwnershipProber wraps next so every ownership probe is
// recorded to writer.
func NewRecordingOwnershipProber(next service.OwnershipProber, writer Recorder) *RecordingOwnershipProber {
	return &RecordingOwnershipProber{next: next, writer: writer}
}

// AssessOwnership delegates to the wrapped prober and records the outcome.
func (p *RecordingOwnershipProber) AssessOwnership(ctx context.Context, host string, expectedWallets []string) entity.OwnershipAssessment {
	start := time.Now()
	assessment := p.next.AssessOwnership(ctx, host, expectedWallets)
	entry := Entry{
		Time:       start,
		Kind:       "ownership",
		Host:       host,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if assessment.Pass {
		entry.Outcome = "ok"
	} else {
		entry.Outcome = "error"
		if assessment.FailureReason != nil {
			entry.Error = truncateError(errString(*assessment.FailureReason))
		}
	}
	_ = p.writer.Record(entry)
	return assessment
}

// errString adapts a plain string to the error interface so truncateError
// can be reused for both call sites.
type errString string

func (e errString) Error() string { return string(e) }
