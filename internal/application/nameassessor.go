package application

import (
	"context"
	"strings"
	"time"

	"github.com/handlebauer/ar-io-observer/internal/entity"
	"github.com/handlebauer/ar-io-observer/internal/service"
)

const failureReasonMaxLen = 512

// comparedFields is the ordered set of ArnsResolution fields whose equality
// between reference and target determines a name assessment's pass verdict.
// contentLength is omitted because chunked responses may report it
// differently per gateway with no meaningful divergence in content;
// statusCode is surfaced on the assessment for diagnostics only, since a
// mismatched resolvedId or dataHashDigest already implies a status mismatch.
var comparedFields = []string{"resolvedId", "ttlSeconds", "contentType", "dataHashDigest"}

// NameAssessor cross-checks a single name's resolution on the reference
// gateway against its resolution on a target gateway.
type NameAssessor struct {
	resolver      service.Resolver
	referenceHost string
}

// NewNameAssessor creates a NameAssessor that always probes referenceHost
// first when comparing against a target.
func NewNameAssessor(resolver service.Resolver, referenceHost string) *NameAssessor {
	return &NameAssessor{resolver: resolver, referenceHost: referenceHost}
}

// Assess probes name on the reference gateway and then on host, in that
// order, and compares the two resolutions.
func (a *NameAssessor) Assess(ctx context.Context, host, name string) entity.ArnsNameAssessment {
	reference, refErr := a.resolver.Resolve(ctx, a.referenceHost, name)
	target, targetErr := a.resolver.Resolve(ctx, host, name)
	assessedAt := time.Now().Unix()

	if refErr != nil || targetErr != nil {
		msg := probeErrorMessage(refErr, targetErr)
		return entity.ArnsNameAssessment{
			AssessedAt:    assessedAt,
			FailureReason: &msg,
			Pass:          false,
		}
	}

	assessment := entity.ArnsNameAssessment{
		AssessedAt:         assessedAt,
		ExpectedStatusCode: intPtr(reference.StatusCode),
		ResolvedStatusCode: intPtr(target.StatusCode),
		ExpectedID:         reference.ResolvedID,
		ResolvedID:         target.ResolvedID,
		ExpectedDataHash:   reference.DataHashDigest,
		ResolvedDataHash:   target.DataHashDigest,
		Timings:            target.Timings,
	}

	var mismatches []string
	if !strPtrEqual(reference.ResolvedID, target.ResolvedID) {
		mismatches = append(mismatches, "resolvedId mismatch")
	}
	if !strPtrEqual(reference.TTLSeconds, target.TTLSeconds) {
		mismatches = append(mismatches, "ttlSeconds mismatch")
	}
	if !strPtrEqual(reference.ContentType, target.ContentType) {
		mismatches = append(mismatches, "contentType mismatch")
	}
	if !strPtrEqual(reference.DataHashDigest, target.DataHashDigest) {
		mismatches = append(mismatches, "dataHashDigest mismatch")
	}

	if len(mismatches) == 0 {
		assessment.Pass = true
		return assessment
	}

	reason := strings.Join(mismatches, ", ")
	assessment.FailureReason = &reason
	return assessment
}

func probeErrorMessage(refErr, targetErr error) string {
	var msg string
	switch {
	case refErr != nil && targetErr != nil:
		msg = "reference: " + refErr.Error() + "; target: " + targetErr.Error()
	case refErr != nil:
		msg = "reference: " + refErr.Error()
	default:
		msg = "target: " + targetErr.Error()
	}
	if len(msg) > failureReasonMaxLen {
		msg = msg[:failureReasonMaxLen]
	}
	return msg
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtr(v int) *int {
	return &v
}
