package application

import (
	"context"
	"errors"
	"testing"

	"github.com/handlebauer/ar-io-observer/internal/entity"
)

// fakeResolver returns canned resolutions or errors keyed by host.
type fakeResolver struct {
	byHost map[string]entity.ArnsResolution
	errs   map[string]error
}

func (f *fakeResolver) Resolve(_ context.Context, host, _ string) (entity.ArnsResolution, error) {
	if err, ok := f.errs[host]; ok {
		return entity.ArnsResolution{}, err
	}
	return f.byHost[host], nil
}

func strp(s string) *string { return &s }

func TestNameAssessor_HashDivergence(t *testing.T) {
	// A hash mismatch alone, with every other field identical, fails with
	// a single-cause reason.
	resolver := &fakeResolver{
		byHost: map[string]entity.ArnsResolution{
			"reference.example": {
				StatusCode:     200,
				ResolvedID:     strp("X"),
				TTLSeconds:     strp("600"),
				ContentType:    strp("text/html"),
				DataHashDigest: strp("hashA"),
			},
			"gateway.example": {
				StatusCode:     200,
				ResolvedID:     strp("X"),
				TTLSeconds:     strp("600"),
				ContentType:    strp("text/html"),
				DataHashDigest: strp("hashB"),
			},
		},
	}

	assessor := NewNameAssessor(resolver, "reference.example")
	result := assessor.Assess(context.Background(), "gateway.example", "ardrive")

	if result.Pass {
		t.Fatalf("expected pass=false, got true")
	}
	if result.FailureReason == nil || *result.FailureReason != "dataHashDigest mismatch" {
		t.Fatalf("failureReason = %v, want 'dataHashDigest mismatch'", result.FailureReason)
	}
}

func TestNameAssessor_404Symmetry(t *testing.T) {
	// A name unresolved on both sides passes: matching synthetic 404s carry
	// no id/hash fields to compare.
	resolver := &fakeResolver{
		byHost: map[string]entity.ArnsResolution{
			"reference.example": {StatusCode: 404},
			"gateway.example":   {StatusCode: 404},
		},
	}

	assessor := NewNameAssessor(resolver, "reference.example")
	result := assessor.Assess(context.Background(), "gateway.example", "missing-name")

	if !result.Pass {
		t.Fatalf("expected pass=true, got false, reason=%v", result.FailureReason)
	}
	if result.ExpectedStatusCode == nil || *result.ExpectedStatusCode != 404 {
		t.Fatalf("expectedStatusCode = %v, want 404", result.ExpectedStatusCode)
	}
	if result.ResolvedStatusCode == nil || *result.ResolvedStatusCode != 404 {
		t.Fatalf("resolvedStatusCode = %v, want 404", result.ResolvedStatusCode)
	}
	if result.ExpectedID != nil || result.ResolvedID != nil {
		t.Fatalf("expected absent ids on synthetic 404, got expected=%v resolved=%v", result.ExpectedID, result.ResolvedID)
	}
}

func TestNameAssessor_ByteCapMatch(t *testing.T) {
	// Identical capped hashes pass regardless of the underlying body size.
	resolver := &fakeResolver{
		byHost: map[string]entity.ArnsResolution{
			"reference.example": {StatusCode: 200, ResolvedID: strp("X"), DataHashDigest: strp("cappedHash")},
			"gateway.example":   {StatusCode: 200, ResolvedID: strp("X"), DataHashDigest: strp("cappedHash")},
		},
	}

	assessor := NewNameAssessor(resolver, "reference.example")
	result := assessor.Assess(context.Background(), "gateway.example", "big-name")

	if !result.Pass {
		t.Fatalf("expected pass=true, got false, reason=%v", result.FailureReason)
	}
}

func TestNameAssessor_ResolverError(t *testing.T) {
	resolver := &fakeResolver{
		errs: map[string]error{
			"gateway.example": errors.New("connection reset by peer"),
		},
		byHost: map[string]entity.ArnsResolution{
			"reference.example": {StatusCode: 200},
		},
	}

	assessor := NewNameAssessor(resolver, "reference.example")
	result := assessor.Assess(context.Background(), "gateway.example", "ardrive")

	if result.Pass {
		t.Fatalf("expected pass=false on resolver error")
	}
	if result.FailureReason == nil {
		t.Fatalf("expected a failure reason")
	}
	if result.ExpectedID != nil || result.ResolvedID != nil {
		t.Fatalf("expected absent fields on error path")
	}
}

func TestNameAssessor_ReferenceFailurePropagates(t *testing.T) {
	// An unreachable reference gateway fails the assessment even when the
	// target itself resolved fine, since there is nothing to compare against.
	resolver := &fakeResolver{
		errs: map[string]error{
			"reference.example": errors.New("reference gateway unreachable"),
		},
		byHost: map[string]entity.ArnsResolution{
			"gateway.example": {StatusCode: 200},
		},
	}

	assessor := NewNameAssessor(resolver, "reference.example")
	result := assessor.Assess(context.Background(), "gateway.example", "ardrive")

	if result.Pass {
		t.Fatalf("expected pass=false when reference gateway fails")
	}
}
