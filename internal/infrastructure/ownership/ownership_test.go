package ownership

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// httpScheme forces every outgoing request onto plain HTTP so tests can
// point AssessOwnership's hardcoded "https://{host}/ar-io/info" URL at an
// httptest.Server without needing a TLS certificate.
type httpScheme struct{}

func (httpScheme) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = "http"
	return http.DefaultTransport.RoundTrip(clone)
}

func newTestProber(server *httptest.Server) *HTTPProber {
	p := New(Config{})
	p.client.Transport = httpScheme{}
	return p
}

// hostOf strips the scheme from server.URL, leaving "127.0.0.1:port".
func hostOf(server *httptest.Server) string {
	return server.Listener.Addr().String()
}

func TestAssessOwnership_Mismatch(t *testing.T) {
	// A reported wallet outside the expected set must fail with the
	// observed wallet recorded alongside the ones that were expected.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"wallet":"Z"}`))
	}))
	defer server.Close()

	prober := newTestProber(server)
	assessment := prober.AssessOwnership(context.Background(), hostOf(server), []string{"A", "B"})

	if assessment.Pass {
		t.Fatalf("expected pass=false")
	}
	want := "Wallet mismatch: expected one of A, B but found Z"
	if assessment.FailureReason == nil || *assessment.FailureReason != want {
		t.Fatalf("failureReason = %v, want %q", assessment.FailureReason, want)
	}
	if assessment.ObservedWallet == nil || *assessment.ObservedWallet != "Z" {
		t.Fatalf("observedWallet = %v, want Z", assessment.ObservedWallet)
	}
}

func TestAssessOwnership_Match(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"wallet":"A"}`))
	}))
	defer server.Close()

	prober := newTestProber(server)
	assessment := prober.AssessOwnership(context.Background(), hostOf(server), []string{"A", "B"})

	if !assessment.Pass {
		t.Fatalf("expected pass=true, got failureReason=%v", assessment.FailureReason)
	}
	if assessment.FailureReason != nil {
		t.Fatalf("expected no failure reason on pass")
	}
}

func TestAssessOwnership_NoWallet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	prober := newTestProber(server)
	assessment := prober.AssessOwnership(context.Background(), hostOf(server), []string{"A"})

	if assessment.Pass {
		t.Fatalf("expected pass=false")
	}
	if assessment.FailureReason == nil || *assessment.FailureReason != "No wallet found" {
		t.Fatalf("failureReason = %v, want 'No wallet found'", assessment.FailureReason)
	}
}

func TestAssessOwnership_TransportError(t *testing.T) {
	prober := New(Config{})
	assessment := prober.AssessOwnership(context.Background(), "127.0.0.1:1", []string{"A"})

	if assessment.Pass {
		t.Fatalf("expected pass=false on unreachable host")
	}
	if assessment.FailureReason == nil {
		t.Fatalf("expected a failure reason")
	}
}
