package resolver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestResolver builds an HTTPResolver whose transport always dials the
// given test server, regardless of the host in the request URL, so the
// full Resolve path (header parsing, 404 detection, capped hashing) can be
// exercised without real DNS or a certificate matching "{name}.{host}".
func newTestResolver(t *testing.T, server *httptest.Server) *HTTPResolver {
	t.Helper()
	addr := server.Listener.Addr().String()

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, network, addr)
		},
	}
	return &HTTPResolver{
		cfg:    Config{}.withDefaults(),
		client: &http.Client{Transport: transport},
	}
}

func TestHashCapped_SmallBody(t *testing.T) {
	body := []byte("hello world")
	digest, err := hashCapped(readCloser(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := sha256.Sum256(body)
	if digest != base64.RawURLEncoding.EncodeToString(want[:]) {
		t.Errorf("digest mismatch for small body")
	}
}

func TestHashCapped_ExactlyAtCap(t *testing.T) {
	body := bytes.Repeat([]byte("a"), MaxHashBytes)
	digest, err := hashCapped(readCloser(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := sha256.Sum256(body)
	if digest != base64.RawURLEncoding.EncodeToString(want[:]) {
		t.Errorf("digest mismatch at exact cap")
	}
}

func TestHashCapped_BeyondCapHashesOnlyFirstMiB(t *testing.T) {
	// Byte cap: only the first MaxHashBytes bytes are hashed, regardless of
	// how much larger the body is.
	body := bytes.Repeat([]byte("b"), MaxHashBytes+2*1024*1024)
	digest, err := hashCapped(readCloser(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := sha256.Sum256(body[:MaxHashBytes])
	if digest != base64.RawURLEncoding.EncodeToString(want[:]) {
		t.Errorf("digest should reflect only the first %d bytes", MaxHashBytes)
	}
}

func TestHashCapped_EmptyBodyIsAbsent(t *testing.T) {
	digest, err := hashCapped(readCloser(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if digest != "" {
		t.Errorf("expected empty digest for empty body, got %q", digest)
	}
}

func TestResolve_ByteCapEquivalence(t *testing.T) {
	// Bodies larger than the byte cap that share their first MiB must hash
	// identically even though the remainder of each body differs.
	firstMiB := bytes.Repeat([]byte("x"), MaxHashBytes)
	refBody := append(append([]byte{}, firstMiB...), bytes.Repeat([]byte("R"), 1024*1024)...)
	targetBody := append(append([]byte{}, firstMiB...), bytes.Repeat([]byte("T"), 1024*1024)...)

	refServer := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-arns-resolved-id", "X")
		w.Write(refBody)
	}))
	defer refServer.Close()

	targetServer := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-arns-resolved-id", "X")
		w.Write(targetBody)
	}))
	defer targetServer.Close()

	refResolver := newTestResolver(t, refServer)
	targetResolver := newTestResolver(t, targetServer)

	refResolution, err := refResolver.Resolve(context.Background(), "reference.example", "big-name")
	if err != nil {
		t.Fatalf("reference resolve failed: %v", err)
	}
	targetResolution, err := targetResolver.Resolve(context.Background(), "gateway.example", "big-name")
	if err != nil {
		t.Fatalf("target resolve failed: %v", err)
	}

	if refResolution.DataHashDigest == nil || targetResolution.DataHashDigest == nil {
		t.Fatalf("expected both digests populated")
	}
	if *refResolution.DataHashDigest != *targetResolution.DataHashDigest {
		t.Errorf("digests should match on identical first MiB: %s != %s", *refResolution.DataHashDigest, *targetResolution.DataHashDigest)
	}
}

func TestResolve_Synthetic404(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-arns-resolved-id", "should-not-be-seen")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found body that must not be hashed"))
	}))
	defer server.Close()

	r := newTestResolver(t, server)
	resolution, err := r.Resolve(context.Background(), "gateway.example", "missing-name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolution.StatusCode != http.StatusNotFound {
		t.Fatalf("statusCode = %d, want 404", resolution.StatusCode)
	}
	if resolution.ResolvedID != nil || resolution.DataHashDigest != nil || resolution.ContentType != nil || resolution.ContentLength != nil {
		t.Errorf("expected all other fields absent on synthetic 404, got %+v", resolution)
	}
	if resolution.Timings == nil {
		t.Errorf("expected timings to still be captured on synthetic 404")
	}
}

func TestResolve_HeadersPopulated(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-arns-resolved-id", "abc123")
		w.Header().Set("x-arns-ttl-seconds", "3600")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	r := newTestResolver(t, server)
	resolution, err := r.Resolve(context.Background(), "gateway.example", "ardrive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolution.ResolvedID == nil || *resolution.ResolvedID != "abc123" {
		t.Errorf("resolvedId = %v, want abc123", resolution.ResolvedID)
	}
	if resolution.TTLSeconds == nil || *resolution.TTLSeconds != "3600" {
		t.Errorf("ttlSeconds = %v, want 3600", resolution.TTLSeconds)
	}
	if resolution.ContentType == nil || !strings.Contains(*resolution.ContentType, "text/plain") {
		t.Errorf("contentType = %v, want text/plain", resolution.ContentType)
	}
	if resolution.DataHashDigest == nil {
		t.Errorf("expected a data hash digest for a non-empty body")
	}
}

// readCloser adapts a byte slice to an io.ReadCloser for hashCapped tests.
func readCloser(b []byte) *nopReadCloser {
	return &nopReadCloser{Reader: bytes.NewReader(b)}
}

type nopReadCloser struct {
	*bytes.Reader
}

func (nopReadCloser) Close() error { return nil }
