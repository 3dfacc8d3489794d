// Package resolver implements the one-shot streaming HTTP probe of a name
// against a gateway host, with byte-capped incremental SHA-256 hashing of
// the response body and per-phase timeout enforcement.
package resolver

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/handlebauer/ar-io-observer/internal/entity"
	"github.com/handlebauer/ar-io-observer/internal/infrastructure/ratelimit"
)

// MaxHashBytes is the maximum number of response-body bytes that are fed
// into the digest. Bytes beyond this cap are neither hashed nor required
// to be read.
const MaxHashBytes = 1048576

const readChunkSize = 32 * 1024

// Error wraps a transport or protocol failure encountered while probing a
// name. It is never returned alongside a populated ArnsResolution.
type Error struct {
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("resolver: %v", e.Cause) }
func (e *Error) Unwrap() error { return e.Cause }

// Config configures an HTTPResolver's timeout profile and transport
// behavior. Zero-valued durations fall back to the spec defaults.
type Config struct {
	DNSTimeout     time.Duration
	ConnectTimeout time.Duration
	TLSTimeout     time.Duration
	IdleTimeout    time.Duration
	Limiter        *ratelimit.Gate
}

func (c Config) withDefaults() Config {
	if c.DNSTimeout == 0 {
		c.DNSTimeout = 5 * time.Second
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 2 * time.Second
	}
	if c.TLSTimeout == 0 {
		c.TLSTimeout = 2 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = time.Second
	}
	return c
}

// HTTPResolver implements service.Resolver over a real HTTPS transport.
type HTTPResolver struct {
	cfg    Config
	client *http.Client
}

// New creates an HTTPResolver from cfg.
func New(cfg Config) *HTTPResolver {
	cfg = cfg.withDefaults()
	client := &http.Client{
		Transport: NewTransport(cfg),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
	return &HTTPResolver{cfg: cfg, client: client}
}

// NewTransport builds an *http.Transport whose DialContext enforces cfg's
// per-phase DNS/connect/TLS/idle timeouts. Any caller that needs the same
// dial-timeout profile as the Resolver (for example a sibling prober
// hitting a different endpoint on the same hosts) should build its client
// around this transport rather than reimplementing phase timeouts.
func NewTransport(cfg Config) *http.Transport {
	cfg = cfg.withDefaults()
	dialer := &phaseDialer{cfg: cfg, resolver: net.DefaultResolver}
	return &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: cfg.TLSTimeout,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		DisableKeepAlives:   true,
	}
}

// phaseDialer resolves DNS and connects TCP under their own phase
// timeouts, wrapping the returned connection with an idle-read deadline.
type phaseDialer struct {
	cfg      Config
	resolver *net.Resolver
}

// DialContext manually drives any httptrace hooks attached to ctx,
// mirroring what net/http's default dialer does internally.
func (d *phaseDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	trace := httptrace.ContextClientTrace(ctx)

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	if trace != nil && trace.DNSStart != nil {
		trace.DNSStart(httptrace.DNSStartInfo{Host: host})
	}
	dnsCtx, cancelDNS := context.WithTimeout(ctx, d.cfg.DNSTimeout)
	addrs, dnsErr := d.resolver.LookupIPAddr(dnsCtx, host)
	cancelDNS()
	if trace != nil && trace.DNSDone != nil {
		trace.DNSDone(httptrace.DNSDoneInfo{Err: dnsErr})
	}
	if dnsErr != nil {
		return nil, dnsErr
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses found for %s", host)
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, d.cfg.ConnectTimeout)
	defer cancelConnect()

	dialer := &net.Dialer{}
	var lastErr error
	for _, ip := range addrs {
		target := net.JoinHostPort(ip.IP.String(), port)
		if trace != nil && trace.ConnectStart != nil {
			trace.ConnectStart(network, target)
		}
		conn, dialErr := dialer.DialContext(connectCtx, network, target)
		if trace != nil && trace.ConnectDone != nil {
			trace.ConnectDone(network, target, dialErr)
		}
		if dialErr == nil {
			return &idleTimeoutConn{Conn: conn, timeout: d.cfg.IdleTimeout}, nil
		}
		lastErr = dialErr
	}
	return nil, lastErr
}

// idleTimeoutConn resets a read deadline before every Read, so a
// connection that stalls mid-transfer is aborted after timeout of
// inactivity instead of blocking forever.
type idleTimeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleTimeoutConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

// Resolve probes https://{name}.{host}/ and returns its ArnsResolution, or
// an *Error describing why the probe could not be completed.
func (r *HTTPResolver) Resolve(ctx context.Context, host, name string) (entity.ArnsResolution, error) {
	if err := r.cfg.Limiter.Wait(ctx); err != nil {
		return entity.ArnsResolution{}, &Error{Cause: err}
	}

	url := fmt.Sprintf("https://%s.%s/", name, host)

	timings := &entity.Timings{}
	start := time.Now()
	var dnsStart, connectStart, tlsStart time.Time
	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone: func(httptrace.DNSDoneInfo) {
			if !dnsStart.IsZero() {
				timings.DNSMillis = millisSince(dnsStart)
			}
		},
		ConnectStart: func(string, string) { connectStart = time.Now() },
		ConnectDone: func(string, string, error) {
			if !connectStart.IsZero() {
				timings.TCPMillis = millisSince(connectStart)
			}
		},
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			if !tlsStart.IsZero() {
				timings.TLSMillis = millisSince(tlsStart)
			}
		},
		GotFirstResponseByte: func() {
			timings.FirstByteMillis = millisSince(start)
		},
	}
	ctx = httptrace.WithClientTrace(ctx, trace)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entity.ArnsResolution{}, &Error{Cause: err}
	}
	requestStart := time.Now()

	resp, err := r.client.Do(req)
	timings.RequestMillis = millisSince(requestStart)
	if err != nil {
		return entity.ArnsResolution{}, &Error{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		timings.TotalMillis = millisSince(start)
		return entity.ArnsResolution{StatusCode: http.StatusNotFound, Timings: timings}, nil
	}

	digest, err := hashCapped(resp.Body)
	timings.TotalMillis = millisSince(start)
	if err != nil {
		return entity.ArnsResolution{}, &Error{Cause: err}
	}

	resolution := entity.ArnsResolution{
		StatusCode: resp.StatusCode,
		Timings:    timings,
	}
	if v := resp.Header.Get("x-arns-resolved-id"); v != "" {
		resolution.ResolvedID = &v
	}
	if v := resp.Header.Get("x-arns-ttl-seconds"); v != "" {
		resolution.TTLSeconds = &v
	}
	if v := resp.Header.Get("Content-Type"); v != "" {
		resolution.ContentType = &v
	}
	if v := resp.Header.Get("Content-Length"); v != "" {
		resolution.ContentLength = &v
	}
	if digest != "" {
		resolution.DataHashDigest = &digest
	}
	return resolution, nil
}

// hashCapped feeds body into a SHA-256 digest, stopping and closing the
// stream as soon as MaxHashBytes have been hashed. It returns the empty
// string if no bytes were hashed.
func hashCapped(body io.ReadCloser) (string, error) {
	hasher := sha256.New()
	buf := make([]byte, readChunkSize)
	var hashed int64

	for hashed < MaxHashBytes {
		n, err := body.Read(buf)
		if n > 0 {
			remaining := MaxHashBytes - hashed
			take := int64(n)
			if take > remaining {
				take = remaining
			}
			hasher.Write(buf[:take])
			hashed += take
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
	}

	if hashed >= MaxHashBytes {
		// Cap reached: abort the transfer rather than draining the rest
		// of a potentially much larger body.
		_ = body.Close()
	}

	if hashed == 0 {
		return "", nil
	}
	return base64.RawURLEncoding.EncodeToString(hasher.Sum(nil)), nil
}

func millisSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}
