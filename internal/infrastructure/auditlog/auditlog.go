// Package auditlog appends one JSON line per probe attempt to a debugging
// side channel. It never influences report contents: writers wrap the
// Resolver and OwnershipProber services and record what happened after
// delegating to the real implementation.
package auditlog

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

const errorMaxLen = 512

// Entry is one line of the audit trail.
type Entry struct {
	Time       time.Time `json:"time"`
	Kind       string    `json:"kind"` // "resolve" or "ownership"
	Host       string    `json:"host"`
	Name       string    `json:"name,omitempty"`
	Outcome    string    `json:"outcome"` // "ok", "not_found", "error"
	StatusCode int       `json:"statusCode,omitempty"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}

// Recorder accepts audit-log entries. Both Writer and DedupingRecorder
// satisfy it, so the resolver/prober decorators don't need to know whether
// spam suppression is in front of the underlying file.
type Recorder interface {
	Record(Entry) error
}

// Writer appends Entry values as JSON lines. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
}

// New wraps w as a Writer. If w is also an io.Closer, Close closes it;
// otherwise (e.g. a bytes.Buffer or io.Discard) Close does nothing.
func New(w io.Writer) *Writer {
	closer, _ := w.(io.Closer)
	return &Writer{enc: json.NewEncoder(w), closer: closer}
}

// Open creates a Writer backed by the file at path. An empty path or "-"
// returns a discarding Writer so audit logging can be left unconfigured.
func Open(path string) (*Writer, error) {
	if path == "" || path == "-" {
		return New(io.Discard), nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return New(file), nil
}

// Record appends entry as a single JSON line.
func (w *Writer) Record(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(entry)
}

// Close releases the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// truncateError caps an error string so a single misbehaving probe can't
// blow up an audit-log line.
func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > errorMaxLen {
		msg = msg[:errorMaxLen]
	}
	return msg
}
