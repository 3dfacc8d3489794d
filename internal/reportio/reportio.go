// Package reportio writes a completed ObserverReport as JSON to a file or
// stdout.
package reportio

import (
	"encoding/json"
	"os"

	"github.com/handlebauer/ar-io-observer/internal/entity"
)

// Writer serializes an ObserverReport to a destination chosen at
// construction time.
type Writer struct {
	path string
	file *os.File
}

// NewWriter opens path for writing. Passing "-" or an empty string writes
// to stdout instead.
func NewWriter(path string) (*Writer, error) {
	if path == "" || path == "-" {
		return &Writer{path: path, file: os.Stdout}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{path: path, file: file}, nil
}

// Write serializes report as indented JSON.
func (w *Writer) Write(report entity.ObserverReport) error {
	encoder := json.NewEncoder(w.file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// Close releases the underlying file. Stdout is left open.
func (w *Writer) Close() error {
	if w.path == "" || w.path == "-" {
		return nil
	}
	return w.file.Close()
}
