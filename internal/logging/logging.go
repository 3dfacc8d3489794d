// Package logging builds the structured logger used across the observer.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap logger with ISO8601 timestamps. When debug
// is set, it uses zap's development config instead (human-readable,
// stack traces on warn).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}

// NewNop returns a no-op logger, for tests.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
