// Package config parses command-line configuration for the observer
// binary and validates it before wiring begins.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Config holds all application configuration.
type Config struct {
	// Identity and comparison baseline.
	ObserverAddress      string `long:"observer-address" description:"Identity string embedded in the report" required:"true"`
	ReferenceGatewayHost string `long:"reference-gateway" description:"FQDN of the trusted baseline gateway" required:"true"`

	// Concurrency.
	GatewayAssessmentConcurrency int `long:"gateway-concurrency" description:"Bounded parallelism across gateways" default:"16"`
	NameAssessmentConcurrency    int `long:"name-concurrency" description:"Bounded parallelism across names within a gateway" default:"8"`

	// Probe throttling.
	ProbeRate float64 `long:"probe-rate" description:"Probes per second across all gateways (0 = unlimited)" default:"0"`

	// Per-phase HTTP timeouts, in seconds.
	DNSTimeoutSeconds     int `long:"dns-timeout" description:"DNS resolution timeout in seconds" default:"5"`
	ConnectTimeoutSeconds int `long:"connect-timeout" description:"TCP connect timeout in seconds" default:"2"`
	TLSTimeoutSeconds     int `long:"tls-timeout" description:"TLS handshake timeout in seconds" default:"2"`
	IdleTimeoutSeconds    int `long:"idle-timeout" description:"Socket idle timeout in seconds" default:"1"`

	// Inputs.
	GatewaysFile string `long:"gateways-file" description:"JSON list of {fqdn, wallet} gateway registry entries" required:"true"`
	NamesFile    string `long:"names-file" description:"JSON {prescribed:[...], chosen:[...]} name lists" required:"true"`
	EpochStart   int64  `long:"epoch-start" description:"Epoch start block height"`
	EpochEnd     int64  `long:"epoch-end" description:"Epoch end block height"`

	// Outputs.
	OutputFile   string `long:"output" description:"Report destination file ('-' = stdout)" default:"-"`
	AuditLogFile string `long:"audit-log" description:"JSONL audit trail path ('-' or empty discards)" default:""`
	MetricsAddr  string `long:"metrics-addr" description:"Prometheus exporter bind address (empty disables)" default:""`

	// UI.
	Dashboard bool `long:"dashboard" description:"Show the interactive TUI dashboard"`

	// Scheduling.
	Schedule string `long:"schedule" description:"Cron expression for repeated runs (empty runs once)" default:""`

	// Debug.
	Debug bool `long:"debug" description:"Use human-readable development logging"`

	// Derived fields, not parsed directly from flags.
	DNSTimeout     time.Duration
	ConnectTimeout time.Duration
	TLSTimeout     time.Duration
	IdleTimeout    time.Duration
}

// Parse parses os.Args into a validated Config.
func Parse() (*Config, error) {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default)
	parser.Usage = "[OPTIONS]"

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return nil, err
	}

	cfg.DNSTimeout = time.Duration(cfg.DNSTimeoutSeconds) * time.Second
	cfg.ConnectTimeout = time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	cfg.TLSTimeout = time.Duration(cfg.TLSTimeoutSeconds) * time.Second
	cfg.IdleTimeout = time.Duration(cfg.IdleTimeoutSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants Parse cannot express via struct tags alone.
func (c *Config) Validate() error {
	if c.GatewayAssessmentConcurrency < 1 {
		return fmt.Errorf("gateway-concurrency must be >= 1, got %d", c.GatewayAssessmentConcurrency)
	}
	if c.NameAssessmentConcurrency < 1 {
		return fmt.Errorf("name-concurrency must be >= 1, got %d", c.NameAssessmentConcurrency)
	}
	if c.ProbeRate < 0 {
		return fmt.Errorf("probe-rate must be >= 0, got %f", c.ProbeRate)
	}
	if c.DNSTimeoutSeconds <= 0 || c.ConnectTimeoutSeconds <= 0 || c.TLSTimeoutSeconds <= 0 || c.IdleTimeoutSeconds <= 0 {
		return fmt.Errorf("all HTTP timeout phases must be > 0")
	}
	if c.ObserverAddress == "" {
		return fmt.Errorf("observer-address must not be empty")
	}
	if c.ReferenceGatewayHost == "" {
		return fmt.Errorf("reference-gateway must not be empty")
	}
	return nil
}
