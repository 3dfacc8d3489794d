package config

import "testing"

func validConfig() *Config {
	return &Config{
		ObserverAddress:              "observer-1",
		ReferenceGatewayHost:         "reference.example",
		GatewayAssessmentConcurrency: 16,
		NameAssessmentConcurrency:    8,
		ProbeRate:                    0,
		DNSTimeoutSeconds:            5,
		ConnectTimeoutSeconds:        2,
		TLSTimeoutSeconds:            2,
		IdleTimeoutSeconds:           1,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsZeroGatewayConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.GatewayAssessmentConcurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for zero gateway concurrency")
	}
}

func TestValidate_RejectsNegativeProbeRate(t *testing.T) {
	cfg := validConfig()
	cfg.ProbeRate = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for negative probe rate")
	}
}

func TestValidate_RejectsZeroTimeoutPhase(t *testing.T) {
	cfg := validConfig()
	cfg.TLSTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for a zero timeout phase")
	}
}

func TestValidate_RejectsEmptyObserverAddress(t *testing.T) {
	cfg := validConfig()
	cfg.ObserverAddress = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for an empty observer address")
	}
}
