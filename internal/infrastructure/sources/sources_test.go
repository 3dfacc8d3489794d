package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStaticEpochHeights(t *testing.T) {
	s := StaticEpochHeights{Start: 10, End: 20}

	start, err := s.GetEpochStartHeight(context.Background())
	if err != nil || start != 10 {
		t.Fatalf("GetEpochStartHeight = (%d, %v), want (10, nil)", start, err)
	}

	end, err := s.GetEpochEndHeight(context.Background())
	if err != nil || end != 20 {
		t.Fatalf("GetEpochEndHeight = (%d, %v), want (20, nil)", end, err)
	}
}

func TestLoadArnsNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.json")
	if err := os.WriteFile(path, []byte(`{"prescribed":["ardrive","permaweb"],"chosen":["random-1"]}`), 0o644); err != nil {
		t.Fatalf("write names file: %v", err)
	}

	source, err := LoadArnsNames(path)
	if err != nil {
		t.Fatalf("LoadArnsNames: %v", err)
	}

	prescribed, err := source.GetPrescribedNames(context.Background(), 0)
	if err != nil || len(prescribed) != 2 {
		t.Fatalf("GetPrescribedNames = (%v, %v), want 2 names", prescribed, err)
	}

	chosen, err := source.GetChosenNames(context.Background(), 0)
	if err != nil || len(chosen) != 1 {
		t.Fatalf("GetChosenNames = (%v, %v), want 1 name", chosen, err)
	}
}

func TestLoadArnsNames_MissingFile(t *testing.T) {
	if _, err := LoadArnsNames(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestLoadArnsNames_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.json")
	if err := os.WriteFile(path, []byte(`not json`), 0o644); err != nil {
		t.Fatalf("write names file: %v", err)
	}
	if _, err := LoadArnsNames(path); err == nil {
		t.Fatalf("expected a parse error for invalid JSON")
	}
}

func TestLoadGatewayHosts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateways.json")
	body := `[{"fqdn":"g1.example","wallet":"W1"},{"fqdn":"g2.example","wallet":"W2"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write gateways file: %v", err)
	}

	source, err := LoadGatewayHosts(path)
	if err != nil {
		t.Fatalf("LoadGatewayHosts: %v", err)
	}

	hosts, err := source.GetHosts(context.Background())
	if err != nil || len(hosts) != 2 {
		t.Fatalf("GetHosts = (%v, %v), want 2 hosts", hosts, err)
	}
	if hosts[0].FQDN != "g1.example" || hosts[0].Wallet != "W1" {
		t.Fatalf("hosts[0] = %+v, want g1.example/W1", hosts[0])
	}
}

func TestLoadGatewayHosts_MissingField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateways.json")
	if err := os.WriteFile(path, []byte(`[{"fqdn":"g1.example"}]`), 0o644); err != nil {
		t.Fatalf("write gateways file: %v", err)
	}
	if _, err := LoadGatewayHosts(path); err == nil {
		t.Fatalf("expected an error for an entry missing wallet")
	}
}
