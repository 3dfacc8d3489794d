// Package sources provides the default, runnable implementations of the
// repository source interfaces: a fixed epoch-height pair, and JSON-file
// backed name and gateway-registry loaders. Production deployments are
// expected to swap these for network-backed providers (an ArNS contract
// client, a gateway registry lookup) that satisfy the same interfaces.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/handlebauer/ar-io-observer/internal/entity"
)

// StaticEpochHeights implements repository.EpochHeightSource with a fixed
// pair of block heights, decided once at startup.
type StaticEpochHeights struct {
	Start, End int64
}

// GetEpochStartHeight returns the configured start height.
func (s StaticEpochHeights) GetEpochStartHeight(context.Context) (int64, error) {
	return s.Start, nil
}

// GetEpochEndHeight returns the configured end height.
func (s StaticEpochHeights) GetEpochEndHeight(context.Context) (int64, error) {
	return s.End, nil
}

// namesFile mirrors the --names-file JSON shape: {"prescribed":[...],"chosen":[...]}.
type namesFile struct {
	Prescribed []string `json:"prescribed"`
	Chosen     []string `json:"chosen"`
}

// FileArnsNamesSource implements repository.ArnsNamesSource by loading a
// fixed names file once at construction time. Height is ignored; ArNS
// epochs are short enough in practice that the operator supplies a fresh
// file per run rather than this source polling for changes mid-epoch.
type FileArnsNamesSource struct {
	prescribed []string
	chosen     []string
}

// LoadArnsNames reads and validates a names file at path.
func LoadArnsNames(path string) (*FileArnsNamesSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read names file: %w", err)
	}

	var parsed namesFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse names file %s: %w", path, err)
	}

	return &FileArnsNamesSource{prescribed: parsed.Prescribed, chosen: parsed.Chosen}, nil
}

// GetPrescribedNames returns the file's prescribed name list.
func (s *FileArnsNamesSource) GetPrescribedNames(context.Context, int64) ([]string, error) {
	return s.prescribed, nil
}

// GetChosenNames returns the file's chosen name list.
func (s *FileArnsNamesSource) GetChosenNames(context.Context, int64) ([]string, error) {
	return s.chosen, nil
}

// gatewayEntry mirrors one element of the --gateways-file JSON array.
type gatewayEntry struct {
	FQDN   string `json:"fqdn"`
	Wallet string `json:"wallet"`
}

// FileGatewayHostsSource implements repository.GatewayHostsSource by
// loading a fixed gateway registry snapshot once at construction time.
type FileGatewayHostsSource struct {
	hosts []entity.GatewayHost
}

// LoadGatewayHosts reads and validates a gateways file at path.
func LoadGatewayHosts(path string) (*FileGatewayHostsSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gateways file: %w", err)
	}

	var entries []gatewayEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse gateways file %s: %w", path, err)
	}

	hosts := make([]entity.GatewayHost, 0, len(entries))
	for _, e := range entries {
		if e.FQDN == "" || e.Wallet == "" {
			return nil, fmt.Errorf("gateways file %s: entry missing fqdn or wallet: %+v", path, e)
		}
		hosts = append(hosts, entity.GatewayHost{FQDN: e.FQDN, Wallet: e.Wallet})
	}

	return &FileGatewayHostsSource{hosts: hosts}, nil
}

// GetHosts returns the file's gateway registry snapshot.
func (s *FileGatewayHostsSource) GetHosts(context.Context) ([]entity.GatewayHost, error) {
	return s.hosts, nil
}
