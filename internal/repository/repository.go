// Package repository declares the source contracts the report builder
// depends on for epoch bounds, name lists, and the gateway registry. The
// core only depends on these interfaces; static and file-backed defaults
// live under internal/infrastructure/sources, and providers backed by the
// live network are supplied by the operator.
package repository

import (
	"context"

	"github.com/handlebauer/ar-io-observer/internal/entity"
)

// EpochHeightSource resolves the block-height bounds of the epoch being
// audited.
type EpochHeightSource interface {
	GetEpochStartHeight(ctx context.Context) (int64, error)
	GetEpochEndHeight(ctx context.Context) (int64, error)
}

// ArnsNamesSource resolves the two name pools assessed for a given epoch
// height: names deterministically prescribed for the epoch, and names the
// observer itself chose (typically at random). A static implementation may
// ignore height and return fixed lists.
type ArnsNamesSource interface {
	GetPrescribedNames(ctx context.Context, height int64) ([]string, error)
	GetChosenNames(ctx context.Context, height int64) ([]string, error)
}

// GatewayHostsSource resolves the current gateway registry entries. Multiple
// entries may share an FQDN when more than one wallet claims it.
type GatewayHostsSource interface {
	GetHosts(ctx context.Context) ([]entity.GatewayHost, error)
}
