package application

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/handlebauer/ar-io-observer/internal/entity"
	"github.com/handlebauer/ar-io-observer/internal/service"
)

// namesPassThreshold is the fraction of unique names a gateway must pass
// to be considered ArNS-compliant for the epoch.
const namesPassThreshold = 0.8

// HostAssessor produces the complete GatewayAssessment for one gateway:
// ownership plus bounded-parallel assessment of its prescribed and chosen
// name lists.
type HostAssessor struct {
	ownership       service.OwnershipProber
	names           *NameAssessor
	nameConcurrency int
}

// NewHostAssessor creates a HostAssessor. nameConcurrency bounds each of
// the prescribed and chosen name pools independently.
func NewHostAssessor(ownership service.OwnershipProber, names *NameAssessor, nameConcurrency int) *HostAssessor {
	if nameConcurrency < 1 {
		nameConcurrency = 1
	}
	return &HostAssessor{ownership: ownership, names: names, nameConcurrency: nameConcurrency}
}

// AssessHost never returns early on an individual name or ownership
// failure: it always produces a complete GatewayAssessment.
func (a *HostAssessor) AssessHost(ctx context.Context, host string, prescribedNames, chosenNames, expectedWallets []string) entity.GatewayAssessment {
	var (
		ownership  entity.OwnershipAssessment
		prescribed map[string]entity.ArnsNameAssessment
		chosen     map[string]entity.ArnsNameAssessment
		wg         sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		ownership = a.ownership.AssessOwnership(ctx, host, expectedWallets)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		prescribed = a.assessNames(ctx, host, prescribedNames)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		chosen = a.assessNames(ctx, host, chosenNames)
	}()

	wg.Wait()

	namesPass := passesThreshold(prescribedNames, chosenNames, prescribed, chosen)

	arnsAssessments := entity.ArnsAssessments{
		PrescribedNames: prescribed,
		ChosenNames:     chosen,
		Pass:            namesPass,
	}

	return entity.GatewayAssessment{
		OwnershipAssessment: ownership,
		ArnsAssessments:     arnsAssessments,
		Pass:                ownership.Pass && namesPass,
	}
}

// assessNames runs one bounded-concurrency pool of name assessments
// against host.
func (a *HostAssessor) assessNames(ctx context.Context, host string, names []string) map[string]entity.ArnsNameAssessment {
	results := make(map[string]entity.ArnsNameAssessment, len(names))
	if len(names) == 0 {
		return results
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.nameConcurrency)

	for _, name := range names {
		name := name
		group.Go(func() error {
			assessment := a.names.Assess(groupCtx, host, name)
			mu.Lock()
			results[name] = assessment
			mu.Unlock()
			return nil
		})
	}

	// Name assessments never fail the group: individual failures are
	// captured as pass=false records, not errors.
	_ = group.Wait()
	return results
}

// passesThreshold implements the specification's double-counting
// threshold arithmetic: the denominator is the count of unique names
// across both lists, but the numerator counts passing assessments from
// both lists independently, so a name present in both lists that passes
// counts twice.
func passesThreshold(prescribedNames, chosenNames []string, prescribed, chosen map[string]entity.ArnsNameAssessment) bool {
	unique := make(map[string]struct{}, len(prescribedNames)+len(chosenNames))
	for _, n := range prescribedNames {
		unique[n] = struct{}{}
	}
	for _, n := range chosenNames {
		unique[n] = struct{}{}
	}
	if len(unique) == 0 {
		return true
	}

	passing := 0
	for _, n := range prescribedNames {
		if prescribed[n].Pass {
			passing++
		}
	}
	for _, n := range chosenNames {
		if chosen[n].Pass {
			passing++
		}
	}

	return float64(passing) >= namesPassThreshold*float64(len(unique))
}
