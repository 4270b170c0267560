package service

import (
	"context"
	"fmt"
	"slices"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/trace"
)

// Resolver turns a query into a Subject. *resolver.Chain implements it.
type Resolver interface {
	Resolve(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error)
}

// Enricher fills in attribute groups for a resolved Subject and never fails.
type Enricher interface {
	Enrich(ctx context.Context, subject *models.Subject, rec *trace.Trace) models.AttributeSet
}

// Pipeline is the resolve-then-enrich pair for one domain.
type Pipeline struct {
	Resolver Resolver
	Enricher Enricher
}

// Registry maps each domain to its pipeline.
type Registry struct {
	pipelines map[models.Domain]Pipeline
}

func NewRegistry() *Registry {
	return &Registry{pipelines: make(map[models.Domain]Pipeline)}
}

// Register adds a pipeline. Each domain may be registered once.
func (r *Registry) Register(domain models.Domain, p Pipeline) error {
	if p.Resolver == nil || p.Enricher == nil {
		return fmt.Errorf("pipeline %s needs a resolver and an enricher", domain)
	}
	if _, exists := r.pipelines[domain]; exists {
		return fmt.Errorf("pipeline %s already registered", domain)
	}
	r.pipelines[domain] = p
	return nil
}

func (r *Registry) Get(domain models.Domain) (Pipeline, bool) {
	p, ok := r.pipelines[domain]
	return p, ok
}

// Domains lists registered domains in sorted order.
func (r *Registry) Domains() []models.Domain {
	out := make([]models.Domain, 0, len(r.pipelines))
	for d := range r.pipelines {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}
