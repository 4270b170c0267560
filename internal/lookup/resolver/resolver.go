// Package resolver turns a raw query into a Subject by running an ordered
// list of strategies until one succeeds. Both lookup domains share this
// chain; they differ only in the strategies they register.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/providers"
	"lookupbot/internal/lookup/trace"
	"lookupbot/internal/platform/metrics"
)

// Strategy is one ordered attempt to derive a Subject from a query. It must
// record every external call it makes in rec and report failure through its
// error, never by panicking.
type Strategy interface {
	Name() string
	Applies(query string) bool
	Attempt(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error)
}

// Func adapts plain functions into a Strategy.
type Func struct {
	StrategyName string
	// When limits the strategy to some queries; nil means always.
	When func(query string) bool
	Fn   func(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error)
}

func (f Func) Name() string { return f.StrategyName }

func (f Func) Applies(query string) bool {
	return f.When == nil || f.When(query)
}

func (f Func) Attempt(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error) {
	return f.Fn(ctx, query, rec)
}

// Chain runs strategies in order and stops at the first subject.
type Chain struct {
	domain     models.Domain
	strategies []Strategy
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     oteltrace.Tracer
}

type Option func(*Chain)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Chain) {
		c.metrics = m
	}
}

// New builds a chain. The strategy order is the resolution order.
func New(domain models.Domain, strategies []Strategy, opts ...Option) (*Chain, error) {
	if len(strategies) == 0 {
		return nil, errors.New("at least one strategy is required")
	}
	for _, s := range strategies {
		if s == nil {
			return nil, errors.New("strategy must not be nil")
		}
	}

	c := &Chain{
		domain:     domain,
		strategies: strategies,
		logger:     slog.Default(),
		tracer:     otel.Tracer("lookupbot/internal/lookup/resolver"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Names lists the strategies in resolution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the first subject any applicable strategy produces. When
// all fail it returns a not_found error wrapping providers.ErrSubjectNotFound
// and every strategy's error.
func (c *Chain) Resolve(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error) {
	ctx, span := c.tracer.Start(ctx, "resolver.Resolve", oteltrace.WithAttributes(
		attribute.String("lookup.domain", string(c.domain)),
	))
	defer span.End()

	failures := []error{providers.ErrSubjectNotFound}
	for _, s := range c.strategies {
		if !s.Applies(query) {
			c.metrics.IncrementStrategy(string(c.domain), s.Name(), "skipped")
			continue
		}

		subject, err := c.attempt(ctx, s, query, rec)
		if err == nil {
			c.metrics.IncrementStrategy(string(c.domain), s.Name(), "resolved")
			resolved := *subject
			resolved.ResolvedBy = s.Name()
			rec.Resolved(s.Name(), resolved.ID)
			span.SetAttributes(attribute.String("lookup.resolved_by", s.Name()))
			return &resolved, nil
		}

		c.metrics.IncrementStrategy(string(c.domain), s.Name(), "failed")
		c.logger.DebugContext(ctx, "resolver strategy failed",
			"domain", c.domain,
			"strategy", s.Name(),
			"category", providers.GetCategory(err),
			"error", err,
		)
		failures = append(failures, err)
	}

	span.SetStatus(codes.Error, "no strategy resolved the query")
	return nil, providers.NewProviderError(providers.ErrorNotFound, "resolve",
		"no strategy resolved the query", errors.Join(failures...))
}

func (c *Chain) attempt(ctx context.Context, s Strategy, query string, rec *trace.Trace) (*models.Subject, error) {
	ctx, span := c.tracer.Start(ctx, "resolver.strategy", oteltrace.WithAttributes(
		attribute.String("lookup.strategy", s.Name()),
	))
	defer span.End()

	subject, err := s.Attempt(ctx, query, rec)
	if err == nil && subject == nil {
		err = providers.NotFound(s.Name(), "strategy returned no subject")
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return subject, nil
}

// IsDigits reports whether query is a non-empty run of ASCII digits, the
// shape of a direct numeric identifier.
func IsDigits(query string) bool {
	if query == "" {
		return false
	}
	for i := 0; i < len(query); i++ {
		if query[i] < '0' || query[i] > '9' {
			return false
		}
	}
	return true
}
