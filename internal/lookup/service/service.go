// Package service is the single entry point for lookups: it validates the
// request, runs the domain's pipeline under a fresh trace, and feeds the
// cache, the history store and the metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"lookupbot/internal/lookup/cache"
	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/store"
	"lookupbot/internal/lookup/trace"
	"lookupbot/internal/platform/metrics"
	dErrors "lookupbot/pkg/domain-errors"
)

// MaxQueryLength bounds user supplied queries.
const MaxQueryLength = 100

type Service struct {
	registry *Registry
	cache    *cache.ResultCache
	history  store.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   oteltrace.Tracer
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache enables result caching. A nil cache disables it.
func WithCache(c *cache.ResultCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithHistory(h store.Store) Option {
	return func(s *Service) {
		s.history = h
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the random lookup ID source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func New(registry *Registry, opts ...Option) (*Service, error) {
	if registry == nil || len(registry.Domains()) == 0 {
		return nil, fmt.Errorf("at least one lookup pipeline is required")
	}

	svc := &Service{
		registry: registry,
		logger:   slog.Default(),
		tracer:   otel.Tracer("lookupbot/internal/lookup/service"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Domains lists the domains this service can look up.
func (s *Service) Domains() []models.Domain {
	return s.registry.Domains()
}

// ResolveAndEnrich runs a full lookup. On resolution failure it returns a
// not_found error together with the trace; the trace is nil only for
// invalid input.
func (s *Service) ResolveAndEnrich(ctx context.Context, domain models.Domain, query string) (*models.LookupResult, *trace.Trace, error) {
	query, p, err := s.validate(domain, query)
	if err != nil {
		return nil, nil, err
	}

	if cached, ok := s.cache.Get(domain, query); ok {
		rec := trace.New(s.newID(), string(domain), query, s.now())
		rec.MarkCacheHit()
		rec.Resolved(cached.Subject.ResolvedBy, cached.Subject.ID)
		s.metrics.ObserveLookup(string(domain), "cache_hit", 0)
		s.saveHistory(ctx, rec)
		return cached, rec, nil
	}

	result, rec, err := s.run(ctx, domain, query, p)
	if err != nil {
		return nil, rec, err
	}
	s.cache.Set(domain, query, result)
	return result, rec, nil
}

// Debug runs the pipeline without the cache and returns the trace whatever
// the outcome. Only invalid input is reported as an error.
func (s *Service) Debug(ctx context.Context, domain models.Domain, query string) (*trace.Trace, error) {
	query, p, err := s.validate(domain, query)
	if err != nil {
		return nil, err
	}
	_, rec, _ := s.run(ctx, domain, query, p)
	return rec, nil
}

// History returns the most recent lookups, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]store.Record, error) {
	if s.history == nil {
		return []store.Record{}, nil
	}
	records, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lookup history")
	}
	return records, nil
}

func (s *Service) validate(domain models.Domain, query string) (string, Pipeline, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", Pipeline{}, dErrors.New(dErrors.CodeBadRequest, "query is required")
	}
	if len(query) > MaxQueryLength {
		return "", Pipeline{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("query must be at most %d characters", MaxQueryLength))
	}
	p, ok := s.registry.Get(domain)
	if !ok {
		return "", Pipeline{}, dErrors.Wrap(models.ErrUnknownDomain{Value: string(domain)}, dErrors.CodeBadRequest, "unknown lookup domain")
	}
	return query, p, nil
}

func (s *Service) run(ctx context.Context, domain models.Domain, query string, p Pipeline) (*models.LookupResult, *trace.Trace, error) {
	start := s.now()
	rec := trace.New(s.newID(), string(domain), query, start)

	ctx, span := s.tracer.Start(ctx, "lookup.ResolveAndEnrich", oteltrace.WithAttributes(
		attribute.String("lookup.domain", string(domain)),
		attribute.String("lookup.id", rec.Report().LookupID),
	))
	defer span.End()

	subject, err := p.Resolver.Resolve(ctx, query, rec)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		s.metrics.ObserveLookup(string(domain), "not_found", time.Since(start))
		s.logger.InfoContext(ctx, "lookup found no subject",
			"domain", domain,
			"lookup_id", rec.Report().LookupID,
			"attempts", rec.Len(),
		)
		s.saveHistory(ctx, rec)
		return nil, rec, s.resolveError(ctx, err)
	}

	attrs := p.Enricher.Enrich(ctx, subject, rec)
	result := &models.LookupResult{
		Domain:     domain,
		Subject:    *subject,
		Attributes: attrs,
		LookedUpAt: s.now().UTC(),
	}

	s.metrics.ObserveLookup(string(domain), "resolved", time.Since(start))
	s.logger.InfoContext(ctx, "lookup resolved",
		"domain", domain,
		"lookup_id", rec.Report().LookupID,
		"subject_id", subject.ID,
		"resolved_by", subject.ResolvedBy,
		"unavailable_groups", attrs.Unavailable(),
	)
	s.saveHistory(ctx, rec)
	return result, rec, nil
}

func (s *Service) resolveError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(ctx.Err(), context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "lookup did not finish")
	}
	return dErrors.Wrap(err, dErrors.CodeNotFound, "no match found for query")
}

// saveHistory never fails the lookup.
func (s *Service) saveHistory(ctx context.Context, rec *trace.Trace) {
	if s.history == nil {
		return
	}
	record, err := store.FromReport(rec.Report(), s.now().UTC())
	if err == nil {
		err = s.history.Save(context.WithoutCancel(ctx), record)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record lookup history", "error", err)
	}
}
