package service

//go:generate mockgen -source=registry.go -destination=mocks/mocks.go -package=mocks Resolver,Enricher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lookupbot/internal/lookup/cache"
	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/providers"
	"lookupbot/internal/lookup/service/mocks"
	"lookupbot/internal/lookup/store"
	"lookupbot/internal/lookup/trace"
	"lookupbot/internal/platform/metrics"
	dErrors "lookupbot/pkg/domain-errors"
)

// =============================================================================
// Lookup Service Test Suite
// =============================================================================
// Justification for unit tests: input validation, error mapping, cache and
// history bookkeeping are orchestration concerns independent of any upstream.

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	resolver *mocks.MockResolver
	enricher *mocks.MockEnricher
	history  *store.MemoryStore
	metrics  *metrics.Metrics
	ids      int
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mocks.NewMockResolver(s.ctrl)
	s.enricher = mocks.NewMockEnricher(s.ctrl)
	s.history = store.NewMemory(10)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.ids = 0
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	reg := NewRegistry()
	s.Require().NoError(reg.Register(models.DomainAvatar, Pipeline{Resolver: s.resolver, Enricher: s.enricher}))

	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithHistory(s.history),
		WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string {
			s.ids++
			return fmt.Sprintf("lookup-%d", s.ids)
		}),
	}
	svc, err := New(reg, append(base, opts...)...)
	s.Require().NoError(err)
	return svc
}

func resolvesTo(id string) func(context.Context, string, *trace.Trace) (*models.Subject, error) {
	return func(_ context.Context, _ string, rec *trace.Trace) (*models.Subject, error) {
		rec.Record(trace.Attempt{Step: "direct_id", StatusCode: 200})
		rec.Resolved("direct_id", id)
		return &models.Subject{ID: id, Name: "builderman", ResolvedBy: "direct_id"}, nil
	}
}

func notFound(_ context.Context, _ string, rec *trace.Trace) (*models.Subject, error) {
	rec.Record(trace.Attempt{Step: "by_name", StatusCode: 404, Category: "not_found"})
	rec.Record(trace.Attempt{Step: "search", StatusCode: 200, Category: "not_found"})
	return nil, providers.NewProviderError(providers.ErrorNotFound, "resolve", "no strategy resolved the query", providers.ErrSubjectNotFound)
}

func attributes() models.AttributeSet {
	var set models.AttributeSet
	set.Put(models.AttributeGroup{Name: "social", Available: true, Values: map[string]any{"friends": int64(3)}})
	return set
}

// =============================================================================
// Validation
// =============================================================================

func (s *ServiceSuite) TestEmptyQueryIsBadRequest() {
	svc := s.newService()

	result, rec, err := svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, "   ")
	s.Nil(result)
	s.Nil(rec)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = svc.Debug(context.Background(), models.DomainAvatar, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestOverlongQueryIsBadRequest() {
	svc := s.newService()

	long := strings.Repeat("a", MaxQueryLength+1)
	_, _, err := svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, long)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestUnregisteredDomainIsBadRequest() {
	svc := s.newService()

	_, _, err := svc.ResolveAndEnrich(context.Background(), models.DomainMLBB, "99")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	var unknown models.ErrUnknownDomain
	s.True(errors.As(err, &unknown))
}

// =============================================================================
// Lookups
// =============================================================================

func (s *ServiceSuite) TestResolvedLookup() {
	svc := s.newService()
	s.resolver.EXPECT().Resolve(gomock.Any(), "12345", gomock.Any()).DoAndReturn(resolvesTo("12345"))
	s.enricher.EXPECT().Enrich(gomock.Any(), gomock.Any(), gomock.Any()).Return(attributes())

	result, rec, err := svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, " 12345 ")
	s.Require().NoError(err)

	s.Equal(models.DomainAvatar, result.Domain)
	s.Equal("12345", result.Subject.ID)
	s.Equal(attributes(), result.Attributes)

	report := rec.Report()
	s.Equal("12345", report.Query)
	s.True(report.Success)
	s.Equal("lookup-1", report.LookupID)

	history, err := svc.History(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.True(history[0].Success)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Lookups.WithLabelValues("avatar", "resolved")))
}

func (s *ServiceSuite) TestNotFoundCarriesTrace() {
	svc := s.newService()
	s.resolver.EXPECT().Resolve(gomock.Any(), "ghost", gomock.Any()).DoAndReturn(notFound)

	result, rec, err := svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, "ghost")
	s.Nil(result)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(errors.Is(err, providers.ErrSubjectNotFound))

	s.Require().NotNil(rec)
	s.Equal(2, rec.Len())
	s.False(rec.Report().Success)

	history, _ := svc.History(context.Background(), 10)
	s.Require().Len(history, 1)
	s.False(history[0].Success)
	s.Equal(2, history[0].Attempts)
}

func (s *ServiceSuite) TestCancelledLookupIsTimeout() {
	svc := s.newService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.resolver.EXPECT().Resolve(gomock.Any(), "ghost", gomock.Any()).DoAndReturn(notFound)

	_, _, err := svc.ResolveAndEnrich(ctx, models.DomainAvatar, "ghost")
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *ServiceSuite) TestCacheHitSkipsPipeline() {
	svc := s.newService(WithCache(cache.New(10, time.Minute, s.metrics)))
	s.resolver.EXPECT().Resolve(gomock.Any(), "12345", gomock.Any()).DoAndReturn(resolvesTo("12345")).Times(1)
	s.enricher.EXPECT().Enrich(gomock.Any(), gomock.Any(), gomock.Any()).Return(attributes()).Times(1)

	first, _, err := svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, "12345")
	s.Require().NoError(err)

	second, rec, err := svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, "12345")
	s.Require().NoError(err)

	s.Equal(first, second)
	report := rec.Report()
	s.True(report.CacheHit)
	s.True(report.Success)
	s.Empty(report.Attempts)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Lookups.WithLabelValues("avatar", "cache_hit")))
}

func (s *ServiceSuite) TestFailuresAreNotCached() {
	svc := s.newService(WithCache(cache.New(10, time.Minute, nil)))
	s.resolver.EXPECT().Resolve(gomock.Any(), "ghost", gomock.Any()).DoAndReturn(notFound).Times(2)

	_, _, err := svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, "ghost")
	s.Require().Error(err)
	_, _, err = svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, "ghost")
	s.Require().Error(err)
}

func (s *ServiceSuite) TestDebugBypassesCacheAndReturnsTrace() {
	svc := s.newService(WithCache(cache.New(10, time.Minute, nil)))
	s.resolver.EXPECT().Resolve(gomock.Any(), "12345", gomock.Any()).DoAndReturn(resolvesTo("12345")).Times(2)
	s.enricher.EXPECT().Enrich(gomock.Any(), gomock.Any(), gomock.Any()).Return(attributes()).Times(2)
	s.resolver.EXPECT().Resolve(gomock.Any(), "ghost", gomock.Any()).DoAndReturn(notFound)

	_, _, err := svc.ResolveAndEnrich(context.Background(), models.DomainAvatar, "12345")
	s.Require().NoError(err)

	rec, err := svc.Debug(context.Background(), models.DomainAvatar, "12345")
	s.Require().NoError(err)
	s.False(rec.Report().CacheHit)
	s.Equal(1, rec.Len())

	rec, err = svc.Debug(context.Background(), models.DomainAvatar, "ghost")
	s.Require().NoError(err, "debug reports failures through the trace")
	s.Equal([]string{"by_name", "search"}, rec.Steps())
}

// =============================================================================
// Registry
// =============================================================================

func TestRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := Pipeline{Resolver: mocks.NewMockResolver(ctrl), Enricher: mocks.NewMockEnricher(ctrl)}

	reg := NewRegistry()
	require.NoError(t, reg.Register(models.DomainMLBB, p))
	require.NoError(t, reg.Register(models.DomainAvatar, p))
	assert.Error(t, reg.Register(models.DomainAvatar, p), "duplicate domain")
	assert.Error(t, reg.Register("other", Pipeline{}), "incomplete pipeline")

	assert.Equal(t, []models.Domain{models.DomainAvatar, models.DomainMLBB}, reg.Domains())

	_, err := New(NewRegistry())
	assert.Error(t, err)
}
