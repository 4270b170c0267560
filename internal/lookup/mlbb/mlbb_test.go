package mlbb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/providers"
	"lookupbot/internal/lookup/resolver"
	"lookupbot/internal/lookup/trace"
	"lookupbot/internal/platform/httpclient"
	"lookupbot/internal/platform/metrics"
)

// =============================================================================
// Mobile Game Pipeline Test Suite
// =============================================================================
// Justification for unit tests: the nickname/uid/alternate fallback and the
// permissive alternate mapping are pure functions of upstream responses.

const playerJSON = `{"status":"success","data":{"nickname":"Lancelot","user_id":99,"level":72,"rank":"Mythic","heroes_count":88,"skins_total":140,"bind_status":"bound","last_login":"2024-05-01"}}`

type MLBBSuite struct {
	suite.Suite
	byNickname http.HandlerFunc
	byUID      http.HandlerFunc
	alternate  http.HandlerFunc
	mu         sync.Mutex
	altQueries []string
	server     *httptest.Server
}

func TestMLBBSuite(t *testing.T) {
	suite.Run(t, new(MLBBSuite))
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (s *MLBBSuite) SetupTest() {
	notFound := `{"status":"error","data":null}`
	s.byNickname = respond(http.StatusOK, notFound)
	s.byUID = respond(http.StatusOK, notFound)
	s.alternate = respond(http.StatusNotFound, `{}`)
	s.altQueries = nil

	mux := http.NewServeMux()
	mux.HandleFunc("GET /mlbb/v1/player", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("uid") {
			s.byUID(w, r)
			return
		}
		s.byNickname(w, r)
	})
	mux.HandleFunc("GET /alt/player", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.altQueries = append(s.altQueries, r.URL.RawQuery)
		s.mu.Unlock()
		s.alternate(w, r)
	})
	s.server = httptest.NewServer(mux)
	s.T().Cleanup(s.server.Close)
}

func (s *MLBBSuite) lookup(altTemplate, query string) (*models.Subject, *trace.Trace, error) {
	api, err := NewAPI(httpclient.New(httpclient.WithMaxRetries(0)), Config{
		BaseURL:     s.server.URL,
		AltTemplate: altTemplate,
		Timeout:     2 * time.Second,
	})
	s.Require().NoError(err)

	chain, err := resolver.New(models.DomainMLBB, api.Strategies(),
		resolver.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		resolver.WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	s.Require().NoError(err)

	rec := trace.New("test", string(models.DomainMLBB), query, time.Now())
	subject, err := chain.Resolve(context.Background(), query, rec)
	return subject, rec, err
}

func (s *MLBBSuite) altTemplate() string {
	return s.server.URL + "/alt/player?q={}"
}

// =============================================================================
// Resolution
// =============================================================================

func (s *MLBBSuite) TestNicknameResolves() {
	s.byNickname = respond(http.StatusOK, playerJSON)

	subject, rec, err := s.lookup("", "Lancelot")
	s.Require().NoError(err)

	s.Equal("99", subject.ID)
	s.Equal("Lancelot", subject.Name)
	s.Equal(StepNickname, subject.ResolvedBy)
	s.Equal([]string{StepNickname}, rec.Steps())
}

func (s *MLBBSuite) TestNumericQueryFallsBackToUID() {
	s.byUID = respond(http.StatusOK, playerJSON)

	subject, rec, err := s.lookup("", "99")
	s.Require().NoError(err)

	s.Equal(StepUID, subject.ResolvedBy)
	s.Equal([]string{StepNickname, StepUID}, rec.Steps())

	attempts := rec.Report().Attempts
	s.True(attempts[0].Failed())
	s.False(attempts[1].Failed())
}

func (s *MLBBSuite) TestUIDIsSkippedForNames() {
	subject, rec, err := s.lookup("", "Lancelot")

	s.Nil(subject)
	s.Require().Error(err)
	s.True(errors.Is(err, providers.ErrSubjectNotFound))
	s.Equal([]string{StepNickname}, rec.Steps())
}

func (s *MLBBSuite) TestAlternateOnlyWhenConfigured() {
	s.alternate = respond(http.StatusOK, `{"data":{"name":"Tigreal","player_id":"555","level":30}}`)

	_, rec, err := s.lookup("", "Tigreal")
	s.Require().Error(err)
	s.NotContains(rec.Steps(), StepAlternate)

	subject, rec, err := s.lookup(s.altTemplate(), "Tigreal")
	s.Require().NoError(err)
	s.Equal([]string{StepNickname, StepAlternate}, rec.Steps())
	s.Equal("555", subject.ID)
	s.Equal("Tigreal", subject.Name)
	s.Equal(StepAlternate, subject.ResolvedBy)
	s.Equal("alt api", rec.Report().Attempts[1].Note)
}

func (s *MLBBSuite) TestAlternateEscapesQuery() {
	s.alternate = respond(http.StatusOK, `{"nickname":"Miya Fan"}`)

	subject, _, err := s.lookup(s.altTemplate(), "Miya Fan&x=1")
	s.Require().NoError(err)
	s.Equal("Miya Fan", subject.Name)
	s.Equal(models.Unknown, subject.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().Len(s.altQueries, 1)
	s.Equal("q=Miya%20Fan%26x%3D1", s.altQueries[0])
}

func (s *MLBBSuite) TestAlternateWithoutRecognizedFieldsIsMalformed() {
	s.alternate = respond(http.StatusOK, `{"data":{"foo":"bar"}}`)

	_, rec, err := s.lookup(s.altTemplate(), "Tigreal")
	s.Require().Error(err)

	attempts := rec.Report().Attempts
	s.Equal(string(providers.ErrorBadData), attempts[len(attempts)-1].Category)
}

func (s *MLBBSuite) TestUpstreamOutageIsRecorded() {
	s.byNickname = respond(http.StatusServiceUnavailable, `down`)

	_, rec, err := s.lookup("", "Lancelot")
	s.Require().Error(err)

	attempt := rec.Report().Attempts[0]
	s.Equal(http.StatusServiceUnavailable, attempt.StatusCode)
	s.Equal(string(providers.ErrorProviderOutage), attempt.Category)
}

// =============================================================================
// Enrichment and helpers
// =============================================================================

func TestEnrich(t *testing.T) {
	var resp playerResponse
	dec := json.NewDecoder(strings.NewReader(playerJSON))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&resp))

	set := NewEnricher().Enrich(context.Background(), &models.Subject{ID: "99", Profile: resp.Data}, nil)
	group, ok := set.Group(GroupPlayer)
	require.True(t, ok)

	assert.True(t, group.Available)
	assert.Equal(t, "72", group.Value("level"))
	assert.Equal(t, "Mythic", group.Value("rank"))
	assert.Equal(t, "88", group.Value("heroes"))
	assert.Equal(t, "140", group.Value("skins_total"))
	assert.Equal(t, "bound", group.Value("bind_status"))
	assert.Equal(t, "2024-05-01", group.Value("last_login"))
	assert.Equal(t, models.None, group.Value("guild"))
}

func TestEnrichSparseProfile(t *testing.T) {
	set := NewEnricher().Enrich(context.Background(), &models.Subject{ID: "1", Profile: map[string]any{"nickname": "x"}}, nil)
	group, _ := set.Group(GroupPlayer)

	assert.Equal(t, models.Unknown, group.Value("level"))
	assert.Equal(t, models.Unknown, group.Value("heroes"))
	assert.Equal(t, models.None, group.Value("guild"))
}

func TestPlayerFromAlternate(t *testing.T) {
	p, ok := PlayerFromAlternate(map[string]any{"data": map[string]any{"rank": "Epic"}})
	require.True(t, ok)
	assert.Equal(t, "Epic", p["rank"])

	p, ok = PlayerFromAlternate(map[string]any{"level": "10", "data": map[string]any{}})
	require.True(t, ok)
	assert.Equal(t, "10", p["level"])

	_, ok = PlayerFromAlternate([]any{"nickname"})
	assert.False(t, ok)
	_, ok = PlayerFromAlternate(map[string]any{"message": "ok"})
	assert.False(t, ok)
}

func TestAltURL(t *testing.T) {
	assert.Equal(t, "https://alt.test/api?q=a%20b%2Fc", AltURL("https://alt.test/api?q={}", "a b/c"))
}

func TestNewAPIValidatesTemplate(t *testing.T) {
	_, err := NewAPI(httpclient.New(), Config{BaseURL: "https://mlbb.test", AltTemplate: "https://alt.test/{}/{}"})
	require.Error(t, err)

	_, err = NewAPI(httpclient.New(), Config{})
	require.Error(t, err)
}
