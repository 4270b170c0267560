package avatar

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/providers"
	"lookupbot/internal/lookup/trace"
	"lookupbot/internal/platform/metrics"
)

// Attribute group names.
const (
	GroupProfile   = "profile"
	GroupAccount   = "account"
	GroupSocial    = "social"
	GroupGroups    = "groups"
	GroupInventory = "inventory"
	GroupTrading   = "trading"
)

// DefaultDescription is shown when the profile carries no description field.
const DefaultDescription = "No description."

// Enricher fetches the avatar attribute groups for a resolved subject.
type Enricher struct {
	api     *API
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type EnricherOption func(*Enricher)

func WithClock(now func() time.Time) EnricherOption {
	return func(e *Enricher) {
		e.now = now
	}
}

func WithLogger(logger *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) EnricherOption {
	return func(e *Enricher) {
		e.metrics = m
	}
}

// NewEnricher builds an Enricher on top of api.
func NewEnricher(api *API, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		api:    api,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type groupFetch struct {
	name     string
	sentinel map[string]any
	fetch    func(ctx context.Context, id string, rec *trace.Trace) (map[string]any, error)
}

// Enrich never fails: every group that cannot be fetched is returned with
// its sentinel values and Available=false.
func (e *Enricher) Enrich(ctx context.Context, subject *models.Subject, rec *trace.Trace) models.AttributeSet {
	profile := e.hydrate(ctx, subject, rec)

	var set models.AttributeSet
	set.Put(models.AttributeGroup{
		Name:      GroupProfile,
		Available: true,
		Values: map[string]any{
			"description":  models.StringOr(profile, "description", DefaultDescription),
			"display_name": models.StringOr(profile, "displayName", subject.Name),
			"profile_url":  e.api.profileURL(subject.ID),
		},
	})
	set.Put(e.account(profile))

	fetches := e.groupFetches()
	groups := make([]models.AttributeGroup, len(fetches))

	var g errgroup.Group
	g.SetLimit(4)
	for i, f := range fetches {
		g.Go(func() error {
			groups[i] = e.runGroup(ctx, f, subject.ID, rec)
			return nil
		})
	}
	_ = g.Wait()

	for _, grp := range groups {
		set.Put(grp)
	}
	return set
}

func (e *Enricher) groupFetches() []groupFetch {
	return []groupFetch{
		{name: GroupSocial, sentinel: map[string]any{"friends": int64(0)}, fetch: e.fetchFriends},
		{name: GroupGroups, sentinel: map[string]any{"groups": int64(0)}, fetch: e.fetchGroups},
		{name: GroupInventory, sentinel: map[string]any{"badges": int64(0)}, fetch: e.fetchBadges},
		{name: GroupTrading, sentinel: map[string]any{
			"rap":        models.Unknown,
			"value":      models.Unknown,
			"demand":     models.Unknown,
			"rap_change": int64(0),
		}, fetch: e.fetchValuation},
	}
}

func (e *Enricher) runGroup(ctx context.Context, f groupFetch, id string, rec *trace.Trace) models.AttributeGroup {
	values, err := f.fetch(ctx, id, rec)
	if err != nil {
		e.metrics.IncrementEnrichmentFailure(string(models.DomainAvatar), f.name)
		e.logger.DebugContext(ctx, "attribute group degraded",
			"group", f.name,
			"subject_id", id,
			"category", providers.GetCategory(err),
			"error", err,
		)
		return models.AttributeGroup{
			Name:      f.name,
			Available: false,
			Values:    maps.Clone(f.sentinel),
			Error:     string(providers.GetCategory(err)),
		}
	}
	return models.AttributeGroup{Name: f.name, Available: true, Values: values}
}

// hydrate returns the subject's profile, completed with a by-ID fetch when
// the resolving response lacked the creation timestamp (search results do).
// The subject itself is never modified.
func (e *Enricher) hydrate(ctx context.Context, subject *models.Subject, rec *trace.Trace) map[string]any {
	profile := maps.Clone(subject.Profile)
	if profile == nil {
		profile = map[string]any{}
	}
	if _, ok := profile["created"]; ok {
		return profile
	}

	var user map[string]any
	err := providers.FetchJSON(ctx, e.api.client, rec, e.api.call(StepDetails, e.api.userByIDURL(subject.ID)), &user, nil)
	if err != nil {
		e.logger.DebugContext(ctx, "profile hydration failed", "subject_id", subject.ID, "error", err)
		return profile
	}
	maps.Copy(profile, user)
	return profile
}

// account derives the creation date and age from the raw timestamp.
func (e *Enricher) account(profile map[string]any) models.AttributeGroup {
	raw, _ := models.Stringify(profile["created"])
	created, ok := ParseCreated(raw)
	if !ok {
		return models.AttributeGroup{
			Name:      GroupAccount,
			Available: false,
			Values:    map[string]any{"created": models.Unknown, "account_age_days": models.Unknown},
			Error:     string(providers.ErrorBadData),
		}
	}
	return models.AttributeGroup{
		Name:      GroupAccount,
		Available: true,
		Values: map[string]any{
			"created":          created.Format("2006-01-02"),
			"account_age_days": AccountAgeDays(created, e.now()),
		},
	}
}

// ParseCreated accepts the ISO-8601 forms the users API emits.
func ParseCreated(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// AccountAgeDays counts whole days between created and now, never negative.
func AccountAgeDays(created, now time.Time) int64 {
	days := int64(now.Sub(created) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

type countResponse struct {
	Count *int64 `json:"count"`
}

func (e *Enricher) fetchFriends(ctx context.Context, id string, rec *trace.Trace) (map[string]any, error) {
	var resp countResponse
	err := providers.FetchJSON(ctx, e.api.client, rec, e.api.call(GroupSocial, e.api.friendsCountURL(id)), &resp, func() error {
		if resp.Count == nil {
			return fmt.Errorf("response has no count")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"friends": *resp.Count}, nil
}

func (e *Enricher) fetchGroups(ctx context.Context, id string, rec *trace.Trace) (map[string]any, error) {
	n, err := e.countList(ctx, GroupGroups, e.api.groupRolesURL(id), rec)
	if err != nil {
		return nil, err
	}
	return map[string]any{"groups": n}, nil
}

func (e *Enricher) fetchBadges(ctx context.Context, id string, rec *trace.Trace) (map[string]any, error) {
	n, err := e.countList(ctx, GroupInventory, e.api.badgesURL(id), rec)
	if err != nil {
		return nil, err
	}
	return map[string]any{"badges": n}, nil
}

func (e *Enricher) countList(ctx context.Context, step, endpoint string, rec *trace.Trace) (int64, error) {
	var raw map[string]any
	var n int64
	err := providers.FetchJSON(ctx, e.api.client, rec, e.api.call(step, endpoint), &raw, func() error {
		data, ok := raw["data"].([]any)
		if !ok {
			return fmt.Errorf("response has no data list")
		}
		n = int64(len(data))
		return nil
	})
	return n, err
}

func (e *Enricher) fetchValuation(ctx context.Context, id string, rec *trace.Trace) (map[string]any, error) {
	var raw map[string]any
	err := providers.FetchJSON(ctx, e.api.client, rec, e.api.call(GroupTrading, e.api.valuationURL(id)), &raw, func() error {
		if ok, present := raw["success"].(bool); present && !ok {
			return fmt.Errorf("valuation service reported success=false")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"rap":        models.ValueOr(raw, "rap", models.Unknown),
		"value":      models.ValueOr(raw, "value", models.Unknown),
		"demand":     models.ValueOr(raw, "demand", models.Unknown),
		"rap_change": models.IntOr(raw, "rapChange", 0),
	}, nil
}
