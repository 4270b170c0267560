package avatar

import (
	"context"
	"strings"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/providers"
	"lookupbot/internal/lookup/resolver"
	"lookupbot/internal/lookup/trace"
)

// Strategy names, as they appear in traces and metrics.
const (
	StepDirectID = "direct_id"
	StepByName   = "by_name"
	StepSearch   = "search"
	StepDetails  = "details"
)

// Strategies returns the avatar resolution order: direct ID for numeric
// queries, exact name, then keyword search.
func (a *API) Strategies() []resolver.Strategy {
	return []resolver.Strategy{
		resolver.Func{StrategyName: StepDirectID, When: resolver.IsDigits, Fn: a.resolveByID},
		resolver.Func{StrategyName: StepByName, Fn: a.resolveByName},
		resolver.Func{StrategyName: StepSearch, Fn: a.resolveBySearch},
	}
}

func (a *API) resolveByID(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error) {
	return a.fetchUser(ctx, a.call(StepDirectID, a.userByIDURL(query)), query, rec)
}

func (a *API) resolveByName(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error) {
	return a.fetchUser(ctx, a.call(StepByName, a.userByNameURL(query)), query, rec)
}

func (a *API) fetchUser(ctx context.Context, call providers.Call, query string, rec *trace.Trace) (*models.Subject, error) {
	var user map[string]any
	err := providers.FetchJSON(ctx, a.client, rec, call, &user, func() error {
		return requireID(call.Step, user)
	})
	if err != nil {
		return nil, err
	}
	return subjectFromUser(user, query), nil
}

type searchResponse struct {
	Data []map[string]any `json:"data"`
}

// resolveBySearch prefers a case-insensitive exact name match and otherwise
// takes the highest ranked result.
func (a *API) resolveBySearch(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error) {
	var resp searchResponse
	var picked map[string]any
	err := providers.FetchJSON(ctx, a.client, rec, a.call(StepSearch, a.searchURL(query)), &resp, func() error {
		if len(resp.Data) == 0 {
			return providers.NotFound(StepSearch, "search returned no results")
		}
		picked = SelectCandidate(resp.Data, query)
		return requireID(StepSearch, picked)
	})
	if err != nil {
		return nil, err
	}
	return subjectFromUser(picked, query), nil
}

// SelectCandidate applies the search tie-break: the first result whose name
// equals query ignoring case, else the first result. Candidates must be
// non-empty.
func SelectCandidate(candidates []map[string]any, query string) map[string]any {
	for _, c := range candidates {
		if name, ok := models.Stringify(c["name"]); ok && strings.EqualFold(name, query) {
			return c
		}
	}
	return candidates[0]
}

func requireID(step string, user map[string]any) error {
	id, ok := models.Stringify(user["id"])
	if !ok || id == "" || id == "0" {
		return providers.Malformed(step, "response has no user id")
	}
	return nil
}

func subjectFromUser(user map[string]any, query string) *models.Subject {
	id, _ := models.Stringify(user["id"])
	return &models.Subject{
		ID:          id,
		Name:        models.StringOr(user, "name", query),
		DisplayName: models.StringOr(user, "displayName", ""),
		Profile:     user,
	}
}
