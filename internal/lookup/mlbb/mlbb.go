// Package mlbb resolves mobile-game players. The primary stats service is
// queried by nickname, then by numeric uid; an operator may configure an
// alternate API as the last resort. The resolved payload already carries
// every attribute, so enrichment makes no further calls.
package mlbb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/providers"
	"lookupbot/internal/lookup/resolver"
	"lookupbot/internal/lookup/trace"
)

// Strategy names.
const (
	StepNickname  = "nickname"
	StepUID       = "uid"
	StepAlternate = "alternate"
)

// Placeholder is replaced by the escaped query in AltTemplate.
const Placeholder = "{}"

// recognizedKeys are the fields that make an alternate API payload usable.
var recognizedKeys = []string{"nickname", "name", "user_id", "player_id", "level", "rank"}

type Config struct {
	BaseURL string
	// AltTemplate is optional and must contain Placeholder exactly once.
	AltTemplate string
	Timeout     time.Duration
}

type API struct {
	client providers.Getter
	cfg    Config
}

func NewAPI(client providers.Getter, cfg Config) (*API, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("mlbb base URL is required")
	}
	if cfg.AltTemplate != "" && strings.Count(cfg.AltTemplate, Placeholder) != 1 {
		return nil, fmt.Errorf("alternate API template must contain exactly one %q", Placeholder)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &API{client: client, cfg: cfg}, nil
}

// Strategies returns nickname, uid and, when configured, alternate.
func (a *API) Strategies() []resolver.Strategy {
	strategies := []resolver.Strategy{
		resolver.Func{StrategyName: StepNickname, Fn: a.resolveByNickname},
		resolver.Func{StrategyName: StepUID, When: resolver.IsDigits, Fn: a.resolveByUID},
	}
	if a.cfg.AltTemplate != "" {
		strategies = append(strategies, resolver.Func{StrategyName: StepAlternate, Fn: a.resolveAlternate})
	}
	return strategies
}

func (a *API) playerURL(param, value string) string {
	q := url.Values{}
	q.Set(param, value)
	return fmt.Sprintf("%s/mlbb/v1/player?%s", strings.TrimRight(a.cfg.BaseURL, "/"), q.Encode())
}

// AltURL substitutes the query into the template, escaping it for use in a
// query string with spaces as %20.
func AltURL(template, query string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return strings.Replace(template, Placeholder, escaped, 1)
}

type playerResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

func (a *API) resolveByNickname(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error) {
	return a.fetchPlayer(ctx, StepNickname, a.playerURL("nickname", query), query, rec)
}

func (a *API) resolveByUID(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error) {
	return a.fetchPlayer(ctx, StepUID, a.playerURL("uid", query), query, rec)
}

func (a *API) fetchPlayer(ctx context.Context, step, endpoint, query string, rec *trace.Trace) (*models.Subject, error) {
	var resp playerResponse
	call := providers.Call{Step: step, Endpoint: endpoint, Timeout: a.cfg.Timeout}
	err := providers.FetchJSON(ctx, a.client, rec, call, &resp, func() error {
		if resp.Status != "success" {
			return providers.NotFound(step, fmt.Sprintf("status %q", resp.Status))
		}
		if len(resp.Data) == 0 {
			return providers.NotFound(step, "empty player data")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subjectFromPlayer(resp.Data, step, query), nil
}

func (a *API) resolveAlternate(ctx context.Context, query string, rec *trace.Trace) (*models.Subject, error) {
	var body any
	var player map[string]any
	call := providers.Call{
		Step:     StepAlternate,
		Endpoint: AltURL(a.cfg.AltTemplate, query),
		Timeout:  a.cfg.Timeout,
		Note:     "alt api",
	}
	err := providers.FetchJSON(ctx, a.client, rec, call, &body, func() error {
		p, ok := PlayerFromAlternate(body)
		if !ok {
			return providers.Malformed(StepAlternate, "no recognized player fields")
		}
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subjectFromPlayer(player, StepAlternate, query), nil
}

// PlayerFromAlternate picks the player object out of an alternate API body:
// the "data" object when present, else the top level. It is accepted only
// if it carries at least one recognized key.
func PlayerFromAlternate(body any) (map[string]any, bool) {
	top, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	player := top
	if data, ok := top["data"].(map[string]any); ok && len(data) > 0 {
		player = data
	}
	for _, key := range recognizedKeys {
		if _, ok := player[key]; ok {
			return player, true
		}
	}
	return nil, false
}

func subjectFromPlayer(player map[string]any, step, query string) *models.Subject {
	id := models.StringOr(player, "user_id", models.StringOr(player, "player_id", ""))
	if id == "" {
		id = models.Unknown
		if step == StepUID {
			id = query
		}
	}
	return &models.Subject{
		ID:      id,
		Name:    models.StringOr(player, "nickname", models.StringOr(player, "name", models.Unknown)),
		Profile: player,
	}
}
