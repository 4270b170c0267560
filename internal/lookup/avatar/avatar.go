// Package avatar resolves and enriches accounts on the avatar platform. The
// identity strategies hit the users API; enrichment fans out to the friends,
// groups and badges APIs plus a third-party valuation service.
package avatar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"lookupbot/internal/lookup/providers"
)

// SearchLimit bounds the keyword search fallback.
const SearchLimit = 10

// Config holds the upstream base URLs and the per-call timeout.
type Config struct {
	UsersURL     string
	FriendsURL   string
	GroupsURL    string
	BadgesURL    string
	ProfileURL   string
	ValuationURL string
	Timeout      time.Duration
}

// API builds endpoint URLs and shares one Getter across strategies and
// enrichment.
type API struct {
	client providers.Getter
	cfg    Config
}

// NewAPI validates cfg and returns an API.
func NewAPI(client providers.Getter, cfg Config) (*API, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	for name, v := range map[string]string{
		"users":     cfg.UsersURL,
		"friends":   cfg.FriendsURL,
		"groups":    cfg.GroupsURL,
		"badges":    cfg.BadgesURL,
		"valuation": cfg.ValuationURL,
	} {
		if v == "" {
			return nil, fmt.Errorf("%s base URL is required", name)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &API{client: client, cfg: cfg}, nil
}

func (a *API) call(step, endpoint string) providers.Call {
	return providers.Call{Step: step, Endpoint: endpoint, Timeout: a.cfg.Timeout}
}

func (a *API) userByIDURL(id string) string {
	return fmt.Sprintf("%s/v1/users/%s", trim(a.cfg.UsersURL), url.PathEscape(id))
}

func (a *API) userByNameURL(name string) string {
	return fmt.Sprintf("%s/v1/users/by-username/%s", trim(a.cfg.UsersURL), url.PathEscape(name))
}

func (a *API) searchURL(keyword string) string {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("limit", fmt.Sprint(SearchLimit))
	return fmt.Sprintf("%s/v1/users/search?%s", trim(a.cfg.UsersURL), q.Encode())
}

func (a *API) friendsCountURL(id string) string {
	return fmt.Sprintf("%s/v1/users/%s/friends/count", trim(a.cfg.FriendsURL), url.PathEscape(id))
}

func (a *API) groupRolesURL(id string) string {
	return fmt.Sprintf("%s/v1/users/%s/groups/roles", trim(a.cfg.GroupsURL), url.PathEscape(id))
}

func (a *API) badgesURL(id string) string {
	return fmt.Sprintf("%s/v1/users/%s/badges?limit=100", trim(a.cfg.BadgesURL), url.PathEscape(id))
}

func (a *API) valuationURL(id string) string {
	return fmt.Sprintf("%s/playerapi/player/%s", trim(a.cfg.ValuationURL), url.PathEscape(id))
}

func (a *API) profileURL(id string) string {
	base := a.cfg.ProfileURL
	if base == "" {
		base = "https://www.roblox.com"
	}
	return fmt.Sprintf("%s/users/%s/profile", trim(base), id)
}

func trim(base string) string {
	return strings.TrimRight(base, "/")
}
