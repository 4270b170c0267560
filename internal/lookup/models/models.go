// Package models holds the value types produced by a lookup: the resolved
// Subject, its AttributeSet and the final LookupResult.
package models

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Domain selects one of the lookup pipelines.
type Domain string

const (
	DomainAvatar Domain = "avatar"
	DomainMLBB   Domain = "mlbb"
)

// Sentinel values substituted when an attribute could not be fetched.
const (
	Unknown = "Unknown"
	None    = "None"
)

// ErrUnknownDomain is returned by ParseDomain.
type ErrUnknownDomain struct {
	Value string
}

func (e ErrUnknownDomain) Error() string {
	return fmt.Sprintf("unknown lookup domain %q (want avatar or mlbb)", e.Value)
}

// ParseDomain accepts the canonical names and the platform aliases users type.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "avatar", "roblox":
		return DomainAvatar, nil
	case "mlbb", "mobile":
		return DomainMLBB, nil
	default:
		return "", ErrUnknownDomain{Value: s}
	}
}

// Subject is the canonical entity a query resolved to. It is never modified
// after the resolver returns it; enrichers read Profile but do not write it.
type Subject struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name,omitempty"`
	ResolvedBy  string         `json:"resolved_by"`
	Profile     map[string]any `json:"-"`
}

// AttributeGroup is one independently fetched category of enrichment data.
type AttributeGroup struct {
	Name      string         `json:"name"`
	Available bool           `json:"available"`
	Values    map[string]any `json:"values"`
	Error     string         `json:"error,omitempty"`
}

// Value returns the group's value for key.
func (g AttributeGroup) Value(key string) any {
	return g.Values[key]
}

// AttributeSet is an ordered collection of groups keyed by name.
type AttributeSet struct {
	Groups []AttributeGroup `json:"groups"`
}

// Put inserts g or replaces the group with the same name, keeping order.
func (s *AttributeSet) Put(g AttributeGroup) {
	for i := range s.Groups {
		if s.Groups[i].Name == g.Name {
			s.Groups[i] = g
			return
		}
	}
	s.Groups = append(s.Groups, g)
}

// Group returns the named group.
func (s AttributeSet) Group(name string) (AttributeGroup, bool) {
	for _, g := range s.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return AttributeGroup{}, false
}

// Unavailable lists groups that degraded to sentinels.
func (s AttributeSet) Unavailable() []string {
	var out []string
	for _, g := range s.Groups {
		if !g.Available {
			out = append(out, g.Name)
		}
	}
	return out
}

// LookupResult is handed to the caller for formatting.
type LookupResult struct {
	Domain     Domain       `json:"domain"`
	Subject    Subject      `json:"subject"`
	Attributes AttributeSet `json:"attributes"`
	LookedUpAt time.Time    `json:"looked_up_at"`
}

// Clone returns a copy that shares no maps or slices with r.
func (r *LookupResult) Clone() *LookupResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Subject.Profile = maps.Clone(r.Subject.Profile)
	if r.Attributes.Groups != nil {
		out.Attributes.Groups = make([]AttributeGroup, len(r.Attributes.Groups))
		for i, g := range r.Attributes.Groups {
			g.Values = maps.Clone(g.Values)
			out.Attributes.Groups[i] = g
		}
	}
	return &out
}
