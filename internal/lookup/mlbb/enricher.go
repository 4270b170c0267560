package mlbb

import (
	"context"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/trace"
)

// GroupPlayer is the only attribute group the mobile game exposes.
const GroupPlayer = "player"

// Enricher maps the resolved payload into the player group.
type Enricher struct{}

func NewEnricher() *Enricher {
	return &Enricher{}
}

// Enrich makes no calls; missing fields fall back to sentinels.
func (e *Enricher) Enrich(_ context.Context, subject *models.Subject, _ *trace.Trace) models.AttributeSet {
	p := subject.Profile
	var set models.AttributeSet
	set.Put(models.AttributeGroup{
		Name:      GroupPlayer,
		Available: len(p) > 0,
		Values: map[string]any{
			"level":       models.ValueOr(p, "level", models.Unknown),
			"rank":        models.ValueOr(p, "rank", models.Unknown),
			"heroes":      models.ValueOr(p, "heroes_count", models.Unknown),
			"skins_total": models.ValueOr(p, "skins_total", models.Unknown),
			"bind_status": models.ValueOr(p, "bind_status", models.Unknown),
			"last_login":  models.ValueOr(p, "last_login", models.Unknown),
			"guild":       models.ValueOr(p, "guild_name", models.None),
		},
	})
	return set
}
