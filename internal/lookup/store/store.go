// Package store keeps a history of finished lookups with their traces so
// operators can inspect recent failures after the fact.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lookupbot/internal/lookup/trace"
)

// Record is one finished lookup.
type Record struct {
	LookupID   string          `json:"lookup_id"`
	Domain     string          `json:"domain"`
	Query      string          `json:"query"`
	Success    bool            `json:"success"`
	CacheHit   bool            `json:"cache_hit"`
	SubjectID  string          `json:"subject_id,omitempty"`
	ResolvedBy string          `json:"resolved_by,omitempty"`
	Attempts   int             `json:"attempts"`
	Trace      json.RawMessage `json:"trace"`
	LookedUpAt time.Time       `json:"looked_up_at"`
}

// Store persists lookup history. Implementations are safe for concurrent use.
type Store interface {
	Save(ctx context.Context, rec Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// FromReport builds a Record from a finished trace.
func FromReport(r trace.Report, lookedUpAt time.Time) (Record, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return Record{}, fmt.Errorf("marshal trace: %w", err)
	}
	return Record{
		LookupID:   r.LookupID,
		Domain:     r.Domain,
		Query:      r.Query,
		Success:    r.Success,
		CacheHit:   r.CacheHit,
		SubjectID:  r.SubjectID,
		ResolvedBy: r.ResolvedBy,
		Attempts:   len(r.Attempts) + r.Dropped,
		Trace:      raw,
		LookedUpAt: lookedUpAt,
	}, nil
}
