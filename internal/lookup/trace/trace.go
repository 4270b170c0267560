// Package trace records every external call a lookup attempts so a failed
// lookup can be diagnosed without running it again.
package trace

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultLimit bounds the attempts kept per lookup. A lookup makes a small,
// fixed number of calls, so hitting it indicates a bug upstream.
const DefaultLimit = 50

// Attempt is one external call and its outcome. Exactly one of StatusCode
// or Error describes a transport failure; a 200 with a bad payload carries
// both.
type Attempt struct {
	Step       string `json:"step"`
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code,omitempty"`
	Category   string `json:"category,omitempty"`
	Error      string `json:"error,omitempty"`
	Note       string `json:"note,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Failed reports whether the attempt did not produce usable data.
func (a Attempt) Failed() bool {
	return a.Category != ""
}

// Report is an immutable copy of a trace, safe to serialize or share.
type Report struct {
	LookupID   string    `json:"lookup_id"`
	Domain     string    `json:"domain"`
	Query      string    `json:"query"`
	StartedAt  time.Time `json:"started_at"`
	Attempts   []Attempt `json:"attempts"`
	Dropped    int       `json:"dropped,omitempty"`
	CacheHit   bool      `json:"cache_hit,omitempty"`
	Success    bool      `json:"success"`
	ResolvedBy string    `json:"resolved_by,omitempty"`
	SubjectID  string    `json:"subject_id,omitempty"`
}

// Trace is the append-only diagnostic record of one lookup. Enrichment
// appends from several goroutines, so every method locks.
type Trace struct {
	mu     sync.Mutex
	limit  int
	report Report
}

// New starts a trace for one lookup.
func New(lookupID, domain, query string, startedAt time.Time) *Trace {
	return &Trace{
		limit: DefaultLimit,
		report: Report{
			LookupID:  lookupID,
			Domain:    domain,
			Query:     query,
			StartedAt: startedAt,
			Attempts:  make([]Attempt, 0, 8),
		},
	}
}

// WithLimit overrides DefaultLimit. Non-positive values are ignored.
func (t *Trace) WithLimit(n int) *Trace {
	if n > 0 {
		t.mu.Lock()
		t.limit = n
		t.mu.Unlock()
	}
	return t
}

// Record appends an attempt; once the limit is reached attempts are counted
// but not kept.
func (t *Trace) Record(a Attempt) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.report.Attempts) >= t.limit {
		t.report.Dropped++
		return
	}
	t.report.Attempts = append(t.report.Attempts, a)
}

// Resolved marks the lookup as successful.
func (t *Trace) Resolved(strategy, subjectID string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.Success = true
	t.report.ResolvedBy = strategy
	t.report.SubjectID = subjectID
}

// MarkCacheHit notes that the result came from the cache and no calls ran.
func (t *Trace) MarkCacheHit() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.CacheHit = true
}

// Len returns the number of kept attempts.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.report.Attempts)
}

// Report returns a copy of the current state.
func (t *Trace) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.report
	r.Attempts = append([]Attempt(nil), t.report.Attempts...)
	return r
}

// Steps lists the step name of every kept attempt, in order.
func (t *Trace) Steps() []string {
	r := t.Report()
	steps := make([]string, len(r.Attempts))
	for i, a := range r.Attempts {
		steps[i] = a.Step
	}
	return steps
}

// MarshalJSON serializes the trace verbatim.
func (t *Trace) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Report())
}
