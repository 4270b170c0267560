package httptransport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/trace"
	dErrors "lookupbot/pkg/domain-errors"
	"lookupbot/pkg/platform/httputil"
)

// LookupResponse is the body of a successful lookup.
type LookupResponse struct {
	Result *models.LookupResult `json:"result"`
	Trace  *trace.Trace         `json:"trace"`
}

// FailedLookupResponse is the error envelope plus the trace of the attempts.
type FailedLookupResponse struct {
	httputil.ErrorResponse
	Trace *trace.Trace `json:"trace,omitempty"`
}

const defaultHistoryLimit = 50

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain, err := domainParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, rec, err := h.lookups.ResolveAndEnrich(ctx, domain, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.InfoContext(ctx, "lookup failed", "domain", domain, "error", err)
		writeFailure(w, err, rec)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LookupResponse{Result: result, Trace: rec})
}

func (h *Handler) handleDebug(w http.ResponseWriter, r *http.Request) {
	domain, err := domainParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.lookups.Debug(r.Context(), domain, r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.lookups.History(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load history", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"lookups": records})
}

func domainParam(r *http.Request) (models.Domain, error) {
	d, err := models.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error())
	}
	return d, nil
}

// writeFailure attaches the trace, when there is one, to the error envelope.
func writeFailure(w http.ResponseWriter, err error, rec *trace.Trace) {
	if rec == nil {
		httputil.WriteError(w, err)
		return
	}
	code := dErrors.CodeOf(err)
	status := httputil.StatusFor(code)
	resp := FailedLookupResponse{
		ErrorResponse: httputil.ErrorResponse{Error: string(code)},
		Trace:         rec,
	}
	if status != http.StatusInternalServerError {
		resp.ErrorDescription = httputil.Describe(err)
	}
	httputil.WriteJSON(w, status, resp)
}
