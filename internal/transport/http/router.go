// Package httptransport exposes lookups, traces, history and conversation
// state over HTTP. Handlers only translate between HTTP and the services.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lookupbot/internal/platform/middleware"
)

// AliveMessage is served at / for uptime pingers.
const AliveMessage = "Bot is alive"

// RequestTimeout bounds a whole request, including every upstream call a
// lookup makes.
const RequestTimeout = 60 * time.Second

// NewRouter wires every route. gatherer may be nil to omit /metrics.
func NewRouter(h *Handler, logger *slog.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(AliveMessage))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(RequestTimeout))
		r.Get("/lookup/{domain}", h.handleLookup)
		r.Get("/debug/{domain}", h.handleDebug)
		r.Get("/history", h.handleHistory)

		r.Route("/conversations/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetConversation)
			r.Post("/select", h.handleSelect)
			r.Post("/reply", h.handleReply)
			r.Delete("/", h.handleCancel)
		})
	})
	return r
}
