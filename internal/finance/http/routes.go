package financehttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/ceo-dashboard/internal/platform/httpx"
)

// MountRoutes registers the finance dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.opts.ExportLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "export rate limit exceeded")
		}),
	)

	r.Route("/finance", func(r chi.Router) {
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/years", h.handleYears)
		r.Get("/zones", h.handleZones)
		r.Get("/zones/compare", h.handleCompare)
		r.Get("/zones/compare.svg", h.handleCompareSVG)
		r.Get("/trend.svg", h.handleTrendSVG)
		r.Post("/cache/bump", h.handleBump)
		r.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/export.csv", h.handleCSV)
			gr.Get("/export.xlsx", h.handleXLSX)
		})
	})
}
