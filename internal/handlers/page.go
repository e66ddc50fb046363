package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"ecommerce-dashboard/internal/errors"
	"ecommerce-dashboard/internal/services"
	"ecommerce-dashboard/internal/ui/templates"
)

type PageHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleIndex renders the dashboard page for the full dataset range, or for
// start and end when given.
func (h *PageHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, ok := dashboardFor(w, r, h.analytics, h.logger, q.Get("start"), q.Get("end"))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := templates.Dashboard(templates.NewPageData(d)).Render(r.Context(), &buf); err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render dashboard"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
