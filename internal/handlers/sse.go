package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"ecommerce-dashboard/internal/errors"
	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/render"
	"ecommerce-dashboard/internal/services"
	"ecommerce-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func renderHTML(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// HandleDashboard reads the selected dates from the request signals and
// streams the refreshed tiles, chart images and map data. Range errors are
// reported as JSON before the event stream starts.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals templates.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, r, h.logger, errors.BadRequest("Malformed Datastar signals"))
		return
	}

	d, ok := dashboardFor(w, r, h.analytics, h.logger, signals.StartDate, signals.EndDate)
	if !ok {
		return
	}

	tiles, err := renderHTML(r.Context(), templates.SummaryTiles(d.Summary))
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render tiles"))
		return
	}
	charts, err := renderHTML(r.Context(), templates.ChartGrid(templates.ChartImages(d.Range)))
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render charts"))
		return
	}

	sse := datastar.NewSSE(w, r)

	if err := sse.PatchElements(tiles); err != nil {
		h.logger.WarnContext(r.Context(), "patch tiles", "error", err)
		return
	}
	if err := sse.PatchElements(charts); err != nil {
		h.logger.WarnContext(r.Context(), "patch charts", "error", err)
		return
	}

	if err := sse.MarshalAndPatchSignals(templates.Signals{
		StartDate: d.Range.Start.Format(models.DateLayout),
		EndDate:   d.Range.End.Format(models.DateLayout),
		Points:    render.PointSeries(d.Points),
		Heat:      render.HeatSeries(d.Density),
	}); err != nil {
		h.logger.WarnContext(r.Context(), "patch map signals", "error", err)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
