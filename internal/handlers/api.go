package handlers

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ecommerce-dashboard/internal/errors"
	"ecommerce-dashboard/internal/export"
	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/observability"
	"ecommerce-dashboard/internal/render"
	"ecommerce-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		metrics:   metrics,
		logger:    logger,
	}
}

// dashboardFor builds the dashboard for the start and end query
// parameters. On failure the error response has already been written.
func dashboardFor(w http.ResponseWriter, r *http.Request, analytics *services.Analytics, logger *slog.Logger, start, end string) (*models.Dashboard, bool) {
	dr, err := analytics.ParseRange(start, end)
	if err != nil {
		errors.WriteError(w, r, logger, rangeError(err))
		return nil, false
	}

	d, err := analytics.Dashboard(r.Context(), dr)
	if err != nil {
		errors.WriteError(w, r, logger, rangeError(err))
		return nil, false
	}
	return d, true
}

func rangeError(err error) error {
	if stderrors.Is(err, services.ErrNotLoaded) {
		return errors.ServiceUnavailableWrap(err, "Dataset is not loaded")
	}
	return errors.InvalidRange(err)
}

func (h *APIHandlers) dashboard(w http.ResponseWriter, r *http.Request) (*models.Dashboard, bool) {
	q := r.URL.Query()
	return dashboardFor(w, r, h.analytics, h.logger, q.Get("start"), q.Get("end"))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.analytics.Table().Len() == 0 {
		status = "loading"
	}

	errors.WriteSuccess(w, map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   observability.ServiceVersion,
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

func (h *APIHandlers) HandleBounds(w http.ResponseWriter, r *http.Request) {
	bounds, err := h.analytics.Bounds()
	if err != nil {
		errors.WriteError(w, r, h.logger, rangeError(err))
		return
	}
	errors.WriteSuccessWithHeaders(w, bounds, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, map[string]any{
		"range":   d.Range,
		"summary": d.Summary,
	}, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleReviewScores(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, d.Reviews, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleSalesByCategory(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, d.Sales, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleCustomerPoints(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, map[string]any{
		"view":   d.ClusterMap,
		"points": d.Points,
	}, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleGeoDensity(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, map[string]any{
		"view": d.HeatMap,
		"bins": d.Density,
	}, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, d, map[string]string{"Cache-Control": cacheControl})
}

// HandleChart serves /charts/{chart}.png. The image is encoded in full
// before any byte is sent so a failed render yields a clean error.
func (h *APIHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	name, isPNG := strings.CutSuffix(r.PathValue("chart"), ".png")
	if !isPNG {
		errors.WriteError(w, r, h.logger, errors.NotFound("Charts are served as .png"))
		return
	}

	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}

	spec, err := render.ChartFor(name, d)
	if err != nil {
		if stderrors.Is(err, render.ErrUnknownChart) {
			errors.WriteError(w, r, h.logger, errors.NotFound(fmt.Sprintf("Unknown chart %q", name)))
			return
		}
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to build chart"))
		return
	}

	var buf bytes.Buffer
	if err := render.BarChart(&buf, spec); err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to render chart"))
		return
	}
	h.metrics.ObserveChart(name)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Workbook(&buf, d); err != nil {
		errors.WriteError(w, r, h.logger, errors.InternalWrap(err, "Failed to write workbook"))
		return
	}
	h.metrics.ObserveExport()

	filename := fmt.Sprintf("dashboard_%s_%s.xlsx",
		d.Range.Start.Format(models.DateLayout), d.Range.End.Format(models.DateLayout))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
