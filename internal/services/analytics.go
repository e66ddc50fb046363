package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/observability"
)

var ErrNotLoaded = errors.New("dataset not loaded")

// Analytics owns the loaded dataset and builds dashboards from it. The
// table is replaced wholesale on load and never mutated, so concurrent
// builds only need the read lock to fetch it.
type Analytics struct {
	mu       sync.RWMutex
	table    *dataset.Table
	source   string
	loadedAt time.Time
	builds   atomic.Int64
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func NewAnalytics(metrics *observability.Metrics) *Analytics {
	return &Analytics{
		metrics: metrics,
		logger:  slog.Default(),
	}
}

// SetData installs records as the dataset without reading a file.
func (a *Analytics) SetData(records []models.OrderRecord) {
	a.setTable(dataset.NewTable(records), "memory")
}

func (a *Analytics) LoadFromCSV(ctx context.Context, filename string, opts dataset.Options) error {
	ctx, span := observability.Tracer().Start(ctx, "dataset.load")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.path", filename))

	start := time.Now()
	a.logger.InfoContext(ctx, "loading dataset", "filename", filename)

	table, err := dataset.Load(ctx, filename, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return fmt.Errorf("load dataset: %w", err)
	}

	a.setTable(table, filename)

	duration := time.Since(start)
	count := table.Len()
	a.metrics.SetDataset(count, duration)
	span.SetAttributes(attribute.Int("dataset.records", count))

	bounds, _ := table.Bounds()
	a.logger.InfoContext(ctx, "dataset loaded",
		"records", count,
		"first_date", bounds.Start.Format(models.DateLayout),
		"last_date", bounds.End.Format(models.DateLayout),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return nil
}

func (a *Analytics) setTable(table *dataset.Table, source string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.table = table
	a.source = source
	a.loadedAt = time.Now()
}

func (a *Analytics) Table() *dataset.Table {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.table
}

// Bounds returns the first and last approval dates of the dataset.
func (a *Analytics) Bounds() (models.DateRange, error) {
	r, ok := a.Table().Bounds()
	if !ok {
		return models.DateRange{}, ErrNotLoaded
	}
	return r, nil
}

// ParseRange reads a date range from request parameters. Missing values
// default to the dataset bounds.
func (a *Analytics) ParseRange(start, end string) (models.DateRange, error) {
	bounds, err := a.Bounds()
	if err != nil {
		return models.DateRange{}, err
	}
	return models.ParseDateRange(start, end, bounds)
}

// Dashboard builds the artifact set for r. Each call recomputes from the
// loaded table.
func (a *Analytics) Dashboard(ctx context.Context, r models.DateRange) (*models.Dashboard, error) {
	table := a.Table()
	if table.Len() == 0 {
		return nil, ErrNotLoaded
	}

	ctx, span := observability.Tracer().Start(ctx, "dashboard.build")
	defer span.End()
	span.SetAttributes(
		attribute.String("range.start", r.Start.Format(models.DateLayout)),
		attribute.String("range.end", r.End.Format(models.DateLayout)),
	)

	d := Build(table, r)

	a.builds.Add(1)
	a.metrics.ObserveBuild(d.Summary.Records)
	span.SetAttributes(attribute.Int("dashboard.rows", d.Summary.Records))

	a.logger.DebugContext(ctx, "dashboard built",
		"range", r.String(),
		"rows", d.Summary.Records,
		"categories", len(d.Sales),
		"bins", len(d.Density))

	return d, nil
}

// Stats reports the loaded dataset for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	table, source, loadedAt := a.table, a.source, a.loadedAt
	a.mu.RUnlock()

	stats := map[string]any{
		"record_count": table.Len(),
		"source":       source,
		"builds":       a.builds.Load(),
	}
	if !loadedAt.IsZero() {
		stats["loaded_at"] = loadedAt
	}
	if bounds, ok := table.Bounds(); ok {
		stats["first_date"] = bounds.Start.Format(models.DateLayout)
		stats["last_date"] = bounds.End.Format(models.DateLayout)
	}
	return stats
}
