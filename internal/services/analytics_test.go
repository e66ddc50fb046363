package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"ecommerce-dashboard/internal/config"
	"ecommerce-dashboard/internal/dataset"
	"ecommerce-dashboard/internal/models"
	"ecommerce-dashboard/internal/observability"
)

const csvHeader = "order_id,order_approved_at,product_category_name_english,order_item_id,payment_value,review_score,customer_lat,customer_lng\n"

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "all_df.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleRecords() []models.OrderRecord {
	at := func(month time.Month, day int) time.Time {
		return time.Date(2018, month, day, 12, 0, 0, 0, time.UTC)
	}
	return []models.OrderRecord{
		{ApprovedAt: at(1, 10), Category: "toys", OrderItemID: 1, PaymentValue: decimal.NewFromInt(50), ReviewScore: 5, HasReview: true, Lat: -23.5, Lng: -46.6, HasLocation: true},
		{ApprovedAt: at(2, 10), Category: "books", OrderItemID: 2, PaymentValue: decimal.NewFromInt(25), ReviewScore: 2, HasReview: true, Lat: -22.9, Lng: -43.2, HasLocation: true},
		{ApprovedAt: at(3, 10), Category: "toys", OrderItemID: 1, PaymentValue: decimal.NewFromInt(75), ReviewScore: 4, HasReview: true},
	}
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics(nil)
	require.NotNil(t, a)
	assert.NotNil(t, a.logger)
	assert.Zero(t, a.Table().Len(), "new service should have no data")
}

func TestAnalytics_NotLoaded(t *testing.T) {
	a := NewAnalytics(nil)

	_, err := a.Bounds()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = a.ParseRange("", "")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = a.Dashboard(context.Background(), models.DateRange{})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestAnalytics_SetData(t *testing.T) {
	a := NewAnalytics(nil)
	a.SetData(sampleRecords())

	bounds, err := a.Bounds()
	require.NoError(t, err)
	assert.Equal(t, "2018-01-10..2018-03-10", bounds.String())

	d, err := a.Dashboard(context.Background(), bounds)
	require.NoError(t, err)
	assert.Equal(t, "R$ 150", d.Summary.SalesLabel)
	assert.Equal(t, "4 Orders", d.Summary.OrdersLabel)
	require.Len(t, d.Sales, 2)
	assert.Equal(t, models.CategorySales{Category: "books", Orders: 2}, d.Sales[0])
	assert.Len(t, d.Points, 2)
}

func TestAnalytics_ParseRange(t *testing.T) {
	a := NewAnalytics(nil)
	a.SetData(sampleRecords())

	tests := []struct {
		name    string
		start   string
		end     string
		want    string
		wantErr bool
	}{
		{name: "defaults to bounds", want: "2018-01-10..2018-03-10"},
		{name: "start only", start: "2018-02-01", want: "2018-02-01..2018-03-10"},
		{name: "end only", end: "2018-02-01", want: "2018-01-10..2018-02-01"},
		{name: "explicit", start: "2017-01-01", end: "2019-01-01", want: "2017-01-01..2019-01-01"},
		{name: "inverted is allowed", start: "2018-03-01", end: "2018-02-01", want: "2018-03-01..2018-02-01"},
		{name: "bad start", start: "yesterday", wantErr: true},
		{name: "bad end", end: "2018-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.ParseRange(tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAnalytics_DashboardFiltersRange(t *testing.T) {
	a := NewAnalytics(nil)
	a.SetData(sampleRecords())

	r, err := a.ParseRange("2018-02-10", "2018-03-10")
	require.NoError(t, err)
	d, err := a.Dashboard(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Summary.Records)
	assert.Equal(t, "R$ 100", d.Summary.SalesLabel)

	r, err = a.ParseRange("2018-03-01", "2018-02-01")
	require.NoError(t, err)
	d, err = a.Dashboard(context.Background(), r)
	require.NoError(t, err)
	assert.Zero(t, d.Summary.Records)
	assert.Empty(t, d.Sales)
	assert.Empty(t, d.Density)
}

func TestAnalytics_DashboardLogsUnderBuildSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	a := NewAnalytics(nil)
	a.logger = observability.NewLoggerTo(&buf, config.LoggerConfig{Level: "debug", Format: "json"})
	a.SetData(sampleRecords())
	bounds, err := a.Bounds()
	require.NoError(t, err)

	ctx, request := tp.Tracer("test").Start(context.Background(), "GET /api/dashboard")
	_, err = a.Dashboard(ctx, bounds)
	request.End()
	require.NoError(t, err)

	var build sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.Name() == "dashboard.build" {
			build = s
		}
	}
	require.NotNil(t, build, "dashboard.build span not recorded")
	assert.Equal(t, request.SpanContext().SpanID(), build.Parent().SpanID())

	var logged map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if entry["msg"] == "dashboard built" {
			logged = entry
		}
	}
	require.NotNil(t, logged, "dashboard built was not logged")
	assert.Equal(t, build.SpanContext().SpanID().String(), logged["span_id"])
	assert.Equal(t, build.SpanContext().TraceID().String(), logged["trace_id"])
}

func TestAnalytics_LoadFromCSV_ValidData(t *testing.T) {
	f := createTempCSV(t, csvHeader+
		"o1,2018-01-10 10:00:00,toys,1,50.00,5,-23.5,-46.6\n"+
		"o2,2018-02-10 11:00:00,books,2,25.00,2,-22.9,-43.2\n")

	metrics := observability.NewMetrics()
	a := NewAnalytics(metrics)
	require.NoError(t, a.LoadFromCSV(context.Background(), f, dataset.Options{Workers: 2}))
	assert.Equal(t, 2, a.Table().Len())

	expected := `
# HELP dashboard_dataset_records Rows in the loaded dataset.
# TYPE dashboard_dataset_records gauge
dashboard_dataset_records 2
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "dashboard_dataset_records"))

	stats := a.Stats()
	assert.Equal(t, 2, stats["record_count"])
	assert.Equal(t, f, stats["source"])
	assert.Equal(t, "2018-01-10", stats["first_date"])
	assert.Equal(t, "2018-02-10", stats["last_date"])
}

func TestAnalytics_LoadFromCSV_InvalidData(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{name: "empty file", csv: ""},
		{name: "header only", csv: csvHeader},
		{name: "missing column", csv: "order_approved_at,payment_value\n2018-01-01 00:00:00,1\n"},
		{name: "invalid timestamp", csv: csvHeader + "o1,not-a-date,toys,1,10,5,-1,-1\n"},
		{name: "invalid payment", csv: csvHeader + "o1,2018-01-01 00:00:00,toys,1,ten,5,-1,-1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, tt.csv)

			a := NewAnalytics(nil)
			a.SetData(sampleRecords())
			assert.Error(t, a.LoadFromCSV(context.Background(), f, dataset.Options{}))
			assert.Equal(t, len(sampleRecords()), a.Table().Len(), "failed load should keep the previous dataset")
		})
	}
}

func TestAnalytics_DashboardRecordsMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	a := NewAnalytics(metrics)
	a.SetData(sampleRecords())

	bounds, err := a.Bounds()
	require.NoError(t, err)
	for range 3 {
		_, err := a.Dashboard(context.Background(), bounds)
		require.NoError(t, err)
	}

	expected := `
# HELP dashboard_builds_total Dashboard artifact sets computed.
# TYPE dashboard_builds_total counter
dashboard_builds_total 3
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "dashboard_builds_total"))
	assert.Equal(t, int64(3), a.Stats()["builds"])
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics(nil)
	a.SetData(sampleRecords())
	bounds, err := a.Bounds()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%5 == 0 {
				a.SetData(sampleRecords())
				return
			}
			d, err := a.Dashboard(context.Background(), bounds)
			if assert.NoError(t, err) {
				assert.Equal(t, 3, d.Summary.Records)
			}
			_ = a.Stats()
		}()
	}
	wg.Wait()
}

func BenchmarkAnalytics_Dashboard(b *testing.B) {
	a := NewAnalytics(nil)
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.OrderRecord, 10000)
	for i := range records {
		records[i] = models.OrderRecord{
			ApprovedAt:  start.Add(time.Duration(i) * time.Hour),
			Category:    "category_" + string(rune('a'+i%26)),
			OrderItemID: 1,
			ReviewScore: float64(i%5 + 1),
			HasReview:   true,
		}
	}
	a.SetData(records)
	bounds, _ := a.Bounds()
	ctx := context.Background()

	for b.Loop() {
		_, _ = a.Dashboard(ctx, bounds)
	}
}
