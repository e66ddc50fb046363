package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"ecommerce-dashboard/internal/config"
)

func TestLogger_AddsContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"})

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(WithRequestID(context.Background(), "req-42"), "op")
	defer span.End()

	logger.InfoContext(ctx, "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestLogger_WithoutContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"}).With("component", "test")

	logger.Info("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test", entry["component"])
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "warn", Format: "text"})

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "msg=kept")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("WARNING").String())
	assert.Equal(t, "ERROR", parseLogLevel("error").String())
	assert.Equal(t, "INFO", parseLogLevel("verbose").String())
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest(http.MethodGet, "GET /", http.StatusOK, time.Millisecond)
		m.SetDataset(10, time.Second)
		m.ObserveBuild(3)
		m.ObserveChart("review-highest")
		m.ObserveExport()
	})
	assert.Nil(t, m.Registry())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetrics_Records(t *testing.T) {
	m := NewMetrics()
	m.SetDataset(1200, 2*time.Second)
	m.ObserveBuild(5)
	m.ObserveBuild(50)
	m.ObserveChart("sales-by-category")
	m.ObserveExport()

	expected := `
# HELP dashboard_dataset_records Rows in the loaded dataset.
# TYPE dashboard_dataset_records gauge
dashboard_dataset_records 1200
# HELP dashboard_builds_total Dashboard artifact sets computed.
# TYPE dashboard_builds_total counter
dashboard_builds_total 2
# HELP dashboard_charts_rendered_total PNG charts rendered by chart name.
# TYPE dashboard_charts_rendered_total counter
dashboard_charts_rendered_total{chart="sales-by-category"} 1
# HELP dashboard_exports_total XLSX workbooks written.
# TYPE dashboard_exports_total counter
dashboard_exports_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"dashboard_dataset_records",
		"dashboard_builds_total",
		"dashboard_charts_rendered_total",
		"dashboard_exports_total",
	))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest(http.MethodGet, "GET /api/summary", http.StatusOK, 15*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `dashboard_http_requests_total{method="GET",route="GET /api/summary",status="200"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestNewTracerProvider(t *testing.T) {
	for _, exporter := range []string{"none", "stdout"} {
		t.Run(exporter, func(t *testing.T) {
			tp, err := NewTracerProvider(config.TracingConfig{Exporter: exporter, SampleRatio: 1})
			require.NoError(t, err)
			defer tp.Shutdown(context.Background())

			_, span := Tracer().Start(context.Background(), "startup")
			defer span.End()
			assert.True(t, span.SpanContext().IsValid())
		})
	}

	_, err := NewTracerProvider(config.TracingConfig{Exporter: "jaeger"})
	assert.Error(t, err)
}
