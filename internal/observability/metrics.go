package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

// Metrics is the service's private Prometheus registry. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	datasetRecords  prometheus.Gauge
	datasetLoad     prometheus.Gauge
	buildsTotal     prometheus.Counter
	buildRows       prometheus.Histogram
	chartsTotal     *prometheus.CounterVec
	exportsTotal    prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Rows in the loaded dataset.",
		}),
		datasetLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of the last dataset load.",
		}),
		buildsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Dashboard artifact sets computed.",
		}),
		buildRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_rows",
			Help:      "Rows in the filtered view per dashboard build.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		}),
		chartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_rendered_total",
			Help:      "PNG charts rendered by chart name.",
		}, []string{"chart"}),
		exportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "XLSX workbooks written.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.datasetRecords,
		m.datasetLoad,
		m.buildsTotal,
		m.buildRows,
		m.chartsTotal,
		m.exportsTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) SetDataset(records int, duration time.Duration) {
	if m == nil {
		return
	}
	m.datasetRecords.Set(float64(records))
	m.datasetLoad.Set(duration.Seconds())
}

func (m *Metrics) ObserveBuild(rows int) {
	if m == nil {
		return
	}
	m.buildsTotal.Inc()
	m.buildRows.Observe(float64(rows))
}

func (m *Metrics) ObserveChart(name string) {
	if m == nil {
		return
	}
	m.chartsTotal.WithLabelValues(name).Inc()
}

func (m *Metrics) ObserveExport() {
	if m == nil {
		return
	}
	m.exportsTotal.Inc()
}
