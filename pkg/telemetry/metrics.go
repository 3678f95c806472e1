package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	// ReportFetches counts source calls.
	// Labels: source, status (success|error)
	ReportFetches *prometheus.CounterVec

	// ReportFetchDuration measures source call latency in seconds.
	// Labels: source
	ReportFetchDuration *prometheus.HistogramVec

	// HTTPRequests counts API requests.
	// Labels: method, route, status
	HTTPRequests *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers every collector with reg. Pass a fresh
// prometheus.NewRegistry() in tests.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReportFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_fetch_total",
				Help: "Total number of report source calls by source and status",
			},
			[]string{"source", "status"},
		),
		ReportFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "report_fetch_duration_seconds",
				Help:    "Duration of report source calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		gatherer: reg,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Instrument wraps source so every RunReport is counted and timed.
func (m *Metrics) Instrument(source report.Source) report.Source {
	return &instrumented{source: source, metrics: m}
}

type instrumented struct {
	source  report.Source
	metrics *Metrics
}

func (i *instrumented) Name() string {
	return i.source.Name()
}

func (i *instrumented) RunReport(ctx context.Context, q domain.RangeQuery) ([]domain.RawRow, error) {
	started := time.Now()
	rows, err := i.source.RunReport(ctx, q)

	name := i.source.Name()
	i.metrics.ReportFetchDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	i.metrics.ReportFetches.WithLabelValues(name, status).Inc()
	return rows, err
}
