// Package metrics provides Prometheus metrics for the health summary service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Summary outcomes
const (
	OutcomeSuccess     = "success"
	OutcomePlaceholder = "placeholder"
	OutcomeInvalid     = "invalid"
	OutcomeAuth        = "auth_error"
	OutcomeRemote      = "remote_error"
	OutcomeMalformed   = "malformed"
	OutcomeShape       = "unexpected_shape"
	OutcomeBusy        = "busy"
	OutcomeStale       = "stale"
)

// Metrics holds all application metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	ImportsTotal        *prometheus.CounterVec
	ImportDuration      prometheus.Histogram
	SummariesTotal      *prometheus.CounterVec
	SummaryDuration     prometheus.Histogram
	RecordItems         *prometheus.GaugeVec
	RecordRevision      prometheus.Gauge
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "record_imports_total",
			Help: "Spreadsheet imports by outcome",
		}, []string{"outcome"}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "record_import_duration_seconds",
			Help:    "Spreadsheet import duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		SummariesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summaries_generated_total",
			Help: "Summary generation attempts by outcome",
		}, []string{"outcome"}),
		SummaryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "summary_generation_duration_seconds",
			Help:    "Summarizer round trip duration",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		}),
		RecordItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "record_items",
			Help: "Items currently held per record section",
		}, []string{"section"}),
		RecordRevision: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "record_revision",
			Help: "Current record revision",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	reg.MustRegister(
		m.ImportsTotal,
		m.ImportDuration,
		m.SummariesTotal,
		m.SummaryDuration,
		m.RecordItems,
		m.RecordRevision,
		m.HTTPRequests,
		m.HTTPDuration,
		m.CircuitBreakerState,
	)

	return m
}

// ObserveImport records one import attempt
func (m *Metrics) ObserveImport(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = "failed"
	}
	m.ImportsTotal.WithLabelValues(outcome).Inc()
	m.ImportDuration.Observe(d.Seconds())
}

// ObserveSummary records one summarization attempt. Zero durations are not
// added to the histogram since no remote call happened.
func (m *Metrics) ObserveSummary(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SummariesTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.SummaryDuration.Observe(d.Seconds())
	}
}

// SetRecordState publishes the per-section item counts and revision
func (m *Metrics) SetRecordState(counts map[string]int, revision uint64) {
	if m == nil {
		return
	}
	for section, n := range counts {
		m.RecordItems.WithLabelValues(section).Set(float64(n))
	}
	m.RecordRevision.Set(float64(revision))
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SetBreakerState publishes a circuit breaker state value
func (m *Metrics) SetBreakerState(name string, value float64) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(value)
}

// Handler returns the Prometheus HTTP handler for g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
