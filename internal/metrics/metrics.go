package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of a story request.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Metrics bundles prometheus collectors for the capture pipeline.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal       *prometheus.CounterVec
	RequestDurationSec  prometheus.Histogram
	RequestRetries      prometheus.Counter
	FailuresTotal       *prometheus.CounterVec
	FieldFallbacks      *prometheus.CounterVec
	ScreenshotFallbacks prometheus.Counter
	NotifyErrors        prometheus.Counter
	RunsTotal           prometheus.Counter
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "story_requests_total",
			Help: "Total number of processed story requests by outcome.",
		}, []string{"outcome"}),
		RequestDurationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "story_request_duration_seconds",
			Help:    "Story request duration in seconds, retries included.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		RequestRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_request_retries_total",
			Help: "Total number of story request attempts beyond the first.",
		}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "story_failures_total",
			Help: "Total number of failed story requests by error code.",
		}, []string{"code"}),
		FieldFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "story_field_fallbacks_total",
			Help: "Total number of extracted fields that fell back to their default.",
		}, []string{"field"}),
		ScreenshotFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_screenshot_fallbacks_total",
			Help: "Total number of full-viewport screenshots taken instead of a clip.",
		}),
		NotifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_notify_errors_total",
			Help: "Total number of failed notifications.",
		}),
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "story_runs_total",
			Help: "Total number of crawl passes.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.RequestRetries,
		m.FailuresTotal,
		m.FieldFallbacks,
		m.ScreenshotFallbacks,
		m.NotifyErrors,
		m.RunsTotal,
	)

	return m
}

// NewWithRuntime registers the process and Go runtime collectors too.
func NewWithRuntime() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(registry)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(outcome string, started time.Time, attempts int) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestDurationSec.Observe(time.Since(started).Seconds())
	if attempts > 1 {
		m.RequestRetries.Add(float64(attempts - 1))
	}
}

func (m *Metrics) ObserveFailure(code string) {
	if code == "" {
		code = "unknown"
	}
	m.FailuresTotal.WithLabelValues(code).Inc()
}
