// Package metrics exposes pipeline and HTTP counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ArticlesHarmonizer/internal/domain"
)

// Pipeline stages reported on failure.
const (
	StageLoad       = "load"
	StageDuplicates = "duplicates"
	StageValidate   = "validate"
	StageQuarantine = "quarantine"
	StageIntegrate  = "integrate"
	StageFlag       = "flag"
	StageAudit      = "audit"
)

// Pipeline records per-source row outcomes. A nil *Pipeline discards everything.
type Pipeline struct {
	rows     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastRun  *prometheus.GaugeVec
}

// NewPipeline registers the pipeline collectors on reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	factory := promauto.With(reg)
	return &Pipeline{
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmonizer_rows_total",
				Help: "Staging rows handled by the pipeline, by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmonizer_step_failures_total",
				Help: "Failed pipeline steps, by source and stage",
			},
			[]string{"source", "stage"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harmonizer_run_duration_seconds",
				Help:    "Duration of one source run",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		lastRun: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "harmonizer_last_run_timestamp_seconds",
				Help: "Unix time of the last finished source run",
			},
			[]string{"source"},
		),
	}
}

// ObserveRun records the counts of a finished source run.
func (p *Pipeline) ObserveRun(r domain.RunResult) {
	if p == nil {
		return
	}
	src := r.Source.String()
	p.rows.WithLabelValues(src, "validated").Add(float64(r.Total))
	p.rows.WithLabelValues(src, "clean").Add(float64(r.Clean))
	p.rows.WithLabelValues(src, "quarantined").Add(float64(r.Quarantined))
	p.rows.WithLabelValues(src, "integrated").Add(float64(r.Integrated))
	p.rows.WithLabelValues(src, "flagged").Add(float64(r.Flagged))

	if !r.StartedAt.IsZero() && !r.FinishedAt.IsZero() {
		p.duration.WithLabelValues(src).Observe(r.FinishedAt.Sub(r.StartedAt).Seconds())
		p.lastRun.WithLabelValues(src).Set(float64(r.FinishedAt.Unix()))
	}
}

// StageFailed counts one failed step.
func (p *Pipeline) StageFailed(source domain.Source, stage string) {
	if p == nil {
		return
	}
	p.failures.WithLabelValues(source.String(), stage).Inc()
}

// HTTP counts API requests by route pattern.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP registers the API collectors on reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	factory := promauto.With(reg)
	return &HTTP{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmonizer_http_requests_total",
				Help: "HTTP requests served by the monitoring API",
			},
			[]string{"method", "route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harmonizer_http_request_duration_seconds",
				Help:    "Duration of monitoring API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Middleware records every request. route maps a request to a low-cardinality label.
func (h *HTTP) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			label := route(r)
			h.requests.WithLabelValues(r.Method, label, strconv.Itoa(wrapped.status)).Inc()
			h.duration.WithLabelValues(r.Method, label).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the original writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
