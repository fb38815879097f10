package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"ArticlesHarmonizer/internal/domain"
)

func TestObserveRun(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p.ObserveRun(domain.RunResult{
		Source:      domain.SourceGFG,
		Total:       3,
		Clean:       2,
		Failed:      1,
		Quarantined: 1,
		Integrated:  2,
		Flagged:     2,
		StartedAt:   start,
		FinishedAt:  start.Add(time.Second),
	})
	p.StageFailed(domain.SourceMedium, StageIntegrate)

	assert.Equal(t, 3.0, testutil.ToFloat64(p.rows.WithLabelValues("gfg", "validated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.rows.WithLabelValues("gfg", "quarantined")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.rows.WithLabelValues("gfg", "flagged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.failures.WithLabelValues("medium", "integrate")))
	assert.Equal(t, float64(start.Add(time.Second).Unix()), testutil.ToFloat64(p.lastRun.WithLabelValues("gfg")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.duration))
}

func TestNilPipelineIsNoop(t *testing.T) {
	t.Parallel()

	var p *Pipeline
	p.ObserveRun(domain.RunResult{Source: domain.SourceGFG, Total: 1})
	p.StageFailed(domain.SourceGFG, StageFlag)
}

func TestHTTPMiddleware(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	h := NewHTTP(reg)

	handler := h.Middleware(func(*http.Request) string { return "/stats" })(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.requests.WithLabelValues("GET", "/stats", "418")))
}
