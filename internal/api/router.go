package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/metrics"
	"ArticlesHarmonizer/internal/ports"
)

// Reader is the read-only view of the store the monitoring API serves.
type Reader interface {
	ports.StatsReader
	Ping(ctx context.Context) error
	Article(ctx context.Context, articleID string) (domain.DimensionArticle, error)
	Articles(ctx context.Context, platform domain.Platform, limit, offset uint64) ([]domain.DimensionArticle, error)
	QuarantineRecords(ctx context.Context, sourceTable string, limit uint64) ([]domain.QuarantineRecord, error)
	RecentRuns(ctx context.Context, limit uint64) ([]domain.AuditEntry, error)
}

// Options wires the optional collaborators of the router.
type Options struct {
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTP
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewRouter builds the chi router for the monitoring API.
func NewRouter(reader Reader, opts Options) http.Handler {
	h := newHandler(reader, opts.Logger, opts.Now)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if opts.Logger != nil {
		r.Use(requestLogger(opts.Logger))
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware(routePattern))
	}

	r.Get("/healthz", h.health)
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", h.stats)
		r.Get("/quarantine", h.quarantineStats)
	})
	r.Get("/quarantine/{source}", h.quarantine)
	r.Get("/runs", h.runs)
	r.Route("/articles", func(r chi.Router) {
		r.Get("/", h.articles)
		r.Get("/{articleID}", h.article)
	})

	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			switch {
			case ww.Status() >= 500:
				level = slog.LevelError
			case ww.Status() >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
