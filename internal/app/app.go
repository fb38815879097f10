package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ArticlesHarmonizer/internal/api"
	"ArticlesHarmonizer/internal/config"
	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/infrastructure/parser"
	"ArticlesHarmonizer/internal/infrastructure/scheduler"
	"ArticlesHarmonizer/internal/infrastructure/storage"
	"ArticlesHarmonizer/internal/infrastructure/telegram"
	"ArticlesHarmonizer/internal/logging"
	"ArticlesHarmonizer/internal/metrics"
	"ArticlesHarmonizer/internal/ports"
	"ArticlesHarmonizer/internal/usecase"
)

const schedulerStopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	store    *storage.Store
	pipeline *usecase.Pipeline
	registry *prometheus.Registry
	httpObs  *metrics.HTTP
	gfg      *parser.GFGCSVLoader
	medium   *parser.MediumFeedLoader
}

// New opens the database and builds every component. Close releases the database.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	sources, err := cfg.PipelineSources()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(db, cfg.Database.Driver, baseLogger.With("component", "storage"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Staging:    store,
		Quarantine: store,
		Dimension:  store,
		Flags:      store,
		Audit:      store,
		Locker:     store,
		Notifier:   notifier,
		Metrics:    metrics.NewPipeline(reg),
		Logger:     baseLogger.With("component", "pipeline"),
		Options: usecase.PipelineOptions{
			Sources:        sources,
			MaxDuplicates:  cfg.Pipeline.DuplicateLimit(),
			StopOnError:    cfg.Pipeline.StopOnError,
			LockStaleAfter: cfg.Pipeline.LockStaleAfter,
		},
	})

	feedClient := &http.Client{Timeout: cfg.Feeds.Timeout}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		store:    store,
		pipeline: pipeline,
		registry: reg,
		httpObs:  metrics.NewHTTP(reg),
		gfg:      parser.NewGFGCSVLoader(store, baseLogger.With("component", "ingest.gfg")),
		medium:   parser.NewMediumFeedLoader(feedClient, store, cfg.Feeds.Medium, baseLogger.With("component", "ingest.medium")),
	}, nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Migrate applies the embedded schema migrations.
func (a *Application) Migrate() error {
	return storage.Migrate(a.db, a.cfg.Database.Driver, a.logger.With("component", "migrate"))
}

// IngestGFG stages a GeeksforGeeks CSV export; an empty path falls back to feeds.gfgCsv.
func (a *Application) IngestGFG(ctx context.Context, path string) (int, error) {
	if path == "" {
		path = a.cfg.Feeds.GFGCSV
	}
	if path == "" {
		return 0, errors.New("no gfg csv path given")
	}
	n, err := a.gfg.LoadFile(ctx, path)
	if err != nil {
		return n, err
	}
	a.logger.Info("gfg csv staged", "path", path, "rows", n)
	return n, nil
}

// IngestMedium stages every configured Medium feed.
func (a *Application) IngestMedium(ctx context.Context) (int, error) {
	n, err := a.medium.Load(ctx)
	if err != nil {
		return n, err
	}
	a.logger.Info("medium feeds staged", "feeds", len(a.cfg.Feeds.Medium), "rows", n)
	return n, nil
}

// Run performs one pipeline execution over the configured sources.
func (a *Application) Run(ctx context.Context) ([]domain.RunResult, error) {
	return a.pipeline.Run(ctx)
}

// Stats reads the monitoring aggregates.
func (a *Application) Stats(ctx context.Context) (domain.DimensionStats, []domain.QuarantineStat, error) {
	dim, err := a.store.DimensionStats(ctx)
	if err != nil {
		return domain.DimensionStats{}, nil, err
	}
	q, err := a.store.QuarantineStats(ctx)
	if err != nil {
		return domain.DimensionStats{}, nil, err
	}
	return dim, q, nil
}

// Handler builds the monitoring API on the application's store and metrics registry.
func (a *Application) Handler() http.Handler {
	return api.NewRouter(a.store, api.Options{
		Gatherer: a.registry,
		Metrics:  a.httpObs,
		Logger:   a.logger.With("component", "api"),
	})
}

// Serve runs the pipeline on the configured interval and serves the monitoring API
// until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if len(a.cfg.Feeds.Medium) > 0 {
		sched.WithIngest(a.medium)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval, "timezone", a.cfg.Scheduler.Location().String())

	serveErr := api.NewServer(a.cfg.HTTP.Addr, a.Handler(), a.logger.With("component", "http")).Run(ctx)

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), schedulerStopTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler did not stop cleanly", "error", err)
	}

	return serveErr
}
