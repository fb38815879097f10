package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/integration"
	"ArticlesHarmonizer/internal/metrics"
	"ArticlesHarmonizer/internal/ports"
	"ArticlesHarmonizer/internal/processed"
	"ArticlesHarmonizer/internal/quarantine"
	"ArticlesHarmonizer/internal/registry"
	"ArticlesHarmonizer/internal/validation"
)

// LockName is the advisory lock taken by Run.
const LockName = "dq_pipeline"

// PipelineOptions tunes one pipeline run.
type PipelineOptions struct {
	Sources        []domain.Source
	MaxDuplicates  int
	StopOnError    bool
	LockStaleAfter time.Duration
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Staging    ports.StagingReader
	Quarantine ports.QuarantineStore
	Dimension  ports.DimensionStore
	Flags      ports.FlagStore
	Audit      ports.AuditLog
	Locker     ports.RunLocker
	Notifier   ports.Notifier
	Metrics    *metrics.Pipeline
	Logger     *slog.Logger
	Clock      func() time.Time
	Options    PipelineOptions
}

// Pipeline implements the validate, quarantine, integrate, flag workflow per source.
type Pipeline struct {
	staging    ports.StagingReader
	audit      ports.AuditLog
	locker     ports.RunLocker
	notifier   ports.Notifier
	metrics    *metrics.Pipeline
	logger     *slog.Logger
	now        func() time.Time
	opts       PipelineOptions
	quarantine *quarantine.Writer
	flags      *processed.Controller
	gfg        *integration.Integrator[domain.GFGRecord]
	medium     *integration.Integrator[domain.MediumRecord]
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	opts := deps.Options
	if len(opts.Sources) == 0 {
		opts.Sources = domain.AllSources()
	}
	if opts.LockStaleAfter <= 0 {
		opts.LockStaleAfter = 30 * time.Minute
	}

	component := func(name string) *slog.Logger {
		if deps.Logger == nil {
			return nil
		}
		return deps.Logger.With("component", name)
	}

	return &Pipeline{
		staging:    deps.Staging,
		audit:      deps.Audit,
		locker:     deps.Locker,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        now,
		opts:       opts,
		quarantine: quarantine.NewWriter(deps.Quarantine, component("quarantine")).WithClock(now),
		flags:      processed.NewController(deps.Flags, component("processed")),
		gfg:        integration.NewGFG(deps.Dimension, component("integration.gfg")).WithClock(now),
		medium:     integration.NewMedium(deps.Dimension, component("integration.medium")).WithClock(now),
	}
}

// Run processes every configured source in order under the advisory lock.
// Source failures are joined; the run stops early only when StopOnError is set.
func (p *Pipeline) Run(ctx context.Context) ([]domain.RunResult, error) {
	runID := uuid.NewString()

	if p.locker != nil {
		if err := p.locker.AcquireLock(ctx, LockName, runID, p.opts.LockStaleAfter); err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		defer func() {
			// the lock must be released even when ctx is already cancelled
			if err := p.locker.ReleaseLock(context.WithoutCancel(ctx), LockName, runID); err != nil {
				p.warn("release run lock", "run_id", runID, "error", err)
			}
		}()
	}

	p.info("pipeline run started", "run_id", runID, "sources", len(p.opts.Sources))

	var (
		results []domain.RunResult
		errs    []error
	)
	for _, source := range p.opts.Sources {
		res, err := p.RunSource(ctx, source, runID)
		results = append(results, res)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", source, err))
			if p.opts.StopOnError {
				break
			}
		}
	}

	runErr := errors.Join(errs...)
	p.info("pipeline run finished", "run_id", runID, "sources", len(results), "failed_sources", len(errs))
	p.notify(ctx, runID, results)

	return results, runErr
}

// RunSource validates, quarantines, integrates and flags the unprocessed batch of one source.
// The returned result is filled as far as the run got, also on error.
func (p *Pipeline) RunSource(ctx context.Context, source domain.Source, runID string) (domain.RunResult, error) {
	res := domain.RunResult{RunID: runID, Source: source, StartedAt: p.now()}

	var err error
	switch source {
	case domain.SourceGFG:
		err = runSource(ctx, p, &res, p.staging.UnprocessedGFG, p.gfg)
	case domain.SourceMedium:
		err = runSource(ctx, p, &res, p.staging.UnprocessedMedium, p.medium)
	default:
		err = &domain.UnknownSourceError{Name: source.String()}
	}

	res.FinishedAt = p.now()
	res.Err = err
	p.metrics.ObserveRun(res)
	p.record(ctx, res)

	if err != nil {
		p.logError("source run failed", "run_id", runID, "source", source.String(), "error", err)
	} else {
		p.info("source run finished", "run_id", runID, "source", source.String(),
			"total", res.Total, "clean", res.Clean, "quarantined", res.Quarantined,
			"integrated", res.Integrated, "flagged", res.Flagged)
	}
	return res, err
}

func runSource[R domain.StagingRecord](
	ctx context.Context,
	p *Pipeline,
	res *domain.RunResult,
	load func(context.Context) ([]R, error),
	integrator *integration.Integrator[R],
) error {
	source := res.Source

	schema, err := registry.Resolve(source)
	if err != nil {
		return err
	}

	batch, err := load(ctx)
	if err != nil {
		p.metrics.StageFailed(source, metrics.StageLoad)
		return fmt.Errorf("load %s: %w", schema.Table, err)
	}
	res.Total = len(batch)
	p.debug("batch loaded", "source", source.String(), "rows", len(batch))

	res.NullTitles = validation.NullCount(batch, "title")
	res.DuplicateIDs = validation.DuplicateKeys(batch, schema.PrimaryKey)
	if p.opts.MaxDuplicates > 0 && res.DuplicateIDs > p.opts.MaxDuplicates {
		p.metrics.StageFailed(source, metrics.StageDuplicates)
		return fmt.Errorf("%d repeated %s values exceed limit %d: %w",
			res.DuplicateIDs, schema.PrimaryKey, p.opts.MaxDuplicates, domain.ErrExcessiveDuplicates)
	}

	report, err := validation.Validate(batch, schema)
	if err != nil {
		p.metrics.StageFailed(source, metrics.StageValidate)
		return err
	}

	clean, failed := validation.Split(batch, report)
	res.Clean, res.Failed = len(clean), len(failed)
	if !report.Empty() {
		p.debug("validation violations", "source", source.String(), "rows", report.FailedRows(),
			"violations", report.Len(), "by_constraint", report.CountByConstraint())
	}

	var errs []error

	// quarantine and integration touch disjoint rows; a failure of one does not skip the other
	if len(failed) > 0 {
		n, qErr := p.quarantine.Quarantine(ctx, domain.Records(failed), report, schema.Table, schema.PrimaryKey)
		if qErr != nil {
			p.metrics.StageFailed(source, metrics.StageQuarantine)
			errs = append(errs, qErr)
		}
		res.Quarantined = n
	}

	integrated, iErr := integrator.Integrate(ctx, clean)
	if iErr != nil {
		p.metrics.StageFailed(source, metrics.StageIntegrate)
		return errors.Join(append(errs, iErr)...)
	}
	res.Integrated = integrated

	ids := domain.StagingIDs(clean)
	if fErr := p.flags.MarkProcessed(ctx, schema.Table, domain.StagingIDColumn, ids); fErr != nil {
		p.metrics.StageFailed(source, metrics.StageFlag)
		return errors.Join(append(errs, fErr)...)
	}
	res.Flagged = len(ids)

	return errors.Join(errs...)
}

func (p *Pipeline) record(ctx context.Context, res domain.RunResult) {
	if p.audit == nil {
		return
	}
	if err := p.audit.RecordRun(ctx, domain.AuditEntryFrom(res)); err != nil {
		p.metrics.StageFailed(res.Source, metrics.StageAudit)
		p.warn("audit log write failed", "run_id", res.RunID, "source", res.Source.String(), "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, runID string, results []domain.RunResult) {
	if p.notifier == nil || len(results) == 0 {
		return
	}
	if err := p.notifier.PublishRunReport(ctx, buildRunReport(runID, results)); err != nil {
		p.warn("run report not delivered", "run_id", runID, "error", err)
	}
}

func buildRunReport(runID string, results []domain.RunResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DQ run %s\n", runID)
	for _, r := range results {
		status := "ok"
		switch {
		case r.Err != nil:
			status = "error"
		case r.Failed > 0:
			status = "quarantined rows"
		}
		fmt.Fprintf(&sb, "- %s: %s\n  total %d, clean %d, quarantined %d, integrated %d, flagged %d\n",
			r.Source, status, r.Total, r.Clean, r.Quarantined, r.Integrated, r.Flagged)
		if r.Err != nil {
			fmt.Fprintf(&sb, "  %v\n", r.Err)
		}
	}
	return sb.String()
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) logError(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
