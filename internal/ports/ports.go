package ports

import (
	"context"
	"time"

	"ArticlesHarmonizer/internal/domain"
)

// StagingReader loads staging rows that have not been integrated yet, ordered by staging id.
type StagingReader interface {
	UnprocessedGFG(ctx context.Context) ([]domain.GFGRecord, error)
	UnprocessedMedium(ctx context.Context) ([]domain.MediumRecord, error)
}

// StagingWriter appends freshly ingested rows to the staging tables.
type StagingWriter interface {
	InsertGFG(ctx context.Context, rows []domain.GFGRecord) (int, error)
	InsertMedium(ctx context.Context, rows []domain.MediumRecord) (int, error)
}

// Ingestor pulls fresh rows from an upstream source into staging.
type Ingestor interface {
	Load(ctx context.Context) (int, error)
}

// QuarantineStore persists failed rows. The whole slice is written in one transaction.
type QuarantineStore interface {
	InsertQuarantine(ctx context.Context, records []domain.QuarantineRecord) error
}

// DimensionStore upserts canonical articles on article_id in one transaction.
type DimensionStore interface {
	UpsertArticles(ctx context.Context, articles []domain.DimensionArticle) error
}

// FlagStore sets processed = true for the given staging ids and returns the rows touched.
type FlagStore interface {
	MarkProcessed(ctx context.Context, table, idColumn string, ids []int64) (int64, error)
}

// AuditLog records one summary row per source run.
type AuditLog interface {
	RecordRun(ctx context.Context, entry domain.AuditEntry) error
}

// RunLocker guards the single-writer precondition of a pipeline run.
type RunLocker interface {
	AcquireLock(ctx context.Context, name, owner string, staleAfter time.Duration) error
	ReleaseLock(ctx context.Context, name, owner string) error
}

// StatsReader exposes read-only monitoring aggregates.
type StatsReader interface {
	DimensionStats(ctx context.Context) (domain.DimensionStats, error)
	QuarantineStats(ctx context.Context) ([]domain.QuarantineStat, error)
}

// Notifier streams run reports to Telegram or other channels.
type Notifier interface {
	PublishRunReport(ctx context.Context, report string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
