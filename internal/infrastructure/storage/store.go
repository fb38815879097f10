package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/ports"
)

// batchSize bounds the number of bind parameters per statement.
const batchSize = 500

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = domain.ErrNotFound

// Store implements every persistence port over database/sql.
type Store struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	now    func() time.Time
	logger *slog.Logger
}

var (
	_ ports.StagingReader   = (*Store)(nil)
	_ ports.StagingWriter   = (*Store)(nil)
	_ ports.QuarantineStore = (*Store)(nil)
	_ ports.DimensionStore  = (*Store)(nil)
	_ ports.FlagStore       = (*Store)(nil)
	_ ports.AuditLog        = (*Store)(nil)
	_ ports.RunLocker       = (*Store)(nil)
	_ ports.StatsReader     = (*Store)(nil)
)

// NewStore wires a sql.DB opened with driver.
func NewStore(db *sql.DB, driver string, log *slog.Logger) (*Store, error) {
	placeholder, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(placeholder),
		now:    time.Now,
		logger: log,
	}, nil
}

// WithClock overrides the lock timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// inTx runs fn in one transaction and commits only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func execTx(ctx context.Context, tx *sql.Tx, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return tx.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryRowContext(ctx, query, args...), nil
}

// closeRows finishes an iteration the way every reader in this package does.
func closeRows(rows *sql.Rows) error {
	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return fmt.Errorf("close rows: %w", closeErr)
	}
	return nil
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func (s *Store) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
