package storage

import (
	"context"
	"fmt"

	"ArticlesHarmonizer/internal/domain"
)

// RecordRun appends one dq_audit_log row.
func (s *Store) RecordRun(ctx context.Context, e domain.AuditEntry) error {
	var errText any
	if e.Error != "" {
		errText = e.Error
	}

	query, args, err := s.sb.Insert("dq_audit_log").
		Columns("run_id", "source_table", "run_at", "total_rows", "clean_rows", "quarantined_rows",
			"integrated_rows", "flagged_rows", "duplicate_ids", "null_titles", "validation_passed", "error").
		Values(e.RunID, e.SourceTable, e.RunAt.UTC(), e.TotalRows, e.CleanRows, e.QuarantinedRows,
			e.IntegratedRows, e.FlaggedRows, e.DuplicateIDs, e.NullTitles, e.ValidationPassed, errText).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// RecentRuns returns the latest audit rows, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit uint64) ([]domain.AuditEntry, error) {
	rows, err := s.query(ctx, s.sb.Select("run_id", "source_table", "run_at", "total_rows", "clean_rows",
		"quarantined_rows", "integrated_rows", "flagged_rows", "duplicate_ids", "null_titles", "validation_passed", "error").
		From("dq_audit_log").
		OrderBy("id DESC").
		Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}

	var out []domain.AuditEntry
	for rows.Next() {
		var (
			e       domain.AuditEntry
			errText *string
		)
		if err := rows.Scan(&e.RunID, &e.SourceTable, &e.RunAt, &e.TotalRows, &e.CleanRows,
			&e.QuarantinedRows, &e.IntegratedRows, &e.FlaggedRows, &e.DuplicateIDs,
			&e.NullTitles, &e.ValidationPassed, &errText); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Error = domain.Deref(errText)
		out = append(out, e)
	}

	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}
