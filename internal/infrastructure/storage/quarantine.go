package storage

import (
	"context"
	"database/sql"
	"fmt"

	"ArticlesHarmonizer/internal/domain"
)

// InsertQuarantine persists every record or none of them.
func (s *Store) InsertQuarantine(ctx context.Context, records []domain.QuarantineRecord) error {
	if len(records) == 0 {
		return nil
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, r := range records {
			b := s.sb.Insert("dq_quarantine").
				Columns("source_table", "pk_column_name", "pk_value", "total_columns",
					"validation_error", "quarantine_timestamp").
				Values(r.SourceTable, r.PKColumn, r.PKValue, r.TotalColumns, r.ValidationError, r.QuarantinedAt.UTC())
			if _, err := execTx(ctx, tx, b); err != nil {
				return fmt.Errorf("insert quarantine %s=%s: %w", r.PKColumn, r.PKValue, err)
			}
		}
		return nil
	})
}

// QuarantineRecords lists quarantined rows of one source table, oldest first.
func (s *Store) QuarantineRecords(ctx context.Context, sourceTable string, limit uint64) ([]domain.QuarantineRecord, error) {
	b := s.sb.Select("id", "source_table", "pk_column_name", "pk_value", "total_columns",
		"validation_error", "quarantine_timestamp").
		From("dq_quarantine").
		OrderBy("id")
	if sourceTable != "" {
		b = b.Where("source_table = ?", sourceTable)
	}
	if limit > 0 {
		b = b.Limit(limit)
	}

	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("query quarantine: %w", err)
	}

	var out []domain.QuarantineRecord
	for rows.Next() {
		var r domain.QuarantineRecord
		if err := rows.Scan(&r.ID, &r.SourceTable, &r.PKColumn, &r.PKValue, &r.TotalColumns,
			&r.ValidationError, &r.QuarantinedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan quarantine: %w", err)
		}
		out = append(out, r)
	}

	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}
