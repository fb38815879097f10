package storage

import (
	"context"
	"database/sql"
	"fmt"

	"ArticlesHarmonizer/internal/domain"
)

// DimensionStats aggregates dim_articles for monitoring.
func (s *Store) DimensionStats(ctx context.Context) (domain.DimensionStats, error) {
	stats := domain.DimensionStats{ByPlatform: map[domain.Platform]int64{}}

	row, err := s.queryRow(ctx, s.sb.Select("COUNT(*)", "MIN(pub_date)", "MAX(pub_date)").From("dim_articles"))
	if err != nil {
		return stats, err
	}
	var earliest, latest sql.NullString
	if err := row.Scan(&stats.Total, &earliest, &latest); err != nil {
		return stats, fmt.Errorf("scan dimension totals: %w", err)
	}
	stats.EarliestPub = fromNull(earliest)
	stats.LatestPub = fromNull(latest)

	rows, err := s.query(ctx, s.sb.Select("source_platform", "COUNT(*)").
		From("dim_articles").
		GroupBy("source_platform").
		OrderBy("source_platform"))
	if err != nil {
		return stats, fmt.Errorf("query platform counts: %w", err)
	}
	for rows.Next() {
		var (
			platform string
			count    int64
		)
		if err := rows.Scan(&platform, &count); err != nil {
			_ = rows.Close()
			return stats, fmt.Errorf("scan platform count: %w", err)
		}
		stats.ByPlatform[domain.Platform(platform)] = count
	}
	if err := closeRows(rows); err != nil {
		return stats, err
	}

	return stats, nil
}

// QuarantineStats counts quarantined rows per source table.
func (s *Store) QuarantineStats(ctx context.Context) ([]domain.QuarantineStat, error) {
	rows, err := s.query(ctx, s.sb.Select("source_table", "COUNT(*)", "MAX(quarantine_timestamp)").
		From("dq_quarantine").
		GroupBy("source_table").
		OrderBy("source_table"))
	if err != nil {
		return nil, fmt.Errorf("query quarantine stats: %w", err)
	}

	var out []domain.QuarantineStat
	for rows.Next() {
		var (
			stat   domain.QuarantineStat
			lastAt any
		)
		if err := rows.Scan(&stat.SourceTable, &stat.Count, &lastAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan quarantine stats: %w", err)
		}
		if stat.LastAt, err = scanTime(lastAt); err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, stat)
	}

	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}
