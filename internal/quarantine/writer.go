// Package quarantine persists rows that failed validation together with their diagnostics.
package quarantine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/ports"
	"ArticlesHarmonizer/internal/validation"
)

// MaxErrorLength bounds validation_error in runes.
const MaxErrorLength = 1000

// Writer turns a validation report into quarantine records.
type Writer struct {
	store  ports.QuarantineStore
	now    func() time.Time
	logger *slog.Logger
}

// NewWriter wires the quarantine store.
func NewWriter(store ports.QuarantineStore, log *slog.Logger) *Writer {
	return &Writer{store: store, now: time.Now, logger: log}
}

// WithClock overrides the timestamp source.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Quarantine writes one record per distinct failing row of report. Either every record is
// persisted or none is. The returned count equals report.FailedRows() on success.
func (w *Writer) Quarantine(ctx context.Context, failed []domain.StagingRecord, report *validation.Report, sourceTable, pkField string) (int, error) {
	if report.Empty() {
		return 0, nil
	}

	records, err := w.build(failed, report, sourceTable, pkField)
	if err != nil {
		return 0, &domain.QuarantineWriteError{Table: sourceTable, Rows: report.FailedRows(), Err: err}
	}

	if err := w.store.InsertQuarantine(ctx, records); err != nil {
		return 0, &domain.QuarantineWriteError{Table: sourceTable, Rows: len(records), Err: err}
	}

	w.debug("rows quarantined", "table", sourceTable, "rows", len(records), "violations", report.Len())
	return len(records), nil
}

func (w *Writer) build(failed []domain.StagingRecord, report *validation.Report, sourceTable, pkField string) ([]domain.QuarantineRecord, error) {
	byID := make(map[int64]domain.StagingRecord, len(failed))
	for _, rec := range failed {
		byID[rec.StagingID()] = rec
	}

	at := w.now().UTC()
	records := make([]domain.QuarantineRecord, 0, report.FailedRows())
	for _, id := range report.RowIDs() {
		rec, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("report row %d is not in the failed batch", id)
		}

		pk, ok := rec.Value(pkField)
		if !ok {
			return nil, fmt.Errorf("column %q is not part of %s", pkField, sourceTable)
		}
		pkValue := strconv.FormatInt(id, 10)
		if pk != nil {
			pkValue = *pk
		}

		records = append(records, domain.QuarantineRecord{
			SourceTable:     sourceTable,
			PKColumn:        pkField,
			PKValue:         pkValue,
			TotalColumns:    rec.ColumnCount(),
			ValidationError: truncate(report.Summary(id), MaxErrorLength),
			QuarantinedAt:   at,
		})
	}
	return records, nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func (w *Writer) debug(msg string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
