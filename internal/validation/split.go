package validation

import "ArticlesHarmonizer/internal/domain"

// Split partitions batch into rows without violations and rows with at least one.
// Both partitions keep batch order. An empty report returns batch unchanged.
func Split[R domain.StagingRecord](batch []R, report *Report) (clean, failed []R) {
	if report.Empty() {
		return batch, nil
	}

	clean = make([]R, 0, len(batch))
	failed = make([]R, 0, report.FailedRows())
	for _, rec := range batch {
		if report.HasRow(rec.StagingID()) {
			failed = append(failed, rec)
			continue
		}
		clean = append(clean, rec)
	}
	return clean, failed
}

// NullCount counts rows whose value in column is null.
func NullCount[R domain.StagingRecord](batch []R, column string) int {
	n := 0
	for _, rec := range batch {
		if v, ok := rec.Value(column); ok && v == nil {
			n++
		}
	}
	return n
}

// DuplicateKeys counts rows whose value in column repeats an earlier row's.
// Null values are not counted.
func DuplicateKeys[R domain.StagingRecord](batch []R, column string) int {
	seen := make(map[string]struct{}, len(batch))
	dupes := 0
	for _, rec := range batch {
		v, ok := rec.Value(column)
		if !ok || v == nil {
			continue
		}
		if _, exists := seen[*v]; exists {
			dupes++
			continue
		}
		seen[*v] = struct{}{}
	}
	return dupes
}
