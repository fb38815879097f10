package domain

import "time"

// RunResult reports what one source run did with its batch.
type RunResult struct {
	RunID        string
	Source       Source
	Total        int
	Clean        int
	Failed       int
	Quarantined  int
	Integrated   int
	Flagged      int
	DuplicateIDs int
	NullTitles   int
	StartedAt    time.Time
	FinishedAt   time.Time
	Err          error
}

// Passed reports whether the whole batch validated and every step succeeded.
func (r RunResult) Passed() bool {
	return r.Err == nil && r.Failed == 0
}

// AuditEntry is one dq_audit_log row.
type AuditEntry struct {
	RunID            string
	SourceTable      string
	RunAt            time.Time
	TotalRows        int
	CleanRows        int
	QuarantinedRows  int
	IntegratedRows   int
	FlaggedRows      int
	DuplicateIDs     int
	NullTitles       int
	ValidationPassed bool
	Error            string
}

// AuditEntryFrom converts a run result into its audit row.
func AuditEntryFrom(r RunResult) AuditEntry {
	entry := AuditEntry{
		RunID:            r.RunID,
		SourceTable:      r.Source.StagingTable(),
		RunAt:            r.StartedAt,
		TotalRows:        r.Total,
		CleanRows:        r.Clean,
		QuarantinedRows:  r.Quarantined,
		IntegratedRows:   r.Integrated,
		FlaggedRows:      r.Flagged,
		DuplicateIDs:     r.DuplicateIDs,
		NullTitles:       r.NullTitles,
		ValidationPassed: r.Failed == 0,
	}
	if r.Err != nil {
		entry.Error = r.Err.Error()
	}
	return entry
}
