package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSource matches every UnknownSourceError.
	ErrUnknownSource = errors.New("unknown source")
	// ErrStructural matches every StructuralError.
	ErrStructural = errors.New("structural batch error")
	// ErrRunInProgress is returned when another pipeline run holds the lock.
	ErrRunInProgress = errors.New("pipeline run already in progress")
	// ErrExcessiveDuplicates aborts a source whose batch repeats too many business keys.
	ErrExcessiveDuplicates = errors.New("excessive duplicate business keys")
	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("not found")
)

// UnknownSourceError reports a source name with no registered schema.
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("no schema registered for source %q", e.Name)
}

func (e *UnknownSourceError) Is(target error) bool {
	return target == ErrUnknownSource
}

// StructuralError is a batch-level defect that prevents row validation.
type StructuralError struct {
	Schema string
	Row    int
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("schema %s, row %d: %s", e.Schema, e.Row, e.Reason)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// QuarantineWriteError wraps a storage failure while persisting quarantine rows.
type QuarantineWriteError struct {
	Table string
	Rows  int
	Err   error
}

func (e *QuarantineWriteError) Error() string {
	return fmt.Sprintf("quarantine %d rows from %s: %v", e.Rows, e.Table, e.Err)
}

func (e *QuarantineWriteError) Unwrap() error { return e.Err }

// IntegrationError wraps a mapping or storage failure during the dimensional upsert.
type IntegrationError struct {
	Source    Source
	ArticleID string
	Err       error
}

func (e *IntegrationError) Error() string {
	if e.ArticleID != "" {
		return fmt.Sprintf("integrate %s article %s: %v", e.Source, e.ArticleID, e.Err)
	}
	return fmt.Sprintf("integrate %s batch: %v", e.Source, e.Err)
}

func (e *IntegrationError) Unwrap() error { return e.Err }

// FlagUpdateError wraps a failure to mark integrated staging rows as processed.
type FlagUpdateError struct {
	Table string
	IDs   int
	Err   error
}

func (e *FlagUpdateError) Error() string {
	return fmt.Sprintf("mark %d rows processed in %s: %v", e.IDs, e.Table, e.Err)
}

func (e *FlagUpdateError) Unwrap() error { return e.Err }
