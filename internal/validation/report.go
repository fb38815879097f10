package validation

import (
	"fmt"
	"strings"
)

// Violation is one failed constraint on one field of one row.
type Violation struct {
	RowID      int64
	Position   int
	Field      string
	Constraint Constraint
	Detail     string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s [%s]", v.Field, v.Detail, v.Constraint)
}

// Report collects every violation found in a batch, in row then rule order.
// A nil *Report is an empty report.
type Report struct {
	Schema     string
	violations []Violation
	byRow      map[int64][]int
	rows       []int64
}

func newReport(schema string) *Report {
	return &Report{Schema: schema, byRow: make(map[int64][]int)}
}

func (r *Report) add(v Violation) {
	if _, seen := r.byRow[v.RowID]; !seen {
		r.rows = append(r.rows, v.RowID)
	}
	r.byRow[v.RowID] = append(r.byRow[v.RowID], len(r.violations))
	r.violations = append(r.violations, v)
}

// Empty reports whether the batch was fully valid.
func (r *Report) Empty() bool {
	return r == nil || len(r.violations) == 0
}

// Len returns the number of violations.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.violations)
}

// Violations returns a copy of all violations.
func (r *Report) Violations() []Violation {
	if r == nil {
		return nil
	}
	out := make([]Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// RowIDs returns the distinct failing staging ids in first-seen order.
func (r *Report) RowIDs() []int64 {
	if r == nil {
		return nil
	}
	out := make([]int64, len(r.rows))
	copy(out, r.rows)
	return out
}

// FailedRows returns the number of distinct failing rows.
func (r *Report) FailedRows() int {
	if r == nil {
		return 0
	}
	return len(r.rows)
}

// HasRow reports whether the staging id has at least one violation.
func (r *Report) HasRow(id int64) bool {
	if r == nil {
		return false
	}
	_, ok := r.byRow[id]
	return ok
}

// ForRow returns the violations of one row.
func (r *Report) ForRow(id int64) []Violation {
	if r == nil {
		return nil
	}
	idx := r.byRow[id]
	out := make([]Violation, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.violations[i])
	}
	return out
}

// Summary joins every violation of a row into one deterministic line.
func (r *Report) Summary(id int64) string {
	vs := r.ForRow(id)
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// CountByConstraint tallies violations per constraint kind.
func (r *Report) CountByConstraint() map[Constraint]int {
	out := make(map[Constraint]int)
	if r == nil {
		return out
	}
	for _, v := range r.violations {
		out[v.Constraint]++
	}
	return out
}

func (r *Report) String() string {
	if r.Empty() {
		return "no violations"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d violation(s) in %d row(s):\n", len(r.violations), len(r.rows)))
	for _, id := range r.rows {
		sb.WriteString(fmt.Sprintf("  - row %d: %s\n", id, r.Summary(id)))
	}
	return sb.String()
}
