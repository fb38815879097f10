package validation

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"ArticlesHarmonizer/internal/domain"
)

var formats = validator.New()

// Validate applies schema to every record of batch and collects all violations.
// Violations never produce an error; the error return is reserved for structural defects
// (a schema column missing from the record layout, duplicate staging ids).
func Validate[R domain.StagingRecord](batch []R, schema Schema) (*Report, error) {
	report := newReport(schema.Name)
	seen := make(map[int64]int, len(batch))

	for pos, rec := range batch {
		id := rec.StagingID()
		if first, dup := seen[id]; dup {
			return nil, &domain.StructuralError{
				Schema: schema.Name,
				Row:    pos,
				Reason: fmt.Sprintf("staging id %d repeats row %d", id, first),
			}
		}
		seen[id] = pos

		for _, rule := range schema.Rules {
			value, ok := rec.Value(rule.Column)
			if !ok {
				return nil, &domain.StructuralError{
					Schema: schema.Name,
					Row:    pos,
					Reason: fmt.Sprintf("missing column %q", rule.Column),
				}
			}
			for _, f := range checkField(rule, value) {
				report.add(Violation{
					RowID:      id,
					Position:   pos,
					Field:      rule.Column,
					Constraint: f.constraint,
					Detail:     f.detail,
				})
			}
		}
	}

	return report, nil
}

type failure struct {
	constraint Constraint
	detail     string
}

// checkField evaluates every constraint of rule. Null values only answer to Required.
func checkField(rule FieldRule, value *string) []failure {
	if value == nil {
		if rule.Required {
			return []failure{{ConstraintRequired, "value is required"}}
		}
		return nil
	}

	var out []failure
	v := *value

	if rule.Required && strings.TrimSpace(v) == "" {
		out = append(out, failure{ConstraintRequired, "value is required"})
	}

	length := utf8.RuneCountInString(v)
	if rule.MinLength > 0 && length < rule.MinLength {
		out = append(out, failure{ConstraintMinLength, lengthDetail(rule, length)})
	}
	if rule.MaxLength > 0 && length > rule.MaxLength {
		out = append(out, failure{ConstraintMaxLength, lengthDetail(rule, length)})
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(v) {
		out = append(out, failure{ConstraintPattern,
			fmt.Sprintf("value %q does not match %s", clip(v), patternName(rule))})
	}

	if rule.URL && formats.Var(v, "http_url") != nil {
		out = append(out, failure{ConstraintURL,
			fmt.Sprintf("value %q is not an absolute http(s) URL", clip(v))})
	}

	if len(rule.DateLayouts) > 0 && !parsesWithAny(v, rule.DateLayouts) {
		out = append(out, failure{ConstraintDateFormat,
			fmt.Sprintf("value %q does not match date layout %s", clip(v), strings.Join(rule.DateLayouts, " | "))})
	}

	if rule.JSONArray && !isJSONArray(v) {
		out = append(out, failure{ConstraintJSONArray, "value is not a JSON array"})
	}

	if len(rule.OneOf) > 0 && !slices.Contains(rule.OneOf, v) {
		out = append(out, failure{ConstraintOneOf,
			fmt.Sprintf("value %q not in [%s]", clip(v), strings.Join(rule.OneOf, ", "))})
	}

	return out
}

func lengthDetail(rule FieldRule, got int) string {
	switch {
	case rule.MinLength > 0 && rule.MaxLength > 0:
		return fmt.Sprintf("length %d must be between %d and %d", got, rule.MinLength, rule.MaxLength)
	case rule.MaxLength > 0:
		return fmt.Sprintf("length %d must be at most %d", got, rule.MaxLength)
	default:
		return fmt.Sprintf("length %d must be at least %d", got, rule.MinLength)
	}
}

func patternName(rule FieldRule) string {
	if rule.PatternDesc != "" {
		return rule.PatternDesc
	}
	return rule.Pattern.String()
}

func parsesWithAny(v string, layouts []string) bool {
	for _, layout := range layouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func isJSONArray(v string) bool {
	trimmed := strings.TrimSpace(v)
	if !strings.HasPrefix(trimmed, "[") {
		return false
	}
	return json.Valid([]byte(trimmed))
}

// clip keeps diagnostics short for oversized values.
func clip(v string) string {
	const limit = 80
	if utf8.RuneCountInString(v) <= limit {
		return v
	}
	r := []rune(v)
	return string(r[:limit]) + "..."
}
