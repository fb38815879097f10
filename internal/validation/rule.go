package validation

import "regexp"

// Constraint names a kind of field check.
type Constraint string

const (
	ConstraintRequired   Constraint = "required"
	ConstraintMinLength  Constraint = "min_length"
	ConstraintMaxLength  Constraint = "max_length"
	ConstraintPattern    Constraint = "pattern"
	ConstraintURL        Constraint = "url"
	ConstraintDateFormat Constraint = "date_format"
	ConstraintJSONArray  Constraint = "json_array"
	ConstraintOneOf      Constraint = "one_of"
)

// FieldRule declares every constraint applied to one staging column.
type FieldRule struct {
	Column      string
	Required    bool
	MinLength   int
	MaxLength   int
	Pattern     *regexp.Regexp
	PatternDesc string
	URL         bool
	DateLayouts []string
	JSONArray   bool
	OneOf       []string
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for column. Columns are nullable unless Required is called.
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column}}
}

// Required rejects null and blank values.
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// MinLength sets the minimum length in characters.
func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

// MaxLength sets the maximum length in characters.
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Length sets both bounds.
func (b *FieldRuleBuilder) Length(min, max int) *FieldRuleBuilder {
	b.rule.MinLength = min
	b.rule.MaxLength = max
	return b
}

// Pattern requires the value to match pattern; description is used in diagnostics.
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// URL requires an absolute http or https URL.
func (b *FieldRuleBuilder) URL() *FieldRuleBuilder {
	b.rule.URL = true
	return b
}

// Date requires the value to parse with one of the given time layouts.
func (b *FieldRuleBuilder) Date(layouts ...string) *FieldRuleBuilder {
	b.rule.DateLayouts = layouts
	return b
}

// JSONArray requires the value to be a serialized JSON array.
func (b *FieldRuleBuilder) JSONArray() *FieldRuleBuilder {
	b.rule.JSONArray = true
	return b
}

// OneOf restricts the value to a fixed set.
func (b *FieldRuleBuilder) OneOf(values ...string) *FieldRuleBuilder {
	b.rule.OneOf = values
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}
