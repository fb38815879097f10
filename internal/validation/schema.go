package validation

// Schema is the declarative validation contract of one staging table.
type Schema struct {
	Name       string
	Table      string
	PrimaryKey string
	Rules      []FieldRule
}

// Columns lists the validated columns in declaration order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		cols = append(cols, r.Column)
	}
	return cols
}

// Rule returns the rule declared for column.
func (s Schema) Rule(column string) (FieldRule, bool) {
	for _, r := range s.Rules {
		if r.Column == column {
			return r, true
		}
	}
	return FieldRule{}, false
}
