package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticlesHarmonizer/internal/domain"
)

type row struct {
	id     int64
	values map[string]*string
}

func (r row) StagingID() int64 { return r.id }

func (r row) Value(column string) (*string, bool) {
	v, ok := r.values[column]
	return v, ok
}

func (r row) ColumnCount() int { return len(r.values) + 1 }

func newRow(id int64, kv ...string) row {
	r := row{id: id, values: map[string]*string{"name": nil, "site": nil, "tags": nil, "day": nil, "kind": nil}}
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1]
		r.values[kv[i]] = &v
	}
	return r
}

func testSchema() Schema {
	return Schema{
		Name:       "test",
		Table:      "stg_test",
		PrimaryKey: "name",
		Rules: []FieldRule{
			Field("name").Required().Length(3, 10).Pattern(`^[a-z ]+$`, "lowercase words").Build(),
			Field("site").URL().Build(),
			Field("tags").JSONArray().Build(),
			Field("day").Date("2006-01-02").Build(),
			Field("kind").OneOf("a", "b").Build(),
		},
	}
}

func TestValidateCleanBatch(t *testing.T) {
	t.Parallel()

	batch := []row{
		newRow(1, "name", "alpha", "site", "https://example.com", "tags", `["x"]`, "day", "2024-05-01", "kind", "a"),
		newRow(2, "name", "beta"),
	}

	report, err := Validate(batch, testSchema())
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Equal(t, 0, report.Len())
	assert.Equal(t, "no violations", report.String())
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	t.Parallel()

	batch := []row{
		newRow(10, "name", "ok name"),
		newRow(11, "name", "X", "site", "example.com", "tags", `{"a":1}`, "day", "05/01/2024", "kind", "z"),
		newRow(12),
	}

	report, err := Validate(batch, testSchema())
	require.NoError(t, err)

	assert.Equal(t, []int64{11, 12}, report.RowIDs())
	assert.Equal(t, 2, report.FailedRows())
	assert.False(t, report.HasRow(10))

	counts := report.CountByConstraint()
	assert.Equal(t, 1, counts[ConstraintMinLength])
	assert.Equal(t, 1, counts[ConstraintPattern])
	assert.Equal(t, 1, counts[ConstraintURL])
	assert.Equal(t, 1, counts[ConstraintJSONArray])
	assert.Equal(t, 1, counts[ConstraintDateFormat])
	assert.Equal(t, 1, counts[ConstraintOneOf])
	assert.Equal(t, 1, counts[ConstraintRequired])

	for _, v := range report.ForRow(11) {
		assert.Equal(t, 1, v.Position)
	}
	require.Len(t, report.ForRow(12), 1)
	assert.Equal(t, "name", report.ForRow(12)[0].Field)
}

func TestValidateNullOnlyAnswersToRequired(t *testing.T) {
	t.Parallel()

	report, err := Validate([]row{newRow(1, "name", "fine")}, testSchema())
	require.NoError(t, err)
	assert.True(t, report.Empty(), "null optional fields must not fail format checks")
}

func TestValidateBlankRequired(t *testing.T) {
	t.Parallel()

	report, err := Validate([]row{newRow(1, "name", "  ")}, testSchema())
	require.NoError(t, err)
	counts := report.CountByConstraint()
	assert.Equal(t, 1, counts[ConstraintRequired])
	assert.Equal(t, 1, counts[ConstraintMinLength], "blank value still runs the remaining checks")
	assert.Equal(t, 2, report.Len())
}

func TestValidateCountsRunes(t *testing.T) {
	t.Parallel()

	schema := Schema{Name: "runes", Rules: []FieldRule{Field("name").MaxLength(3).Build()}}
	report, err := Validate([]row{newRow(1, "name", "äöü")}, schema)
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestValidateStructuralErrors(t *testing.T) {
	t.Parallel()

	t.Run("duplicate staging id", func(t *testing.T) {
		_, err := Validate([]row{newRow(1, "name", "abc"), newRow(1, "name", "def")}, testSchema())
		var structural *domain.StructuralError
		require.True(t, errors.As(err, &structural))
		assert.Equal(t, 1, structural.Row)
		assert.True(t, errors.Is(err, domain.ErrStructural))
	})

	t.Run("missing column", func(t *testing.T) {
		schema := testSchema()
		schema.Rules = append(schema.Rules, Field("absent").Build())
		_, err := Validate([]row{newRow(1, "name", "abc")}, schema)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "absent")
	})
}

func TestValidateEmptyBatch(t *testing.T) {
	t.Parallel()

	report, err := Validate([]row{}, testSchema())
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestSummaryIsDeterministic(t *testing.T) {
	t.Parallel()

	batch := []row{newRow(7, "name", "X", "kind", "q")}
	first, err := Validate(batch, testSchema())
	require.NoError(t, err)
	second, err := Validate(batch, testSchema())
	require.NoError(t, err)

	assert.Equal(t, first.Summary(7), second.Summary(7))
	parts := strings.Split(first.Summary(7), "; ")
	require.Len(t, parts, 3)
	assert.True(t, strings.HasPrefix(parts[0], "name: "))
	assert.True(t, strings.HasSuffix(parts[2], "[one_of]"))
}

func TestClip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", clip("short"))
	long := strings.Repeat("a", 100)
	assert.Equal(t, strings.Repeat("a", 80)+"...", clip(long))
}

func TestNilReport(t *testing.T) {
	t.Parallel()

	var r *Report
	assert.True(t, r.Empty())
	assert.Zero(t, r.Len())
	assert.Nil(t, r.RowIDs())
	assert.False(t, r.HasRow(1))
	assert.Empty(t, r.Summary(1))
	assert.Empty(t, r.CountByConstraint())
}
