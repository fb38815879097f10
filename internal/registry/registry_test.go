package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/validation"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	gfg, err := Resolve(domain.SourceGFG)
	require.NoError(t, err)
	assert.Equal(t, domain.TableGFGStaging, gfg.Table)
	assert.Equal(t, "article_id", gfg.PrimaryKey)

	medium, err := ResolveName("medium")
	require.NoError(t, err)
	assert.Equal(t, domain.TableMediumStaging, medium.Table)

	_, err = ResolveName("reddit")
	assert.True(t, errors.Is(err, domain.ErrUnknownSource))

	_, err = Resolve(domain.Source(99))
	assert.True(t, errors.Is(err, domain.ErrUnknownSource))
}

func TestSchemaColumnsExistInLayout(t *testing.T) {
	t.Parallel()

	for _, src := range domain.AllSources() {
		schema, err := Resolve(src)
		require.NoError(t, err)
		for _, col := range schema.Columns() {
			assert.NoError(t, CheckColumn(schema.Table, col), "%s.%s", schema.Table, col)
		}
	}
}

func TestCheckColumn(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckColumn(domain.TableGFGStaging, "id"))
	assert.Error(t, CheckColumn(domain.TableGFGStaging, "id; DROP TABLE dim_articles"))
	assert.Error(t, CheckColumn("dim_articles", "id"))
}

func gfgRow(id int64, articleID, title, link string) domain.GFGRecord {
	return domain.GFGRecord{
		StagingMeta: domain.StagingMeta{ID: id},
		ArticleID:   domain.StringPtr(articleID),
		Title:       domain.StringPtr(title),
		Link:        domain.StringPtr(link),
	}
}

func TestGFGSchemaScenarios(t *testing.T) {
	t.Parallel()

	schema, err := Resolve(domain.SourceGFG)
	require.NoError(t, err)

	t.Run("clean row", func(t *testing.T) {
		report, err := validation.Validate([]domain.GFGRecord{gfgRow(1, "A1", "Valid Title Here", "https://x.com/a")}, schema)
		require.NoError(t, err)
		assert.True(t, report.Empty(), report.String())
	})

	t.Run("malformed link", func(t *testing.T) {
		report, err := validation.Validate([]domain.GFGRecord{gfgRow(2, "A2", "Also Valid Title", "not-a-url")}, schema)
		require.NoError(t, err)
		require.Equal(t, 1, report.Len())
		v := report.Violations()[0]
		assert.Equal(t, "link", v.Field)
		assert.Equal(t, validation.ConstraintURL, v.Constraint)
	})

	t.Run("multi violation row", func(t *testing.T) {
		report, err := validation.Validate([]domain.GFGRecord{gfgRow(3, "A3", "Tiny", "ftp://x")}, schema)
		require.NoError(t, err)
		assert.Equal(t, 1, report.FailedRows())
		summary := report.Summary(3)
		assert.Contains(t, summary, "title:")
		assert.Contains(t, summary, "link:")
	})

	t.Run("optional fields", func(t *testing.T) {
		row := gfgRow(4, "A4", "Optional Fields Row", "https://www.geeksforgeeks.org/a4/")
		row.AuthorID = domain.StringPtr("Bad Author!")
		row.LastUpdated = domain.StringPtr("12 Mar, 2021")
		row.Category = domain.StringPtr("expert")

		report, err := validation.Validate([]domain.GFGRecord{row}, schema)
		require.NoError(t, err)
		counts := report.CountByConstraint()
		assert.Equal(t, 1, counts[validation.ConstraintPattern])
		assert.Equal(t, 1, counts[validation.ConstraintDateFormat])
		assert.Equal(t, 1, counts[validation.ConstraintOneOf])

		row.AuthorID = domain.StringPtr("jdoe42")
		row.LastUpdated = domain.StringPtr("2021-03-12 00:00:00")
		row.Category = domain.StringPtr("easy")
		report, err = validation.Validate([]domain.GFGRecord{row}, schema)
		require.NoError(t, err)
		assert.True(t, report.Empty(), report.String())
	})

	t.Run("last_updated needs a time of day", func(t *testing.T) {
		row := gfgRow(5, "A5", "Date Only Timestamp", "https://www.geeksforgeeks.org/a5/")
		row.LastUpdated = domain.StringPtr("2021-03-12")

		report, err := validation.Validate([]domain.GFGRecord{row}, schema)
		require.NoError(t, err)
		require.Equal(t, 1, report.FailedRows())
		assert.Equal(t, 1, report.CountByConstraint()[validation.ConstraintDateFormat])
	})
}

func TestMediumSchema(t *testing.T) {
	t.Parallel()

	schema, err := Resolve(domain.SourceMedium)
	require.NoError(t, err)

	good := domain.MediumRecord{
		StagingMeta: domain.StagingMeta{ID: 1},
		IDRSS:       domain.StringPtr("https://medium.com/p/abc123"),
		Title:       domain.StringPtr("Data Contracts in Practice"),
		Link:        domain.StringPtr("https://medium.com/@x/data-contracts-abc123"),
		Published:   domain.StringPtr("Wed, 08 Oct 2025 14:03:12 GMT"),
		Tags:        domain.NewTerms("term", "data-quality"),
		Authors:     domain.NewTerms("name", "Jane Doe"),
	}

	bad := good
	bad.ID = 2
	bad.Published = domain.StringPtr("2025-10-08")
	bad.Tags = domain.ParseTerms(domain.StringPtr(`{"term":"x"}`), "term")
	bad.Summary = domain.StringPtr(strings.Repeat("s", 20001))

	report, err := validation.Validate([]domain.MediumRecord{good, bad}, schema)
	require.NoError(t, err)
	assert.False(t, report.HasRow(1), report.String())
	assert.Len(t, report.ForRow(2), 3)
}
