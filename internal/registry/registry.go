// Package registry resolves the validation schema of each staging source.
package registry

import (
	"fmt"
	"slices"
	"time"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/validation"
)

// Schemas are built once at package init and never mutated.
var (
	gfgSchema    = buildGFG()
	mediumSchema = buildMedium()
)

// Resolve returns the schema registered for source.
func Resolve(source domain.Source) (validation.Schema, error) {
	switch source {
	case domain.SourceGFG:
		return gfgSchema, nil
	case domain.SourceMedium:
		return mediumSchema, nil
	default:
		return validation.Schema{}, &domain.UnknownSourceError{Name: source.String()}
	}
}

// ResolveName resolves a configured source name.
func ResolveName(name string) (validation.Schema, error) {
	source, err := domain.ParseSource(name)
	if err != nil {
		return validation.Schema{}, err
	}
	return Resolve(source)
}

// SourceForTable maps a staging table name back to its source.
func SourceForTable(table string) (domain.Source, error) {
	for _, s := range domain.AllSources() {
		if s.StagingTable() == table {
			return s, nil
		}
	}
	return 0, &domain.UnknownSourceError{Name: table}
}

// CheckColumn verifies that column belongs to the staging layout of table.
// Table and column names are interpolated into SQL, so only known identifiers pass.
func CheckColumn(table, column string) error {
	source, err := SourceForTable(table)
	if err != nil {
		return err
	}
	if !slices.Contains(source.StagingColumns(), column) {
		return fmt.Errorf("column %q is not part of %s", column, table)
	}
	return nil
}

func buildGFG() validation.Schema {
	return validation.Schema{
		Name:       "gfg_articles",
		Table:      domain.TableGFGStaging,
		PrimaryKey: domain.SourceGFG.BusinessKey(),
		Rules: []validation.FieldRule{
			validation.Field("article_id").Required().Build(),
			validation.Field("title").Required().Length(6, 199).Build(),
			validation.Field("author_id").Pattern(`^[a-z0-9]+$`, "lowercase alphanumeric").Build(),
			validation.Field("last_updated").Date("2006-01-02 15:04:05").Build(),
			validation.Field("link").Required().URL().Build(),
			validation.Field("category").OneOf("easy", "medium", "hard").Build(),
		},
	}
}

func buildMedium() validation.Schema {
	return validation.Schema{
		Name:       "medium_articles",
		Table:      domain.TableMediumStaging,
		PrimaryKey: domain.SourceMedium.BusinessKey(),
		Rules: []validation.FieldRule{
			validation.Field("id_rss").Required().Build(),
			validation.Field("title").Required().Length(6, 199).Build(),
			validation.Field("summary").MaxLength(20000).Build(),
			validation.Field("link").Required().URL().Build(),
			validation.Field("published").Date(time.RFC1123, time.RFC1123Z).Build(),
			validation.Field("tags").JSONArray().Build(),
			validation.Field("authors").JSONArray().Build(),
		},
	}
}
