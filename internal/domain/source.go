package domain

import "strings"

// Source enumerates the upstream platforms that feed staging tables.
type Source int

const (
	SourceGFG Source = iota + 1
	SourceMedium
)

// Platform is the tag stored in dim_articles.source_platform.
type Platform string

const (
	PlatformGFG    Platform = "GFG"
	PlatformMedium Platform = "Medium"
)

// Staging table names.
const (
	TableGFGStaging    = "stg_gfg_articles"
	TableMediumStaging = "stg_medium_articles"
)

// StagingIDColumn is the surrogate key column shared by every staging table.
const StagingIDColumn = "id"

// AllSources lists the known sources in processing order.
func AllSources() []Source {
	return []Source{SourceGFG, SourceMedium}
}

// ParseSource resolves a configured source name ("gfg", "medium") to its enum value.
func ParseSource(name string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gfg", "geeksforgeeks", TableGFGStaging:
		return SourceGFG, nil
	case "medium", TableMediumStaging:
		return SourceMedium, nil
	default:
		return 0, &UnknownSourceError{Name: name}
	}
}

// String returns the short configuration name.
func (s Source) String() string {
	switch s {
	case SourceGFG:
		return "gfg"
	case SourceMedium:
		return "medium"
	default:
		return "unknown"
	}
}

// Platform returns the dimensional platform tag.
func (s Source) Platform() Platform {
	switch s {
	case SourceGFG:
		return PlatformGFG
	case SourceMedium:
		return PlatformMedium
	default:
		return ""
	}
}

// StagingTable returns the staging table holding rows of this source.
func (s Source) StagingTable() string {
	switch s {
	case SourceGFG:
		return TableGFGStaging
	case SourceMedium:
		return TableMediumStaging
	default:
		return ""
	}
}

// BusinessKey returns the staging column that maps onto dim_articles.article_id.
func (s Source) BusinessKey() string {
	switch s {
	case SourceGFG:
		return "article_id"
	case SourceMedium:
		return "id_rss"
	default:
		return ""
	}
}

// StagingColumns returns the full staging layout, metadata columns first.
func (s Source) StagingColumns() []string {
	switch s {
	case SourceGFG:
		return append(metaColumns(), gfgColumns...)
	case SourceMedium:
		return append(metaColumns(), mediumColumns...)
	default:
		return nil
	}
}

func metaColumns() []string {
	return []string{StagingIDColumn, "ingested_at", "processed"}
}
