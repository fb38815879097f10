package domain

import "time"

// DimensionArticle is the canonical, source-independent article row in dim_articles.
type DimensionArticle struct {
	ID             int64
	ArticleID      string
	SourcePlatform Platform
	Title          string
	Author         *string
	PubDate        *string
	Link           string
	Category       *string
	IsValid        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// QuarantineRecord persists one staging row that failed validation.
type QuarantineRecord struct {
	ID              int64
	SourceTable     string
	PKColumn        string
	PKValue         string
	TotalColumns    int
	ValidationError string
	QuarantinedAt   time.Time
}

// DimensionStats summarizes dim_articles for monitoring.
type DimensionStats struct {
	Total       int64              `json:"total"`
	ByPlatform  map[Platform]int64 `json:"by_platform"`
	EarliestPub *string            `json:"earliest_pub,omitempty"`
	LatestPub   *string            `json:"latest_pub,omitempty"`
}

// QuarantineStat counts quarantined rows per staging table.
type QuarantineStat struct {
	SourceTable string     `json:"source_table"`
	Count       int64      `json:"count"`
	LastAt      *time.Time `json:"last_at,omitempty"`
}
