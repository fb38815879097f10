package domain

import (
	"strconv"
	"time"
)

// StagingRecord is one typed row read from a source's staging table.
type StagingRecord interface {
	StagingID() int64
	// Value returns the column value; ok is false when the column is not part of the layout.
	Value(column string) (value *string, ok bool)
	ColumnCount() int
}

// StagingMeta carries the columns every staging table has.
type StagingMeta struct {
	ID         int64
	Processed  bool
	IngestedAt time.Time
}

// StagingID returns the surrogate key.
func (m StagingMeta) StagingID() int64 {
	return m.ID
}

func (m StagingMeta) metaValue(column string) (*string, bool) {
	switch column {
	case StagingIDColumn:
		id := strconv.FormatInt(m.ID, 10)
		return &id, true
	case "ingested_at":
		if m.IngestedAt.IsZero() {
			return nil, true
		}
		ts := m.IngestedAt.UTC().Format(time.RFC3339)
		return &ts, true
	case "processed":
		p := strconv.FormatBool(m.Processed)
		return &p, true
	default:
		return nil, false
	}
}

var gfgColumns = []string{"article_id", "title", "author_id", "last_updated", "link", "category"}

// GFGRecord is a GeeksforGeeks staging row.
type GFGRecord struct {
	StagingMeta
	ArticleID   *string
	Title       *string
	AuthorID    *string
	LastUpdated *string
	Link        *string
	Category    *string
}

var _ StagingRecord = GFGRecord{}

// Value implements StagingRecord.
func (r GFGRecord) Value(column string) (*string, bool) {
	switch column {
	case "article_id":
		return r.ArticleID, true
	case "title":
		return r.Title, true
	case "author_id":
		return r.AuthorID, true
	case "last_updated":
		return r.LastUpdated, true
	case "link":
		return r.Link, true
	case "category":
		return r.Category, true
	default:
		return r.metaValue(column)
	}
}

// ColumnCount implements StagingRecord.
func (r GFGRecord) ColumnCount() int {
	return len(metaColumns()) + len(gfgColumns)
}

var mediumColumns = []string{"id_rss", "title", "summary", "link", "published", "tags", "authors"}

// MediumRecord is a Medium RSS staging row.
type MediumRecord struct {
	StagingMeta
	IDRSS     *string
	Title     *string
	Summary   *string
	Link      *string
	Published *string
	Tags      Terms
	Authors   Terms
}

var _ StagingRecord = MediumRecord{}

// Value implements StagingRecord. Tags and authors expose their serialized form.
func (r MediumRecord) Value(column string) (*string, bool) {
	switch column {
	case "id_rss":
		return r.IDRSS, true
	case "title":
		return r.Title, true
	case "summary":
		return r.Summary, true
	case "link":
		return r.Link, true
	case "published":
		return r.Published, true
	case "tags":
		return r.Tags.Raw, true
	case "authors":
		return r.Authors.Raw, true
	default:
		return r.metaValue(column)
	}
}

// ColumnCount implements StagingRecord.
func (r MediumRecord) ColumnCount() int {
	return len(metaColumns()) + len(mediumColumns)
}

// Records widens a typed batch to the interface slice used by the quarantine writer.
func Records[R StagingRecord](batch []R) []StagingRecord {
	out := make([]StagingRecord, len(batch))
	for i, r := range batch {
		out[i] = r
	}
	return out
}

// StagingIDs collects the surrogate keys of a batch in order.
func StagingIDs[R StagingRecord](batch []R) []int64 {
	ids := make([]int64, len(batch))
	for i, r := range batch {
		ids[i] = r.StagingID()
	}
	return ids
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed value or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
