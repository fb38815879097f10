package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/ports"
)

const (
	gfgDateLayout     = "2 Jan, 2006"
	stagingDateLayout = "2006-01-02 15:04:05"
)

var gfgRequiredHeaders = []string{"title", "link"}

// GFGCSVLoader stages a GeeksforGeeks CSV export into stg_gfg_articles.
type GFGCSVLoader struct {
	writer ports.StagingWriter
	logger *slog.Logger
}

// NewGFGCSVLoader wires the staging writer.
func NewGFGCSVLoader(writer ports.StagingWriter, log *slog.Logger) *GFGCSVLoader {
	return &GFGCSVLoader{writer: writer, logger: log}
}

// LoadFile opens path and stages every row it contains.
func (l *GFGCSVLoader) LoadFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open gfg csv: %w", err)
	}
	defer f.Close()

	return l.Load(ctx, f)
}

// Load parses r and inserts the rows into staging.
func (l *GFGCSVLoader) Load(ctx context.Context, r io.Reader) (int, error) {
	if l.writer == nil {
		return 0, fmt.Errorf("staging writer is not configured")
	}

	rows, err := ParseGFGCSV(r)
	if err != nil {
		return 0, err
	}
	l.debug("gfg csv parsed", "rows", len(rows))

	n, err := l.writer.InsertGFG(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("stage gfg rows: %w", err)
	}
	l.debug("gfg rows staged", "rows", n)
	return n, nil
}

// ParseGFGCSV decodes the export into staging records. Columns are located by header name;
// empty cells become nulls.
func ParseGFGCSV(r io.Reader) ([]domain.GFGRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("gfg csv: missing header")
		}
		return nil, fmt.Errorf("read gfg header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range gfgRequiredHeaders {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("gfg csv: missing column %q", name)
		}
	}

	cell := func(record []string, name string) *string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return nil
		}
		v := strings.TrimSpace(record[i])
		if v == "" {
			return nil
		}
		return &v
	}

	var out []domain.GFGRecord
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read gfg line %d: %w", line, err)
		}

		link := cell(record, "link")
		out = append(out, domain.GFGRecord{
			ArticleID:   articleIDFromLink(link),
			Title:       cell(record, "title"),
			AuthorID:    cell(record, "author_id"),
			LastUpdated: stagingDate(cell(record, "last_updated")),
			Link:        link,
			Category:    cell(record, "category"),
		})
	}
	return out, nil
}

// articleIDFromLink returns the last non-empty path segment of link.
func articleIDFromLink(link *string) *string {
	if link == nil {
		return nil
	}

	path := *link
	if u, err := url.Parse(*link); err == nil && u.Path != "" {
		path = u.Path
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return nil
	}
	return &last
}

// stagingDate rewrites "2 Jan, 2006" into the staging timestamp layout.
// Unparseable text is kept as-is so validation reports it.
func stagingDate(v *string) *string {
	if v == nil {
		return nil
	}
	t, err := time.Parse(gfgDateLayout, *v)
	if err != nil {
		return v
	}
	formatted := t.Format(stagingDateLayout)
	return &formatted
}

func (l *GFGCSVLoader) debug(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
