package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ArticlesHarmonizer/internal/domain"
)

type recordingWriter struct {
	gfg    []domain.GFGRecord
	medium []domain.MediumRecord
	err    error
}

func (w *recordingWriter) InsertGFG(_ context.Context, rows []domain.GFGRecord) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.gfg = append(w.gfg, rows...)
	return len(rows), nil
}

func (w *recordingWriter) InsertMedium(_ context.Context, rows []domain.MediumRecord) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.medium = append(w.medium, rows...)
	return len(rows), nil
}

const gfgExport = `title,author_id,last_updated,link,category
Understanding Bloom Filters,anjalibo6rb,"5 Jun, 2023",https://www.geeksforgeeks.org/bloom-filters-introduction/,medium
Graph Traversal Basics,,"soon",https://www.geeksforgeeks.org/graph-traversal-basics/,
`

func TestParseGFGCSV(t *testing.T) {
	t.Parallel()

	rows, err := ParseGFGCSV(strings.NewReader(gfgExport))
	if err != nil {
		t.Fatalf("ParseGFGCSV error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if got := domain.Deref(first.ArticleID); got != "bloom-filters-introduction" {
		t.Fatalf("unexpected article id: %s", got)
	}
	if got := domain.Deref(first.LastUpdated); got != "2023-06-05 00:00:00" {
		t.Fatalf("unexpected last_updated: %s", got)
	}
	if got := domain.Deref(first.Category); got != "medium" {
		t.Fatalf("unexpected category: %s", got)
	}

	second := rows[1]
	if second.AuthorID != nil {
		t.Fatalf("expected null author, got %q", *second.AuthorID)
	}
	if got := domain.Deref(second.LastUpdated); got != "soon" {
		t.Fatalf("unparseable date must be kept verbatim, got %q", got)
	}
	if second.Category != nil {
		t.Fatalf("expected null category, got %q", *second.Category)
	}
}

func TestParseGFGCSVMissingColumn(t *testing.T) {
	t.Parallel()

	if _, err := ParseGFGCSV(strings.NewReader("title,author_id\nx,y\n")); err == nil {
		t.Fatal("expected error for missing link column")
	}
	if _, err := ParseGFGCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestArticleIDFromLink(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://www.geeksforgeeks.org/bloom-filters-introduction/": "bloom-filters-introduction",
		"https://www.geeksforgeeks.org/python/list-methods":         "list-methods",
		"https://www.geeksforgeeks.org/a/b/?ref=lbp":                "b",
	}
	for link, want := range cases {
		got := articleIDFromLink(&link)
		if domain.Deref(got) != want {
			t.Fatalf("articleIDFromLink(%q) = %q, want %q", link, domain.Deref(got), want)
		}
	}
	if articleIDFromLink(nil) != nil {
		t.Fatal("expected nil for null link")
	}
}

func TestGFGCSVLoaderStagesRows(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{}
	loader := NewGFGCSVLoader(writer, nil)

	n, err := loader.Load(context.Background(), strings.NewReader(gfgExport))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if n != 2 || len(writer.gfg) != 2 {
		t.Fatalf("expected 2 staged rows, got n=%d staged=%d", n, len(writer.gfg))
	}
}

func TestGFGCSVLoaderWriterFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	loader := NewGFGCSVLoader(&recordingWriter{err: boom}, nil)

	_, err := loader.Load(context.Background(), strings.NewReader(gfgExport))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}
