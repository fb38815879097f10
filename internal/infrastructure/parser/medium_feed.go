package parser

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ArticlesHarmonizer/internal/config"
	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/ports"
)

const (
	tagsKey    = "term"
	authorsKey = "name"
)

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category"`
	Creators    []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Description string   `xml:"description"`
	Content     string   `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
}

// MediumFeedLoader fetches the configured Medium RSS feeds and stages their items.
type MediumFeedLoader struct {
	client *http.Client
	writer ports.StagingWriter
	feeds  []config.FeedConfig
	logger *slog.Logger
}

// NewMediumFeedLoader wires an HTTP client; a nil client gets a 20s timeout.
func NewMediumFeedLoader(client *http.Client, writer ports.StagingWriter, feeds []config.FeedConfig, log *slog.Logger) *MediumFeedLoader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &MediumFeedLoader{
		client: client,
		writer: writer,
		feeds:  feeds,
		logger: log,
	}
}

// Load fetches every feed in order and stages its items. A failing feed aborts the load;
// feeds staged before it stay staged.
func (m *MediumFeedLoader) Load(ctx context.Context) (int, error) {
	if m.writer == nil {
		return 0, fmt.Errorf("staging writer is not configured")
	}

	m.debug("load medium feeds", "feeds", len(m.feeds))

	total := 0
	for _, feed := range m.feeds {
		rows, err := m.Fetch(ctx, feed.URL)
		if err != nil {
			return total, fmt.Errorf("feed %s: %w", feed.Name, err)
		}

		n, err := m.writer.InsertMedium(ctx, rows)
		if err != nil {
			return total, fmt.Errorf("stage feed %s: %w", feed.Name, err)
		}
		m.debug("feed staged", "feed", feed.Name, "items", n)
		total += n
	}

	return total, nil
}

// Fetch downloads one feed and converts its items into staging records.
func (m *MediumFeedLoader) Fetch(ctx context.Context, feedURL string) ([]domain.MediumRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ArticlesHarmonizer/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	var doc rssDocument
	decoder := xml.NewDecoder(resp.Body)
	decoder.Strict = false
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	return mediumRecords(doc.Channel.Items), nil
}

// mediumRecords converts items and drops repeated (link, guid) pairs, keeping the last one.
func mediumRecords(items []rssItem) []domain.MediumRecord {
	type key struct{ link, id string }

	position := make(map[key]int, len(items))
	out := make([]domain.MediumRecord, 0, len(items))
	for _, item := range items {
		rec := mediumRecord(item)
		k := key{link: domain.Deref(rec.Link), id: domain.Deref(rec.IDRSS)}
		if i, ok := position[k]; ok {
			out[i] = rec
			continue
		}
		position[k] = len(out)
		out = append(out, rec)
	}
	return out
}

func mediumRecord(item rssItem) domain.MediumRecord {
	summary := item.Description
	if strings.TrimSpace(summary) == "" {
		summary = item.Content
	}

	return domain.MediumRecord{
		IDRSS:     nonEmpty(item.GUID),
		Title:     nonEmpty(item.Title),
		Summary:   nonEmpty(plainText(summary)),
		Link:      nonEmpty(item.Link),
		Published: nonEmpty(item.PubDate),
		Tags:      domain.NewTerms(tagsKey, trimAll(item.Categories)...),
		Authors:   domain.NewTerms(authorsKey, trimAll(item.Creators)...),
	}
}

// plainText strips markup and collapses whitespace. Text that fails to parse is returned trimmed.
func plainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	doc.Find("script, style, figure").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonEmpty(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func (m *MediumFeedLoader) debug(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
