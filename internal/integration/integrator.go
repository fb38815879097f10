// Package integration maps validated staging rows onto the canonical dim_articles model.
package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"ArticlesHarmonizer/internal/domain"
	"ArticlesHarmonizer/internal/ports"
)

// PubDateLayout is the canonical dim_articles.pub_date format.
const PubDateLayout = "2006-01-02"

var errMissingKey = errors.New("business key is empty")

// Mapper converts one clean staging row into a dimension article.
type Mapper[R domain.StagingRecord] func(R) (domain.DimensionArticle, error)

// Integrator upserts clean rows of one source into the dimension table.
type Integrator[R domain.StagingRecord] struct {
	source domain.Source
	store  ports.DimensionStore
	mapper Mapper[R]
	now    func() time.Time
	logger *slog.Logger
}

// New builds an integrator for an arbitrary source mapping.
func New[R domain.StagingRecord](source domain.Source, store ports.DimensionStore, mapper Mapper[R], log *slog.Logger) *Integrator[R] {
	return &Integrator[R]{
		source: source,
		store:  store,
		mapper: mapper,
		now:    time.Now,
		logger: log,
	}
}

// NewGFG integrates GeeksforGeeks rows.
func NewGFG(store ports.DimensionStore, log *slog.Logger) *Integrator[domain.GFGRecord] {
	return New(domain.SourceGFG, store, MapGFG, log)
}

// NewMedium integrates Medium rows.
func NewMedium(store ports.DimensionStore, log *slog.Logger) *Integrator[domain.MediumRecord] {
	return New(domain.SourceMedium, store, MapMedium, log)
}

// WithClock overrides the created_at/updated_at source.
func (i *Integrator[R]) WithClock(now func() time.Time) *Integrator[R] {
	i.now = now
	return i
}

// Integrate maps every row and upserts the batch in one transaction. Any mapping or store
// failure aborts the whole batch and is reported as *domain.IntegrationError.
func (i *Integrator[R]) Integrate(ctx context.Context, clean []R) (int, error) {
	if len(clean) == 0 {
		return 0, nil
	}

	at := i.now().UTC()
	articles := make([]domain.DimensionArticle, 0, len(clean))
	for _, rec := range clean {
		article, err := i.mapper(rec)
		if err != nil {
			return 0, &domain.IntegrationError{
				Source:    i.source,
				ArticleID: article.ArticleID,
				Err:       fmt.Errorf("map staging row %d: %w", rec.StagingID(), err),
			}
		}
		article.SourcePlatform = i.source.Platform()
		article.IsValid = true
		article.CreatedAt = at
		article.UpdatedAt = at
		articles = append(articles, article)
	}

	if err := i.store.UpsertArticles(ctx, articles); err != nil {
		return 0, &domain.IntegrationError{Source: i.source, Err: err}
	}

	i.debug("batch integrated", "source", i.source.String(), "rows", len(articles))
	return len(articles), nil
}

// MapGFG maps a GeeksforGeeks row; author is the author_id handle.
func MapGFG(r domain.GFGRecord) (domain.DimensionArticle, error) {
	article := domain.DimensionArticle{
		ArticleID: strings.TrimSpace(domain.Deref(r.ArticleID)),
		Title:     domain.Deref(r.Title),
		Author:    nonBlank(r.AuthorID),
		Link:      domain.Deref(r.Link),
		Category:  nonBlank(r.Category),
	}
	if article.ArticleID == "" {
		return article, errMissingKey
	}

	pub, err := NormalizeDate(r.LastUpdated)
	if err != nil {
		return article, err
	}
	article.PubDate = pub
	return article, nil
}

// MapMedium maps a Medium row; author and category take the first listed author and tag.
func MapMedium(r domain.MediumRecord) (domain.DimensionArticle, error) {
	article := domain.DimensionArticle{
		ArticleID: strings.TrimSpace(domain.Deref(r.IDRSS)),
		Title:     domain.Deref(r.Title),
		Author:    domain.FirstOf(r.Authors.Names),
		Link:      domain.Deref(r.Link),
		Category:  domain.FirstOf(r.Tags.Names),
	}
	if article.ArticleID == "" {
		return article, errMissingKey
	}

	pub, err := NormalizeDate(r.Published)
	if err != nil {
		return article, err
	}
	article.PubDate = pub
	return article, nil
}

// NormalizeDate renders any recognizable date as 2006-01-02. Null or blank input yields nil.
func NormalizeDate(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(*raw), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", *raw, err)
	}
	out := t.Format(PubDateLayout)
	return &out, nil
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func (i *Integrator[R]) debug(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Debug(msg, args...)
	}
}
