package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ArticlesHarmonizer/internal/domain"
)

// created_at is never part of the conflict update.
const upsertSuffix = `ON CONFLICT (article_id) DO UPDATE SET
    source_platform = excluded.source_platform,
    title = excluded.title,
    author = excluded.author,
    pub_date = excluded.pub_date,
    link = excluded.link,
    category = excluded.category,
    is_valid = excluded.is_valid,
    updated_at = excluded.updated_at`

var dimensionColumns = []string{
	"id", "article_id", "source_platform", "title", "author", "pub_date",
	"link", "category", "is_valid", "created_at", "updated_at",
}

// UpsertArticles inserts or refreshes articles keyed on article_id in one transaction.
func (s *Store) UpsertArticles(ctx context.Context, articles []domain.DimensionArticle) error {
	if len(articles) == 0 {
		return nil
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range articles {
			b := s.sb.Insert("dim_articles").
				Columns("article_id", "source_platform", "title", "author", "pub_date",
					"link", "category", "is_valid", "created_at", "updated_at").
				Values(a.ArticleID, string(a.SourcePlatform), a.Title, nullable(a.Author), nullable(a.PubDate),
					a.Link, nullable(a.Category), a.IsValid, a.CreatedAt.UTC(), a.UpdatedAt.UTC()).
				Suffix(upsertSuffix)
			if _, err := execTx(ctx, tx, b); err != nil {
				return fmt.Errorf("upsert article %s: %w", a.ArticleID, err)
			}
		}
		return nil
	})
}

// Article loads one dimension row by its business key.
func (s *Store) Article(ctx context.Context, articleID string) (domain.DimensionArticle, error) {
	row, err := s.queryRow(ctx, s.sb.Select(dimensionColumns...).
		From("dim_articles").
		Where(sq.Eq{"article_id": articleID}))
	if err != nil {
		return domain.DimensionArticle{}, err
	}

	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DimensionArticle{}, fmt.Errorf("article %s: %w", articleID, ErrNotFound)
	}
	if err != nil {
		return domain.DimensionArticle{}, fmt.Errorf("scan article %s: %w", articleID, err)
	}
	return a, nil
}

// Articles pages through dim_articles ordered by id, optionally filtered by platform.
func (s *Store) Articles(ctx context.Context, platform domain.Platform, limit, offset uint64) ([]domain.DimensionArticle, error) {
	b := s.sb.Select(dimensionColumns...).From("dim_articles").OrderBy("id")
	if platform != "" {
		b = b.Where(sq.Eq{"source_platform": string(platform)})
	}
	if limit > 0 {
		b = b.Limit(limit).Offset(offset)
	}

	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("query dim_articles: %w", err)
	}

	var out []domain.DimensionArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan dim_articles: %w", err)
		}
		out = append(out, a)
	}

	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (domain.DimensionArticle, error) {
	var (
		a                      domain.DimensionArticle
		platform               string
		author, pubDate, categ sql.NullString
	)
	err := row.Scan(&a.ID, &a.ArticleID, &platform, &a.Title, &author, &pubDate,
		&a.Link, &categ, &a.IsValid, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	a.SourcePlatform = domain.Platform(platform)
	a.Author = fromNull(author)
	a.PubDate = fromNull(pubDate)
	a.Category = fromNull(categ)
	return a, nil
}
