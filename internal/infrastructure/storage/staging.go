package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ArticlesHarmonizer/internal/domain"
)

// UnprocessedGFG returns every GFG staging row with processed = false, ordered by id.
func (s *Store) UnprocessedGFG(ctx context.Context) ([]domain.GFGRecord, error) {
	rows, err := s.query(ctx, s.unprocessed(domain.SourceGFG))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", domain.TableGFGStaging, err)
	}

	var out []domain.GFGRecord
	for rows.Next() {
		var (
			rec                                                  domain.GFGRecord
			ingested                                             sql.NullTime
			articleID, title, authorID, lastUpdated, link, categ sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ingested, &rec.Processed,
			&articleID, &title, &authorID, &lastUpdated, &link, &categ); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan %s: %w", domain.TableGFGStaging, err)
		}
		rec.IngestedAt = ingested.Time
		rec.ArticleID = fromNull(articleID)
		rec.Title = fromNull(title)
		rec.AuthorID = fromNull(authorID)
		rec.LastUpdated = fromNull(lastUpdated)
		rec.Link = fromNull(link)
		rec.Category = fromNull(categ)
		out = append(out, rec)
	}

	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}

// UnprocessedMedium returns every Medium staging row with processed = false, ordered by id.
// Tags and authors are decoded once here.
func (s *Store) UnprocessedMedium(ctx context.Context) ([]domain.MediumRecord, error) {
	rows, err := s.query(ctx, s.unprocessed(domain.SourceMedium))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", domain.TableMediumStaging, err)
	}

	var out []domain.MediumRecord
	for rows.Next() {
		var (
			rec                                    domain.MediumRecord
			ingested                               sql.NullTime
			idRSS, title, summary, link, published sql.NullString
			tags, authors                          sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ingested, &rec.Processed,
			&idRSS, &title, &summary, &link, &published, &tags, &authors); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan %s: %w", domain.TableMediumStaging, err)
		}
		rec.IngestedAt = ingested.Time
		rec.IDRSS = fromNull(idRSS)
		rec.Title = fromNull(title)
		rec.Summary = fromNull(summary)
		rec.Link = fromNull(link)
		rec.Published = fromNull(published)
		rec.Tags = domain.ParseTerms(fromNull(tags), "term")
		rec.Authors = domain.ParseTerms(fromNull(authors), "name")
		out = append(out, rec)
	}

	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) unprocessed(source domain.Source) sq.SelectBuilder {
	return s.sb.Select(source.StagingColumns()...).
		From(source.StagingTable()).
		Where(sq.Eq{"processed": false}).
		OrderBy(domain.StagingIDColumn)
}

// InsertGFG appends rows to stg_gfg_articles in one transaction. Staging ids are assigned by the database.
func (s *Store) InsertGFG(ctx context.Context, rows []domain.GFGRecord) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, chunk := range chunks(rows, batchSize/6) {
			b := s.sb.Insert(domain.TableGFGStaging).
				Columns("article_id", "title", "author_id", "last_updated", "link", "category")
			for _, r := range chunk {
				b = b.Values(nullable(r.ArticleID), nullable(r.Title), nullable(r.AuthorID),
					nullable(r.LastUpdated), nullable(r.Link), nullable(r.Category))
			}
			if _, err := execTx(ctx, tx, b); err != nil {
				return fmt.Errorf("insert %s: %w", domain.TableGFGStaging, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

type mediumKey struct {
	idRSS, link sql.NullString
}

func mediumKeyOf(r domain.MediumRecord) mediumKey {
	return mediumKey{idRSS: toNull(r.IDRSS), link: toNull(r.Link)}
}

// InsertMedium appends rows to stg_medium_articles in one transaction and returns how many were
// staged. Rows whose (id_rss, link) pair is already staged and unprocessed are skipped, so
// re-fetching a feed never piles up copies of an item that is still waiting or quarantined.
func (s *Store) InsertMedium(ctx context.Context, rows []domain.MediumRecord) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	staged := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		pending, err := s.pendingMedium(ctx, tx)
		if err != nil {
			return err
		}

		fresh := make([]domain.MediumRecord, 0, len(rows))
		for _, r := range rows {
			key := mediumKeyOf(r)
			if _, ok := pending[key]; ok {
				continue
			}
			pending[key] = struct{}{}
			fresh = append(fresh, r)
		}

		for _, chunk := range chunks(fresh, batchSize/7) {
			b := s.sb.Insert(domain.TableMediumStaging).
				Columns("id_rss", "title", "summary", "link", "published", "tags", "authors")
			for _, r := range chunk {
				b = b.Values(nullable(r.IDRSS), nullable(r.Title), nullable(r.Summary),
					nullable(r.Link), nullable(r.Published), nullable(r.Tags.Raw), nullable(r.Authors.Raw))
			}
			if _, err := execTx(ctx, tx, b); err != nil {
				return fmt.Errorf("insert %s: %w", domain.TableMediumStaging, err)
			}
		}
		staged = len(fresh)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if skipped := len(rows) - staged; skipped > 0 {
		s.debug("medium rows already pending", "skipped", skipped, "staged", staged)
	}
	return staged, nil
}

func (s *Store) pendingMedium(ctx context.Context, tx *sql.Tx) (map[mediumKey]struct{}, error) {
	query, args, err := s.sb.Select("id_rss", "link").
		From(domain.TableMediumStaging).
		Where(sq.Eq{"processed": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending %s: %w", domain.TableMediumStaging, err)
	}

	pending := map[mediumKey]struct{}{}
	for rows.Next() {
		var key mediumKey
		if err := rows.Scan(&key.idRSS, &key.link); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan pending %s: %w", domain.TableMediumStaging, err)
		}
		pending[key] = struct{}{}
	}

	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return pending, nil
}
