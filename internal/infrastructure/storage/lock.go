package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ArticlesHarmonizer/internal/domain"
)

// AcquireLock claims the named advisory lock for owner. A lock older than staleAfter is
// considered abandoned and taken over. A live lock yields domain.ErrRunInProgress.
func (s *Store) AcquireLock(ctx context.Context, name, owner string, staleAfter time.Duration) error {
	now := s.now().UTC()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.sb.Select("owner", "acquired_at").
			From("pipeline_lock").
			Where(sq.Eq{"name": name}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build lock query: %w", err)
		}

		var (
			holder     string
			acquiredAt time.Time
		)
		err = tx.QueryRowContext(ctx, query, args...).Scan(&holder, &acquiredAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("read lock %s: %w", name, err)
		case now.Sub(acquiredAt) < staleAfter:
			return fmt.Errorf("lock %s held by %s since %s: %w",
				name, holder, acquiredAt.Format(time.RFC3339), domain.ErrRunInProgress)
		default:
			if s.logger != nil {
				s.logger.Warn("taking over stale lock", "lock", name, "previous_owner", holder,
					"acquired_at", acquiredAt)
			}
			if _, err := execTx(ctx, tx, s.sb.Delete("pipeline_lock").Where(sq.Eq{"name": name})); err != nil {
				return fmt.Errorf("drop stale lock %s: %w", name, err)
			}
		}

		_, err = execTx(ctx, tx, s.sb.Insert("pipeline_lock").
			Columns("name", "owner", "acquired_at").
			Values(name, owner, now))
		if isUniqueViolation(err) {
			return fmt.Errorf("lock %s: %w", name, domain.ErrRunInProgress)
		}
		if err != nil {
			return fmt.Errorf("insert lock %s: %w", name, err)
		}
		return nil
	})
}

// ReleaseLock drops the lock if owner still holds it.
func (s *Store) ReleaseLock(ctx context.Context, name, owner string) error {
	query, args, err := s.sb.Delete("pipeline_lock").
		Where(sq.Eq{"name": name, "owner": owner}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unlock: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}
