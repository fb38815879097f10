package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// MarkProcessed sets processed = true for ids in one transaction. Identifiers must be
// whitelisted by the caller. Rows already processed are counted but left unchanged.
func (s *Store) MarkProcessed(ctx context.Context, table, idColumn string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var touched int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, chunk := range chunks(ids, batchSize) {
			res, err := execTx(ctx, tx, s.sb.Update(table).
				Set("processed", true).
				Where(sq.Eq{idColumn: chunk}))
			if err != nil {
				return fmt.Errorf("update %s: %w", table, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			touched += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return touched, nil
}
