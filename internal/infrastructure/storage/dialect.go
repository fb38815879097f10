package storage

import (
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"ArticlesHarmonizer/internal/config"
)

// dialectFor picks the placeholder style of driver.
func dialectFor(driver string) (sq.PlaceholderFormat, error) {
	switch driver {
	case config.DriverSQLite:
		return sq.Question, nil
	case config.DriverPostgres:
		return sq.Dollar, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// scanTime converts aggregate timestamps, which sqlite returns as text.
func scanTime(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &t, nil
	case []byte:
		return parseTimestamp(string(t))
	case string:
		return parseTimestamp(t)
	default:
		return nil, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func parseTimestamp(s string) (*time.Time, error) {
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", s)
}
