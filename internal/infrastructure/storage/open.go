package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"ArticlesHarmonizer/internal/config"
)

// Open connects to the configured database and verifies it answers.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if _, err := dialectFor(cfg.Driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == config.DriverSQLite && maxOpen == 0 {
		// sqlite serializes writers; one connection also keeps :memory: databases shared.
		maxOpen = 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return db, nil
}
