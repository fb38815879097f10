package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"ArticlesHarmonizer/internal/config"
	"ArticlesHarmonizer/pkg/logger"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded migrations of driver to db.
// db stays open: the migrate instance is not closed because that would close db too.
func Migrate(db *sql.DB, driver string, log *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("load migrations for %s: %w", driver, err)
	}

	var target database.Driver
	switch driver {
	case config.DriverSQLite:
		target, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case config.DriverPostgres:
		target, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = logger.NewPrintf(log, "migrate")

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if log != nil {
		log.Info("migrations applied", "driver", driver, "version", version, "dirty", dirty)
	}
	return nil
}
