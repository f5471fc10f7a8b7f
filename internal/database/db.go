// Package database provides database setup, models, and the data access layer (Store).
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// NewDB opens the SQLite file named by cfg.Path, sizes the connection pool,
// and migrates the schema to the latest version. Pragmas travel in the DSN so
// every pooled connection gets them.
func NewDB(cfg config.DatabaseConfig, log *slog.Logger) (*sqlx.DB, error) {
	if cfg.Path == "" {
		return nil, errs.NewDatabaseError("database path is empty", nil)
	}
	log = log.With("path", cfg.Path)

	db, err := sqlx.Connect("sqlite", dataSourceName(cfg))
	if err != nil {
		return nil, errs.NewDatabaseError("failed to connect to database", err)
	}

	conns := max(cfg.MaxOpenConns, 1)
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := migrateUp(db.DB, log); err != nil {
		CloseDB(db, log)
		return nil, errs.NewDatabaseError("failed to apply migrations", err)
	}

	log.Info("Database ready", "max_open_conns", conns, "journal_mode", cfg.JournalMode)
	return db, nil
}

// dataSourceName keeps the path outside the query so modernc opens it as a
// plain file name and only reads the pragmas from the parameters.
func dataSourceName(cfg config.DatabaseConfig) string {
	q := url.Values{}
	if cfg.BusyTimeout > 0 {
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.JournalMode != "" {
		q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", cfg.JournalMode))
	}
	if len(q) == 0 {
		return cfg.Path
	}
	return cfg.Path + "?" + q.Encode()
}

// CloseDB closes the database connection pool.
func CloseDB(db *sqlx.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database connection", "error", err)
	}
}

// SchemaVersion reports the applied migration version and whether the last
// migration was left dirty.
func SchemaVersion(db *sqlx.DB) (uint, bool, error) {
	m, err := newMigrator(db.DB)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errs.NewDatabaseError("failed to read schema version", err)
	}
	return version, dirty, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func migrateUp(db *sql.DB, log *slog.Logger) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("Schema already up to date")
			return nil
		}
		return err
	}
	log.Info("Database migrations applied")
	return nil
}
