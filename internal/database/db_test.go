package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/database"
	"github.com/edgard/recapbot/internal/errs"
)

func TestNewDB_AppliesConnectionSettings(t *testing.T) {
	t.Parallel()

	log := discardLogger()
	cfg := config.DatabaseConfig{
		Path:            filepath.Join(t.TempDir(), "settings.db"),
		MaxOpenConns:    3,
		ConnMaxLifetime: time.Minute,
		BusyTimeout:     2500 * time.Millisecond,
		JournalMode:     "wal",
	}

	db, err := database.NewDB(cfg, log)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db, log) })

	if got := db.Stats().MaxOpenConnections; got != cfg.MaxOpenConns {
		t.Errorf("MaxOpenConnections = %d, want %d", got, cfg.MaxOpenConns)
	}

	var busy int64
	if err := db.Get(&busy, "PRAGMA busy_timeout"); err != nil {
		t.Fatalf("PRAGMA busy_timeout error = %v", err)
	}
	if busy != 2500 {
		t.Errorf("busy_timeout = %d, want 2500", busy)
	}

	var mode string
	if err := db.Get(&mode, "PRAGMA journal_mode"); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestNewDB_DefaultsToSingleConnection(t *testing.T) {
	t.Parallel()

	log := discardLogger()
	db, err := database.NewDB(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "single.db")}, log)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db, log) })

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestNewDB_ReopenKeepsSchemaVersion(t *testing.T) {
	t.Parallel()

	log := discardLogger()
	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "reopen.db")}

	first, err := database.NewDB(cfg, log)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	want, dirty, err := database.SchemaVersion(first)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if want == 0 || dirty {
		t.Fatalf("SchemaVersion() = (%d, %v), want applied and clean", want, dirty)
	}
	database.CloseDB(first, log)

	second, err := database.NewDB(cfg, log)
	if err != nil {
		t.Fatalf("NewDB() on migrated file error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(second, log) })

	got, dirty, err := database.SchemaVersion(second)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if got != want || dirty {
		t.Errorf("SchemaVersion() after reopen = (%d, %v), want (%d, false)", got, dirty, want)
	}
}

func TestNewDB_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := database.NewDB(config.DatabaseConfig{}, discardLogger())
	if errs.Code(err) != errs.CodeDatabase {
		t.Errorf("NewDB() error code = %q, want %q", errs.Code(err), errs.CodeDatabase)
	}
}
