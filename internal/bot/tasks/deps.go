// Package tasks implements the bot's periodic maintenance jobs.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/recapbot/internal/config"
)

// Store is the part of the database the tasks need.
type Store interface {
	RunSQLMaintenance(ctx context.Context) error
	DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  Store
	Config *config.Config
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
