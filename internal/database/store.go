package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage logs a chat message. Saving the same chat message twice is a no-op.
	SaveMessage(ctx context.Context, message *Message) error

	// GetRecentMessages returns up to limit of the latest recorded messages of
	// a chat, oldest first, in the order they were recorded. A non-zero
	// senderID keeps only that user's messages.
	GetRecentMessages(ctx context.Context, chatID int64, limit int, senderID int64) ([]Message, error)

	// DeleteMessagesBefore prunes messages older than cutoff and reports how many were removed.
	DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// UpsertParticipant records a member as present, refreshing its profile fields.
	// The admin flag is left untouched for existing rows.
	UpsertParticipant(ctx context.Context, p *Participant) error

	// MarkParticipantLeft flags a member as no longer present.
	MarkParticipantLeft(ctx context.Context, chatID, userID int64) error

	// SetParticipantAdmin stores the admin flag last observed for a member.
	SetParticipantAdmin(ctx context.Context, chatID, userID int64, isAdmin bool) error

	// ListParticipants returns the members of a chat that have not left.
	ListParticipants(ctx context.Context, chatID int64) ([]Participant, error)

	// GetParticipants returns the known members of a chat among ids.
	GetParticipants(ctx context.Context, chatID int64, ids []int64) ([]Participant, error)

	// FindParticipantByUsername resolves a username case-insensitively. Returns nil, nil if not found.
	FindParticipantByUsername(ctx context.Context, chatID int64, username string) (*Participant, error)

	// AppendHistoryTurn adds one turn to a chat's conversation history.
	AppendHistoryTurn(ctx context.Context, turn *HistoryTurn) error

	// GetRecentHistory returns up to limit of the latest turns of a chat in chronological order.
	GetRecentHistory(ctx context.Context, chatID int64, limit int) ([]HistoryTurn, error)

	// ClearHistory deletes the conversation history of a chat.
	ClearHistory(ctx context.Context, chatID int64) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction and commits it when fn succeeds.
func (s *sqlxStore) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "operation", op, "error", err)
		return fmt.Errorf("failed to begin transaction for %s: %w", op, err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "operation", op, "error", rollbackErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "operation", op, "error", err)
		return fmt.Errorf("failed to commit transaction for %s: %w", op, err)
	}
	tx = nil
	return nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
