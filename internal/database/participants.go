package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const participantColumns = `chat_id, user_id, username, first_name, last_name, is_bot, is_admin, last_seen, left_at`

func (s *sqlxStore) UpsertParticipant(ctx context.Context, p *Participant) error {
	if p == nil {
		return fmt.Errorf("cannot save nil participant")
	}
	if p.ChatID == 0 || p.UserID == 0 {
		return fmt.Errorf("participant must have non-zero chat_id and user_id")
	}
	if p.LastSeen.IsZero() {
		p.LastSeen = time.Now()
	}
	p.LastSeen = p.LastSeen.UTC()

	query := `
        INSERT INTO participants (chat_id, user_id, username, first_name, last_name, is_bot, is_admin, last_seen, left_at)
        VALUES (:chat_id, :user_id, :username, :first_name, :last_name, :is_bot, :is_admin, :last_seen, NULL)
        ON CONFLICT (chat_id, user_id) DO UPDATE SET
            username   = excluded.username,
            first_name = excluded.first_name,
            last_name  = excluded.last_name,
            is_bot     = excluded.is_bot,
            last_seen  = excluded.last_seen,
            left_at    = NULL;
    `

	return s.withTx(ctx, "upsert participant", func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
			s.logger.ErrorContext(ctx, "Error saving participant",
				"chat_id", p.ChatID, "user_id", p.UserID, "error", err)
			return fmt.Errorf("failed to save participant (chat %d, user %d): %w", p.ChatID, p.UserID, err)
		}
		return nil
	})
}

func (s *sqlxStore) MarkParticipantLeft(ctx context.Context, chatID, userID int64) error {
	return s.withTx(ctx, "mark participant left", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE participants SET left_at = ? WHERE chat_id = ? AND user_id = ?;`,
			time.Now().UTC(), chatID, userID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error marking participant as left",
				"chat_id", chatID, "user_id", userID, "error", err)
			return fmt.Errorf("failed to mark participant %d as left: %w", userID, err)
		}
		return nil
	})
}

func (s *sqlxStore) SetParticipantAdmin(ctx context.Context, chatID, userID int64, isAdmin bool) error {
	return s.withTx(ctx, "set participant admin", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE participants SET is_admin = ? WHERE chat_id = ? AND user_id = ?;`,
			isAdmin, chatID, userID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error updating participant admin flag",
				"chat_id", chatID, "user_id", userID, "error", err)
			return fmt.Errorf("failed to update admin flag of participant %d: %w", userID, err)
		}
		return nil
	})
}

func (s *sqlxStore) ListParticipants(ctx context.Context, chatID int64) ([]Participant, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	query := `SELECT ` + participantColumns + `
              FROM participants
              WHERE chat_id = ? AND left_at IS NULL
              ORDER BY user_id;`

	var participants []Participant
	if err := s.db.SelectContext(ctx, &participants, query, chatID); err != nil {
		s.logger.ErrorContext(ctx, "Error listing participants", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to list participants of chat %d: %w", chatID, err)
	}
	return participants, nil
}

func (s *sqlxStore) GetParticipants(ctx context.Context, chatID int64, ids []int64) ([]Participant, error) {
	if len(ids) == 0 {
		return []Participant{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+participantColumns+`
              FROM participants
              WHERE chat_id = ? AND user_id IN (?)
              ORDER BY user_id;`, chatID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build participants query: %w", err)
	}

	var participants []Participant
	if err := s.db.SelectContext(ctx, &participants, s.db.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Error getting participants", "chat_id", chatID, "count", len(ids), "error", err)
		return nil, fmt.Errorf("failed to get participants of chat %d: %w", chatID, err)
	}
	return participants, nil
}

func (s *sqlxStore) FindParticipantByUsername(ctx context.Context, chatID int64, username string) (*Participant, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, nil
	}

	query := `SELECT ` + participantColumns + `
              FROM participants
              WHERE chat_id = ? AND username = ? COLLATE NOCASE
              ORDER BY last_seen DESC
              LIMIT 1;`

	var p Participant
	err := s.db.GetContext(ctx, &p, query, chatID, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No participant found", "chat_id", chatID, "username", username)
		return nil, nil

	case err != nil:
		s.logger.ErrorContext(ctx, "Error finding participant by username",
			"chat_id", chatID, "username", username, "error", err)
		return nil, fmt.Errorf("failed to find participant %q: %w", username, err)
	}

	return &p, nil
}
