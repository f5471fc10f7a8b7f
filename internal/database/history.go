package database

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
)

// Conversation roles stored in history_turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

func (s *sqlxStore) AppendHistoryTurn(ctx context.Context, turn *HistoryTurn) error {
	if turn == nil {
		return fmt.Errorf("cannot save nil history turn")
	}
	if turn.Role != RoleUser && turn.Role != RoleModel {
		return fmt.Errorf("invalid history role %q", turn.Role)
	}
	turn.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO history_turns (chat_id, role, content, created_at)
        VALUES (:chat_id, :role, :content, :created_at);
    `

	return s.withTx(ctx, "append history turn", func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, query, turn)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error saving history turn", "chat_id", turn.ChatID, "error", err)
			return fmt.Errorf("failed to save history turn for chat %d: %w", turn.ChatID, err)
		}
		if id, err := result.LastInsertId(); err == nil {
			turn.ID = id
		}
		return nil
	})
}

func (s *sqlxStore) GetRecentHistory(ctx context.Context, chatID int64, limit int) ([]HistoryTurn, error) {
	if limit <= 0 {
		return []HistoryTurn{}, nil
	}

	query := `
        SELECT id, chat_id, role, content, created_at
        FROM history_turns
        WHERE chat_id = ?
        ORDER BY id DESC
        LIMIT ?;
    `

	var turns []HistoryTurn
	if err := s.db.SelectContext(ctx, &turns, query, chatID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting conversation history", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get history for chat %d: %w", chatID, err)
	}

	slices.Reverse(turns)
	return turns, nil
}

func (s *sqlxStore) ClearHistory(ctx context.Context, chatID int64) error {
	return s.withTx(ctx, "clear history", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM history_turns WHERE chat_id = ?;`, chatID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error clearing conversation history", "chat_id", chatID, "error", err)
			return fmt.Errorf("failed to clear history for chat %d: %w", chatID, err)
		}
		affected, _ := result.RowsAffected()
		s.logger.InfoContext(ctx, "Conversation history cleared", "chat_id", chatID, "deleted", affected)
		return nil
	})
}
