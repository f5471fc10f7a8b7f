package database

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
)

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("message must have a non-zero chat_id")
	}
	if message.UserID == 0 {
		return fmt.Errorf("message must have a non-zero user_id")
	}
	if message.Content == "" {
		return fmt.Errorf("message must have non-empty content")
	}
	if message.Timestamp.IsZero() {
		return fmt.Errorf("message must have a non-zero timestamp")
	}

	message.Timestamp = message.Timestamp.UTC()
	message.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO messages (chat_id, message_id, user_id, username, display_name, content, timestamp, created_at)
        VALUES (:chat_id, :message_id, :user_id, :username, :display_name, :content, :timestamp, :created_at)
        ON CONFLICT (chat_id, message_id) DO NOTHING;
    `

	return s.withTx(ctx, "save message", func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, query, message)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error saving message",
				"chat_id", message.ChatID, "user_id", message.UserID, "error", err)
			return fmt.Errorf("failed to save message (chat %d, user %d): %w", message.ChatID, message.UserID, err)
		}

		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			s.logger.DebugContext(ctx, "Message already logged",
				"chat_id", message.ChatID, "message_id", message.MessageID)
			return nil
		}
		if id, err := result.LastInsertId(); err == nil {
			message.ID = id
		}

		s.logger.DebugContext(ctx, "Message saved successfully",
			"chat_id", message.ChatID, "user_id", message.UserID, "message_id", message.MessageID)
		return nil
	})
}

func (s *sqlxStore) GetRecentMessages(ctx context.Context, chatID int64, limit int, senderID int64) ([]Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if limit <= 0 {
		return []Message{}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	query := `
        SELECT id, chat_id, message_id, user_id, username, display_name, content, timestamp, created_at
        FROM messages
        WHERE chat_id = ? AND (? = 0 OR user_id = ?)
        ORDER BY id DESC
        LIMIT ?;
    `

	var messages []Message
	if err := s.db.SelectContext(ctx, &messages, query, chatID, senderID, senderID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent messages",
			"chat_id", chatID, "sender_id", senderID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent messages for chat %d: %w", chatID, err)
	}

	slices.Reverse(messages)

	s.logger.DebugContext(ctx, "Retrieved recent messages", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

func (s *sqlxStore) DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.withTx(ctx, "delete old messages", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE timestamp < ?;`, cutoff.UTC())
		if err != nil {
			s.logger.ErrorContext(ctx, "Error deleting old messages", "cutoff", cutoff, "error", err)
			return fmt.Errorf("failed to delete messages before %s: %w", cutoff.Format(time.RFC3339), err)
		}
		deleted, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to count deleted messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Deleted old messages", "cutoff", cutoff, "count", deleted)
	return deleted, nil
}
