// Package logger provides structured logging for the bot.
// It uses Go's slog package with configurable levels and formats.
package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/recapbot/internal/text"
)

const previewLength = 50

// NewLogger creates a new slog Logger with the specified level and format.
// If jsonOutput is true, logs will be formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a configured level name to a slog level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Middleware creates a logging middleware for the Telegram bot.
// It logs the kind and origin of every incoming update and how long it took.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()

			logEntry := log.With("update_id", update.ID)

			var updateType string
			switch {
			case update.Message != nil:
				updateType = "message"
				logEntry = withMessage(logEntry, update.Message)
			case update.EditedMessage != nil:
				updateType = "edited_message"
				logEntry = withMessage(logEntry, update.EditedMessage)
			case update.MessageReaction != nil:
				updateType = "message_reaction"
				logEntry = logEntry.With(
					"chat_id", update.MessageReaction.Chat.ID,
					"message_id", update.MessageReaction.MessageID,
				)
				if update.MessageReaction.User != nil {
					logEntry = logEntry.With("user_id", update.MessageReaction.User.ID)
				}
			case update.Poll != nil:
				updateType = "poll"
				logEntry = logEntry.With(
					"poll_id", update.Poll.ID,
					"closed", update.Poll.IsClosed,
				)
			default:
				updateType = "other"
			}
			logEntry = logEntry.With("update_type", updateType)

			logEntry.DebugContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.DebugContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

func withMessage(log *slog.Logger, msg *models.Message) *slog.Logger {
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	return log.With(
		"message_id", msg.ID,
		"chat_id", msg.Chat.ID,
		"user_id", userID,
		"text_preview", text.Truncate(msg.Text, previewLength),
	)
}

// Recover stops a panicking handler from taking the update loop down with it.
func Recover(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					log.ErrorContext(ctx, "Recovered from panic in update handler",
						"update_id", update.ID,
						"panic", r,
						"stack", string(debug.Stack()),
					)
				}
			}()
			next(ctx, b, update)
		}
	}
}
