// Package telegram adapts the Telegram Bot API to the platform interfaces:
// it converts updates into events, keeps the local message and member log,
// and implements platform.Messenger.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Command is an entry of the command menu shown by Telegram clients.
type Command struct {
	Name        string
	Description string
}

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	prefix := token
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	log.Info("Telegram bot instance created successfully", "token_prefix", prefix+"...")
	return b, nil
}

// SetCommands publishes the command menu.
func SetCommands(ctx context.Context, b *bot.Bot, logger *slog.Logger, commands []Command) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	log := logger.With("component", "command_registry")

	botCommands := make([]models.BotCommand, len(commands))
	for i, c := range commands {
		botCommands[i] = models.BotCommand{Command: c.Name, Description: c.Description}
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: botCommands}); err != nil {
		log.Error("Failed to publish bot commands", "error", err)
		return fmt.Errorf("failed to set bot commands: %w", err)
	}

	log.Info("Published bot commands", "count", len(commands))
	return nil
}
