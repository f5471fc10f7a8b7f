package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/database"
	"github.com/edgard/recapbot/internal/moderation"
	"github.com/edgard/recapbot/internal/platform"
	"github.com/edgard/recapbot/internal/recap"
)

// HistoryStore keeps the per-chat conversation used by /q.
type HistoryStore interface {
	AppendHistoryTurn(ctx context.Context, turn *database.HistoryTurn) error
	GetRecentHistory(ctx context.Context, chatID int64, limit int) ([]database.HistoryTurn, error)
	ClearHistory(ctx context.Context, chatID int64) error
}

// Summarizer produces recaps.
type Summarizer interface {
	Summarize(ctx context.Context, req recap.Request) (string, error)
}

// VoteKicker starts vote-kick sessions.
type VoteKicker interface {
	Start(ctx context.Context, chatID int64, requester platform.User, args string) (*moderation.Session, error)
}

// HandlerDeps provides dependencies for the event handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Messages  config.Messages
	Messenger platform.Messenger
	History   HistoryStore
	Recap     Summarizer
	Generator ai.Generator
	VoteKick  VoteKicker
	// Self is the bot's own account.
	Self platform.User
	// Rand returns a uniform draw in [0, 1). Nil means math/rand.
	Rand func() float64
}
