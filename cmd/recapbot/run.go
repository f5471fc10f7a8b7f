package main

import (
	"context"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/bot"
	"github.com/edgard/recapbot/internal/bot/handlers"
	"github.com/edgard/recapbot/internal/bot/tasks"
	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/database"
	"github.com/edgard/recapbot/internal/logger"
	"github.com/edgard/recapbot/internal/moderation"
	"github.com/edgard/recapbot/internal/recap"
	"github.com/edgard/recapbot/internal/resilience"
	"github.com/edgard/recapbot/internal/telegram"
)

// run wires every component and blocks until ctx is canceled or the bot fails.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := database.NewDB(cfg.Database, log)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return err
	}
	defer database.CloseDB(db, log)
	store := database.NewStore(db, log)

	primary, alt, err := newGenerators(ctx, cfg, log)
	if err != nil {
		return err
	}
	engine := recap.NewEngine(primary, alt, log)

	client, err := telegram.New(ctx, cfg.Telegram, cfg.Media, store, log,
		tgbot.WithMiddlewares(logger.Recover(log), logger.Middleware(log)),
	)
	if err != nil {
		log.Error("Failed to create Telegram client", "error", err)
		return err
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return err
	}

	messages := cfg.Messages()
	votekick := moderation.NewWorkflow(client, sched, cfg.VoteKick, messages, client.Self().Username, log)
	votekick.OnResolved = func(s moderation.Session, outcome moderation.Outcome) {
		log.Info("Vote-kick finished",
			"session_id", s.ID,
			"chat_id", s.ChatID,
			"target_id", s.Target.ID,
			"outcome", outcome.String(),
			"yes", s.Yes,
			"no", s.No)
	}

	dispatcher := handlers.NewDispatcher(handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Messages:  messages,
		Messenger: client,
		History:   store,
		Recap:     engine,
		Generator: primary,
		VoteKick:  votekick,
		Self:      client.Self(),
	})
	client.OnEvent(dispatcher.Handle)

	if err := telegram.SetCommands(ctx, client.Bot(), log, dispatcher.Router().Commands()); err != nil {
		// The menu is cosmetic; commands work without it.
		log.Warn("Failed to register command menu", "error", err)
	}

	app := bot.NewBot(log, client.Bot(), sched)
	log.Info("Starting bot", "bot_username", client.Self().Username)
	if err := app.Run(ctx); err != nil {
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return err
	}
	return nil
}

// newGenerators builds the primary Gemini generator and the optional
// alternate OpenAI-compatible one, each behind a circuit breaker and the
// reframing retry.
func newGenerators(ctx context.Context, cfg *config.Config, log *slog.Logger) (ai.Generator, ai.Generator, error) {
	// The breaker timeout covers the client's own retries.
	wrap := func(name string, next ai.Generator, timeout time.Duration, retries int) ai.Generator {
		cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:          name,
			MaxFailures:   cfg.Backend.BreakerMaxFailures,
			Timeout:       timeout * time.Duration(retries+1),
			ResetInterval: cfg.Backend.BreakerResetInterval,
			IsFailure:     ai.CountsAsOutage,
			Logger:        log,
		})
		return ai.NewReframing(ai.NewBreaker(next, cb), cfg.Backend.ReframeAttempts, log)
	}

	gemini, err := ai.NewGeminiClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return nil, nil, err
	}
	primary := wrap("gemini", gemini, cfg.Gemini.Timeout, cfg.Gemini.MaxRetries)

	if !cfg.OpenAI.Enabled {
		return primary, nil, nil
	}
	openai, err := ai.NewOpenAIClient(cfg.OpenAI, log)
	if err != nil {
		log.Error("Failed to initialize OpenAI client", "error", err)
		return nil, nil, err
	}
	return primary, wrap("openai", openai, cfg.OpenAI.Timeout, cfg.OpenAI.MaxRetries), nil
}
