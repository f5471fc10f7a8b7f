package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/recapbot/internal/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logger.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	handler := logger.Recover(log)(func(context.Context, *bot.Bot, *models.Update) {
		panic("boom")
	})
	handler(context.Background(), nil, &models.Update{ID: 7})

	if !strings.Contains(buf.String(), "panic=boom") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestGocronLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	logger.NewGocronLogger(log).Error("job failed", "error", errors.New("disk full"), "job", "sql_maintenance")

	out := buf.String()
	for _, want := range []string{"component=gocron", "error_code=CONFIG", "job=sql_maintenance", "disk full"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q is missing %q", out, want)
		}
	}
}
