package logger

import (
	"errors"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/recapbot/internal/errs"
)

// gocronLogger implements gocron.Logger on top of slog.
type gocronLogger struct {
	log *slog.Logger
}

// NewGocronLogger returns a gocron.Logger that writes to log.
//
//nolint:ireturn // Interface return is required by gocron's API contract
func NewGocronLogger(log *slog.Logger) gocron.Logger {
	return &gocronLogger{log: log.With("component", "gocron")}
}

func (l *gocronLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, schedulerArgs(args)...)
}

func (l *gocronLogger) Error(msg string, args ...any) {
	l.log.Error(msg, schedulerArgs(args)...)
}

func (l *gocronLogger) Info(msg string, args ...any) {
	l.log.Info(msg, schedulerArgs(args)...)
}

func (l *gocronLogger) Warn(msg string, args ...any) {
	l.log.Warn(msg, schedulerArgs(args)...)
}

// schedulerArgs tags error values reported by gocron with an error code so
// scheduler failures can be filtered the same way as the rest of the logs.
func schedulerArgs(args []any) []any {
	out := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			out = append(out, args[i])
			break
		}

		key, val := args[i], args[i+1]
		if err, ok := val.(error); ok {
			var wrapped error
			switch {
			case errors.Is(err, gocron.ErrJobNotFound):
				wrapped = errs.NewValidationError("scheduled job not found", err)
			default:
				wrapped = errs.NewConfigError("scheduler error", err)
			}
			out = append(out, key, wrapped, "error_code", errs.Code(wrapped))
			continue
		}
		out = append(out, key, val)
	}
	return out
}
