package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/internal/platform"
)

// Reporter turns a failed event into exactly one chat message.
type Reporter struct {
	messenger platform.Messenger
	messages  config.Messages
	log       *slog.Logger
}

func NewReporter(messenger platform.Messenger, messages config.Messages, log *slog.Logger) *Reporter {
	return &Reporter{
		messenger: messenger,
		messages:  messages,
		log:       log.With("component", "reporter"),
	}
}

// UserMessage maps err to the text shown to the group.
func (r *Reporter) UserMessage(err error) string {
	switch errs.Code(err) {
	case errs.CodeValidation, errs.CodeTargetResolution:
		if msg := errs.Message(err); msg != "" {
			return msg
		}
		return r.messages.GeneralError
	case errs.CodeBackend:
		return r.messages.NoAnswer
	case errs.CodeMedia:
		return r.messages.MediaError
	default:
		return r.messages.GeneralError
	}
}

// Report logs err and sends its user message to chatID. Nothing is sent once
// ctx is done.
func (r *Reporter) Report(ctx context.Context, chatID int64, replyTo int, err error) {
	code := errs.Code(err)
	switch code {
	case errs.CodeValidation, errs.CodeTargetResolution:
		r.log.InfoContext(ctx, "Rejected request", "chat_id", chatID, "error_code", code, "error", err)
	default:
		r.log.ErrorContext(ctx, "Request failed", "chat_id", chatID, "error_code", code, "error", err)
	}

	if ctx.Err() != nil {
		return
	}
	if _, sendErr := r.messenger.SendMessage(ctx, chatID, r.UserMessage(err), replyTo); sendErr != nil {
		r.log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
	}
}
