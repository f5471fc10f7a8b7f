package handlers

import (
	"context"

	"github.com/edgard/recapbot/internal/errs"
)

// AdminOnly wraps next so that it only runs for the configured admin user.
// Anyone else gets the unauthorized message.
func AdminOnly(deps HandlerDeps, next CommandFunc) CommandFunc {
	return func(ctx context.Context, mc *MessageContext) error {
		if mc.Sender.ID != deps.Config.Telegram.AdminUserID {
			deps.Logger.WarnContext(ctx, "Unauthorized access attempt", "middleware", "AdminOnly", "user_id", mc.Sender.ID, "chat_id", mc.ChatID)
			return errs.NewValidationError(deps.Messages.Unauthorized, nil)
		}
		return next(ctx, mc)
	}
}
